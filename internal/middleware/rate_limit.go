package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trekora_back_end/internal/database"
)

const (
	// Limites par endpoint
	LoginMaxAttempts  = 5
	SignupMaxAttempts = 3
	APIMaxRequests    = 100 // Par minute pour les endpoints généraux

	// Durées de cooldown
	LoginCooldown  = 15 * time.Minute
	SignupCooldown = 30 * time.Minute
	APICooldown    = 1 * time.Minute
)

// LoginRateLimit limite les tentatives de connexion par email
func LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)

		var input struct {
			Email string `json:"email"`
		}

		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			c.Next()
			return
		}

		// Remettre le body pour les handlers suivants
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		ctx := context.Background()

		// Vérifier si l'utilisateur est en cooldown
		cooldownKey := "login_cooldown:" + input.Email
		if database.Redis.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := database.Redis.TTL(ctx, cooldownKey).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Réessayez dans %d minutes", int(ttl.Minutes())),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		attemptsKey := "login_attempts:" + input.Email
		attempts, _ := database.Redis.Incr(ctx, attemptsKey).Result()
		if attempts == 1 {
			database.Redis.Expire(ctx, attemptsKey, LoginCooldown)
		}
		if attempts > LoginMaxAttempts {
			database.Redis.Set(ctx, cooldownKey, 1, LoginCooldown)
			database.Redis.Del(ctx, attemptsKey)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Trop de tentatives de connexion, compte temporairement bloqué",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// SignupRateLimit limite les créations de compte par adresse IP
func SignupRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		key := "signup_attempts:" + c.ClientIP()

		attempts, _ := database.Redis.Incr(ctx, key).Result()
		if attempts == 1 {
			database.Redis.Expire(ctx, key, SignupCooldown)
		}
		if attempts > SignupMaxAttempts {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Trop de créations de compte, réessayez plus tard",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// APIRateLimit : limite générale par IP et par minute
func APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		key := "api_requests:" + c.ClientIP()

		requests, _ := database.Redis.Incr(ctx, key).Result()
		if requests == 1 {
			database.Redis.Expire(ctx, key, APICooldown)
		}
		if requests > APIMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Trop de requêtes, ralentissez"})
			c.Abort()
			return
		}

		c.Next()
	}
}
