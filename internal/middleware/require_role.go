package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trekora_back_end/internal/models"
)

// RequireAdmin vérifie que l'utilisateur a le rôle "admin"
func RequireAdmin(c *gin.Context) {
	role, exists := c.Get("role")
	if !exists || role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
		c.Abort()
		return
	}
	c.Next()
}

// RestrictTo limite un groupe de routes aux rôles donnés
// (user, guide, lead-guide, admin).
func RestrictTo(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Rôle inconnu"})
			c.Abort()
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Vous n'avez pas la permission d'effectuer cette action"})
		c.Abort()
	}
}
