package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"

	"trekora_back_end/internal/apperr"
	"trekora_back_end/internal/models"
	"trekora_back_end/internal/utils"
)

type ctxKey string

const ProviderKey ctxKey = "provider"

// ================== AUTH SOCIALE (WEB) ==================

func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), ProviderKey, provider),
	)

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CallbackAuth termine le flow OAuth. Premier passage → création du compte,
// passages suivants → simple login.
func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), ProviderKey, provider),
	)

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := users.UserByEmail(c.Request.Context(), gothUser.Email)
	if err != nil {
		if apperr.KindOf(err) != apperr.NotFound {
			respondError(c, err)
			return
		}

		u = models.User{
			Name:       gothUser.Name,
			Email:      gothUser.Email,
			Role:       models.RoleUser,
			Photo:      gothUser.AvatarURL,
			Provider:   gothUser.Provider,
			ProviderID: gothUser.UserID,
			Active:     true,
		}
		if err := users.Insert(c.Request.Context(), &u); err != nil {
			respondError(c, err)
			return
		}
		utils.LogAction(c, utils.ACTION_USER_CREATE, utils.RESOURCE_USER, u.ID, nil, gin.H{"provider": u.Provider})
	}

	token, err := utils.GenerateJWT(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du token"})
		return
	}

	utils.LogAction(c, utils.ACTION_LOGIN_SUCCESS, utils.RESOURCE_AUTH, u.ID, nil, gin.H{"provider": provider})

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"provider": u.Provider,
		"email":    u.Email,
		"user_id":  u.ID,
		"name":     u.Name,
		"role":     u.Role,
	})
}
