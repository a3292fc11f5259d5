package user

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"trekora_back_end/internal/apperr"
	"trekora_back_end/internal/config"
	"trekora_back_end/internal/models"
	"trekora_back_end/internal/utils"
)

// ================== AUTH SOCIALE (MOBILE) ==================

// GoogleMobileLogin : l'app mobile envoie le code d'autorisation obtenu
// nativement, l'échange de token se fait côté serveur.
func GoogleMobileLogin(c *gin.Context) {
	var body struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code manquant"})
		return
	}

	token, err := config.GoogleOAuthConfig.Exchange(c.Request.Context(), body.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Échange du code Google refusé"})
		return
	}

	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + token.AccessToken)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Impossible de récupérer le profil Google"})
		return
	}
	defer resp.Body.Close()

	var gu struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil || gu.Email == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Profil Google illisible"})
		return
	}

	u, err := users.UserByEmail(c.Request.Context(), gu.Email)
	if err != nil {
		if apperr.KindOf(err) != apperr.NotFound {
			respondError(c, err)
			return
		}

		u = models.User{
			Name:       gu.Name,
			Email:      gu.Email,
			Role:       models.RoleUser,
			Provider:   "google",
			ProviderID: gu.ID,
			Active:     true,
		}
		if err := users.Insert(c.Request.Context(), &u); err != nil {
			respondError(c, err)
			return
		}
		utils.LogAction(c, utils.ACTION_USER_CREATE, utils.RESOURCE_USER, u.ID, nil, gin.H{"provider": "google"})
	}

	jwt, err := utils.GenerateJWT(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du token"})
		return
	}

	utils.LogAction(c, utils.ACTION_LOGIN_SUCCESS, utils.RESOURCE_AUTH, u.ID, nil, gin.H{"provider": "google", "channel": "mobile"})

	c.JSON(http.StatusOK, gin.H{
		"token":   jwt,
		"user_id": u.ID,
		"email":   u.Email,
		"name":    u.Name,
		"role":    u.Role,
	})
}
