package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trekora_back_end/internal/apperr"
	"trekora_back_end/internal/cache"
	"trekora_back_end/internal/models"
	"trekora_back_end/internal/store"
	"trekora_back_end/internal/utils"
)

var users = store.NewUserStore()

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.ClientMessage(err)})
}

// ================== AUTH LOCALE ==================

func Signup(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	u := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hashed,
		Role:     models.RoleUser,
		Provider: "local",
		Active:   true,
	}

	if err := users.Insert(c.Request.Context(), &u); err != nil {
		utils.LogFailedAction(c, utils.ACTION_USER_CREATE, utils.RESOURCE_USER, input.Email, err.Error())
		respondError(c, err)
		return
	}

	token, err := utils.GenerateJWT(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du token"})
		return
	}

	utils.LogAction(c, utils.ACTION_USER_CREATE, utils.RESOURCE_USER, u.ID, nil, gin.H{"email": u.Email})

	c.JSON(http.StatusCreated, gin.H{
		"token":   token,
		"user_id": u.ID,
		"email":   u.Email,
		"name":    u.Name,
		"role":    u.Role,
	})
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := users.UserByEmail(c.Request.Context(), input.Email)
	if err != nil {
		// Même message qu'un mauvais mot de passe : pas d'énumération d'emails
		utils.LogFailedAction(c, utils.ACTION_LOGIN_FAILED, utils.RESOURCE_AUTH, input.Email, "unknown email")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, u.Password)
	if err != nil || !ok {
		utils.LogFailedAction(c, utils.ACTION_LOGIN_FAILED, utils.RESOURCE_AUTH, u.ID, "bad password")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateJWT(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du token"})
		return
	}

	utils.LogAction(c, utils.ACTION_LOGIN_SUCCESS, utils.RESOURCE_AUTH, u.ID, nil, nil)

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user_id": u.ID,
		"email":   u.Email,
		"name":    u.Name,
		"role":    u.Role,
	})
}

// Me retourne le profil de l'utilisateur connecté, via le cache Redis.
func Me(c *gin.Context) {
	u, err := cache.GetUserFromCache(c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func Logout(c *gin.Context) {
	// Le JWT est sans état : le logout invalide seulement le cache profil
	cache.InvalidateUserCache(c.GetString("user_id"))
	utils.LogAction(c, utils.ACTION_LOGOUT, utils.RESOURCE_AUTH, c.GetString("user_id"), nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Déconnecté"})
}
