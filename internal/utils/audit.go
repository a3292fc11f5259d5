package utils

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"trekora_back_end/internal/database"
	"trekora_back_end/internal/models"
)

// LogAction enregistre une action dans les logs d'audit
func LogAction(c *gin.Context, action, resource string, resourceID string, oldValue, newValue interface{}) {
	go func() {
		if err := logActionAsync(c, action, resource, resourceID, oldValue, newValue, true, ""); err != nil {
			log.Printf("❌ Erreur enregistrement log audit: %v", err)
		}
	}()
}

// LogFailedAction enregistre une action échouée dans les logs d'audit
func LogFailedAction(c *gin.Context, action, resource, resourceID, errorMsg string) {
	go func() {
		if err := logActionAsync(c, action, resource, resourceID, nil, nil, false, errorMsg); err != nil {
			log.Printf("❌ Erreur enregistrement log audit: %v", err)
		}
	}()
}

// logActionAsync enregistre de façon asynchrone
func logActionAsync(c *gin.Context, action, resource, resourceID string, oldValue, newValue interface{}, success bool, errorMsg string) error {
	usersSession, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	userID, _ := c.Get("user_id")
	userEmail, _ := c.Get("email")

	// Sérialiser les valeurs
	var oldValueStr, newValueStr string
	if oldValue != nil {
		if oldBytes, err := json.Marshal(oldValue); err == nil {
			oldValueStr = string(oldBytes)
		}
	}
	if newValue != nil {
		if newBytes, err := json.Marshal(newValue); err == nil {
			newValueStr = string(newBytes)
		}
	}

	auditLog := models.AuditLog{
		ID:         gocql.TimeUUID(),
		UserID:     getStringValue(userID),
		UserEmail:  getStringValue(userEmail),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValue:   oldValueStr,
		NewValue:   newValueStr,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		Success:    success,
		ErrorMsg:   errorMsg,
		Timestamp:  time.Now(),
		SessionID:  c.GetHeader("X-Session-ID"),
	}

	return usersSession.Query(database.StmtInsertAuditEvent,
		auditLog.ID, auditLog.UserID, auditLog.UserEmail, auditLog.Action,
		auditLog.Resource, auditLog.ResourceID, auditLog.OldValue, auditLog.NewValue,
		auditLog.IPAddress, auditLog.UserAgent, auditLog.Success, auditLog.ErrorMsg,
		auditLog.Timestamp, auditLog.SessionID,
	).Exec()
}

// getStringValue convertit une interface{} en string
func getStringValue(value interface{}) string {
	if value == nil {
		return ""
	}
	if str, ok := value.(string); ok {
		return str
	}
	return ""
}

// Actions d'audit prédéfinies
const (
	// Actions tours
	ACTION_TOUR_CREATE = "tour.create"
	ACTION_TOUR_UPDATE = "tour.update"
	ACTION_TOUR_DELETE = "tour.delete"

	// Actions réservations
	ACTION_BOOKING_CREATE   = "booking.create"
	ACTION_BOOKING_UPDATE   = "booking.update"
	ACTION_BOOKING_DELETE   = "booking.delete"
	ACTION_BOOKING_CONFLICT = "booking.conflict"

	// Actions avis
	ACTION_REVIEW_CREATE = "review.create"
	ACTION_REVIEW_UPDATE = "review.update"
	ACTION_REVIEW_DELETE = "review.delete"

	// Actions utilisateurs
	ACTION_USER_CREATE = "user.create"
	ACTION_USER_UPDATE = "user.update"
	ACTION_USER_DELETE = "user.delete"

	// Actions système
	ACTION_LOGIN_SUCCESS = "auth.login_success"
	ACTION_LOGIN_FAILED  = "auth.login_failed"
	ACTION_LOGOUT        = "auth.logout"
)

// Resources d'audit
const (
	RESOURCE_TOUR    = "tour"
	RESOURCE_BOOKING = "booking"
	RESOURCE_REVIEW  = "review"
	RESOURCE_USER    = "user"
	RESOURCE_AUTH    = "auth"
)
