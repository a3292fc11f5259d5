// Package review : avis des voyageurs. Chaque mutation déclenche le recalcul
// de la note moyenne du tour concerné.
package review

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"trekora_back_end/internal/apperr"
	"trekora_back_end/internal/booking"
	"trekora_back_end/internal/cache"
	"trekora_back_end/internal/models"
	"trekora_back_end/internal/ratings"
	"trekora_back_end/internal/store"
	"trekora_back_end/internal/utils"
)

var (
	reviews  = store.NewReviewStore()
	tours    = store.NewTourStore()
	bookings = store.NewBookingStore()

	aggregator = ratings.NewAggregator(reviews, tours)
)

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.ClientMessage(err)})
}

// hasPastBooking : l'utilisateur ne peut noter que les tours qu'il a faits,
// c'est-à-dire avec une réservation confirmée dont le départ est passé.
func hasPastBooking(c *gin.Context, userID, tourID string) (bool, error) {
	list, err := bookings.ListByUser(c.Request.Context(), userID)
	if err != nil {
		return false, err
	}
	today := time.Now().UTC().Format("2006-01-02")
	return booking.ReviewEligible(list, tourID, today), nil
}

// createReviewRequest : la note est bornée 1..5 et le texte fait au moins
// 8 caractères.
type createReviewRequest struct {
	Rating float64 `json:"rating" binding:"required,gte=1,lte=5"`
	Body   string  `json:"body" binding:"required,min=8"`
}

func CreateReview(c *gin.Context) {
	tourID := c.Param("id")
	userID := c.GetString("user_id")

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	t, err := tours.GetByID(c.Request.Context(), tourID)
	if err != nil {
		respondError(c, err)
		return
	}

	ok, err := hasPastBooking(c, userID, tourID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		respondError(c, apperr.New(apperr.Conflict, "you have not booked this tour"))
		return
	}

	userName := ""
	if u, err := cache.GetUserFromCache(userID); err == nil {
		userName = u.Name
	}

	now := time.Now().UTC()
	r := models.Review{
		ID:        gocql.TimeUUID(),
		TourID:    t.ID,
		UserID:    userID,
		UserName:  userName,
		Rating:    req.Rating,
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := reviews.Insert(c.Request.Context(), &r); err != nil {
		utils.LogFailedAction(c, utils.ACTION_REVIEW_CREATE, utils.RESOURCE_REVIEW, tourID, err.Error())
		respondError(c, err)
		return
	}

	// L'avis est écrit : le recalcul peut échouer sans le remettre en cause
	aggregator.RecomputeAsync(tourID)
	utils.LogAction(c, utils.ACTION_REVIEW_CREATE, utils.RESOURCE_REVIEW, r.ID.String(), nil, r)

	c.JSON(http.StatusCreated, r)
}

func GetReviewsByTour(c *gin.Context) {
	list, err := reviews.ListByTour(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func GetMyReviews(c *gin.Context) {
	list, err := reviews.ListByUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpdateReview : réservé à l'auteur ou à un admin.
func UpdateReview(c *gin.Context) {
	reviewID := c.Param("id")

	var req struct {
		Rating *float64 `json:"rating" binding:"omitempty,gte=1,lte=5"`
		Body   *string  `json:"body" binding:"omitempty,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	r, err := reviews.GetByID(c.Request.Context(), reviewID)
	if err != nil {
		respondError(c, err)
		return
	}

	if r.UserID != c.GetString("user_id") && c.GetString("role") != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Vous ne pouvez modifier que vos propres avis"})
		return
	}

	old := r
	if req.Rating != nil {
		r.Rating = *req.Rating
	}
	if req.Body != nil {
		r.Body = *req.Body
	}

	if err := reviews.Update(c.Request.Context(), &r); err != nil {
		utils.LogFailedAction(c, utils.ACTION_REVIEW_UPDATE, utils.RESOURCE_REVIEW, reviewID, err.Error())
		respondError(c, err)
		return
	}

	aggregator.RecomputeAsync(r.TourID.String())
	utils.LogAction(c, utils.ACTION_REVIEW_UPDATE, utils.RESOURCE_REVIEW, reviewID, old, r)

	c.JSON(http.StatusOK, r)
}

// DeleteReview : réservé à l'auteur ou à un admin. Le tour est relu AVANT la
// suppression, le recalcul en a besoin une fois l'avis disparu.
func DeleteReview(c *gin.Context) {
	reviewID := c.Param("id")

	r, err := reviews.GetByID(c.Request.Context(), reviewID)
	if err != nil {
		respondError(c, err)
		return
	}

	if r.UserID != c.GetString("user_id") && c.GetString("role") != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Vous ne pouvez supprimer que vos propres avis"})
		return
	}

	tourID := r.TourID.String()

	if err := reviews.Delete(c.Request.Context(), r); err != nil {
		utils.LogFailedAction(c, utils.ACTION_REVIEW_DELETE, utils.RESOURCE_REVIEW, reviewID, err.Error())
		respondError(c, err)
		return
	}

	aggregator.RecomputeAsync(tourID)
	utils.LogAction(c, utils.ACTION_REVIEW_DELETE, utils.RESOURCE_REVIEW, reviewID, r, nil)

	c.JSON(http.StatusOK, gin.H{"message": "Avis supprimé"})
}
