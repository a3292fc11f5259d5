package bookings

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"trekora_back_end/internal/cache"
	"trekora_back_end/internal/capacity"
	"trekora_back_end/internal/models"
	"trekora_back_end/internal/utils"
)

// GetMyBookings liste les réservations de l'utilisateur connecté, enrichies
// du nom du tour via le cache Redis.
func GetMyBookings(c *gin.Context) {
	userID := c.GetString("user_id")

	list, err := bookingStore.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	tourIDs := make([]string, 0, len(list))
	for _, b := range list {
		tourIDs = append(tourIDs, b.TourID.String())
	}
	names := cache.GetTourNamesFromCache(tourIDs)

	out := make([]gin.H, 0, len(list))
	for _, b := range list {
		out = append(out, gin.H{
			"id":         b.ID,
			"tour_id":    b.TourID,
			"tour_name":  names[b.TourID.String()],
			"start_day":  b.StartDay,
			"seat_no":    b.SeatNo,
			"price":      b.Price,
			"created_at": b.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, out)
}

// GetTourAvailability : places restantes pour un départ donné.
// Un départ sans aucune réservation affiche zéro occupant, jamais une erreur.
func GetTourAvailability(c *gin.Context) {
	tourID := c.Param("id")
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paramètre 'date' manquant"})
		return
	}

	startDate, err := parseDate(date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide, attendu RFC3339 ou YYYY-MM-DD"})
		return
	}

	tour, err := tours.TourForBooking(c.Request.Context(), tourID)
	if err != nil {
		respondError(c, err)
		return
	}

	occupied, err := ledger.Occupancy(c.Request.Context(), tourID, startDate)
	if err != nil {
		respondError(c, err)
		return
	}

	tourUUID, _ := uuid.Parse(tourID)
	c.JSON(http.StatusOK, models.Availability{
		TourID:    gocql.UUID(tourUUID),
		StartDay:  capacity.DayKey(startDate),
		Occupied:  occupied,
		Available: tour.MaxGroupSize - occupied,
	})
}

// GetAllAvailability retourne l'occupation de chaque départ planifié de chaque
// tour visible. Une seule passe sur les réservations, le regroupement se fait
// en mémoire.
func GetAllAvailability(c *gin.Context) {
	all, err := tours.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	counts, err := ledger.OccupancyByTourAndDate(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := []models.Availability{}
	for _, t := range all {
		for _, d := range t.StartDates {
			day := capacity.DayKey(d)
			occupied := counts[capacity.Slot{TourID: t.ID.String(), Day: day}]
			out = append(out, models.Availability{
				TourID:    t.ID,
				StartDay:  day,
				Occupied:  occupied,
				Available: t.MaxGroupSize - occupied,
			})
		}
	}

	c.JSON(http.StatusOK, out)
}

//
// --- ADMINISTRATION ---
//

func GetAllBookings(c *gin.Context) {
	list, err := bookingStore.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func GetBookingByID(c *gin.Context) {
	b, err := bookingStore.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CreateBooking : création directe par un admin, sans paiement. Les références
// sont validées, puis la place est acquise par la même écriture conditionnelle
// que le webhook.
func CreateBooking(c *gin.Context) {
	var req struct {
		TourID    string  `json:"tour_id" binding:"required"`
		UserID    string  `json:"user_id" binding:"required"`
		StartDate string  `json:"start_date" binding:"required"`
		Price     float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide, attendu RFC3339 ou YYYY-MM-DD"})
		return
	}

	tour, user, err := admission.ValidateReferences(c.Request.Context(), req.TourID, req.UserID)
	if err != nil {
		utils.LogFailedAction(c, utils.ACTION_BOOKING_CREATE, utils.RESOURCE_BOOKING, req.TourID, err.Error())
		respondError(c, err)
		return
	}

	price := req.Price
	if price == 0 {
		price = tour.Price
	}

	tourUUID, _ := uuid.Parse(tour.ID)
	b := &models.Booking{
		ID:        gocql.TimeUUID(),
		TourID:    gocql.UUID(tourUUID),
		UserID:    user.ID,
		StartDay:  capacity.DayKey(startDate),
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}

	if err := bookingStore.ClaimSeat(c.Request.Context(), b, tour.MaxGroupSize); err != nil {
		utils.LogFailedAction(c, utils.ACTION_BOOKING_CREATE, utils.RESOURCE_BOOKING, req.TourID, err.Error())
		respondError(c, err)
		return
	}

	utils.LogAction(c, utils.ACTION_BOOKING_CREATE, utils.RESOURCE_BOOKING, b.ID.String(), nil, b)
	go publishAvailability(b.TourID.String(), b.StartDay)

	c.JSON(http.StatusCreated, b)
}

// UpdateBooking : seule mutation autorisée, le prix.
func UpdateBooking(c *gin.Context) {
	var req struct {
		Price float64 `json:"price" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	b, err := bookingStore.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	old := b
	if err := bookingStore.UpdatePrice(c.Request.Context(), b, req.Price); err != nil {
		utils.LogFailedAction(c, utils.ACTION_BOOKING_UPDATE, utils.RESOURCE_BOOKING, c.Param("id"), err.Error())
		respondError(c, err)
		return
	}
	b.Price = req.Price

	utils.LogAction(c, utils.ACTION_BOOKING_UPDATE, utils.RESOURCE_BOOKING, b.ID.String(), old, b)
	c.JSON(http.StatusOK, b)
}

func DeleteBooking(c *gin.Context) {
	b, err := bookingStore.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := bookingStore.Delete(c.Request.Context(), b); err != nil {
		utils.LogFailedAction(c, utils.ACTION_BOOKING_DELETE, utils.RESOURCE_BOOKING, c.Param("id"), err.Error())
		respondError(c, err)
		return
	}

	utils.LogAction(c, utils.ACTION_BOOKING_DELETE, utils.RESOURCE_BOOKING, b.ID.String(), b, nil)
	go publishAvailability(b.TourID.String(), b.StartDay)

	c.JSON(http.StatusOK, gin.H{"message": "Réservation supprimée"})
}

// GetBookingConflicts : file des paiements confirmés restés sans réservation,
// à arbitrer manuellement.
func GetBookingConflicts(c *gin.Context) {
	list, err := conflicts.ListConflicts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
