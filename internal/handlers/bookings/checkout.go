// Package bookings expose le tunnel de réservation : admission, session de
// paiement Stripe, webhook de confirmation et vues de disponibilité.
package bookings

import (
	"log"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"

	"trekora_back_end/internal/apperr"
	"trekora_back_end/internal/booking"
	"trekora_back_end/internal/capacity"
	"trekora_back_end/internal/store"
)

var (
	tours        = store.NewTourStore()
	users        = store.NewUserStore()
	bookingStore = store.NewBookingStore()
	conflicts    = store.NewBookingConflictStore()

	ledger     = capacity.NewLedger(bookingStore)
	admission  = booking.NewAdmissionController(tours, users, bookingStore, ledger)
	reconciler = booking.NewReconciler(tours, users, bookingStore, store.NewProcessedEventStore(), conflicts)
)

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.ClientMessage(err)})
}

// CreateCheckoutSession vérifie l'admission puis crée la session Stripe.
// Aucune place n'est retenue ici : la capacité sera revérifiée au webhook,
// le délai avant paiement n'étant pas borné.
func CreateCheckoutSession(c *gin.Context) {
	tourID := c.Param("id")

	var req struct {
		StartDate string `json:"start_date" binding:"required"`
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

	userID := c.GetString("user_id")
	email := c.GetString("email")
	if userID == "" || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	decision, err := admission.Check(c.Request.Context(), tourID, startDate, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !decision.Admitted {
		switch decision.Reason {
		case booking.ReasonAlreadyBooked:
			c.JSON(http.StatusConflict, gin.H{
				"error":  "Vous avez déjà réservé ce tour",
				"reason": string(decision.Reason),
			})
		case booking.ReasonFull:
			c.JSON(http.StatusConflict, gin.H{
				"error":  "Ce départ est complet",
				"reason": string(decision.Reason),
			})
		}
		return
	}

	day := capacity.DayKey(startDate)
	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(email),
		// client_reference_id porte le tour, start_date part en metadata :
		// le webhook reconstruit la réservation à partir de ces deux champs.
		ClientReferenceID: stripe.String(tourID),
		SuccessURL:        stripe.String(frontend + "/my-bookings?success=true"),
		CancelURL:         stripe.String(frontend + "/tours/" + tourID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("eur"),
					UnitAmount: stripe.Int64(toCents(decision.Tour.Price)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(decision.Tour.Name + " (départ " + day + ")"),
						Description: stripe.String(decision.Tour.Summary),
					},
				},
			},
		},
		Metadata: map[string]string{
			"start_date": day,
			"user_id":    userID,
		},
	}
	if decision.Tour.ImageCover != "" {
		params.LineItems[0].PriceData.ProductData.Images = stripe.StringSlice([]string{decision.Tour.ImageCover})
	}

	s, err := session.New(params)
	if err != nil {
		log.Printf("❌ Erreur Stripe: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erreur création de la session de paiement"})
		return
	}

	log.Printf("💳 Session checkout créée : %s (tour %s, départ %s) pour %s", s.ID, tourID, day, email)

	c.JSON(http.StatusOK, gin.H{
		"session_id":   s.ID,
		"checkout_url": s.URL,
		"available":    decision.Available,
	})
}

// toCents convertit un prix en euros vers les centimes Stripe. L'arrondi est
// obligatoire : 497.99*100 vaut 49798.999... en flottant et une troncature
// perdrait un centime.
func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// parseDate accepte RFC3339 ou un jour calendaire nu.
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		d, err = time.Parse("2006-01-02", s)
	}
	return d, err
}
