package bookings

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"

	"trekora_back_end/internal/booking"
	"trekora_back_end/internal/database"
	"trekora_back_end/internal/models"
	"trekora_back_end/internal/utils"
)

// StripeWebhook reçoit les événements de paiement. Une fois la signature
// vérifiée, on répond TOUJOURS 200 : un événement invalide est tracé puis
// abandonné, Stripe ne doit pas le relivrer indéfiniment.
func StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	var event stripe.Event

	if secret == "" {
		log.Println("⚠️ Pas de STRIPE_WEBHOOK_SECRET — mode test")
		if err := json.Unmarshal(payload, &event); err != nil {
			log.Println("❌ JSON invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			log.Println("❌ Signature Stripe invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
			return
		}
	}

	log.Printf("📥 Événement Stripe reçu : %s", event.Type)
	handleStripeEvent(c, event)

	c.Status(http.StatusOK)
}

func handleStripeEvent(c *gin.Context, event stripe.Event) {
	evt, ok := paymentEventFrom(event)
	if !ok {
		return
	}

	ctx := context.Background()
	outcome, b, err := reconciler.HandleEvent(ctx, evt)
	if err != nil {
		log.Printf("⚠️ Réconciliation en échec pour %s: %v", evt.EventID, err)
	}

	switch outcome {
	case booking.OutcomeBooked:
		utils.LogAction(c, utils.ACTION_BOOKING_CREATE, utils.RESOURCE_BOOKING, b.ID.String(), nil, b)
		go finalizeBooking(*b, evt.CustomerEmail)
	case booking.OutcomeConflict:
		utils.LogFailedAction(c, utils.ACTION_BOOKING_CONFLICT, utils.RESOURCE_BOOKING, evt.EventID, errMsg(err))
	}
}

// paymentEventFrom extrait le contenu utile d'un événement déjà vérifié.
func paymentEventFrom(event stripe.Event) (booking.PaymentEvent, bool) {
	if event.Type != booking.EventCheckoutCompleted {
		log.Printf("ℹ️ Événement ignoré : %s", event.Type)
		return booking.PaymentEvent{}, false
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		log.Println("❌ Session checkout illisible:", err)
		return booking.PaymentEvent{}, false
	}

	email := cs.CustomerEmail
	if email == "" && cs.CustomerDetails != nil {
		email = cs.CustomerDetails.Email
	}

	startDate, err := time.Parse("2006-01-02", cs.Metadata["start_date"])
	if err != nil {
		log.Printf("❌ start_date illisible dans la session %s: %v", cs.ID, err)
		conflicts.RecordConflict(context.Background(), event.ID, cs.ClientReferenceID, cs.Metadata["start_date"], email, "malformed start_date metadata")
		return booking.PaymentEvent{}, false
	}

	return booking.PaymentEvent{
		EventID:       event.ID,
		SessionID:     cs.ID,
		Type:          string(event.Type),
		CustomerEmail: email,
		TourID:        cs.ClientReferenceID,
		StartDate:     startDate,
		AmountCents:   cs.AmountTotal,
	}, true
}

// finalizeBooking : tout ce qui suit la réservation confirmée et qui peut
// échouer sans la remettre en cause. E-mail avec billet PDF, diffusion de la
// nouvelle disponibilité aux clients websocket.
func finalizeBooking(b models.Booking, email string) {
	tourName := b.TourID.String()
	if t, err := tours.GetByID(context.Background(), b.TourID.String()); err == nil {
		tourName = t.Name
	}

	var pdf []byte
	qr, err := utils.GenerateBookingQR(b.ID.String(), b.TourID.String(), b.StartDay)
	if err != nil {
		log.Printf("⚠️ Génération QR échouée pour %s: %v", b.ID, err)
	} else {
		pdf, err = utils.RenderTicketPDF(utils.GetFrontendTicketBaseURL(), b.ID.String(), qr)
		if err != nil {
			log.Printf("⚠️ Génération PDF échouée pour %s: %v", b.ID, err)
			pdf = nil
		}
	}

	html := utils.GenerateBookingConfirmationHTML(b, tourName)
	if err := utils.SendConfirmationEmail(email, "Votre réservation Trekora est confirmée 🎉", html, pdf); err != nil {
		log.Printf("⚠️ Envoi e-mail échoué pour %s: %v", b.ID, err)
	}

	publishAvailability(b.TourID.String(), b.StartDay)
}

// publishAvailability pousse l'occupation à jour sur le canal Redis du départ,
// relayé aux navigateurs par la websocket de disponibilité.
func publishAvailability(tourID, day string) {
	ctx := context.Background()

	tourUUID, err := uuid.Parse(tourID)
	if err != nil {
		return
	}
	tour, err := tours.TourForBooking(ctx, tourID)
	if err != nil {
		return
	}
	occupied, err := bookingStore.CountBySlot(ctx, tourID, day)
	if err != nil {
		return
	}

	payload, _ := json.Marshal(models.Availability{
		TourID:    gocql.UUID(tourUUID),
		StartDay:  day,
		Occupied:  occupied,
		Available: tour.MaxGroupSize - occupied,
	})
	database.Redis.Publish(ctx, availabilityChannel(tourID, day), payload)
}

func availabilityChannel(tourID, day string) string {
	return "availability:" + tourID + ":" + day
}

func errMsg(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
