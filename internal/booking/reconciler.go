package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"trekora_back_end/internal/apperr"
	"trekora_back_end/internal/capacity"
	"trekora_back_end/internal/models"
)

// EventCheckoutCompleted : seul type d'événement de paiement traité.
const EventCheckoutCompleted = "checkout.session.completed"

// ErrSlotFull est renvoyé par le stockage quand tous les sièges du départ
// sont déjà pris au moment de l'écriture conditionnelle.
var ErrSlotFull = errors.New("no seat left on this departure")

// PaymentEvent : contenu utile d'un événement de paiement déjà vérifié
// (signature contrôlée en amont par le handler webhook).
type PaymentEvent struct {
	EventID       string // identifiant Stripe de l'événement, clé d'idempotence
	SessionID     string
	Type          string
	CustomerEmail string
	TourID        string // client_reference_id
	StartDate     time.Time
	AmountCents   int64
}

// SeatClaimer pose la réservation sur le premier siège libre du départ, par
// écriture conditionnelle : deux confirmations concurrentes pour la dernière
// place ne peuvent pas réussir toutes les deux. Renvoie ErrSlotFull quand la
// capacité est épuisée.
type SeatClaimer interface {
	ClaimSeat(ctx context.Context, b *models.Booking, maxGroupSize int) error
}

// ProcessedEventStore mémorise les événements déjà traités. MarkProcessed
// retourne false (sans erreur) sur une relivraison.
type ProcessedEventStore interface {
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
}

// ConflictRecorder trace les confirmations qui n'ont pas pu aboutir alors que
// le paiement a déjà eu lieu : perdre la course à la dernière place ne doit
// jamais être silencieux, l'argent a bougé et un humain doit arbitrer.
type ConflictRecorder interface {
	RecordConflict(ctx context.Context, eventID, tourID, day, email, reason string)
}

// Outcome : résultat du traitement d'un événement de paiement.
type Outcome int

const (
	OutcomeIgnored   Outcome = iota // type d'événement non traité
	OutcomeDuplicate                // événement déjà traité (relivraison)
	OutcomeBooked                   // réservation créée
	OutcomeConflict                 // paiement confirmé mais réservation impossible
)

type Reconciler struct {
	tours     TourSource
	users     UserSource
	seats     SeatClaimer
	processed ProcessedEventStore
	conflicts ConflictRecorder
}

func NewReconciler(tours TourSource, users UserSource, seats SeatClaimer, processed ProcessedEventStore, conflicts ConflictRecorder) *Reconciler {
	return &Reconciler{tours: tours, users: users, seats: seats, processed: processed, conflicts: conflicts}
}

// HandleEvent transforme un événement « paiement terminé » en réservation
// confirmée, de façon idempotente. Un événement invalide est signalé puis
// abandonné : il ne doit jamais bloquer le traitement des suivants.
func (r *Reconciler) HandleEvent(ctx context.Context, evt PaymentEvent) (Outcome, *models.Booking, error) {
	if evt.Type != EventCheckoutCompleted {
		log.Printf("ℹ️ Événement ignoré : %s", evt.Type)
		return OutcomeIgnored, nil, nil
	}

	applied, err := r.processed.MarkProcessed(ctx, evt.EventID)
	if err != nil {
		return OutcomeIgnored, nil, err
	}
	if !applied {
		log.Printf("🔁 Événement %s déjà traité, on ignore.", evt.EventID)
		return OutcomeDuplicate, nil, nil
	}

	day := capacity.DayKey(evt.StartDate)

	user, err := r.users.UserByEmail(ctx, evt.CustomerEmail)
	if err != nil {
		r.conflicts.RecordConflict(ctx, evt.EventID, evt.TourID, day, evt.CustomerEmail, "unknown customer email")
		return OutcomeConflict, nil, apperr.Wrap(apperr.NotFound, "no user matches the paid session", err)
	}

	tour, err := r.tours.TourForBooking(ctx, evt.TourID)
	if err != nil {
		r.conflicts.RecordConflict(ctx, evt.EventID, evt.TourID, day, evt.CustomerEmail, "unknown tour reference")
		return OutcomeConflict, nil, apperr.Wrap(apperr.NotFound, "no tour matches the paid session", err)
	}

	tourUUID, err := uuid.Parse(evt.TourID)
	if err != nil {
		r.conflicts.RecordConflict(ctx, evt.EventID, evt.TourID, day, evt.CustomerEmail, "malformed tour reference")
		return OutcomeConflict, nil, apperr.Wrap(apperr.Validation, "malformed tour reference", err)
	}

	b := &models.Booking{
		ID:        gocql.TimeUUID(),
		TourID:    gocql.UUID(tourUUID),
		UserID:    user.ID,
		StartDay:  day,
		Price:     float64(evt.AmountCents) / 100,
		CreatedAt: time.Now().UTC(),
	}

	// Revérification de capacité AU moment de l'écriture : l'insertion du
	// siège est conditionnelle, le perdant d'une course reçoit ErrSlotFull.
	if err := r.seats.ClaimSeat(ctx, b, tour.MaxGroupSize); err != nil {
		if errors.Is(err, ErrSlotFull) {
			r.conflicts.RecordConflict(ctx, evt.EventID, evt.TourID, day, evt.CustomerEmail, "capacity exhausted by a concurrent confirmation")
			return OutcomeConflict, nil, apperr.Wrap(apperr.Conflict, "departure sold out before confirmation", err)
		}
		// Échec d'écriture après paiement : même exigence que la course perdue,
		// le paiement encaissé sans réservation doit laisser une trace.
		r.conflicts.RecordConflict(ctx, evt.EventID, evt.TourID, day, evt.CustomerEmail, "booking write failed after payment")
		return OutcomeConflict, nil, err
	}

	log.Printf("✅ Réservation confirmée : tour %s, départ %s, user %s", evt.TourID, day, user.ID)
	return OutcomeBooked, b, nil
}
