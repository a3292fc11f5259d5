package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trekora_back_end/internal/apperr"
	"trekora_back_end/internal/booking"
	"trekora_back_end/internal/models"
)

const tourRef = "f47ac10b-58cc-4372-a567-0e02b2c3d479"

type fakeSeats struct {
	mu       sync.Mutex
	taken    map[string]map[int]bool // "tour|jour" → sièges pris
	failWith error                   // si non nil, ClaimSeat échoue avec cette erreur
}

func newFakeSeats() *fakeSeats {
	return &fakeSeats{taken: map[string]map[int]bool{}}
}

func (f *fakeSeats) ClaimSeat(ctx context.Context, b *models.Booking, maxGroupSize int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}

	key := b.TourID.String() + "|" + b.StartDay
	if f.taken[key] == nil {
		f.taken[key] = map[int]bool{}
	}
	for seat := 1; seat <= maxGroupSize; seat++ {
		if !f.taken[key][seat] {
			f.taken[key][seat] = true
			b.SeatNo = seat
			return nil
		}
	}
	return booking.ErrSlotFull
}

func (f *fakeSeats) count(tourID, day string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.taken[tourID+"|"+day])
}

type fakeProcessed struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (f *fakeProcessed) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[eventID] {
		return false, nil
	}
	f.seen[eventID] = true
	return true, nil
}

type fakeConflicts struct {
	mu      sync.Mutex
	reasons []string
}

func (f *fakeConflicts) RecordConflict(ctx context.Context, eventID, tourID, day, email, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reasons = append(f.reasons, reason)
}

func newReconciler(maxGroupSize int) (*booking.Reconciler, *fakeSeats, *fakeConflicts) {
	tours := &fakeTours{tours: map[string]booking.TourInfo{
		tourRef: {
			ID:           tourRef,
			Name:         "The Forest Hiker",
			Price:        497,
			MaxGroupSize: maxGroupSize,
			StartDays:    []string{"2025-07-15"},
		},
	}}
	users := &fakeUsers{byEmail: map[string]models.User{
		"alice@example.com": {ID: "alice", Email: "alice@example.com"},
		"bob@example.com":   {ID: "bob", Email: "bob@example.com"},
	}}
	seats := newFakeSeats()
	conflicts := &fakeConflicts{}

	return booking.NewReconciler(tours, users, seats, &fakeProcessed{}, conflicts), seats, conflicts
}

func paidEvent(eventID, email string) booking.PaymentEvent {
	return booking.PaymentEvent{
		EventID:       eventID,
		SessionID:     "cs_" + eventID,
		Type:          booking.EventCheckoutCompleted,
		CustomerEmail: email,
		TourID:        tourRef,
		StartDate:     time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC),
		AmountCents:   49700,
	}
}

func TestHandleEvent_reservationConfirmee(t *testing.T) {
	r, seats, _ := newReconciler(15)

	outcome, b, err := r.HandleEvent(context.Background(), paidEvent("evt_1", "alice@example.com"))
	require.NoError(t, err)
	require.Equal(t, booking.OutcomeBooked, outcome)
	require.NotNil(t, b)
	require.Equal(t, "alice", b.UserID)
	require.Equal(t, "2025-07-15", b.StartDay)
	require.Equal(t, 497.0, b.Price)
	require.Equal(t, 1, seats.count(tourRef, "2025-07-15"))
}

// TestHandleEvent_relivraison : le même événement relivré ne produit qu'une
// seule réservation.
func TestHandleEvent_relivraison(t *testing.T) {
	r, seats, _ := newReconciler(15)
	evt := paidEvent("evt_1", "alice@example.com")

	outcome, _, err := r.HandleEvent(context.Background(), evt)
	require.NoError(t, err)
	require.Equal(t, booking.OutcomeBooked, outcome)

	outcome, b, err := r.HandleEvent(context.Background(), evt)
	require.NoError(t, err)
	require.Equal(t, booking.OutcomeDuplicate, outcome)
	require.Nil(t, b)
	require.Equal(t, 1, seats.count(tourRef, "2025-07-15"))
}

// TestHandleEvent_dernierePlace : deux paiements confirmés pour l'unique place
// restante → une seule réservation, l'autre paiement est tracé en conflit,
// jamais perdu en silence.
func TestHandleEvent_dernierePlace(t *testing.T) {
	r, seats, conflicts := newReconciler(1)

	outcome, _, err := r.HandleEvent(context.Background(), paidEvent("evt_1", "alice@example.com"))
	require.NoError(t, err)
	require.Equal(t, booking.OutcomeBooked, outcome)

	outcome, _, err = r.HandleEvent(context.Background(), paidEvent("evt_2", "bob@example.com"))
	require.Error(t, err)
	require.Equal(t, booking.OutcomeConflict, outcome)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))

	require.Equal(t, 1, seats.count(tourRef, "2025-07-15"))
	require.Len(t, conflicts.reasons, 1)
	require.Contains(t, conflicts.reasons[0], "capacity exhausted")
}

// TestHandleEvent_emailInconnu : un paiement dont l'e-mail ne correspond à
// aucun compte est signalé puis abandonné, sans bloquer les suivants.
func TestHandleEvent_emailInconnu(t *testing.T) {
	r, seats, conflicts := newReconciler(15)

	outcome, b, err := r.HandleEvent(context.Background(), paidEvent("evt_1", "fantome@example.com"))
	require.Error(t, err)
	require.Equal(t, booking.OutcomeConflict, outcome)
	require.Nil(t, b)
	require.Zero(t, seats.count(tourRef, "2025-07-15"))
	require.Len(t, conflicts.reasons, 1)

	// L'événement suivant passe normalement
	outcome, _, err = r.HandleEvent(context.Background(), paidEvent("evt_2", "alice@example.com"))
	require.NoError(t, err)
	require.Equal(t, booking.OutcomeBooked, outcome)
}

// TestHandleEvent_echecEcriture : un échec d'écriture après paiement (hors
// capacité épuisée) est tracé en conflit, jamais perdu en silence.
func TestHandleEvent_echecEcriture(t *testing.T) {
	r, seats, conflicts := newReconciler(15)
	seats.failWith = errors.New("write timeout")

	outcome, b, err := r.HandleEvent(context.Background(), paidEvent("evt_1", "alice@example.com"))
	require.Error(t, err)
	require.Equal(t, booking.OutcomeConflict, outcome)
	require.Nil(t, b)
	require.Len(t, conflicts.reasons, 1)
	require.Contains(t, conflicts.reasons[0], "booking write failed")
}

func TestHandleEvent_typeIgnore(t *testing.T) {
	r, seats, conflicts := newReconciler(15)

	evt := paidEvent("evt_1", "alice@example.com")
	evt.Type = "payment_intent.succeeded"

	outcome, b, err := r.HandleEvent(context.Background(), evt)
	require.NoError(t, err)
	require.Equal(t, booking.OutcomeIgnored, outcome)
	require.Nil(t, b)
	require.Zero(t, seats.count(tourRef, "2025-07-15"))
	require.Empty(t, conflicts.reasons)
}
