package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trekora_back_end/internal/apperr"
	"trekora_back_end/internal/booking"
	"trekora_back_end/internal/capacity"
	"trekora_back_end/internal/models"
)

type fakeTours struct {
	tours map[string]booking.TourInfo
}

func (f *fakeTours) TourForBooking(ctx context.Context, tourID string) (booking.TourInfo, error) {
	t, ok := f.tours[tourID]
	if !ok {
		return booking.TourInfo{}, apperr.New(apperr.NotFound, "tour not found")
	}
	return t, nil
}

type fakeUsers struct {
	byID    map[string]models.User
	byEmail map[string]models.User
}

func (f *fakeUsers) UserByID(ctx context.Context, userID string) (models.User, error) {
	u, ok := f.byID[userID]
	if !ok {
		return models.User{}, apperr.New(apperr.NotFound, "user not found")
	}
	return u, nil
}

func (f *fakeUsers) UserByEmail(ctx context.Context, email string) (models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return models.User{}, apperr.New(apperr.NotFound, "user not found")
	}
	return u, nil
}

type fakeLookup struct {
	// couples (user, tour) détenant déjà une réservation, toute date confondue
	held map[[2]string]bool
}

func (f *fakeLookup) HasBookingForTour(ctx context.Context, userID, tourID string) (bool, error) {
	return f.held[[2]string{userID, tourID}], nil
}

type slotCounter struct {
	counts map[capacity.Slot]int
}

func (f *slotCounter) CountBySlot(ctx context.Context, tourID, day string) (int, error) {
	return f.counts[capacity.Slot{TourID: tourID, Day: day}], nil
}

func (f *slotCounter) CountAllSlots(ctx context.Context) (map[capacity.Slot]int, error) {
	return f.counts, nil
}

func newController(occupied int) (*booking.AdmissionController, *fakeLookup) {
	tours := &fakeTours{tours: map[string]booking.TourInfo{
		"tour-1": {
			ID:           "tour-1",
			Name:         "The Forest Hiker",
			Price:        497,
			MaxGroupSize: 15,
			StartDays:    []string{"2025-07-15", "2025-09-01"},
		},
	}}
	users := &fakeUsers{byID: map[string]models.User{
		"alice": {ID: "alice", Email: "alice@example.com"},
	}}
	lookup := &fakeLookup{held: map[[2]string]bool{}}
	counter := &slotCounter{counts: map[capacity.Slot]int{
		{TourID: "tour-1", Day: "2025-07-15"}: occupied,
	}}

	return booking.NewAdmissionController(tours, users, lookup, capacity.NewLedger(counter)), lookup
}

var departure = time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC)

func TestCheck_admise(t *testing.T) {
	ctrl, _ := newController(10)

	d, err := ctrl.Check(context.Background(), "tour-1", departure, "alice")
	require.NoError(t, err)
	require.True(t, d.Admitted)
	require.Equal(t, 5, d.Available)
	require.Equal(t, "The Forest Hiker", d.Tour.Name)
}

// TestCheck_complet : à N réservations pour une capacité N, la demande
// suivante est refusée, peu importe qui a réservé avant.
func TestCheck_complet(t *testing.T) {
	ctrl, _ := newController(15)

	d, err := ctrl.Check(context.Background(), "tour-1", departure, "alice")
	require.NoError(t, err)
	require.False(t, d.Admitted)
	require.Equal(t, booking.ReasonFull, d.Reason)
}

// TestCheck_dejaReserve : l'exclusivité joue par couple (utilisateur, tour),
// y compris pour une date de départ différente de celle déjà réservée.
func TestCheck_dejaReserve(t *testing.T) {
	ctrl, lookup := newController(0)
	lookup.held[[2]string{"alice", "tour-1"}] = true

	autreDepart := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	d, err := ctrl.Check(context.Background(), "tour-1", autreDepart, "alice")
	require.NoError(t, err)
	require.False(t, d.Admitted)
	require.Equal(t, booking.ReasonAlreadyBooked, d.Reason)
}

// TestCheck_dateHorsProgramme : une date qui n'est pas un départ planifié du
// tour est une erreur de validation, pas un refus d'admission.
func TestCheck_dateHorsProgramme(t *testing.T) {
	ctrl, _ := newController(0)

	_, err := ctrl.Check(context.Background(), "tour-1",
		time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), "alice")
	require.Error(t, err)
	require.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestCheck_tourInconnu(t *testing.T) {
	ctrl, _ := newController(0)

	_, err := ctrl.Check(context.Background(), "tour-fantome", departure, "alice")
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

// TestValidateReferences : le chemin admin refuse toute référence invalide
// avec le même message, sans préciser laquelle.
func TestValidateReferences(t *testing.T) {
	ctrl, _ := newController(0)

	tour, user, err := ctrl.ValidateReferences(context.Background(), "tour-1", "alice")
	require.NoError(t, err)
	require.Equal(t, "tour-1", tour.ID)
	require.Equal(t, "alice", user.ID)

	_, _, err = ctrl.ValidateReferences(context.Background(), "tour-fantome", "alice")
	require.Error(t, err)
	require.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, _, err = ctrl.ValidateReferences(context.Background(), "tour-1", "bob")
	require.Error(t, err)
	require.Equal(t, apperr.Validation, apperr.KindOf(err))
}
