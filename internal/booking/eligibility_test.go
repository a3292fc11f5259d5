package booking_test

import (
	"testing"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"trekora_back_end/internal/booking"
	"trekora_back_end/internal/models"
)

func bookingFor(tourID, startDay string) models.Booking {
	return models.Booking{
		TourID:   gocql.UUID(uuid.MustParse(tourID)),
		StartDay: startDay,
	}
}

// TestReviewEligible : seule une réservation dont le départ est strictement
// passé ouvre le droit de noter. Le jour même et le futur sont refusés.
func TestReviewEligible(t *testing.T) {
	const today = "2025-07-15"
	autreTour := "9a1d3c5e-2b4f-4d6a-8c0e-1f3b5d7a9c2e"

	cas := map[string]struct {
		bookings []models.Booking
		attendu  bool
	}{
		"departPasse":    {[]models.Booking{bookingFor(tourRef, "2025-07-14")}, true},
		"departLeMemeJour": {[]models.Booking{bookingFor(tourRef, today)}, false},
		"departFutur":    {[]models.Booking{bookingFor(tourRef, "2025-07-16")}, false},
		"autreTourPasse": {[]models.Booking{bookingFor(autreTour, "2025-07-01")}, false},
		"aucuneReservation": {nil, false},
		"melange": {[]models.Booking{
			bookingFor(autreTour, "2025-07-01"),
			bookingFor(tourRef, "2025-06-30"),
		}, true},
	}

	for nom, c := range cas {
		require.Equal(t, c.attendu, booking.ReviewEligible(c.bookings, tourRef, today), nom)
	}
}
