package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Booking : une réservation confirmée. Créée uniquement après confirmation du
// paiement (webhook) ou par un admin. Jamais modifiée ensuite, sauf par les
// opérations d'administration.
type Booking struct {
	ID        gocql.UUID `json:"id" db:"booking_id"`
	TourID    gocql.UUID `json:"tour_id" db:"tour_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	StartDay  string     `json:"start_day" db:"start_day"` // jour calendaire UTC, format YYYY-MM-DD
	SeatNo    int        `json:"seat_no" db:"seat_no"`
	Price     float64    `json:"price" db:"price"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Availability : occupation dérivée pour un couple (tour, jour de départ).
// Toujours recalculée depuis les réservations, jamais stockée.
type Availability struct {
	TourID    gocql.UUID `json:"tour_id"`
	StartDay  string     `json:"start_day"`
	Occupied  int        `json:"occupied"`
	Available int        `json:"available"`
}
