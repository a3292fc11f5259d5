package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Review struct {
	ID        gocql.UUID `json:"id" db:"review_id"`
	TourID    gocql.UUID `json:"tour_id" db:"tour_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	UserName  string     `json:"user_name" db:"user_name"`
	Rating    float64    `json:"rating" db:"rating"` // 1-5
	Body      string     `json:"body" db:"body"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// TourRating : agrégat dérivé de l'ensemble des avis d'un tour
type TourRating struct {
	TourID  gocql.UUID `json:"tour_id"`
	Average float64    `json:"ratings_average"`
	Count   int        `json:"ratings_quantity"`
}
