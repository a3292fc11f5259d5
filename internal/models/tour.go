package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Tour struct {
	ID              gocql.UUID  `json:"id" db:"tour_id"`
	Name            string      `json:"name" db:"name"`
	Slug            string      `json:"slug" db:"slug"`
	Summary         string      `json:"summary" db:"summary"`
	Description     string      `json:"description" db:"description"`
	Difficulty      string      `json:"difficulty" db:"difficulty"` // easy | medium | difficult
	Price           float64     `json:"price" db:"price"`
	PriceDiscount   float64     `json:"price_discount,omitempty" db:"price_discount"`
	DurationDays    int         `json:"duration_days" db:"duration_days"`
	MaxGroupSize    int         `json:"max_group_size" db:"max_group_size"`
	RatingsAverage  float64     `json:"ratings_average" db:"ratings_average"`
	RatingsQuantity int         `json:"ratings_quantity" db:"ratings_quantity"`
	StartDates      []time.Time `json:"start_dates" db:"start_dates"`
	Guides          []string    `json:"guides,omitempty" db:"guides"`
	ImageCover      string      `json:"image_cover,omitempty" db:"image_cover"`
	Images          []string    `json:"images,omitempty" db:"images"`
	SecretTour      bool        `json:"secret_tour" db:"secret_tour"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// Valeurs par défaut d'un tour sans aucun avis
const (
	DefaultRatingsAverage  = 4.5
	DefaultRatingsQuantity = 0
)

// HasStartDate vérifie que la date demandée (jour calendaire UTC) fait partie
// des départs planifiés du tour.
func (t *Tour) HasStartDate(day string) bool {
	for _, d := range t.StartDates {
		if d.UTC().Format("2006-01-02") == day {
			return true
		}
	}
	return false
}
