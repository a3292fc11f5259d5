// Package ratings recalcule la note moyenne d'un tour à chaque mutation
// d'avis. Le recalcul est déclenché explicitement par les handlers après
// chaque création, modification ou suppression — jamais par un trigger de
// base de données.
package ratings

import (
	"context"
	"log"
	"math"

	"trekora_back_end/internal/models"
)

// ReviewSource liste les notes actuelles des avis d'un tour.
type ReviewSource interface {
	RatingsForTour(ctx context.Context, tourID string) ([]float64, error)
}

// RatingWriter écrit l'agrégat sur le tour. Les deux champs doivent être
// posés dans la même écriture : jamais de moyenne sans quantité.
type RatingWriter interface {
	UpdateTourRatings(ctx context.Context, tourID string, average float64, quantity int) error
}

type Aggregator struct {
	reviews ReviewSource
	tours   RatingWriter
}

func NewAggregator(reviews ReviewSource, tours RatingWriter) *Aggregator {
	return &Aggregator{reviews: reviews, tours: tours}
}

// Recompute relit tous les avis du tour et réécrit ratings_average (moyenne
// arrondie à une décimale) et ratings_quantity. Dernier avis supprimé →
// retour aux valeurs par défaut (4.5 / 0), pas de division par zéro.
func (a *Aggregator) Recompute(ctx context.Context, tourID string) (models.TourRating, error) {
	values, err := a.reviews.RatingsForTour(ctx, tourID)
	if err != nil {
		return models.TourRating{}, err
	}

	average := models.DefaultRatingsAverage
	count := len(values)
	if count > 0 {
		var sum float64
		for _, v := range values {
			sum += v
		}
		average = roundToOneDecimal(sum / float64(count))
	}

	if err := a.tours.UpdateTourRatings(ctx, tourID, average, count); err != nil {
		return models.TourRating{}, err
	}

	return models.TourRating{Average: average, Count: count}, nil
}

// RecomputeAsync : variante best-effort pour les chemins où un échec de
// recalcul ne doit pas annuler la mutation d'avis qui l'a déclenché. Un
// agrégat obsolète se répare en relançant Recompute, un avis perdu non.
func (a *Aggregator) RecomputeAsync(tourID string) {
	go func() {
		if _, err := a.Recompute(context.Background(), tourID); err != nil {
			log.Printf("⚠️ Recalcul des notes échoué pour le tour %s: %v", tourID, err)
		}
	}()
}

func roundToOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
