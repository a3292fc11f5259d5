package ratings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"trekora_back_end/internal/models"
	"trekora_back_end/internal/ratings"
)

type fakeReviews struct {
	ratings map[string][]float64
}

func (f *fakeReviews) RatingsForTour(ctx context.Context, tourID string) ([]float64, error) {
	return f.ratings[tourID], nil
}

// fakeWriter capture chaque écriture d'agrégat : moyenne et quantité arrivent
// toujours ensemble, dans le même appel.
type fakeWriter struct {
	writes []models.TourRating
}

func (f *fakeWriter) UpdateTourRatings(ctx context.Context, tourID string, average float64, quantity int) error {
	f.writes = append(f.writes, models.TourRating{Average: average, Count: quantity})
	return nil
}

func TestRecompute_moyenne(t *testing.T) {
	reviews := &fakeReviews{ratings: map[string][]float64{
		"tour-1": {4, 5, 3},
	}}
	writer := &fakeWriter{}

	agg := ratings.NewAggregator(reviews, writer)
	result, err := agg.Recompute(context.Background(), "tour-1")

	require.NoError(t, err)
	require.Equal(t, 4.0, result.Average)
	require.Equal(t, 3, result.Count)
}

// TestRecompute_arrondi : la moyenne est arrondie à une décimale.
func TestRecompute_arrondi(t *testing.T) {
	reviews := &fakeReviews{ratings: map[string][]float64{
		"tour-1": {4, 4, 5}, // 13/3 = 4.333...
		"tour-2": {4, 5, 5}, // 14/3 = 4.666...
	}}
	writer := &fakeWriter{}
	agg := ratings.NewAggregator(reviews, writer)

	result, err := agg.Recompute(context.Background(), "tour-1")
	require.NoError(t, err)
	require.Equal(t, 4.3, result.Average)

	result, err = agg.Recompute(context.Background(), "tour-2")
	require.NoError(t, err)
	require.Equal(t, 4.7, result.Average)
}

// TestRecompute_dernierAvisSupprime : plus aucun avis → retour aux valeurs
// par défaut, pas de division par zéro.
func TestRecompute_dernierAvisSupprime(t *testing.T) {
	reviews := &fakeReviews{ratings: map[string][]float64{}}
	writer := &fakeWriter{}

	agg := ratings.NewAggregator(reviews, writer)
	result, err := agg.Recompute(context.Background(), "tour-1")

	require.NoError(t, err)
	require.Equal(t, models.DefaultRatingsAverage, result.Average)
	require.Equal(t, models.DefaultRatingsQuantity, result.Count)
}

// TestRecompute_ecritureUnique : les deux champs dérivés partent dans une
// seule écriture.
func TestRecompute_ecritureUnique(t *testing.T) {
	reviews := &fakeReviews{ratings: map[string][]float64{
		"tour-1": {5},
	}}
	writer := &fakeWriter{}

	agg := ratings.NewAggregator(reviews, writer)
	_, err := agg.Recompute(context.Background(), "tour-1")

	require.NoError(t, err)
	require.Len(t, writer.writes, 1)
	require.Equal(t, 5.0, writer.writes[0].Average)
	require.Equal(t, 1, writer.writes[0].Count)
}
