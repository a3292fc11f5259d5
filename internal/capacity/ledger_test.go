package capacity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trekora_back_end/internal/capacity"
)

type fakeCounter struct {
	counts map[capacity.Slot]int
}

func (f *fakeCounter) CountBySlot(ctx context.Context, tourID, day string) (int, error) {
	return f.counts[capacity.Slot{TourID: tourID, Day: day}], nil
}

func (f *fakeCounter) CountAllSlots(ctx context.Context) (map[capacity.Slot]int, error) {
	return f.counts, nil
}

// TestDayKey vérifie la normalisation en jour calendaire UTC : deux instants
// du même jour UTC donnent la même clé, quelle que soit l'heure.
func TestDayKey(t *testing.T) {
	morning := time.Date(2025, 7, 15, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 7, 15, 23, 59, 59, 0, time.UTC)

	require.Equal(t, "2025-07-15", capacity.DayKey(morning))
	require.Equal(t, capacity.DayKey(morning), capacity.DayKey(evening))
}

// TestDayKey_timezones : un même instant exprimé dans deux fuseaux différents
// donne la même clé, et un horaire local peut basculer sur le jour UTC voisin.
func TestDayKey_timezones(t *testing.T) {
	paris := time.FixedZone("CEST", 2*60*60)
	tokyo := time.FixedZone("JST", 9*60*60)

	// 15 juillet 14:00 à Paris == 15 juillet 21:00 à Tokyo
	inParis := time.Date(2025, 7, 15, 14, 0, 0, 0, paris)
	inTokyo := time.Date(2025, 7, 15, 21, 0, 0, 0, tokyo)
	require.Equal(t, capacity.DayKey(inParis), capacity.DayKey(inTokyo))

	// 01:00 à Paris le 15 == 23:00 UTC le 14 : la clé est le jour UTC
	earlyParis := time.Date(2025, 7, 15, 1, 0, 0, 0, paris)
	require.Equal(t, "2025-07-14", capacity.DayKey(earlyParis))
}

// TestOccupancy_normalisation : l'occupation est lue avec la même clé que
// celle des écritures, l'heure portée par la date demandée est ignorée.
func TestOccupancy_normalisation(t *testing.T) {
	counter := &fakeCounter{counts: map[capacity.Slot]int{
		{TourID: "tour-1", Day: "2025-07-15"}: 3,
	}}
	ledger := capacity.NewLedger(counter)

	midi := time.Date(2025, 7, 15, 12, 30, 0, 0, time.UTC)
	occupied, err := ledger.Occupancy(context.Background(), "tour-1", midi)
	require.NoError(t, err)
	require.Equal(t, 3, occupied)

	// Même jour vu depuis un autre fuseau : même compte
	tokyo := time.FixedZone("JST", 9*60*60)
	soir := time.Date(2025, 7, 15, 21, 0, 0, 0, tokyo)
	occupied, err = ledger.Occupancy(context.Background(), "tour-1", soir)
	require.NoError(t, err)
	require.Equal(t, 3, occupied)
}

// TestOccupancy_aucuneReservation : un départ jamais réservé affiche zéro
// occupant, pas une erreur.
func TestOccupancy_aucuneReservation(t *testing.T) {
	ledger := capacity.NewLedger(&fakeCounter{counts: map[capacity.Slot]int{}})

	occupied, err := ledger.Occupancy(context.Background(), "tour-inconnu",
		time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Zero(t, occupied)
}

func TestAvailable(t *testing.T) {
	counter := &fakeCounter{counts: map[capacity.Slot]int{
		{TourID: "tour-1", Day: "2025-07-15"}: 12,
	}}
	ledger := capacity.NewLedger(counter)
	day := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)

	available, err := ledger.Available(context.Background(), "tour-1", day, 15)
	require.NoError(t, err)
	require.Equal(t, 3, available)
}

// TestOccupancyByTourAndDate : la vue globale regroupe chaque couple
// (tour, jour) séparément.
func TestOccupancyByTourAndDate(t *testing.T) {
	counter := &fakeCounter{counts: map[capacity.Slot]int{
		{TourID: "tour-1", Day: "2025-07-15"}: 2,
		{TourID: "tour-1", Day: "2025-08-01"}: 5,
		{TourID: "tour-2", Day: "2025-07-15"}: 1,
	}}
	ledger := capacity.NewLedger(counter)

	counts, err := ledger.OccupancyByTourAndDate(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 3)
	require.Equal(t, 2, counts[capacity.Slot{TourID: "tour-1", Day: "2025-07-15"}])
	require.Equal(t, 5, counts[capacity.Slot{TourID: "tour-1", Day: "2025-08-01"}])
	require.Equal(t, 1, counts[capacity.Slot{TourID: "tour-2", Day: "2025-07-15"}])
}
