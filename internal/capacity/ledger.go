// Package capacity calcule l'occupation des départs de tours à partir des
// réservations confirmées. L'occupation n'est jamais stockée comme compteur :
// elle est toujours dérivée des réservations au moment de la lecture.
package capacity

import (
	"context"
	"time"
)

// DayKey normalise un instant vers son jour calendaire UTC (YYYY-MM-DD).
// Les réservations sont écrites ET lues avec cette même clé, quelle que soit
// l'heure portée par la date d'origine — sinon deux fuseaux différents
// compteraient le même départ deux fois.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Slot identifie un départ : un tour et un jour calendaire UTC.
type Slot struct {
	TourID string
	Day    string
}

// BookingCounter : la vue minimale du stockage des réservations dont le
// registre a besoin.
type BookingCounter interface {
	// CountBySlot compte les réservations confirmées du couple (tour, jour).
	CountBySlot(ctx context.Context, tourID, day string) (int, error)
	// CountAllSlots retourne l'occupation de tous les couples (tour, jour)
	// en une seule requête, pour les vues de liste.
	CountAllSlots(ctx context.Context) (map[Slot]int, error)
}

type Ledger struct {
	bookings BookingCounter
}

func NewLedger(bookings BookingCounter) *Ledger {
	return &Ledger{bookings: bookings}
}

// Occupancy retourne le nombre de places prises pour un tour à une date
// donnée. Aucune réservation → 0, jamais d'erreur visible côté client.
func (l *Ledger) Occupancy(ctx context.Context, tourID string, startDate time.Time) (int, error) {
	return l.bookings.CountBySlot(ctx, tourID, DayKey(startDate))
}

// Available calcule les places restantes à partir de la capacité du tour.
func (l *Ledger) Available(ctx context.Context, tourID string, startDate time.Time, maxGroupSize int) (int, error) {
	occupied, err := l.Occupancy(ctx, tourID, startDate)
	if err != nil {
		return 0, err
	}
	return maxGroupSize - occupied, nil
}

// OccupancyByTourAndDate retourne l'occupation de tous les départs en une
// passe, pour éviter une requête par couple (tour, date) dans les listings.
func (l *Ledger) OccupancyByTourAndDate(ctx context.Context) (map[Slot]int, error) {
	return l.bookings.CountAllSlots(ctx)
}
