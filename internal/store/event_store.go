package store

import (
	"context"
	"log"
	"time"

	"trekora_back_end/internal/database"
)

// ProcessedEventStore mémorise les identifiants d'événements de paiement déjà
// traités. La livraison du webhook est au-moins-une-fois : c'est cette table
// qui rend la réconciliation idempotente.
type ProcessedEventStore struct{}

func NewProcessedEventStore() *ProcessedEventStore { return &ProcessedEventStore{} }

// MarkProcessed enregistre l'événement et retourne false si un autre
// traitement l'a déjà pris : l'insertion conditionnelle tranche aussi les
// relivraisons concurrentes.
func (s *ProcessedEventStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	session, err := database.GetBookingsSession()
	if err != nil {
		return false, err
	}

	applied, err := session.Query(
		"INSERT INTO processed_events (event_id, processed_at) VALUES (?, ?) IF NOT EXISTS",
		eventID, time.Now().UTC(),
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// BookingConflictStore trace les confirmations de paiement qui n'ont pas pu
// produire de réservation (course perdue sur la dernière place, référence
// introuvable). Jamais supprimé automatiquement : c'est la file de travail
// des opérateurs.
type BookingConflictStore struct{}

func NewBookingConflictStore() *BookingConflictStore { return &BookingConflictStore{} }

func (s *BookingConflictStore) RecordConflict(ctx context.Context, eventID, tourID, day, email, reason string) {
	log.Printf("🚨 Conflit de réservation : event=%s tour=%s jour=%s email=%s — %s", eventID, tourID, day, email, reason)

	session, err := database.GetBookingsSession()
	if err != nil {
		log.Printf("❌ Impossible d'enregistrer le conflit %s: %v", eventID, err)
		return
	}

	if err := session.Query(`
		INSERT INTO booking_conflicts (event_id, tour_id, start_day, customer_email, reason, flagged_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		eventID, tourID, day, email, reason, time.Now().UTC(),
	).WithContext(ctx).Exec(); err != nil {
		log.Printf("❌ Impossible d'enregistrer le conflit %s: %v", eventID, err)
	}
}

// ListConflicts : consultation par les admins des paiements à arbitrer.
func (s *BookingConflictStore) ListConflicts(ctx context.Context) ([]map[string]interface{}, error) {
	session, err := database.GetBookingsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT event_id, tour_id, start_day, customer_email, reason, flagged_at
		FROM booking_conflicts`).WithContext(ctx).Iter()

	var out []map[string]interface{}
	var eventID, tourID, day, email, reason string
	var flaggedAt time.Time
	for iter.Scan(&eventID, &tourID, &day, &email, &reason, &flaggedAt) {
		out = append(out, map[string]interface{}{
			"event_id":       eventID,
			"tour_id":        tourID,
			"start_day":      day,
			"customer_email": email,
			"reason":         reason,
			"flagged_at":     flaggedAt,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}
