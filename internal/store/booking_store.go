// Package store : implémentations ScyllaDB des interfaces de stockage
// consommées par les packages capacity, booking et ratings. Les tables sont
// dénormalisées par chemin de lecture (voir scripts/scylladb_init.cql).
package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"trekora_back_end/internal/apperr"
	"trekora_back_end/internal/booking"
	"trekora_back_end/internal/capacity"
	"trekora_back_end/internal/database"
	"trekora_back_end/internal/models"
)

type BookingStore struct{}

func NewBookingStore() *BookingStore { return &BookingStore{} }

// CountBySlot compte les réservations du couple (tour, jour calendaire UTC).
// La partition bookings_by_slot est clé par (tour_id, start_day) : le compte
// ne touche qu'une partition, jamais de verrou partagé entre tours.
func (s *BookingStore) CountBySlot(ctx context.Context, tourID, day string) (int, error) {
	session, err := database.GetBookingsSession()
	if err != nil {
		return 0, err
	}
	tourUUID, err := parseUUID(tourID)
	if err != nil {
		return 0, err
	}

	// Une *gocql.Query neuve par appel : le driver met le prepared statement
	// en cache, et un Query partagé serait écrasé par les requêtes concurrentes.
	var count int
	if err := session.Query(database.StmtCountSlot, tourUUID, day).WithContext(ctx).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountAllSlots agrège l'occupation de tous les départs en une seule requête,
// regroupée côté application (pas de GROUP BY multi-partitions en CQL).
func (s *BookingStore) CountAllSlots(ctx context.Context) (map[capacity.Slot]int, error) {
	session, err := database.GetBookingsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT tour_id, start_day FROM bookings_by_slot").WithContext(ctx).Iter()

	counts := make(map[capacity.Slot]int)
	var tourID gocql.UUID
	var day string
	for iter.Scan(&tourID, &day) {
		counts[capacity.Slot{TourID: tourID.String(), Day: day}]++
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return counts, nil
}

// HasBookingForTour : exclusivité une-réservation-par-tour, toute date
// confondue.
func (s *BookingStore) HasBookingForTour(ctx context.Context, userID, tourID string) (bool, error) {
	session, err := database.GetBookingsSession()
	if err != nil {
		return false, err
	}
	tourUUID, err := parseUUID(tourID)
	if err != nil {
		return false, err
	}

	var found gocql.UUID
	err = session.Query("SELECT booking_id FROM bookings_by_user WHERE user_id = ? AND tour_id = ? LIMIT 1",
		userID, tourUUID).WithContext(ctx).Scan(&found)
	if errors.Is(err, gocql.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ClaimSeat pose la réservation sur le premier siège libre du départ par
// INSERT ... IF NOT EXISTS (transaction légère Scylla). La clé primaire
// ((tour_id, start_day), seat_no) garantit qu'un siège donné ne peut être
// pris qu'une fois : deux confirmations concurrentes pour la dernière place
// ne peuvent pas réussir toutes les deux.
func (s *BookingStore) ClaimSeat(ctx context.Context, b *models.Booking, maxGroupSize int) error {
	session, err := database.GetBookingsSession()
	if err != nil {
		return err
	}

	for seat := 1; seat <= maxGroupSize; seat++ {
		applied, err := session.Query(`
			INSERT INTO bookings_by_slot (tour_id, start_day, seat_no, booking_id, user_id, price, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
			b.TourID, b.StartDay, seat, b.ID, b.UserID, b.Price, b.CreatedAt,
		).WithContext(ctx).MapScanCAS(map[string]interface{}{})
		if err != nil {
			return err
		}
		if !applied {
			// siège déjà pris, on tente le suivant
			continue
		}

		b.SeatNo = seat
		if err := s.insertIndexRows(ctx, session, b); err != nil {
			// Le siège est acquis mais la ligne canonique manque : on libère le
			// siège, sinon il resterait consommé sans réservation visible.
			if rbErr := session.Query("DELETE FROM bookings_by_slot WHERE tour_id = ? AND start_day = ? AND seat_no = ?",
				b.TourID, b.StartDay, seat).WithContext(ctx).Exec(); rbErr != nil {
				log.Printf("🚨 Siège %d non libéré après échec d'écriture (tour %s, départ %s): %v",
					seat, b.TourID, b.StartDay, rbErr)
			}
			b.SeatNo = 0
			return err
		}
		return nil
	}

	return booking.ErrSlotFull
}

// insertIndexRows écrit la ligne canonique et l'index par utilisateur une
// fois le siège acquis.
func (s *BookingStore) insertIndexRows(ctx context.Context, session *gocql.Session, b *models.Booking) error {
	if err := session.Query(`
		INSERT INTO bookings (booking_id, tour_id, user_id, start_day, seat_no, price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.TourID, b.UserID, b.StartDay, b.SeatNo, b.Price, b.CreatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return err
	}

	return session.Query(`
		INSERT INTO bookings_by_user (user_id, tour_id, start_day, booking_id, seat_no, price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.TourID, b.StartDay, b.ID, b.SeatNo, b.Price, b.CreatedAt,
	).WithContext(ctx).Exec()
}

// ListByUser retourne les réservations d'un utilisateur (mes réservations).
func (s *BookingStore) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	session, err := database.GetBookingsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT booking_id, tour_id, start_day, seat_no, price, created_at
		FROM bookings_by_user WHERE user_id = ?`, userID).WithContext(ctx).Iter()

	var out []models.Booking
	var b models.Booking
	for iter.Scan(&b.ID, &b.TourID, &b.StartDay, &b.SeatNo, &b.Price, &b.CreatedAt) {
		b.UserID = userID
		out = append(out, b)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll : vue d'administration, parcourt la table canonique.
func (s *BookingStore) ListAll(ctx context.Context) ([]models.Booking, error) {
	session, err := database.GetBookingsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT booking_id, tour_id, user_id, start_day, seat_no, price, created_at
		FROM bookings`).WithContext(ctx).Iter()

	var out []models.Booking
	var b models.Booking
	for iter.Scan(&b.ID, &b.TourID, &b.UserID, &b.StartDay, &b.SeatNo, &b.Price, &b.CreatedAt) {
		out = append(out, b)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BookingStore) GetByID(ctx context.Context, bookingID string) (models.Booking, error) {
	session, err := database.GetBookingsSession()
	if err != nil {
		return models.Booking{}, err
	}
	id, err := parseUUID(bookingID)
	if err != nil {
		return models.Booking{}, err
	}

	var b models.Booking
	b.ID = id
	err = session.Query(`SELECT tour_id, user_id, start_day, seat_no, price, created_at
		FROM bookings WHERE booking_id = ?`, id).WithContext(ctx).
		Scan(&b.TourID, &b.UserID, &b.StartDay, &b.SeatNo, &b.Price, &b.CreatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.Booking{}, apperr.New(apperr.NotFound, "booking not found")
	}
	if err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// UpdatePrice : seule mutation d'administration autorisée, le prix est
// répliqué sur les trois tables.
func (s *BookingStore) UpdatePrice(ctx context.Context, b models.Booking, price float64) error {
	session, err := database.GetBookingsSession()
	if err != nil {
		return err
	}

	if err := session.Query("UPDATE bookings SET price = ? WHERE booking_id = ?",
		price, b.ID).WithContext(ctx).Exec(); err != nil {
		return err
	}
	if err := session.Query("UPDATE bookings_by_user SET price = ? WHERE user_id = ? AND tour_id = ? AND start_day = ? AND booking_id = ?",
		price, b.UserID, b.TourID, b.StartDay, b.ID).WithContext(ctx).Exec(); err != nil {
		return err
	}
	return session.Query("UPDATE bookings_by_slot SET price = ? WHERE tour_id = ? AND start_day = ? AND seat_no = ?",
		price, b.TourID, b.StartDay, b.SeatNo).WithContext(ctx).Exec()
}

// Delete supprime la réservation des trois tables. Le siège redevient libre :
// l'occupation étant toujours recomptée depuis bookings_by_slot, aucune autre
// écriture n'est nécessaire.
func (s *BookingStore) Delete(ctx context.Context, b models.Booking) error {
	session, err := database.GetBookingsSession()
	if err != nil {
		return err
	}

	if err := session.Query("DELETE FROM bookings_by_slot WHERE tour_id = ? AND start_day = ? AND seat_no = ?",
		b.TourID, b.StartDay, b.SeatNo).WithContext(ctx).Exec(); err != nil {
		return err
	}
	if err := session.Query("DELETE FROM bookings_by_user WHERE user_id = ? AND tour_id = ? AND start_day = ? AND booking_id = ?",
		b.UserID, b.TourID, b.StartDay, b.ID).WithContext(ctx).Exec(); err != nil {
		return err
	}
	return session.Query("DELETE FROM bookings WHERE booking_id = ?", b.ID).WithContext(ctx).Exec()
}

func parseUUID(s string) (gocql.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return gocql.UUID{}, apperr.Wrap(apperr.Validation, fmt.Sprintf("invalid identifier: %s", s), err)
	}
	return gocql.UUID(u), nil
}
