package store

import (
	"context"
	"errors"
	"time"

	"github.com/gocql/gocql"

	"trekora_back_end/internal/apperr"
	"trekora_back_end/internal/database"
	"trekora_back_end/internal/models"
)

type ReviewStore struct{}

func NewReviewStore() *ReviewStore { return &ReviewStore{} }

// RatingsForTour liste les notes courantes des avis d'un tour, pour le
// recalcul de la moyenne. Une seule partition lue.
func (s *ReviewStore) RatingsForTour(ctx context.Context, tourID string) ([]float64, error) {
	session, err := database.GetToursSession()
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(tourID)
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT rating FROM reviews_by_tour WHERE tour_id = ?", id).WithContext(ctx).Iter()

	var ratings []float64
	var r float64
	for iter.Scan(&r) {
		ratings = append(ratings, r)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return ratings, nil
}

// Insert crée l'avis. La table review_guard, clé ((tour_id), user_id) avec
// insertion conditionnelle, matérialise la contrainte « au plus un avis par
// couple (tour, utilisateur) ».
func (s *ReviewStore) Insert(ctx context.Context, r *models.Review) error {
	session, err := database.GetToursSession()
	if err != nil {
		return err
	}

	applied, err := session.Query(
		"INSERT INTO review_guard (tour_id, user_id, review_id) VALUES (?, ?, ?) IF NOT EXISTS",
		r.TourID, r.UserID, r.ID,
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return apperr.New(apperr.Conflict, "you have already reviewed this tour")
	}

	if err := session.Query(`
		INSERT INTO reviews (review_id, tour_id, user_id, user_name, rating, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.TourID, r.UserID, r.UserName, r.Rating, r.Body, r.CreatedAt, r.UpdatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return err
	}

	if err := session.Query(`
		INSERT INTO reviews_by_tour (tour_id, review_id, user_id, user_name, rating, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.TourID, r.ID, r.UserID, r.UserName, r.Rating, r.Body, r.CreatedAt, r.UpdatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return err
	}

	return session.Query(`
		INSERT INTO reviews_by_user (user_id, review_id, tour_id, rating, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.UserID, r.ID, r.TourID, r.Rating, r.Body, r.CreatedAt, r.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (s *ReviewStore) GetByID(ctx context.Context, reviewID string) (models.Review, error) {
	session, err := database.GetToursSession()
	if err != nil {
		return models.Review{}, err
	}
	id, err := parseUUID(reviewID)
	if err != nil {
		return models.Review{}, err
	}

	var r models.Review
	r.ID = id
	err = session.Query(`SELECT tour_id, user_id, user_name, rating, body, created_at, updated_at
		FROM reviews WHERE review_id = ?`, id).WithContext(ctx).
		Scan(&r.TourID, &r.UserID, &r.UserName, &r.Rating, &r.Body, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.Review{}, apperr.New(apperr.NotFound, "review not found")
	}
	if err != nil {
		return models.Review{}, err
	}
	return r, nil
}

// Update réécrit note et texte sur les trois tables.
func (s *ReviewStore) Update(ctx context.Context, r *models.Review) error {
	session, err := database.GetToursSession()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	r.UpdatedAt = now

	if err := session.Query("UPDATE reviews SET rating = ?, body = ?, updated_at = ? WHERE review_id = ?",
		r.Rating, r.Body, now, r.ID).WithContext(ctx).Exec(); err != nil {
		return err
	}
	if err := session.Query("UPDATE reviews_by_tour SET rating = ?, body = ?, updated_at = ? WHERE tour_id = ? AND review_id = ?",
		r.Rating, r.Body, now, r.TourID, r.ID).WithContext(ctx).Exec(); err != nil {
		return err
	}
	return session.Query("UPDATE reviews_by_user SET rating = ?, body = ?, updated_at = ? WHERE user_id = ? AND review_id = ?",
		r.Rating, r.Body, now, r.UserID, r.ID).WithContext(ctx).Exec()
}

// Delete retire l'avis des trois tables et libère le verrou (tour, user).
func (s *ReviewStore) Delete(ctx context.Context, r models.Review) error {
	session, err := database.GetToursSession()
	if err != nil {
		return err
	}

	if err := session.Query("DELETE FROM reviews_by_tour WHERE tour_id = ? AND review_id = ?",
		r.TourID, r.ID).WithContext(ctx).Exec(); err != nil {
		return err
	}
	if err := session.Query("DELETE FROM reviews_by_user WHERE user_id = ? AND review_id = ?",
		r.UserID, r.ID).WithContext(ctx).Exec(); err != nil {
		return err
	}
	if err := session.Query("DELETE FROM review_guard WHERE tour_id = ? AND user_id = ?",
		r.TourID, r.UserID).WithContext(ctx).Exec(); err != nil {
		return err
	}
	return session.Query("DELETE FROM reviews WHERE review_id = ?", r.ID).WithContext(ctx).Exec()
}

func (s *ReviewStore) ListByTour(ctx context.Context, tourID string) ([]models.Review, error) {
	session, err := database.GetToursSession()
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(tourID)
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT review_id, user_id, user_name, rating, body, created_at, updated_at
		FROM reviews_by_tour WHERE tour_id = ?`, id).WithContext(ctx).Iter()

	var out []models.Review
	var r models.Review
	for iter.Scan(&r.ID, &r.UserID, &r.UserName, &r.Rating, &r.Body, &r.CreatedAt, &r.UpdatedAt) {
		r.TourID = id
		out = append(out, r)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ReviewStore) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	session, err := database.GetToursSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT review_id, tour_id, rating, body, created_at, updated_at
		FROM reviews_by_user WHERE user_id = ?`, userID).WithContext(ctx).Iter()

	var out []models.Review
	var r models.Review
	for iter.Scan(&r.ID, &r.TourID, &r.Rating, &r.Body, &r.CreatedAt, &r.UpdatedAt) {
		r.UserID = userID
		out = append(out, r)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}
