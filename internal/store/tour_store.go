package store

import (
	"context"
	"errors"
	"time"

	"github.com/gocql/gocql"

	"trekora_back_end/internal/apperr"
	"trekora_back_end/internal/booking"
	"trekora_back_end/internal/capacity"
	"trekora_back_end/internal/database"
	"trekora_back_end/internal/models"
)

type TourStore struct{}

func NewTourStore() *TourStore { return &TourStore{} }

const tourColumns = `name, slug, summary, description, difficulty, price, price_discount,
	duration_days, max_group_size, ratings_average, ratings_quantity, start_dates,
	guides, image_cover, images, secret_tour, created_at, updated_at`

// TourForBooking : la vue réduite consommée par l'admission et le checkout.
func (s *TourStore) TourForBooking(ctx context.Context, tourID string) (booking.TourInfo, error) {
	session, err := database.GetToursSession()
	if err != nil {
		return booking.TourInfo{}, err
	}
	id, err := parseUUID(tourID)
	if err != nil {
		return booking.TourInfo{}, err
	}

	var (
		name, summary, imageCover string
		price                     float64
		maxGroupSize              int
		startDates                []time.Time
	)
	err = session.Query(`SELECT name, summary, price, max_group_size, start_dates, image_cover
		FROM tours WHERE tour_id = ?`, id).WithContext(ctx).
		Scan(&name, &summary, &price, &maxGroupSize, &startDates, &imageCover)
	if errors.Is(err, gocql.ErrNotFound) {
		return booking.TourInfo{}, apperr.New(apperr.NotFound, "tour not found")
	}
	if err != nil {
		return booking.TourInfo{}, err
	}

	days := make([]string, 0, len(startDates))
	for _, d := range startDates {
		days = append(days, capacity.DayKey(d))
	}

	return booking.TourInfo{
		ID:           tourID,
		Name:         name,
		Summary:      summary,
		Price:        price,
		MaxGroupSize: maxGroupSize,
		StartDays:    days,
		ImageCover:   imageCover,
	}, nil
}

func (s *TourStore) GetByID(ctx context.Context, tourID string) (models.Tour, error) {
	session, err := database.GetToursSession()
	if err != nil {
		return models.Tour{}, err
	}
	id, err := parseUUID(tourID)
	if err != nil {
		return models.Tour{}, err
	}

	var t models.Tour
	t.ID = id
	err = session.Query("SELECT "+tourColumns+" FROM tours WHERE tour_id = ?", id).WithContext(ctx).
		Scan(&t.Name, &t.Slug, &t.Summary, &t.Description, &t.Difficulty, &t.Price, &t.PriceDiscount,
			&t.DurationDays, &t.MaxGroupSize, &t.RatingsAverage, &t.RatingsQuantity, &t.StartDates,
			&t.Guides, &t.ImageCover, &t.Images, &t.SecretTour, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.Tour{}, apperr.New(apperr.NotFound, "tour not found")
	}
	if err != nil {
		return models.Tour{}, err
	}
	return t, nil
}

// List retourne tous les tours visibles. Les tours secrets sont filtrés côté
// application, comme les listings publics l'exigent.
func (s *TourStore) List(ctx context.Context) ([]models.Tour, error) {
	session, err := database.GetToursSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT tour_id, " + tourColumns + " FROM tours").WithContext(ctx).Iter()

	var out []models.Tour
	var t models.Tour
	for iter.Scan(&t.ID, &t.Name, &t.Slug, &t.Summary, &t.Description, &t.Difficulty, &t.Price, &t.PriceDiscount,
		&t.DurationDays, &t.MaxGroupSize, &t.RatingsAverage, &t.RatingsQuantity, &t.StartDates,
		&t.Guides, &t.ImageCover, &t.Images, &t.SecretTour, &t.CreatedAt, &t.UpdatedAt) {
		if t.SecretTour {
			continue
		}
		out = append(out, t)
		t = models.Tour{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TourStore) Insert(ctx context.Context, t *models.Tour) error {
	session, err := database.GetToursSession()
	if err != nil {
		return err
	}

	return session.Query(`INSERT INTO tours (tour_id, `+tourColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Slug, t.Summary, t.Description, t.Difficulty, t.Price, t.PriceDiscount,
		t.DurationDays, t.MaxGroupSize, t.RatingsAverage, t.RatingsQuantity, t.StartDates,
		t.Guides, t.ImageCover, t.Images, t.SecretTour, t.CreatedAt, t.UpdatedAt,
	).WithContext(ctx).Exec()
}

// Update réécrit les champs éditables. Les champs dérivés ratings_average et
// ratings_quantity ne passent JAMAIS par ici : seul l'agrégateur les écrit.
func (s *TourStore) Update(ctx context.Context, t *models.Tour) error {
	session, err := database.GetToursSession()
	if err != nil {
		return err
	}

	return session.Query(`UPDATE tours SET name = ?, slug = ?, summary = ?, description = ?,
		difficulty = ?, price = ?, price_discount = ?, duration_days = ?, max_group_size = ?,
		start_dates = ?, guides = ?, image_cover = ?, images = ?, secret_tour = ?, updated_at = ?
		WHERE tour_id = ?`,
		t.Name, t.Slug, t.Summary, t.Description, t.Difficulty, t.Price, t.PriceDiscount,
		t.DurationDays, t.MaxGroupSize, t.StartDates, t.Guides, t.ImageCover, t.Images,
		t.SecretTour, time.Now().UTC(), t.ID,
	).WithContext(ctx).Exec()
}

func (s *TourStore) Delete(ctx context.Context, tourID string) error {
	session, err := database.GetToursSession()
	if err != nil {
		return err
	}
	id, err := parseUUID(tourID)
	if err != nil {
		return err
	}
	return session.Query("DELETE FROM tours WHERE tour_id = ?", id).WithContext(ctx).Exec()
}

// UpdateTourRatings pose l'agrégat dérivé. Les deux colonnes partent dans la
// même écriture : un lecteur ne voit jamais une moyenne sans sa quantité.
func (s *TourStore) UpdateTourRatings(ctx context.Context, tourID string, average float64, quantity int) error {
	session, err := database.GetToursSession()
	if err != nil {
		return err
	}
	id, err := parseUUID(tourID)
	if err != nil {
		return err
	}

	return session.Query("UPDATE tours SET ratings_average = ?, ratings_quantity = ? WHERE tour_id = ?",
		average, quantity, id).WithContext(ctx).Exec()
}
