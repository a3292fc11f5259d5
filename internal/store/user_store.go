package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"trekora_back_end/internal/apperr"
	"trekora_back_end/internal/database"
	"trekora_back_end/internal/models"
)

type UserStore struct{}

func NewUserStore() *UserStore { return &UserStore{} }

func (s *UserStore) UserByID(ctx context.Context, userID string) (models.User, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return models.User{}, err
	}
	id, err := parseUUID(userID)
	if err != nil {
		return models.User{}, err
	}

	var u models.User
	u.ID = userID
	err = session.Query(`SELECT email, password, name, role, photo, provider, provider_id, active
		FROM users WHERE user_id = ?`, id).WithContext(ctx).
		Scan(&u.Email, &u.Password, &u.Name, &u.Role, &u.Photo, &u.Provider, &u.ProviderID, &u.Active)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.User{}, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return models.User{}, err
	}
	if !u.Active {
		return models.User{}, apperr.New(apperr.NotFound, "user not found")
	}
	return u, nil
}

// UserByEmail résout d'abord l'identifiant via la table users_by_email.
// Utilisé par le login et par la réconciliation de paiement (customer_email).
func (s *UserStore) UserByEmail(ctx context.Context, email string) (models.User, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return models.User{}, err
	}

	var id gocql.UUID
	err = session.Query(database.StmtUserByEmail, strings.ToLower(email)).WithContext(ctx).Scan(&id)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.User{}, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return models.User{}, err
	}
	return s.UserByID(ctx, id.String())
}

// Insert crée le compte. L'unicité de l'e-mail est tenue par une insertion
// conditionnelle sur users_by_email.
func (s *UserStore) Insert(ctx context.Context, u *models.User) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	id, err := parseUUID(u.ID)
	if err != nil {
		return err
	}
	email := strings.ToLower(u.Email)

	applied, err := session.Query(
		"INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS",
		email, id,
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return apperr.New(apperr.Conflict, "an account with this email already exists")
	}

	now := time.Now().UTC()
	return session.Query(`INSERT INTO users (user_id, email, password, name, role, photo, provider, provider_id, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, email, u.Password, u.Name, u.Role, u.Photo, u.Provider, u.ProviderID, true, now, now,
	).WithContext(ctx).Exec()
}
