package store

import (
	"context"
	"errors"
	"time"

	"github.com/gocql/gocql"

	"kartly_back_end/internal/models"
)

var (
	ErrEmailTaken   = errors.New("email déjà enregistré")
	ErrUserNotFound = errors.New("utilisateur introuvable")
)

// CreateUser réserve d'abord l'email via un LWT sur users_by_email, puis
// insère la fiche. Le LWT garantit l'unicité email même sous concurrence.
func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	applied, err := s.Scylla.Query(cqlReserveEmail, user.Email, user.ID).
		WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return ErrEmailTaken
	}

	createdAt := time.Now()
	if user.CreatedAt != nil {
		createdAt = *user.CreatedAt
	}

	return s.Scylla.Query(cqlInsertUser,
		user.ID, user.Email, user.Password, user.Name,
		user.Provider, user.ProviderID, createdAt).
		WithContext(ctx).Exec()
}

// GetUserByEmail passe par la table inversée users_by_email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var userID string
	err := s.Scylla.Query(cqlUserIDByEmail, email).WithContext(ctx).Scan(&userID)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return s.GetUserByID(ctx, userID)
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	var (
		email, password, name, provider, providerID string
		createdAt                                   time.Time
	)
	err := s.Scylla.Query(cqlGetUserByID, userID).WithContext(ctx).
		Scan(&email, &password, &name, &provider, &providerID, &createdAt)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	return models.User{
		ID:         userID,
		Email:      email,
		Password:   password,
		Name:       name,
		Provider:   provider,
		ProviderID: providerID,
		CreatedAt:  &createdAt,
	}, nil
}
