// Package handlers expose la surface REST. Chaque handler reçoit son
// store par injection — aucun état global.
package handlers

import (
	"context"
	"time"

	"kartly_back_end/internal/models"
)

// CartStore persiste les documents panier (utilisateur et invité).
type CartStore interface {
	LoadCart(ctx context.Context, userID string) (models.Cart, error)
	// SaveCart retourne false (sans erreur) si la version CAS a bougé.
	SaveCart(ctx context.Context, c *models.Cart, event string) (bool, error)
	GuestCart(ctx context.Context, sessionID string) (models.Cart, error)
	SaveGuestCart(ctx context.Context, sessionID string, c models.Cart) error
	DeleteGuestCart(ctx context.Context, sessionID string)
}

// UserStore persiste les comptes.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, userID string) (models.User, error)
}

// TokenStore gère refresh tokens et blacklist d'accès.
type TokenStore interface {
	StoreRefreshToken(ctx context.Context, userID, refreshToken string, duration time.Duration) error
	GetRefreshToken(ctx context.Context, userID string) (string, error)
	DeleteRefreshToken(ctx context.Context, userID string) error
	BlacklistToken(ctx context.Context, tokenID string, duration time.Duration) error
}

// OrderStore persiste les commandes immuables.
type OrderStore interface {
	InsertOrder(ctx context.Context, order *models.Order) error
	ListOrders(ctx context.Context) ([]models.Order, error)
}
