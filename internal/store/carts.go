package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"

	"kartly_back_end/internal/models"
)

const (
	cartCacheTTL = 30 * 24 * time.Hour
	guestCartTTL = 7 * 24 * time.Hour
)

// cachedCart porte le document et sa version CAS dans Redis.
type cachedCart struct {
	Cart    models.Cart `json:"cart"`
	Version int64       `json:"version"`
}

func cartKey(userID string) string     { return "cart:" + userID }
func guestKey(sessionID string) string { return "guest_cart:" + sessionID }

// CartChannel est le canal pub/sub notifié à chaque mutation du panier.
func CartChannel(userID string) string { return "cart:" + userID }

// LoadCart retourne le document panier de l'utilisateur : Redis d'abord,
// ScyllaDB sinon. Un utilisateur sans panier reçoit un document vide
// (version 0 — le premier SaveCart fera un INSERT conditionnel).
func (s *Store) LoadCart(ctx context.Context, userID string) (models.Cart, error) {
	data, err := s.Redis.Get(ctx, cartKey(userID)).Result()
	if err == nil && data != "" {
		var cached cachedCart
		if json.Unmarshal([]byte(data), &cached) == nil {
			cached.Cart.UserID = userID
			cached.Cart.Version = cached.Version
			return cached.Cart, nil
		}
	}

	var (
		doc     string
		version int64
	)
	err = s.Scylla.Query(cqlGetCart, userID).WithContext(ctx).Scan(&doc, &version)
	if errors.Is(err, gocql.ErrNotFound) {
		return emptyCart(userID), nil
	}
	if err != nil {
		return models.Cart{}, err
	}

	var c models.Cart
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return models.Cart{}, err
	}
	c.UserID = userID
	c.Version = version
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	if c.SavedItems == nil {
		c.SavedItems = []models.SavedItem{}
	}

	s.cacheCart(ctx, c)
	return c, nil
}

// SaveCart upserte le document complet (items + savedItems) en un seul
// écrit conditionnel : INSERT IF NOT EXISTS pour un panier neuf, sinon
// UPDATE IF version = n. Retourne false si un autre écrivain est passé
// entre temps — l'appelant recharge et refusionne.
func (s *Store) SaveCart(ctx context.Context, c *models.Cart, event string) (bool, error) {
	c.UpdatedAt = time.Now()
	doc, err := json.Marshal(c)
	if err != nil {
		return false, err
	}

	var applied bool
	if c.Version == 0 {
		applied, err = s.Scylla.Query(cqlInsertCart, c.UserID, string(doc), c.UpdatedAt).
			WithContext(ctx).MapScanCAS(map[string]interface{}{})
		if err != nil {
			return false, err
		}
		if applied {
			c.Version = 1
		}
	} else {
		next := c.Version + 1
		applied, err = s.Scylla.Query(cqlUpdateCart, string(doc), next, c.UpdatedAt, c.UserID, c.Version).
			WithContext(ctx).MapScanCAS(map[string]interface{}{})
		if err != nil {
			return false, err
		}
		if applied {
			c.Version = next
		}
	}

	if !applied {
		// la version en base a bougé — on invalide le cache pour forcer
		// la relecture
		s.Redis.Del(ctx, cartKey(c.UserID))
		return false, nil
	}

	s.cacheCart(ctx, *c)
	if event != "" {
		s.Redis.Publish(ctx, CartChannel(c.UserID), event)
	}
	return true, nil
}

func (s *Store) cacheCart(ctx context.Context, c models.Cart) {
	data, err := json.Marshal(cachedCart{Cart: c, Version: c.Version})
	if err != nil {
		return
	}
	s.Redis.Set(ctx, cartKey(c.UserID), data, cartCacheTTL)
}

// SubscribeCart abonne au canal pub/sub du panier (sync temps réel).
func (s *Store) SubscribeCart(ctx context.Context, userID string) *redis.PubSub {
	return s.Redis.Subscribe(ctx, CartChannel(userID))
}

func emptyCart(userID string) models.Cart {
	return models.Cart{
		UserID:     userID,
		Items:      []models.CartItem{},
		SavedItems: []models.SavedItem{},
	}
}

// --- Panier invité (éphémère, Redis uniquement) ---

// GuestCart retourne le panier invité lié au cookie de session, ou un
// panier vide si aucun.
func (s *Store) GuestCart(ctx context.Context, sessionID string) (models.Cart, error) {
	data, err := s.Redis.Get(ctx, guestKey(sessionID)).Result()
	if err != nil || data == "" {
		return emptyCart(""), nil
	}

	var c models.Cart
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return emptyCart(""), nil
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	if c.SavedItems == nil {
		c.SavedItems = []models.SavedItem{}
	}
	return c, nil
}

func (s *Store) SaveGuestCart(ctx context.Context, sessionID string, c models.Cart) error {
	c.UpdatedAt = time.Now()
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, guestKey(sessionID), data, guestCartTTL).Err()
}

// DeleteGuestCart est appelé après fusion dans le panier utilisateur.
func (s *Store) DeleteGuestCart(ctx context.Context, sessionID string) {
	s.Redis.Del(ctx, guestKey(sessionID))
}
