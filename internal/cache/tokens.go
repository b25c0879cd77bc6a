// Package cache gère l'état d'authentification éphémère dans Redis :
// refresh tokens et blacklist JWT (révocation avant expiration).
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type TokenCache struct {
	rdb *redis.Client
}

func NewTokenCache(rdb *redis.Client) *TokenCache {
	return &TokenCache{rdb: rdb}
}

// --- Refresh Tokens ---

// StoreRefreshToken stocke le refresh token d'un utilisateur.
func (t *TokenCache) StoreRefreshToken(ctx context.Context, userID, refreshToken string, duration time.Duration) error {
	key := fmt.Sprintf("refresh:%s", userID)
	return t.rdb.Set(ctx, key, refreshToken, duration).Err()
}

func (t *TokenCache) GetRefreshToken(ctx context.Context, userID string) (string, error) {
	key := fmt.Sprintf("refresh:%s", userID)
	return t.rdb.Get(ctx, key).Result()
}

// DeleteRefreshToken supprime le refresh token (logout).
func (t *TokenCache) DeleteRefreshToken(ctx context.Context, userID string) error {
	key := fmt.Sprintf("refresh:%s", userID)
	return t.rdb.Del(ctx, key).Err()
}

// --- Blacklist JWT ---

// BlacklistToken révoque un token jusqu'à son expiration naturelle.
func (t *TokenCache) BlacklistToken(ctx context.Context, tokenID string, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}
	key := fmt.Sprintf("blacklist:%s", tokenID)
	return t.rdb.Set(ctx, key, "revoked", duration).Err()
}

func (t *TokenCache) IsTokenBlacklisted(ctx context.Context, tokenID string) bool {
	key := fmt.Sprintf("blacklist:%s", tokenID)
	exists, err := t.rdb.Exists(ctx, key).Result()
	if err != nil {
		log.Printf("⚠️ Erreur vérification blacklist: %v", err)
		return false
	}
	return exists > 0
}
