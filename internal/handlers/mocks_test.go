package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"kartly_back_end/internal/models"
	"kartly_back_end/internal/store"
)

// memCartStore garde les paniers en mémoire et simule la version CAS.
// conflicts force n échecs SaveCart consécutifs pour tester les retries.
type memCartStore struct {
	mu        sync.Mutex
	carts     map[string]models.Cart
	guests    map[string]models.Cart
	conflicts int
	events    []string
}

func newMemCartStore() *memCartStore {
	return &memCartStore{
		carts:  make(map[string]models.Cart),
		guests: make(map[string]models.Cart),
	}
}

func (m *memCartStore) LoadCart(_ context.Context, userID string) (models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[userID]; ok {
		return c, nil
	}
	return models.Cart{UserID: userID, Items: []models.CartItem{}, SavedItems: []models.SavedItem{}}, nil
}

func (m *memCartStore) SaveCart(_ context.Context, c *models.Cart, event string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts > 0 {
		m.conflicts--
		return false, nil
	}
	stored, ok := m.carts[c.UserID]
	if ok && stored.Version != c.Version {
		return false, nil
	}
	c.Version++
	c.UpdatedAt = time.Now()
	m.carts[c.UserID] = *c
	m.events = append(m.events, event)
	return true, nil
}

func (m *memCartStore) GuestCart(_ context.Context, sessionID string) (models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.guests[sessionID]; ok {
		return c, nil
	}
	return models.Cart{UserID: sessionID, Items: []models.CartItem{}, SavedItems: []models.SavedItem{}}, nil
}

func (m *memCartStore) SaveGuestCart(_ context.Context, sessionID string, c models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guests[sessionID] = c
	return nil
}

func (m *memCartStore) DeleteGuestCart(_ context.Context, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.guests, sessionID)
}

// memUserStore applique l'unicité email comme le ferait la table LWT.
type memUserStore struct {
	mu      sync.Mutex
	byEmail map[string]models.User
	byID    map[string]models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		byEmail: make(map[string]models.User),
		byID:    make(map[string]models.User),
	}
}

func (m *memUserStore) CreateUser(_ context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return store.ErrEmailTaken
	}
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *memUserStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return models.User{}, store.ErrUserNotFound
}

func (m *memUserStore) GetUserByID(_ context.Context, userID string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[userID]; ok {
		return u, nil
	}
	return models.User{}, store.ErrUserNotFound
}

type memTokenStore struct {
	mu          sync.Mutex
	refresh     map[string]string
	blacklisted map[string]bool
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{
		refresh:     make(map[string]string),
		blacklisted: make(map[string]bool),
	}
}

func (m *memTokenStore) StoreRefreshToken(_ context.Context, userID, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh[userID] = token
	return nil
}

func (m *memTokenStore) GetRefreshToken(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.refresh[userID]; ok {
		return t, nil
	}
	return "", store.ErrUserNotFound
}

func (m *memTokenStore) DeleteRefreshToken(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.refresh, userID)
	return nil
}

func (m *memTokenStore) BlacklistToken(_ context.Context, tokenID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blacklisted[tokenID] = true
	return nil
}

type memOrderStore struct {
	mu     sync.Mutex
	orders []models.Order
}

func (m *memOrderStore) InsertOrder(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order.ID == "" {
		order.ID = "order-1"
	}
	order.CreatedAt = time.Now()
	// les plus récentes d'abord, comme le clustering DESC
	m.orders = append([]models.Order{*order}, m.orders...)
	return nil
}

func (m *memOrderStore) ListOrders(_ context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Order, len(m.orders))
	copy(out, m.orders)
	return out, nil
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	return &buf
}

// asUser simule le middleware JWT en posant l'identité dans le contexte.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("email", userID+"@test.local")
		c.Set("name", "Test")
		c.Set("token_id", "token-"+userID)
		c.Next()
	}
}
