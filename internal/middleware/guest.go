package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

var errInvalidAuthHeader = errors.New("format Authorization invalide")

const (
	guestSessionName = "kartly_guest"
	guestIDKey       = "guest_id"
)

// GuestSessions attribue un identifiant de panier invité via un cookie
// signé. Seul usage de cookie du serveur — l'auth passe par JWT.
type GuestSessions struct {
	store *sessions.CookieStore
}

func NewGuestSessions(secret string) *GuestSessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 7)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false, // false en dev, true en prod
		SameSite: http.SameSiteLaxMode,
	}
	return &GuestSessions{store: store}
}

// ID retourne l'identifiant invité du cookie, en le créant au besoin.
func (g *GuestSessions) ID(c *gin.Context) (string, error) {
	session, err := g.store.Get(c.Request, guestSessionName)
	if err != nil {
		// cookie corrompu — on repart sur une session neuve
		session, _ = g.store.New(c.Request, guestSessionName)
	}

	if id, ok := session.Values[guestIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	session.Values[guestIDKey] = id
	if err := session.Save(c.Request, c.Writer); err != nil {
		return "", err
	}
	return id, nil
}

// Peek retourne l'identifiant invité existant sans jamais en créer un.
// À utiliser sur les chemins qui ne doivent pas poser de cookie (login,
// signup) — seul le parcours panier crée une session invité.
func (g *GuestSessions) Peek(c *gin.Context) (string, bool) {
	session, err := g.store.Get(c.Request, guestSessionName)
	if err != nil {
		return "", false
	}
	id, ok := session.Values[guestIDKey].(string)
	return id, ok && id != ""
}

// Clear invalide le cookie invité (après fusion du panier au login).
func (g *GuestSessions) Clear(c *gin.Context) {
	session, err := g.store.Get(c.Request, guestSessionName)
	if err != nil {
		return
	}
	session.Options.MaxAge = -1
	_ = session.Save(c.Request, c.Writer)
}
