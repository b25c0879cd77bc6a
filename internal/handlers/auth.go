package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"

	"kartly_back_end/internal/cart"
	"kartly_back_end/internal/config"
	"kartly_back_end/internal/middleware"
	"kartly_back_end/internal/models"
	"kartly_back_end/internal/store"
	"kartly_back_end/internal/utils"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type AuthHandler struct {
	users  UserStore
	carts  CartStore
	tokens TokenStore
	guests *middleware.GuestSessions
}

func NewAuthHandler(users UserStore, carts CartStore, tokens TokenStore, guests *middleware.GuestSessions) *AuthHandler {
	return &AuthHandler{users: users, carts: carts, tokens: tokens, guests: guests}
}

// ================== AUTH LOCALE ==================

//
// POST /api/signup
//
func (h *AuthHandler) Signup(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs invalides ou manquants"})
		return
	}

	ctx := c.Request.Context()

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur hash mot de passe"})
		return
	}

	user := models.User{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Email:    input.Email,
		Password: hashedPassword,
		Provider: "local",
	}

	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	// le panier invité accumulé avant l'inscription suit l'utilisateur
	h.mergeGuestCart(c, user.ID)

	resp, err := h.issueTokens(ctx, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

//
// POST /api/login
//
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs invalides ou manquants"})
		return
	}

	ctx := c.Request.Context()

	// Message unique quel que soit le champ fautif — pas de fuite sur
	// l'existence du compte.
	user, err := h.users.GetUserByEmail(ctx, input.Email)
	if err != nil || user.Provider != "local" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}
	if ok, err := utils.VerifyPassword(input.Password, user.Password); err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	h.mergeGuestCart(c, user.ID)

	resp, err := h.issueTokens(ctx, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

//
// POST /api/logout — blacklist du token et purge du refresh token
//
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	ctx := c.Request.Context()

	if err := h.tokens.DeleteRefreshToken(ctx, userID); err != nil {
		log.Printf("⚠️ Erreur suppression refresh token: %v", err)
	}

	// L'id à révoquer vient du token présenté, comme sa durée restante.
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 {
		if claims, err := utils.ParseAccessToken(authHeader[7:]); err == nil {
			duration := utils.GetTokenExpirationDuration(claims)
			if err := h.tokens.BlacklistToken(ctx, claims.TokenID, duration); err != nil {
				log.Printf("⚠️ Erreur blacklist token: %v", err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

//
// POST /api/refresh
//
func (h *AuthHandler) RefreshAccessToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token manquant"})
		return
	}

	authHeader := c.GetHeader("Authorization")
	if len(authHeader) <= 7 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token manquant"})
		return
	}

	claims, err := utils.ParseAccessToken(authHeader[7:])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
		return
	}

	ctx := c.Request.Context()

	stored, err := h.tokens.GetRefreshToken(ctx, claims.UserID)
	if err != nil || stored != req.RefreshToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalide ou expiré"})
		return
	}

	token, _, err := utils.GenerateAccessToken(claims.UserID, claims.Email, claims.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int64(utils.AccessTokenTTL.Seconds()),
		"token_type": "Bearer",
	})
}

//
// GET /api/user
//
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"userId": user.ID,
			"name":   user.Name,
			"email":  user.Email,
		},
	})
}

// ================== AUTH SOCIALE ==================

//
// GET /api/auth/:provider
//
func (h *AuthHandler) BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	// gothic retrouve le provider dans la query, pas dans le path
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

//
// GET /api/auth/:provider/callback
//
func (h *AuthHandler) CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	code := c.Query("code")
	if provider == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètres OAuth invalides"})
		return
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	var providerID, email, name string
	var err error

	switch provider {
	case "google":
		providerID, email, name, err = exchangeGoogle(c.Request.Context(), baseURL, code)
	case "facebook":
		providerID, email, name, err = exchangeFacebook(baseURL, code)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider non supporté"})
		return
	}
	if err != nil || email == "" {
		log.Printf("❌ Échec échange OAuth %s: %v", provider, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec authentification " + provider})
		return
	}

	user, err := h.findOrCreateOAuthUser(c.Request.Context(), provider, providerID, email, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement utilisateur"})
		return
	}

	h.mergeGuestCart(c, user.ID)

	resp, err := h.issueTokens(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}
	resp["provider"] = provider
	c.JSON(http.StatusOK, resp)
}

func exchangeGoogle(ctx context.Context, baseURL, code string) (id, email, name string, err error) {
	conf := config.GoogleOAuthConfig(baseURL)
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return "", "", "", err
	}

	resp, err := conf.Client(ctx, token).Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return "", "", "", err
	}
	defer resp.Body.Close()

	var gu struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return "", "", "", err
	}
	return gu.ID, gu.Email, gu.Name, nil
}

func exchangeFacebook(baseURL, code string) (id, email, name string, err error) {
	redirect := baseURL + "/api/auth/facebook/callback"

	tokenURL := "https://graph.facebook.com/v12.0/oauth/access_token" +
		"?client_id=" + os.Getenv("FACEBOOK_CLIENT_ID") +
		"&redirect_uri=" + redirect +
		"&client_secret=" + os.Getenv("FACEBOOK_CLIENT_SECRET") +
		"&code=" + code
	resp, err := http.Get(tokenURL)
	if err != nil {
		return "", "", "", err
	}
	defer resp.Body.Close()

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", "", "", err
	}

	userResp, err := http.Get("https://graph.facebook.com/me?fields=id,name,email&access_token=" + tokenResp.AccessToken)
	if err != nil {
		return "", "", "", err
	}
	defer userResp.Body.Close()

	var fb struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(userResp.Body).Decode(&fb); err != nil {
		return "", "", "", err
	}
	return fb.ID, fb.Email, fb.Name, nil
}

func (h *AuthHandler) findOrCreateOAuthUser(ctx context.Context, provider, providerID, email, name string) (models.User, error) {
	user, err := h.users.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return models.User{}, err
	}

	user = models.User{
		ID:         uuid.NewString(),
		Email:      email,
		Name:       name,
		Provider:   provider,
		ProviderID: providerID,
	}
	if err := h.users.CreateUser(ctx, user); err != nil {
		return models.User{}, err
	}
	log.Printf("🆕 Utilisateur OAuth créé (%s) : %s", provider, email)
	return user, nil
}

// ================== UTILITAIRES ==================

func (h *AuthHandler) issueTokens(ctx context.Context, user models.User) (gin.H, error) {
	token, tokenID, err := utils.GenerateAccessToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := h.tokens.StoreRefreshToken(ctx, user.ID, refreshToken, refreshTokenTTL); err != nil {
		log.Printf("⚠️ Erreur stockage refresh token: %v", err)
	}

	log.Printf("✅ Tokens générés (token_id=%s) pour %s", tokenID, user.Email)

	return gin.H{
		"token":         token,
		"refresh_token": refreshToken,
		"user": gin.H{
			"userId": user.ID,
			"name":   user.Name,
			"email":  user.Email,
		},
	}, nil
}

// mergeGuestCart réconcilie le panier invité dans le panier persisté de
// l'utilisateur, puis invalide le cookie invité. Best-effort : un échec
// ne bloque jamais le login.
func (h *AuthHandler) mergeGuestCart(c *gin.Context, userID string) {
	ctx := c.Request.Context()

	sid, ok := h.guests.Peek(c)
	if !ok {
		return
	}

	guestCart, err := h.carts.GuestCart(ctx, sid)
	if err != nil || (len(guestCart.Items) == 0 && len(guestCart.SavedItems) == 0) {
		return
	}

	for attempt := 0; attempt < cartSaveRetries; attempt++ {
		userCart, err := h.carts.LoadCart(ctx, userID)
		if err != nil {
			log.Printf("⚠️ Fusion panier invité impossible: %v", err)
			return
		}

		cart.Merge(&userCart, guestCart.Items)
		for _, saved := range guestCart.SavedItems {
			_ = cart.SaveForLater(&userCart, saved)
		}

		applied, err := h.carts.SaveCart(ctx, &userCart, "updated")
		if err != nil {
			log.Printf("⚠️ Fusion panier invité impossible: %v", err)
			return
		}
		if applied {
			h.carts.DeleteGuestCart(ctx, sid)
			h.guests.Clear(c)
			log.Printf("🛒 Panier invité fusionné pour %s (%d articles)", userID, len(guestCart.Items))
			return
		}
	}
	log.Printf("⚠️ Fusion panier invité abandonnée après %d conflits CAS", cartSaveRetries)
}
