package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"kartly_back_end/internal/cart"
	"kartly_back_end/internal/middleware"
	"kartly_back_end/internal/models"
)

// Nombre de relectures quand l'upsert CAS perd la course.
const cartSaveRetries = 3

type CartHandler struct {
	carts  CartStore
	guests *middleware.GuestSessions
}

func NewCartHandler(carts CartStore, guests *middleware.GuestSessions) *CartHandler {
	return &CartHandler{carts: carts, guests: guests}
}

// owner identifie le panier visé : utilisateur connecté ou invité.
type owner struct {
	id    string
	guest bool
}

func (h *CartHandler) owner(c *gin.Context) (owner, bool) {
	if userID := c.GetString("user_id"); userID != "" {
		return owner{id: userID}, true
	}
	sid, err := h.guests.ID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur session invité"})
		return owner{}, false
	}
	return owner{id: sid, guest: true}, true
}

func (h *CartHandler) load(ctx context.Context, o owner) (models.Cart, error) {
	if o.guest {
		return h.carts.GuestCart(ctx, o.id)
	}
	return h.carts.LoadCart(ctx, o.id)
}

// mutate applique une opération de réconciliation puis persiste le
// document complet. Pour un utilisateur, l'upsert est conditionnel
// (version CAS) : en cas de conflit on recharge et on rejoue l'op.
func (h *CartHandler) mutate(c *gin.Context, event string, op func(*models.Cart) error) (models.Cart, bool) {
	ctx := c.Request.Context()
	o, ok := h.owner(c)
	if !ok {
		return models.Cart{}, false
	}

	for attempt := 0; attempt < cartSaveRetries; attempt++ {
		current, err := h.load(ctx, o)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
			return models.Cart{}, false
		}

		if err := op(&current); err != nil {
			writeCartError(c, err)
			return models.Cart{}, false
		}

		if o.guest {
			if err := h.carts.SaveGuestCart(ctx, o.id, current); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
				return models.Cart{}, false
			}
			return current, true
		}

		applied, err := h.carts.SaveCart(ctx, &current, event)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
			return models.Cart{}, false
		}
		if applied {
			return current, true
		}
		log.Printf("🔁 Conflit CAS panier %s, tentative %d", o.id, attempt+1)
	}

	c.JSON(http.StatusConflict, gin.H{"error": "Panier modifié en parallèle, réessayez"})
	return models.Cart{}, false
}

func writeCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Article introuvable"})
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "La quantité doit être au moins 1"})
	case errors.Is(err, cart.ErrInvalidItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs invalides ou manquants"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

//
// 🛒 GET /api/cart
//
func (h *CartHandler) GetCart(c *gin.Context) {
	o, ok := h.owner(c)
	if !ok {
		return
	}
	current, err := h.load(c.Request.Context(), o)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cart":    current.Items,
		"count":   len(current.Items),
	})
}

//
// GET /api/cart/saved
//
func (h *CartHandler) GetSavedItems(c *gin.Context) {
	o, ok := h.owner(c)
	if !ok {
		return
	}
	current, err := h.load(c.Request.Context(), o)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"savedItems": current.SavedItems,
		"count":      len(current.SavedItems),
	})
}

//
// GET /api/cart/count
//
func (h *CartHandler) GetCount(c *gin.Context) {
	o, ok := h.owner(c)
	if !ok {
		return
	}
	current, err := h.load(c.Request.Context(), o)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   current.TotalItems(),
	})
}

//
// 🟢 POST /api/cart — ajoute ou incrémente par id
//
func (h *CartHandler) AddItem(c *gin.Context) {
	var input models.CartItem
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs invalides ou manquants"})
		return
	}

	current, ok := h.mutate(c, "updated", func(target *models.Cart) error {
		return cart.AddItem(target, input)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Article ajouté au panier",
		"cart":       current.Items,
		"totalItems": current.TotalItems(),
	})
}

//
// POST /api/cart/save — mise de côté (idempotent par id)
//
func (h *CartHandler) SaveForLater(c *gin.Context) {
	var input models.SavedItem
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs invalides ou manquants"})
		return
	}

	current, ok := h.mutate(c, "updated", func(target *models.Cart) error {
		return cart.SaveForLater(target, input)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Article mis de côté",
		"savedItems": current.SavedItems,
	})
}

//
// PUT /api/cart/:id — fixe la quantité
//
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	id := c.Param("id")

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	current, ok := h.mutate(c, "updated", func(target *models.Cart) error {
		return cart.SetQuantity(target, id, input.Quantity)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Quantité mise à jour",
		"cart":       current.Items,
		"totalItems": current.TotalItems(),
	})
}

//
// ❌ DELETE /api/cart/:id
//
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id := c.Param("id")

	current, ok := h.mutate(c, "updated", func(target *models.Cart) error {
		return cart.RemoveItem(target, id)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Article supprimé du panier",
		"cart":       current.Items,
		"totalItems": current.TotalItems(),
	})
}

//
// DELETE /api/cart/save/:id
//
func (h *CartHandler) RemoveSaved(c *gin.Context) {
	id := c.Param("id")

	current, ok := h.mutate(c, "updated", func(target *models.Cart) error {
		return cart.RemoveSaved(target, id)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Article retiré de la mise de côté",
		"savedItems": current.SavedItems,
	})
}

//
// 🧹 DELETE /api/cart — vide le panier actif (mise de côté conservée)
//
func (h *CartHandler) ClearCart(c *gin.Context) {
	_, ok := h.mutate(c, "cleared", func(target *models.Cart) error {
		cart.Clear(target)
		return nil
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Panier vidé avec succès",
		"cart":       []models.CartItem{},
		"totalItems": 0,
	})
}
