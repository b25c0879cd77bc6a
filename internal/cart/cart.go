// Package cart contient la logique de réconciliation du panier : fusion
// d'un article entrant par id, liste "mis de côté", quantités. Aucune
// I/O ici — la persistance du document est du ressort du store.
package cart

import (
	"errors"

	"kartly_back_end/internal/models"
)

var (
	ErrItemNotFound    = errors.New("article introuvable")
	ErrInvalidQuantity = errors.New("la quantité doit être au moins 1")
	ErrInvalidItem     = errors.New("champs article invalides ou manquants")
)

// AddItem fusionne un article entrant dans le panier : si un article avec
// le même id existe déjà, sa quantité est incrémentée ; sinon l'article
// est ajouté en fin de liste (ordre d'arrivée préservé).
func AddItem(c *models.Cart, item models.CartItem) error {
	if item.ID == "" || item.Title == "" || item.Img == "" || item.Price < 0 {
		return ErrInvalidItem
	}
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}

	for i := range c.Items {
		if c.Items[i].ID == item.ID {
			c.Items[i].Quantity += item.Quantity
			return nil
		}
	}
	c.Items = append(c.Items, item)
	return nil
}

// SaveForLater ajoute un article à la liste "mis de côté". Idempotent :
// si l'id y figure déjà, la liste reste inchangée. Le prix et le titre
// sont un snapshot client, jamais revalidés contre le panier actif.
func SaveForLater(c *models.Cart, item models.SavedItem) error {
	if item.ID == "" || item.Title == "" || item.Img == "" || item.Price < 0 {
		return ErrInvalidItem
	}

	for _, saved := range c.SavedItems {
		if saved.ID == item.ID {
			return nil
		}
	}
	c.SavedItems = append(c.SavedItems, item)
	return nil
}

// RemoveItem retire un article du panier actif par id.
func RemoveItem(c *models.Cart, id string) error {
	kept := c.Items[:0]
	found := false
	for _, item := range c.Items {
		if item.ID == id {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return ErrItemNotFound
	}
	c.Items = kept
	return nil
}

// RemoveSaved retire un article de la liste "mis de côté" par id.
func RemoveSaved(c *models.Cart, id string) error {
	kept := c.SavedItems[:0]
	found := false
	for _, item := range c.SavedItems {
		if item.ID == id {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return ErrItemNotFound
	}
	c.SavedItems = kept
	return nil
}

// SetQuantity fixe la quantité d'un article existant. Quantité < 1
// refusée — la suppression passe par RemoveItem.
func SetQuantity(c *models.Cart, id string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Quantity = quantity
			return nil
		}
	}
	return ErrItemNotFound
}

// Clear vide le panier actif. La liste "mis de côté" est volontairement
// conservée (comportement confirmé, voir DESIGN.md).
func Clear(c *models.Cart) {
	c.Items = []models.CartItem{}
}

// Merge réconcilie un panier invité éphémère dans le panier persisté de
// l'utilisateur, article par article, dans l'ordre d'arrivée.
func Merge(c *models.Cart, guest []models.CartItem) {
	for _, item := range guest {
		if item.Quantity < 1 {
			continue
		}
		_ = AddItem(c, item)
	}
}
