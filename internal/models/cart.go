package models

import "time"

// CartItem est un article actif du panier. Les champs sont fournis par le
// client (snapshot produit) : pas de jointure catalogue côté serveur.
type CartItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Img      string  `json:"img"`
	Quantity int     `json:"quantity"`
}

// SavedItem est un article "mis de côté" — même snapshot, sans quantité.
type SavedItem struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Img   string  `json:"img"`
}

// Cart est le document panier complet d'un utilisateur. Version sert de
// jeton CAS pour l'upsert conditionnel (voir store.SaveCart).
type Cart struct {
	UserID     string      `json:"user_id"`
	Items      []CartItem  `json:"items"`
	SavedItems []SavedItem `json:"savedItems"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Version    int64       `json:"-"`
}

// TotalItems retourne la somme des quantités du panier actif.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}
