package models

import "time"

type OrderItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Img      string  `json:"img"`
	Quantity int     `json:"quantity"`
}

// Order est immuable une fois insérée. Les montants viennent du client
// tels quels (compat API historique — voir DESIGN.md).
type Order struct {
	ID        string      `json:"id"`
	Items     []OrderItem `json:"items"`
	Subtotal  float64     `json:"subtotal"`
	Tax       float64     `json:"tax"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"createdAt"`
}
