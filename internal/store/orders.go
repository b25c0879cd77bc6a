package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gocql/gocql"

	"kartly_back_end/internal/models"
)

// Partition unique : le volume de commandes reste petit et le listing
// global "plus récentes d'abord" exige un ordre de clustering.
const ordersBucket = 0

// InsertOrder insère une commande immuable. L'id est un timeuuid qui
// sert aussi de clé de clustering (ordre décroissant dans le schéma).
func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}

	id := gocql.TimeUUID()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.ID = id.String()

	return s.Scylla.Query(cqlInsertOrder,
		ordersBucket, id, string(items),
		order.Subtotal, order.Tax, order.Total, order.CreatedAt).
		WithContext(ctx).Exec()
}

// ListOrders retourne toutes les commandes, plus récentes d'abord
// (ordre garanti par le clustering created DESC du schéma).
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	iter := s.Scylla.Query(cqlListOrders, ordersBucket).WithContext(ctx).Iter()

	orders := []models.Order{}
	var (
		id        gocql.UUID
		itemsJSON string
		subtotal  float64
		tax       float64
		total     float64
		createdAt time.Time
	)
	for iter.Scan(&id, &itemsJSON, &subtotal, &tax, &total, &createdAt) {
		var items []models.OrderItem
		if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
			items = []models.OrderItem{}
		}
		orders = append(orders, models.Order{
			ID:        id.String(),
			Items:     items,
			Subtotal:  subtotal,
			Tax:       tax,
			Total:     total,
			CreatedAt: createdAt,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return orders, nil
}
