package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"kartly_back_end/internal/models"
)

func newOrderRouter(orders *memOrderStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOrderHandler(orders, nil, nil, "")

	r := gin.New()
	api := r.Group("/api", asUser("u1"))
	api.POST("/orders", h.Create)
	api.GET("/orders", h.List)
	api.GET("/orders/search", h.Search)
	return r
}

func TestCreateOrder(t *testing.T) {
	orders := &memOrderStore{}
	r := newOrderRouter(orders)

	w := doJSON(t, r, http.MethodPost, "/api/orders", gin.H{
		"items": []models.OrderItem{
			{ID: "k1", Title: "Clavier", Price: 89.99, Img: "/img/k1.jpg", Quantity: 2},
		},
		"subtotal": 179.98,
		"tax":      37.80,
		"total":    217.78,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("code = %d (%s)", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["id"] == nil || body["id"] == "" {
		t.Error("id commande absent de la réponse")
	}
	if len(orders.orders) != 1 {
		t.Fatalf("commandes persistées = %d", len(orders.orders))
	}
	if orders.orders[0].Total != 217.78 {
		t.Errorf("total = %v", orders.orders[0].Total)
	}
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	r := newOrderRouter(&memOrderStore{})

	w := doJSON(t, r, http.MethodPost, "/api/orders", gin.H{"items": []models.OrderItem{}, "total": 0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, attendu 400", w.Code)
	}
}

func TestCreateOrderRejectsInvalidItem(t *testing.T) {
	r := newOrderRouter(&memOrderStore{})

	w := doJSON(t, r, http.MethodPost, "/api/orders", gin.H{
		"items": []models.OrderItem{{ID: "k1", Title: "x", Price: 10, Img: "i", Quantity: 0}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, attendu 400", w.Code)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	orders := &memOrderStore{}
	r := newOrderRouter(orders)

	first := gin.H{"items": []models.OrderItem{{ID: "a", Title: "A", Price: 1, Img: "i", Quantity: 1}}, "total": 1.0}
	second := gin.H{"items": []models.OrderItem{{ID: "b", Title: "B", Price: 2, Img: "i", Quantity: 1}}, "total": 2.0}
	doJSON(t, r, http.MethodPost, "/api/orders", first)
	doJSON(t, r, http.MethodPost, "/api/orders", second)

	w := doJSON(t, r, http.MethodGet, "/api/orders", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	body := decodeBody(t, w)
	list := body["orders"].([]interface{})
	if len(list) != 2 {
		t.Fatalf("commandes = %d", len(list))
	}
	newest := list[0].(map[string]interface{})
	if newest["total"].(float64) != 2.0 {
		t.Errorf("la commande la plus récente doit venir en premier, total = %v", newest["total"])
	}
}

func TestSearchOrdersRequiresQuery(t *testing.T) {
	r := newOrderRouter(&memOrderStore{})
	w := doJSON(t, r, http.MethodGet, "/api/orders/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, attendu 400", w.Code)
	}
}

func TestSearchOrdersUnavailableWithoutElastic(t *testing.T) {
	r := newOrderRouter(&memOrderStore{})
	w := doJSON(t, r, http.MethodGet, "/api/orders/search?q=clavier", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d, attendu 503", w.Code)
	}
}
