package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"kartly_back_end/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// CartSubscriber expose le flux de notifications panier en plus de la lecture.
type CartSubscriber interface {
	LoadCart(ctx context.Context, userID string) (models.Cart, error)
	SubscribeCart(ctx context.Context, userID string) *redis.PubSub
}

type CartSyncHandler struct {
	carts CartSubscriber
}

func NewCartSyncHandler(carts CartSubscriber) *CartSyncHandler {
	return &CartSyncHandler{carts: carts}
}

// Sync gère la synchronisation temps réel du panier
func (h *CartSyncHandler) Sync(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()

	pubsub := h.carts.SubscribeCart(ctx, userID)
	defer pubsub.Close()

	ch := pubsub.Channel()

	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Synchronisation panier activée",
	})

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != "updated" && msg.Payload != "cleared" {
				continue
			}

			cart, err := h.carts.LoadCart(ctx, userID)
			if err != nil {
				log.Printf("⚠️ Lecture panier pour sync échouée: %v", err)
				continue
			}

			total := 0.0
			for _, item := range cart.Items {
				total += item.Price * float64(item.Quantity)
			}

			response := map[string]interface{}{
				"type":  "cart_updated",
				"items": cart.Items,
				"total": total,
				"count": cart.TotalItems(),
			}
			if err := conn.WriteJSON(response); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
