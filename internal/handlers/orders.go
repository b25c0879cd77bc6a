package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"

	"kartly_back_end/internal/models"
	"kartly_back_end/internal/services"
	"kartly_back_end/internal/utils"
)

type OrderHandler struct {
	orders  OrderStore
	elastic *elasticsearch.Client
	minio   *minio.Client
	bucket  string
}

func NewOrderHandler(orders OrderStore, es *elasticsearch.Client, mc *minio.Client, bucket string) *OrderHandler {
	return &OrderHandler{orders: orders, elastic: es, minio: mc, bucket: bucket}
}

//
// POST /api/orders
//
func (h *OrderHandler) Create(c *gin.Context) {
	var input struct {
		Items    []models.OrderItem `json:"items" binding:"required,min=1"`
		Subtotal float64            `json:"subtotal"`
		Tax      float64            `json:"tax"`
		Total    float64            `json:"total"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Commande invalide: articles manquants"})
		return
	}

	for _, item := range input.Items {
		if item.ID == "" || item.Quantity < 1 || item.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Article invalide dans la commande"})
			return
		}
	}

	order := models.Order{
		Items:    input.Items,
		Subtotal: input.Subtotal,
		Tax:      input.Tax,
		Total:    input.Total,
	}

	if err := h.orders.InsertOrder(c.Request.Context(), &order); err != nil {
		log.Printf("❌ Erreur insertion commande: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement commande"})
		return
	}

	log.Printf("✅ Commande %s enregistrée (%d articles, total %.2f€)", order.ID, len(order.Items), order.Total)

	// Indexation, facture et email sortent du chemin critique.
	email := c.GetString("email")
	go h.afterCreate(order, email)

	c.JSON(http.StatusCreated, order)
}

//
// GET /api/orders — les plus récentes d'abord
//
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		log.Printf("❌ Erreur lecture commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

//
// GET /api/orders/search?q=
//
func (h *OrderHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q manquant"})
		return
	}
	if h.elastic == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recherche indisponible"})
		return
	}

	results, err := services.SearchOrders(h.elastic, query)
	if err != nil {
		log.Printf("❌ Erreur recherche commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": results})
}

// afterCreate exécute les effets secondaires d'une commande confirmée.
// Chaque étape est best-effort et loggée.
func (h *OrderHandler) afterCreate(order models.Order, email string) {
	if h.elastic != nil {
		services.IndexOrder(h.elastic, order)
	}

	pdf, err := utils.GenerateInvoicePDF(order)
	if err != nil {
		log.Printf("⚠️ Génération facture PDF %s échouée: %v", order.ID, err)
		return
	}

	if h.minio != nil {
		services.ArchiveInvoice(context.Background(), h.minio, h.bucket, order.ID, pdf)
	}

	if email != "" {
		subject := "Confirmation de votre commande Kartly"
		body := utils.GenerateOrderConfirmationHTML(order)
		if err := utils.SendConfirmationEmail(email, subject, body, pdf); err != nil {
			log.Printf("⚠️ Email confirmation %s échoué: %v", order.ID, err)
		} else {
			log.Printf("📧 Email de confirmation envoyé à %s", email)
		}
	}
}
