package handlers

import (
	"log"
	"math"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

type paymentIntentRequest struct {
	PaymentMethodID string  `json:"payment_method_id"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	Email           string  `json:"email"`
}

// ✅ Crée et confirme un PaymentIntent Stripe (confirmation manuelle côté serveur)
func CreatePaymentIntent(c *gin.Context) {
	var req paymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}
	if req.PaymentMethodID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_method_id manquant"})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Montant invalide"})
		return
	}

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	params := paymentIntentParams(req, frontendURL+"/payment-complete")

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Println("❌ Erreur Stripe:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("💳 PaymentIntent %s : %s (%d %s)", intent.ID, intent.Status, *params.Amount, *params.Currency)

	status, body := paymentIntentResponse(intent)
	c.JSON(status, body)
}

// paymentIntentParams construit la requête Stripe. Le montant arrive
// déjà dans la plus petite unité de la devise (centimes) — on arrondit
// seulement, sans conversion.
func paymentIntentParams(req paymentIntentRequest, returnURL string) *stripe.PaymentIntentParams {
	currency := req.Currency
	if currency == "" {
		currency = "eur"
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(int64(math.Round(req.Amount))),
		Currency:           stripe.String(currency),
		PaymentMethod:      stripe.String(req.PaymentMethodID),
		Confirm:            stripe.Bool(true),
		ConfirmationMethod: stripe.String(string(stripe.PaymentIntentConfirmationMethodManual)),
		ReturnURL:          stripe.String(returnURL),
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	return params
}

// paymentIntentResponse traduit l'état d'un PaymentIntent en réponse HTTP.
// "requires_source_action" est l'ancien nom de "requires_action" chez
// Stripe, certains clients le renvoient encore.
func paymentIntentResponse(intent *stripe.PaymentIntent) (int, gin.H) {
	switch intent.Status {
	case stripe.PaymentIntentStatusRequiresAction, "requires_source_action":
		return http.StatusOK, gin.H{
			"requires_action":              true,
			"payment_intent_client_secret": intent.ClientSecret,
			"status":                       intent.Status,
		}
	case stripe.PaymentIntentStatusSucceeded:
		return http.StatusOK, gin.H{
			"success":           true,
			"payment_intent_id": intent.ID,
			"status":            intent.Status,
		}
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		return http.StatusBadRequest, gin.H{
			"error":  "Paiement refusé, veuillez réessayer avec une autre carte",
			"status": intent.Status,
		}
	default:
		return http.StatusBadRequest, gin.H{
			"error":  "Payment status: " + string(intent.Status),
			"status": intent.Status,
		}
	}
}
