package routes

import (
	"os"

	"github.com/gin-gonic/gin"

	"kartly_back_end/internal/cache"
	"kartly_back_end/internal/handlers"
	"kartly_back_end/internal/middleware"
	"kartly_back_end/internal/store"
)

// RegisterRoutes câble stores, middlewares et handlers sous /api.
func RegisterRoutes(r *gin.Engine, s *store.Store) {
	tokens := cache.NewTokenCache(s.Redis)
	guests := middleware.NewGuestSessions(os.Getenv("SESSION_SECRET"))
	limiter := middleware.NewRateLimiter(s.Redis)

	auth := handlers.NewAuthHandler(s, s, tokens, guests)
	carts := handlers.NewCartHandler(s, guests)
	cartSync := handlers.NewCartSyncHandler(s)
	orders := handlers.NewOrderHandler(s, s.Elastic, s.MinIO, s.InvoiceBucket)

	api := r.Group("/api")

	// Auth
	api.POST("/signup", limiter.SignupRateLimit(), auth.Signup)
	api.POST("/login", limiter.LoginRateLimit(), auth.Login)
	api.POST("/logout", middleware.AuthRequired(tokens), auth.Logout)
	api.POST("/refresh", auth.RefreshAccessToken)
	api.GET("/user", middleware.AuthRequired(tokens), auth.Me)

	// OAuth social
	api.GET("/auth/:provider", auth.BeginAuth)
	api.GET("/auth/:provider/callback", auth.CallbackAuth)

	// Panier — accessible connecté ou invité (cookie)
	cart := api.Group("/", middleware.OptionalAuth(tokens))
	cart.GET("/cart", carts.GetCart)
	cart.POST("/cart", carts.AddItem)
	cart.DELETE("/cart", carts.ClearCart)
	cart.GET("/cart/count", carts.GetCount)
	cart.PUT("/cart/:id", carts.UpdateQuantity)
	cart.DELETE("/cart/:id", carts.RemoveItem)
	cart.GET("/cart/saved", carts.GetSavedItems)
	cart.POST("/cart/save", carts.SaveForLater)
	cart.DELETE("/cart/save/:id", carts.RemoveSaved)

	// Sync temps réel du panier (utilisateur connecté uniquement)
	api.GET("/cart/ws", middleware.AuthRequired(tokens), cartSync.Sync)

	// Commandes
	api.POST("/orders", middleware.AuthRequired(tokens), orders.Create)
	api.GET("/orders", middleware.AuthRequired(tokens), orders.List)
	api.GET("/orders/search", middleware.AuthRequired(tokens), orders.Search)

	// Paiement
	api.POST("/create-payment-intent", middleware.OptionalAuth(tokens), handlers.CreatePaymentIntent)
}
