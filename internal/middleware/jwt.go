package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kartly_back_end/internal/cache"
	"kartly_back_end/internal/utils"
)

// AuthRequired vérifie le Bearer token et pose l'identité dans le
// contexte Gin : user_id, email, name, token_id. Les tokens révoqués
// (logout) sont rejetés via la blacklist Redis.
func AuthRequired(tokens *cache.TokenCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, tokens)
		if !ok {
			c.Abort()
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth pose l'identité si un Bearer token valide est présent,
// et laisse passer sinon — les routes panier servent aussi les invités.
func OptionalAuth(tokens *cache.TokenCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			if claims, err := parseBearer(authHeader); err == nil {
				if !tokens.IsTokenBlacklisted(c.Request.Context(), claims.TokenID) {
					setIdentity(c, claims)
				}
			}
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, tokens *cache.TokenCache) (*utils.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token manquant"})
		return nil, false
	}

	claims, err := parseBearer(authHeader)
	if err != nil {
		log.Printf("❌ Erreur parsing JWT: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
		return nil, false
	}

	if tokens.IsTokenBlacklisted(c.Request.Context(), claims.TokenID) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token révoqué"})
		return nil, false
	}
	return claims, true
}

func parseBearer(authHeader string) (*utils.Claims, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errInvalidAuthHeader
	}
	return utils.ParseAccessToken(parts[1])
}

func setIdentity(c *gin.Context, claims *utils.Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("email", claims.Email)
	c.Set("name", claims.Name)
	c.Set("token_id", claims.TokenID)
}
