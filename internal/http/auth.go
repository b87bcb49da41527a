package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/laundry-service/internal/apperr"
	"github.com/laundry-service/internal/logger"
	"github.com/laundry-service/internal/service"
	"go.uber.org/zap"
)

const (
	storeIDKey = "store_id"
	userIDKey  = "user_id"
	roleKey    = "role"
)

type TokenParser interface {
	ParseToken(token string) (*service.Claims, error)
}

// BearerToken extracts the token from an "Authorization: Bearer" value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthMiddleware scopes the request to the store named in the token.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			respondError(c, apperr.ErrUnauthorized)
			return
		}
		claims, err := parser.ParseToken(token)
		if err != nil {
			respondError(c, apperr.ErrUnauthorized)
			return
		}

		c.Set(storeIDKey, claims.StoreID)
		c.Set(userIDKey, claims.Subject)
		c.Set(roleKey, claims.Role)
		logger.Enrich(c, zap.String("store_id", claims.StoreID), zap.String("user_id", claims.Subject))
		c.Next()
	}
}

func storeID(c *gin.Context) string {
	return c.GetString(storeIDKey)
}
