package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/educlove/discovery-engine/pkg/jwt"
	"github.com/educlove/discovery-engine/pkg/logger"
)

// ContextKeyClaims is the gin context key holding the validated session
// claims.
const ContextKeyClaims = "session_claims"

// BearerAuthMiddleware validates the Authorization bearer token and stores
// its claims on the request context. Protected routes run behind this;
// the unauthenticated answer is always a 401 with a detail field, matching
// what the engine's API client expects.
func BearerAuthMiddleware(tokens *jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			logger.Warn("Rejected bearer token",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// ClaimsFrom returns the validated claims stored by BearerAuthMiddleware.
func ClaimsFrom(c *gin.Context) (*jwt.SessionClaims, bool) {
	value, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*jwt.SessionClaims)
	return claims, ok
}
