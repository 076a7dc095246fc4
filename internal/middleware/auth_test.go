package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educlove/discovery-engine/pkg/jwt"
)

func setupAuthRouter(t *testing.T, tokens *jwt.TokenManager) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BearerAuthMiddleware(tokens))
	router.GET("/protected", func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"email": claims.Email})
	})
	return router
}

func TestBearerAuthAcceptsValidToken(t *testing.T) {
	tokens := jwt.NewTokenManager("test-secret", "educlove-demo", 1)
	token, err := tokens.GenerateToken("u1", "marie@educlove.fr", "Marie", true)
	require.NoError(t, err)

	router := setupAuthRouter(t, tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "marie@educlove.fr")
}

func TestBearerAuthRejectsMissingHeader(t *testing.T) {
	tokens := jwt.NewTokenManager("test-secret", "educlove-demo", 1)
	router := setupAuthRouter(t, tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Not authenticated")
}

func TestBearerAuthRejectsForgedToken(t *testing.T) {
	tokens := jwt.NewTokenManager("test-secret", "educlove-demo", 1)
	otherIssuer := jwt.NewTokenManager("other-secret", "educlove-demo", 1)
	forged, err := otherIssuer.GenerateToken("u1", "marie@educlove.fr", "Marie", true)
	require.NoError(t, err)

	router := setupAuthRouter(t, tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
