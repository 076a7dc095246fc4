package demoserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/educlove/discovery-engine/config"
	"github.com/educlove/discovery-engine/pkg/jwt"

	"github.com/educlove/discovery-engine/internal/middleware"
)

// NewRouter wires the demo API. The route shapes mirror the production
// backend exactly; the engine must not be able to tell them apart.
func NewRouter(cfg *config.Config, store *Store, tokens *jwt.TokenManager) *gin.Engine {
	gin.SetMode(cfg.DemoServer.GinMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.DemoServer.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers := NewHandlers(store, tokens)
	auth := middleware.BearerAuthMiddleware(tokens)

	generalRateLimiter := middleware.NewRateLimiter(100, 200) // 100 req/sec, burst of 200
	authRateLimiter := middleware.NewRateLimiter(1, 5)        // token issuance is abuse-prone
	likeRateLimiter := middleware.NewRateLimiter(5, 10)       // likes carry messages, keep spam down

	// utility endpoints
	operational := router.Group("/api")
	operational.GET("/healthcheck", generalRateLimiter.Middleware(), handlers.Healthcheck)
	operational.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))
	operational.POST("/profile-visits/:id", generalRateLimiter.Middleware(), auth, handlers.RecordVisit)

	authGroup := router.Group("/auth")
	authGroup.POST("/token", authRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(4*1024), handlers.IssueToken)
	authGroup.GET("/session", generalRateLimiter.Middleware(), auth, handlers.Session)
	authGroup.GET("/me", generalRateLimiter.Middleware(), auth, handlers.Me)

	profiles := router.Group("/profiles")
	profiles.Use(auth)
	profiles.GET("/", generalRateLimiter.Middleware(), handlers.NextProfile)
	profiles.GET("/my-profile", generalRateLimiter.Middleware(), handlers.MyProfile)
	profiles.GET("/my-profile/search-criteria", generalRateLimiter.Middleware(), handlers.GetSearchCriteria)
	profiles.POST("/my-profile/search-criteria", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(64*1024), handlers.SaveSearchCriteria)
	profiles.DELETE("/my-profile/search-criteria", generalRateLimiter.Middleware(), handlers.DeleteSearchCriteria)
	// POST /profiles/{id}:like binds the whole "{id}:like" segment to :id;
	// the handler strips the suffix
	profiles.POST("/:id", likeRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(16*1024), handlers.LikeProfile)

	return router
}
