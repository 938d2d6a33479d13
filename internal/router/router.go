package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	cfg *config.Config,
	db *gorm.DB,
	services api.Services,
	recipeCreationLimiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(), middleware.Recovery())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	// Liveness probe outside the API prefix
	router.GET("/health", api.HealthCheck(db))

	// Images are served from disk only with the local backend
	if cfg.ImageBackend == "local" {
		router.Static(mediaPrefix(cfg.MediaURL), cfg.MediaRoot)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(
		middleware.ResolveAccess(api.PublicRoutes(v1.BasePath())...),
		middleware.AuthMiddleware(services.Auth),
	)
	api.RegisterRoutes(v1, db, services, recipeCreationLimiter, cfg.PageSize)

	return router
}

func mediaPrefix(mediaURL string) string {
	prefix := "/" + strings.Trim(mediaURL, "/")
	if prefix == "/" {
		return "/media"
	}
	return prefix
}
