package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// Services bundles the service layer the handlers depend on.
type Services struct {
	Auth         service.IAuthService
	Users        service.IUserService
	Follows      service.IFollowService
	Recipes      service.IRecipeService
	Bookmarks    service.IBookmarkService
	Catalog      service.ICatalogService
	ShoppingList service.IShoppingListService
}

// HealthCheck reports whether the API and its database are reachable.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "ok",
		})
	}
}

// PublicRoutes lists the write routes under basePath that need no token,
// in the form middleware.ResolveAccess expects.
func PublicRoutes(basePath string) []string {
	basePath = strings.TrimRight(basePath, "/")
	return []string{
		http.MethodPost + " " + basePath + "/users",
		http.MethodPost + " " + basePath + "/auth/token/login",
	}
}

// RegisterRoutes registers all API routes on v1. The group must already
// carry the access and authentication middleware.
func RegisterRoutes(v1 *gin.RouterGroup, db *gorm.DB, svc Services, recipeCreationLimiter *middleware.RateLimiter, pageSize int) {
	v1.GET("/health", HealthCheck(db))

	NewAuthHandler(svc.Auth).RegisterRoutes(v1)
	NewUserHandler(svc.Users, svc.Follows, pageSize).RegisterRoutes(v1)
	NewCatalogHandler(svc.Catalog).RegisterRoutes(v1)
	NewRecipeHandler(svc.Recipes, svc.Bookmarks, svc.ShoppingList, recipeCreationLimiter, pageSize).RegisterRoutes(v1)

	RegisterRateLimitRoutes(v1, recipeCreationLimiter)
}

// RegisterRateLimitRoutes registers endpoints for checking rate limit status
func RegisterRateLimitRoutes(router *gin.RouterGroup, creationLimiter *middleware.RateLimiter) {
	rateLimits := router.Group("/rate-limits")
	rateLimits.Use(middleware.RequireAuth())
	{
		rateLimits.GET("/recipe-creation", func(c *gin.Context) {
			viewer := middleware.ViewerFrom(c)
			remaining, resetTime, err := creationLimiter.GetRemainingRequests(c.Request.Context(), viewer.UserID.String())
			if err != nil {
				respondError(c, err)
				return
			}

			c.Header("X-RateLimit-Reset", resetTime.UTC().Format(time.RFC3339))
			c.JSON(http.StatusOK, types.RateLimitStatus{
				Limit:     creationLimiter.Limit(),
				Remaining: remaining,
			})
		})
	}
}
