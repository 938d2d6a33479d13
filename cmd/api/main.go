package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/log"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/server"
	"github.com/foodgram/backend/internal/service"
)

func main() {
	ctx := context.Background()
	if err := run(ctx); err != nil {
		log.Error(ctx, "server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	if err := log.SetFormat(cfg.LogFormat); err != nil {
		return err
	}
	gin.SetMode(cfg.Environment.GinMode())

	// Initialize database
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Redis is optional; without it tokens are not revocable and recipe
	// creation is not rate limited.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Warn(ctx, "redis unavailable, continuing without it", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	var denylist service.TokenDenylist
	if redisClient != nil {
		denylist = service.NewRedisDenylist(redisClient)
	}

	services := api.Services{
		Auth:         service.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL, denylist),
		Users:        service.NewUserService(db),
		Follows:      service.NewFollowService(db),
		Recipes:      service.NewRecipeService(db, images),
		Bookmarks:    service.NewBookmarkService(db),
		Catalog:      service.NewCatalogService(db),
		ShoppingList: service.NewShoppingListService(db),
	}

	handler := router.SetupRouter(cfg, db, services, recipeCreationLimiter(redisClient, cfg.RecipeCreateLimit))
	srv := server.New(cfg, handler)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		log.Info(ctx, "received signal", "signal", sig.String())
	}

	log.Info(ctx, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}

func recipeCreationLimiter(client *redis.Client, limit int) *middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return middleware.NewRecipeCreationRateLimiter(client, limit)
}

func newImageStore(ctx context.Context, cfg *config.Config) (service.ImageStore, error) {
	switch cfg.ImageBackend {
	case "s3":
		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure S3: %w", err)
		}
		return service.NewS3ImageStore(s3Config), nil
	default:
		return service.NewLocalImageStore(cfg.MediaRoot, cfg.MediaURL), nil
	}
}
