package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
)

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserID, uuid.New())
		c.Next()
	})
	r.POST("/recipes", rl.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestRateLimiterWithoutRedis(t *testing.T) {
	rl := NewRecipeCreationRateLimiter(nil, 5)
	r := newLimitedRouter(rl)

	for i := 0; i < 10; i++ {
		w := serve(r, http.MethodPost, "/recipes", "")
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	remaining, _, err := rl.GetRemainingRequests(context.Background(), "someone")
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)
}

func TestNilRateLimiterPassesThrough(t *testing.T) {
	var rl *RateLimiter
	w := serve(newLimitedRouter(rl), http.MethodPost, "/recipes", "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 0, rl.Limit())

	remaining, reset, err := rl.GetRemainingRequests(context.Background(), "someone")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
	assert.True(t, reset.After(time.Now()))
}

func TestRateLimiterRejectsOverLimit(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	rl := NewRecipeCreationRateLimiter(client, 2)

	user := uuid.New()
	status := http.StatusCreated
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserID, user)
		c.Next()
	})
	r.POST("/recipes", rl.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(status)
	})

	// Rejected submissions do not use up the budget.
	status = http.StatusBadRequest
	for i := 0; i < 3; i++ {
		w := serve(r, http.MethodPost, "/recipes", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	remaining, _, err := rl.GetRemainingRequests(context.Background(), user.String())
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	status = http.StatusCreated
	for i := 0; i < 2; i++ {
		w := serve(r, http.MethodPost, "/recipes", "")
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	w := serve(r, http.MethodPost, "/recipes", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "rate limit")
	assert.Empty(t, body.Field)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	rl := NewRecipeCreationRateLimiter(client, 1)
	w := serve(newLimitedRouter(rl), http.MethodPost, "/recipes", "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))
}

func TestRateLimiterRequiresUser(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	rl := NewRecipeCreationRateLimiter(client, 1)
	r := gin.New()
	r.POST("/recipes", rl.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	w := serve(r, http.MethodPost, "/recipes", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
