package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryDenylist keeps revoked token ids in memory.
type memoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (d *memoryDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = true
	return nil
}

func (d *memoryDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revoked[tokenID], nil
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
	images *testhelpers.MemoryImageStore
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	images := testhelpers.NewMemoryImageStore()
	auth := service.NewAuthService(db, "test-secret", time.Hour, &memoryDenylist{revoked: map[string]bool{}})

	cfg := &config.Config{
		CORSOrigins:  []string{"http://localhost:3000"},
		ImageBackend: "s3",
		PageSize:     6,
	}
	services := api.Services{
		Auth:         auth,
		Users:        service.NewUserService(db),
		Follows:      service.NewFollowService(db),
		Recipes:      service.NewRecipeService(db, images),
		Bookmarks:    service.NewBookmarkService(db),
		Catalog:      service.NewCatalogService(db),
		ShoppingList: service.NewShoppingListService(db),
	}
	return &testServer{
		router: router.SetupRouter(cfg, db, services, nil),
		db:     db,
		auth:   auth,
		images: images,
	}
}

func (s *testServer) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := s.auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

