package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/foodgram/backend/internal/types"
)

type mockTokenValidator struct {
	mock.Mock
}

func (m *mockTokenValidator) ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(validator TokenValidator) *gin.Engine {
	r := gin.New()
	r.Use(ResolveAccess("POST /signup"), AuthMiddleware(validator))
	handler := func(c *gin.Context) {
		viewer := ViewerFrom(c)
		if viewer == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, viewer.Username)
	}
	r.GET("/things", handler)
	r.POST("/things", handler)
	r.GET("/private", RequireAuth(), handler)
	r.POST("/signup", handler)
	return r
}

func httptestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serveRequest(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func serve(r http.Handler, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptestRequest(method, path)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	return serveRequest(r, req)
}

func TestAuthMiddleware(t *testing.T) {
	claims := &types.TokenClaims{UserID: uuid.New(), Username: "chef", Role: "user"}

	validator := new(mockTokenValidator)
	validator.On("ValidateToken", "good").Return(claims, nil)
	validator.On("ValidateToken", "bad").Return(nil, errors.New("invalid token"))

	r := newAuthRouter(validator)

	tests := []struct {
		name   string
		method string
		path   string
		header string
		status int
		body   string
	}{
		{"anonymous read", http.MethodGet, "/things", "", http.StatusOK, "anonymous"},
		{"anonymous write", http.MethodPost, "/things", "", http.StatusUnauthorized, ""},
		{"authenticated read", http.MethodGet, "/things", "Bearer good", http.StatusOK, "chef"},
		{"token scheme", http.MethodPost, "/things", "Token good", http.StatusOK, "chef"},
		{"invalid token on read", http.MethodGet, "/things", "Bearer bad", http.StatusUnauthorized, ""},
		{"malformed header", http.MethodGet, "/things", "good", http.StatusUnauthorized, ""},
		{"unknown scheme", http.MethodGet, "/things", "Basic good", http.StatusUnauthorized, ""},
		{"private without token", http.MethodGet, "/private", "", http.StatusUnauthorized, ""},
		{"private with token", http.MethodGet, "/private", "Bearer good", http.StatusOK, "chef"},
		{"anonymous public write", http.MethodPost, "/signup", "", http.StatusOK, "anonymous"},
		{"invalid token on public write", http.MethodPost, "/signup", "Bearer bad", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.method, tt.path, tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareSetsUserID(t *testing.T) {
	claims := &types.TokenClaims{UserID: uuid.New(), Username: "chef"}
	validator := new(mockTokenValidator)
	validator.On("ValidateToken", "good").Return(claims, nil)

	r := gin.New()
	r.Use(ResolveAccess(), AuthMiddleware(validator))
	r.DELETE("/things", func(c *gin.Context) {
		id, ok := c.Get(ContextUserID)
		assert.True(t, ok)
		assert.Equal(t, claims.UserID, id)
		assert.Equal(t, types.AccessWrite, AccessFrom(c))
		c.Status(http.StatusNoContent)
	})

	w := serve(r, http.MethodDelete, "/things", "Bearer good")
	assert.Equal(t, http.StatusNoContent, w.Code)
	validator.AssertExpectations(t)
}

func TestAccessFromWithoutResolve(t *testing.T) {
	r := gin.New()
	r.HEAD("/things", func(c *gin.Context) {
		assert.Equal(t, types.AccessRead, AccessFrom(c))
		c.Status(http.StatusOK)
	})
	w := serve(r, http.MethodHead, "/things", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResolveAccessPublicWrites(t *testing.T) {
	r := gin.New()
	r.Use(ResolveAccess("POST /users/:id/ping"))
	r.POST("/users/:id/ping", func(c *gin.Context) {
		c.String(http.StatusOK, AccessFrom(c).String())
	})
	r.DELETE("/users/:id/ping", func(c *gin.Context) {
		c.String(http.StatusOK, AccessFrom(c).String())
	})

	w := serve(r, http.MethodPost, "/users/42/ping", "")
	assert.Equal(t, "public", w.Body.String())

	w = serve(r, http.MethodDelete, "/users/42/ping", "")
	assert.Equal(t, "write", w.Body.String())
}
