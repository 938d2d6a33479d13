package api_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/mocks"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

func newMockedRouter(auth *mocks.MockAuthService, register func(v1 *gin.RouterGroup)) *gin.Engine {
	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.Use(middleware.ResolveAccess(api.PublicRoutes(v1.BasePath())...), middleware.AuthMiddleware(auth))
	register(v1)
	return r
}

func mockedAuth(claims *types.TokenClaims) *mocks.MockAuthService {
	auth := new(mocks.MockAuthService)
	auth.On("ValidateToken", mock.Anything, "good").Return(claims, nil)
	return auth
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginHandler(t *testing.T) {
	auth := new(mocks.MockAuthService)
	auth.On("Login", mock.Anything, "cook@example.com", "wrong").Return("", service.ErrInvalidCredentials)
	auth.On("Login", mock.Anything, "cook@example.com", "right").Return("signed.token", nil)

	r := gin.New()
	api.NewAuthHandler(auth).RegisterRoutes(r.Group("/api/v1"))

	w := send(r, http.MethodPost, "/api/v1/auth/token/login", `{"email":"cook@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(r, http.MethodPost, "/api/v1/auth/token/login", `{"email":"cook@example.com","password":"right"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"auth_token":"signed.token"}`, w.Body.String())

	w = send(r, http.MethodPost, "/api/v1/auth/token/login", `{"email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"email"`)

	auth.AssertExpectations(t)
}

func TestBookmarkHandlersMapErrors(t *testing.T) {
	claims := &types.TokenClaims{UserID: uuid.New(), Username: "cook"}
	recipeID := uuid.New()

	bookmarks := new(mocks.MockBookmarkService)
	bookmarks.On("AddFavorite", mock.Anything, claims.UserID, recipeID).
		Return(nil, &service.ConflictError{Pair: "favorite"})
	bookmarks.On("AddToCart", mock.Anything, claims.UserID, recipeID).
		Return(&types.ShortRecipeResponse{ID: recipeID, Name: "Soup", CookingTime: 5}, nil)
	bookmarks.On("RemoveFromCart", mock.Anything, claims.UserID, recipeID).
		Return(errors.New("connection reset"))

	shopping := new(mocks.MockShoppingListService)
	shopping.On("Build", mock.Anything, claims.UserID).Return("", errors.New("connection reset"))

	r := newMockedRouter(mockedAuth(claims), func(v1 *gin.RouterGroup) {
		api.NewRecipeHandler(nil, bookmarks, shopping, nil, 6).RegisterRoutes(v1)
	})
	base := "/api/v1/recipes/" + recipeID.String()

	w := send(r, http.MethodPost, base+"/favorite", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "favorite already exists")

	w = send(r, http.MethodPost, base+"/shopping_cart", "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Soup"`)

	w = send(r, http.MethodDelete, base+"/shopping_cart", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = send(r, http.MethodGet, "/api/v1/recipes/download_shopping_cart", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	bookmarks.AssertExpectations(t)
	shopping.AssertExpectations(t)
}

func TestSubscribeHandlerPassesRecipesLimit(t *testing.T) {
	claims := &types.TokenClaims{UserID: uuid.New(), Username: "reader"}
	authorID := uuid.New()

	follows := new(mocks.MockFollowService)
	follows.On("Follow", mock.Anything, claims.Viewer(), authorID, 3).
		Return(&types.SubscriptionResponse{RecipesCount: 7}, nil)
	follows.On("Subscriptions", mock.Anything, claims.Viewer(), 2, 6, 0).
		Return([]types.SubscriptionResponse{}, int64(7), nil)

	r := newMockedRouter(mockedAuth(claims), func(v1 *gin.RouterGroup) {
		api.NewUserHandler(nil, follows, 6).RegisterRoutes(v1)
	})

	w := send(r, http.MethodPost, "/api/v1/users/"+authorID.String()+"/subscribe?recipes_limit=3", "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"recipes_count":7`)

	w = send(r, http.MethodGet, "/api/v1/users/subscriptions?page=2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"results":[]`)

	w = send(r, http.MethodPost, "/api/v1/users/"+authorID.String()+"/subscribe?recipes_limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	follows.AssertExpectations(t)
}
