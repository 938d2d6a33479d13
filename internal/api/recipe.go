package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

const shoppingListFilename = "shopping_list.txt"

type RecipeHandler struct {
	recipes      service.IRecipeService
	bookmarks    service.IBookmarkService
	shoppingList service.IShoppingListService
	rateLimiter  *middleware.RateLimiter
	pageSize     int
}

// NewRecipeHandler creates a recipe handler. rateLimiter may be nil, in
// which case recipe creation is not limited.
func NewRecipeHandler(
	recipes service.IRecipeService,
	bookmarks service.IBookmarkService,
	shoppingList service.IShoppingListService,
	rateLimiter *middleware.RateLimiter,
	pageSize int,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		bookmarks:    bookmarks,
		shoppingList: shoppingList,
		rateLimiter:  rateLimiter,
		pageSize:     pageSize,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", h.rateLimiter.RateLimitMiddleware(), h.CreateRecipe)
		recipes.GET("/download_shopping_cart", middleware.RequireAuth(), h.DownloadShoppingCart)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PATCH("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/favorite", h.AddFavorite)
		recipes.DELETE("/:id/favorite", h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", h.RemoveFromCart)
	}
}

// ListRecipes returns recipes newest first. The is_favorited and
// is_in_shopping_cart filters only apply to authenticated callers.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	p, err := pageParams(c, h.pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	filters := models.RecipeFilters{
		TagSlugs:       c.QueryArray("tags"),
		Favorited:      queryBool(c, "is_favorited"),
		InShoppingCart: queryBool(c, "is_in_shopping_cart"),
		Page:           p.Page,
		Limit:          p.Limit,
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, &service.ValidationError{Field: "author", Message: "must be a valid user id"})
			return
		}
		filters.AuthorID = &authorID
	}

	ctx := c.Request.Context()
	viewer := middleware.ViewerFrom(c)
	recipes, total, err := h.recipes.List(ctx, viewer, filters)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.recipes.Codec(viewer, nil).ReadMany(ctx, recipes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, total, out))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"), "recipe")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	recipe, err := h.recipes.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.recipes.Codec(middleware.ViewerFrom(c), nil).Read(ctx, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	h.writeRecipe(c, nil, http.StatusCreated)
}

// UpdateRecipe replaces the recipe's fields, ingredients and tags. The
// stored image is kept when no new image is sent.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"), "recipe")
	if !ok {
		return
	}
	target, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.writeRecipe(c, target, http.StatusOK)
}

func (h *RecipeHandler) writeRecipe(c *gin.Context, target *models.Recipe, status int) {
	var in types.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, bindError(err))
		return
	}

	ctx := c.Request.Context()
	codec := h.recipes.Codec(middleware.ViewerFrom(c), target)
	recipe, err := codec.Write(ctx, &in)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := codec.Read(ctx, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, out)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"), "recipe")
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), middleware.ViewerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addBookmark(c, h.bookmarks.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeBookmark(c, h.bookmarks.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addBookmark(c, h.bookmarks.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeBookmark(c, h.bookmarks.RemoveFromCart)
}

type addFunc func(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipeResponse, error)

type removeFunc func(ctx context.Context, userID, recipeID uuid.UUID) error

func (h *RecipeHandler) addBookmark(c *gin.Context, add addFunc) {
	recipeID, ok := parseID(c, c.Param("id"), "recipe")
	if !ok {
		return
	}
	out, err := add(c.Request.Context(), middleware.ViewerFrom(c).UserID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *RecipeHandler) removeBookmark(c *gin.Context, remove removeFunc) {
	recipeID, ok := parseID(c, c.Param("id"), "recipe")
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), middleware.ViewerFrom(c).UserID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart returns the caller's aggregated shopping list as a
// plain text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	text, err := h.shoppingList.Build(c.Request.Context(), middleware.ViewerFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+shoppingListFilename)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
