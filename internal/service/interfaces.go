package service

import (
	"context"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
	"github.com/google/uuid"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
}

// IUserService defines the interface for account operations
type IUserService interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, page, limit int) ([]models.User, int64, error)
	SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error
	Codec(viewer *types.Viewer) *UserCodec
}

// IFollowService defines the interface for subscription operations
type IFollowService interface {
	Follow(ctx context.Context, viewer *types.Viewer, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error)
	Unfollow(ctx context.Context, userID, authorID uuid.UUID) error
	Subscriptions(ctx context.Context, viewer *types.Viewer, page, limit, recipesLimit int) ([]types.SubscriptionResponse, int64, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	List(ctx context.Context, viewer *types.Viewer, filters models.RecipeFilters) ([]models.Recipe, int64, error)
	Delete(ctx context.Context, viewer *types.Viewer, id uuid.UUID) error
	Codec(viewer *types.Viewer, target *models.Recipe) *RecipeCodec
}

// IBookmarkService defines the interface for favorite and cart operations
type IBookmarkService interface {
	AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipeResponse, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipeResponse, error)
	RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error
}

// ICatalogService defines the interface for tag and ingredient lookups
type ICatalogService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	TagCodec() *TagCodec
	IngredientCodec() *IngredientCodec
}

// IShoppingListService defines the interface for shopping list downloads
type IShoppingListService interface {
	Build(ctx context.Context, userID uuid.UUID) (string, error)
}
