package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

var (
	_ service.IBookmarkService     = (*MockBookmarkService)(nil)
	_ service.IShoppingListService = (*MockShoppingListService)(nil)
	_ service.IFollowService       = (*MockFollowService)(nil)
)

// MockBookmarkService is a mock implementation of the BookmarkService interface
type MockBookmarkService struct {
	mock.Mock
}

func (m *MockBookmarkService) short(args mock.Arguments) (*types.ShortRecipeResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ShortRecipeResponse), args.Error(1)
}

func (m *MockBookmarkService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipeResponse, error) {
	return m.short(m.Called(ctx, userID, recipeID))
}

func (m *MockBookmarkService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

func (m *MockBookmarkService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipeResponse, error) {
	return m.short(m.Called(ctx, userID, recipeID))
}

func (m *MockBookmarkService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

// MockShoppingListService is a mock implementation of the ShoppingListService interface
type MockShoppingListService struct {
	mock.Mock
}

func (m *MockShoppingListService) Build(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// MockFollowService is a mock implementation of the FollowService interface
type MockFollowService struct {
	mock.Mock
}

func (m *MockFollowService) Follow(ctx context.Context, viewer *types.Viewer, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	args := m.Called(ctx, viewer, authorID, recipesLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SubscriptionResponse), args.Error(1)
}

func (m *MockFollowService) Unfollow(ctx context.Context, userID, authorID uuid.UUID) error {
	return m.Called(ctx, userID, authorID).Error(0)
}

func (m *MockFollowService) Subscriptions(ctx context.Context, viewer *types.Viewer, page, limit, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	args := m.Called(ctx, viewer, page, limit, recipesLimit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]types.SubscriptionResponse), args.Get(1).(int64), args.Error(2)
}
