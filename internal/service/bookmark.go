package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookmarkService maintains the per-user favorite and shopping cart sets.
// A recipe is in each set at most once.
type BookmarkService struct {
	db *gorm.DB
}

func NewBookmarkService(db *gorm.DB) *BookmarkService {
	return &BookmarkService{db: db}
}

func (s *BookmarkService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipeResponse, error) {
	return s.add(ctx, &models.Favorite{UserID: userID, RecipeID: recipeID}, userID, recipeID, "favorite")
}

func (s *BookmarkService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.remove(ctx, &models.Favorite{}, userID, recipeID, "favorite")
}

func (s *BookmarkService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipeResponse, error) {
	return s.add(ctx, &models.ShoppingCart{UserID: userID, RecipeID: recipeID}, userID, recipeID, "shopping cart entry")
}

func (s *BookmarkService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.remove(ctx, &models.ShoppingCart{}, userID, recipeID, "shopping cart entry")
}

// add inserts row, a *models.Favorite or *models.ShoppingCart, after
// checking the recipe exists and the pair is not already present.
func (s *BookmarkService) add(ctx context.Context, row interface{}, userID, recipeID uuid.UUID, kind string) (*types.ShortRecipeResponse, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("recipe")
			}
			return err
		}

		var count int64
		if err := tx.Model(row).
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ConflictError{Pair: kind}
		}

		if err := tx.Create(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Pair: kind}
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add %s: %w", kind, err)
	}

	short := ToShortRecipe(&recipe)
	return &short, nil
}

func (s *BookmarkService) remove(ctx context.Context, table interface{}, userID, recipeID uuid.UUID, kind string) error {
	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&exists).Error; err != nil {
		return fmt.Errorf("failed to load recipe: %w", err)
	}
	if exists == 0 {
		return notFound("recipe")
	}

	result := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(table)
	if result.Error != nil {
		return fmt.Errorf("failed to remove %s: %w", kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound(kind)
	}
	return nil
}
