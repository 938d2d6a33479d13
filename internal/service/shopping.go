package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodgram/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShoppingItem is one aggregated line of a shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// ShoppingListService sums the ingredients of every recipe in a user's
// cart.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Items groups by (name, measurement unit) so amounts in different units
// are never added together. Items are ordered by name, then unit.
func (s *ShoppingListService) Items(ctx context.Context, userID uuid.UUID) ([]ShoppingItem, error) {
	var items []ShoppingItem
	err := s.db.WithContext(ctx).Model(&models.ShoppingCart{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_quantities.amount) AS amount").
		Joins("JOIN ingredient_quantities ON ingredient_quantities.recipe_id = shopping_carts.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = ingredient_quantities.ingredient_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	return items, nil
}

// Render formats items as numbered "N) name:amountunit" lines.
func Render(items []ShoppingItem) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d) %s:%d%s\n", i+1, item.Name, item.Amount, item.MeasurementUnit)
	}
	return b.String()
}

func (s *ShoppingListService) Build(ctx context.Context, userID uuid.UUID) (string, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return "", err
	}
	return Render(items), nil
}
