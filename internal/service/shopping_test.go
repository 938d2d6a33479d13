package service_test

import (
	"context"
	"testing"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingListAggregates(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	ctx := context.Background()

	cook := testhelpers.CreateUser(t, db, "cook")
	shopper := testhelpers.CreateUser(t, db, "shopper")
	tag := testhelpers.CreateTag(t, db, "lunch")
	salt := testhelpers.CreateIngredient(t, db, "Salt", "grams")
	saltPinch := testhelpers.CreateIngredient(t, db, "Salt", "pinch")
	flour := testhelpers.CreateIngredient(t, db, "Flour", "grams")

	bread := testhelpers.CreateRecipe(t, db, cook, "Bread", []*models.Tag{tag}, map[*models.Ingredient]int{salt: 10, flour: 500})
	soup := testhelpers.CreateRecipe(t, db, cook, "Soup", []*models.Tag{tag}, map[*models.Ingredient]int{salt: 5, saltPinch: 2})
	testhelpers.CreateRecipe(t, db, cook, "Cake", []*models.Tag{tag}, map[*models.Ingredient]int{flour: 300})

	bookmarks := service.NewBookmarkService(db)
	_, err := bookmarks.AddToCart(ctx, shopper.ID, bread.ID)
	require.NoError(t, err)
	_, err = bookmarks.AddToCart(ctx, shopper.ID, soup.ID)
	require.NoError(t, err)

	svc := service.NewShoppingListService(db)
	items, err := svc.Items(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, []service.ShoppingItem{
		{Name: "Flour", MeasurementUnit: "grams", Amount: 500},
		{Name: "Salt", MeasurementUnit: "grams", Amount: 15},
		{Name: "Salt", MeasurementUnit: "pinch", Amount: 2},
	}, items)

	text, err := svc.Build(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, "1) Flour:500grams\n2) Salt:15grams\n3) Salt:2pinch\n", text)
}

func TestShoppingListEmptyCart(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db, "empty")

	text, err := service.NewShoppingListService(db).Build(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestRender(t *testing.T) {
	assert.Equal(t, "1) Salt:15grams\n", service.Render([]service.ShoppingItem{{Name: "Salt", MeasurementUnit: "grams", Amount: 15}}))
	assert.Equal(t, "", service.Render(nil))
}
