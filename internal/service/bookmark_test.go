package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookmarks(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	ctx := context.Background()
	cook := testhelpers.CreateUser(t, db, "cook")
	fan := testhelpers.CreateUser(t, db, "fan")
	tag := testhelpers.CreateTag(t, db, "lunch")
	recipe := testhelpers.CreateRecipe(t, db, cook, "Bread", []*models.Tag{tag}, nil)
	svc := service.NewBookmarkService(db)

	type ops struct {
		add    func(ctx context.Context, userID, recipeID uuid.UUID) error
		remove func(ctx context.Context, userID, recipeID uuid.UUID) error
	}
	cases := map[string]ops{
		"favorite": {
			add: func(ctx context.Context, u, r uuid.UUID) error {
				_, err := svc.AddFavorite(ctx, u, r)
				return err
			},
			remove: svc.RemoveFavorite,
		},
		"cart": {
			add: func(ctx context.Context, u, r uuid.UUID) error {
				_, err := svc.AddToCart(ctx, u, r)
				return err
			},
			remove: svc.RemoveFromCart,
		},
	}

	for name, op := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, op.add(ctx, fan.ID, recipe.ID))

			err := op.add(ctx, fan.ID, recipe.ID)
			var conflict *service.ConflictError
			assert.True(t, errors.As(err, &conflict))
			assert.ErrorIs(t, err, service.ErrConflict)

			assert.ErrorIs(t, op.add(ctx, fan.ID, uuid.New()), service.ErrNotFound)

			require.NoError(t, op.remove(ctx, fan.ID, recipe.ID))
			assert.ErrorIs(t, op.remove(ctx, fan.ID, recipe.ID), service.ErrNotFound)
			assert.ErrorIs(t, op.remove(ctx, fan.ID, uuid.New()), service.ErrNotFound)

			require.NoError(t, op.add(ctx, fan.ID, recipe.ID), "re-adding after removal works")
		})
	}
}

func TestAddFavoriteReturnsShortRecipe(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	cook := testhelpers.CreateUser(t, db, "cook")
	recipe := testhelpers.CreateRecipe(t, db, cook, "Bread", nil, nil)

	short, err := service.NewBookmarkService(db).AddFavorite(context.Background(), cook.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, short.ID)
	assert.Equal(t, "Bread", short.Name)
	assert.Equal(t, recipe.Image, short.Image)
	assert.Equal(t, 10, short.CookingTime)
}
