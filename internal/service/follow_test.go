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

func TestFollowRules(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	ctx := context.Background()
	reader := testhelpers.CreateUser(t, db, "reader")
	author := testhelpers.CreateUser(t, db, "author")
	svc := service.NewFollowService(db)
	viewer := testhelpers.Viewer(reader)

	_, err := svc.Follow(ctx, viewer, reader.ID, 0)
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "author", verr.Field)

	_, err = svc.Follow(ctx, viewer, uuid.New(), 0)
	assert.ErrorIs(t, err, service.ErrNotFound)

	sub, err := svc.Follow(ctx, viewer, author.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "author", sub.Username)
	assert.True(t, sub.IsSubscribed)

	_, err = svc.Follow(ctx, viewer, author.ID, 0)
	assert.ErrorIs(t, err, service.ErrConflict)

	require.NoError(t, svc.Unfollow(ctx, reader.ID, author.ID))
	assert.ErrorIs(t, svc.Unfollow(ctx, reader.ID, author.ID), service.ErrNotFound)
}

func TestSubscriptionsListRecipes(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	ctx := context.Background()
	reader := testhelpers.CreateUser(t, db, "reader")
	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	testhelpers.CreateUser(t, db, "carol")
	tag := testhelpers.CreateTag(t, db, "lunch")

	for _, name := range []string{"One", "Two", "Three"} {
		testhelpers.CreateRecipe(t, db, alice, name, []*models.Tag{tag}, nil)
	}

	svc := service.NewFollowService(db)
	viewer := testhelpers.Viewer(reader)
	_, err := svc.Follow(ctx, viewer, alice.ID, 0)
	require.NoError(t, err)
	_, err = svc.Follow(ctx, viewer, bob.ID, 0)
	require.NoError(t, err)

	subs, total, err := svc.Subscriptions(ctx, viewer, 1, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, subs, 2)

	assert.Equal(t, "alice", subs[0].Username)
	assert.Equal(t, int64(3), subs[0].RecipesCount)
	assert.Len(t, subs[0].Recipes, 2)
	assert.True(t, subs[0].IsSubscribed)

	assert.Equal(t, "bob", subs[1].Username)
	assert.Zero(t, subs[1].RecipesCount)
	assert.Empty(t, subs[1].Recipes)

	all, _, err := svc.Subscriptions(ctx, viewer, 1, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all[0].Recipes, 3)

	page, total, err := svc.Subscriptions(ctx, viewer, 2, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, page, 1)
	assert.Equal(t, "bob", page[0].Username)
}
