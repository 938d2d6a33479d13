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

// FollowService manages subscriptions from one user to another author.
type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Follow subscribes userID to authorID and returns the subscription view of
// the author. Following yourself or following twice is rejected.
func (s *FollowService) Follow(ctx context.Context, viewer *types.Viewer, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	if viewer.UserID == authorID {
		return nil, invalid("author", "you cannot subscribe to yourself")
	}

	var author models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&author, "id = ?", authorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("user")
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.Follow{}).
			Where("user_id = ? AND author_id = ?", viewer.UserID, authorID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ConflictError{Pair: "subscription"}
		}

		if err := tx.Create(&models.Follow{UserID: viewer.UserID, AuthorID: authorID}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Pair: "subscription"}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	views, err := s.subscriptionViews(ctx, viewer, []models.User{author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *FollowService) Unfollow(ctx context.Context, userID, authorID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("subscription")
	}
	return nil
}

// Subscriptions lists the authors the viewer follows, each with up to
// recipesLimit of their newest recipes. recipesLimit <= 0 means all.
func (s *FollowService) Subscriptions(ctx context.Context, viewer *types.Viewer, page, limit, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	followed := s.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", viewer.UserID)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id IN (?)", followed).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var authors []models.User
	if err := s.db.WithContext(ctx).
		Where("id IN (?)", followed).
		Order("username").
		Scopes(paginate(page, limit)).
		Find(&authors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	views, err := s.subscriptionViews(ctx, viewer, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *FollowService) subscriptionViews(ctx context.Context, viewer *types.Viewer, authors []models.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	if len(authors) == 0 {
		return []types.SubscriptionResponse{}, nil
	}

	ids := make([]uuid.UUID, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}

	subscribed, err := subscribedTo(ctx, s.db, viewer, ids)
	if err != nil {
		return nil, err
	}

	var counts []struct {
		AuthorID uuid.UUID
		Total    int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	totals := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		totals[c.AuthorID] = c.Total
	}

	views := make([]types.SubscriptionResponse, len(authors))
	for i := range authors {
		q := s.db.WithContext(ctx).Where("author_id = ?", authors[i].ID).Order("created_at DESC")
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if err := q.Find(&recipes).Error; err != nil {
			return nil, fmt.Errorf("failed to load author recipes: %w", err)
		}

		short := make([]types.ShortRecipeResponse, len(recipes))
		for j := range recipes {
			short[j] = ToShortRecipe(&recipes[j])
		}
		views[i] = types.SubscriptionResponse{
			UserResponse: toUserResponse(&authors[i], subscribed[authors[i].ID]),
			Recipes:      short,
			RecipesCount: totals[authors[i].ID],
		}
	}
	return views, nil
}

// subscribedTo reports which of authorIDs the viewer follows. Anonymous
// viewers follow nobody.
func subscribedTo(ctx context.Context, db *gorm.DB, viewer *types.Viewer, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool)
	if viewer == nil || len(authorIDs) == 0 {
		return result, nil
	}

	var followed []uuid.UUID
	if err := db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", viewer.UserID, authorIDs).
		Pluck("author_id", &followed).Error; err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	for _, id := range followed {
		result[id] = true
	}
	return result, nil
}
