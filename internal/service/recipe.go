package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/foodgram/backend/internal/log"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxRecipeNameLength = 200
	maxCookingTime      = 32767
	// amounts are stored in INTEGER columns
	maxAmount = math.MaxInt32
)

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
	}
}

// Codec returns the recipe codec for one request. target is the recipe an
// update replaces and is nil for creation.
func (s *RecipeService) Codec(viewer *types.Viewer, target *models.Recipe) *RecipeCodec {
	return &RecipeCodec{s: s, viewer: viewer, target: target}
}

// Get loads a recipe with its author, tags and ingredient quantities.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	return getRecipe(s.db.WithContext(ctx), id)
}

func getRecipe(db *gorm.DB, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := withRecipeRelations(db).First(&recipe, "recipes.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe")
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

func withRecipeRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Quantities.Ingredient")
}

// List returns one page of recipes, newest first, and the total number of
// recipes matching the filters.
func (s *RecipeService) List(ctx context.Context, viewer *types.Viewer, filters models.RecipeFilters) ([]models.Recipe, int64, error) {
	filtered := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Recipe{})
		if filters.AuthorID != nil {
			q = q.Where("recipes.author_id = ?", *filters.AuthorID)
		}
		if len(filters.TagSlugs) > 0 {
			q = q.Where("recipes.id IN (?)", s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filters.TagSlugs))
		}
		if viewer != nil && filters.Favorited {
			q = q.Where("recipes.id IN (?)", s.db.Model(&models.Favorite{}).
				Select("recipe_id").Where("user_id = ?", viewer.UserID))
		}
		if viewer != nil && filters.InShoppingCart {
			q = q.Where("recipes.id IN (?)", s.db.Model(&models.ShoppingCart{}).
				Select("recipe_id").Where("user_id = ?", viewer.UserID))
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	if err := withRecipeRelations(filtered()).
		Order("recipes.created_at DESC").
		Scopes(paginate(filters.Page, filters.Limit)).
		Find(&recipes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, total, nil
}

// Delete removes a recipe with its quantities, tag links, favorites and
// cart entries. Only the author or an admin may delete.
func (s *RecipeService) Delete(ctx context.Context, viewer *types.Viewer, id uuid.UUID) error {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !viewer.CanEdit(recipe.AuthorID) {
		return ErrForbidden
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{&models.IngredientQuantity{}, &models.Favorite{}, &models.ShoppingCart{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", recipe.ID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	if recipe.Image != "" {
		if err := s.images.Delete(ctx, recipe.Image); err != nil {
			log.Error(ctx, "failed to delete recipe image", "recipe_id", recipe.ID, "error", err)
		}
	}
	return nil
}

// save validates in and writes the recipe, its quantities and tag links in
// one transaction. Nothing is written when validation fails.
func (s *RecipeService) save(ctx context.Context, viewer *types.Viewer, target *models.Recipe, in *types.RecipeInput) (*models.Recipe, error) {
	if viewer == nil {
		return nil, ErrForbidden
	}
	if target != nil && !viewer.CanEdit(target.AuthorID) {
		return nil, ErrForbidden
	}
	if err := validateRecipeInput(in, target == nil); err != nil {
		return nil, err
	}

	var image *Image
	if in.Image != "" {
		decoded, err := DecodeDataURI(in.Image)
		if err != nil {
			return nil, err
		}
		image = decoded
	}

	recipe := &models.Recipe{AuthorID: viewer.UserID}
	var previousImage string
	if target != nil {
		copied := *target
		recipe = &copied
		previousImage = target.Image
	}
	recipe.Name = strings.TrimSpace(in.Name)
	recipe.Text = in.Text
	recipe.CookingTime = in.CookingTime

	var storedImage string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := loadTags(tx, in.Tags)
		if err != nil {
			return err
		}
		if err := ensureIngredients(tx, in.Ingredients); err != nil {
			return err
		}

		if image != nil {
			storedImage, err = s.images.Put(ctx, newImageKey(image.Ext), image.Data, image.ContentType)
			if err != nil {
				return err
			}
			recipe.Image = storedImage
		}

		if target == nil {
			err = tx.Omit(clause.Associations).Create(recipe).Error
		} else {
			err = tx.Omit(clause.Associations).Save(recipe).Error
		}
		if err != nil {
			return err
		}

		if err := replaceQuantities(tx, recipe.ID, in.Ingredients); err != nil {
			return err
		}
		return replaceTags(tx, recipe, tags)
	})
	if err != nil {
		if storedImage != "" {
			if delErr := s.images.Delete(ctx, storedImage); delErr != nil {
				log.Error(ctx, "failed to remove orphaned image", "url", storedImage, "error", delErr)
			}
		}
		var verr *ValidationError
		if errors.As(err, &verr) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}

	if previousImage != "" && storedImage != "" && previousImage != storedImage {
		if err := s.images.Delete(ctx, previousImage); err != nil {
			log.Error(ctx, "failed to delete replaced image", "url", previousImage, "error", err)
		}
	}

	return s.Get(ctx, recipe.ID)
}

func validateRecipeInput(in *types.RecipeInput, creating bool) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return invalid("name", "this field is required")
	}
	if len([]rune(name)) > maxRecipeNameLength {
		return invalid("name", fmt.Sprintf("must be at most %d characters", maxRecipeNameLength))
	}
	if strings.TrimSpace(in.Text) == "" {
		return invalid("text", "this field is required")
	}
	if in.CookingTime < 1 {
		return invalid("cooking_time", "must be at least 1 minute")
	}
	if in.CookingTime > maxCookingTime {
		return invalid("cooking_time", fmt.Sprintf("must be at most %d minutes", maxCookingTime))
	}
	if creating && in.Image == "" {
		return invalid("image", "this field is required")
	}

	if len(in.Tags) == 0 {
		return invalid("tags", "at least one tag is required")
	}
	seenTags := make(map[uuid.UUID]bool, len(in.Tags))
	for _, id := range in.Tags {
		if seenTags[id] {
			return invalid("tags", "tags must not repeat")
		}
		seenTags[id] = true
	}

	if len(in.Ingredients) == 0 {
		return invalid("ingredients", "at least one ingredient is required")
	}
	seenIngredients := make(map[uuid.UUID]bool, len(in.Ingredients))
	for _, item := range in.Ingredients {
		if item.Amount < 1 {
			return invalid("amount", "must be at least 1")
		}
		if item.Amount > maxAmount {
			return invalid("amount", fmt.Sprintf("must be at most %d", maxAmount))
		}
		if seenIngredients[item.ID] {
			return invalid("ingredients", "ingredients must not repeat")
		}
		seenIngredients[item.ID] = true
	}
	return nil
}

func loadTags(tx *gorm.DB, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, notFound("tag")
	}
	return tags, nil
}

func ensureIngredients(tx *gorm.DB, items []types.IngredientAmount) error {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(ids) {
		return notFound("ingredient")
	}
	return nil
}

func replaceQuantities(tx *gorm.DB, recipeID uuid.UUID, items []types.IngredientAmount) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.IngredientQuantity{}).Error; err != nil {
		return err
	}
	rows := make([]models.IngredientQuantity, len(items))
	for i, item := range items {
		rows[i] = models.IngredientQuantity{RecipeID: recipeID, IngredientID: item.ID, Amount: item.Amount}
	}
	return tx.Create(&rows).Error
}

// replaceTags swaps the recipe's tag links. An Association is spent once
// Clear has run, so the append takes a fresh one.
func replaceTags(tx *gorm.DB, recipe *models.Recipe, tags []models.Tag) error {
	if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
		return err
	}
	return tx.Model(recipe).Association("Tags").Append(tags)
}

// RecipeCodec converts recipes for one viewer. Reads mark favorites, cart
// entries and subscriptions from the viewer's point of view.
type RecipeCodec struct {
	s      *RecipeService
	viewer *types.Viewer
	target *models.Recipe
}

var _ Codec[models.Recipe, types.RecipeInput, types.RecipeResponse] = (*RecipeCodec)(nil)

func (c *RecipeCodec) Write(ctx context.Context, in *types.RecipeInput) (*models.Recipe, error) {
	return c.s.save(ctx, c.viewer, c.target, in)
}

func (c *RecipeCodec) Read(ctx context.Context, recipe *models.Recipe) (*types.RecipeResponse, error) {
	out, err := c.ReadMany(ctx, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ReadMany renders a page of recipes with a fixed number of queries.
func (c *RecipeCodec) ReadMany(ctx context.Context, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs[i] = recipes[i].AuthorID
	}

	favorited, err := c.marked(ctx, &models.Favorite{}, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := c.marked(ctx, &models.ShoppingCart{}, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := subscribedTo(ctx, c.s.db, c.viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		resp := types.RecipeResponse{
			ID:               r.ID,
			Tags:             make([]types.TagResponse, len(r.Tags)),
			Ingredients:      make([]types.RecipeIngredientResponse, 0, len(r.Quantities)),
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
		if r.Author != nil {
			resp.Author = toUserResponse(r.Author, subscribed[r.AuthorID])
		}
		for j := range r.Tags {
			resp.Tags[j] = toTagResponse(&r.Tags[j])
		}
		for _, q := range r.Quantities {
			if q.Ingredient == nil {
				continue
			}
			resp.Ingredients = append(resp.Ingredients, types.RecipeIngredientResponse{
				ID:              q.Ingredient.ID,
				Name:            q.Ingredient.Name,
				MeasurementUnit: q.Ingredient.MeasurementUnit,
				Amount:          q.Amount,
			})
		}
		sort.Slice(resp.Ingredients, func(a, b int) bool {
			return resp.Ingredients[a].Name < resp.Ingredients[b].Name
		})
		out[i] = resp
	}
	return out, nil
}

// marked returns the recipes among ids the viewer has a row for in the
// given bookmark table.
func (c *RecipeCodec) marked(ctx context.Context, table interface{}, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool)
	if c.viewer == nil || len(ids) == 0 {
		return result, nil
	}
	var found []uuid.UUID
	if err := c.s.db.WithContext(ctx).Model(table).
		Where("user_id = ? AND recipe_id IN ?", c.viewer.UserID, ids).
		Pluck("recipe_id", &found).Error; err != nil {
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}
	for _, id := range found {
		result[id] = true
	}
	return result, nil
}

func ToShortRecipe(r *models.Recipe) types.ShortRecipeResponse {
	return types.ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}
