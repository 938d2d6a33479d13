package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	slugPattern  = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// CatalogService serves the read-only tag and ingredient catalogs. New
// entries only arrive through the loader.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("tag")
		}
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}
	return &tag, nil
}

// ListIngredients returns ingredients whose name starts with prefix,
// case-insensitively. An empty prefix lists everything.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name").Order("measurement_unit")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where("LOWER(name) LIKE ?", strings.ToLower(prefix)+"%")
	}
	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("ingredient")
		}
		return nil, fmt.Errorf("failed to load ingredient: %w", err)
	}
	return &ingredient, nil
}

func (s *CatalogService) TagCodec() *TagCodec {
	return &TagCodec{db: s.db}
}

func (s *CatalogService) IngredientCodec() *IngredientCodec {
	return &IngredientCodec{db: s.db}
}

type TagCodec struct {
	db *gorm.DB
}

var _ Codec[models.Tag, types.TagInput, types.TagResponse] = (*TagCodec)(nil)

func (c *TagCodec) Read(ctx context.Context, tag *models.Tag) (*types.TagResponse, error) {
	out := toTagResponse(tag)
	return &out, nil
}

func (c *TagCodec) Write(ctx context.Context, in *types.TagInput) (*models.Tag, error) {
	tag := &models.Tag{
		Name:  strings.TrimSpace(in.Name),
		Color: strings.ToUpper(strings.TrimSpace(in.Color)),
		Slug:  strings.TrimSpace(in.Slug),
	}
	switch {
	case tag.Name == "":
		return nil, invalid("name", "this field is required")
	case !colorPattern.MatchString(tag.Color):
		return nil, invalid("color", "must be a hex color like #E26C2D")
	case !slugPattern.MatchString(tag.Slug):
		return nil, invalid("slug", "may contain only letters, digits, hyphens and underscores")
	}

	var count int64
	if err := c.db.WithContext(ctx).Model(&models.Tag{}).Where("slug = ?", tag.Slug).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check tag: %w", err)
	}
	if count > 0 {
		return nil, &ConflictError{Pair: fmt.Sprintf("tag %q", tag.Slug)}
	}

	if err := c.db.WithContext(ctx).Create(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Pair: fmt.Sprintf("tag %q", tag.Slug)}
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

type IngredientCodec struct {
	db *gorm.DB
}

var _ Codec[models.Ingredient, types.IngredientInput, types.IngredientResponse] = (*IngredientCodec)(nil)

func (c *IngredientCodec) Read(ctx context.Context, ingredient *models.Ingredient) (*types.IngredientResponse, error) {
	out := toIngredientResponse(ingredient)
	return &out, nil
}

func (c *IngredientCodec) Write(ctx context.Context, in *types.IngredientInput) (*models.Ingredient, error) {
	ingredient := &models.Ingredient{
		Name:            strings.TrimSpace(in.Name),
		MeasurementUnit: strings.TrimSpace(in.MeasurementUnit),
	}
	if ingredient.Name == "" {
		return nil, invalid("name", "this field is required")
	}
	if ingredient.MeasurementUnit == "" {
		return nil, invalid("measurement_unit", "this field is required")
	}

	var count int64
	if err := c.db.WithContext(ctx).Model(&models.Ingredient{}).
		Where("name = ? AND measurement_unit = ?", ingredient.Name, ingredient.MeasurementUnit).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check ingredient: %w", err)
	}
	if count > 0 {
		return nil, &ConflictError{Pair: fmt.Sprintf("ingredient %q (%s)", ingredient.Name, ingredient.MeasurementUnit)}
	}

	if err := c.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Pair: fmt.Sprintf("ingredient %q (%s)", ingredient.Name, ingredient.MeasurementUnit)}
		}
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}
	return ingredient, nil
}

func toTagResponse(t *models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func toIngredientResponse(i *models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}
