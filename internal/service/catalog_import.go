package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/foodgram/backend/internal/log"
	"github.com/foodgram/backend/internal/types"
)

// ImportResult counts what a catalog load did. Entries that already exist
// are skipped, so loading the same file twice is harmless.
type ImportResult struct {
	Created int
	Skipped int
}

// ParseIngredients reads ingredients as a JSON array of
// {"name","measurement_unit"} objects or as CSV rows "name,unit".
func ParseIngredients(r io.Reader, format string) ([]types.IngredientInput, error) {
	switch format {
	case "json":
		var items []types.IngredientInput
		if err := json.NewDecoder(r).Decode(&items); err != nil {
			return nil, fmt.Errorf("failed to decode ingredients: %w", err)
		}
		return items, nil
	case "csv":
		rows, err := readCSV(r, 2)
		if err != nil {
			return nil, err
		}
		items := make([]types.IngredientInput, len(rows))
		for i, row := range rows {
			items[i] = types.IngredientInput{Name: row[0], MeasurementUnit: row[1]}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// ParseTags reads tags as a JSON array of {"name","color","slug"} objects or
// as CSV rows "name,color,slug".
func ParseTags(r io.Reader, format string) ([]types.TagInput, error) {
	switch format {
	case "json":
		var items []types.TagInput
		if err := json.NewDecoder(r).Decode(&items); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
		return items, nil
	case "csv":
		rows, err := readCSV(r, 3)
		if err != nil {
			return nil, err
		}
		items := make([]types.TagInput, len(rows))
		for i, row := range rows {
			items[i] = types.TagInput{Name: row[0], Color: row[1], Slug: row[2]}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func readCSV(r io.Reader, fields int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = fields
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

// FormatFromPath picks the loader format from a file extension.
func FormatFromPath(path string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".csv"):
		return "csv"
	default:
		return "json"
	}
}

func (s *CatalogService) ImportIngredients(ctx context.Context, items []types.IngredientInput) (ImportResult, error) {
	codec := s.IngredientCodec()
	var result ImportResult
	for i := range items {
		if _, err := codec.Write(ctx, &items[i]); err != nil {
			if errors.Is(err, ErrConflict) {
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("ingredient %d (%s): %w", i+1, items[i].Name, err)
		}
		result.Created++
	}
	log.Info(ctx, "imported ingredients", "created", result.Created, "skipped", result.Skipped)
	return result, nil
}

func (s *CatalogService) ImportTags(ctx context.Context, items []types.TagInput) (ImportResult, error) {
	codec := s.TagCodec()
	var result ImportResult
	for i := range items {
		if _, err := codec.Write(ctx, &items[i]); err != nil {
			if errors.Is(err, ErrConflict) {
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("tag %d (%s): %w", i+1, items[i].Slug, err)
		}
		result.Created++
	}
	log.Info(ctx, "imported tags", "created", result.Created, "skipped", result.Skipped)
	return result, nil
}
