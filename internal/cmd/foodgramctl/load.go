package foodgramctl

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/service"
)

var loadFormat string

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load catalog data (json or csv)",
}

var loadIngredientsCmd = &cobra.Command{
	Use:   "ingredients <file>",
	Short: "Load ingredients from a file of name/measurement_unit pairs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, format, err := openCatalogFile(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		items, err := service.ParseIngredients(f, format)
		if err != nil {
			return err
		}
		return withDB(cmd.Context(), func(db *gorm.DB) error {
			result, err := service.NewCatalogService(db).ImportIngredients(cmd.Context(), items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded ingredients: %d created, %d skipped\n", result.Created, result.Skipped)
			return nil
		})
	},
}

var loadTagsCmd = &cobra.Command{
	Use:   "tags <file>",
	Short: "Load tags from a file of name/color/slug rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, format, err := openCatalogFile(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		items, err := service.ParseTags(f, format)
		if err != nil {
			return err
		}
		return withDB(cmd.Context(), func(db *gorm.DB) error {
			result, err := service.NewCatalogService(db).ImportTags(cmd.Context(), items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded tags: %d created, %d skipped\n", result.Created, result.Skipped)
			return nil
		})
	},
}

func init() {
	loadCmd.PersistentFlags().StringVar(&loadFormat, "format", "", "Input format: json or csv (default: from file extension)")
	loadCmd.AddCommand(loadIngredientsCmd, loadTagsCmd)
}

func openCatalogFile(path string) (*os.File, string, error) {
	format := strings.ToLower(strings.TrimSpace(loadFormat))
	if format == "" {
		format = service.FormatFromPath(path)
	}
	if format != "json" && format != "csv" {
		return nil, "", fmt.Errorf("unsupported --format %q (use json or csv)", loadFormat)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	return f, format, nil
}
