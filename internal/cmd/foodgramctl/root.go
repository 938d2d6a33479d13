package foodgramctl

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
)

var (
	dbPath        string
	migrationsDir string
)

var rootCmd = &cobra.Command{
	Use:           "foodgramctl",
	Short:         "foodgramctl manages the Foodgram catalog",
	Long:          "foodgramctl loads tags and ingredients into the Foodgram database from JSON or CSV files.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to a SQLite database (overrides the configured store)")
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "migrations", "migrations", "Directory holding SQL migrations")
	rootCmd.AddCommand(loadCmd)
}

// withDB opens the configured store, brings its schema up to date and runs
// fn against it.
func withDB(ctx context.Context, run func(*gorm.DB) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DBDriver = "sqlite"
		cfg.SQLitePath = dbPath
	}

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(ctx, db, migrationsDir); err != nil {
		return err
	}
	return run(db)
}
