package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/log"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	migrationsDir := flag.String("dir", "migrations", "Directory holding SQL migrations")
	flag.Parse()

	ctx := context.Background()
	if err := run(ctx, *migrationsDir, *rollback); err != nil {
		log.Error(ctx, "migration failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, migrationsDir string, rollback bool) error {
	// DATABASE_URL wins over the discrete db_* settings
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.DBDriver != "postgres" {
			return fmt.Errorf("SQL migrations require postgres, configured driver is %q", cfg.DBDriver)
		}
		dsn = cfg.PostgresDSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if rollback {
		name, err := database.RollbackLast(ctx, db, migrationsDir)
		if errors.Is(err, database.ErrNothingToRollback) {
			fmt.Println("No migrations to rollback")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("Successfully rolled back migration: %s\n", name)
		return nil
	}

	applied, err := database.ApplyMigrations(ctx, db, migrationsDir)
	if err != nil {
		return err
	}
	for _, file := range applied {
		fmt.Printf("Successfully applied migration: %s\n", file)
	}
	fmt.Println("All migrations applied successfully.")
	return nil
}
