package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteAndAutoMigrate(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "foodgram.db"),
		DBLogLevel: "silent",
	}

	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(context.Background(), db, "unused"))
	require.NoError(t, HealthCheck(context.Background(), db))

	user := models.User{Email: "cook@example.com", Username: "cook", FirstName: "A", LastName: "B", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)

	for _, table := range []string{"users", "recipes", "tags", "ingredients", "recipe_tags", "ingredient_quantities", "favorites", "shopping_carts", "follows"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000002_more.sql", "000001_init.sql", "000001_init_rollback.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600))
	}

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init.sql", "000002_more.sql"}, files)
	assert.Equal(t, "000001", migrationVersion(files[0]))
}

func TestMigrationsDirectoryIsConsistent(t *testing.T) {
	files, err := migrationFiles("../../migrations")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		_, err := os.Stat(filepath.Join("../../migrations", f[:len(f)-len(".sql")]+rollbackSuffix))
		assert.NoError(t, err, "missing rollback for %s", f)
	}
}

func TestNewRedisClientDisabled(t *testing.T) {
	client, err := NewRedisClient(&config.Config{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient(&config.Config{RedisURL: "not a url"})
	assert.Error(t, err)
}
