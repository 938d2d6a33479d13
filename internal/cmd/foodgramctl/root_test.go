package foodgramctl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENV", "test")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("CONFIG_FILE", "")

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	loadFormat = ""
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "load")
}

func TestLoadIngredientsIsIdempotent(t *testing.T) {
	db := filepath.Join(t.TempDir(), "foodgram.db")
	file := writeFile(t, "ingredients.csv", "salt,g\nflour,g\nmilk,ml\n")

	out, err := run(t, "--db", db, "load", "ingredients", file)
	require.NoError(t, err)
	assert.Contains(t, out, "3 created, 0 skipped")

	out, err = run(t, "--db", db, "load", "ingredients", file)
	require.NoError(t, err)
	assert.Contains(t, out, "0 created, 3 skipped")
}

func TestLoadTagsJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "foodgram.db")
	file := writeFile(t, "tags.json", `[
		{"name": "Breakfast", "color": "#E26C2D", "slug": "breakfast"},
		{"name": "Dinner", "color": "#49B64E", "slug": "dinner"}
	]`)

	out, err := run(t, "--db", db, "load", "tags", file)
	require.NoError(t, err)
	assert.Contains(t, out, "2 created, 0 skipped")
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	file := writeFile(t, "tags.json", `[]`)
	_, err := run(t, "--db", filepath.Join(t.TempDir(), "x.db"), "load", "tags", "--format", "xml", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported --format")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := run(t, "load", "tags", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestCreateAdmin(t *testing.T) {
	db := filepath.Join(t.TempDir(), "foodgram.db")

	out, err := run(t, "--db", db, "createadmin", "--email", "root@example.com", "--username", "root", "--password", "super-secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Created admin root")

	_, err = run(t, "--db", db, "createadmin", "--email", "root@example.com", "--username", "root", "--password", "super-secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateAdminRequiresFlags(t *testing.T) {
	adminUser.Email, adminUser.Username, adminUser.Password = "", "", ""
	_, err := run(t, "createadmin", "--email", "root@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is required")
}
