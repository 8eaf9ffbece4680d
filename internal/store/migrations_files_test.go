package store

import (
	"context"
	"database/sql"
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsHaveUpAndDownSections(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^(\d+)_[a-z0-9_]+\.sql$`)
	seen := map[string]bool{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := pattern.FindStringSubmatch(entry.Name())
		require.NotNil(t, match, "unexpected migration file name %s", entry.Name())
		require.False(t, seen[match[1]], "duplicate migration version %s", match[1])
		seen[match[1]] = true

		body, err := fs.ReadFile(migrationsFS, "migrations/"+entry.Name())
		require.NoError(t, err)
		text := string(body)
		assert.Contains(t, text, "-- +goose Up", entry.Name())
		assert.Contains(t, text, "-- +goose Down", entry.Name())
		assert.Less(t, strings.Index(text, "-- +goose Up"), strings.Index(text, "-- +goose Down"), entry.Name())
	}

	require.NotEmpty(t, seen, "no migrations discovered")
}

func TestApplyMigrationsUsesEmbeddedDirectory(t *testing.T) {
	original := gooseUp
	t.Cleanup(func() { gooseUp = original })

	var gotDir string
	gooseUp = func(_ context.Context, _ *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, ApplyMigrations(context.Background(), nil))
	assert.Equal(t, "migrations", gotDir)
}

func TestApplyMigrationsWrapsFailure(t *testing.T) {
	original := gooseUp
	t.Cleanup(func() { gooseUp = original })

	gooseUp = func(context.Context, *sql.DB, string) error {
		return sql.ErrConnDone
	}

	err := ApplyMigrations(context.Background(), nil)
	require.ErrorIs(t, err, sql.ErrConnDone)
	assert.Contains(t, err.Error(), "apply migrations")
}
