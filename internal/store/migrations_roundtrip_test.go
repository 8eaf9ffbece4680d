package store

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsRoundTripPostgres(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("PHRASEBOOK_TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("PHRASEBOOK_TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `DROP SCHEMA IF EXISTS public CASCADE; CREATE SCHEMA public;`)
	require.NoError(t, err, "reset schema")

	require.NoError(t, ApplyMigrations(ctx, db), "apply up migrations (pass 1)")
	require.NoError(t, goose.DownToContext(ctx, db, "migrations", 0), "apply down migrations")
	require.NoError(t, ApplyMigrations(ctx, db), "apply up migrations (pass 2)")

	s := NewPostgresStore(db)
	exerciseStore(t, s)
}

func TestMongoStoreRoundTrip(t *testing.T) {
	uri := strings.TrimSpace(os.Getenv("PHRASEBOOK_TEST_MONGO_URI"))
	if uri == "" {
		t.Skip("PHRASEBOOK_TEST_MONGO_URI is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	database := "phrasebook_test_" + time.Now().UTC().Format("20060102150405")
	s, err := OpenMongo(ctx, uri, database)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.client.Database(database).Drop(context.Background())
		_ = s.Close()
	})

	exerciseStore(t, s)
}

// exerciseStore runs the shared behaviour checks against a freshly migrated backend.
func exerciseStore(t *testing.T, s PhraseStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	travel, err := s.AddCategory(ctx, "user_1", "Travel", "✈️")
	require.NoError(t, err)
	require.NotEmpty(t, travel)

	_, err = s.AddPhrase(ctx, "user_1", travel, "Where is the station?")
	require.NoError(t, err)

	categories, err := Collect(s.Categories(ctx, "user_1"))
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, Category{ID: travel, Name: "Travel", Emoji: "✈️"}, categories[0])

	phrases, err := Collect(s.Phrases(ctx, "user_1", travel))
	require.NoError(t, err)
	require.Len(t, phrases, 1)
	assert.Equal(t, "Where is the station?", phrases[0].Text)

	other, err := Collect(s.Categories(ctx, "user_2"))
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = s.AddPhrase(ctx, "user_2", travel, "not mine")
	assert.ErrorIs(t, err, ErrNotFound)

	foreign, err := Collect(s.Phrases(ctx, "user_2", travel))
	require.NoError(t, err)
	assert.Empty(t, foreign)
}
