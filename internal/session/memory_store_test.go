package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSessionLifecycle(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, "h1", Record{UserID: "usr_1"}, now.Add(time.Hour)))

	record, err := store.LookupSession(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "usr_1", record.UserID)
	assert.Equal(t, now, record.CreatedAt)

	now = now.Add(2 * time.Hour)
	_, err = store.LookupSession(ctx, "h1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRevoke(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, "h1", Record{UserID: "usr_1"}, time.Now().Add(time.Hour)))
	require.NoError(t, store.RevokeSession(ctx, "h1"))
	require.NoError(t, store.RevokeSession(ctx, "unknown"))

	_, err := store.LookupSession(ctx, "h1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRejectsExpiredSave(t *testing.T) {
	store := NewMemoryStore()
	err := store.SaveSession(context.Background(), "h1", Record{UserID: "usr_1"}, time.Now().Add(-time.Second))
	require.Error(t, err)
}

func TestMemoryStoreConsumeLink(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := store.ConsumeLink(ctx, "l1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.ConsumeLink(ctx, "l1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err = store.ConsumeLink(ctx, "l2", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotContains(t, store.links, "l1")
}

func TestOpenSelectsDriver(t *testing.T) {
	s, err := Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open("etcd", "")
	assert.Error(t, err)
}
