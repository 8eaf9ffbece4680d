package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, s
}

func TestNewRedisStore(t *testing.T) {
	store, _ := setupTestRedis(t)

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	if _, err := NewRedisStore("not a url"); err == nil {
		t.Fatal("expected error for invalid redis url")
	}
}

func TestSaveAndLookupSession(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	err := store.SaveSession(ctx, "hash-1", Record{UserID: "usr_1", Email: "a@b.com"}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	record, err := store.LookupSession(ctx, "hash-1")
	if err != nil {
		t.Fatalf("LookupSession failed: %v", err)
	}
	if record.UserID != "usr_1" || record.Email != "a@b.com" {
		t.Errorf("unexpected record %+v", record)
	}
	if record.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestLookupExpiredSession(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	if err := store.SaveSession(ctx, "short", Record{UserID: "usr_2"}, time.Now().Add(time.Second)); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	s.FastForward(2 * time.Second)

	_, err := store.LookupSession(ctx, "short")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for expired session, got %v", err)
	}
}

func TestRevokeSession(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	if err := store.SaveSession(ctx, "to-revoke", Record{UserID: "usr_3"}, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if err := store.RevokeSession(ctx, "to-revoke"); err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if _, err := store.LookupSession(ctx, "to-revoke"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after revoke, got %v", err)
	}

	// Revoking a non-existent session should not error
	if err := store.RevokeSession(ctx, "never-existed"); err != nil {
		t.Errorf("RevokeSession for unknown session failed: %v", err)
	}
}

func TestSessionIsolation(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour)

	if err := store.SaveSession(ctx, "token-1", Record{UserID: "user_1"}, expiresAt); err != nil {
		t.Fatalf("SaveSession 1 failed: %v", err)
	}
	if err := store.SaveSession(ctx, "token-2", Record{UserID: "user_2"}, expiresAt); err != nil {
		t.Fatalf("SaveSession 2 failed: %v", err)
	}
	if err := store.RevokeSession(ctx, "token-1"); err != nil {
		t.Fatalf("Revoke token-1 failed: %v", err)
	}

	if _, err := store.LookupSession(ctx, "token-1"); err == nil {
		t.Error("expected error for revoked token-1, got nil")
	}
	record, err := store.LookupSession(ctx, "token-2")
	if err != nil {
		t.Fatalf("Lookup token-2 after revoke failed: %v", err)
	}
	if record.UserID != "user_2" {
		t.Errorf("expected user_2 after revoke, got %s", record.UserID)
	}
}

func TestConsumeLinkOnlyOnce(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour)

	first, err := store.ConsumeLink(ctx, "link-1", expiresAt)
	if err != nil || !first {
		t.Fatalf("first ConsumeLink = %v, %v; want true, nil", first, err)
	}
	second, err := store.ConsumeLink(ctx, "link-1", expiresAt)
	if err != nil || second {
		t.Fatalf("second ConsumeLink = %v, %v; want false, nil", second, err)
	}
	if !s.Exists("login-link:link-1") {
		t.Fatal("expected ledger key to exist")
	}

	expired, err := store.ConsumeLink(ctx, "link-2", time.Now().Add(-time.Minute))
	if err != nil || expired {
		t.Fatalf("expired ConsumeLink = %v, %v; want false, nil", expired, err)
	}
}
