package session

import (
	"context"
	"fmt"
	"time"
)

// Store is implemented by MemoryStore and RedisStore.
type Store interface {
	SaveSession(ctx context.Context, tokenHash string, record Record, expiresAt time.Time) error
	LookupSession(ctx context.Context, tokenHash string) (Record, error)
	RevokeSession(ctx context.Context, tokenHash string) error
	ConsumeLink(ctx context.Context, linkID string, expiresAt time.Time) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// Open returns the store for driver: "memory" or "redis".
func Open(driver, redisURL string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(redisURL)
	default:
		return nil, fmt.Errorf("unknown session driver %q", driver)
	}
}
