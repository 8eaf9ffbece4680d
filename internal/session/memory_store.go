package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	record    Record
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. It is lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]memoryEntry
	links    map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
		links:    make(map[string]time.Time),
	}
}

func (s *MemoryStore) SaveSession(_ context.Context, tokenHash string, record Record, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if !expiresAt.After(now) {
		return fmt.Errorf("save session: already expired")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	s.sessions[tokenHash] = memoryEntry{record: record, expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) LookupSession(_ context.Context, tokenHash string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[tokenHash]
	if !ok {
		return Record{}, ErrNotFound
	}
	if !entry.expiresAt.After(s.now()) {
		delete(s.sessions, tokenHash)
		return Record{}, ErrNotFound
	}
	return entry.record, nil
}

func (s *MemoryStore) RevokeSession(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenHash)
	return nil
}

func (s *MemoryStore) ConsumeLink(_ context.Context, linkID string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if !expiresAt.After(now) {
		return false, nil
	}
	if until, used := s.links[linkID]; used && until.After(now) {
		return false, nil
	}
	s.links[linkID] = expiresAt
	s.pruneLinks(now)
	return true, nil
}

// pruneLinks drops ledger entries whose links can no longer verify anyway.
func (s *MemoryStore) pruneLinks(now time.Time) {
	for id, until := range s.links {
		if !until.After(now) {
			delete(s.links, id)
		}
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
