package store

import (
	"context"
	"iter"
	"sync"

	"phrasebook/internal/util"
)

type memoryCategory struct {
	Category
	phrases []Phrase
}

// MemoryStore keeps the hierarchy in process memory, in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string][]*memoryCategory
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string][]*memoryCategory)}
}

func (s *MemoryStore) AddCategory(_ context.Context, userID, name, emoji string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := util.NewID("cat")
	s.users[userID] = append(s.users[userID], &memoryCategory{Category: Category{ID: id, Name: name, Emoji: emoji}})
	return id, nil
}

func (s *MemoryStore) Categories(_ context.Context, userID string) iter.Seq2[Category, error] {
	return func(yield func(Category, error) bool) {
		s.mu.RLock()
		snapshot := make([]Category, 0, len(s.users[userID]))
		for _, c := range s.users[userID] {
			snapshot = append(snapshot, c.Category)
		}
		s.mu.RUnlock()

		for _, c := range snapshot {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (s *MemoryStore) AddPhrase(_ context.Context, userID, categoryID, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	category := s.find(userID, categoryID)
	if category == nil {
		return "", ErrNotFound
	}
	id := util.NewID("phr")
	category.phrases = append(category.phrases, Phrase{ID: id, Text: text})
	return id, nil
}

func (s *MemoryStore) Phrases(_ context.Context, userID, categoryID string) iter.Seq2[Phrase, error] {
	return func(yield func(Phrase, error) bool) {
		s.mu.RLock()
		var snapshot []Phrase
		if category := s.find(userID, categoryID); category != nil {
			snapshot = append(snapshot, category.phrases...)
		}
		s.mu.RUnlock()

		for _, p := range snapshot {
			if !yield(p, nil) {
				return
			}
		}
	}
}

// find must be called with s.mu held.
func (s *MemoryStore) find(userID, categoryID string) *memoryCategory {
	for _, c := range s.users[userID] {
		if c.ID == categoryID {
			return c
		}
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
