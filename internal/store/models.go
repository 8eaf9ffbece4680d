package store

import (
	"context"
	"errors"
	"iter"
)

// ErrNotFound is returned when a category does not exist for the requesting user.
var ErrNotFound = errors.New("not found")

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

type Phrase struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// PhraseStore persists the users/{user}/categories/{category}/phrases/{phrase} hierarchy.
//
// Every call is scoped to one user id. Categories and phrases are append-only. The listing methods
// return a lazy single pass over a live read in store-native order; each range issues a new read.
type PhraseStore interface {
	AddCategory(ctx context.Context, userID, name, emoji string) (string, error)
	Categories(ctx context.Context, userID string) iter.Seq2[Category, error]
	AddPhrase(ctx context.Context, userID, categoryID, text string) (string, error)
	Phrases(ctx context.Context, userID, categoryID string) iter.Seq2[Phrase, error]
	Ping(ctx context.Context) error
	Close() error
}

// Collect drains a listing into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	out := []T{}
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
