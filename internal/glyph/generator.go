// Package glyph turns text into short emoji strings.
//
// Three strategies share the Generator contract: a hosted generative model called directly (model),
// the same model reached through a generation pipeline (pipeline), and uniform sampling from a static
// emoji table (random). The strategy is chosen once, at process configuration time.
package glyph

import (
	"context"
	"errors"
	"strings"
	"unicode"
)

var (
	// ErrUnavailable means the backing model or table could not produce a result.
	ErrUnavailable = errors.New("glyph generation unavailable")
	ErrEmptyText   = errors.New("text is empty")
)

const (
	DefaultCount     = 3
	DefaultMaxLength = 100
	// Beams is the number of sampled candidates requested from model strategies.
	Beams = 4
)

type Generator interface {
	Generate(ctx context.Context, text string, opts Options) (string, error)
}

type Options struct {
	// Count is the number of glyphs drawn by sampling strategies. Zero means DefaultCount.
	Count int
	// MaxLength caps model output, in tokens. Zero means DefaultMaxLength.
	MaxLength int
	// Truncate keeps only the first n characters of a model result. Zero keeps everything.
	Truncate int
}

var (
	CategoryOptions = Options{Count: 1, MaxLength: 10, Truncate: 2}
	DemoOptions     = Options{Count: 5, MaxLength: DefaultMaxLength}
)

func (o Options) count() int {
	if o.Count <= 0 {
		return DefaultCount
	}
	return o.Count
}

func (o Options) maxLength() int {
	if o.MaxLength <= 0 {
		return DefaultMaxLength
	}
	return o.MaxLength
}

// stripSpace removes every whitespace rune, including the separators model tokenizers emit between glyphs.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
