package glyph

import (
	"context"
	"fmt"
	"strings"
)

// DecodeParams are the generation controls passed to a model backend.
type DecodeParams struct {
	Beams       int
	Sample      bool
	Temperature float64
	MaxTokens   int
}

// Decoder runs one constrained generation against a language model and returns the raw decoded text.
type Decoder interface {
	Decode(ctx context.Context, prompt string, params DecodeParams) (string, error)
	Name() string
}

// Model adapts a Decoder to the Generator contract: sampled generation, whitespace stripped,
// optionally truncated.
type Model struct {
	decoder Decoder
}

func NewModel(decoder Decoder) *Model {
	return &Model{decoder: decoder}
}

func (g *Model) Generate(ctx context.Context, text string, opts Options) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}

	raw, err := g.decoder.Decode(ctx, prompt(text), DecodeParams{
		Beams:       Beams,
		Sample:      true,
		Temperature: 1.0,
		MaxTokens:   opts.maxLength(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, g.decoder.Name(), err)
	}

	out := truncateRunes(stripSpace(raw), opts.Truncate)
	if out == "" {
		return "", fmt.Errorf("%w: %s returned no glyphs", ErrUnavailable, g.decoder.Name())
	}
	return out, nil
}

func prompt(text string) string {
	return "Translate the following text into a short sequence of emoji. " +
		"Answer with emoji only, no words or punctuation.\n\nText: " + text
}
