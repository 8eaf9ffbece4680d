package glyph

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Random draws glyphs uniformly, with replacement, from a fixed table. The input text is ignored
// beyond the emptiness check, so two calls with the same text usually differ.
type Random struct {
	table []string
	intn  func(int) int
}

func NewRandom() *Random {
	return NewRandomFromTable(Table())
}

func NewRandomFromTable(table []string) *Random {
	return &Random{table: table, intn: rand.IntN}
}

func (g *Random) Generate(ctx context.Context, text string, opts Options) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	glyphs, err := g.sample(opts.count())
	if err != nil {
		return "", err
	}
	return strings.Join(glyphs, ""), nil
}

func (g *Random) sample(k int) ([]string, error) {
	if len(g.table) == 0 {
		return nil, fmt.Errorf("%w: emoji table is empty", ErrUnavailable)
	}
	out := make([]string, k)
	for i := range out {
		out[i] = g.table[g.intn(len(g.table))]
	}
	return out, nil
}
