package glyph

import (
	"context"
	"fmt"
	"sync"
)

// Lazy builds its Generator on first use and shares it for the rest of the process lifetime.
// A failed build is remembered and reported as ErrUnavailable on every call.
type Lazy struct {
	get func() (Generator, error)
}

func NewLazy(build func() (Generator, error)) *Lazy {
	return &Lazy{get: sync.OnceValues(build)}
}

func (l *Lazy) Generate(ctx context.Context, text string, opts Options) (string, error) {
	g, err := l.get()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return g.Generate(ctx, text, opts)
}

// Settings select and configure a strategy.
type Settings struct {
	Strategy string
	Model    string
	APIKey   string
	BaseURL  string
}

// New returns a lazily built Generator for the configured strategy.
func New(settings Settings) (*Lazy, error) {
	switch settings.Strategy {
	case "random":
		return NewLazy(func() (Generator, error) {
			return NewRandom(), nil
		}), nil
	case "model":
		return NewLazy(func() (Generator, error) {
			decoder, err := NewGenAIDecoder(context.Background(), GenAIConfig{
				APIKey:  settings.APIKey,
				Model:   settings.Model,
				BaseURL: settings.BaseURL,
			})
			if err != nil {
				return nil, err
			}
			return NewModel(decoder), nil
		}), nil
	case "pipeline":
		return NewLazy(func() (Generator, error) {
			decoder, err := NewPipelineDecoder(PipelineConfig{
				BaseURL: settings.BaseURL,
				Model:   settings.Model,
				APIKey:  settings.APIKey,
			})
			if err != nil {
				return nil, err
			}
			return NewModel(decoder), nil
		}), nil
	default:
		return nil, fmt.Errorf("unknown glyph strategy %q", settings.Strategy)
	}
}
