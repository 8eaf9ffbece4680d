package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"phrasebook/internal/config"
	"phrasebook/internal/store"
)

func TestEmojifyCommandPrintsGlyphs(t *testing.T) {
	t.Setenv("PHRASEBOOK_GLYPH_STRATEGY", "random")
	t.Setenv("PHRASEBOOK_STORE_DRIVER", "memory")
	t.Setenv("PHRASEBOOK_SESSION_DRIVER", "memory")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"emojify", "--count", "2", "pizza", "night"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.NotEmpty(t, strings.TrimSpace(out.String()))
}

func TestEmojifyCommandRequiresText(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"emojify"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.Error(t, rootCmd.Execute())
}

func TestOpenStoreDefaultsToMemory(t *testing.T) {
	s, err := openStore(context.Background(), config.StoreConfig{Driver: "memory"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, ok := s.(*store.MemoryStore)
	assert.True(t, ok)
}

func TestNewGeneratorRejectsUnknownStrategy(t *testing.T) {
	_, err := newGenerator(config.GlyphConfig{Strategy: "oracle"})
	assert.Error(t, err)
}
