package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8787", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "memory", cfg.Session.Driver)
	assert.Equal(t, "random", cfg.Glyph.Strategy)
	assert.Equal(t, "service-account.json", cfg.Credentials.Path)
	assert.Equal(t, time.Hour, cfg.Auth.LinkTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phrasebook.yaml")
	content := []byte(`
server:
  addr: ":9000"
auth:
  continue_url: "https://file.example.com/"
  link_ttl: 10m
glyph:
  strategy: model
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("PHRASEBOOK_AUTH_CONTINUE_URL", "https://env.example.com/")
	t.Setenv("PHRASEBOOK_AUTH_ANDROID_INSTALL_APP", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "https://env.example.com/", cfg.Auth.ContinueURL)
	assert.True(t, cfg.Auth.AndroidInstallApp)
	assert.Equal(t, 10*time.Minute, cfg.Auth.LinkTTL)
	assert.Equal(t, "model", cfg.Glyph.Strategy)
}

func TestLoadRejectsUnknownDrivers(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "store", key: "PHRASEBOOK_STORE_DRIVER", val: "cassandra"},
		{name: "session", key: "PHRASEBOOK_SESSION_DRIVER", val: "memcached"},
		{name: "glyph", key: "PHRASEBOOK_GLYPH_STRATEGY", val: "oracle"},
		{name: "postgres without url", key: "PHRASEBOOK_STORE_DRIVER", val: "postgres"},
		{name: "redis without url", key: "PHRASEBOOK_SESSION_DRIVER", val: "redis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load("")
			require.Error(t, err)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.addr", envKey("PHRASEBOOK_SERVER_ADDR"))
	assert.Equal(t, "auth.android_min_version", envKey("PHRASEBOOK_AUTH_ANDROID_MIN_VERSION"))
	assert.Equal(t, "debug", envKey("PHRASEBOOK_DEBUG"))
}
