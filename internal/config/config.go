package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PHRASEBOOK_"

type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Log         LogConfig         `koanf:"log"`
	Credentials CredentialsConfig `koanf:"credentials"`
	Auth        AuthConfig        `koanf:"auth"`
	Store       StoreConfig       `koanf:"store"`
	Session     SessionConfig     `koanf:"session"`
	Glyph       GlyphConfig       `koanf:"glyph"`
	SMTP        SMTPConfig        `koanf:"smtp"`
}

type ServerConfig struct {
	Addr       string `koanf:"addr"`
	CORSOrigin string `koanf:"cors_origin"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type CredentialsConfig struct {
	Path  string `koanf:"path"`
	Watch bool   `koanf:"watch"`
}

// AuthConfig carries the action-code settings attached to every sign-in link.
type AuthConfig struct {
	ContinueURL           string        `koanf:"continue_url"`
	HandleCodeInApp       bool          `koanf:"handle_in_app"`
	IOSBundleID           string        `koanf:"ios_bundle_id"`
	AndroidPackageName    string        `koanf:"android_package_name"`
	AndroidInstallApp     bool          `koanf:"android_install_app"`
	AndroidMinimumVersion string        `koanf:"android_min_version"`
	LinkTTL               time.Duration `koanf:"link_ttl"`
	SessionTTL            time.Duration `koanf:"session_ttl"`
}

type StoreConfig struct {
	Driver        string `koanf:"driver"`
	DatabaseURL   string `koanf:"database_url"`
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`
}

type SessionConfig struct {
	Driver   string `koanf:"driver"`
	RedisURL string `koanf:"redis_url"`
}

type GlyphConfig struct {
	Strategy string `koanf:"strategy"`
	Model    string `koanf:"model"`
	APIKey   string `koanf:"api_key"`
	BaseURL  string `koanf:"base_url"`
}

// SMTPConfig is optional; login links are always displayed, and mailed only when Host and From are set.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	FromName string `koanf:"from_name"`
}

// Load reads an optional YAML file, overlays PHRASEBOOK_* environment variables and applies defaults.
//
//	PHRASEBOOK_SERVER_ADDR       -> server.addr
//	PHRASEBOOK_AUTH_CONTINUE_URL -> auth.continue_url
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey maps PHRASEBOOK_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

func applyDefaults(cfg *Config) {
	setDefault(&cfg.Server.Addr, ":8787")
	setDefault(&cfg.Server.CORSOrigin, "*")
	setDefault(&cfg.Log.Level, "info")
	setDefault(&cfg.Log.Format, "json")
	setDefault(&cfg.Credentials.Path, "service-account.json")
	setDefault(&cfg.Auth.ContinueURL, "http://localhost:8787/")
	setDefault(&cfg.Store.Driver, "memory")
	setDefault(&cfg.Store.MongoDatabase, "phrasebook")
	setDefault(&cfg.Session.Driver, "memory")
	setDefault(&cfg.Glyph.Strategy, "random")
	setDefault(&cfg.SMTP.Port, "587")
	setDefault(&cfg.SMTP.FromName, "Emoji Phrasebook")
	if cfg.Auth.LinkTTL <= 0 {
		cfg.Auth.LinkTTL = time.Hour
	}
	if cfg.Auth.SessionTTL <= 0 {
		cfg.Auth.SessionTTL = 24 * time.Hour
	}
}

func setDefault(field *string, fallback string) {
	if strings.TrimSpace(*field) == "" {
		*field = fallback
	}
}

var errInvalid = errors.New("invalid config")

func (c Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("%w: store.database_url is required for postgres", errInvalid)
		}
	case "mongo":
		if c.Store.MongoURI == "" {
			return fmt.Errorf("%w: store.mongo_uri is required for mongo", errInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store.driver %q", errInvalid, c.Store.Driver)
	}

	switch c.Session.Driver {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			return fmt.Errorf("%w: session.redis_url is required for redis", errInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown session.driver %q", errInvalid, c.Session.Driver)
	}

	switch c.Glyph.Strategy {
	case "random", "model", "pipeline":
	default:
		return fmt.Errorf("%w: unknown glyph.strategy %q", errInvalid, c.Glyph.Strategy)
	}
	return nil
}
