// Package config assembles the runtime configuration from flags and
// FOUNDLING_* environment variables. The resulting Config is read-only:
// it is built once at startup and handed to the constructors that need
// its pieces.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mlakar/foundling/internal/embed"
	"github.com/mlakar/foundling/internal/notify"
)

// Config holds every runtime setting of the service.
type Config struct {
	Addr      string
	Port      int
	DBPath    string
	JWTSecret string

	// EmbedTimeout bounds a single embedding call, both when indexing a
	// new item and when answering a similarity query.
	EmbedTimeout time.Duration

	Embedding embed.Config
	Notify    notify.Config
}

// Load builds the configuration from the given flag set and the
// environment. Environment variables win over defaults, flags win over
// everything (FOUNDLING_PORT, FOUNDLING_JWT_SECRET, ...).
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("foundling")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", "")
	v.SetDefault("port", 8080)
	v.SetDefault("db-path", "foundling.db")
	v.SetDefault("embed-timeout", 10*time.Second)
	v.SetDefault("embedding.base-url", "https://api.openai.com/v1")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.dimensions", 1536)
	v.SetDefault("notify.smtp-port", 587)
	v.SetDefault("notify.from-name", "Foundling")
	v.SetDefault("notify.timeout", 15*time.Second)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Addr:         v.GetString("addr"),
		Port:         v.GetInt("port"),
		DBPath:       v.GetString("db-path"),
		JWTSecret:    v.GetString("jwt-secret"),
		EmbedTimeout: v.GetDuration("embed-timeout"),
		Embedding: embed.Config{
			BaseURL:    v.GetString("embedding.base-url"),
			APIKey:     v.GetString("embedding.api-key"),
			Model:      v.GetString("embedding.model"),
			Dimensions: v.GetInt("embedding.dimensions"),
		},
		Notify: notify.Config{
			SMTPHost:     v.GetString("notify.smtp-host"),
			SMTPPort:     v.GetInt("notify.smtp-port"),
			SMTPUsername: v.GetString("notify.smtp-username"),
			SMTPPassword: v.GetString("notify.smtp-password"),
			FromEmail:    v.GetString("notify.from-email"),
			FromName:     v.GetString("notify.from-name"),
			Timeout:      v.GetDuration("notify.timeout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EmbeddingEnabled reports whether an embedding provider is configured.
// Without an API key the service still runs, with similarity search
// answering 502.
func (c *Config) EmbeddingEnabled() bool {
	return c.Embedding.APIKey != ""
}

// Validate checks the configuration for startup-blocking problems.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT secret is required (FOUNDLING_JWT_SECRET)")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.EmbedTimeout <= 0 {
		return errors.New("embed timeout must be positive")
	}
	if c.EmbeddingEnabled() {
		if err := c.Embedding.Validate(); err != nil {
			return err
		}
	}
	return c.Notify.Validate()
}
