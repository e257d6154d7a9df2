package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GOALFEED_CONFIG is set
//  3. env (prefix GOALFEED_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("GOALFEED_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: GOALFEED_ADDR, GOALFEED_POLL_INTERVAL_MS, ...
	// Map env keys like GOALFEED_DEDUPE_SIZE -> dedupe_size (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("GOALFEED_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "goalfeed_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.PollIntervalMS <= 0 {
		return fmt.Errorf("%w: poll_interval_ms must be positive", ErrInvalidConfig)
	}
	if c.Provider != ProviderMock && c.Provider != ProviderLiveScore {
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
	if c.QuietHoursStart >= 24 || c.QuietHoursEnd >= 24 {
		return fmt.Errorf("%w: quiet hours must be within 0-23", ErrInvalidConfig)
	}
	if c.PersistenceEnabled && c.DatabaseURL == "" {
		return fmt.Errorf("%w: database_url required when persistence is enabled", ErrInvalidConfig)
	}
	if c.RosterEnabled && c.RosterBaseURL == "" {
		return fmt.Errorf("%w: roster_base_url required when roster is enabled", ErrInvalidConfig)
	}
	return nil
}
