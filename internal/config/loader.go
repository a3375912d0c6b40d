package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/dukerupert/touchline/internal/localtime"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TOUCHLINE_CONFIG is set
//  3. env (prefix TOUCHLINE_)
func Load() (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv("TOUCHLINE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	// TOUCHLINE_CRON_SECRET -> cron_secret
	envProvider := env.Provider("TOUCHLINE_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "touchline_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail at runtime.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return ErrNoAddr
	}
	if _, err := localtime.Load(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	if c.PushConcurrency <= 0 {
		return fmt.Errorf("%w: push_concurrency must be positive", ErrInvalidConfig)
	}
	if c.LogRetentionDays <= 0 {
		return fmt.Errorf("%w: log_retention_days must be positive", ErrInvalidConfig)
	}
	if c.SchedulerInterval <= 0 {
		return fmt.Errorf("%w: scheduler_interval must be positive", ErrInvalidConfig)
	}
	if (c.VAPIDPublicKey == "") != (c.VAPIDPrivateKey == "") {
		return fmt.Errorf("%w: vapid_public_key and vapid_private_key must be set together", ErrInvalidConfig)
	}
	return nil
}
