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
//  1. defaults (New(ctx))
//  2. file (YAML) if KPIGATE_CONFIG is set
//  3. env (prefix KPIGATE_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("KPIGATE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: KPIGATE_ADDR, KPIGATE_DEFAULT_WINDOW_DAYS, ...
	// Map env keys like KPIGATE_UPSTREAM_URL -> upstream_url (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("KPIGATE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "kpigate_")
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

	return &cfg, validate(&cfg)
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.UpstreamTimeoutMS <= 0:
		return fmt.Errorf("%w: upstream_timeout_ms must be positive", ErrInvalidConfig)
	case cfg.DefaultWindowDays <= 0:
		return fmt.Errorf("%w: default_window_days must be positive", ErrInvalidConfig)
	case cfg.OracleLatencyMinMS < 0 || cfg.OracleLatencyMaxMS < cfg.OracleLatencyMinMS:
		return fmt.Errorf("%w: oracle latency range is inverted", ErrInvalidConfig)
	}
	return nil
}
