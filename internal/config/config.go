// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults, Load(ctx) to layer
//   file and environment sources on top.
// - All loading functions accept context.Context as the first parameter.
// - External errors are wrapped via this package's sentinel kinds.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// UpstreamURL points at the external scoring oracle. When empty the
	// service runs against the built-in deterministic oracle.
	UpstreamURL string `koanf:"upstream_url"`

	// UpstreamTimeoutMS bounds a single upstream scoring call.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// DefaultWindowDays is the consistency window applied when a request
	// does not specify one.
	DefaultWindowDays int `koanf:"default_window_days"`

	// CoalesceRequests enables per-key coalescing of concurrent refreshes.
	CoalesceRequests bool `koanf:"coalesce_requests"`

	// StoreSweepIntervalMS controls how often the in-memory store purges
	// expired entries.
	StoreSweepIntervalMS int `koanf:"store_sweep_interval_ms"`

	// MaxBodyBytes caps the size of an inbound request body.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// OracleLatencyMinMS and OracleLatencyMaxMS bound the built-in oracle's
	// simulated inference latency.
	OracleLatencyMinMS int `koanf:"oracle_latency_min_ms"`
	OracleLatencyMaxMS int `koanf:"oracle_latency_max_ms"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":8090",
		UpstreamURL:          "",
		UpstreamTimeoutMS:    20_000,
		DefaultWindowDays:    180,
		CoalesceRequests:     false,
		StoreSweepIntervalMS: 60_000,
		MaxBodyBytes:         1 << 20,
		OracleLatencyMinMS:   40,
		OracleLatencyMaxMS:   120,
	}
}
