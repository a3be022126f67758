package config

import "errors"

// Sentinel kinds for configuration failures. Load wraps the offending field
// or source into these so callers can errors.Is without string matching.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
