package service

import "errors"

// Sentinel kinds for orchestrator errors.
var (
	// ErrBadInput marks a request rejected before any cache or upstream
	// interaction.
	ErrBadInput = errors.New("bad input")

	// ErrUpstream marks a failed scoring computation with no cached
	// fallback available. Retryable.
	ErrUpstream = errors.New("upstream scoring failed")

	// ErrPayloadInvalid marks a fresh result that failed the validity
	// check with no cached fallback available. Retryable.
	ErrPayloadInvalid = errors.New("scored payload invalid")
)
