package identity

import "errors"

// Sentinel kinds for identity errors.
var (
	ErrEmptyDomain = errors.New("empty canonical domain")
)
