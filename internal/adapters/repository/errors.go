package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrClosed     = errors.New("store closed")
	ErrInvalidKey = errors.New("invalid store key")
)
