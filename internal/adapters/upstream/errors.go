package upstream

import (
	"errors"
	"fmt"
)

// FailureKind tags an upstream failure for branching and metrics.
type FailureKind string

const (
	KindTimeout     FailureKind = "timeout"
	KindHTTPError   FailureKind = "http_error"
	KindTruncated   FailureKind = "truncated"
	KindInvalidJSON FailureKind = "invalid_json"
	KindNetwork     FailureKind = "network"
)

// Error is the tagged failure outcome of an Invoke call.
type Error struct {
	Kind FailureKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("upstream %s", e.Kind)
	}
	return fmt.Sprintf("upstream %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a failure kind.
func NewError(kind FailureKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Kind extracts the failure kind from err, or "" when err is not an
// upstream failure.
func Kind(err error) FailureKind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return ""
}
