package freshness

import "time"

// Option applies a configuration option to the Evaluator.
type Option func(*Evaluator)

// WithValidity overrides the validity predicate.
func WithValidity(v Validity) Option {
	return func(e *Evaluator) {
		if v != nil {
			e.valid = v
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}
