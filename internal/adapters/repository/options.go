package repository

import "time"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithSweepInterval sets how often expired records are reclaimed.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *MemStore) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}
