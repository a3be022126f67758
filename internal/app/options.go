package service

import (
	"time"

	repository "github.com/futura/kpigate/internal/adapters/repository"
	upstream "github.com/futura/kpigate/internal/adapters/upstream"
	"github.com/futura/kpigate/internal/domain/freshness"
	"github.com/futura/kpigate/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects the cache repository. Without it, Start builds an
// in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithInvoker injects the upstream scoring backend. Without it, Start uses
// the built-in oracle.
func WithInvoker(invoker upstream.Invoker) Option {
	return func(s *Service) {
		if invoker != nil {
			s.invoker = invoker
		}
	}
}

// WithEvaluator injects a custom freshness evaluator.
func WithEvaluator(e *freshness.Evaluator) Option {
	return func(s *Service) {
		if e != nil {
			s.evaluator = e
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultWindowDays sets the consistency window used when a request
// does not specify one.
func WithDefaultWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.defaultWindowDays = days
		}
	}
}

// WithUpstreamTimeout bounds a single upstream scoring call.
func WithUpstreamTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.upstreamTimeout = d
		}
	}
}

// WithRequestCoalescing shares one in-flight upstream call among concurrent
// refreshes of the same stability key. Off by default: last write wins.
func WithRequestCoalescing(enabled bool) Option {
	return func(s *Service) {
		s.coalesce = enabled
	}
}

// WithStoreSweepInterval configures the default store's purge cadence.
// Ignored when a store is injected.
func WithStoreSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
