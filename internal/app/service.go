// Package service provides the orchestrator that composes identity
// derivation, cache lookup, freshness evaluation, upstream scoring and
// numeric normalization into the request-handling flow.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	repository "github.com/futura/kpigate/internal/adapters/repository"
	upstream "github.com/futura/kpigate/internal/adapters/upstream"
	"github.com/futura/kpigate/internal/domain/freshness"
	"github.com/futura/kpigate/internal/domain/identity"
	"github.com/futura/kpigate/internal/domain/kpi"
	"github.com/futura/kpigate/internal/domain/normalize"
	"github.com/futura/kpigate/pkg/logger"
	"github.com/futura/kpigate/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

// Default orchestrator configuration constants.
const (
	defaultWindowDays      = 180
	defaultUpstreamTimeout = 20 * time.Second
	hoursPerDay            = 24
)

// Request carries one scoring request through the orchestrator.
type Request struct {
	BrandURL           string
	BrandName          string
	Market             string
	Sector             string
	Segment            string
	Timeframe          string
	IndustryDefinition string
	Seed               *int64

	StabilityMode         freshness.Mode
	ConsistencyWindowDays int
	Overrides             map[string]float64
}

// Result is the served payload plus its cache provenance.
type Result struct {
	Payload         kpi.Payload
	Status          freshness.State
	StabilityKey    string
	LastRefreshedAt time.Time
}

// Service implements the scoring flow behind the HTTP API.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	invoker   upstream.Invoker
	evaluator *freshness.Evaluator

	defaultWindowDays int
	upstreamTimeout   time.Duration
	coalesce          bool
	sweepInterval     time.Duration

	flight singleflight.Group
	now    func() time.Time

	started bool

	logger logger.Logger
}

// refreshed is what a refresh produces: a normalized payload and the
// instant it was computed.
type refreshed struct {
	payload     kpi.Payload
	refreshedAt time.Time
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		defaultWindowDays: defaultWindowDays,
		upstreamTimeout:   defaultUpstreamTimeout,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes collaborators that were not injected. The store and
// invoker lifecycles belong to the process bootstrap; nothing here builds a
// client per request.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		storeOpts := []repository.Option{}
		if s.sweepInterval > 0 {
			storeOpts = append(storeOpts, repository.WithSweepInterval(s.sweepInterval))
		}
		s.store = repository.NewMemStore(ctx, storeOpts...)
		s.logger.Info(ctx, "using in-memory cache repository")
	}
	if s.invoker == nil {
		s.invoker = upstream.NewOracle()
		s.logger.Info(ctx, "using built-in scoring oracle")
	}
	if s.evaluator == nil {
		s.evaluator = freshness.NewEvaluator(freshness.WithClock(s.now))
	}

	s.started = true
	s.logger.Info(ctx, "score cache service started",
		logger.Int("defaultWindowDays", s.defaultWindowDays),
		logger.Duration("upstreamTimeout", s.upstreamTimeout),
		logger.Bool("coalesceRequests", s.coalesce),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	s.started = false
	s.logger.Info(context.Background(), "score cache service stopped")
}

// Score handles one request end to end.
func (s *Service) Score(ctx context.Context, req Request) (Result, error) {
	domain, err := identity.CanonicalDomain(req.BrandURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: brand_url: %w", ErrBadInput, err)
	}

	desc := identity.Descriptor{
		CanonicalDomain:    domain,
		BrandName:          req.BrandName,
		Market:             req.Market,
		Sector:             req.Sector,
		Segment:            req.Segment,
		Timeframe:          req.Timeframe,
		IndustryDefinition: req.IndustryDefinition,
		Seed:               req.Seed,
	}.Resolve()
	sk := desc.StabilityKey()

	windowDays := req.ConsistencyWindowDays
	if windowDays <= 0 {
		windowDays = s.defaultWindowDays
	}
	mode := req.StabilityMode
	if mode == "" {
		mode = freshness.ModePinned
	}

	key := repository.Key(sk)
	entry, found, err := s.store.Get(ctx, key)
	if err != nil {
		// A broken store read must not take the service down; proceed as
		// a miss and recompute.
		s.logger.Warn(ctx, "cache repository get failed",
			logger.String("sk", sk), logger.Error(err))
		metrics.RecordStoreError("get")
		found = false
	}

	state := s.evaluator.Evaluate(snapshot(entry, found), mode)
	metrics.RecordCacheLookup(state.String())

	if state == freshness.StateHit {
		return Result{
			Payload:         entry.Payload,
			Status:          freshness.StateHit,
			StabilityKey:    sk,
			LastRefreshedAt: entry.Meta.LastRefreshedAt,
		}, nil
	}

	fresh, err := s.refresh(ctx, sk, desc, windowDays, req.Overrides)
	if err != nil {
		if found {
			// Partial stale data outranks total failure: serve whatever
			// we have and mark it degraded.
			s.logger.Warn(ctx, "refresh failed; serving degraded entry",
				logger.String("sk", sk),
				logger.String("priorState", state.String()),
				logger.Error(err))
			metrics.RecordDegradedServe()
			return Result{
				Payload:         entry.Payload,
				Status:          freshness.StateDegraded,
				StabilityKey:    sk,
				LastRefreshedAt: entry.Meta.LastRefreshedAt,
			}, nil
		}
		return Result{}, err
	}

	return Result{
		Payload:         fresh.payload,
		Status:          state,
		StabilityKey:    sk,
		LastRefreshedAt: fresh.refreshedAt,
	}, nil
}

// refresh invokes the upstream oracle, normalizes and validates its output,
// and writes the cache entry. With coalescing enabled, concurrent refreshes
// for one stability key share a single upstream call.
func (s *Service) refresh(ctx context.Context, sk string, desc identity.Descriptor, windowDays int, overrides map[string]float64) (refreshed, error) {
	if !s.coalesce {
		return s.doRefresh(ctx, sk, desc, windowDays, overrides)
	}

	v, err, shared := s.flight.Do(sk, func() (any, error) {
		return s.doRefresh(ctx, sk, desc, windowDays, overrides)
	})
	if shared {
		metrics.RecordCoalescedRefresh()
	}
	if err != nil {
		return refreshed{}, err
	}
	return v.(refreshed), nil
}

func (s *Service) doRefresh(ctx context.Context, sk string, desc identity.Descriptor, windowDays int, overrides map[string]float64) (refreshed, error) {
	// The upstream call is detached from the inbound request: an aborted
	// caller must not tear down an in-flight compute, so concurrent
	// callers still benefit from its cache write.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.upstreamTimeout)
	defer cancel()

	started := s.now()
	metrics.RecordUpstreamCall()
	payload, err := s.invoker.Invoke(callCtx, upstream.Request{
		Descriptor: desc,
		Overrides:  overrides,
	})
	metrics.RecordUpstreamLatency(float64(s.now().Sub(started).Milliseconds()))
	if err != nil {
		if kind := upstream.Kind(err); kind != "" {
			metrics.RecordUpstreamFailure(string(kind))
		}
		return refreshed{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	nudges := normalize.Payload(&payload, desc.SeedValue())
	for i := 0; i < nudges; i++ {
		metrics.RecordNormalizationNudge()
	}

	if !payload.Valid() {
		// Never cache an invalid fresh result.
		metrics.RecordInvalidPayload()
		return refreshed{}, fmt.Errorf("%w: fewer than 3 of 4 benchmark fields present", ErrPayloadInvalid)
	}

	now := s.now()
	entry := repository.Entry{
		Payload: payload,
		Meta: repository.Meta{
			StabilityKey:          sk,
			LastRefreshedAt:       now,
			ConsistencyWindowDays: windowDays,
		},
	}
	ttl := time.Duration(windowDays) * hoursPerDay * time.Hour
	if err := s.store.Set(callCtx, repository.Key(sk), entry, ttl); err != nil {
		// A failed write never blocks serving the freshly computed result.
		s.logger.Warn(ctx, "cache repository set failed",
			logger.String("sk", sk), logger.Error(err))
		metrics.RecordStoreError("set")
	} else {
		metrics.RecordCacheWrite()
	}

	return refreshed{payload: payload, refreshedAt: now}, nil
}

// snapshot converts a store lookup into the evaluator's view.
func snapshot(entry repository.Entry, found bool) freshness.Snapshot {
	return freshness.Snapshot{
		Exists:          found,
		Payload:         entry.Payload,
		LastRefreshedAt: entry.Meta.LastRefreshedAt,
		WindowDays:      entry.Meta.ConsistencyWindowDays,
	}
}

// Retryable reports whether an error should be surfaced as retryable to the
// caller.
func Retryable(err error) bool {
	return errors.Is(err, ErrUpstream) || errors.Is(err, ErrPayloadInvalid)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"defaultWindowDays": s.defaultWindowDays,
		"coalesceRequests":  s.coalesce,
		"upstreamTimeoutMS": s.upstreamTimeout.Milliseconds(),
	}
	if s.started {
		entries := s.store.Count(context.Background())
		stats["storeEntries"] = entries
		metrics.UpdateStoreEntries(entries)
	}
	return stats
}
