package upstream

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/futura/kpigate/internal/domain/identity"
	"github.com/futura/kpigate/internal/domain/kpi"
)

// Default oracle configuration constants.
const (
	defaultOracleMinLatency = 40 * time.Millisecond
	defaultOracleMaxLatency = 120 * time.Millisecond
	oracleLatencySeed       = 42

	scoreFloor = 18.0
	scoreSpan  = 77.0
)

// OracleOption applies a configuration option to the Oracle.
type OracleOption func(*Oracle)

// WithLatencyRange sets the simulated inference latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) OracleOption {
	return func(o *Oracle) {
		if minLatency > 0 && maxLatency > minLatency {
			o.minLatency = minLatency
			o.maxLatency = maxLatency
		}
	}
}

// Oracle is the built-in scoring backend used when no upstream URL is
// configured. Scores derive from a digest of the identity so a standalone
// deployment still produces stable, brand-specific numbers; latency is
// simulated to model a remote inference service.
type Oracle struct {
	minLatency time.Duration
	maxLatency time.Duration
	// rng drives latency only, never score values. Guarded by mu: Invoke
	// runs concurrently for distinct stability keys.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewOracle creates an oracle with configuration options.
func NewOracle(opts ...OracleOption) *Oracle {
	o := &Oracle{
		minLatency: defaultOracleMinLatency,
		maxLatency: defaultOracleMaxLatency,
		rng:        rand.New(rand.NewSource(oracleLatencySeed)), //nolint:gosec // latency jitter, not security
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Invoke implements Invoker.
func (o *Oracle) Invoke(ctx context.Context, req Request) (kpi.Payload, error) {
	o.mu.Lock()
	jitter := o.rng.Int63n(int64(o.maxLatency - o.minLatency))
	o.mu.Unlock()
	latency := o.minLatency + time.Duration(jitter)
	select {
	case <-ctx.Done():
		return kpi.Payload{}, NewError(KindTimeout, ctx.Err())
	case <-time.After(latency):
	}

	d := req.Descriptor.Resolve()

	payload := kpi.Payload{
		Category:       category(d),
		MarketPosition: pick(d, "position", []string{"challenger", "leader", "niche", "emerging"}),
		PriceTier:      pick(d, "tier", []string{"budget", "mid-market", "premium", "luxury"}),
		TargetAudience: audience(d),

		AwarenessScore:       score(d, "awareness"),
		RelevanceScore:       score(d, "relevance"),
		DifferentiationScore: score(d, "differentiation"),
		EsteemScore:          score(d, "esteem"),
		DemandScore:          score(d, "demand"),
		MomentumScore:        score(d, "momentum"),
	}

	applyOverrides(&payload, req.Overrides)
	return payload, nil
}

// digest mixes the identity fields with a field label.
func digest(d identity.Descriptor, field string) uint64 {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s|%d|%s",
		d.CanonicalDomain, d.BrandName, d.Market, d.Segment, d.SeedValue(), field)))
	return binary.BigEndian.Uint64(sum[:8])
}

// score maps a field digest into a plausible raw score. Raw values carry
// more precision than two decimals on purpose; canonicalization is the
// normalizer's job, not the oracle's.
func score(d identity.Descriptor, field string) *float64 {
	v := scoreFloor + float64(digest(d, field)%100_000)/100_000*scoreSpan
	return &v
}

func pick(d identity.Descriptor, field string, options []string) string {
	return options[digest(d, field)%uint64(len(options))]
}

func category(d identity.Descriptor) string {
	if d.Sector != "" {
		return d.Sector
	}
	return "general"
}

func audience(d identity.Descriptor) string {
	if d.Segment == "b2b" {
		return "business buyers"
	}
	return "consumers"
}

// Ensure Oracle implements Invoker at compile time.
var _ Invoker = (*Oracle)(nil)
