// Package freshness classifies a cached entry against its consistency
// window, deciding whether it may be served, must be refreshed, or can only
// back a degraded serve.
package freshness

import (
	"time"

	"github.com/futura/kpigate/internal/domain/kpi"
)

// State classifies a cache lookup.
type State int

const (
	// StateMiss means no entry exists for the stability key.
	StateMiss State = iota
	// StateHit means the entry is within its window and valid; serve verbatim.
	StateHit
	// StateStale means the entry exists but its window has elapsed.
	StateStale
	// StateInvalid means the entry is within its window but fails the
	// benchmark-field validity check.
	StateInvalid
	// StateDegraded is the terminal fallback: a stale or invalid entry was
	// served because a refresh attempt failed. The evaluator never produces
	// it; the orchestrator does.
	StateDegraded
)

// String returns the wire representation exposed to callers.
func (s State) String() string {
	switch s {
	case StateMiss:
		return "miss"
	case StateHit:
		return "hit"
	case StateStale:
		return "stale"
	case StateInvalid:
		return "invalid"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Mode selects how strictly the window check applies.
type Mode string

const (
	// ModePinned is the default flow: entries within their window are served.
	ModePinned Mode = "pinned"
	// ModeLive always attempts a refresh, keeping the entry only as a
	// degraded fallback. Key derivation and validity policy are unchanged.
	ModeLive Mode = "live"
)

// ParseMode maps a request string onto a Mode, defaulting to pinned.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeLive:
		return ModeLive, true
	case ModePinned, "":
		return ModePinned, true
	default:
		return ModePinned, false
	}
}

// Snapshot is what the evaluator sees of a cache lookup.
type Snapshot struct {
	Exists          bool
	Payload         kpi.Payload
	LastRefreshedAt time.Time
	WindowDays      int
}

// Validity decides whether a cached payload is servable.
type Validity func(*kpi.Payload) bool

// Evaluator implements the freshness state machine, parameterized by the
// validity predicate and clock so orchestrator variants never re-derive the
// branching ad hoc.
type Evaluator struct {
	valid Validity
	now   func() time.Time
}

// NewEvaluator creates an evaluator with default policy: benchmark-field
// validity and the wall clock.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		valid: func(p *kpi.Payload) bool { return p.Valid() },
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate classifies a lookup. The window boundary is inclusive: an entry
// aged exactly WindowDays is still a hit. Entries are judged against the
// window stored in their own metadata, not the requesting window.
func (e *Evaluator) Evaluate(snap Snapshot, mode Mode) State {
	if !snap.Exists {
		return StateMiss
	}

	if mode == ModeLive {
		// Live requests always recompute; the entry only backs a fallback.
		return StateStale
	}

	age := e.now().Sub(snap.LastRefreshedAt)
	window := time.Duration(snap.WindowDays) * 24 * time.Hour
	if age > window {
		return StateStale
	}

	if !e.valid(&snap.Payload) {
		return StateInvalid
	}
	return StateHit
}

// NeedsRefresh reports whether a state requires an upstream call.
func NeedsRefresh(s State) bool {
	return s == StateMiss || s == StateStale || s == StateInvalid
}
