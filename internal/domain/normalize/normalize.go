// Package normalize turns arbitrary numeric upstream output into the
// canonical, reproducible representation: every score lies in [0,100], has
// exactly two decimal digits, and never ends in .00 or .50.
package normalize

import (
	"math"

	"github.com/futura/kpigate/internal/domain/kpi"
)

// Scores are handled as integer cents so two-decimal arithmetic is exact.
const (
	maxCents  = 10_000 // 100.00
	nudgeStep = 1      // 0.01
)

// Value canonicalizes a single score: clamp to [0,100], round half-up to two
// decimals, then nudge off a .00/.50 ending using the seed's parity. The
// result is idempotent: Value(Value(x, seed), seed) == Value(x, seed).
func Value(x float64, seed int64) float64 {
	v, _ := value(x, seed)
	return v
}

func value(x float64, seed int64) (float64, bool) {
	cents := roundCents(clamp(x))
	nudged := false
	if forbidden(cents) {
		cents = nudge(cents, seed)
		nudged = true
	}
	return float64(cents) / 100, nudged
}

// Payload applies Value independently to every numeric field of p, drops
// non-finite inputs to null, and derives the composite score as the mean of
// the present normalized scores when the upstream omitted it. Meta string
// fields pass through untouched. Returns the number of fields nudged off a
// boundary.
func Payload(p *kpi.Payload, seed int64) int {
	nudges := 0
	for _, slot := range p.ScoreFields() {
		f := *slot
		if f == nil {
			continue
		}
		if math.IsNaN(*f) || math.IsInf(*f, 0) {
			*slot = nil
			continue
		}
		v, nudged := value(*f, seed)
		*slot = &v
		if nudged {
			nudges++
		}
	}
	if p.OverallScore == nil {
		if mean, ok := composite(p); ok {
			v, nudged := value(mean, seed)
			p.OverallScore = &v
			if nudged {
				nudges++
			}
		}
	}
	return nudges
}

// composite returns the mean of the present normalized score fields,
// excluding the composite slot itself.
func composite(p *kpi.Payload) (float64, bool) {
	sum, n := 0.0, 0
	for _, f := range []*float64{
		p.AwarenessScore,
		p.RelevanceScore,
		p.DifferentiationScore,
		p.EsteemScore,
		p.DemandScore,
		p.MomentumScore,
	} {
		if f != nil {
			sum += *f
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func clamp(x float64) float64 {
	return math.Max(0, math.Min(100, x))
}

// roundCents rounds half-up to two decimals. Input is already clamped
// non-negative, so floor(x*100+0.5) is exact half-up.
func roundCents(x float64) int64 {
	return int64(math.Floor(x*100 + 0.5))
}

// forbidden reports whether cents would render with a .00 or .50 ending.
func forbidden(cents int64) bool {
	return cents%50 == 0
}

// nudge moves cents off a forbidden boundary: up for even seeds, down for
// odd. If clamping pushes the result back onto a forbidden ending (0.00 with
// an odd seed, 100.00 with an even one), the opposite direction is used.
func nudge(cents, seed int64) int64 {
	step := int64(nudgeStep)
	if seed%2 != 0 {
		step = -nudgeStep
	}
	n := clampCents(cents + step)
	if forbidden(n) {
		n = clampCents(cents - step)
	}
	return n
}

func clampCents(c int64) int64 {
	if c < 0 {
		return 0
	}
	if c > maxCents {
		return maxCents
	}
	return c
}
