// Package kpi defines the canonical KPI payload served and cached by the
// service.
package kpi

import "math"

// benchmarkValidityThreshold is the minimum number of benchmark fields that
// must be present and finite for a payload to be servable. Tolerating one
// missing field avoids a full recompute every time the upstream drops a
// single inference.
const benchmarkValidityThreshold = 3

// Payload is the fixed set of KPI fields. Score fields are pointers: nil
// means the upstream could not determine the value.
type Payload struct {
	// Meta labels.
	Category       string `json:"category"`
	MarketPosition string `json:"market_position"`
	PriceTier      string `json:"price_tier"`
	TargetAudience string `json:"target_audience"`

	// Benchmark scores. At least three of these four must be present for
	// the payload to be considered valid.
	AwarenessScore       *float64 `json:"awareness_score"`
	RelevanceScore       *float64 `json:"relevance_score"`
	DifferentiationScore *float64 `json:"differentiation_score"`
	EsteemScore          *float64 `json:"esteem_score"`

	// Supplementary scores.
	DemandScore   *float64 `json:"demand_score"`
	MomentumScore *float64 `json:"momentum_score"`

	// Derived composite.
	OverallScore *float64 `json:"overall_score"`
}

// benchmarkFields returns the four designated benchmark score fields.
func (p *Payload) benchmarkFields() []*float64 {
	return []*float64{
		p.AwarenessScore,
		p.RelevanceScore,
		p.DifferentiationScore,
		p.EsteemScore,
	}
}

// ScoreFields returns pointers to every numeric field slot, composite last.
// Normalization iterates this so each field is processed independently.
func (p *Payload) ScoreFields() []**float64 {
	return []**float64{
		&p.AwarenessScore,
		&p.RelevanceScore,
		&p.DifferentiationScore,
		&p.EsteemScore,
		&p.DemandScore,
		&p.MomentumScore,
		&p.OverallScore,
	}
}

// Valid reports whether enough benchmark fields are present and finite for
// the payload to be served.
func (p *Payload) Valid() bool {
	present := 0
	for _, f := range p.benchmarkFields() {
		if f != nil && !math.IsNaN(*f) && !math.IsInf(*f, 0) {
			present++
		}
	}
	return present >= benchmarkValidityThreshold
}

// Score returns a pointer to a copy of v, for literal payload construction.
func Score(v float64) *float64 {
	return &v
}
