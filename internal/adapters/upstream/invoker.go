// Package upstream defines the contract for the external scoring oracle and
// its implementations.
package upstream

import (
	"context"

	"github.com/futura/kpigate/internal/domain/identity"
	"github.com/futura/kpigate/internal/domain/kpi"
)

// Request is the full payload handed to the oracle: the resolved identity
// plus optional caller-supplied metric overrides keyed by JSON field name.
type Request struct {
	Descriptor identity.Descriptor
	Overrides  map[string]float64
}

// Invoker performs the scoring computation. A successful response may have
// any subset of payload fields populated; failures are typed via *Error so
// callers can branch on kind. The computation is an opaque black box here.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (kpi.Payload, error)
}

// applyOverrides writes caller-supplied metric values over the oracle
// output. Unknown field names are ignored.
func applyOverrides(p *kpi.Payload, overrides map[string]float64) {
	if len(overrides) == 0 {
		return
	}
	slots := map[string]**float64{
		"awareness_score":       &p.AwarenessScore,
		"relevance_score":       &p.RelevanceScore,
		"differentiation_score": &p.DifferentiationScore,
		"esteem_score":          &p.EsteemScore,
		"demand_score":          &p.DemandScore,
		"momentum_score":        &p.MomentumScore,
		"overall_score":         &p.OverallScore,
	}
	for name, value := range overrides {
		if slot, ok := slots[name]; ok {
			v := value
			*slot = &v
		}
	}
}
