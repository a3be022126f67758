package probe

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// pairOutcome is the verdict for one fired pair.
type pairOutcome struct {
	replayHit        bool
	forbiddenEndings int
	detail           string
}

// verifyPair checks the replay contract: the second response must be a cache
// hit whose payload is identical to the first, and no served score may land
// on a .00 or .50 ending.
func verifyPair(first ScoreResponse, firstBody []byte, second ScoreResponse, secondBody []byte) pairOutcome {
	outcome := pairOutcome{
		forbiddenEndings: countForbiddenEndings(first) + countForbiddenEndings(second),
	}

	if second.CacheStatus != "hit" {
		outcome.detail = fmt.Sprintf("second response classified %q, want hit", second.CacheStatus)
		return outcome
	}
	if first.StabilityKey != second.StabilityKey {
		outcome.detail = fmt.Sprintf("stability key changed between requests: %s vs %s",
			first.StabilityKey, second.StabilityKey)
		return outcome
	}

	// Everything except cache_status must replay bit for bit, including the
	// refresh timestamp.
	same, err := bodiesMatch(firstBody, secondBody)
	if err != nil {
		outcome.detail = err.Error()
		return outcome
	}
	if !same {
		outcome.detail = "payload differs between first and second response"
		return outcome
	}

	outcome.replayHit = true
	return outcome
}

// bodiesMatch compares two response bodies ignoring the cache_status field,
// which legitimately flips from miss to hit.
func bodiesMatch(a, b []byte) (bool, error) {
	var am, bm map[string]json.RawMessage
	if err := json.Unmarshal(a, &am); err != nil {
		return false, fmt.Errorf("failed to decode first body: %w", err)
	}
	if err := json.Unmarshal(b, &bm); err != nil {
		return false, fmt.Errorf("failed to decode second body: %w", err)
	}
	delete(am, "cache_status")
	delete(bm, "cache_status")
	return reflect.DeepEqual(am, bm), nil
}

// countForbiddenEndings counts served scores whose two-decimal form ends in
// .00 or .50.
func countForbiddenEndings(resp ScoreResponse) int {
	count := 0
	for _, score := range []*float64{
		resp.AwarenessScore,
		resp.RelevanceScore,
		resp.DifferentiationScore,
		resp.EsteemScore,
		resp.DemandScore,
		resp.MomentumScore,
		resp.OverallScore,
	} {
		if score == nil {
			continue
		}
		cents := int64(math.Round(*score * 100))
		if cents%50 == 0 {
			count++
		}
	}
	return count
}
