// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	service "github.com/futura/kpigate/internal/app"
	"github.com/futura/kpigate/internal/domain/freshness"
	"github.com/futura/kpigate/internal/domain/kpi"
)

const defaultMaxBodyBytes = 1 << 20

// ScoreHandler handles KPI scoring requests.
type ScoreHandler struct {
	scorer       Scorer
	maxBodyBytes int64
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(scorer Scorer) *ScoreHandler {
	return &ScoreHandler{scorer: scorer, maxBodyBytes: defaultMaxBodyBytes}
}

// scoreResponse is the flat wire shape: the KPI fields plus replay metadata.
type scoreResponse struct {
	kpi.Payload
	CacheStatus     string `json:"cache_status"`
	StabilityKey    string `json:"stability_key"`
	LastRefreshedAt string `json:"last_refreshed_at"`
}

// HandleScore handles POST /v1/score requests.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req scoreRequest
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	mode, _ := freshness.ParseMode(req.StabilityMode)

	result, err := h.scorer.Score(r.Context(), service.Request{
		BrandURL:              req.BrandURL,
		BrandName:             req.BrandName,
		Market:                req.Market,
		Sector:                req.Sector,
		Segment:               req.Segment,
		Timeframe:             req.Timeframe,
		IndustryDefinition:    req.IndustryDefinition,
		Seed:                  req.Seed,
		StabilityMode:         mode,
		ConsistencyWindowDays: req.ConsistencyWindowDays,
		Overrides:             req.Overrides,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadInput):
			writeError(w, http.StatusBadRequest, "bad_request", err)
		case errors.Is(err, service.ErrPayloadInvalid):
			writeError(w, http.StatusServiceUnavailable, "invalid_payload", err)
		case errors.Is(err, service.ErrUpstream):
			writeError(w, http.StatusServiceUnavailable, "upstream_unavailable", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}

	// Replay metadata doubles as standard caching headers so generic HTTP
	// tooling can observe determinism.
	w.Header().Set("ETag", `"`+result.StabilityKey+`"`)
	w.Header().Set("Last-Modified", result.LastRefreshedAt.UTC().Format(http.TimeFormat))

	writeJSON(w, http.StatusOK, scoreResponse{
		Payload:         result.Payload,
		CacheStatus:     result.Status.String(),
		StabilityKey:    result.StabilityKey,
		LastRefreshedAt: result.LastRefreshedAt.UTC().Format(time.RFC3339Nano),
	})
}
