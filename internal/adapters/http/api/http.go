// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	service "github.com/futura/kpigate/internal/app"
	"github.com/futura/kpigate/internal/domain/freshness"
	"github.com/futura/kpigate/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scorer is the single capability HTTP handlers need from the
// orchestrator. Using an interface bundle keeps the handler layer loosely
// coupled to implementations in other packages.
type Scorer interface {
	Score(ctx context.Context, req service.Request) (service.Result, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	scoreHandler  *ScoreHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(scorer Scorer, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		scoreHandler:  NewScoreHandler(scorer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServerOption customizes Server construction.
type ServerOption func(*Server)

// WithMaxBodyBytes caps the accepted request body size for POST /v1/score.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.scoreHandler.maxBodyBytes = n
		}
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/v1/score", MetricsMiddleware(s.scoreHandler.HandleScore, "score"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

// scoreRequest mirrors the JSON schema for POST /v1/score.
type scoreRequest struct {
	BrandURL              string             `json:"brand_url"`
	BrandName             string             `json:"brand_name"`
	Market                string             `json:"market"`
	Sector                string             `json:"sector"`
	Segment               string             `json:"segment"`
	Timeframe             string             `json:"timeframe"`
	IndustryDefinition    string             `json:"industry_definition"`
	Seed                  *int64             `json:"seed"`
	StabilityMode         string             `json:"stability_mode"`
	ConsistencyWindowDays int                `json:"consistency_window_days"`
	Overrides             map[string]float64 `json:"overrides"`
}

func (req scoreRequest) validate() error {
	if strings.TrimSpace(req.BrandURL) == "" {
		return errors.New("missing brand_url")
	}
	if req.ConsistencyWindowDays < 0 {
		return errors.New("consistency_window_days must be positive")
	}
	if _, ok := freshness.ParseMode(req.StabilityMode); !ok {
		return fmt.Errorf("invalid stability_mode %q; must be pinned or live", req.StabilityMode)
	}
	return nil
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{
		Code:      code,
		Message:   msg,
		Retryable: status == http.StatusServiceUnavailable,
	})
}
