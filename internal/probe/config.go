package probe

import "time"

// Config holds configuration for the determinism probe
type Config struct {
	BaseURL  string        // Base URL of the service
	NumCases int           // Number of request pairs to fire
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Seed     int64         // Base seed for generated cases
	LogFile  string        // Log file for probe output
	Verbose  bool          // Enable verbose logging
}

// Case is one synthetic scoring request fired twice against the service.
type Case struct {
	BrandURL              string             `json:"brand_url"`
	BrandName             string             `json:"brand_name,omitempty"`
	Market                string             `json:"market,omitempty"`
	Sector                string             `json:"sector,omitempty"`
	Segment               string             `json:"segment,omitempty"`
	Seed                  *int64             `json:"seed,omitempty"`
	ConsistencyWindowDays int                `json:"consistency_window_days,omitempty"`
	Overrides             map[string]float64 `json:"overrides,omitempty"`
}

// ScoreResponse is the wire shape returned by POST /v1/score.
type ScoreResponse struct {
	Category             string   `json:"category"`
	MarketPosition       string   `json:"market_position"`
	PriceTier            string   `json:"price_tier"`
	TargetAudience       string   `json:"target_audience"`
	AwarenessScore       *float64 `json:"awareness_score"`
	RelevanceScore       *float64 `json:"relevance_score"`
	DifferentiationScore *float64 `json:"differentiation_score"`
	EsteemScore          *float64 `json:"esteem_score"`
	DemandScore          *float64 `json:"demand_score"`
	MomentumScore        *float64 `json:"momentum_score"`
	OverallScore         *float64 `json:"overall_score"`
	CacheStatus          string   `json:"cache_status"`
	StabilityKey         string   `json:"stability_key"`
	LastRefreshedAt      string   `json:"last_refreshed_at"`
}

// Stats holds probe statistics
type Stats struct {
	CasesGenerated   int
	PairsSubmitted   int
	PairsFailed      int
	ReplayHits       int
	ReplayMismatches int
	ForbiddenEndings int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
