package probe

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/futura/kpigate/pkg/logger"
)

// Run executes the complete determinism probe: every generated case is fired
// twice and the pair of responses must prove a cache replay.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting kpigate determinism probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("cases", config.NumCases),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int64("seed", config.Seed),
		logger.Any("verbose", config.Verbose))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	cases := generateCases(ctx, config, stats)

	if err := firePairs(ctx, config, cases, stats); err != nil {
		return fmt.Errorf("pair submission failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	if stats.ReplayMismatches > 0 || stats.ForbiddenEndings > 0 {
		return fmt.Errorf("probe found %d replay mismatches and %d forbidden endings",
			stats.ReplayMismatches, stats.ForbiddenEndings)
	}

	logger.Get().Info(ctx, "probe completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != 200 {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// firePairs runs the cases through a worker pool. Each worker fires its case
// twice back to back and verifies the replay contract.
func firePairs(ctx context.Context, config *Config, cases []Case, stats *Stats) error {
	log.Printf("📤 Firing %d request pairs with %d workers...", len(cases), config.Workers)

	client := newHTTPClient(config.Timeout)

	var (
		submitted  int64
		failed     int64
		hits       int64
		mismatches int64
		forbidden  int64
	)

	jobs := make(chan Case)
	var wg sync.WaitGroup
	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for probeCase := range jobs {
				atomic.AddInt64(&submitted, 1)
				outcome, err := runPair(ctx, client, config, probeCase)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Printf("❌ pair failed for %s: %v", probeCase.BrandURL, err)
					}
					continue
				}
				if outcome.replayHit {
					atomic.AddInt64(&hits, 1)
				} else {
					atomic.AddInt64(&mismatches, 1)
					log.Printf("⚠️  replay mismatch for %s: %s", probeCase.BrandURL, outcome.detail)
				}
				if outcome.forbiddenEndings > 0 {
					atomic.AddInt64(&forbidden, int64(outcome.forbiddenEndings))
					log.Printf("⚠️  forbidden score ending for %s", probeCase.BrandURL)
				}
			}
		}()
	}

	for _, probeCase := range cases {
		select {
		case jobs <- probeCase:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return fmt.Errorf("probe cancelled: %w", ctx.Err())
		}
	}
	close(jobs)
	wg.Wait()

	stats.PairsSubmitted = int(submitted)
	stats.PairsFailed = int(failed)
	stats.ReplayHits = int(hits)
	stats.ReplayMismatches = int(mismatches)
	stats.ForbiddenEndings = int(forbidden)
	return nil
}

// runPair fires one case twice and verifies the second response replays the
// first bit for bit.
func runPair(ctx context.Context, client *HTTPClient, config *Config, probeCase Case) (pairOutcome, error) {
	first, firstBody, err := client.score(ctx, config.BaseURL, probeCase)
	if err != nil {
		return pairOutcome{}, fmt.Errorf("first request: %w", err)
	}
	second, secondBody, err := client.score(ctx, config.BaseURL, probeCase)
	if err != nil {
		return pairOutcome{}, fmt.Errorf("second request: %w", err)
	}
	return verifyPair(first, firstBody, second, secondBody), nil
}

// displayFinalStats prints the probe summary.
func displayFinalStats(stats *Stats) {
	log.Println("📊 Probe Statistics:")
	log.Printf("   Cases generated:    %d", stats.CasesGenerated)
	log.Printf("   Pairs submitted:    %d", stats.PairsSubmitted)
	log.Printf("   Pairs failed:       %d", stats.PairsFailed)
	log.Printf("   Replay hits:        %d", stats.ReplayHits)
	log.Printf("   Replay mismatches:  %d", stats.ReplayMismatches)
	log.Printf("   Forbidden endings:  %d", stats.ForbiddenEndings)
	log.Printf("   Duration:           %s", stats.Duration)
	if stats.Duration > 0 {
		rate := float64(stats.PairsSubmitted*2) / stats.Duration.Seconds()
		log.Printf("   Requests/sec:       %.1f", rate)
	}
}
