package probe

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/futura/kpigate/pkg/logger"
	"github.com/google/uuid"
)

var (
	markets  = []string{"global", "us", "uk", "de", "jp"}
	sectors  = []string{"software", "retail", "finance", "media", "travel"}
	segments = []string{"b2c", "b2b"}
)

// generateCases builds synthetic scoring requests. Domains carry a uuid so
// every probe run exercises fresh cache entries instead of replaying a
// previous run's keys.
func generateCases(ctx context.Context, config *Config, stats *Stats) []Case {
	rng := rand.New(rand.NewSource(config.Seed))
	cases := make([]Case, 0, config.NumCases)

	for i := 0; i < config.NumCases; i++ {
		id := uuid.NewString()[:8]
		seed := config.Seed + int64(i)
		c := Case{
			BrandURL:  fmt.Sprintf("https://www.probe-%s.example", id),
			BrandName: "Probe " + id,
			Market:    markets[rng.Intn(len(markets))],
			Sector:    sectors[rng.Intn(len(sectors))],
			Segment:   segments[rng.Intn(len(segments))],
			Seed:      &seed,
		}
		// A slice of cases pins the window and overrides a direct metric, so
		// both request paths get replay coverage.
		if i%3 == 0 {
			c.ConsistencyWindowDays = 30 + rng.Intn(300)
		}
		if i%5 == 0 {
			c.Overrides = map[string]float64{
				"demand_score": 10 + rng.Float64()*85,
			}
		}
		cases = append(cases, c)
	}

	stats.CasesGenerated = len(cases)
	logger.Get().Info(ctx, "generated probe cases", logger.Int("count", len(cases)))
	return cases
}
