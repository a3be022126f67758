// Package repository defines the cache repository contract and the
// in-memory implementation backing it.
package repository

import (
	"context"
	"time"

	"github.com/futura/kpigate/internal/domain/kpi"
)

// KeyPrefix namespaces stability keys in the store.
const KeyPrefix = "kpi:sk:"

// Key returns the namespaced store key for a stability key.
func Key(sk string) string {
	return KeyPrefix + sk
}

// Meta carries the bookkeeping attached to a cached payload.
type Meta struct {
	StabilityKey          string    `json:"sk"`
	LastRefreshedAt       time.Time `json:"last_refreshed_at"`
	ConsistencyWindowDays int       `json:"consistency_window_days"`
}

// Entry is the unit of storage. Entries are replaced wholesale on refresh,
// never mutated in place.
type Entry struct {
	Payload kpi.Payload `json:"payload"`
	Meta    Meta        `json:"meta"`
}

// Store provides keyed access to cache entries with per-entry TTL.
type Store interface {
	// Get returns the entry for key and whether it was present and not
	// expired.
	Get(ctx context.Context, key string) (Entry, bool, error)

	// Set stores the entry under key, expiring it after ttl. A ttl <= 0
	// stores without expiry.
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error

	// Count returns the number of live entries.
	Count(ctx context.Context) int
}
