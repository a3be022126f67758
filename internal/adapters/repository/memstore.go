package repository

import (
	"context"
	"sync"
	"time"

	"github.com/futura/kpigate/pkg/metrics"
)

// record pairs an entry with its absolute expiry; a zero expiresAt means the
// record never expires.
type record struct {
	entry     Entry
	expiresAt time.Time
}

// MemStore is a goroutine-safe map-backed store with per-entry TTL. Expired
// records are dropped lazily on read and swept periodically in the
// background.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]record
	closed  bool

	sweepInterval time.Duration
	now           func() time.Time
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewMemStore creates a memory store and starts its sweeper.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		records:       make(map[string]record),
		sweepInterval: time.Minute,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.sweep(ctx)

	return s
}

// Get implements Store.Get.
func (s *MemStore) Get(_ context.Context, key string) (Entry, bool, error) {
	if key == "" {
		return Entry{}, false, ErrInvalidKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Entry{}, false, ErrClosed
	}
	rec, ok := s.records[key]
	if !ok {
		return Entry{}, false, nil
	}
	if !rec.expiresAt.IsZero() && s.now().After(rec.expiresAt) {
		// Expired; the sweeper will reclaim it.
		return Entry{}, false, nil
	}
	return rec.entry, true, nil
}

// Set implements Store.Set. The previous record, if any, is replaced
// wholesale.
func (s *MemStore) Set(_ context.Context, key string, entry Entry, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}
	s.records[key] = record{entry: entry, expiresAt: expiresAt}
	metrics.UpdateStoreEntries(len(s.records))
	return nil
}

// Count implements Store.Count, counting only unexpired records.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	ts := s.now()
	for _, rec := range s.records {
		if rec.expiresAt.IsZero() || ts.Before(rec.expiresAt) {
			n++
		}
	}
	return n
}

// Close stops the sweeper and rejects further operations.
func (s *MemStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// sweep drops expired records until the store is closed or ctx ends.
func (s *MemStore) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.purgeExpired()
		}
	}
}

func (s *MemStore) purgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || len(s.records) == 0 {
		return
	}
	ts := s.now()
	for key, rec := range s.records {
		if !rec.expiresAt.IsZero() && ts.After(rec.expiresAt) {
			delete(s.records, key)
		}
	}
	metrics.UpdateStoreEntries(len(s.records))
}

// Ensure MemStore implements Store at compile time.
var _ Store = (*MemStore)(nil)
