// Package stores contains the concrete in-memory cache stores.
package stores

import (
	"sync"
	"time"

	"github.com/masgolf/gallery-go/internal/domain/entities/assets"
	"github.com/masgolf/gallery-go/internal/infrastructure/caching/types"
)

// AssetStore holds the image count and listing caches. Counts and
// listings expire independently; expiry is evaluated on read against
// the entry's ComputedAt, and invalidation replaces the maps wholesale
// so in-flight readers keep a consistent view.
type AssetStore struct {
	mu       sync.RWMutex
	counts   map[string]types.CountEntry
	listings map[string]types.ListingEntry

	countTTL   time.Duration
	listingTTL time.Duration

	countHits      int64
	countMisses    int64
	listingHits    int64
	listingMisses  int64
	lastInvalidate time.Time

	now func() time.Time
}

// NewAssetStore creates a store with the given TTLs.
func NewAssetStore(countTTL, listingTTL time.Duration) *AssetStore {
	return &AssetStore{
		counts:     make(map[string]types.CountEntry),
		listings:   make(map[string]types.ListingEntry),
		countTTL:   countTTL,
		listingTTL: listingTTL,
		now:        time.Now,
	}
}

// SetClock overrides the store's time source. Tests only.
func (s *AssetStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// GetCount returns a cached count entry if present and fresh.
func (s *AssetStore) GetCount(key string) (types.CountEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.counts[key]
	if !ok || s.now().Sub(entry.ComputedAt) > s.countTTL {
		s.countMisses++
		return types.CountEntry{}, false
	}
	s.countHits++
	return entry, true
}

// SetCount stores a count entry, stamping ComputedAt.
func (s *AssetStore) SetCount(key string, value int, truncated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[key] = types.CountEntry{
		Value:      value,
		Truncated:  truncated,
		ComputedAt: s.now(),
	}
}

// GetListing returns a cached listing entry if present and fresh.
func (s *AssetStore) GetListing(key string) (types.ListingEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.listings[key]
	if !ok || s.now().Sub(entry.ComputedAt) > s.listingTTL {
		s.listingMisses++
		return types.ListingEntry{}, false
	}
	s.listingHits++
	return entry, true
}

// SetListing stores a listing entry, stamping ComputedAt.
func (s *AssetStore) SetListing(key string, items []assets.Asset, truncated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listings[key] = types.ListingEntry{
		Items:      items,
		Truncated:  truncated,
		ComputedAt: s.now(),
	}
}

// InvalidateAll drops both caches atomically.
func (s *AssetStore) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts = make(map[string]types.CountEntry)
	s.listings = make(map[string]types.ListingEntry)
	s.lastInvalidate = s.now()
}

// Sweep removes expired entries. Called periodically by the cleanup
// worker so abandoned keys do not accumulate between invalidations.
func (s *AssetStore) Sweep() (removed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.counts {
		if now.Sub(entry.ComputedAt) > s.countTTL {
			delete(s.counts, key)
			removed++
		}
	}
	for key, entry := range s.listings {
		if now.Sub(entry.ComputedAt) > s.listingTTL {
			delete(s.listings, key)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of cache occupancy and hit counters.
func (s *AssetStore) Stats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return types.Stats{
		CountEntries:   len(s.counts),
		ListingEntries: len(s.listings),
		CountHits:      s.countHits,
		CountMisses:    s.countMisses,
		ListingHits:    s.listingHits,
		ListingMisses:  s.listingMisses,
		LastInvalidate: s.lastInvalidate,
	}
}
