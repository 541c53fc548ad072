// Package types defines the cache entry shapes shared across cache
// stores, the cache manager, and its consumers.
package types

import (
	"time"

	"github.com/masgolf/gallery-go/internal/domain/entities/assets"
)

// CountEntry caches the total number of images under a prefix.
type CountEntry struct {
	Value      int
	Truncated  bool
	ComputedAt time.Time
}

// ListingEntry caches a fully walked asset listing for one cache key.
type ListingEntry struct {
	Items      []assets.Asset
	Truncated  bool
	ComputedAt time.Time
}

// Stats reports cache occupancy and hit counters for observability.
type Stats struct {
	CountEntries   int       `json:"countEntries"`
	ListingEntries int       `json:"listingEntries"`
	CountHits      int64     `json:"countHits"`
	CountMisses    int64     `json:"countMisses"`
	ListingHits    int64     `json:"listingHits"`
	ListingMisses  int64     `json:"listingMisses"`
	LastInvalidate time.Time `json:"lastInvalidate"`
}
