// Package interfaces defines the cache contracts consumed by the
// application services.
package interfaces

import (
	"github.com/masgolf/gallery-go/internal/domain/entities/assets"
	"github.com/masgolf/gallery-go/internal/infrastructure/caching/types"
)

// AssetCache is the dual-layer cache surface for image counts and
// listings.
type AssetCache interface {
	GetCount(key string) (types.CountEntry, bool)
	SetCount(key string, value int, truncated bool)

	GetListing(key string) (types.ListingEntry, bool)
	SetListing(key string, items []assets.Asset, truncated bool)

	InvalidateAll()
	Stats() types.Stats
}
