// Package manager wires the cache stores together behind the
// interfaces.AssetCache contract and adds operational logging.
package manager

import (
	"time"

	"github.com/masgolf/gallery-go/internal/domain/entities/assets"
	"github.com/masgolf/gallery-go/internal/infrastructure/caching/interfaces"
	"github.com/masgolf/gallery-go/internal/infrastructure/caching/stores"
	"github.com/masgolf/gallery-go/internal/infrastructure/caching/types"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
)

// Manager implements interfaces.AssetCache on top of the asset store.
type Manager struct {
	assets *stores.AssetStore
	logger *logging.ChanneledLogger
}

var _ interfaces.AssetCache = (*Manager)(nil)

// NewManager creates a cache manager with the given TTLs.
func NewManager(countTTL, listingTTL time.Duration, logger *logging.ChanneledLogger) *Manager {
	return &Manager{
		assets: stores.NewAssetStore(countTTL, listingTTL),
		logger: logger,
	}
}

// AssetStore exposes the underlying store for the cleanup worker and
// the ops broadcaster.
func (m *Manager) AssetStore() *stores.AssetStore {
	return m.assets
}

func (m *Manager) GetCount(key string) (types.CountEntry, bool) {
	start := time.Now()
	entry, ok := m.assets.GetCount(key)
	m.logger.LogCacheOperation("count:get", key, ok, time.Since(start))
	return entry, ok
}

func (m *Manager) SetCount(key string, value int, truncated bool) {
	m.assets.SetCount(key, value, truncated)
	m.logger.Cache().Debug("Count cached", "key", key, "value", value, "truncated", truncated)
}

func (m *Manager) GetListing(key string) (types.ListingEntry, bool) {
	start := time.Now()
	entry, ok := m.assets.GetListing(key)
	m.logger.LogCacheOperation("listing:get", key, ok, time.Since(start))
	return entry, ok
}

func (m *Manager) SetListing(key string, items []assets.Asset, truncated bool) {
	m.assets.SetListing(key, items, truncated)
	m.logger.Cache().Debug("Listing cached", "key", key, "items", len(items), "truncated", truncated)
}

func (m *Manager) InvalidateAll() {
	m.assets.InvalidateAll()
	m.logger.Cache().Info("All image caches invalidated")
}

func (m *Manager) Stats() types.Stats {
	return m.assets.Stats()
}
