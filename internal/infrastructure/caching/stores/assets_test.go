package stores

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masgolf/gallery-go/internal/domain/entities/assets"
)

func newTestStore() (*AssetStore, *time.Time) {
	store := NewAssetStore(15*time.Minute, 10*time.Minute)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })
	return store, &now
}

func TestCountTTL(t *testing.T) {
	store, now := newTestStore()

	store.SetCount("root", 42, false)

	entry, ok := store.GetCount("root")
	require.True(t, ok)
	assert.Equal(t, 42, entry.Value)

	*now = now.Add(14 * time.Minute)
	_, ok = store.GetCount("root")
	assert.True(t, ok, "count should still be fresh before the 15 minute TTL")

	*now = now.Add(2 * time.Minute)
	_, ok = store.GetCount("root")
	assert.False(t, ok, "count should expire after the 15 minute TTL")
}

func TestListingTTL(t *testing.T) {
	store, now := newTestStore()

	items := []assets.Asset{{Name: "hero.png"}}
	store.SetListing("root|children=true", items, true)

	entry, ok := store.GetListing("root|children=true")
	require.True(t, ok)
	assert.Len(t, entry.Items, 1)
	assert.True(t, entry.Truncated, "truncation flag must survive the cache")

	*now = now.Add(9 * time.Minute)
	_, ok = store.GetListing("root|children=true")
	assert.True(t, ok, "listing should still be fresh before the 10 minute TTL")

	*now = now.Add(2 * time.Minute)
	_, ok = store.GetListing("root|children=true")
	assert.False(t, ok, "listing should expire after the 10 minute TTL")
}

func TestIndependentTTLs(t *testing.T) {
	store, now := newTestStore()

	store.SetCount("root", 10, false)
	store.SetListing("root|children=true", nil, false)

	// Past the listing TTL but inside the count TTL.
	*now = now.Add(12 * time.Minute)

	_, countOK := store.GetCount("root")
	_, listingOK := store.GetListing("root|children=true")
	assert.True(t, countOK)
	assert.False(t, listingOK)
}

func TestInvalidateAll(t *testing.T) {
	store, _ := newTestStore()

	store.SetCount("root", 10, false)
	store.SetCount("goods", 5, false)
	store.SetListing("root|children=true", nil, false)

	store.InvalidateAll()

	_, countOK := store.GetCount("root")
	_, goodsOK := store.GetCount("goods")
	_, listingOK := store.GetListing("root|children=true")
	assert.False(t, countOK)
	assert.False(t, goodsOK)
	assert.False(t, listingOK)

	stats := store.Stats()
	assert.Equal(t, 0, stats.CountEntries)
	assert.Equal(t, 0, stats.ListingEntries)
	assert.False(t, stats.LastInvalidate.IsZero())
}

func TestSweep(t *testing.T) {
	store, now := newTestStore()

	store.SetCount("old", 1, false)
	store.SetListing("old|children=true", nil, false)

	*now = now.Add(11 * time.Minute)
	store.SetCount("fresh", 2, false)

	removed := store.Sweep()
	assert.Equal(t, 1, removed, "only the expired listing should be swept at 11 minutes")

	*now = now.Add(5 * time.Minute)
	removed = store.Sweep()
	assert.Equal(t, 1, removed, "the old count expires at 16 minutes")

	_, ok := store.GetCount("fresh")
	assert.True(t, ok)
}

func TestStatsCounters(t *testing.T) {
	store, _ := newTestStore()

	store.GetCount("missing")
	store.SetCount("root", 1, false)
	store.GetCount("root")
	store.GetListing("missing")

	stats := store.Stats()
	assert.Equal(t, int64(1), stats.CountHits)
	assert.Equal(t, int64(1), stats.CountMisses)
	assert.Equal(t, int64(1), stats.ListingMisses)
	assert.Equal(t, int64(0), stats.ListingHits)
}
