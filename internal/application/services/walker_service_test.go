package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masgolf/gallery-go/internal/infrastructure/objectstore"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
)

// fakeStoreClient serves canned folder listings with real pagination so
// the walker's offset loop is exercised the same way it is against the
// live store.
type fakeStoreClient struct {
	mu         sync.Mutex
	folders    map[string][]objectstore.Entry
	errFolders map[string]bool
	listCalls  int
	listDelay  time.Duration
}

func (f *fakeStoreClient) List(ctx context.Context, folder string, opts objectstore.ListOptions) ([]objectstore.Entry, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()

	if f.listDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.listDelay):
		}
	}
	if f.errFolders[folder] {
		return nil, errors.New("storage unavailable")
	}

	entries := f.folders[folder]
	if opts.Offset >= len(entries) {
		return nil, nil
	}
	end := opts.Offset + opts.Limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[opts.Offset:end], nil
}

func (f *fakeStoreClient) PublicURL(path string) string {
	return "https://cdn.test/storage/v1/object/public/blog-images/" + path
}

func (f *fakeStoreClient) Upload(ctx context.Context, path, contentType string, body []byte) error {
	return nil
}

func (f *fakeStoreClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func newTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)
	return logger
}

func folderEntry(name string) objectstore.Entry {
	return objectstore.Entry{Name: name, Kind: objectstore.KindFolder}
}

func objectEntry(name string, size int64, created time.Time) objectstore.Entry {
	return objectstore.Entry{
		ID:        "obj-" + name,
		Name:      name,
		Kind:      objectstore.KindObject,
		Size:      size,
		CreatedAt: created,
	}
}

func newTestWalker(store *fakeStoreClient, logger *logging.ChanneledLogger, pageSize int) *WalkerService {
	return NewWalkerService(store, logger, pageSize, 10,
		"originals/goods", []string{"drivers", "woods"}, "temp")
}

func TestWalkFiltersNonGalleryObjects(t *testing.T) {
	created := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStoreClient{folders: map[string][]objectstore.Entry{
		"": {
			folderEntry("temp"),
			objectEntry(".emptyFolderPlaceholder", 64, created),
			objectEntry(".keep.png", 64, created),
			objectEntry("notes.txt", 512, created),
			objectEntry("empty.png", 0, created),
			objectEntry("hero.png", 2048, created),
		},
		"temp": {
			objectEntry("draft.png", 1024, created),
		},
	}}
	walker := newTestWalker(store, newTestLogger(t), 100)

	result, err := walker.Walk(context.Background(), "", true)
	require.NoError(t, err)

	require.Len(t, result.Assets, 1)
	assert.Equal(t, "hero.png", result.Assets[0].Name)
	assert.False(t, result.Truncated)
}

func TestWalkPaginatesThroughLargeFolders(t *testing.T) {
	created := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]objectstore.Entry, 0, 5)
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png", "e.png"} {
		entries = append(entries, objectEntry(name, 1024, created))
	}
	store := &fakeStoreClient{folders: map[string][]objectstore.Entry{"": entries}}
	walker := newTestWalker(store, newTestLogger(t), 2)

	result, err := walker.Walk(context.Background(), "", false)
	require.NoError(t, err)

	assert.Len(t, result.Assets, 5)
	assert.Equal(t, 3, store.calls(), "5 entries at a page size of 2 take 3 pages")
}

func TestWalkStopsAtExactPageBoundary(t *testing.T) {
	created := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	entries := []objectstore.Entry{
		objectEntry("a.png", 1024, created),
		objectEntry("b.png", 1024, created),
		objectEntry("c.png", 1024, created),
		objectEntry("d.png", 1024, created),
	}
	store := &fakeStoreClient{folders: map[string][]objectstore.Entry{"": entries}}
	walker := newTestWalker(store, newTestLogger(t), 2)

	result, err := walker.Walk(context.Background(), "", false)
	require.NoError(t, err)

	assert.Len(t, result.Assets, 4)
	assert.Equal(t, 3, store.calls(), "a full final page forces one empty trailing page")
}

func TestWalkRecursesAndSortsNewestFirst(t *testing.T) {
	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStoreClient{folders: map[string][]objectstore.Entry{
		"": {
			folderEntry("campaigns"),
			objectEntry("root.png", 1024, base.Add(1*time.Hour)),
		},
		"campaigns": {
			folderEntry("2026-07"),
		},
		"campaigns/2026-07": {
			objectEntry("sale.png", 1024, base.Add(3*time.Hour)),
			objectEntry("banner.png", 1024, base.Add(2*time.Hour)),
		},
	}}
	walker := newTestWalker(store, newTestLogger(t), 100)

	result, err := walker.Walk(context.Background(), "", true)
	require.NoError(t, err)

	require.Len(t, result.Assets, 3)
	assert.Equal(t, "sale.png", result.Assets[0].Name)
	assert.Equal(t, "banner.png", result.Assets[1].Name)
	assert.Equal(t, "root.png", result.Assets[2].Name)
	assert.Equal(t, "campaigns/2026-07", result.Assets[0].FolderPath)
	assert.Contains(t, result.Assets[0].PublicURL, "campaigns/2026-07/sale.png")
}

func TestWalkWithoutRecursionStaysShallow(t *testing.T) {
	created := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStoreClient{folders: map[string][]objectstore.Entry{
		"": {
			folderEntry("campaigns"),
			objectEntry("root.png", 1024, created),
		},
		"campaigns": {
			objectEntry("deep.png", 1024, created),
		},
	}}
	walker := newTestWalker(store, newTestLogger(t), 100)

	result, err := walker.Walk(context.Background(), "", false)
	require.NoError(t, err)

	require.Len(t, result.Assets, 1)
	assert.Equal(t, "root.png", result.Assets[0].Name)
	assert.Equal(t, 1, store.calls())
}

func TestWalkGoodsDescendsKnownSubfolders(t *testing.T) {
	created := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStoreClient{folders: map[string][]objectstore.Entry{
		"originals/goods": {
			folderEntry("drivers"),
			folderEntry("woods"),
			objectEntry("catalog.png", 1024, created),
		},
		"originals/goods/drivers": {
			objectEntry("tm-stealth.png", 1024, created),
		},
		"originals/goods/woods": {
			objectEntry("callaway-3w.png", 1024, created),
		},
	}}
	walker := newTestWalker(store, newTestLogger(t), 100)

	result, err := walker.Walk(context.Background(), "originals/goods", true)
	require.NoError(t, err)

	assert.Len(t, result.Assets, 3, "known sub-folders plus direct children, with no double descent")
	assert.Equal(t, 3, store.calls())
}

func TestWalkMarksTruncatedOnExpiredContext(t *testing.T) {
	store := &fakeStoreClient{
		folders: map[string][]objectstore.Entry{
			"": {objectEntry("hero.png", 1024, time.Now())},
		},
	}
	walker := newTestWalker(store, newTestLogger(t), 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := walker.Walk(ctx, "", true)
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	assert.Empty(t, result.Assets)
}

func TestWalkSkipsFailingFolders(t *testing.T) {
	created := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStoreClient{
		folders: map[string][]objectstore.Entry{
			"": {
				folderEntry("healthy"),
				folderEntry("broken"),
			},
			"healthy": {
				objectEntry("ok.png", 1024, created),
			},
		},
		errFolders: map[string]bool{"broken": true},
	}
	walker := newTestWalker(store, newTestLogger(t), 100)

	result, err := walker.Walk(context.Background(), "", true)
	require.NoError(t, err, "one bad folder must not fail the walk")

	require.Len(t, result.Assets, 1)
	assert.Equal(t, "ok.png", result.Assets[0].Name)
}

func TestCount(t *testing.T) {
	created := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStoreClient{folders: map[string][]objectstore.Entry{
		"": {
			folderEntry("campaigns"),
			objectEntry("root.png", 1024, created),
		},
		"campaigns": {
			objectEntry("a.png", 1024, created),
			objectEntry("b.png", 1024, created),
		},
	}}
	walker := newTestWalker(store, newTestLogger(t), 100)

	count, truncated, err := walker.Count(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.False(t, truncated)
}
