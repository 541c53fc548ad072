// Package services contains the application services that orchestrate
// gallery operations across the object store, caches, and database.
package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/masgolf/gallery-go/internal/application/matching"
	"github.com/masgolf/gallery-go/internal/domain/entities/assets"
	"github.com/masgolf/gallery-go/internal/infrastructure/objectstore"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
)

// WalkResult is the outcome of a recursive store walk. The mutex
// guards appends from concurrent folder goroutines.
type WalkResult struct {
	mu        sync.Mutex
	Assets    []assets.Asset
	Truncated bool
}

// WalkerService enumerates image assets under a storage prefix. It
// pages through each folder, descends into sub-folders in bounded
// concurrent batches, and stops early when the context deadline
// passes, reporting the partial result as truncated.
type WalkerService struct {
	store       objectstore.Client
	logger      *logging.ChanneledLogger
	pageSize    int
	concurrency int
	goodsFolder string
	goodsSubs   []string
	tempPrefix  string
}

// NewWalkerService creates a walker.
func NewWalkerService(store objectstore.Client, logger *logging.ChanneledLogger, pageSize, concurrency int, goodsFolder string, goodsSubfolders []string, tempPrefix string) *WalkerService {
	return &WalkerService{
		store:       store,
		logger:      logger,
		pageSize:    pageSize,
		concurrency: concurrency,
		goodsFolder: goodsFolder,
		goodsSubs:   goodsSubfolders,
		tempPrefix:  tempPrefix,
	}
}

// skipped names are placeholder objects that keep otherwise-empty
// folders alive in the store.
func isPlaceholder(name string) bool {
	return name == ".emptyFolderPlaceholder" || name == ".keep.png"
}

// includeObject decides whether a listed object belongs in the gallery.
func (w *WalkerService) includeObject(folder string, e objectstore.Entry) bool {
	if isPlaceholder(e.Name) {
		return false
	}
	if !matching.IsImageName(e.Name) {
		return false
	}
	if e.Size == 0 {
		return false
	}
	path := e.Name
	if folder != "" {
		path = folder + "/" + e.Name
	}
	return !strings.HasPrefix(path, w.tempPrefix+"/")
}

// Walk enumerates assets under root. When recurse is false only direct
// children of root are returned. The goods tree is a known-deep layout
// whose sub-folders are descended directly, skipping one level of
// discovery listings.
func (w *WalkerService) Walk(ctx context.Context, root string, recurse bool) (*WalkResult, error) {
	result := &WalkResult{}

	if recurse && root == w.goodsFolder && len(w.goodsSubs) > 0 {
		folders := make([]string, 0, len(w.goodsSubs))
		for _, sub := range w.goodsSubs {
			folders = append(folders, root+"/"+strings.TrimSpace(sub))
		}
		w.walkFolders(ctx, folders, true, result)
		w.collectFolder(ctx, root, false, result)
	} else {
		w.collectFolder(ctx, root, recurse, result)
	}

	sort.SliceStable(result.Assets, func(i, j int) bool {
		return result.Assets[i].CreatedAt.After(result.Assets[j].CreatedAt)
	})

	w.logger.Storage().Info("Storage walk finished",
		"root", root,
		"recurse", recurse,
		"assets", len(result.Assets),
		"truncated", result.Truncated)
	return result, nil
}

// Count walks the full tree under root and returns the asset total.
func (w *WalkerService) Count(ctx context.Context, root string) (int, bool, error) {
	res, err := w.Walk(ctx, root, true)
	if err != nil {
		return 0, false, err
	}
	return len(res.Assets), res.Truncated, nil
}

// collectFolder pages through one folder, appending its image objects
// to result and recursing into discovered sub-folders.
func (w *WalkerService) collectFolder(ctx context.Context, folder string, recurse bool, result *WalkResult) {
	if deadlinePassed(ctx) {
		w.markTruncated(result)
		return
	}

	var subFolders []string
	offset := 0
	for {
		entries, err := w.store.List(ctx, folder, objectstore.ListOptions{
			Limit:  w.pageSize,
			Offset: offset,
			SortBy: objectstore.SortBy{Column: "name", Order: "asc"},
		})
		if err != nil {
			// A failing folder is skipped, not fatal: one bad branch
			// should not empty the whole gallery.
			w.logger.Storage().Warn("Folder listing failed, skipping",
				"folder", folder, "error", err.Error())
			return
		}

		for _, e := range entries {
			switch e.Kind {
			case objectstore.KindFolder:
				if folder == "" {
					subFolders = append(subFolders, e.Name)
				} else {
					subFolders = append(subFolders, folder+"/"+e.Name)
				}
			case objectstore.KindObject:
				if w.includeObject(folder, e) {
					w.appendAsset(folder, e, result)
				}
			}
		}

		if len(entries) < w.pageSize {
			break
		}
		offset += len(entries)

		if deadlinePassed(ctx) {
			w.markTruncated(result)
			return
		}
	}

	if recurse && len(subFolders) > 0 {
		w.walkFolders(ctx, subFolders, recurse, result)
	}
}

// walkFolders descends into folders in batches of w.concurrency.
func (w *WalkerService) walkFolders(ctx context.Context, folders []string, recurse bool, result *WalkResult) {
	for start := 0; start < len(folders); start += w.concurrency {
		if deadlinePassed(ctx) {
			w.markTruncated(result)
			return
		}

		end := start + w.concurrency
		if end > len(folders) {
			end = len(folders)
		}

		batch := folders[start:end]
		var wg sync.WaitGroup
		for _, folder := range batch {
			wg.Add(1)
			go func(f string) {
				defer wg.Done()
				w.collectFolder(ctx, f, recurse, result)
			}(folder)
		}
		wg.Wait()
	}
}

func (w *WalkerService) appendAsset(folder string, e objectstore.Entry, result *WalkResult) {
	path := e.Name
	if folder != "" {
		path = folder + "/" + e.Name
	}

	asset := assets.Asset{
		ID:         e.ID,
		Name:       e.Name,
		FolderPath: folder,
		Size:       e.Size,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
		PublicURL:  w.store.PublicURL(path),
	}

	result.mu.Lock()
	result.Assets = append(result.Assets, asset)
	result.mu.Unlock()
}

func (w *WalkerService) markTruncated(result *WalkResult) {
	result.mu.Lock()
	result.Truncated = true
	result.mu.Unlock()
}

func deadlinePassed(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
