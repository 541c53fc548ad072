package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/masgolf/gallery-go/internal/domain/entities/assets"
	"github.com/masgolf/gallery-go/internal/infrastructure/caching/interfaces"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/performance"
)

// ListRequest carries the listing parameters after query parsing.
type ListRequest struct {
	Limit           int
	Page            int
	Offset          int
	Prefix          string
	IncludeChildren bool
	IncludeUsage    bool
	ForceRefresh    bool
	SearchQuery     string
}

// ListResponse is the assembled listing result.
type ListResponse struct {
	Images     []assets.AssetView `json:"images"`
	Count      int                `json:"count"`
	Total      int                `json:"total"`
	Truncated  bool               `json:"truncated"`
	Pagination assets.Pagination  `json:"pagination"`
}

// MetadataLookup is the metadata surface the gallery needs.
type MetadataLookup interface {
	FindByURLs(ctx context.Context, urls []string) (map[string]*assets.MetadataRecord, error)
	FindByFileNames(ctx context.Context, names []string) (map[string]*assets.MetadataRecord, error)
	SearchURLs(ctx context.Context, query string) ([]string, error)
}

// UsageLookup resolves where assets are used across site content.
type UsageLookup interface {
	ForAssets(ctx context.Context, items []assets.Asset) (map[string][]assets.UsageReference, error)
}

// GalleryService orchestrates the cached, paginated image listing.
type GalleryService struct {
	walker       *WalkerService
	cache        interfaces.AssetCache
	metadata     MetadataLookup
	usage        UsageLookup
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
	walkDeadline time.Duration
	pageSize     int
}

// NewGalleryService creates the gallery service.
func NewGalleryService(walker *WalkerService, cache interfaces.AssetCache, metadata MetadataLookup, usage UsageLookup, logger *logging.ChanneledLogger, tracker *performance.Tracker, walkDeadline time.Duration, defaultPageSize int) *GalleryService {
	return &GalleryService{
		walker:       walker,
		cache:        cache,
		metadata:     metadata,
		usage:        usage,
		logger:       logger,
		perfTracker:  tracker,
		walkDeadline: walkDeadline,
		pageSize:     defaultPageSize,
	}
}

func prefixKey(prefix string) string {
	if prefix == "" {
		return "root"
	}
	return prefix
}

// listingKey keys cached listings by folder and recursion only.
// Search and usage enrichment run after the cache read, so every
// filter combination over the same folder shares one cached walk.
func listingKey(prefix string, includeChildren bool) string {
	return fmt.Sprintf("%s|children=%t", prefixKey(prefix), includeChildren)
}

// List serves one page of the gallery listing.
func (s *GalleryService) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	marker := s.perfTracker.StartOperation("gallery:list")
	defer s.perfTracker.CompleteOperation(marker)
	marker.AddMetadata("prefix", prefixKey(req.Prefix))

	if req.ForceRefresh {
		s.cache.InvalidateAll()
	}

	listing, err := s.listingFor(ctx, req.Prefix, req.IncludeChildren, marker)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	items := listing.items
	truncated := listing.truncated
	total := 0

	if req.SearchQuery != "" {
		items = s.filterBySearch(ctx, items, req.SearchQuery)
		// Search totals count only what search can see.
		total = len(items)
	} else {
		var countTruncated bool
		total, countTruncated, err = s.totalFor(ctx, req.Prefix, req.IncludeChildren, listing, marker)
		if err != nil {
			marker.SetError(err)
			return nil, err
		}
		truncated = truncated || countTruncated
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	offset := req.Offset
	page := req.Page
	if page > 0 {
		offset = (page - 1) * limit
	} else {
		page = offset/limit + 1
	}

	pageItems := slicePage(items, offset, limit)
	views := s.enrich(ctx, pageItems, req.IncludeUsage)

	pagination := assets.Pagination{
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
		PageSize:    limit,
		HasNextPage: offset+limit < total,
		HasPrevPage: offset > 0,
	}
	if pagination.HasNextPage {
		next := page + 1
		pagination.NextPage = &next
	}
	if pagination.HasPrevPage && page > 1 {
		prev := page - 1
		pagination.PrevPage = &prev
	}

	resp := &ListResponse{
		Images:     views,
		Count:      len(views),
		Total:      total,
		Truncated:  truncated,
		Pagination: pagination,
	}

	marker.AddMetadata("returned", len(views))
	marker.AddMetadata("total", total)
	return resp, nil
}

// InvalidateCaches drops all cached counts and listings.
func (s *GalleryService) InvalidateCaches() {
	s.cache.InvalidateAll()
}

// CacheStats exposes cache statistics for the status endpoint.
func (s *GalleryService) CacheStats() any {
	return s.cache.Stats()
}

type listingState struct {
	items     []assets.Asset
	truncated bool
	fresh     bool
}

// listingFor returns the cached listing for the key, walking the store
// on a miss. Walks run under their own soft deadline so a slow store
// yields a truncated listing instead of an unbounded request.
func (s *GalleryService) listingFor(ctx context.Context, prefix string, includeChildren bool, marker *performance.Marker) (*listingState, error) {
	key := listingKey(prefix, includeChildren)
	if entry, ok := s.cache.GetListing(key); ok {
		marker.AddCacheHit()
		return &listingState{items: entry.Items, truncated: entry.Truncated}, nil
	}
	marker.AddCacheMiss()

	walkCtx, cancel := context.WithTimeout(ctx, s.walkDeadline)
	defer cancel()

	result, err := s.walker.Walk(walkCtx, prefix, includeChildren)
	if err != nil {
		return nil, fmt.Errorf("failed to walk storage for %q: %w", prefix, err)
	}

	// Truncated listings are cached too; the TTL bounds how long the
	// partial view can persist and forceRefresh clears it sooner.
	s.cache.SetListing(key, result.Assets, result.Truncated)
	return &listingState{items: result.Assets, truncated: result.Truncated, fresh: true}, nil
}

// totalFor resolves the recursive count for the prefix, reusing a
// freshly walked recursive listing when one is at hand.
func (s *GalleryService) totalFor(ctx context.Context, prefix string, includeChildren bool, listing *listingState, marker *performance.Marker) (int, bool, error) {
	key := prefixKey(prefix)
	if entry, ok := s.cache.GetCount(key); ok {
		marker.AddCacheHit()
		return entry.Value, entry.Truncated, nil
	}
	marker.AddCacheMiss()

	if includeChildren {
		s.cache.SetCount(key, len(listing.items), listing.truncated)
		return len(listing.items), listing.truncated, nil
	}

	countCtx, cancel := context.WithTimeout(ctx, s.walkDeadline)
	defer cancel()

	value, truncated, err := s.walker.Count(countCtx, prefix)
	if err != nil {
		return 0, false, fmt.Errorf("failed to count assets for %q: %w", prefix, err)
	}
	s.cache.SetCount(key, value, truncated)
	return value, truncated, nil
}

// filterBySearch keeps assets whose name or path contains the query,
// or whose metadata text matches it. A failing metadata search falls
// back to name and path matching alone.
func (s *GalleryService) filterBySearch(ctx context.Context, items []assets.Asset, query string) []assets.Asset {
	lower := strings.ToLower(query)

	metaURLs, err := s.metadata.SearchURLs(ctx, query)
	if err != nil {
		s.logger.Database().Warn("Metadata search failed, filtering by name only",
			"query", query, "error", err.Error())
		metaURLs = nil
	}
	urlSet := make(map[string]struct{}, len(metaURLs))
	for _, u := range metaURLs {
		urlSet[u] = struct{}{}
	}

	var filtered []assets.Asset
	for _, a := range items {
		if strings.Contains(strings.ToLower(a.Name), lower) ||
			strings.Contains(strings.ToLower(a.StoragePath()), lower) {
			filtered = append(filtered, a)
			continue
		}
		if _, ok := urlSet[a.PublicURL]; ok {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// enrich attaches metadata fields, quality scores, and optionally
// usage references to the page of assets. Every enrichment source is
// best-effort: metadata absence is a valid state, so a failing lookup
// serves the page with empty metadata fields instead of erroring.
func (s *GalleryService) enrich(ctx context.Context, items []assets.Asset, includeUsage bool) []assets.AssetView {
	views := make([]assets.AssetView, 0, len(items))
	if len(items) == 0 {
		return views
	}

	urls := make([]string, len(items))
	names := make([]string, len(items))
	for i, a := range items {
		urls[i] = a.PublicURL
		names[i] = a.Name
	}

	byURL, err := s.metadata.FindByURLs(ctx, urls)
	if err != nil {
		s.logger.Database().Warn("Metadata lookup failed, serving listing without metadata",
			"error", err.Error())
		byURL = nil
	}
	byName, err := s.metadata.FindByFileNames(ctx, names)
	if err != nil {
		s.logger.Database().Warn("Metadata filename lookup failed",
			"error", err.Error())
		byName = nil
	}

	var usageMap map[string][]assets.UsageReference
	if includeUsage {
		usageMap, err = s.usage.ForAssets(ctx, items)
		if err != nil {
			s.logger.Usage().Warn("Usage lookup failed, serving listing without usage",
				"error", err.Error())
			usageMap = nil
		}
	}

	for _, a := range items {
		view := assets.ViewOf(a)

		rec := byURL[a.PublicURL]
		if rec == nil {
			rec = byName[a.Name]
		}
		view.ApplyMetadata(rec)
		quality := assets.ScoreMetadata(rec)
		view.Quality = &quality

		if refs := usageMap[a.PublicURL]; len(refs) > 0 {
			view.UsedIn = refs
			view.UsageCount = len(refs)
		}

		views = append(views, view)
	}
	return views
}

func slicePage(items []assets.Asset, offset, limit int) []assets.Asset {
	if offset >= len(items) || offset < 0 {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
