package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/masgolf/gallery-go/internal/application/matching"
	"github.com/masgolf/gallery-go/internal/domain/entities/assets"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/performance"
	"github.com/masgolf/gallery-go/internal/infrastructure/persistence/content"
)

// scannedSource is one content item with its extracted image
// references, ready to be matched against many assets.
type scannedSource struct {
	sourceType string
	title      string
	sourceURL  string
	refs       []string
}

// ContentSources loads the database-backed content the usage matcher
// scans.
type ContentSources interface {
	BlogPosts(ctx context.Context) ([]content.SourceItem, error)
	FunnelPages(ctx context.Context) ([]content.SourceItem, error)
	CalendarEntries(ctx context.Context) ([]content.SourceItem, error)
}

// UsageService resolves where stored images are referenced across the
// site: funnel page HTML on disk, blog posts, funnel pages, and
// calendar entries in the database.
type UsageService struct {
	sources      ContentSources
	templatesDir string
	chain        matching.Chain
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewUsageService creates the usage service.
func NewUsageService(sources ContentSources, templatesDir string, logger *logging.ChanneledLogger, tracker *performance.Tracker) *UsageService {
	return &UsageService{
		sources:      sources,
		templatesDir: templatesDir,
		chain:        matching.DefaultChain(),
		logger:       logger,
		perfTracker:  tracker,
	}
}

// ForAsset resolves usage for a single asset.
func (s *UsageService) ForAsset(ctx context.Context, asset assets.Asset) ([]assets.UsageReference, error) {
	result, err := s.ForAssets(ctx, []assets.Asset{asset})
	if err != nil {
		return nil, err
	}
	return result[asset.PublicURL], nil
}

// ForAssets resolves usage for a batch of assets in one pass over the
// content sources. The result is keyed by public URL; assets with no
// usage are absent from the map.
func (s *UsageService) ForAssets(ctx context.Context, items []assets.Asset) (map[string][]assets.UsageReference, error) {
	marker := s.perfTracker.StartOperation("usage:batch")
	defer s.perfTracker.CompleteOperation(marker)
	marker.AddMetadata("assets", len(items))

	scanned, err := s.loadSources(ctx)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	marker.AddMetadata("sources", len(scanned))

	now := time.Now()
	result := make(map[string][]assets.UsageReference)

	for _, asset := range items {
		storagePath := asset.StoragePath()
		seen := make(map[string]struct{})

		for _, src := range scanned {
			if s.sourceReferences(src, storagePath, asset.Name) {
				// One reference per source item even when the image
				// appears several times in its body.
				dedupKey := src.sourceType + "|" + src.title
				if _, ok := seen[dedupKey]; ok {
					continue
				}
				seen[dedupKey] = struct{}{}

				result[asset.PublicURL] = append(result[asset.PublicURL], assets.UsageReference{
					SourceType:  src.sourceType,
					SourceTitle: src.title,
					SourceURL:   src.sourceURL,
					MatchedAt:   now,
				})
			}
		}
	}

	return result, nil
}

func (s *UsageService) sourceReferences(src scannedSource, storagePath, fileName string) bool {
	for _, ref := range src.refs {
		if s.chain.Match(ref, storagePath, fileName) != "" {
			return true
		}
	}
	return false
}

// loadSources gathers every scannable content source with its
// extracted references. Unreadable sources are logged and skipped.
func (s *UsageService) loadSources(ctx context.Context) ([]scannedSource, error) {
	var scanned []scannedSource

	scanned = append(scanned, s.loadHTMLTemplates()...)

	if posts, err := s.sources.BlogPosts(ctx); err != nil {
		s.logger.Usage().Warn("Blog posts unavailable for usage scan", "error", err.Error())
	} else {
		for _, p := range posts {
			scanned = append(scanned, scannedSource{
				sourceType: assets.SourceBlogPost,
				title:      p.Title,
				sourceURL:  "/blog/" + p.Slug,
				refs:       matching.MarkdownRefs(p.Body),
			})
		}
	}

	if pages, err := s.sources.FunnelPages(ctx); err != nil {
		s.logger.Usage().Warn("Funnel pages unavailable for usage scan", "error", err.Error())
	} else {
		for _, p := range pages {
			scanned = append(scanned, scannedSource{
				sourceType: assets.SourceFunnelPage,
				title:      p.Title,
				sourceURL:  "/funnel/" + p.Slug,
				refs:       matching.HTMLRefs(p.Body),
			})
		}
	}

	if entries, err := s.sources.CalendarEntries(ctx); err != nil {
		s.logger.Usage().Warn("Calendar entries unavailable for usage scan", "error", err.Error())
	} else {
		for _, e := range entries {
			scanned = append(scanned, scannedSource{
				sourceType: assets.SourceCalendarEntry,
				title:      e.Title,
				refs:       matching.CalendarRefs(e.Body),
			})
		}
	}

	return scanned, nil
}

// loadHTMLTemplates scans the funnel version HTML files kept on disk.
func (s *UsageService) loadHTMLTemplates() []scannedSource {
	var scanned []scannedSource
	if s.templatesDir == "" {
		return scanned
	}

	err := filepath.WalkDir(s.templatesDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			s.logger.Usage().Warn("HTML template unreadable, skipping", "path", path, "error", err.Error())
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			return nil
		}

		body, readErr := os.ReadFile(path)
		if readErr != nil {
			s.logger.Usage().Warn("HTML template unreadable, skipping", "path", path, "error", readErr.Error())
			return nil
		}

		rel, relErr := filepath.Rel(s.templatesDir, path)
		if relErr != nil {
			rel = d.Name()
		}
		scanned = append(scanned, scannedSource{
			sourceType: assets.SourceHTML,
			title:      rel,
			sourceURL:  "/" + filepath.ToSlash(rel),
			refs:       matching.HTMLRefs(string(body)),
		})
		return nil
	})
	if err != nil {
		s.logger.Usage().Warn("HTML template directory walk failed", "dir", s.templatesDir, "error", err.Error())
	}

	return scanned
}
