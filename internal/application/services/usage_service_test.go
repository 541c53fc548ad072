package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masgolf/gallery-go/internal/domain/entities/assets"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/performance"
	"github.com/masgolf/gallery-go/internal/infrastructure/persistence/content"
)

type fakeContentSources struct {
	posts    []content.SourceItem
	pages    []content.SourceItem
	entries  []content.SourceItem
	postsErr error
}

func (f *fakeContentSources) BlogPosts(ctx context.Context) ([]content.SourceItem, error) {
	if f.postsErr != nil {
		return nil, f.postsErr
	}
	return f.posts, nil
}

func (f *fakeContentSources) FunnelPages(ctx context.Context) ([]content.SourceItem, error) {
	return f.pages, nil
}

func (f *fakeContentSources) CalendarEntries(ctx context.Context) ([]content.SourceItem, error) {
	return f.entries, nil
}

func newUsageFixture(t *testing.T, sources ContentSources, templatesDir string) *UsageService {
	t.Helper()
	return NewUsageService(sources, templatesDir, newTestLogger(t), performance.NewTracker(nil))
}

func galleryAsset(folder, name string) assets.Asset {
	path := name
	if folder != "" {
		path = folder + "/" + name
	}
	return assets.Asset{
		Name:       name,
		FolderPath: folder,
		PublicURL:  "https://cdn.test/storage/v1/object/public/blog-images/" + path,
	}
}

func TestUsageAcrossSourceTypes(t *testing.T) {
	hero := galleryAsset("campaigns/2026-07", "hero.png")
	sources := &fakeContentSources{
		posts: []content.SourceItem{{
			Title: "July Driver Roundup",
			Slug:  "july-driver-roundup",
			Body:  "Intro\n\n![Hero](https://cdn.test/storage/v1/object/public/blog-images/campaigns/2026-07/hero.png)\n",
		}},
		pages: []content.SourceItem{{
			Title: "Summer Sale",
			Slug:  "summer-sale",
			Body:  `<div><img src="/blog-images/campaigns/2026-07/hero.png" alt=""></div>`,
		}},
		entries: []content.SourceItem{{
			Title: "Unrelated tasting event",
			Body:  "No images here",
		}},
	}
	svc := newUsageFixture(t, sources, "")

	refs, err := svc.ForAsset(context.Background(), hero)
	require.NoError(t, err)

	require.Len(t, refs, 2)
	types := []string{refs[0].SourceType, refs[1].SourceType}
	assert.Contains(t, types, assets.SourceBlogPost)
	assert.Contains(t, types, assets.SourceFunnelPage)
	for _, ref := range refs {
		assert.False(t, ref.MatchedAt.IsZero())
	}
}

func TestUsageDedupesRepeatedReferencesInOneSource(t *testing.T) {
	hero := galleryAsset("", "hero.png")
	sources := &fakeContentSources{
		pages: []content.SourceItem{{
			Title: "Summer Sale",
			Slug:  "summer-sale",
			Body: `<img src="/images/hero.png">` +
				`<div style="background: url('/images/hero.png')"></div>`,
		}},
	}
	svc := newUsageFixture(t, sources, "")

	refs, err := svc.ForAsset(context.Background(), hero)
	require.NoError(t, err)

	assert.Len(t, refs, 1, "one source item counts once no matter how often it shows the image")
}

func TestUsageBatchMatchesSingleLookups(t *testing.T) {
	hero := galleryAsset("campaigns/2026-07", "hero.png")
	banner := galleryAsset("campaigns/2026-07", "banner.png")
	unused := galleryAsset("drivers", "tm-stealth.png")
	sources := &fakeContentSources{
		posts: []content.SourceItem{{
			Title: "July Driver Roundup",
			Slug:  "july-driver-roundup",
			Body: "![A](/blog-images/campaigns/2026-07/hero.png)\n" +
				"![B](/blog-images/campaigns/2026-07/banner.png)\n",
		}},
	}
	svc := newUsageFixture(t, sources, "")

	batch, err := svc.ForAssets(context.Background(), []assets.Asset{hero, banner, unused})
	require.NoError(t, err)

	single, err := svc.ForAsset(context.Background(), hero)
	require.NoError(t, err)

	require.Len(t, batch[hero.PublicURL], len(single))
	for i, ref := range single {
		assert.Equal(t, ref.SourceType, batch[hero.PublicURL][i].SourceType)
		assert.Equal(t, ref.SourceTitle, batch[hero.PublicURL][i].SourceTitle)
		assert.Equal(t, ref.SourceURL, batch[hero.PublicURL][i].SourceURL)
	}
	assert.Len(t, batch[banner.PublicURL], 1)
	assert.NotContains(t, batch, unused.PublicURL, "unused assets are absent from the result")
}

func TestUsageScansHTMLTemplatesOnDisk(t *testing.T) {
	dir := t.TempDir()
	body := `<html><body><img src="/blog-images/funnel/offer.png"></body></html>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v3.html"), []byte(body), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("offer.png"), 0644))

	offer := galleryAsset("funnel", "offer.png")
	svc := newUsageFixture(t, &fakeContentSources{}, dir)

	refs, err := svc.ForAsset(context.Background(), offer)
	require.NoError(t, err)

	require.Len(t, refs, 1, "only .html files are scanned")
	assert.Equal(t, assets.SourceHTML, refs[0].SourceType)
	assert.Equal(t, "v3.html", refs[0].SourceTitle)
	assert.Equal(t, "/v3.html", refs[0].SourceURL)
}

func TestUsageSkipsUnavailableSources(t *testing.T) {
	hero := galleryAsset("", "hero.png")
	sources := &fakeContentSources{
		postsErr: errors.New("blog table locked"),
		pages: []content.SourceItem{{
			Title: "Summer Sale",
			Slug:  "summer-sale",
			Body:  `<img src="/images/hero.png">`,
		}},
	}
	svc := newUsageFixture(t, sources, "")

	refs, err := svc.ForAsset(context.Background(), hero)
	require.NoError(t, err, "a failing source is skipped, not fatal")
	assert.Len(t, refs, 1)
}

func TestUsageCalendarPlainURLReferences(t *testing.T) {
	flyer := galleryAsset("events", "flyer.png")
	sources := &fakeContentSources{
		entries: []content.SourceItem{{
			Title: "Demo Day",
			Body:  "Join us Saturday https://cdn.test/storage/v1/object/public/blog-images/events/flyer.png doors at 9",
		}},
	}
	svc := newUsageFixture(t, sources, "")

	refs, err := svc.ForAsset(context.Background(), flyer)
	require.NoError(t, err)

	require.Len(t, refs, 1)
	assert.Equal(t, assets.SourceCalendarEntry, refs[0].SourceType)
}
