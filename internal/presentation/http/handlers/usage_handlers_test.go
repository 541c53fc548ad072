package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masgolf/gallery-go/internal/application/services"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/performance"
	"github.com/masgolf/gallery-go/internal/infrastructure/persistence/content"
)

type stubContentSources struct {
	pages []content.SourceItem
}

func (s *stubContentSources) BlogPosts(ctx context.Context) ([]content.SourceItem, error) {
	return nil, nil
}

func (s *stubContentSources) FunnelPages(ctx context.Context) ([]content.SourceItem, error) {
	return s.pages, nil
}

func (s *stubContentSources) CalendarEntries(ctx context.Context) ([]content.SourceItem, error) {
	return nil, nil
}

func newUsageRouter(t *testing.T, sources services.ContentSources) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)

	tracker := performance.NewTracker(nil)
	usage := services.NewUsageService(sources, "", logger, tracker)
	h := NewUsageHandlers(usage, &stubStore{}, logger, tracker)

	r := gin.New()
	r.GET("/api/v1/gallery/usage", h.GetUsage)
	r.POST("/api/v1/gallery/usage", h.PostBatchUsage)
	return r
}

func TestGetUsageRequiresPath(t *testing.T) {
	r := newUsageRouter(t, &stubContentSources{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/gallery/usage", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUsageResolvesReferences(t *testing.T) {
	sources := &stubContentSources{pages: []content.SourceItem{{
		Title: "Summer Sale",
		Slug:  "summer-sale",
		Body:  `<img src="/blog-images/drivers/tm-stealth.png">`,
	}}}
	r := newUsageRouter(t, sources)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/gallery/usage?path=drivers/tm-stealth.png", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Path      string          `json:"path"`
		UsedCount int             `json:"usedCount"`
		UsedIn    json.RawMessage `json:"usedIn"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "drivers/tm-stealth.png", body.Path)
	assert.Equal(t, 1, body.UsedCount)
}

func TestPostBatchUsageKeysByStoragePath(t *testing.T) {
	sources := &stubContentSources{pages: []content.SourceItem{{
		Title: "Summer Sale",
		Slug:  "summer-sale",
		Body:  `<img src="/images/hero.png">`,
	}}}
	r := newUsageRouter(t, sources)

	payload := `{"paths": ["hero.png", "/drivers/tm-stealth.png"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gallery/usage", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Results map[string]struct {
			UsedCount int `json:"usedCount"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	// A bare filename is a bucket-root object; its key carries no
	// folder segment.
	require.Contains(t, body.Results, "hero.png")
	require.Contains(t, body.Results, "drivers/tm-stealth.png")
	assert.Equal(t, 1, body.Results["hero.png"].UsedCount)
	assert.Equal(t, 0, body.Results["drivers/tm-stealth.png"].UsedCount)
}
