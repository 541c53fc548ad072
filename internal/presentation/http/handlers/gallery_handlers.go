// Package handlers provides HTTP handlers for the gallery API.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/masgolf/gallery-go/internal/application/services"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/performance"
)

// GalleryHandlers holds dependencies for gallery listing endpoints
type GalleryHandlers struct {
	galleryService *services.GalleryService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
	requestTimeout time.Duration
}

// NewGalleryHandlers creates gallery handlers with injected dependencies
func NewGalleryHandlers(galleryService *services.GalleryService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker, requestTimeout time.Duration) *GalleryHandlers {
	return &GalleryHandlers{
		galleryService: galleryService,
		logger:         logger,
		perfTracker:    perfTracker,
		requestTimeout: requestTimeout,
	}
}

type listOutcome struct {
	resp *services.ListResponse
	err  error
}

// GetImages handles GET /api/v1/gallery/images
func (h *GalleryHandlers) GetImages(c *gin.Context) {
	start := time.Now()

	req := services.ListRequest{
		Limit:           parseIntParam(c, "limit", 0),
		Offset:          parseIntParam(c, "offset", 0),
		Page:            parseIntParam(c, "page", 0),
		Prefix:          c.Query("prefix"),
		IncludeChildren: parseBoolParam(c, "includeChildren", true),
		IncludeUsage:    parseBoolParam(c, "includeUsageInfo", false),
		ForceRefresh:    parseBoolParam(c, "forceRefresh", false),
		SearchQuery:     c.Query("searchQuery"),
	}

	h.logger.Content().Debug("Gallery listing requested",
		"prefix", req.Prefix,
		"includeChildren", req.IncludeChildren,
		"searchQuery", req.SearchQuery,
		"forceRefresh", req.ForceRefresh)

	// The walk keeps running past the timeout and lands in cache, so
	// the retry suggested below is usually served instantly. The
	// context is detached because net/http cancels the request context
	// the moment the 504 is written, which would truncate the walk.
	outcome := make(chan listOutcome, 1)
	listCtx := context.WithoutCancel(c.Request.Context())
	go func() {
		resp, err := h.galleryService.List(listCtx, req)
		outcome <- listOutcome{resp: resp, err: err}
	}()

	select {
	case result := <-outcome:
		if result.err != nil {
			h.logger.Content().Error("Gallery listing failed",
				"prefix", req.Prefix, "error", result.err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to list images",
				"details": result.err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, result.resp)

	case <-time.After(h.requestTimeout):
		h.logger.Alert().Warn("Gallery listing timed out",
			"prefix", req.Prefix,
			"elapsed", time.Since(start))
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"error":      "Image listing timed out",
			"details":    "The storage enumeration did not finish in time",
			"suggestion": "Retry the request; results are being cached in the background",
		})
	}
}

// PostInvalidateCache handles POST /api/v1/gallery/cache/invalidate
func (h *GalleryHandlers) PostInvalidateCache(c *gin.Context) {
	h.galleryService.InvalidateCaches()
	c.JSON(http.StatusOK, gin.H{
		"status": "invalidated",
	})
}

// GetCacheStats handles GET /api/v1/gallery/cache/stats
func (h *GalleryHandlers) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.galleryService.CacheStats())
}

func parseIntParam(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func parseBoolParam(c *gin.Context, name string, fallback bool) bool {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
