package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/masgolf/gallery-go/internal/application/services"
	"github.com/masgolf/gallery-go/internal/domain/entities/assets"
	"github.com/masgolf/gallery-go/internal/infrastructure/objectstore"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/performance"
)

// UsageHandlers holds dependencies for usage lookup endpoints
type UsageHandlers struct {
	usageService *services.UsageService
	store        objectstore.Client
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewUsageHandlers creates usage handlers with injected dependencies
func NewUsageHandlers(usageService *services.UsageService, store objectstore.Client, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *UsageHandlers {
	return &UsageHandlers{
		usageService: usageService,
		store:        store,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

func (h *UsageHandlers) assetFromPath(storagePath string) assets.Asset {
	storagePath = strings.Trim(storagePath, "/")
	folder := path.Dir(storagePath)
	if folder == "." {
		// Bare filenames live at the bucket root.
		folder = ""
	}
	return assets.Asset{
		Name:       path.Base(storagePath),
		FolderPath: folder,
		PublicURL:  h.store.PublicURL(storagePath),
	}
}

// GetUsage handles GET /api/v1/gallery/usage?path=...
func (h *UsageHandlers) GetUsage(c *gin.Context) {
	storagePath := c.Query("path")
	if storagePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter is required"})
		return
	}

	asset := h.assetFromPath(storagePath)
	usedIn, err := h.usageService.ForAsset(c.Request.Context(), asset)
	if err != nil {
		h.logger.Usage().Error("Usage lookup failed", "path", storagePath, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to resolve usage",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"path":      storagePath,
		"usedIn":    usedIn,
		"usedCount": len(usedIn),
	})
}

type batchUsageRequest struct {
	Paths []string `json:"paths" binding:"required"`
}

// PostBatchUsage handles POST /api/v1/gallery/usage
func (h *UsageHandlers) PostBatchUsage(c *gin.Context) {
	var req batchUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	items := make([]assets.Asset, 0, len(req.Paths))
	for _, p := range req.Paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		items = append(items, h.assetFromPath(p))
	}

	usage, err := h.usageService.ForAssets(c.Request.Context(), items)
	if err != nil {
		h.logger.Usage().Error("Batch usage lookup failed", "paths", len(items), "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to resolve usage",
			"details": err.Error(),
		})
		return
	}

	results := make(map[string]gin.H, len(items))
	for _, asset := range items {
		usedIn := usage[asset.PublicURL]
		results[asset.StoragePath()] = gin.H{
			"usedIn":    usedIn,
			"usedCount": len(usedIn),
		}
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
