package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/masgolf/gallery-go/internal/application/services"
	"github.com/masgolf/gallery-go/internal/domain/entities/assets"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/performance"
)

// MetadataHandlers holds dependencies for metadata endpoints
type MetadataHandlers struct {
	metadataService *services.MetadataService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewMetadataHandlers creates metadata handlers with injected dependencies
func NewMetadataHandlers(metadataService *services.MetadataService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *MetadataHandlers {
	return &MetadataHandlers{
		metadataService: metadataService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// GetMetadata handles GET /api/v1/gallery/metadata?imageUrl=...
func (h *MetadataHandlers) GetMetadata(c *gin.Context) {
	marker := h.perfTracker.StartOperation("metadata:get")
	defer h.perfTracker.CompleteOperation(marker)

	imageURL := c.Query("imageUrl")
	if imageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "imageUrl query parameter is required"})
		return
	}

	rec, quality, err := h.metadataService.Get(c.Request.Context(), imageURL)
	if err != nil {
		marker.SetError(err)
		h.logger.Content().Error("Metadata lookup failed", "imageUrl", imageURL, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load metadata",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metadata": rec,
		"quality":  quality,
	})
}

// PutMetadata handles PUT /api/v1/gallery/metadata
func (h *MetadataHandlers) PutMetadata(c *gin.Context) {
	marker := h.perfTracker.StartOperation("metadata:save")
	defer h.perfTracker.CompleteOperation(marker)

	var rec assets.MetadataRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	quality, err := h.metadataService.Save(c.Request.Context(), &rec)
	if err != nil {
		marker.SetError(err)
		h.logger.Content().Error("Metadata save failed", "imageUrl", rec.ImageURL, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save metadata",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metadata": rec,
		"quality":  quality,
	})
}
