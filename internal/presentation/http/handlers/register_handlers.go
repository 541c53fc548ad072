package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/masgolf/gallery-go/internal/application/services"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/performance"
)

// RegisterHandlers holds dependencies for asset registration endpoints
type RegisterHandlers struct {
	registerService *services.RegisterService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewRegisterHandlers creates registration handlers with injected dependencies
func NewRegisterHandlers(registerService *services.RegisterService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *RegisterHandlers {
	return &RegisterHandlers{
		registerService: registerService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// PostRegister handles POST /api/v1/gallery/register
func (h *RegisterHandlers) PostRegister(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.SourceURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sourceUrl is required"})
		return
	}

	result, err := h.registerService.Register(c.Request.Context(), req)
	if err != nil {
		h.logger.Content().Error("Asset registration failed",
			"sourceUrl", req.SourceURL, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to register asset",
			"details": err.Error(),
		})
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	c.JSON(status, result)
}
