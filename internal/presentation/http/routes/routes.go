// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/masgolf/gallery-go/internal/application/container"
	"github.com/masgolf/gallery-go/internal/presentation/http/handlers"
	"github.com/masgolf/gallery-go/internal/presentation/http/middleware"
	"github.com/masgolf/gallery-go/pkg/config"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(c *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Unsupported methods on known routes answer 405 instead of 404.
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "Method not allowed",
		})
	})

	// Initialize handlers
	galleryHandlers := handlers.NewGalleryHandlers(c.GalleryService, c.Logger, c.PerfTracker, config.RequestTimeout)
	metadataHandlers := handlers.NewMetadataHandlers(c.MetadataService, c.Logger, c.PerfTracker)
	usageHandlers := handlers.NewUsageHandlers(c.UsageService, c.ObjectStore, c.Logger, c.PerfTracker)
	registerHandlers := handlers.NewRegisterHandlers(c.RegisterService, c.Logger, c.PerfTracker)
	systemHandlers := handlers.NewSystemHandlers(c.DB, c.OpsBroadcaster, c.Logger, c.PerfTracker)

	r.GET("/health", systemHandlers.GetHealth)
	r.GET("/ws/ops", systemHandlers.GetOpsSocket)

	api := r.Group("/api/v1")
	{
		gallery := api.Group("/gallery")
		{
			gallery.GET("/images", galleryHandlers.GetImages)
			gallery.POST("/cache/invalidate", galleryHandlers.PostInvalidateCache)
			gallery.GET("/cache/stats", galleryHandlers.GetCacheStats)

			gallery.GET("/metadata", metadataHandlers.GetMetadata)
			gallery.PUT("/metadata", metadataHandlers.PutMetadata)

			gallery.GET("/usage", usageHandlers.GetUsage)
			gallery.POST("/usage", usageHandlers.PostBatchUsage)

			gallery.POST("/register", registerHandlers.PostRegister)
		}

		api.GET("/db/status", systemHandlers.GetDatabaseStatus)

		system := api.Group("/system")
		{
			system.GET("/logs/levels", systemHandlers.GetLogLevels)
			system.POST("/logs/levels", systemHandlers.PostLogLevel)
		}
	}

	return r
}
