// Package container provides dependency injection for singleton
// services shared across the application.
package container

import (
	"fmt"

	"github.com/masgolf/gallery-go/internal/application/services"
	"github.com/masgolf/gallery-go/internal/infrastructure/caching/cleanup"
	"github.com/masgolf/gallery-go/internal/infrastructure/caching/manager"
	"github.com/masgolf/gallery-go/internal/infrastructure/media"
	"github.com/masgolf/gallery-go/internal/infrastructure/messaging"
	"github.com/masgolf/gallery-go/internal/infrastructure/objectstore"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/performance"
	"github.com/masgolf/gallery-go/internal/infrastructure/persistence/content"
	"github.com/masgolf/gallery-go/internal/infrastructure/persistence/database"
	"github.com/masgolf/gallery-go/internal/infrastructure/persistence/metadata"
	"github.com/masgolf/gallery-go/pkg/config"
)

// Container holds all singleton services and repositories.
type Container struct {
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker

	DB           *database.DB
	ObjectStore  objectstore.Client
	CacheManager *manager.Manager

	MetadataRepo *metadata.Repository
	SourceRepo   *content.SourceRepository
	AssetRepo    *content.AssetRepository

	WalkerService   *services.WalkerService
	GalleryService  *services.GalleryService
	UsageService    *services.UsageService
	MetadataService *services.MetadataService
	RegisterService *services.RegisterService

	CleanupWorker  *cleanup.Worker
	OpsBroadcaster *messaging.OpsBroadcaster
}

// NewContainer builds the full dependency graph.
func NewContainer(logger *logging.ChanneledLogger, tracker *performance.Tracker) (*Container, error) {
	c := &Container{
		Logger:      logger,
		PerfTracker: tracker,
	}

	db, err := database.Connect(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := db.EnsureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	c.DB = db

	c.ObjectStore = objectstore.NewSupabaseClient(
		config.StorageURL, config.StorageServiceKey, config.StorageBucket)

	c.CacheManager = manager.NewManager(config.CountCacheTTL, config.ListingCacheTTL, logger)

	c.MetadataRepo = metadata.NewRepository(db, logger)
	c.SourceRepo = content.NewSourceRepository(db, logger)
	c.AssetRepo = content.NewAssetRepository(db, logger)

	c.WalkerService = services.NewWalkerService(
		c.ObjectStore, logger,
		config.StorePageSize, config.FolderConcurrency,
		config.GoodsFolder, config.GoodsSubfolders, config.TempPrefix)

	c.UsageService = services.NewUsageService(
		c.SourceRepo, config.HTMLTemplatesDir, logger, tracker)

	c.GalleryService = services.NewGalleryService(
		c.WalkerService, c.CacheManager, c.MetadataRepo, c.UsageService,
		logger, tracker, config.WalkSoftDeadline, config.DefaultPageSize)

	c.MetadataService = services.NewMetadataService(c.MetadataRepo, logger)

	c.RegisterService = services.NewRegisterService(
		c.ObjectStore, c.AssetRepo, media.NewVariantProcessor(logger),
		c.CacheManager, logger, tracker)

	c.CleanupWorker = cleanup.NewWorker(
		c.CacheManager.AssetStore(), logger, config.ListingCacheTTL)

	c.OpsBroadcaster = messaging.NewOpsBroadcaster(
		c.CacheManager, tracker, logger, config.OpsBroadcastInterval)

	return c, nil
}

// Close releases held resources.
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
