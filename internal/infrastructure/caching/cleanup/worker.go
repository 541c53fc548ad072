// Package cleanup provides the background cache sweep worker.
package cleanup

import (
	"context"
	"time"

	"github.com/masgolf/gallery-go/internal/infrastructure/caching/stores"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
)

// Worker periodically sweeps expired entries from the asset cache so
// abandoned keys do not accumulate between full invalidations.
type Worker struct {
	store    *stores.AssetStore
	logger   *logging.ChanneledLogger
	interval time.Duration
}

// NewWorker creates a cleanup worker with the given sweep interval.
func NewWorker(store *stores.AssetStore, logger *logging.ChanneledLogger, interval time.Duration) *Worker {
	return &Worker{
		store:    store,
		logger:   logger,
		interval: interval,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Cache().Info("Cache cleanup worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Cache().Info("Cache cleanup worker stopping")
			return
		case <-ticker.C:
			start := time.Now()
			removed := w.store.Sweep()
			if removed > 0 {
				w.logger.Cache().Info("Cache sweep finished",
					"removed", removed,
					"duration", time.Since(start))
			}
		}
	}
}
