// Package startup orchestrates application initialization phases.
package startup

import (
	"time"

	"github.com/masgolf/gallery-go/internal/application/container"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/performance"
)

// Result carries the initialized application graph.
type Result struct {
	Container *container.Container
	Logger    *logging.ChanneledLogger
	Tracker   *performance.Tracker
}

// Initialize runs the startup phases: observability first, then the
// dependency container on top of it.
func Initialize() (*Result, error) {
	logger, err := logging.NewChanneledLogger(nil)
	if err != nil {
		return nil, err
	}

	tracker := performance.NewTracker(nil)
	marker := tracker.StartOperation("system:startup")

	phaseStart := time.Now()
	c, err := container.NewContainer(logger, tracker)
	logger.LogStartupPhase("container", time.Since(phaseStart), err == nil, nil)
	if err != nil {
		marker.SetError(err)
		tracker.CompleteOperation(marker)
		logger.Close()
		return nil, err
	}

	tracker.CompleteOperation(marker)
	logger.Startup().Info("Application initialized", "duration", marker.Duration)

	return &Result{
		Container: c,
		Logger:    logger,
		Tracker:   tracker,
	}, nil
}
