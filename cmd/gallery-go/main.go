// Gallery service entrypoint: image asset listing, metadata, and usage
// tracking for the store's content platform.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/masgolf/gallery-go/internal/application/startup"
	"github.com/masgolf/gallery-go/internal/presentation/http/server"
	"github.com/masgolf/gallery-go/pkg/config"
)

func main() {
	result, err := startup.Initialize()
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}
	c := result.Container
	defer result.Logger.Close()
	defer c.Close()

	// Background workers stop with this context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.CleanupWorker.Start(ctx)
	go c.OpsBroadcaster.Run(ctx)

	srv := server.New(config.Port, c)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			result.Logger.System().Error("Server failed", "error", err.Error())
			os.Exit(1)
		}
	case sig := <-quit:
		result.Logger.Shutdown().Info("Shutdown signal received", "signal", sig.String())
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		result.Logger.Shutdown().Error("Graceful shutdown failed", "error", err.Error())
	}
}
