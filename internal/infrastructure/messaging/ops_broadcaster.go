// Package messaging pushes live operational state to connected
// dashboard clients over websockets.
package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/masgolf/gallery-go/internal/infrastructure/caching/interfaces"
	"github.com/masgolf/gallery-go/internal/infrastructure/caching/types"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/performance"
)

// OpsClient represents a single connected operations dashboard client.
type OpsClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// OpsPayload is the snapshot pushed to every client on each tick.
type OpsPayload struct {
	Timestamp        time.Time                `json:"timestamp"`
	Cache            types.Stats              `json:"cache"`
	ActiveOperations []performance.Marker     `json:"activeOperations"`
	Tracker          map[string]any           `json:"tracker"`
	Health           performance.HealthStatus `json:"health"`
}

// OpsBroadcaster manages connected ops clients and broadcasts cache
// and performance state on an interval.
type OpsBroadcaster struct {
	clients     map[*OpsClient]bool
	register    chan *OpsClient
	unregister  chan *OpsClient
	cache       interfaces.AssetCache
	perfTracker *performance.Tracker
	logger      *logging.ChanneledLogger
	interval    time.Duration
	mu          sync.RWMutex
}

// NewOpsBroadcaster creates a broadcaster instance.
func NewOpsBroadcaster(cache interfaces.AssetCache, tracker *performance.Tracker, logger *logging.ChanneledLogger, interval time.Duration) *OpsBroadcaster {
	return &OpsBroadcaster{
		clients:     make(map[*OpsClient]bool),
		register:    make(chan *OpsClient),
		unregister:  make(chan *OpsClient),
		cache:       cache,
		perfTracker: tracker,
		logger:      logger,
		interval:    interval,
	}
}

// Run starts the broadcaster's main loop. Run it as a goroutine.
func (b *OpsBroadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			return

		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
			b.logger.Ops().Info("Ops client registered", "clients", b.clientCount())

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			b.logger.Ops().Info("Ops client unregistered", "clients", b.clientCount())

		case <-ticker.C:
			b.broadcast()
		}
	}
}

// Register queues a client for registration.
func (b *OpsBroadcaster) Register(client *OpsClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *OpsBroadcaster) Unregister(client *OpsClient) {
	b.unregister <- client
}

func (b *OpsBroadcaster) clientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// broadcast snapshots cache and performance state and fans it out.
// Slow clients are skipped rather than blocking the tick.
func (b *OpsBroadcaster) broadcast() {
	if b.clientCount() == 0 {
		return
	}

	snapshot := b.perfTracker.TakeSnapshot()
	payload := OpsPayload{
		Timestamp:        time.Now(),
		Cache:            b.cache.Stats(),
		ActiveOperations: b.perfTracker.GetActiveOperations(),
		Tracker:          b.perfTracker.GetOverallStats(),
		Health:           snapshot.OverallHealth,
	}

	message, err := json.Marshal(payload)
	if err != nil {
		b.logger.Ops().Error("Failed to marshal ops payload", "error", err.Error())
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.Send <- message:
		default:
		}
	}
}

func (b *OpsBroadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for client := range b.clients {
		close(client.Send)
		delete(b.clients, client)
	}
	b.logger.Ops().Info("Ops broadcaster stopped")
}

// WritePump drains a client's send channel to its websocket
// connection. Run it as a goroutine per connection.
func (b *OpsBroadcaster) WritePump(client *OpsClient) {
	defer client.Conn.Close()
	for message := range client.Send {
		client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ReadPump consumes and discards client messages, unregistering the
// client when the connection drops.
func (b *OpsBroadcaster) ReadPump(client *OpsClient) {
	defer func() {
		b.Unregister(client)
		client.Conn.Close()
	}()
	client.Conn.SetReadLimit(512)
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
