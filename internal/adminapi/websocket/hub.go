package websocket

import (
	"sync"

	"github.com/jafarlihi/cppq-go/internal/logger"
	"github.com/jafarlihi/cppq-go/internal/metrics"
)

// Hub manages the set of connected live-stats clients and broadcasts queue
// depth snapshots to all of them. Snapshots are produced elsewhere (see
// internal/adminapi's snapshot loop) and handed in as pre-serialized JSON.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// NewHub creates an empty hub. Call Run to start its event loop.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopCh:     make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns once Stop is called.
func (h *Hub) Run() {
	h.wg.Add(1)
	defer h.wg.Done()

	for {
		select {
		case <-h.stopCh:
			h.closeAllClients()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.SetWebSocketConnections(float64(h.ClientCount()))
			logger.Debug().Str("client_id", client.ID).Msg("live stats client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			metrics.SetWebSocketConnections(float64(h.ClientCount()))
			logger.Debug().Str("client_id", client.ID).Msg("live stats client unregistered")

		case snapshot := <-h.broadcast:
			h.broadcastSnapshot(snapshot)
		}
	}
}

// Stop shuts down the hub and disconnects every client.
func (h *Hub) Stop() {
	close(h.stopCh)
	h.wg.Wait()
}

// Register registers a client with the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast queues a pre-serialized snapshot for delivery to every client.
func (h *Hub) Broadcast(snapshot []byte) {
	select {
	case h.broadcast <- snapshot:
	default:
		logger.Warn().Msg("broadcast channel full, dropping snapshot")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastSnapshot(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}
