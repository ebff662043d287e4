package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
)

// ErrHubClosed is returned by Register once the hub has shut down.
var ErrHubClosed = errors.New("broadcast hub closed")

const defaultQueueSize = 64

// Conn is the write side of a client connection.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Frame is the envelope of every event written to a client.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Client represents a connected WebSocket client.
type Client struct {
	ID   string
	conn Conn
	send chan []byte
	done chan struct{}
}

// Done is closed once the client's writer has exited. The connection must
// not be reused before then.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Hub tracks connected clients and their room channels and fans frames out
// to them. Every client has its own bounded send queue drained by a writer
// goroutine, so a slow client never blocks the caller.
type Hub struct {
	clients   map[string]*Client         // clientID -> Client
	channels  map[string]map[string]bool // channel -> set of clientIDs
	queueSize int
	closed    bool
	done      chan struct{}
	writers   sync.WaitGroup
	logger    types.Logger
	mu        sync.RWMutex
}

// NewHub creates a new Hub. queueSize bounds each client's send queue.
func NewHub(queueSize int, logger types.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Hub{
		clients:   make(map[string]*Client),
		channels:  make(map[string]map[string]bool),
		queueSize: queueSize,
		done:      make(chan struct{}),
		logger:    logger,
	}
}

// Run blocks until ctx is cancelled, then closes every client connection.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.logger.Info("Hub shutting down", "clients", h.ClientCount())
	h.closeAllClients()
	close(h.done)
}

// Wait blocks until the hub has stopped and every writer has drained.
func (h *Hub) Wait() {
	<-h.done
	h.writers.Wait()
}

// closeAllClients closes all connected client connections.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.send)
		_ = client.conn.Close()
	}
	h.clients = make(map[string]*Client)
	h.channels = make(map[string]map[string]bool)
	h.closed = true
}

// Register adds a connection to the hub and starts its writer. A client
// already registered under clientID is replaced.
func (h *Hub) Register(clientID string, conn Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if old, ok := h.clients[clientID]; ok {
		h.removeLocked(old)
	}

	client := &Client{
		ID:   clientID,
		conn: conn,
		send: make(chan []byte, h.queueSize),
		done: make(chan struct{}),
	}
	h.clients[clientID] = client
	h.writers.Add(1)
	go h.writePump(client)

	h.logger.Debug("Client registered", "clientID", clientID)
	return client, nil
}

// Unregister removes a client from the hub and every channel it joined.
// Frames already queued are still written.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, ok := h.clients[clientID]; ok {
		h.removeLocked(client)
		h.logger.Debug("Client unregistered", "clientID", clientID)
	}
}

func (h *Hub) removeLocked(client *Client) {
	delete(h.clients, client.ID)
	for channel, members := range h.channels {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.channels, channel)
		}
	}
	close(client.send)
}

// writePump writes queued frames until the send queue is closed. After the
// first write error the remaining frames are discarded.
func (h *Hub) writePump(client *Client) {
	defer h.writers.Done()
	defer close(client.done)

	failed := false
	for data := range client.send {
		if failed {
			continue
		}
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Warn("Failed to send to client", "clientID", client.ID, "error", err)
			failed = true
		}
	}
}

// Subscribe adds a client to a channel. Unknown clients are ignored.
func (h *Hub) Subscribe(clientID, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[clientID]; !ok {
		return
	}
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[string]bool)
	}
	h.channels[channel][clientID] = true
}

// Unsubscribe removes a client from a channel.
func (h *Hub) Unsubscribe(clientID, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.channels[channel]; ok {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.channels, channel)
		}
	}
}

// Emit sends an event to one client.
func (h *Hub) Emit(clientID, event string, payload any) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, ok := h.clients[clientID]; ok {
		h.enqueue(client, data)
	}
}

// ToRoom sends an event to every member of channel except exceptID.
func (h *Hub) ToRoom(channel, exceptID, event string, payload any) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for clientID := range h.channels[channel] {
		if clientID == exceptID {
			continue
		}
		if client, ok := h.clients[clientID]; ok {
			h.enqueue(client, data)
		}
	}
}

// ToAll sends an event to every connected client.
func (h *Hub) ToAll(event string, payload any) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		h.enqueue(client, data)
	}
}

func (h *Hub) encode(event string, payload any) ([]byte, bool) {
	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		h.logger.Error("Failed to marshal frame", "event", event, "error", err)
		return nil, false
	}
	return data, true
}

// enqueue must be called with h.mu held.
func (h *Hub) enqueue(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.logger.Warn("Send queue full, dropping frame", "clientID", client.ID)
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ChannelSize returns the number of clients subscribed to channel.
func (h *Hub) ChannelSize(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}
