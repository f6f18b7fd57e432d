package ws

import (
	"context"
	"encoding/json"
	"sync"

	"ripple/chat-server/utils"
)

// PresenceSink receives best-effort notifications when users come online or
// go offline, e.g. to record last-seen timestamps.
type PresenceSink interface {
	MarkOnline(ctx context.Context, userID string)
	MarkOffline(ctx context.Context, userID string)
}

// Hub owns the connection registry and all connected clients. Registration
// flows through channels into a single run loop; message emission is called
// directly from request goroutines and only takes read locks.
type Hub struct {
	registry   *Registry
	clients    map[string]*Client // connectionID -> client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	presence   PresenceSink
	logger     *utils.Logger
}

// NewHub creates a hub. presence may be nil.
func NewHub(presence PresenceSink, logger *utils.Logger) *Hub {
	return &Hub{
		registry:   NewRegistry(),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		presence:   presence,
		logger:     logger,
	}
}

// Run drains the register/unregister channels until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAllClients()
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		}
	}
}

// Stop shuts the hub down and closes every connection.
func (h *Hub) Stop() {
	close(h.done)
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// OnlineUserIDs returns the current presence set.
func (h *Hub) OnlineUserIDs() []string {
	return h.registry.OnlineUserIDs()
}

// IsOnline reports whether the user has a live connection.
func (h *Hub) IsOnline(userID string) bool {
	_, ok := h.registry.Lookup(userID)
	return ok
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	h.registry.Bind(client.userID, client.id)
	h.mu.Unlock()

	h.logger.Info("client connected", "userId", client.userID, "connectionId", client.id)

	if h.presence != nil {
		go h.presence.MarkOnline(context.Background(), client.userID)
	}
	h.broadcastPresence()
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	_, known := h.clients[client.id]
	if known {
		delete(h.clients, client.id)
		close(client.send)
	}
	// Only a removal counts as a registry mutation; a connection that was
	// already superseded by a reconnect must not knock the user offline.
	removed := false
	if known {
		removed = h.registry.Unbind(client.id)
	}
	h.mu.Unlock()

	if !known {
		return
	}

	h.logger.Info("client disconnected", "userId", client.userID, "connectionId", client.id)

	if removed {
		if h.presence != nil {
			go h.presence.MarkOffline(context.Background(), client.userID)
		}
		h.broadcastPresence()
	}
}

// broadcastPresence pushes the full current presence set to every connected
// client. Always the complete snapshot, never a delta.
func (h *Hub) broadcastPresence() {
	payload, err := json.Marshal(Event{Event: EventOnlineUsers, Data: h.registry.OnlineUserIDs()})
	if err != nil {
		h.logger.Error("failed to marshal presence snapshot", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		h.send(client, payload)
	}
}

// EmitToUser pushes an event to the user's current connection, if any.
// Delivery is best-effort and at-most-once: offline users and send failures
// are silently skipped, the payload is already durable upstream.
func (h *Hub) EmitToUser(userID string, event string, data any) {
	payload, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		h.logger.Error("failed to marshal event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	h.emitLocked(userID, payload)
}

// EmitToUsers pushes the same event to each listed user that is online.
func (h *Hub) EmitToUsers(userIDs []string, event string, data any) {
	payload, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		h.logger.Error("failed to marshal event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, userID := range userIDs {
		h.emitLocked(userID, payload)
	}
}

func (h *Hub) emitLocked(userID string, payload []byte) {
	connID, ok := h.registry.Lookup(userID)
	if !ok {
		return
	}
	client, ok := h.clients[connID]
	if !ok {
		return
	}
	h.send(client, payload)
}

// send enqueues without blocking; a client whose buffer is full drops the
// message rather than stalling the caller.
func (h *Hub) send(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.logger.Warn("dropping event for slow client", "userId", client.userID, "connectionId", client.id)
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		close(client.send)
		_ = client.conn.Close()
		delete(h.clients, id)
		h.registry.Unbind(id)
	}
}
