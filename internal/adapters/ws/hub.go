// Package ws is the websocket transport: a hub fanning notices out to
// per-connection outboxes and the handler bridging sockets to the session.
package ws

import (
	"context"
	"sync"

	"github.com/okian/keyrace/internal/domain/model"
	"github.com/okian/keyrace/pkg/logger"
	"github.com/okian/keyrace/pkg/metrics"
)

const defaultOutboxSize = 32

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithOutboxSize sets how many notices may wait for a slow client before it
// is dropped.
func WithOutboxSize(size int) HubOption {
	return func(h *Hub) {
		if size > 0 {
			h.outboxSize = size
		}
	}
}

// WithHubLogger sets a custom logger for the hub.
func WithHubLogger(l logger.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// Hub tracks open connections. Sends never block: a client whose outbox is
// full is dropped and its outbox closed.
type Hub struct {
	mu         sync.Mutex
	outboxes   map[string]chan model.Notice
	outboxSize int
	logger     logger.Logger
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		outboxes:   make(map[string]chan model.Notice),
		outboxSize: defaultOutboxSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("hub")
	}
	return h
}

// Register opens an outbox for connID. The channel is closed on Unregister,
// on Close or when the client is dropped.
func (h *Hub) Register(connID string) <-chan model.Notice {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.outboxes[connID]; ok {
		close(prev)
	}
	out := make(chan model.Notice, h.outboxSize)
	h.outboxes[connID] = out
	metrics.UpdateConnections(len(h.outboxes))
	return out
}

// Unregister closes the outbox of connID. Unknown ids are ignored.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(connID)
}

func (h *Hub) remove(connID string) {
	out, ok := h.outboxes[connID]
	if !ok {
		return
	}
	close(out)
	delete(h.outboxes, connID)
	metrics.UpdateConnections(len(h.outboxes))
}

// Broadcast queues n for every connection.
func (h *Hub) Broadcast(ctx context.Context, n model.Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, out := range h.outboxes {
		h.deliver(ctx, id, out, n)
	}
}

// Send queues n for one connection.
func (h *Hub) Send(ctx context.Context, connID string, n model.Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if out, ok := h.outboxes[connID]; ok {
		h.deliver(ctx, connID, out, n)
	}
}

func (h *Hub) deliver(ctx context.Context, connID string, out chan model.Notice, n model.Notice) {
	select {
	case out <- n:
	default:
		h.logger.Warn(ctx, "dropping slow client", logger.ConnID(connID), logger.String("notice", n.Type))
		metrics.RecordDroppedClient()
		h.remove(connID)
	}
}

// Len returns the number of open connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.outboxes)
}

// Close closes every outbox.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.outboxes {
		h.remove(id)
	}
}
