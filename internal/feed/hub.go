// Package feed serves stats samples to display clients over HTTP and
// WebSocket. Connected clients keep the island visible.
package feed

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notchkit/island/internal/models"
)

// Source publishes samples.
type Source interface {
	Subscribe() (<-chan models.StatsSample, func())
	Latest() (models.StatsSample, bool)
}

// Visibility counts holders of the island. Each connected client holds it
// once; the implementation hides the island only when no holder is left,
// so other holders such as the console are unaffected by clients leaving.
type Visibility interface {
	Acquire()
	Release()
}

type clientInfo struct {
	remote    string
	connected time.Time
}

// Hub tracks connected display clients.
type Hub struct {
	vis    Visibility
	logger *zap.Logger

	mu      sync.Mutex
	clients map[string]clientInfo
}

// NewHub creates a hub toggling vis as clients come and go. vis may be nil.
func NewHub(vis Visibility, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		vis:     vis,
		logger:  logger,
		clients: make(map[string]clientInfo),
	}
}

// Join registers a client, takes a hold on the island for it and returns
// the client id.
func (h *Hub) Join(remote string) string {
	id := uuid.NewString()

	h.mu.Lock()
	h.clients[id] = clientInfo{remote: remote, connected: time.Now()}
	h.mu.Unlock()

	h.logger.Info("Display client connected",
		zap.String("client", id),
		zap.String("remote", remote))
	if h.vis != nil {
		h.vis.Acquire()
	}
	return id
}

// Leave removes a client and releases its hold. Unknown ids are ignored, so
// each Join is released at most once.
func (h *Hub) Leave(id string) {
	h.mu.Lock()
	info, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()

	if !ok {
		return
	}
	h.logger.Info("Display client disconnected",
		zap.String("client", id),
		zap.Duration("session", time.Since(info.connected)))
	if h.vis != nil {
		h.vis.Release()
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
