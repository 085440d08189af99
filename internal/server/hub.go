package server

import (
	"sync"

	"github.com/Jancidakis/nasa-pathfinding/internal/metrics"
	"github.com/Jancidakis/nasa-pathfinding/pkg/scene"
)

// message is what the stream sends to clients.
type message struct {
	Type  string       `json:"type"` // "frame" or "error"
	Frame *scene.Frame `json:"frame,omitempty"`
	Error string       `json:"error,omitempty"`
}

func frameMessage(f scene.Frame) message {
	return message{Type: "frame", Frame: &f}
}

// hub fans frames out to connected stream clients. A client whose buffer is
// full misses frames rather than slowing the drill down.
type hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan message
	metrics     *metrics.Registry
}

func newHub(m *metrics.Registry) *hub {
	return &hub{
		subscribers: make(map[string]chan message),
		metrics:     m,
	}
}

func (h *hub) register(id string) chan message {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.subscribers[id]; ok {
		close(old)
	}
	ch := make(chan message, 64)
	h.subscribers[id] = ch
	h.metrics.SetWebSocketClients(len(h.subscribers))
	return ch
}

func (h *hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[id]; ok {
		close(ch)
		delete(h.subscribers, id)
	}
	h.metrics.SetWebSocketClients(len(h.subscribers))
}

// sendTo delivers one message to a single client.
func (h *hub) sendTo(id string, msg message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if ch, ok := h.subscribers[id]; ok {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *hub) broadcast(f scene.Frame) {
	msg := frameMessage(f)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
