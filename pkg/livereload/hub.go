// Package livereload pushes change notifications to connected browsers
// over Server-Sent Events.
//
// Clients subscribe to the reload endpoint under the reserved operational
// prefix; the file watcher broadcasts into the hub whenever content under
// the root settles after a change.
package livereload

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// Hub fans change notifications out to connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[chan string]struct{}
	closed  bool

	// onCountChange, when set, is invoked with the client count after
	// every connect and disconnect.
	onCountChange func(int)

	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[chan string]struct{}),
		logger:  slog.Default().With("component", "livereload"),
	}
}

// OnClientCountChange registers a callback observing the connected client
// count. Used to keep the reload client gauge current.
func (h *Hub) OnClientCountChange(fn func(int)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCountChange = fn
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast notifies every connected client that path changed. Slow
// clients that cannot keep up are skipped rather than blocking the
// watcher.
func (h *Hub) Broadcast(path string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.clients {
		select {
		case ch <- path:
		default:
		}
	}

	h.logger.Debug("broadcast change notification",
		"path", path,
		"clients", len(h.clients),
	)
}

// register adds a client channel and returns it.
func (h *Hub) register() chan string {
	ch := make(chan string, 8)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch
	}
	h.clients[ch] = struct{}{}
	count := len(h.clients)
	fn := h.onCountChange
	h.mu.Unlock()

	if fn != nil {
		fn(count)
	}
	return ch
}

// unregister removes a client channel.
func (h *Hub) unregister(ch chan string) {
	h.mu.Lock()
	delete(h.clients, ch)
	count := len(h.clients)
	fn := h.onCountChange
	h.mu.Unlock()

	if fn != nil {
		fn(count)
	}
}

// Close disconnects all clients. New subscriptions are refused afterward.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.clients {
		close(ch)
		delete(h.clients, ch)
	}
}

// Handler returns the SSE subscription endpoint. It streams one "reload"
// event per settled content change until the client disconnects.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		// Confirm the subscription so clients can detect a working stream.
		fmt.Fprint(w, "event: connected\ndata: ok\n\n")
		flusher.Flush()

		ch := h.register()
		defer h.unregister(ch)

		for {
			select {
			case <-r.Context().Done():
				return
			case path, ok := <-ch:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: reload\ndata: %s\n\n", path)
				flusher.Flush()
			}
		}
	}
}
