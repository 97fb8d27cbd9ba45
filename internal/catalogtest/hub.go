package catalogtest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odpi/egeria-sub150/pkg/api"
)

// keepAliveInterval is how often an idle event stream receives a comment line
const keepAliveInterval = 30 * time.Second

type subscriber struct {
	id     string
	events chan []byte
}

// hub fans out-topic events to every connected event stream
type hub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	logger      *slog.Logger
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		subscribers: make(map[*subscriber]struct{}),
		logger:      logger,
	}
}

// publish sends event to every subscriber. Slow subscribers miss events.
func (h *hub) publish(event api.AssetOwnerEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal event", "error", err)
		return
	}
	msg := []byte(fmt.Sprintf("data: %s\n\n", data))

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers {
		select {
		case sub.events <- msg:
		default:
			h.logger.Warn("Event stream is slow, skipping event", "subscriber", sub.id)
		}
	}
}

func (h *hub) subscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *hub) add(sub *subscriber) {
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("Event stream connected", "subscriber", sub.id)
}

func (h *hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.subscribers, sub)
	h.mu.Unlock()
	h.logger.Debug("Event stream disconnected", "subscriber", sub.id)
}

// ServeHTTP streams events as server-sent events until the client goes away
func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := &subscriber{
		id:     uuid.NewString(),
		events: make(chan []byte, 64),
	}
	h.add(sub)
	defer h.remove(sub)

	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-sub.events:
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
