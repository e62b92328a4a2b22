package api

import (
	"sync"

	"github.com/jmendes/bedboard/internal/ward"
	"go.uber.org/zap"
)

// subscriberBuffer is each subscriber's event backlog. A subscriber that
// falls further behind starts losing events: delivery is at-most-once and
// never blocks a mutating operation. Clients recover by re-fetching full
// state on reconnect.
const subscriberBuffer = 32

// Hub fans registry change events out to connected push subscribers. It
// implements ward.Notifier and feeds both the websocket and SSE
// endpoints.
type Hub struct {
	mu   sync.Mutex
	subs map[chan ward.Event]struct{}
	log  *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		subs: make(map[chan ward.Event]struct{}),
		log:  log,
	}
}

// Publish delivers an event to every current subscriber without
// blocking; slow subscribers drop the event.
func (h *Hub) Publish(evt ward.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
			h.log.Warn("dropping event for slow subscriber", zap.String("kind", string(evt.Kind)))
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called when the connection goes away; the channel is closed then.
func (h *Hub) Subscribe() (<-chan ward.Event, func()) {
	ch := make(chan ward.Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// eventPayload maps a registry event to its wire name and payload. Full
// records only, never diffs.
func eventPayload(evt ward.Event) (string, any) {
	switch evt.Kind {
	case ward.EventBedUpdated:
		return string(evt.Kind), evt.Bed
	case ward.EventBedRemoved:
		return string(evt.Kind), evt.BedID
	case ward.EventQueueUpdated:
		return string(evt.Kind), evt.Queue
	default:
		return string(evt.Kind), nil
	}
}
