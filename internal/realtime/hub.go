// Package realtime fans row-change events out to subscribed clients. Services
// publish after successful writes; SSE handlers subscribe per event.
package realtime

import (
	"log/slog"
	"sync"

	"speakerqueue/internal/domain"
)

// subscriberBuffer bounds the per-subscriber channel. A subscriber that
// cannot keep up loses events rather than blocking publishers; clients
// re-fetch state on reconnect, so a dropped notification is recoverable.
const subscriberBuffer = 16

type subscriber struct {
	eventID string
	ch      chan domain.ChangeEvent
}

// Hub is an in-process change feed keyed by event ID.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		logger: logger,
	}
}

// Publish delivers ev to every subscriber of its event. Never blocks.
func (h *Hub) Publish(ev domain.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[ev.EventID] {
		select {
		case sub.ch <- ev:
		default:
			h.logger.Warn("dropping change event for slow subscriber",
				"event_id", ev.EventID, "table", ev.Table)
		}
	}
}

// Subscribe registers for the change feed of one event. The returned cancel
// func unregisters and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(eventID string) (<-chan domain.ChangeEvent, func()) {
	sub := &subscriber{
		eventID: eventID,
		ch:      make(chan domain.ChangeEvent, subscriberBuffer),
	}

	h.mu.Lock()
	if h.subs[eventID] == nil {
		h.subs[eventID] = make(map[*subscriber]struct{})
	}
	h.subs[eventID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if set, ok := h.subs[eventID]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(h.subs, eventID)
				}
			}
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

var (
	_ domain.ChangePublisher  = (*Hub)(nil)
	_ domain.ChangeSubscriber = (*Hub)(nil)
)
