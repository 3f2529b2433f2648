package telemetry

import (
	"sync"
	"time"
)

// EventType identifies the kind of navigation event.
type EventType string

const (
	EventFocusChanged    EventType = "focus.changed"
	EventDirectionFired  EventType = "direction.fired"
	EventTrapPushed      EventType = "trap.pushed"
	EventTrapReleased    EventType = "trap.released"
	EventGamepadAttached EventType = "gamepad.attached"
	EventGamepadDetached EventType = "gamepad.detached"
)

// Event describes a navigation change that UIs and remote clients can
// consume.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	From      string         `json:"from,omitempty"`
	To        string         `json:"to,omitempty"`
	Direction string         `json:"direction,omitempty"`
	Source    string         `json:"source,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// DefaultSubscriberBuffer is the channel size given to each subscriber.
const DefaultSubscriberBuffer = 64

// Hub fans events out to any number of subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	buffer      int
	closed      bool
}

// NewHub constructs a hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[chan Event]struct{}), buffer: DefaultSubscriberBuffer}
}

// Publish notifies all subscribers of an event. Non-blocking; drops if buffer full.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			// Drop if subscriber can't keep up; the UI loop must not block.
		}
	}
}

// Subscribe returns a channel that will receive future events and a cleanup func.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		empty := make(chan Event)
		close(empty)
		return empty, func() {}
	}
	ch := make(chan Event, h.buffer)
	h.subscribers[ch] = struct{}{}
	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
	}
	return ch, unsubscribe
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close unsubscribes all listeners and prevents future publications.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, ch)
	}
}
