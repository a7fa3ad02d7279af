package sse

import (
	"sync"
	"sync/atomic"
)

// Event is one message pushed to a connected client.
type Event struct {
	ID          uint64
	RecipientID string
	Event       string
	Data        interface{}
}

// Hub fans events out to the open streams of each employee.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	nextID      atomic.Uint64
	closed      bool
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a stream for an employee. The returned cleanup must be
// called once the stream ends; it is safe to call after Shutdown.
func (h *Hub) Subscribe(recipientID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	if h.subscribers[recipientID] == nil {
		h.subscribers[recipientID] = make(map[chan Event]struct{})
	}
	h.subscribers[recipientID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subscribers[recipientID][ch]; !ok {
				return
			}
			delete(h.subscribers[recipientID], ch)
			close(ch)
			if len(h.subscribers[recipientID]) == 0 {
				delete(h.subscribers, recipientID)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to every open stream of one employee.
// Slow streams drop events rather than block the publisher.
func (h *Hub) Publish(recipientID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.RecipientID = recipientID
	event.ID = h.nextID.Add(1)
	for ch := range h.subscribers[recipientID] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) PublishToMany(recipientIDs []string, event Event) {
	for _, id := range recipientIDs {
		h.Publish(id, event)
	}
}

func (h *Hub) SubscriberCount(recipientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[recipientID])
}

func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}

// Shutdown closes every stream so handlers return during server shutdown.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, subs := range h.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(h.subscribers, id)
	}
}
