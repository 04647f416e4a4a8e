package transport

import (
	"sync"

	"github.com/google/uuid"
)

// subscription represents a registered listener.
type subscription struct {
	id       string
	listener Listener
}

// Hub manages listener subscriptions for a transport and dispatches events
// to them in subscription order.
type Hub struct {
	mu            sync.RWMutex
	subscriptions []*subscription
}

// NewHub creates a new hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe adds a listener and returns its subscription handle.
func (h *Hub) Subscribe(l Listener) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.New().String()
	h.subscriptions = append(h.subscriptions, &subscription{
		id:       id,
		listener: l,
	})
	return &Subscription{hub: h, id: id}
}

// unsubscribe removes a subscription by id.
func (h *Hub) unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, s := range h.subscriptions {
		if s.id == id {
			h.subscriptions = append(h.subscriptions[:i], h.subscriptions[i+1:]...)
			return
		}
	}
}

// Dispatch delivers an event to every listener.
// Listeners may subscribe or unsubscribe while being dispatched to.
func (h *Hub) Dispatch(e Event) {
	h.mu.RLock()
	// Copy subscriptions to avoid holding lock during callbacks
	subs := make([]*subscription, len(h.subscriptions))
	copy(subs, h.subscriptions)
	h.mu.RUnlock()

	for _, s := range subs {
		s.listener(e)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions)
}

// Close removes all subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscriptions = nil
}

// Subscription is a handle to a registered listener.
type Subscription struct {
	hub  *Hub
	id   string
	once sync.Once
}

// ID returns the subscription id.
func (s *Subscription) ID() string {
	return s.id
}

// Unsubscribe removes the listener. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.id)
	})
}
