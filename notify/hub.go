package notify

import (
	"sync"

	"go-storefront/metrics"
)

// Subscription receives the events published to one user's topic
type Subscription struct {
	userID string
	ch     chan StatusChange
	hub    *Hub
	once   sync.Once
}

// Events returns the channel events arrive on. It is closed by Close.
func (s *Subscription) Events() <-chan StatusChange {
	return s.ch
}

// UserID returns the topic this subscription listens to
func (s *Subscription) UserID() string {
	return s.userID
}

// Close unsubscribes and closes the events channel. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.ch)
	})
}

// Hub is an in-process broadcaster with one topic per user id
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	buffer int
}

// NewHub creates a hub; buffer is the per-subscriber channel capacity
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		topics: make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe attaches a new subscriber to userID's topic
func (h *Hub) Subscribe(userID string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscription{userID: userID, ch: make(chan StatusChange, h.buffer), hub: h}
	subs, ok := h.topics[userID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[userID] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.topics[sub.userID]
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.topics, sub.userID)
	}
}

// Publish delivers evt to every subscriber of evt.UserID without blocking and
// returns how many received it.
func (h *Hub) Publish(evt StatusChange) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs := h.topics[evt.UserID]
	if len(subs) == 0 {
		metrics.NotificationsDroppedTotal.WithLabelValues("no_subscriber").Inc()
		return 0
	}

	delivered := 0
	for sub := range subs {
		select {
		case sub.ch <- evt:
			delivered++
		default:
			metrics.NotificationsDroppedTotal.WithLabelValues("buffer_full").Inc()
		}
	}
	return delivered
}

// SubscriberCount returns the number of live subscribers for userID
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[userID])
}
