// Package notify fans pass lifecycle events out to connected subscribers.
// Delivery is best-effort and at-most-once per push: a full subscriber buffer
// drops the event rather than blocking the publisher. Correctness never
// depends on a push arriving; clients reconcile by re-fetching pass records.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindCreated Kind = "created"
	KindDecided Kind = "decided"
	KindExited  Kind = "exited"
	KindEntered Kind = "entered"
)

type Origin string

const (
	OriginRequester Origin = "requester"
	OriginApprover  Origin = "approver"
	OriginVerifier  Origin = "verifier"
)

// Event carries enough identity that a receiver can decide relevance without
// a round trip: which pass, whose pass, who caused the change.
type Event struct {
	PassID  string    `json:"pass_id"`
	OwnerID string    `json:"owner_id"`
	Origin  Origin    `json:"origin"`
	Kind    Kind      `json:"kind"`
	Status  string    `json:"status"`
	At      time.Time `json:"at"`
}

// Filter decides whether a subscriber receives an event.
type Filter func(Event) bool

const subscriberBuffer = 16

type subscriber struct {
	ch     chan Event
	filter Filter
}

type Hub struct {
	mu   sync.RWMutex
	subs map[string]*subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]*subscriber)}
}

// Subscribe registers interest. The returned cancel func must be called when
// the receiver goes away; it closes the event channel.
func (h *Hub) Subscribe(filter Filter) (<-chan Event, func()) {
	id := uuid.NewString()
	sub := &subscriber{
		ch:     make(chan Event, subscriberBuffer),
		filter: filter,
	}

	h.mu.Lock()
	h.subs[id] = sub
	total := len(h.subs)
	h.mu.Unlock()

	slog.Debug("Subscriber registered", "subscriber_id", id, "total_subscribers", total)

	cancel := func() {
		h.mu.Lock()
		if s, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(s.ch)
		}
		h.mu.Unlock()
	}
	return sub.ch, cancel
}

// Publish delivers ev to every matching subscriber without ever blocking the
// caller. A slow subscriber misses the event and is expected to reconcile on
// its next pull.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, sub := range h.subs {
		if sub.filter != nil && !sub.filter(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			slog.Debug("Subscriber buffer full, dropping event",
				"subscriber_id", id,
				"pass_id", ev.PassID,
				"kind", ev.Kind)
		}
	}
}

// Stop closes every subscriber channel. Used on shutdown.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}

// SubscriberCount reports the number of registered subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
