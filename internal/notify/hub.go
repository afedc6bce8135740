package notify

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// queueSize bounds each subscriber's delivery queue. At household scale the
// queue never fills in practice; if it does, Publish evicts the oldest
// queued event so the newest state wins.
const queueSize = 16

// Subscriber is one delivery channel registered with the Hub. The id ties
// log lines from the hub and the feed session together.
type Subscriber struct {
	ID          string
	HouseholdID int64
	ch          chan Event
}

// Events returns the subscriber's delivery channel. The channel is closed by
// Unsubscribe; receivers must treat a closed channel as end-of-stream.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Hub maintains, per household, the set of subscribed delivery channels and
// broadcasts events to them. It is an explicitly owned singleton: created
// empty at startup and injected into handlers and sessions.
type Hub struct {
	mu         sync.RWMutex
	households map[int64]map[*Subscriber]struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		households: make(map[int64]map[*Subscriber]struct{}),
		logger:     logger,
	}
}

// Subscribe registers a new delivery channel for the household.
func (h *Hub) Subscribe(householdID int64) *Subscriber {
	sub := &Subscriber{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		ch:          make(chan Event, queueSize),
	}

	h.mu.Lock()
	subs, ok := h.households[householdID]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.households[householdID] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("subscribed", "subscriber", sub.ID, "household", householdID)
	return sub
}

// Unsubscribe removes the channel and closes it. The last unsubscribe for a
// household drops the household's entry entirely. Safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	subs, ok := h.households[sub.HouseholdID]
	if ok {
		if _, registered := subs[sub]; registered {
			delete(subs, sub)
			close(sub.ch)
			if len(subs) == 0 {
				delete(h.households, sub.HouseholdID)
			}
		}
	}
	h.mu.Unlock()

	h.logger.Debug("unsubscribed", "subscriber", sub.ID, "household", sub.HouseholdID)
}

// Publish delivers the event to every channel currently subscribed for the
// household. Each channel receives events in publish order; a slow channel
// loses its oldest queued event rather than blocking the publisher. With no
// subscribers the event is dropped.
//
// Publish never fails: a bad subscriber is that subscriber's problem, not
// the mutating caller's.
func (h *Hub) Publish(householdID int64, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.households[householdID] {
		select {
		case sub.ch <- event:
		default:
			// Queue full — evict the oldest event and retry once.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- event:
			default:
			}
			h.logger.Warn("subscriber queue overflow", "subscriber", sub.ID, "household", householdID)
		}
	}
}

// Count returns the number of subscribers for a household.
func (h *Hub) Count(householdID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.households[householdID])
}
