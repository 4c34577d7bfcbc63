// Package broadcast fans session events out to live observers: websocket
// clients in this process and, optionally, other processes through redis.
package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const subscriberBuffer = 64

// AllSessions subscribes to every session.
const AllSessions = "*"

// Event is one observer notification.
type Event struct {
	Session   string    `json:"session"`
	Kind      string    `json:"event"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher accepts events. Implementations never block the caller.
type Publisher interface {
	Publish(evt Event)
}

// Hub is an in-memory pub/sub keyed by session id.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan Event
	log         zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[string]chan Event),
		log:         log.With().Str("component", "broadcast").Logger(),
	}
}

// Subscribe registers for events of sessionID (or AllSessions). The
// subscription ends when ctx is cancelled.
func (h *Hub) Subscribe(ctx context.Context, sessionID string) <-chan Event {
	subID := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if _, ok := h.subscribers[sessionID]; !ok {
		h.subscribers[sessionID] = make(map[string]chan Event)
	}
	h.subscribers[sessionID][subID] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.unsubscribe(sessionID, subID)
	}()
	return ch
}

// Publish delivers evt to subscribers of its session and of AllSessions.
// Slow subscribers miss events.
func (h *Hub) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	h.mu.RLock()
	var targets []chan Event
	for _, key := range []string{evt.Session, AllSessions} {
		for _, ch := range h.subscribers[key] {
			targets = append(targets, ch)
		}
	}
	h.mu.RUnlock()

	for _, ch := range targets {
		select {
		case ch <- evt:
		default:
			h.log.Debug().Str("session", evt.Session).Str("event", evt.Kind).Msg("dropped event for slow subscriber")
		}
	}
}

func (h *Hub) unsubscribe(sessionID, subID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[sessionID]
	if !ok {
		return
	}
	if ch, ok := subs[subID]; ok {
		delete(subs, subID)
		close(ch)
	}
	if len(subs) == 0 {
		delete(h.subscribers, sessionID)
	}
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, subs := range h.subscribers {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(h.subscribers, key)
	}
}

// Multi publishes to several publishers in order.
type Multi []Publisher

func (m Multi) Publish(evt Event) {
	for _, p := range m {
		p.Publish(evt)
	}
}
