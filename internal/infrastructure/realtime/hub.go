package realtime

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

// Hub is the in-process Broadcaster used when no Redis is configured.
// It only reaches subscribers connected to this instance.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[chan Event]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[chan Event]struct{})}
}

func (h *Hub) Publish(_ context.Context, userID string, ev Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.rooms[room(userID)] {
		select {
		case ch <- ev:
		default:
			// subscriber is not keeping up; drop rather than block the publisher
		}
	}
	return nil
}

func (h *Hub) Subscribe(_ context.Context, userID string) (<-chan Event, func(), error) {
	ch := make(chan Event, subscriberBuffer)
	r := room(userID)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}, nil
	}
	if h.rooms[r] == nil {
		h.rooms[r] = make(map[chan Event]struct{})
	}
	h.rooms[r][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.rooms[r][ch]; !ok {
				return
			}
			delete(h.rooms[r], ch)
			if len(h.rooms[r]) == 0 {
				delete(h.rooms, r)
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}

// Close ends every open subscription.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for r, subs := range h.rooms {
		for ch := range subs {
			close(ch)
		}
		delete(h.rooms, r)
	}
	h.closed = true
	return nil
}
