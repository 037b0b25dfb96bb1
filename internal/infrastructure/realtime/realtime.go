// Package realtime fans events out to the browser sessions of one user.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	EventReferralUpdate = "referral:update"
	EventWalletUpdate   = "wallet:update"
)

// Event is one message on a user's stream. Data is already JSON-encoded.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

func NewEvent(name string, v interface{}) (Event, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s event: %w", name, err)
	}
	return Event{Name: name, Data: b}, nil
}

// Broadcaster delivers events to every live subscription of a user.
// Delivery is best effort: slow or absent subscribers miss events.
type Broadcaster interface {
	Publish(ctx context.Context, userID string, ev Event) error
	// Subscribe returns the event stream and a cancel func that must be called
	// once the consumer is done.
	Subscribe(ctx context.Context, userID string) (<-chan Event, func(), error)
	Close() error
}

func room(userID string) string { return "user:" + userID }
