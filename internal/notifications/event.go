// Package notifications provides the change feed and real-time delivery to clients.
package notifications

import (
	"context"
	"encoding/json"
)

// FeedChannel is the single channel carrying row-level change events for
// every relevant table. Subscribers treat any event as "feed changed".
const FeedChannel = "feed:changes"

// Change operations.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Event describes one row-level write. Subscribers re-aggregate the whole
// feed on any event, so the payload exists for logging and client display,
// not for incremental patching.
type Event struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	ID    string `json:"id"`
}

// Encode marshals the event for the wire.
func (e Event) Encode() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// DecodeEvent parses an event payload; malformed payloads yield a zero Event
// since subscribers do not inspect the contents anyway.
func DecodeEvent(payload string) Event {
	var e Event
	_ = json.Unmarshal([]byte(payload), &e)
	return e
}

// Publisher emits change events after successful mutations.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// ChangeFeed is a push channel of row-level change events. Subscribe
// returns an unsubscribe function; failing to call it leaks the underlying
// connection.
type ChangeFeed interface {
	Subscribe(ctx context.Context, onEvent func(Event)) (func(), error)
}
