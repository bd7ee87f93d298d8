// Package events implements the durable outbound analytics buffer: a
// crash-safe FIFO of pre-serialized events with batch delivery, failure
// classification, and exponential backoff.
package events

import "github.com/google/uuid"

// Event names emitted by the SDK itself.
const (
	EventGameOpened       = "ps_sdk.game_opened"
	EventGameClosed       = "ps_sdk.game_closed"
	EventStoreOpened      = "ps_sdk.store_opened"
	EventStoreClosed      = "ps_sdk.store_closed"
	EventPlayerIdentified = "ps_sdk.player_identified"
)

// Event is one queued analytics event. InsertID is generated fresh at
// enqueue time and doubles as the backend deduplication key and the
// queue's removal-by-identity key. PayloadJSON is the full event object
// ({"event_name": ..., "properties": {...}}) serialized at enqueue time.
type Event struct {
	EventName         string `json:"eventName"`
	OriginalTimestamp int64  `json:"originalTimestamp"`
	InsertID          string `json:"insertId"`
	PayloadJSON       string `json:"payloadJson"`
}

func newEvent(name string, timestamp int64, payloadJSON string) Event {
	return Event{
		EventName:         name,
		OriginalTimestamp: timestamp,
		InsertID:          uuid.NewString(),
		PayloadJSON:       payloadJSON,
	}
}

// approxSize estimates the event's share of the queue byte ceiling.
func (e Event) approxSize() int {
	return len(e.EventName) + len(e.PayloadJSON) + len(e.InsertID) + 8
}

// queueFile is the persisted shape of the queue.
type queueFile struct {
	Events []Event `json:"events"`
}
