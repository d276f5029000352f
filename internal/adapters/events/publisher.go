// Package events publishes session lifecycle events to the bus.
// Publishing is best effort; the funnel never blocks on a broker.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Envelope is the wire shape for lifecycle events.
type Envelope struct {
	EventType  string    `json:"event_type"`
	LinkID     string    `json:"link_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

func marshalEnvelope(eventType, linkID string, payload any, now time.Time) ([]byte, error) {
	return json.Marshal(Envelope{
		EventType:  eventType,
		LinkID:     linkID,
		OccurredAt: now,
		Payload:    payload,
	})
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (*NoopPublisher) Publish(context.Context, string, string, any) error { return nil }

func (*NoopPublisher) Close() error { return nil }
