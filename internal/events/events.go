package events

import (
	"context"
	"time"
)

const TypeAssessmentCreated = "assessment.created"

// Event is the envelope published to downstream consumers.
type Event struct {
	Type       string    `json:"type"`
	OwnerID    string    `json:"ownerId"`
	RequestID  string    `json:"requestId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
