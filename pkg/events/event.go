package events

import (
	"time"

	"ai-mailroom-be/internal/entity"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ORDER_OUTCOME").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeOrderOutcome = "ORDER_OUTCOME"
	TypeIndexRebuilt = "INDEX_REBUILT"
)

// NewOrderOutcomeEvent wraps one OrderOutcome for downstream fulfillment.
func NewOrderOutcomeEvent(outcome *entity.OrderOutcome) Event {
	return BaseEvent{
		Type: TypeOrderOutcome,
		Data: map[string]interface{}{
			"email_id":   outcome.EmailId,
			"product_id": outcome.ProductId,
			"quantity":   outcome.Quantity,
			"status":     string(outcome.Status),
		},
		OccurredAt: outcome.CreatedAt,
	}
}

// NewIndexRebuiltEvent announces that a new catalog index snapshot is live.
func NewIndexRebuiltEvent(entryCount, gapCount int) Event {
	return BaseEvent{
		Type: TypeIndexRebuilt,
		Data: map[string]interface{}{
			"entries": entryCount,
			"gaps":    gapCount,
		},
		OccurredAt: time.Now(),
	}
}
