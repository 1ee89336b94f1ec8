package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/aewis/pkg/constants"
)

// DomainEvent is published after a tenant collection changes.
type DomainEvent struct {
	ID         string              `json:"id"`
	Type       constants.EventType `json:"type"`
	CollegeID  string              `json:"college_id"`
	OccurredAt time.Time           `json:"occurred_at"`
	Payload    map[string]string   `json:"payload,omitempty"`
}

// NewDomainEvent creates an event stamped with a new id and the current time.
func NewDomainEvent(eventType constants.EventType, collegeID string, payload map[string]string) DomainEvent {
	return DomainEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		CollegeID:  collegeID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
