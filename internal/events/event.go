package events

import (
	platformevents "ticketcrm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export the platform event primitives so modules only import this package.
type (
	Event       = platformevents.Event
	BaseEvent   = platformevents.BaseEvent
	Bus         = platformevents.Bus
	Handler     = platformevents.Handler
	HandlerFunc = platformevents.HandlerFunc
)

// NewBaseEvent creates a new base event with the current timestamp.
func NewBaseEvent() BaseEvent {
	return platformevents.NewBaseEvent()
}

// LeadCreatedName identifies the LeadCreated event type.
const LeadCreatedName = "lead.created"

// LeadCreated is published after a webhook lead has been persisted.
type LeadCreated struct {
	BaseEvent
	LeadID          uuid.UUID
	ExternalEventID string
	LeadName        string
	Channel         string
	TicketEventName string
	CategoryName    string
	AssignedTo      string
	AutoAssigned    bool
}

// EventName returns the event type identifier.
func (LeadCreated) EventName() string { return LeadCreatedName }
