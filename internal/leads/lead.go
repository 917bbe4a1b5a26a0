// Package leads defines the canonical Lead entity, its builder and its
// persistence repository. A Lead is created exactly once per external
// webhook event and is never mutated by this pipeline afterwards; the
// downstream CRM owns all later lifecycle changes.
package leads

import (
	"time"

	"ticketcrm_backend/internal/attribution"

	"github.com/google/uuid"
)

// StatusUnassigned is the initial status of every webhook-created lead.
const StatusUnassigned = "unassigned"

// Lead is the canonical lead record produced by the ingestion pipeline.
type Lead struct {
	ID              uuid.UUID
	ExternalEventID string

	// Contact identity (at least one of Name/Email/Phone is guaranteed).
	Name    string
	Email   string
	Phone   string
	Company string
	City    string
	Country string

	// Event interest captured from the lead form.
	EventInterest string
	PartySize     string
	Notes         string

	// Channel attribution outcome.
	Channel           attribution.Channel
	AttributionMethod attribution.Method

	// Inventory match outcome (nil when the form id was unmapped).
	InventoryID  *uuid.UUID
	EventName    string
	CategoryName *string

	// Assignment outcome.
	AssignedTo       *string
	AssignmentRuleID *uuid.UUID
	AssignmentReason *string
	AutoAssigned     bool

	Status    string
	Source    string
	CreatedAt time.Time
}
