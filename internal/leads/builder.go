package leads

import (
	"errors"
	"strings"
	"time"

	"ticketcrm_backend/internal/attribution"
	"ticketcrm_backend/internal/inventory"
	"ticketcrm_backend/platform/phone"

	"github.com/google/uuid"
)

// ErrIncompleteLeadData is returned when the source event carries no
// identifying contact field at all. Such events are dropped, never
// ingested with a blank identity.
var ErrIncompleteLeadData = errors.New("lead event has no name, email or phone")

const defaultCountry = "India"

// Source holds the contact and interest fields extracted from a verified,
// deduplicated webhook event.
type Source struct {
	ExternalEventID string
	Name            string
	Email           string
	Phone           string
	Company         string
	City            string
	Country         string
	EventInterest   string
	PartySize       string
	Notes           string
}

// Build assembles the canonical Lead from the pipeline stage outputs.
// It is pure apart from id generation and the creation timestamp: no
// network or storage calls. The caller persists the result.
func Build(src Source, attr attribution.Result, match inventory.Match) (Lead, error) {
	name := strings.TrimSpace(src.Name)
	email := strings.TrimSpace(src.Email)
	phoneRaw := strings.TrimSpace(src.Phone)

	if name == "" && email == "" && phoneRaw == "" {
		return Lead{}, ErrIncompleteLeadData
	}

	country := strings.TrimSpace(src.Country)
	if country == "" {
		country = defaultCountry
	}

	eventName := match.EventName
	eventInterest := src.EventInterest
	if match.Matched {
		// The inventory record is authoritative for the event name.
		eventInterest = match.EventName
	}

	partySize := strings.TrimSpace(src.PartySize)
	if partySize == "" {
		partySize = "1"
	}

	return Lead{
		ID:                uuid.New(),
		ExternalEventID:   src.ExternalEventID,
		Name:              name,
		Email:             email,
		Phone:             phone.NormalizeE164(phoneRaw),
		Company:           strings.TrimSpace(src.Company),
		City:              strings.TrimSpace(src.City),
		Country:           country,
		EventInterest:     eventInterest,
		PartySize:         partySize,
		Notes:             strings.TrimSpace(src.Notes),
		Channel:           attr.Channel,
		AttributionMethod: attr.Method,
		InventoryID:       match.InventoryID,
		EventName:         eventName,
		CategoryName:      match.CategoryName,
		Status:            StatusUnassigned,
		Source:            string(attr.Channel),
		CreatedAt:         time.Now().UTC(),
	}, nil
}
