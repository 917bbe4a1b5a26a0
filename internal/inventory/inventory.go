// Package inventory maps Meta lead-form identifiers to ticket inventory
// records. A missing mapping is never fatal to lead creation.
package inventory

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Category is one ticket category configured on an inventory record.
type Category struct {
	Name string `json:"name"`
}

// Record is a ticket inventory item as stored in the database.
type Record struct {
	ID        uuid.UUID
	EventName string
	FormIDs   []string
	// Categories is the structured multi-category configuration.
	Categories []Category
	// LegacyCategory is the single-category field kept from older records.
	LegacyCategory string
}

// Match is the result of looking up an event's form id.
type Match struct {
	Matched      bool
	InventoryID  *uuid.UUID
	EventName    string
	CategoryName *string
}

// NoMatch is the zero result for events whose form id is unmapped.
var NoMatch = Match{}

// matchFromRecord derives the lead-facing match from an inventory record:
// the first structured category wins, then the legacy single-category field.
func matchFromRecord(rec Record) Match {
	id := rec.ID
	m := Match{
		Matched:     true,
		InventoryID: &id,
		EventName:   rec.EventName,
	}
	if len(rec.Categories) > 0 && rec.Categories[0].Name != "" {
		name := rec.Categories[0].Name
		m.CategoryName = &name
		return m
	}
	if rec.LegacyCategory != "" {
		legacy := rec.LegacyCategory
		m.CategoryName = &legacy
	}
	return m
}

// decodeCategories parses the categories JSONB column. A null or malformed
// value degrades to no categories rather than failing the lookup.
func decodeCategories(raw []byte) []Category {
	if len(raw) == 0 {
		return nil
	}
	var cats []Category
	if err := json.Unmarshal(raw, &cats); err != nil {
		return nil
	}
	return cats
}
