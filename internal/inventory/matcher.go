package inventory

import (
	"context"

	"ticketcrm_backend/platform/logger"
)

// Store is the lookup surface the matcher needs. Satisfied by *Repository.
type Store interface {
	FindByFormID(ctx context.Context, formID string) (Record, bool, error)
	ListFormMappings(ctx context.Context) ([]FormMapping, error)
}

// Matcher resolves a Meta form id to an inventory match.
type Matcher struct {
	store Store
	log   *logger.Logger
}

// NewMatcher creates a new inventory matcher.
func NewMatcher(store Store, log *logger.Logger) *Matcher {
	return &Matcher{store: store, log: log}
}

// Lookup matches the form id against configured inventories. Lookup never
// fails lead creation: store errors and misses both return NoMatch, with
// the error logged for operators.
func (m *Matcher) Lookup(ctx context.Context, formID string) Match {
	if formID == "" {
		return NoMatch
	}

	rec, found, err := m.store.FindByFormID(ctx, formID)
	if err != nil {
		m.log.DatabaseError("inventory.FindByFormID", err)
		return NoMatch
	}
	if !found {
		m.logUnmappedFormID(ctx, formID)
		return NoMatch
	}

	return matchFromRecord(rec)
}

// logUnmappedFormID emits a diagnostic listing the inventories that do have
// form ids configured, so operators can spot the missing mapping quickly.
func (m *Matcher) logUnmappedFormID(ctx context.Context, formID string) {
	m.log.Warn("no inventory mapped to form id", "form_id", formID)

	mappings, err := m.store.ListFormMappings(ctx)
	if err != nil {
		m.log.DatabaseError("inventory.ListFormMappings", err)
		return
	}
	for _, mapping := range mappings {
		m.log.Info("configured form mapping", "event", mapping.EventName, "form_ids", mapping.FormIDs)
	}
}
