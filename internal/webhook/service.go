package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ticketcrm_backend/internal/assignment"
	"ticketcrm_backend/internal/attribution"
	"ticketcrm_backend/internal/events"
	"ticketcrm_backend/internal/inventory"
	"ticketcrm_backend/internal/leads"
	"ticketcrm_backend/platform/logger"

	"github.com/google/uuid"
)

// Outcome is the terminal state of processing one leadgen event.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeDropped   Outcome = "dropped"
)

// Result reports what happened to one leadgen event.
type Result struct {
	Outcome Outcome
	LeadID  *uuid.UUID
}

// DedupStore claims, releases and annotates webhook event rows. Satisfied
// by *Repository.
type DedupStore interface {
	ClaimEvent(ctx context.Context, externalEventID, pageID, formID string, payload []byte) (bool, error)
	ReleaseEvent(ctx context.Context, externalEventID string) error
	MarkProcessed(ctx context.Context, externalEventID string, leadID uuid.UUID) error
	MarkDropped(ctx context.Context, externalEventID, reason string) error
}

// InventoryMatcher resolves a form id to a ticket inventory match.
type InventoryMatcher interface {
	Lookup(ctx context.Context, formID string) inventory.Match
}

// AssignmentEngine selects an owner for a new lead.
type AssignmentEngine interface {
	Evaluate(ctx context.Context, lead leads.Lead) (assignment.Decision, error)
}

// LeadStore persists canonical leads. Satisfied by *leads.Repository.
type LeadStore interface {
	Create(ctx context.Context, lead leads.Lead) error
}

// Service runs the ingestion pipeline for verified leadgen events. Stages
// run in a fixed order and each returns a result the next stage consumes;
// only the dedup claim and the final persistence can fail the event.
type Service struct {
	dedup    DedupStore
	matcher  InventoryMatcher
	engine   AssignmentEngine
	leadRepo LeadStore
	bus      events.Bus
	log      *logger.Logger
}

// NewService creates a new webhook ingestion service.
func NewService(dedup DedupStore, matcher InventoryMatcher, engine AssignmentEngine, leadRepo LeadStore, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		dedup:    dedup,
		matcher:  matcher,
		engine:   engine,
		leadRepo: leadRepo,
		bus:      bus,
		log:      log,
	}
}

// ProcessLeadgenEvent ingests one verified leadgen change value. The raw
// bytes are retained on the event row for audit. An error return means the
// event was not durably handled and the platform should retry (5xx).
func (s *Service) ProcessLeadgenEvent(ctx context.Context, value LeadgenValue, raw []byte) (Result, error) {
	if value.LeadgenID == "" {
		s.log.Warn("leadgen event without leadgen_id, dropping", "page_id", value.PageID, "form_id", value.FormID)
		return Result{Outcome: OutcomeDropped}, nil
	}

	log := s.log.WithEventID(value.LeadgenID)

	claimed, err := s.dedup.ClaimEvent(ctx, value.LeadgenID, value.PageID, value.FormID, raw)
	if err != nil {
		return Result{}, fmt.Errorf("claim webhook event: %w", err)
	}
	if !claimed {
		log.Info("duplicate webhook event, acknowledging")
		return Result{Outcome: OutcomeDuplicate}, nil
	}

	match := s.matcher.Lookup(ctx, value.FormID)

	meta := value.AttributionMetadata()
	meta.InventoryName = match.EventName
	attr := attribution.Resolve(meta)
	log.AttributionAudit(value.LeadgenID, string(attr.Channel), string(attr.Method), attr.Defaulted)

	lead, err := leads.Build(value.LeadSource(), attr, match)
	if err != nil {
		if errors.Is(err, leads.ErrIncompleteLeadData) {
			log.Warn("dropping incomplete lead event", "error", err)
			if markErr := s.dedup.MarkDropped(ctx, value.LeadgenID, err.Error()); markErr != nil {
				log.DatabaseError("webhook.MarkDropped", markErr)
			}
			return Result{Outcome: OutcomeDropped}, nil
		}
		return Result{}, fmt.Errorf("build lead: %w", err)
	}

	// Assignment failures never block ingestion: the lead lands unassigned
	// and operators route it by hand.
	decision, err := s.engine.Evaluate(ctx, lead)
	if err != nil {
		log.Warn("assignment evaluation failed, lead stays unassigned", "error", err)
	} else {
		assignment.Apply(&lead, decision)
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		if errors.Is(err, leads.ErrDuplicateExternalEvent) {
			log.Info("lead already exists for event, acknowledging")
			return Result{Outcome: OutcomeDuplicate}, nil
		}
		// Release the claim so the platform's retry can reprocess.
		if relErr := s.dedup.ReleaseEvent(ctx, value.LeadgenID); relErr != nil {
			log.DatabaseError("webhook.ReleaseEvent", relErr)
		}
		return Result{}, fmt.Errorf("persist lead: %w", err)
	}

	if err := s.dedup.MarkProcessed(ctx, value.LeadgenID, lead.ID); err != nil {
		log.DatabaseError("webhook.MarkProcessed", err)
	}

	s.publishLeadCreated(ctx, lead)

	log.Info("lead created from webhook event",
		"lead_id", lead.ID,
		"channel", string(lead.Channel),
		"auto_assigned", lead.AutoAssigned,
	)

	leadID := lead.ID
	return Result{Outcome: OutcomeCreated, LeadID: &leadID}, nil
}

// ProcessEnvelope walks the envelope and processes every leadgen change.
// Non-leadgen changes are skipped. The first persistence failure aborts the
// batch so the platform retries the whole delivery; already-processed
// events in the batch are then absorbed by dedup.
func (s *Service) ProcessEnvelope(ctx context.Context, envelope Envelope) error {
	for _, entry := range envelope.Entry {
		for _, change := range entry.Changes {
			if change.Field != leadgenField {
				continue
			}

			var value LeadgenValue
			if err := json.Unmarshal(change.Value, &value); err != nil {
				s.log.Warn("unparseable leadgen change value, skipping", "page_id", entry.ID, "error", err)
				continue
			}

			if _, err := s.ProcessLeadgenEvent(ctx, value, change.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) publishLeadCreated(ctx context.Context, lead leads.Lead) {
	category := ""
	if lead.CategoryName != nil {
		category = *lead.CategoryName
	}
	assignedTo := ""
	if lead.AssignedTo != nil {
		assignedTo = *lead.AssignedTo
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          lead.ID,
		ExternalEventID: lead.ExternalEventID,
		LeadName:        lead.Name,
		Channel:         string(lead.Channel),
		TicketEventName: lead.EventName,
		CategoryName:    category,
		AssignedTo:      assignedTo,
		AutoAssigned:    lead.AutoAssigned,
	})
}
