// This file wires the notification handoff: LeadCreated events published by
// the ingestion pipeline become queued tasks for the worker process.
package notify

import (
	"context"
	"fmt"

	"ticketcrm_backend/internal/events"
	"ticketcrm_backend/platform/logger"
)

// Module subscribes to lead events and enqueues owner notifications.
type Module struct {
	enqueuer Enqueuer
	log      *logger.Logger
}

// NewModule creates the notify module and subscribes it on the bus.
func NewModule(bus events.Bus, enqueuer Enqueuer, log *logger.Logger) *Module {
	m := &Module{enqueuer: enqueuer, log: log}
	bus.Subscribe(events.LeadCreatedName, events.HandlerFunc(m.handleLeadCreated))
	return m
}

func (m *Module) handleLeadCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(events.LeadCreated)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	// Unassigned leads are routed by hand; nobody to notify yet.
	if !created.AutoAssigned || created.AssignedTo == "" {
		return nil
	}

	err := m.enqueuer.EnqueueLeadOwnerNotify(ctx, LeadOwnerNotifyPayload{
		LeadID:       created.LeadID.String(),
		LeadName:     created.LeadName,
		OwnerEmail:   created.AssignedTo,
		Channel:      created.Channel,
		EventName:    created.TicketEventName,
		CategoryName: created.CategoryName,
	})
	if err != nil {
		// Notification loss is acceptable; lead ingestion already succeeded.
		m.log.Error("failed to enqueue owner notification", "lead_id", created.LeadID, "error", err)
		return err
	}

	m.log.Info("owner notification queued", "lead_id", created.LeadID, "owner", created.AssignedTo)
	return nil
}
