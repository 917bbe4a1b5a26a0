package notify

import (
	"context"
	"strings"
	"testing"

	"ticketcrm_backend/internal/events"
	"ticketcrm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeEnqueuer struct {
	payloads []LeadOwnerNotifyPayload
}

func (f *fakeEnqueuer) EnqueueLeadOwnerNotify(ctx context.Context, payload LeadOwnerNotifyPayload) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestModuleEnqueuesForAssignedLeads(t *testing.T) {
	bus := events.NewInMemoryBus(logger.New("test"))
	enqueuer := &fakeEnqueuer{}
	NewModule(bus, enqueuer, logger.New("test"))

	leadID := uuid.New()
	err := bus.PublishSync(context.Background(), events.LeadCreated{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          leadID,
		LeadName:        "Asha Rao",
		Channel:         "Facebook",
		TicketEventName: "Grand Prix",
		CategoryName:    "VIP",
		AssignedTo:      "rep_a@x.com",
		AutoAssigned:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(enqueuer.payloads) != 1 {
		t.Fatalf("expected one queued notification, got %d", len(enqueuer.payloads))
	}
	payload := enqueuer.payloads[0]
	if payload.OwnerEmail != "rep_a@x.com" || payload.LeadID != leadID.String() {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestModuleSkipsUnassignedLeads(t *testing.T) {
	bus := events.NewInMemoryBus(logger.New("test"))
	enqueuer := &fakeEnqueuer{}
	NewModule(bus, enqueuer, logger.New("test"))

	err := bus.PublishSync(context.Background(), events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		LeadName:  "Ravi",
		Channel:   "Instagram",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(enqueuer.payloads) != 0 {
		t.Fatalf("unassigned lead must not queue a notification, got %d", len(enqueuer.payloads))
	}
}

func TestLeadAssignedTemplateRenders(t *testing.T) {
	content, err := renderEmailTemplate("lead_assigned.html", LeadAssignedEmail{
		LeadName:     "Asha Rao",
		Channel:      "Facebook",
		EventName:    "Grand Prix",
		CategoryName: "VIP",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Asha Rao", "Facebook", "Grand Prix", "VIP"} {
		if !strings.Contains(content, want) {
			t.Fatalf("rendered email missing %q", want)
		}
	}
}
