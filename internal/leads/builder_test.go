package leads

import (
	"errors"
	"testing"

	"ticketcrm_backend/internal/attribution"
	"ticketcrm_backend/internal/inventory"

	"github.com/google/uuid"
)

func facebookAttr() attribution.Result {
	return attribution.Result{
		Channel:    attribution.ChannelFacebook,
		Method:     attribution.MethodCampaignName,
		Confidence: attribution.ConfidenceMedium,
	}
}

func TestBuildRequiresAnIdentityField(t *testing.T) {
	_, err := Build(Source{ExternalEventID: "evt-1", Notes: "call me"}, facebookAttr(), inventory.NoMatch)
	if !errors.Is(err, ErrIncompleteLeadData) {
		t.Fatalf("expected ErrIncompleteLeadData, got %v", err)
	}

	for _, src := range []Source{
		{ExternalEventID: "evt-2", Name: "Asha"},
		{ExternalEventID: "evt-3", Email: "asha@example.com"},
		{ExternalEventID: "evt-4", Phone: "+919876543210"},
	} {
		if _, err := Build(src, facebookAttr(), inventory.NoMatch); err != nil {
			t.Fatalf("expected lead for %+v, got error %v", src, err)
		}
	}
}

func TestBuildCarriesAttributionAndInventory(t *testing.T) {
	invID := uuid.New()
	category := "VIP"
	match := inventory.Match{
		Matched:      true,
		InventoryID:  &invID,
		EventName:    "Grand Prix",
		CategoryName: &category,
	}

	lead, err := Build(Source{
		ExternalEventID: "evt-5",
		Name:            "Asha Rao",
		EventInterest:   "grand prix tickets",
	}, facebookAttr(), match)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lead.Channel != attribution.ChannelFacebook {
		t.Fatalf("expected Facebook channel, got %s", lead.Channel)
	}
	if lead.InventoryID == nil || *lead.InventoryID != invID {
		t.Fatalf("expected inventory id %s, got %v", invID, lead.InventoryID)
	}
	if lead.CategoryName == nil || *lead.CategoryName != "VIP" {
		t.Fatalf("expected category VIP, got %v", lead.CategoryName)
	}
	// The matched inventory's event name is authoritative.
	if lead.EventInterest != "Grand Prix" {
		t.Fatalf("expected event interest from inventory, got %q", lead.EventInterest)
	}
	if lead.Status != StatusUnassigned {
		t.Fatalf("expected unassigned status, got %q", lead.Status)
	}
}

func TestBuildDefaultsAndNormalization(t *testing.T) {
	lead, err := Build(Source{
		ExternalEventID: "evt-6",
		Name:            "  Ravi  ",
		Phone:           "098765 43210",
	}, facebookAttr(), inventory.NoMatch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lead.Name != "Ravi" {
		t.Fatalf("expected trimmed name, got %q", lead.Name)
	}
	if lead.Country != defaultCountry {
		t.Fatalf("expected default country, got %q", lead.Country)
	}
	if lead.PartySize != "1" {
		t.Fatalf("expected default party size 1, got %q", lead.PartySize)
	}
	if lead.Phone != "+919876543210" {
		t.Fatalf("expected E.164 phone, got %q", lead.Phone)
	}
	if lead.InventoryID != nil {
		t.Fatal("unmatched inventory must leave inventory id nil")
	}
	if lead.AssignedTo != nil || lead.AutoAssigned {
		t.Fatal("builder must not assign owners")
	}
}
