package webhook

import (
	"encoding/json"
	"strings"

	"ticketcrm_backend/internal/attribution"
	"ticketcrm_backend/internal/leads"
)

// leadgenField is the change field name Meta uses for lead-ads events.
const leadgenField = "leadgen"

// Envelope is the outer webhook payload: one page-level entry per change
// batch, each carrying a list of field changes.
type Envelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one page entry in the envelope.
type Entry struct {
	ID      string   `json:"id"`
	Time    int64    `json:"time"`
	Changes []Change `json:"changes"`
}

// Change is one field change. The value is kept raw so the original bytes
// can be retained for audit before parsing.
type Change struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// LeadgenValue is the leadgen change value: the external event identity,
// the ad metadata the attribution resolver feeds on, and the form answers.
type LeadgenValue struct {
	LeadgenID    string       `json:"leadgen_id"`
	PageID       string       `json:"page_id"`
	FormID       string       `json:"form_id"`
	FormName     string       `json:"form_name"`
	CreatedTime  int64        `json:"created_time"`
	CampaignID   string       `json:"campaign_id"`
	CampaignName string       `json:"campaign_name"`
	AdsetID      string       `json:"adset_id"`
	AdsetName    string       `json:"adset_name"`
	AdID         string       `json:"ad_id"`
	AdName       string       `json:"ad_name"`
	Platform     string       `json:"platform"`
	FieldData    []FieldDatum `json:"field_data"`
}

// FieldDatum is one answered question on the lead form.
type FieldDatum struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// fields flattens the form answers into a name -> first-value map with
// normalized keys.
func (v LeadgenValue) fields() map[string]string {
	out := make(map[string]string, len(v.FieldData))
	for _, fd := range v.FieldData {
		if len(fd.Values) == 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(fd.Name))
		if _, exists := out[key]; !exists {
			out[key] = fd.Values[0]
		}
	}
	return out
}

// LeadSource extracts the contact and interest fields for the lead builder.
// Field names follow Meta's standard question types plus the custom
// questions the original lead forms used.
func (v LeadgenValue) LeadSource() leads.Source {
	fields := v.fields()

	name := fields["full_name"]
	if name == "" {
		name = strings.TrimSpace(fields["first_name"] + " " + fields["last_name"])
	}

	notes := fields["message"]
	if notes == "" {
		notes = fields["additional_info"]
	}

	return leads.Source{
		ExternalEventID: v.LeadgenID,
		Name:            name,
		Email:           fields["email"],
		Phone:           fields["phone_number"],
		Company:         fields["company_name"],
		City:            fields["city"],
		Country:         fields["country"],
		EventInterest:   fields["event_interest"],
		PartySize:       fields["group_size"],
		Notes:           notes,
	}
}

// AttributionMetadata maps the ad metadata onto the resolver input. The
// inventory name is filled in by the pipeline after the matcher runs.
func (v LeadgenValue) AttributionMetadata() attribution.Metadata {
	return attribution.Metadata{
		ExplicitPlatform: v.Platform,
		FormName:         v.FormName,
		CampaignID:       v.CampaignID,
		CampaignName:     v.CampaignName,
		AdsetID:          v.AdsetID,
		AdsetName:        v.AdsetName,
		AdID:             v.AdID,
		AdName:           v.AdName,
	}
}
