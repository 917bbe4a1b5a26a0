package assignment

import (
	"testing"

	"ticketcrm_backend/internal/attribution"
	"ticketcrm_backend/internal/leads"
)

func sampleLead() leads.Lead {
	category := "VIP"
	return leads.Lead{
		Channel:       attribution.ChannelFacebook,
		EventName:     "Grand Prix",
		EventInterest: "Grand Prix",
		CategoryName:  &category,
		City:          "Mumbai",
		Country:       "India",
		PartySize:     "4",
		Source:        "Facebook",
	}
}

func TestMatchesConditionOperators(t *testing.T) {
	lead := sampleLead()
	cases := []struct {
		name string
		cond Condition
		want bool
	}{
		{"equals case-insensitive", Condition{Field: "channel", Operator: "==", Value: "facebook"}, true},
		{"equals mismatch", Condition{Field: "channel", Operator: "==", Value: "Instagram"}, false},
		{"not equals", Condition{Field: "city", Operator: "!=", Value: "Delhi"}, true},
		{"in", Condition{Field: "category", Operator: "in", Value: []interface{}{"Premium", "vip"}}, true},
		{"in miss", Condition{Field: "category", Operator: "in", Value: []interface{}{"Premium"}}, false},
		{"contains", Condition{Field: "event", Operator: "contains", Value: "prix"}, true},
		{"starts_with", Condition{Field: "event", Operator: "starts_with", Value: "grand"}, true},
		{"starts_with miss", Condition{Field: "event", Operator: "starts_with", Value: "prix"}, false},
		{"gte", Condition{Field: "party_size", Operator: ">=", Value: float64(4)}, true},
		{"gt miss", Condition{Field: "party_size", Operator: ">", Value: float64(4)}, false},
		{"lte", Condition{Field: "party_size", Operator: "<=", Value: "10"}, true},
		{"lt", Condition{Field: "party_size", Operator: "<", Value: "3"}, false},
		{"unknown operator never matches", Condition{Field: "channel", Operator: "~=", Value: "Facebook"}, false},
		{"unknown field compares empty", Condition{Field: "region", Operator: "==", Value: ""}, true},
	}

	fields := leadFields(lead)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := matchesCondition(tc.cond, fields[tc.cond.Field]); got != tc.want {
				t.Fatalf("matchesCondition(%+v) = %v, want %v", tc.cond, got, tc.want)
			}
		})
	}
}

func TestMatchesRule(t *testing.T) {
	lead := sampleLead()

	all := Rule{Conditions: []Condition{
		{Field: "channel", Operator: "==", Value: "Facebook"},
		{Field: "category", Operator: "==", Value: "VIP"},
	}}
	if !matchesRule(all, lead) {
		t.Fatal("expected rule with all conditions satisfied to match")
	}

	partial := Rule{Conditions: []Condition{
		{Field: "channel", Operator: "==", Value: "Facebook"},
		{Field: "category", Operator: "==", Value: "Premium"},
	}}
	if matchesRule(partial, lead) {
		t.Fatal("a single failing condition must reject the rule")
	}

	if !matchesRule(Rule{Name: "catch-all"}, lead) {
		t.Fatal("a rule with no conditions must match everything")
	}
}

func TestDescribeRule(t *testing.T) {
	rule := Rule{
		Name: "fb-vip",
		Conditions: []Condition{
			{Field: "channel", Operator: "==", Value: "Facebook"},
			{Field: "category", Operator: "==", Value: "VIP"},
		},
	}
	want := "matched rule: channel=Facebook AND category=VIP"
	if got := describeRule(rule); got != want {
		t.Fatalf("describeRule = %q, want %q", got, want)
	}

	if got := describeRule(Rule{Name: "catch-all"}); got != `matched rule "catch-all" (no conditions)` {
		t.Fatalf("unexpected no-condition description: %q", got)
	}
}
