package assignment

import (
	"context"
	"errors"
	"testing"

	"ticketcrm_backend/internal/attribution"
	"ticketcrm_backend/internal/leads"
	"ticketcrm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRuleStore struct {
	rules      []Rule
	loadErr    error
	usageErr   error
	usageCalls []uuid.UUID
}

func (s *fakeRuleStore) GetActiveRules(ctx context.Context) ([]Rule, error) {
	return s.rules, s.loadErr
}

func (s *fakeRuleStore) RecordRuleUsage(ctx context.Context, ruleID uuid.UUID) error {
	s.usageCalls = append(s.usageCalls, ruleID)
	return s.usageErr
}

type fakeCursorStore struct {
	n     int64
	err   error
	calls int
}

func (s *fakeCursorStore) Next(ctx context.Context, ruleID uuid.UUID, poolSize int) (int, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	s.n++
	return int((s.n - 1) % int64(poolSize)), nil
}

func testEngine(store *fakeRuleStore, cursor CursorStore) *Engine {
	return NewEngine(store, cursor, logger.New("test"))
}

func facebookLead() leads.Lead {
	return leads.Lead{Channel: attribution.ChannelFacebook, EventName: "Grand Prix"}
}

func TestEvaluateFirstMatchWins(t *testing.T) {
	vip := uuid.New()
	catchAll := uuid.New()
	store := &fakeRuleStore{rules: []Rule{
		{
			ID:       vip,
			Name:     "fb",
			Priority: 1,
			Conditions: []Condition{
				{Field: "channel", Operator: "==", Value: "Facebook"},
			},
			Assignees: []Assignee{{UserEmail: "rep_a@x.com"}},
			Strategy:  StrategyFirstAvailable,
		},
		{
			ID:        catchAll,
			Name:      "catch-all",
			Priority:  2,
			Assignees: []Assignee{{UserEmail: "fallback@x.com"}},
		},
	}}
	engine := testEngine(store, &fakeCursorStore{})

	decision, err := engine.Evaluate(context.Background(), facebookLead())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.RuleID == nil || *decision.RuleID != vip {
		t.Fatalf("expected first rule to win, got %v", decision.RuleID)
	}
	if decision.AssignedTo == nil || *decision.AssignedTo != "rep_a@x.com" {
		t.Fatalf("expected rep_a@x.com, got %v", decision.AssignedTo)
	}
	if len(store.usageCalls) != 1 || store.usageCalls[0] != vip {
		t.Fatalf("expected one usage record for the matched rule, got %v", store.usageCalls)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	store := &fakeRuleStore{rules: []Rule{
		{
			ID:   uuid.New(),
			Name: "fb",
			Conditions: []Condition{
				{Field: "channel", Operator: "==", Value: "Facebook"},
			},
			Assignees: []Assignee{{UserEmail: "rep_a@x.com"}},
			Strategy:  StrategyFirstAvailable,
		},
	}}
	engine := testEngine(store, &fakeCursorStore{})

	for i := 0; i < 10; i++ {
		decision, err := engine.Evaluate(context.Background(), facebookLead())
		if err != nil {
			t.Fatalf("unexpected error on run %d: %v", i, err)
		}
		if decision.AssignedTo == nil || *decision.AssignedTo != "rep_a@x.com" {
			t.Fatalf("run %d: expected rep_a@x.com, got %v", i, decision.AssignedTo)
		}
	}
}

func TestEvaluateRoundRobinRotation(t *testing.T) {
	store := &fakeRuleStore{rules: []Rule{
		{
			ID:        uuid.New(),
			Name:      "pool",
			Assignees: []Assignee{{UserEmail: "a@x.com"}, {UserEmail: "b@x.com"}, {UserEmail: "c@x.com"}},
			Strategy:  StrategyRoundRobin,
		},
	}}
	engine := testEngine(store, &fakeCursorStore{})

	var got []string
	for i := 0; i < 6; i++ {
		decision, err := engine.Evaluate(context.Background(), facebookLead())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, *decision.AssignedTo)
	}
	want := []string{"a@x.com", "b@x.com", "c@x.com", "a@x.com", "b@x.com", "c@x.com"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rotation mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}

func TestEvaluateNoMatchIsTerminalNotError(t *testing.T) {
	store := &fakeRuleStore{rules: []Rule{
		{
			ID:   uuid.New(),
			Name: "ig-only",
			Conditions: []Condition{
				{Field: "channel", Operator: "==", Value: "Instagram"},
			},
			Assignees: []Assignee{{UserEmail: "rep@x.com"}},
		},
	}}
	engine := testEngine(store, &fakeCursorStore{})

	decision, err := engine.Evaluate(context.Background(), facebookLead())
	if err != nil {
		t.Fatalf("no match must not be an error, got %v", err)
	}
	if decision.AssignedTo != nil || decision.RuleID != nil {
		t.Fatalf("expected unassigned decision, got %+v", decision)
	}
	if decision.Reason != "no assignment rule matched" {
		t.Fatalf("unexpected reason %q", decision.Reason)
	}
	if len(store.usageCalls) != 0 {
		t.Fatal("no usage may be recorded when nothing matched")
	}
}

func TestEvaluateSkipsEmptyPools(t *testing.T) {
	second := uuid.New()
	store := &fakeRuleStore{rules: []Rule{
		{ID: uuid.New(), Name: "empty", Priority: 1},
		{ID: second, Name: "staffed", Priority: 2, Assignees: []Assignee{{UserEmail: "rep@x.com"}}},
	}}
	engine := testEngine(store, &fakeCursorStore{})

	decision, err := engine.Evaluate(context.Background(), facebookLead())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.RuleID == nil || *decision.RuleID != second {
		t.Fatalf("expected the staffed rule, got %v", decision.RuleID)
	}
}

func TestEvaluateSurfacesStoreFailure(t *testing.T) {
	store := &fakeRuleStore{loadErr: errors.New("connection refused")}
	engine := testEngine(store, &fakeCursorStore{})

	if _, err := engine.Evaluate(context.Background(), facebookLead()); err == nil {
		t.Fatal("expected rule load failure to surface")
	}
}

func TestEvaluateSurfacesCursorFailure(t *testing.T) {
	store := &fakeRuleStore{rules: []Rule{
		{
			ID:        uuid.New(),
			Name:      "pool",
			Assignees: []Assignee{{UserEmail: "a@x.com"}, {UserEmail: "b@x.com"}},
			Strategy:  StrategyRoundRobin,
		},
	}}
	engine := testEngine(store, &fakeCursorStore{err: errors.New("redis down")})

	if _, err := engine.Evaluate(context.Background(), facebookLead()); err == nil {
		t.Fatal("expected cursor failure to surface")
	}
}

func TestEvaluateToleratesUsageBookkeepingFailure(t *testing.T) {
	store := &fakeRuleStore{
		rules: []Rule{
			{ID: uuid.New(), Name: "r", Assignees: []Assignee{{UserEmail: "rep@x.com"}}},
		},
		usageErr: errors.New("deadlock"),
	}
	engine := testEngine(store, &fakeCursorStore{})

	decision, err := engine.Evaluate(context.Background(), facebookLead())
	if err != nil {
		t.Fatalf("usage bookkeeping failure must not fail the evaluation: %v", err)
	}
	if decision.AssignedTo == nil {
		t.Fatal("expected an assignment despite the bookkeeping failure")
	}
}

func TestPreviewDoesNotAdvanceCursorOrUsage(t *testing.T) {
	store := &fakeRuleStore{rules: []Rule{
		{
			ID:        uuid.New(),
			Name:      "pool",
			Assignees: []Assignee{{UserEmail: "a@x.com"}, {UserEmail: "b@x.com"}},
			Strategy:  StrategyRoundRobin,
		},
	}}
	cursor := &fakeCursorStore{}
	engine := testEngine(store, cursor)

	decision, err := engine.Preview(context.Background(), facebookLead())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.AssignedTo == nil {
		t.Fatal("expected a previewed owner")
	}
	if cursor.calls != 0 {
		t.Fatalf("preview must not touch the cursor, got %d calls", cursor.calls)
	}
	if len(store.usageCalls) != 0 {
		t.Fatal("preview must not record usage")
	}
}

func TestApply(t *testing.T) {
	lead := facebookLead()
	Apply(&lead, Decision{Reason: "no assignment rule matched"})
	if lead.AssignedTo != nil || lead.AutoAssigned {
		t.Fatal("unmatched decision must leave the lead unassigned")
	}

	ruleID := uuid.New()
	owner := "rep@x.com"
	Apply(&lead, Decision{RuleID: &ruleID, AssignedTo: &owner, Reason: "matched rule: channel=Facebook"})
	if lead.AssignedTo == nil || *lead.AssignedTo != owner {
		t.Fatalf("expected owner %q, got %v", owner, lead.AssignedTo)
	}
	if lead.AssignmentRuleID == nil || *lead.AssignmentRuleID != ruleID {
		t.Fatalf("expected rule id %s, got %v", ruleID, lead.AssignmentRuleID)
	}
	if !lead.AutoAssigned {
		t.Fatal("expected AutoAssigned to be set")
	}
}
