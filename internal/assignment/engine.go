package assignment

import (
	"context"
	"fmt"
	"time"

	"ticketcrm_backend/internal/leads"
	"ticketcrm_backend/platform/logger"

	"github.com/google/uuid"
)

// RuleStore is the read surface the engine needs. Satisfied by *Repository.
type RuleStore interface {
	GetActiveRules(ctx context.Context) ([]Rule, error)
	RecordRuleUsage(ctx context.Context, ruleID uuid.UUID) error
}

// Engine evaluates the assignment rule set against a lead. The rule set is
// re-read per evaluation, so rule changes apply to subsequent leads only,
// never to one in flight.
type Engine struct {
	rules  RuleStore
	cursor CursorStore
	log    *logger.Logger
}

// NewEngine creates a new assignment engine.
func NewEngine(rules RuleStore, cursor CursorStore, log *logger.Logger) *Engine {
	return &Engine{rules: rules, cursor: cursor, log: log}
}

// Evaluate selects an owner for the lead. An empty decision (no rule
// matched) is a valid terminal state, not an error. Errors mean the
// evaluation itself failed; callers are expected to fail soft and keep
// the lead unassigned.
func (e *Engine) Evaluate(ctx context.Context, lead leads.Lead) (Decision, error) {
	decision := Decision{EvaluatedAt: time.Now().UTC()}

	rules, err := e.rules.GetActiveRules(ctx)
	if err != nil {
		return decision, fmt.Errorf("load assignment rules: %w", err)
	}

	for _, rule := range rules {
		if !matchesRule(rule, lead) {
			continue
		}

		owner, err := e.selectOwner(ctx, rule)
		if err != nil {
			return decision, fmt.Errorf("select owner for rule %q: %w", rule.Name, err)
		}
		if owner == "" {
			// Matching rule with an empty pool: keep scanning.
			continue
		}

		ruleID := rule.ID
		reason := describeRule(rule)
		decision.RuleID = &ruleID
		decision.AssignedTo = &owner
		decision.Reason = reason

		if err := e.rules.RecordRuleUsage(ctx, rule.ID); err != nil {
			e.log.DatabaseError("assignment.RecordRuleUsage", err)
		}
		return decision, nil
	}

	decision.Reason = "no assignment rule matched"
	return decision, nil
}

// selectOwner applies the rule's pool selection strategy.
func (e *Engine) selectOwner(ctx context.Context, rule Rule) (string, error) {
	if len(rule.Assignees) == 0 {
		return "", nil
	}

	switch rule.Strategy {
	case StrategyRoundRobin:
		idx, err := e.cursor.Next(ctx, rule.ID, len(rule.Assignees))
		if err != nil {
			return "", err
		}
		return rule.Assignees[idx].UserEmail, nil
	case StrategyFirstAvailable, "":
		return rule.Assignees[0].UserEmail, nil
	default:
		return "", fmt.Errorf("unknown assignment strategy %q", rule.Strategy)
	}
}

// Preview reports which rule would match the lead without advancing any
// round-robin cursor or usage counter. Used by the operator dry-run
// endpoint; the displayed owner for a pool rule is indicative only.
func (e *Engine) Preview(ctx context.Context, lead leads.Lead) (Decision, error) {
	decision := Decision{EvaluatedAt: time.Now().UTC()}

	rules, err := e.rules.GetActiveRules(ctx)
	if err != nil {
		return decision, fmt.Errorf("load assignment rules: %w", err)
	}

	for _, rule := range rules {
		if !matchesRule(rule, lead) || len(rule.Assignees) == 0 {
			continue
		}
		ruleID := rule.ID
		owner := rule.Assignees[0].UserEmail
		decision.RuleID = &ruleID
		decision.AssignedTo = &owner
		decision.Reason = describeRule(rule)
		return decision, nil
	}

	decision.Reason = "no assignment rule matched"
	return decision, nil
}

// Apply copies the decision onto the lead. Leads with no matched rule stay
// unassigned with AutoAssigned false.
func Apply(lead *leads.Lead, decision Decision) {
	if decision.AssignedTo == nil {
		return
	}
	lead.AssignedTo = decision.AssignedTo
	lead.AssignmentRuleID = decision.RuleID
	reason := decision.Reason
	lead.AssignmentReason = &reason
	lead.AutoAssigned = true
}
