// Package assignment routes newly built leads to sales owners through an
// ordered rule set. Rules are authored externally and read-only here.
package assignment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ticketcrm_backend/internal/leads"

	"github.com/google/uuid"
)

// Selection strategies for a rule's assignee pool.
const (
	StrategyRoundRobin     = "round_robin"
	StrategyFirstAvailable = "first_available"
)

// Condition is one predicate over a lead attribute.
type Condition struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// Assignee is one member of a rule's owner pool.
type Assignee struct {
	UserEmail string `json:"user_email"`
}

// Rule is an assignment rule. Lower priority values are evaluated first.
type Rule struct {
	ID          uuid.UUID
	Name        string
	Description string
	Priority    int
	Active      bool
	Conditions  []Condition
	Assignees   []Assignee
	Strategy    string
	UsageCount  int
	LastUsedAt  *time.Time
	CreatedBy   string
}

// Decision records the outcome of evaluating the rule set for one lead.
type Decision struct {
	RuleID      *uuid.UUID
	AssignedTo  *string
	Reason      string
	EvaluatedAt time.Time
}

// leadFields flattens the lead attributes rules may predicate on.
func leadFields(lead leads.Lead) map[string]string {
	category := ""
	if lead.CategoryName != nil {
		category = *lead.CategoryName
	}
	return map[string]string{
		"channel":        string(lead.Channel),
		"category":       category,
		"event":          lead.EventName,
		"event_interest": lead.EventInterest,
		"city":           lead.City,
		"country":        lead.Country,
		"party_size":     lead.PartySize,
		"source":         lead.Source,
	}
}

// matchesRule reports whether every condition of the rule holds for the
// lead. A rule with no conditions matches everything.
func matchesRule(rule Rule, lead leads.Lead) bool {
	fields := leadFields(lead)
	for _, cond := range rule.Conditions {
		if !matchesCondition(cond, fields[cond.Field]) {
			return false
		}
	}
	return true
}

// matchesCondition evaluates a single predicate. String comparisons are
// case-insensitive; numeric operators parse both sides as floats.
func matchesCondition(cond Condition, leadValue string) bool {
	switch cond.Operator {
	case "==":
		return strings.EqualFold(leadValue, stringValue(cond.Value))
	case "!=":
		return !strings.EqualFold(leadValue, stringValue(cond.Value))
	case "in":
		for _, candidate := range sliceValue(cond.Value) {
			if strings.EqualFold(leadValue, candidate) {
				return true
			}
		}
		return false
	case "contains":
		return strings.Contains(strings.ToLower(leadValue), strings.ToLower(stringValue(cond.Value)))
	case "starts_with":
		return strings.HasPrefix(strings.ToLower(leadValue), strings.ToLower(stringValue(cond.Value)))
	case ">=", "<=", ">", "<":
		return compareNumeric(cond.Operator, leadValue, stringValue(cond.Value))
	default:
		return false
	}
}

func compareNumeric(op, leadValue, condValue string) bool {
	left, err := strconv.ParseFloat(strings.TrimSpace(leadValue), 64)
	if err != nil {
		left = 0
	}
	right, err := strconv.ParseFloat(strings.TrimSpace(condValue), 64)
	if err != nil {
		return false
	}
	switch op {
	case ">=":
		return left >= right
	case "<=":
		return left <= right
	case ">":
		return left > right
	default:
		return left < right
	}
}

// stringValue renders a JSON condition value as a comparable string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

// sliceValue renders a JSON condition value as a string slice for "in".
func sliceValue(v interface{}) []string {
	switch val := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, stringValue(item))
		}
		return out
	case []string:
		return val
	default:
		return nil
	}
}

// describeRule renders the human-readable reason for a matched rule,
// e.g. "matched rule: channel=Facebook AND category=VIP".
func describeRule(rule Rule) string {
	if len(rule.Conditions) == 0 {
		return fmt.Sprintf("matched rule %q (no conditions)", rule.Name)
	}
	parts := make([]string, 0, len(rule.Conditions))
	for _, cond := range rule.Conditions {
		op := cond.Operator
		if op == "==" {
			op = "="
		}
		parts = append(parts, fmt.Sprintf("%s%s%s", cond.Field, op, stringValue(cond.Value)))
	}
	return "matched rule: " + strings.Join(parts, " AND ")
}
