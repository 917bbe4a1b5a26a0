package assignment

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides read access to assignment rules.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new assignment rule repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetActiveRules returns the active rules ordered by priority (ascending,
// so the most important rule is evaluated first).
func (r *Repository) GetActiveRules(ctx context.Context) ([]Rule, error) {
	return r.listRules(ctx, `
		SELECT id, name, description, priority, active, conditions, assignees,
		       strategy, usage_count, last_used_at, created_by
		FROM assignment_rules
		WHERE active = TRUE
		ORDER BY priority ASC, created_at ASC
	`)
}

// ListRules returns all rules regardless of active state, for operators.
func (r *Repository) ListRules(ctx context.Context) ([]Rule, error) {
	return r.listRules(ctx, `
		SELECT id, name, description, priority, active, conditions, assignees,
		       strategy, usage_count, last_used_at, created_by
		FROM assignment_rules
		ORDER BY priority ASC, created_at ASC
	`)
}

func (r *Repository) listRules(ctx context.Context, query string) ([]Rule, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var rule Rule
		var rawConditions, rawAssignees []byte
		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.Description, &rule.Priority, &rule.Active,
			&rawConditions, &rawAssignees, &rule.Strategy,
			&rule.UsageCount, &rule.LastUsedAt, &rule.CreatedBy,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawConditions, &rule.Conditions); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawAssignees, &rule.Assignees); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// Stats summarizes the rule set for operators.
type Stats struct {
	TotalRules    int
	ActiveRules   int
	InactiveRules int
	TotalUsage    int
	MostUsedRule  *string
}

// GetStats aggregates rule counts and usage over the whole rule set.
func (r *Repository) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE active),
		       COUNT(*) FILTER (WHERE NOT active),
		       COALESCE(SUM(usage_count), 0)
		FROM assignment_rules
	`).Scan(&stats.TotalRules, &stats.ActiveRules, &stats.InactiveRules, &stats.TotalUsage)
	if err != nil {
		return Stats{}, err
	}

	var name string
	err = r.pool.QueryRow(ctx, `
		SELECT name FROM assignment_rules
		WHERE usage_count > 0
		ORDER BY usage_count DESC, last_used_at DESC NULLS LAST
		LIMIT 1
	`).Scan(&name)
	switch {
	case err == nil:
		stats.MostUsedRule = &name
	case errors.Is(err, pgx.ErrNoRows):
		// No rule has fired yet.
	default:
		return Stats{}, err
	}

	return stats, nil
}

// RecordRuleUsage bumps the rule's usage counter. Best-effort bookkeeping,
// callers ignore the error after logging it.
func (r *Repository) RecordRuleUsage(ctx context.Context, ruleID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE assignment_rules
		SET usage_count = usage_count + 1, last_used_at = NOW()
		WHERE id = $1
	`, ruleID)
	return err
}
