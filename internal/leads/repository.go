package leads

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateExternalEvent signals that a lead already exists for the
// external event id. The UNIQUE constraint is the last line of defense
// behind the dedup store.
var ErrDuplicateExternalEvent = errors.New("lead already exists for external event")

const uniqueViolationCode = "23505"

// Repository persists canonical leads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new lead repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts the lead. The assignment fields are written as part of
// the same row, so a lead and its assignment decision land atomically.
func (r *Repository) Create(ctx context.Context, lead Lead) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leads (
			id, external_event_id, name, email, phone, company, city, country,
			event_interest, party_size, notes,
			channel, attribution_method,
			inventory_id, event_name, category_name,
			assigned_to, assignment_rule_id, assignment_reason, auto_assigned,
			status, source, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11,
			$12, $13,
			$14, $15, $16,
			$17, $18, $19, $20,
			$21, $22, $23
		)
	`,
		lead.ID, lead.ExternalEventID, lead.Name, lead.Email, lead.Phone, lead.Company, lead.City, lead.Country,
		lead.EventInterest, lead.PartySize, lead.Notes,
		string(lead.Channel), string(lead.AttributionMethod),
		lead.InventoryID, lead.EventName, lead.CategoryName,
		lead.AssignedTo, lead.AssignmentRuleID, lead.AssignmentReason, lead.AutoAssigned,
		lead.Status, lead.Source, lead.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateExternalEvent
		}
		return err
	}
	return nil
}
