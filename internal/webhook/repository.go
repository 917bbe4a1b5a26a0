package webhook

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event statuses recorded on webhook_events rows.
const (
	statusProcessing = "processing"
	statusProcessed  = "processed"
	statusDropped    = "dropped"
)

// Repository is the dedup and audit store for webhook events. The primary
// key on external_event_id makes the claim a single conditional write, so
// concurrent deliveries of the same event race safely: exactly one claims,
// the rest see a duplicate.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new webhook event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ClaimEvent inserts the event row if no row exists for the external event
// id. Returns false when the event was already claimed (a redelivery).
func (r *Repository) ClaimEvent(ctx context.Context, externalEventID, pageID, formID string, payload []byte) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO webhook_events (external_event_id, page_id, form_id, payload, status, received_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (external_event_id) DO NOTHING
	`, externalEventID, pageID, formID, payload, statusProcessing)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseEvent deletes the claim so the platform's redelivery of the same
// event can be reprocessed. Called when lead persistence failed after a
// successful claim.
func (r *Repository) ReleaseEvent(ctx context.Context, externalEventID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM webhook_events WHERE external_event_id = $1
	`, externalEventID)
	return err
}

// MarkProcessed records the created lead on the event row.
func (r *Repository) MarkProcessed(ctx context.Context, externalEventID string, leadID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE webhook_events
		SET status = $2, lead_id = $3, processed_at = NOW()
		WHERE external_event_id = $1
	`, externalEventID, statusProcessed, leadID)
	return err
}

// MarkDropped records that the event was discarded and why. The claim is
// kept: a dropped event must stay dropped across redeliveries.
func (r *Repository) MarkDropped(ctx context.Context, externalEventID, reason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE webhook_events
		SET status = $2, detail = $3, processed_at = NOW()
		WHERE external_event_id = $1
	`, externalEventID, statusDropped, reason)
	return err
}
