package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides data access for ticket inventory records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new inventory repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByFormID returns the inventory record whose form-id set contains the
// given Meta form id, or ok=false when no record carries it.
func (r *Repository) FindByFormID(ctx context.Context, formID string) (Record, bool, error) {
	var rec Record
	var rawCategories []byte

	err := r.pool.QueryRow(ctx, `
		SELECT id, event_name, form_ids, categories, COALESCE(category_of_ticket, '')
		FROM inventories
		WHERE $1 = ANY(form_ids)
		LIMIT 1
	`, formID).Scan(&rec.ID, &rec.EventName, &rec.FormIDs, &rawCategories, &rec.LegacyCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}

	rec.Categories = decodeCategories(rawCategories)
	return rec, true, nil
}

// FormMapping pairs an inventory event with its configured form ids.
// Used only for the operator diagnostic on unmapped form ids.
type FormMapping struct {
	EventName string
	FormIDs   []string
}

// ListFormMappings returns every inventory that has form ids configured.
func (r *Repository) ListFormMappings(ctx context.Context) ([]FormMapping, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT event_name, form_ids
		FROM inventories
		WHERE cardinality(form_ids) > 0
		ORDER BY event_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []FormMapping
	for rows.Next() {
		var m FormMapping
		if err := rows.Scan(&m.EventName, &m.FormIDs); err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}
