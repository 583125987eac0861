package outbox

import (
	"context"

	domain "meraki/internal/domain/outbox"
)

// Store defines the interface for failed-delivery persistence.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	// PRE: id is non-empty
	// POST: Returns the entry or an error wrapping sql.ErrNoRows
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save persists an outbox entry to the database.
	// PRE: entry has been validated
	// POST: Entry is persisted (insert or update)
	Save(ctx context.Context, e domain.Entry) error

	// List returns entries newest first, optionally filtered by status.
	// PRE: limit > 0
	// POST: Returns up to limit entries; status "" matches every status
	List(ctx context.Context, status string, limit int) ([]domain.Entry, error)
}
