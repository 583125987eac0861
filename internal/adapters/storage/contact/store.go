package contact

import (
	"context"

	domain "meraki/internal/domain/contact"
)

// Store persists contact form submissions.
type Store interface {
	// Save inserts or updates a message.
	// PRE: m has been validated
	Save(ctx context.Context, m domain.Message) error

	// GetByID retrieves a message by id.
	// POST: wraps sql.ErrNoRows when absent
	GetByID(ctx context.Context, id string) (domain.Message, error)

	// List returns the newest messages first.
	// PRE: limit > 0
	List(ctx context.Context, limit int) ([]domain.Message, error)
}
