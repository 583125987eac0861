package event

import (
	"context"

	domain "meraki/internal/domain/event"
)

// Store persists Event catalog entries.
type Store interface {
	// List returns every event ordered by date, then title.
	List(ctx context.Context) ([]domain.Event, error)

	// GetByID retrieves an event by id.
	// POST: wraps sql.ErrNoRows when absent
	GetByID(ctx context.Context, id string) (domain.Event, error)

	// Save inserts or replaces an event.
	// PRE: e has been validated
	Save(ctx context.Context, e domain.Event) error

	// Count returns the number of events.
	Count(ctx context.Context) (int, error)
}
