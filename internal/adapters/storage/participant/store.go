package participant

import (
	"context"

	domain "meraki/internal/domain/participant"
)

// Store persists Participant records created by a registration.
type Store interface {
	// GetByID retrieves a participant by id.
	// POST: wraps sql.ErrNoRows when absent
	GetByID(ctx context.Context, id string) (domain.Participant, error)

	// Update rewrites name, email, grade and details of the participant with
	// p.ID, provided it belongs to registrationID. Event and school links never change.
	// PRE: p has been validated
	// POST: wraps sql.ErrNoRows when absent or owned by another registration
	Update(ctx context.Context, registrationID string, p domain.Participant) error
}
