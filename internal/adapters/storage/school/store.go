package school

import (
	"context"

	domain "meraki/internal/domain/school"
)

// Store persists School records.
type Store interface {
	// GetByID retrieves a school by id.
	// POST: wraps sql.ErrNoRows when absent
	GetByID(ctx context.Context, id string) (domain.School, error)

	// Update rewrites every column of the school with s.ID, provided it is the
	// school of registrationID.
	// PRE: s has been validated
	// POST: wraps sql.ErrNoRows when absent or owned by another registration
	Update(ctx context.Context, registrationID string, s domain.School) error
}
