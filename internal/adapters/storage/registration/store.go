package registration

import (
	"context"
	"errors"

	"meraki/internal/domain/coordinator"
	domain "meraki/internal/domain/registration"
)

// ErrDuplicateEmail is returned when a coordinator email is already registered.
var ErrDuplicateEmail = errors.New("coordinator email already registered")

// Store persists Registration aggregates in normalized form.
type Store interface {
	// Create inserts the school, registration, coordinator, selected events and
	// participants in one transaction.
	// PRE: every id in the aggregate is assigned; rosters satisfy CheckRosters
	// POST: all rows exist, or none do
	Create(ctx context.Context, reg domain.Registration) error

	// GetByID assembles the aggregate for a registration id.
	// POST: wraps sql.ErrNoRows when absent
	GetByID(ctx context.Context, id string) (domain.Registration, error)

	// GetByCoordinatorEmail assembles the aggregate whose coordinator email
	// matches exactly (case-sensitive).
	// POST: wraps sql.ErrNoRows when absent
	GetByCoordinatorEmail(ctx context.Context, email string) (domain.Registration, error)

	// UpdateCoordinator rewrites name, email and phone of the coordinator with
	// c.ID, provided it belongs to registrationID. The credential hash is untouched.
	// POST: wraps sql.ErrNoRows when no such coordinator exists in that registration
	UpdateCoordinator(ctx context.Context, registrationID string, c coordinator.Coordinator) error

	// UpdateCredential replaces the stored credential hash.
	// POST: wraps sql.ErrNoRows when the id is absent
	UpdateCredential(ctx context.Context, coordinatorID, passwordHash string) error

	// EmailTaken reports whether any coordinator other than excludeID uses email.
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
}
