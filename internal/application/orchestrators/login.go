package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"meraki/internal/domain/registration"
)

// RegistrationStoreForLogin defines the store interface needed by Login.
type RegistrationStoreForLogin interface {
	GetByCoordinatorEmail(ctx context.Context, email string) (registration.Registration, error)
}

// RegistrationCache holds the aggregates of signed-in coordinators.
type RegistrationCache interface {
	Put(reg registration.Registration)
	Invalidate(id string)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Registrations RegistrationStoreForLogin
	Cache         RegistrationCache
}

// ExecuteLogin checks a coordinator's credential and caches their registration.
// The email must match exactly; case is significant.
// PRE: none
// POST: on success the aggregate is in the cache and returned
// POST: on ErrRegistrationNotFound or ErrInvalidCredential the cache is untouched
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (registration.Registration, error) {
	ctx, span := tracer.Start(ctx, "coordinator.login")
	defer span.End()

	if input.Email == "" {
		return registration.Registration{}, ErrRegistrationNotFound
	}
	reg, err := deps.Registrations.GetByCoordinatorEmail(ctx, input.Email)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Info("auth_event", "event", "login_failed", "reason", "not_found")
		return registration.Registration{}, ErrRegistrationNotFound
	}
	if err != nil {
		return registration.Registration{}, err
	}

	if err := reg.Coordinator.CheckCredential(input.Password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "registration_id", reg.ID, "reason", "wrong_credential")
		return registration.Registration{}, ErrInvalidCredential
	}

	deps.Cache.Put(reg)
	span.SetAttributes(attribute.String("registration.id", reg.ID))
	slog.Info("auth_event", "event", "login_success", "registration_id", reg.ID)
	return reg, nil
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Cache RegistrationCache
}

// ExecuteLogout evicts the coordinator's cached aggregate. The caller clears
// the session cookie; there is no server-side session to delete.
// POST: the next dashboard read for registrationID reloads from the store
func ExecuteLogout(_ context.Context, registrationID string, deps LogoutDeps) {
	if registrationID == "" {
		return
	}
	deps.Cache.Invalidate(registrationID)
	slog.Info("auth_event", "event", "logout", "registration_id", registrationID)
}
