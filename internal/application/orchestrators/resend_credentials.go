package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"meraki/internal/adapters/email"
	"meraki/internal/domain/coordinator"
	"meraki/internal/domain/registration"
)

// RegistrationStoreForResend defines the store interface needed by ResendCredentials.
type RegistrationStoreForResend interface {
	GetByID(ctx context.Context, id string) (registration.Registration, error)
	GetByCoordinatorEmail(ctx context.Context, email string) (registration.Registration, error)
	UpdateCredential(ctx context.Context, coordinatorID, passwordHash string) error
}

// ResendCredentialsInput carries an operator resend request. A recorded
// delivery names the registration, which survives later email edits.
type ResendCredentialsInput struct {
	Email          string `json:"email"`
	Password       string `json:"password,omitempty"`
	RegistrationID string `json:"-"`
}

// ResendCredentialsDeps holds dependencies for ResendCredentials.
type ResendCredentialsDeps struct {
	Registrations      RegistrationStoreForResend
	Cache              RegistrationCache
	Sender             email.Sender
	LoginURL           string
	GenerateCredential func() (string, error)
}

// ExecuteResendCredentials rotates a coordinator's credential and emails it.
// A supplied password is used when it meets the credential policy; otherwise
// a fresh one is generated. Stored hashes cannot be reversed, so a resend
// always rotates.
// PRE: input.RegistrationID names a registration, or input.Email matches a coordinator exactly
// POST: on success or *NotificationError the new hash is stored and the old credential no longer works
// POST: returns the registration id
func ExecuteResendCredentials(ctx context.Context, input ResendCredentialsInput, deps ResendCredentialsDeps) (string, error) {
	ctx, span := tracer.Start(ctx, "coordinator.resend_credentials")
	defer span.End()

	var reg registration.Registration
	var err error
	switch {
	case input.RegistrationID != "":
		reg, err = deps.Registrations.GetByID(ctx, input.RegistrationID)
	case input.Email != "":
		reg, err = deps.Registrations.GetByCoordinatorEmail(ctx, input.Email)
	default:
		return "", ErrRegistrationNotFound
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrRegistrationNotFound
	}
	if err != nil {
		return "", err
	}

	credential := input.Password
	if coordinator.CheckPolicy(credential) != nil {
		generate := deps.GenerateCredential
		if generate == nil {
			generate = coordinator.GenerateCredential
		}
		if credential, err = generate(); err != nil {
			return "", err
		}
	}
	c := reg.Coordinator
	if err := c.SetCredential(credential); err != nil {
		return "", err
	}
	if err := deps.Registrations.UpdateCredential(ctx, c.ID, c.PasswordHash); err != nil {
		return "", &PersistenceError{Op: "credential", Err: err}
	}
	deps.Cache.Invalidate(reg.ID)
	slog.Info("auth_event", "event", "credential_rotated", "registration_id", reg.ID)

	if err := deliverCredential(ctx, deps.Sender, deps.LoginURL, c, credential); err != nil {
		span.RecordError(err)
		return reg.ID, &NotificationError{RegistrationID: reg.ID, Err: err}
	}
	return reg.ID, nil
}
