package orchestrators

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"meraki/internal/adapters/telemetry"
)

// Errors shared by the registration orchestrators.
var (
	ErrRegistrationNotFound = errors.New("no registration found for that email")
	ErrInvalidCredential    = errors.New("invalid credential")
	ErrNotFound             = errors.New("not found")
)

// PersistenceError reports that a write to the store failed. Nothing was saved.
type PersistenceError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("could not save %s: %v", e.Op, e.Err)
}

// Unwrap exposes the store error.
func (e *PersistenceError) Unwrap() error { return e.Err }

// NotificationError reports that a registration was saved but its coordinator
// could not be emailed. The registration id lets an operator resend.
type NotificationError struct {
	RegistrationID string
	Err            error
}

// Error implements error.
func (e *NotificationError) Error() string {
	return fmt.Sprintf("registration %s saved but credentials were not delivered: %v", e.RegistrationID, e.Err)
}

// Unwrap exposes the sender error.
func (e *NotificationError) Unwrap() error { return e.Err }

var tracer = telemetry.Tracer("meraki/orchestrators")

func newID() string { return uuid.New().String() }

func idFunc(f func() string) func() string {
	if f == nil {
		return newID
	}
	return f
}

func clockFunc(f func() time.Time) func() time.Time {
	if f == nil {
		return time.Now
	}
	return f
}
