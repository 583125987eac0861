package outbox

import (
	"encoding/json"
	"errors"
	"time"
)

// Status constants for the failed-delivery lifecycle. Entries are only ever
// written after a delivery failed; there is no automatic retry.
const (
	StatusFailed    = "failed"
	StatusDone      = "done"
	StatusAbandoned = "abandoned"
)

// Action types for the deliveries an operator may need to repeat.
const (
	ActionTypeCoordinatorCredentials = "coordinator_credentials"
	ActionTypeContactForward         = "contact_forward"
)

// Domain errors.
var (
	ErrEmptyActionType = errors.New("action type is required")
	ErrEmptyPayload    = errors.New("payload is required")
	ErrInvalidStatus   = errors.New("invalid status transition")
	ErrUnknownAction   = errors.New("unknown action type")
)

// Entry records one notification that could not be delivered.
// Payload never contains a credential; a resend always issues a fresh one.
type Entry struct {
	ID              string    `json:"id"`
	ActionType      string    `json:"actionType"`
	Payload         string    `json:"payload"`
	Status          string    `json:"status"`
	Attempts        int       `json:"attempts"`
	LastAttemptedAt time.Time `json:"lastAttemptedAt"`
	CreatedAt       time.Time `json:"createdAt"`
	ErrorMessage    string    `json:"errorMessage,omitempty"`
}

// CredentialPayload identifies the coordinator whose credentials were not delivered.
type CredentialPayload struct {
	RegistrationID string `json:"registrationId"`
	CoordinatorID  string `json:"coordinatorId"`
	Email          string `json:"email"`
}

// ContactPayload identifies a stored contact message that was not forwarded.
type ContactPayload struct {
	MessageID string `json:"messageId"`
}

// NewFailedEntry builds a failed entry for a delivery that just failed once.
// PRE: payload marshals to JSON
// POST: Status is failed, Attempts is 1, CreatedAt and LastAttemptedAt are now
func NewFailedEntry(id, actionType string, payload any, cause error, now time.Time) (Entry, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		ID:              id,
		ActionType:      actionType,
		Payload:         string(b),
		Status:          StatusFailed,
		Attempts:        1,
		LastAttemptedAt: now,
		CreatedAt:       now,
	}
	if cause != nil {
		e.ErrorMessage = cause.Error()
	}
	return e, e.Validate()
}

// Validate checks that the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Entry) Validate() error {
	if e.ActionType == "" {
		return ErrEmptyActionType
	}
	if e.ActionType != ActionTypeCoordinatorCredentials && e.ActionType != ActionTypeContactForward {
		return ErrUnknownAction
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}

// DecodePayload unmarshals the payload into v.
func (e *Entry) DecodePayload(v any) error {
	return json.Unmarshal([]byte(e.Payload), v)
}

// IsTerminal returns true once an operator resolved the entry.
// PRE: Status field is set
// POST: Returns true for done or abandoned
func (e *Entry) IsTerminal() bool {
	return e.Status == StatusDone || e.Status == StatusAbandoned
}

// MarkAttempt records a manual resend attempt.
// PRE: Entry is not terminal
// POST: Attempts incremented, LastAttemptedAt updated
func (e *Entry) MarkAttempt(now time.Time) error {
	if e.IsTerminal() {
		return ErrInvalidStatus
	}
	e.Attempts++
	e.LastAttemptedAt = now
	return nil
}

// MarkSuccess marks the entry as delivered.
// POST: Status set to done, ErrorMessage cleared
func (e *Entry) MarkSuccess() {
	e.Status = StatusDone
	e.ErrorMessage = ""
}

// MarkFailed records the latest failure; the entry stays failed.
func (e *Entry) MarkFailed(err error) {
	e.Status = StatusFailed
	e.ErrorMessage = err.Error()
}

// MarkAbandoned marks the entry as abandoned by an operator.
// POST: Status set to abandoned
func (e *Entry) MarkAbandoned() error {
	if e.Status == StatusDone {
		return ErrInvalidStatus
	}
	e.Status = StatusAbandoned
	return nil
}
