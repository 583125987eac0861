package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"meraki/internal/adapters/email"
	registrationStore "meraki/internal/adapters/storage/registration"
	"meraki/internal/domain/coordinator"
	"meraki/internal/domain/event"
	"meraki/internal/domain/outbox"
	"meraki/internal/domain/participant"
	"meraki/internal/domain/registration"
	"meraki/internal/domain/school"
	"meraki/internal/domain/validation"
	"meraki/internal/domain/wizard"
)

// RegistrationStoreForSubmit defines the store interface needed by SubmitRegistration.
type RegistrationStoreForSubmit interface {
	Create(ctx context.Context, reg registration.Registration) error
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
}

// EventLookup resolves catalog events by id.
type EventLookup interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
}

// OutboxWriter records deliveries that failed.
type OutboxWriter interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// SubmitRegistrationInput carries a complete registration payload. Both the
// interactive wizard and the JSON API submit through this shape.
type SubmitRegistrationInput struct {
	School         school.School                        `json:"school"`
	Coordinator    coordinator.Coordinator              `json:"coordinator"`
	SelectedEvents []string                             `json:"selectedEvents"`
	Participants   map[string][]participant.Participant `json:"participants"`
}

// InputFromRegistration converts a wizard aggregate into submission input.
func InputFromRegistration(reg registration.Registration) SubmitRegistrationInput {
	return SubmitRegistrationInput{
		School:         reg.School,
		Coordinator:    reg.Coordinator,
		SelectedEvents: reg.SelectedEvents,
		Participants:   reg.Participants,
	}
}

// SubmitRegistrationDeps holds dependencies for SubmitRegistration.
type SubmitRegistrationDeps struct {
	Registrations      RegistrationStoreForSubmit
	Events             EventLookup
	Sender             email.Sender
	Outbox             OutboxWriter
	LoginURL           string
	GenerateID         func() string
	GenerateCredential func() (string, error)
	Now                func() time.Time
}

// ExecuteSubmitRegistration replays the payload through the wizard rules,
// persists the aggregate and emails the coordinator a fresh credential.
// PRE: input is a complete payload; events are looked up at submission time
// POST: on *validation.Error nothing was written
// POST: on *PersistenceError nothing was written
// POST: on *NotificationError the registration exists and a failed outbox entry records it
// INVARIANT: the plaintext credential exists only in memory and in the email body
func ExecuteSubmitRegistration(ctx context.Context, input SubmitRegistrationInput, deps SubmitRegistrationDeps) (registration.Registration, error) {
	ctx, span := tracer.Start(ctx, "registration.submit")
	defer span.End()

	reg, err := buildRegistration(ctx, input, deps.Events)
	if err != nil {
		span.SetStatus(codes.Error, "invalid")
		return registration.Registration{}, err
	}

	taken, err := deps.Registrations.EmailTaken(ctx, reg.Coordinator.Email, "")
	if err != nil {
		return registration.Registration{}, &PersistenceError{Op: "registration", Err: err}
	}
	if taken {
		return registration.Registration{}, validation.Fail("coordinator.email", "is already registered")
	}

	genID := idFunc(deps.GenerateID)
	assignIDs(&reg, genID)
	reg.CreatedAt = clockFunc(deps.Now)().UTC()

	generate := deps.GenerateCredential
	if generate == nil {
		generate = coordinator.GenerateCredential
	}
	credential, err := generate()
	if err != nil {
		return registration.Registration{}, fmt.Errorf("generate credential: %w", err)
	}
	if err := reg.Coordinator.SetCredential(credential); err != nil {
		return registration.Registration{}, fmt.Errorf("hash credential: %w", err)
	}

	if err := deps.Registrations.Create(ctx, reg); err != nil {
		if errors.Is(err, registrationStore.ErrDuplicateEmail) {
			return registration.Registration{}, validation.Fail("coordinator.email", "is already registered")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence")
		slog.Error("registration_persist_failed", "error", err)
		return registration.Registration{}, &PersistenceError{Op: "registration", Err: err}
	}
	span.SetAttributes(
		attribute.String("registration.id", reg.ID),
		attribute.Int("registration.events", len(reg.SelectedEvents)),
		attribute.Int("registration.participants", reg.ParticipantCount()),
	)
	slog.Info("registration_submitted", "registration_id", reg.ID, "school", reg.School.Name,
		"events", len(reg.SelectedEvents), "participants", reg.ParticipantCount())

	if err := deliverCredential(ctx, deps.Sender, deps.LoginURL, reg.Coordinator, credential); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "notification")
		recordFailedDelivery(ctx, deps.Outbox, genID(), outbox.ActionTypeCoordinatorCredentials,
			outbox.CredentialPayload{RegistrationID: reg.ID, CoordinatorID: reg.Coordinator.ID, Email: reg.Coordinator.Email},
			err, clockFunc(deps.Now)())
		return reg, &NotificationError{RegistrationID: reg.ID, Err: err}
	}
	return reg, nil
}

// buildRegistration resolves the selected events and replays every step.
func buildRegistration(ctx context.Context, input SubmitRegistrationInput, events EventLookup) (registration.Registration, error) {
	if len(input.SelectedEvents) == 0 {
		return registration.Registration{}, validation.Fail("selectedEvents", wizard.ErrNoEventsSelected.Error())
	}
	resolved := make([]event.Event, 0, len(input.SelectedEvents))
	for _, id := range input.SelectedEvents {
		ev, err := events.GetByID(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return registration.Registration{}, validation.Fail("selectedEvents", fmt.Sprintf("%s: %s", registration.ErrUnknownEvent, id))
		}
		if err != nil {
			return registration.Registration{}, &PersistenceError{Op: "registration", Err: err}
		}
		resolved = append(resolved, ev)
	}

	confirm, err := wizard.Replay(input.School, input.Coordinator, resolved, input.Participants)
	if err != nil {
		return registration.Registration{}, asFieldError(err)
	}
	reg := confirm.Registration()
	limits := make(map[string]int, len(resolved))
	for _, ev := range resolved {
		limits[ev.ID] = ev.MaxParticipants
	}
	if err := reg.CheckRosters(func(id string) (int, bool) { n, ok := limits[id]; return n, ok }); err != nil {
		return registration.Registration{}, asFieldError(err)
	}
	return reg, nil
}

// asFieldError maps wizard and aggregate rule failures onto the form field they concern.
func asFieldError(err error) error {
	if _, ok := validation.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, registration.ErrUnknownEvent),
		errors.Is(err, registration.ErrDuplicateEvent),
		errors.Is(err, registration.ErrNoEvents),
		errors.Is(err, wizard.ErrRegistrationClosed),
		errors.Is(err, wizard.ErrInvalidEvent),
		errors.Is(err, wizard.ErrNoEventsSelected):
		return validation.Fail("selectedEvents", err.Error())
	default:
		return validation.Fail("participants", err.Error())
	}
}

// assignIDs gives every entity in a fresh aggregate its id and back-references.
func assignIDs(reg *registration.Registration, genID func() string) {
	reg.ID = genID()
	reg.School.ID = genID()
	reg.Coordinator.ID = genID()
	for eventID, roster := range reg.Participants {
		for i := range roster {
			roster[i].ID = genID()
			roster[i].RegistrationID = reg.ID
			roster[i].SchoolID = reg.School.ID
			roster[i].EventID = eventID
		}
	}
}

// deliverCredential emails a plaintext credential to a coordinator.
func deliverCredential(ctx context.Context, sender email.Sender, loginURL string, c coordinator.Coordinator, credential string) error {
	req, err := email.CredentialMessage(c.Name, c.Email, credential, loginURL)
	if err != nil {
		return err
	}
	if _, err := sender.Send(ctx, req); err != nil {
		slog.Warn("credential_delivery_failed", "coordinator_id", c.ID, "error", err.Error())
		return err
	}
	slog.Info("credential_delivered", "coordinator_id", c.ID)
	return nil
}

// recordFailedDelivery writes a failed outbox entry. A write failure is only logged.
func recordFailedDelivery(ctx context.Context, store OutboxWriter, id, actionType string, payload any, cause error, now time.Time) {
	if store == nil {
		return
	}
	entry, err := outbox.NewFailedEntry(id, actionType, payload, cause, now)
	if err == nil {
		err = store.Save(ctx, entry)
	}
	if err != nil {
		slog.Error("outbox_record_failed", "action_type", actionType, "error", err.Error())
		return
	}
	slog.Info("outbox_recorded", "entry_id", id, "action_type", actionType)
}
