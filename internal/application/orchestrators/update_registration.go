package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	registrationStore "meraki/internal/adapters/storage/registration"
	"meraki/internal/domain/coordinator"
	"meraki/internal/domain/participant"
	"meraki/internal/domain/school"
	"meraki/internal/domain/validation"
)

// SchoolStoreForUpdate defines the store interface needed by UpdateSchool.
type SchoolStoreForUpdate interface {
	Update(ctx context.Context, registrationID string, s school.School) error
}

// CoordinatorStoreForUpdate defines the store interface needed by UpdateCoordinator.
type CoordinatorStoreForUpdate interface {
	UpdateCoordinator(ctx context.Context, registrationID string, c coordinator.Coordinator) error
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
}

// ParticipantStoreForUpdate defines the store interface needed by UpdateParticipant.
type ParticipantStoreForUpdate interface {
	GetByID(ctx context.Context, id string) (participant.Participant, error)
	Update(ctx context.Context, registrationID string, p participant.Participant) error
}

// UpdateSchoolInput carries a dashboard school edit.
type UpdateSchoolInput struct {
	RegistrationID string
	School         school.School
}

// UpdateSchoolDeps holds dependencies for UpdateSchool.
type UpdateSchoolDeps struct {
	Schools SchoolStoreForUpdate
	Cache   RegistrationCache
}

// ExecuteUpdateSchool validates and saves a school edit.
// PRE: input.School.ID is the record being edited
// POST: on success the cached aggregate is invalidated and the saved school returned
// POST: on any failure the cache is untouched
// INVARIANT: only the school of input.RegistrationID can change
func ExecuteUpdateSchool(ctx context.Context, input UpdateSchoolInput, deps UpdateSchoolDeps) (school.School, error) {
	ctx, span := startEdit(ctx, "school", input.RegistrationID, input.School.ID)
	defer span.End()

	s := input.School.Normalize()
	if err := s.Validate(); err != nil {
		return school.School{}, err
	}
	if err := deps.Schools.Update(ctx, input.RegistrationID, s); err != nil {
		return school.School{}, editError("school", s.ID, err)
	}
	deps.Cache.Invalidate(input.RegistrationID)
	slog.Info("dashboard_edit", "entity", "school", "id", s.ID, "registration_id", input.RegistrationID)
	return s, nil
}

// UpdateCoordinatorInput carries a dashboard coordinator edit.
type UpdateCoordinatorInput struct {
	RegistrationID string
	Coordinator    coordinator.Coordinator
}

// UpdateCoordinatorDeps holds dependencies for UpdateCoordinator.
type UpdateCoordinatorDeps struct {
	Coordinators CoordinatorStoreForUpdate
	Cache        RegistrationCache
}

// ExecuteUpdateCoordinator validates and saves a coordinator edit. The
// credential is never changed here.
// PRE: input.Coordinator.ID is the record being edited
// POST: on success the cached aggregate is invalidated
// INVARIANT: the email stays unique across coordinators
func ExecuteUpdateCoordinator(ctx context.Context, input UpdateCoordinatorInput, deps UpdateCoordinatorDeps) (coordinator.Coordinator, error) {
	ctx, span := startEdit(ctx, "coordinator", input.RegistrationID, input.Coordinator.ID)
	defer span.End()

	c := input.Coordinator.Normalize()
	c.PasswordHash = ""
	if err := c.Validate(); err != nil {
		return coordinator.Coordinator{}, err
	}
	taken, err := deps.Coordinators.EmailTaken(ctx, c.Email, c.ID)
	if err != nil {
		return coordinator.Coordinator{}, &PersistenceError{Op: "coordinator", Err: err}
	}
	if taken {
		return coordinator.Coordinator{}, validation.Fail("email", "is already registered")
	}
	if err := deps.Coordinators.UpdateCoordinator(ctx, input.RegistrationID, c); err != nil {
		if errors.Is(err, registrationStore.ErrDuplicateEmail) {
			return coordinator.Coordinator{}, validation.Fail("email", "is already registered")
		}
		return coordinator.Coordinator{}, editError("coordinator", c.ID, err)
	}
	deps.Cache.Invalidate(input.RegistrationID)
	slog.Info("dashboard_edit", "entity", "coordinator", "id", c.ID, "registration_id", input.RegistrationID)
	return c, nil
}

// UpdateParticipantInput carries a dashboard participant edit.
type UpdateParticipantInput struct {
	RegistrationID string
	Participant    participant.Participant
}

// UpdateParticipantDeps holds dependencies for UpdateParticipant.
type UpdateParticipantDeps struct {
	Participants ParticipantStoreForUpdate
	Cache        RegistrationCache
}

// ExecuteUpdateParticipant validates and saves a participant edit. The
// participant stays on its event and school.
// PRE: input.Participant.ID is the record being edited
// POST: on success the cached aggregate is invalidated and the stored participant
// returned, or the validated input when the re-read fails
func ExecuteUpdateParticipant(ctx context.Context, input UpdateParticipantInput, deps UpdateParticipantDeps) (participant.Participant, error) {
	ctx, span := startEdit(ctx, "participant", input.RegistrationID, input.Participant.ID)
	defer span.End()

	p := input.Participant.Normalize()
	if err := p.Validate(); err != nil {
		return participant.Participant{}, err
	}
	if err := deps.Participants.Update(ctx, input.RegistrationID, p); err != nil {
		return participant.Participant{}, editError("participant", p.ID, err)
	}
	deps.Cache.Invalidate(input.RegistrationID)

	slog.Info("dashboard_edit", "entity", "participant", "id", p.ID, "registration_id", input.RegistrationID)

	// The write has committed; a failed re-read must not report the edit as lost.
	saved, err := deps.Participants.GetByID(ctx, p.ID)
	if err != nil {
		slog.Warn("dashboard_edit_reread_failed", "entity", "participant", "id", p.ID, "error", err)
		return p, nil
	}
	return saved, nil
}

func startEdit(ctx context.Context, entity, registrationID, id string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "dashboard.update_"+entity)
	span.SetAttributes(attribute.String("registration.id", registrationID), attribute.String("entity.id", id))
	return ctx, span
}

// editError maps a missing or foreign record to ErrNotFound and anything else
// to a PersistenceError.
func editError(entity, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	slog.Error("dashboard_edit_failed", "entity", entity, "id", id, "error", err)
	return &PersistenceError{Op: entity, Err: err}
}
