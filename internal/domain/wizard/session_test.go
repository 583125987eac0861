package wizard

import (
	"errors"
	"testing"

	"meraki/internal/domain/coordinator"
	"meraki/internal/domain/event"
	"meraki/internal/domain/participant"
	"meraki/internal/domain/registration"
	"meraki/internal/domain/school"
	"meraki/internal/domain/validation"
)

func confirmedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession()
	steps := []error{
		Transition(s, func(st SchoolState) (State, error) { return st.Submit(lincolnHigh()) }),
		Transition(s, func(st CoordinatorState) (State, error) { return st.Submit(asha()) }),
		Transition(s, func(st EventsState) (State, error) { return st.Toggle(openEvent("1", 1)) }),
		Transition(s, func(st EventsState) (State, error) { return st.Next() }),
		Transition(s, func(st ParticipantsState) (State, error) { return st.AddParticipant(student("alice")) }),
		Transition(s, func(st ParticipantsState) (State, error) { return st.Next() }),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("step %d error = %v", i, err)
		}
	}
	return s
}

// TestSession_WrongStep tests that a transition for another step is rejected.
func TestSession_WrongStep(t *testing.T) {
	s := NewSession()
	err := Transition(s, func(st EventsState) (State, error) { return st.Next() })
	if !errors.Is(err, ErrWrongStep) {
		t.Errorf("Transition() error = %v, want ErrWrongStep", err)
	}
	if s.State().Step() != StepSchool {
		t.Errorf("state changed to %v", s.State().Step())
	}
}

// TestSession_SubmitLifecycle tests in-flight locking and reset semantics.
func TestSession_SubmitLifecycle(t *testing.T) {
	s := confirmedSession(t)

	reg, err := s.BeginSubmit()
	if err != nil {
		t.Fatalf("BeginSubmit() error = %v", err)
	}
	if reg.Coordinator.Email != "asha@example.com" {
		t.Errorf("Registration() = %+v", reg)
	}
	if _, err := s.BeginSubmit(); !errors.Is(err, ErrSubmissionInFlight) {
		t.Errorf("second BeginSubmit() error = %v", err)
	}
	if err := Transition(s, func(st ConfirmationState) (State, error) { return st.Back(), nil }); !errors.Is(err, ErrSubmissionInFlight) {
		t.Errorf("Back() during submission error = %v", err)
	}

	s.FinishSubmit(false)
	if s.State().Step() != StepConfirmation {
		t.Fatalf("failed submission moved to %v", s.State().Step())
	}

	if _, err := s.BeginSubmit(); err != nil {
		t.Fatalf("retry BeginSubmit() error = %v", err)
	}
	s.FinishSubmit(true)
	if s.State().Step() != StepSchool || s.InFlight() {
		t.Errorf("successful submission did not reset: %v", s.State().Step())
	}
	if st := s.State().(SchoolState); st.Prefill().Name != "" {
		t.Errorf("reset kept school data: %+v", st.Prefill())
	}
}

// TestSession_BeginSubmitBeforeConfirmation tests that an incomplete wizard cannot submit.
func TestSession_BeginSubmitBeforeConfirmation(t *testing.T) {
	if _, err := NewSession().BeginSubmit(); !errors.Is(err, ErrNotConfirming) {
		t.Errorf("BeginSubmit() error = %v", err)
	}
}

// TestReplay tests that API payloads pass through the same rules as the wizard.
func TestReplay(t *testing.T) {
	events := []event.Event{openEvent("1", 2), openEvent("2", 1)}
	complete := map[string][]participant.Participant{
		"1": {student("alice"), student("bobby")},
		"2": {student("carol")},
	}

	conf, err := Replay(lincolnHigh(), asha(), events, complete)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if got := conf.Registration().ParticipantCount(); got != 3 {
		t.Errorf("ParticipantCount() = %d", got)
	}

	tests := []struct {
		name      string
		s         school.School
		c         coordinator.Coordinator
		rosters   map[string][]participant.Participant
		wantField string
		wantErr   error
	}{
		{
			name:      "bad school",
			s:         school.School{Name: "LH"},
			c:         asha(),
			rosters:   complete,
			wantField: "school.name",
		},
		{
			name:      "bad coordinator",
			s:         lincolnHigh(),
			c:         coordinator.Coordinator{Name: "Asha", Email: "x", Phone: "9876543210"},
			rosters:   complete,
			wantField: "coordinator.email",
		},
		{
			name:      "bad participant",
			s:         lincolnHigh(),
			c:         asha(),
			rosters:   map[string][]participant.Participant{"1": {student("alice"), {Name: "bobby", Grade: "9"}}, "2": {student("carol")}},
			wantField: "participants[1][1].email",
		},
		{
			name:    "over capacity",
			s:       lincolnHigh(),
			c:       asha(),
			rosters: map[string][]participant.Participant{"1": {student("alice"), student("bobby"), student("carol")}, "2": {student("davey")}},
			wantErr: ErrEventFull,
		},
		{
			name:    "under capacity",
			s:       lincolnHigh(),
			c:       asha(),
			rosters: map[string][]participant.Participant{"1": {student("alice")}, "2": {student("carol")}},
			wantErr: ErrRostersIncomplete,
		},
		{
			name:    "orphan roster",
			s:       lincolnHigh(),
			c:       asha(),
			rosters: map[string][]participant.Participant{"1": {student("alice"), student("bobby")}, "2": {student("carol")}, "3": {student("davey")}},
			wantErr: registration.ErrOrphanRoster,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Replay(tt.s, tt.c, events, tt.rosters)
			if tt.wantField != "" {
				ve, ok := validation.As(err)
				if !ok {
					t.Fatalf("Replay() error = %v, want validation error", err)
				}
				if _, ok := ve.Fields[tt.wantField]; !ok {
					t.Errorf("fields = %v, want %q", ve.Fields, tt.wantField)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Replay() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestReplay_DuplicateEvent tests that a repeated event id is not treated as a deselect.
func TestReplay_DuplicateEvent(t *testing.T) {
	events := []event.Event{openEvent("1", 1), openEvent("1", 1)}
	_, err := Replay(lincolnHigh(), asha(), events, map[string][]participant.Participant{"1": {student("alice")}})
	if !errors.Is(err, registration.ErrDuplicateEvent) {
		t.Errorf("Replay() error = %v", err)
	}
}
