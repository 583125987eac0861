// Package wizard models the five-step registration flow as a tagged union of
// per-step states. Each state holds only what is valid at its step and every
// transition returns a new state value, so a field can never be read before the
// step that produced it has completed.
package wizard

import (
	"errors"

	"meraki/internal/domain/coordinator"
	"meraki/internal/domain/event"
	"meraki/internal/domain/participant"
	"meraki/internal/domain/registration"
	"meraki/internal/domain/school"
)

// Step identifies a wizard step.
type Step int

// Wizard steps in forward order.
const (
	StepSchool Step = iota
	StepCoordinator
	StepEvents
	StepParticipants
	StepConfirmation
)

var stepNames = [...]string{"school", "coordinator", "events", "participants", "confirmation"}

// String returns the lowercase step name used in URLs and templates.
func (s Step) String() string {
	if s < StepSchool || s > StepConfirmation {
		return "unknown"
	}
	return stepNames[s]
}

// Transition errors
var (
	ErrRegistrationClosed = errors.New("registration for this event is closed")
	ErrInvalidEvent       = errors.New("event has no participant capacity")
	ErrNoEventsSelected   = errors.New("select at least one event")
	ErrEventNotSelected   = errors.New("event is not selected")
	ErrEventFull          = errors.New("event roster is already full")
	ErrRostersComplete    = errors.New("every selected event already has a full roster")
	ErrRostersIncomplete  = errors.New("every selected event needs exactly its maximum number of participants")
	ErrParticipantIndex   = errors.New("participant index out of range")
)

// State is implemented only by the five step types in this package.
type State interface {
	Step() Step
	sealed()
}

// carry holds data entered at later steps so that moving back and forward
// again restores it.
type carry struct {
	coordinator *coordinator.Coordinator
	selection   Selection
}

// Start returns the initial wizard state.
func Start() SchoolState {
	return SchoolState{}
}

// SchoolState collects the school details.
type SchoolState struct {
	prior *school.School
	carry carry
}

func (SchoolState) Step() Step { return StepSchool }
func (SchoolState) sealed()    {}

// Prefill returns the previously submitted school, if the user came back to this step.
func (st SchoolState) Prefill() school.School {
	if st.prior == nil {
		return school.School{}
	}
	return *st.prior
}

// Submit validates the school form and advances to the coordinator step.
// PRE: none
// POST: on success the returned state holds the normalized school, replacing any prior one
// POST: on failure returns *validation.Error and the caller keeps the current state
func (st SchoolState) Submit(s school.School) (CoordinatorState, error) {
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return CoordinatorState{}, err
	}
	return CoordinatorState{school: s, carry: st.carry}, nil
}

// CoordinatorState collects the coordinator details.
type CoordinatorState struct {
	school school.School
	carry  carry
}

func (CoordinatorState) Step() Step { return StepCoordinator }
func (CoordinatorState) sealed()    {}

// School returns the school accepted at the previous step.
func (st CoordinatorState) School() school.School { return st.school }

// Prefill returns the coordinator entered earlier, if any.
func (st CoordinatorState) Prefill() coordinator.Coordinator {
	if st.carry.coordinator == nil {
		return coordinator.Coordinator{}
	}
	return *st.carry.coordinator
}

// Submit validates the coordinator form and advances to event selection.
// POST: any selection made before moving back is restored
func (st CoordinatorState) Submit(c coordinator.Coordinator) (EventsState, error) {
	c = c.Normalize()
	c.PasswordHash = ""
	if err := c.Validate(); err != nil {
		return EventsState{}, err
	}
	return EventsState{school: st.school, coordinator: c, selection: st.carry.selection}, nil
}

// Back returns to the school step with the school prefilled.
func (st CoordinatorState) Back() SchoolState {
	s := st.school
	return SchoolState{prior: &s, carry: st.carry}
}

// EventsState collects the selected events.
type EventsState struct {
	school      school.School
	coordinator coordinator.Coordinator
	selection   Selection
}

func (EventsState) Step() Step { return StepEvents }
func (EventsState) sealed()    {}

// School returns the accepted school.
func (st EventsState) School() school.School { return st.school }

// Coordinator returns the accepted coordinator.
func (st EventsState) Coordinator() coordinator.Coordinator { return st.coordinator }

// Selection returns the current event selection.
func (st EventsState) Selection() Selection { return st.selection }

// Toggle selects ev, or deselects it when already selected. Deselecting
// discards that event's roster in the same step.
// PRE: ev carries its current capacity and open flag
// POST: the selection and its rosters change together; no orphaned roster remains
func (st EventsState) Toggle(ev event.Event) (EventsState, error) {
	if st.selection.Has(ev.ID) {
		st.selection = st.selection.without(ev.ID)
		return st, nil
	}
	if !ev.RegistrationOpen {
		return st, ErrRegistrationClosed
	}
	if ev.MaxParticipants < 1 {
		return st, ErrInvalidEvent
	}
	st.selection = st.selection.with(ev)
	return st, nil
}

// Next advances to participant entry.
// PRE: at least one event is selected
func (st EventsState) Next() (ParticipantsState, error) {
	if st.selection.Len() == 0 {
		return ParticipantsState{}, ErrNoEventsSelected
	}
	return ParticipantsState{school: st.school, coordinator: st.coordinator, selection: st.selection}, nil
}

// Back returns to the coordinator step, keeping the selection for later.
func (st EventsState) Back() CoordinatorState {
	c := st.coordinator
	return CoordinatorState{school: st.school, carry: carry{coordinator: &c, selection: st.selection}}
}

// ParticipantsState collects the per-event rosters.
type ParticipantsState struct {
	school      school.School
	coordinator coordinator.Coordinator
	selection   Selection
}

func (ParticipantsState) Step() Step { return StepParticipants }
func (ParticipantsState) sealed()    {}

// Rosters returns the rosters in selection order.
func (st ParticipantsState) Rosters() []Roster { return st.selection.Rosters() }

// Focus returns the first selected event, in selection order, whose roster is
// below capacity. ok is false once every roster is full.
func (st ParticipantsState) Focus() (ev event.Event, ok bool) {
	for _, r := range st.selection.rosters {
		if !r.Full() {
			return r.Event, true
		}
	}
	return event.Event{}, false
}

// Complete reports whether every selected roster is exactly at capacity.
func (st ParticipantsState) Complete() bool {
	_, open := st.Focus()
	return !open
}

// AddParticipant appends p to the roster of the focused event.
// POST: rejected with ErrRostersComplete when every roster is full
func (st ParticipantsState) AddParticipant(p participant.Participant) (ParticipantsState, error) {
	ev, ok := st.Focus()
	if !ok {
		return st, ErrRostersComplete
	}
	return st.AddParticipantTo(ev.ID, p)
}

// AddParticipantTo appends p to the roster of a specific selected event.
// PRE: eventID is selected
// POST: a full roster is never extended; ErrEventFull is returned instead
func (st ParticipantsState) AddParticipantTo(eventID string, p participant.Participant) (ParticipantsState, error) {
	i := st.selection.index(eventID)
	if i < 0 {
		return st, ErrEventNotSelected
	}
	if st.selection.rosters[i].Full() {
		return st, ErrEventFull
	}
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return st, err
	}
	p.ID = ""
	p.EventID = eventID
	st.selection = st.selection.appendAt(i, p)
	return st, nil
}

// RemoveParticipant drops the participant at index from an event's roster,
// which moves focus back to that event if it was complete.
func (st ParticipantsState) RemoveParticipant(eventID string, index int) (ParticipantsState, error) {
	i := st.selection.index(eventID)
	if i < 0 {
		return st, ErrEventNotSelected
	}
	if index < 0 || index >= len(st.selection.rosters[i].Participants) {
		return st, ErrParticipantIndex
	}
	st.selection = st.selection.removeAt(i, index)
	return st, nil
}

// Next advances to confirmation.
// PRE: every selected roster holds exactly its event's capacity
func (st ParticipantsState) Next() (ConfirmationState, error) {
	if !st.Complete() {
		return ConfirmationState{}, ErrRostersIncomplete
	}
	return ConfirmationState{school: st.school, coordinator: st.coordinator, selection: st.selection}, nil
}

// Back returns to event selection without losing rosters.
func (st ParticipantsState) Back() EventsState {
	return EventsState{school: st.school, coordinator: st.coordinator, selection: st.selection}
}

// ConfirmationState holds the complete aggregate awaiting submission.
type ConfirmationState struct {
	school      school.School
	coordinator coordinator.Coordinator
	selection   Selection
}

func (ConfirmationState) Step() Step { return StepConfirmation }
func (ConfirmationState) sealed()    {}

// Rosters returns the final rosters in selection order.
func (st ConfirmationState) Rosters() []Roster { return st.selection.Rosters() }

// Registration returns the aggregate for submission. Ids are not yet assigned.
// POST: SelectedEvents keeps selection order and Participants has exactly the same keys
func (st ConfirmationState) Registration() registration.Registration {
	reg := registration.Registration{
		School:         st.school,
		Coordinator:    st.coordinator,
		SelectedEvents: make([]string, 0, st.selection.Len()),
		Participants:   make(map[string][]participant.Participant, st.selection.Len()),
	}
	for _, r := range st.selection.rosters {
		reg.SelectedEvents = append(reg.SelectedEvents, r.Event.ID)
		reg.Participants[r.Event.ID] = append([]participant.Participant(nil), r.Participants...)
	}
	return reg
}

// Back returns to participant entry with nothing lost.
func (st ConfirmationState) Back() ParticipantsState {
	return ParticipantsState{school: st.school, coordinator: st.coordinator, selection: st.selection}
}
