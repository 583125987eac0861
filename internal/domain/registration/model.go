package registration

import (
	"errors"
	"fmt"
	"time"

	"meraki/internal/domain/coordinator"
	"meraki/internal/domain/participant"
	"meraki/internal/domain/school"
)

// Domain errors
var (
	ErrNoEvents         = errors.New("registration must select at least one event")
	ErrDuplicateEvent   = errors.New("event selected more than once")
	ErrOrphanRoster     = errors.New("participants listed for an event that is not selected")
	ErrRosterOverflow   = errors.New("roster exceeds event capacity")
	ErrRosterIncomplete = errors.New("roster does not match event capacity")
	ErrUnknownEvent     = errors.New("selected event does not exist")
)

// Registration is the aggregate produced by one completed wizard run.
// INVARIANT: keys of Participants equal SelectedEvents once complete
// INVARIANT: len(Participants[e]) <= capacity(e) for every selected event e
type Registration struct {
	ID             string                               `json:"id"`
	School         school.School                        `json:"school"`
	Coordinator    coordinator.Coordinator              `json:"coordinator"`
	SelectedEvents []string                             `json:"selectedEvents"`
	Participants   map[string][]participant.Participant `json:"participants"`
	CreatedAt      time.Time                            `json:"createdAt"`
}

// CheckRosters verifies the aggregate roster invariants against event capacities.
// PRE: capacity returns the max participants for a known event id and false otherwise
// POST: Returns nil when every selected event has exactly its capacity and no orphan keys exist
func (r *Registration) CheckRosters(capacity func(eventID string) (int, bool)) error {
	if len(r.SelectedEvents) == 0 {
		return ErrNoEvents
	}
	selected := make(map[string]bool, len(r.SelectedEvents))
	for _, id := range r.SelectedEvents {
		if selected[id] {
			return fmt.Errorf("%w: %s", ErrDuplicateEvent, id)
		}
		selected[id] = true
	}
	for id := range r.Participants {
		if !selected[id] {
			return fmt.Errorf("%w: %s", ErrOrphanRoster, id)
		}
	}
	for _, id := range r.SelectedEvents {
		limit, ok := capacity(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownEvent, id)
		}
		n := len(r.Participants[id])
		if n > limit {
			return fmt.Errorf("%w: %s has %d of %d", ErrRosterOverflow, id, n, limit)
		}
		if n != limit {
			return fmt.Errorf("%w: %s has %d of %d", ErrRosterIncomplete, id, n, limit)
		}
	}
	return nil
}

// ParticipantCount returns the total number of participants across all rosters.
func (r *Registration) ParticipantCount() int {
	n := 0
	for _, roster := range r.Participants {
		n += len(roster)
	}
	return n
}

// FindParticipant returns the participant with the given id, if present.
func (r *Registration) FindParticipant(id string) (participant.Participant, bool) {
	for _, roster := range r.Participants {
		for _, p := range roster {
			if p.ID == id {
				return p, true
			}
		}
	}
	return participant.Participant{}, false
}
