package wizard

import (
	"fmt"

	"meraki/internal/domain/coordinator"
	"meraki/internal/domain/event"
	"meraki/internal/domain/participant"
	"meraki/internal/domain/registration"
	"meraki/internal/domain/school"
	"meraki/internal/domain/validation"
)

// Replay drives a fresh wizard through every step with a complete payload, so
// API submissions obey exactly the same rules as the interactive flow.
// PRE: events are the selected events in selection order, resolved from the catalog
// POST: returns the confirmation state, or the first step's error with field names
// scoped by step ("school.name", "participants[1][0].email")
func Replay(s school.School, c coordinator.Coordinator, events []event.Event, rosters map[string][]participant.Participant) (ConfirmationState, error) {
	coord, err := Start().Submit(s)
	if err != nil {
		return ConfirmationState{}, validation.Prefix(err, "school")
	}
	evs, err := coord.Submit(c)
	if err != nil {
		return ConfirmationState{}, validation.Prefix(err, "coordinator")
	}
	for _, ev := range events {
		if evs.Selection().Has(ev.ID) {
			return ConfirmationState{}, fmt.Errorf("%w: %s", registration.ErrDuplicateEvent, ev.ID)
		}
		if evs, err = evs.Toggle(ev); err != nil {
			return ConfirmationState{}, fmt.Errorf("event %s: %w", ev.ID, err)
		}
	}
	for id := range rosters {
		if !evs.Selection().Has(id) {
			return ConfirmationState{}, fmt.Errorf("%w: %s", registration.ErrOrphanRoster, id)
		}
	}
	parts, err := evs.Next()
	if err != nil {
		return ConfirmationState{}, err
	}
	for _, ev := range events {
		for i, p := range rosters[ev.ID] {
			if parts, err = parts.AddParticipantTo(ev.ID, p); err != nil {
				if _, ok := validation.As(err); ok {
					return ConfirmationState{}, validation.Prefix(err, fmt.Sprintf("participants[%s][%d]", ev.ID, i))
				}
				return ConfirmationState{}, fmt.Errorf("event %s: %w", ev.ID, err)
			}
		}
	}
	return parts.Next()
}
