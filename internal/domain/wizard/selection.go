package wizard

import (
	"meraki/internal/domain/event"
	"meraki/internal/domain/participant"
)

// Roster is one selected event and the participants entered for it.
type Roster struct {
	Event        event.Event
	Participants []participant.Participant
}

// Full reports whether the roster has reached the event's capacity.
func (r Roster) Full() bool {
	return len(r.Participants) >= r.Event.MaxParticipants
}

// Remaining returns how many more participants the roster needs.
func (r Roster) Remaining() int {
	if n := r.Event.MaxParticipants - len(r.Participants); n > 0 {
		return n
	}
	return 0
}

// Selection is the ordered set of selected events with their rosters.
// Values are immutable: every change returns a new Selection sharing nothing
// mutable with the old one.
type Selection struct {
	rosters []Roster
}

// Len returns the number of selected events.
func (s Selection) Len() int { return len(s.rosters) }

// Has reports whether eventID is selected.
func (s Selection) Has(eventID string) bool { return s.index(eventID) >= 0 }

// IDs returns the selected event ids in selection order.
func (s Selection) IDs() []string {
	ids := make([]string, len(s.rosters))
	for i, r := range s.rosters {
		ids[i] = r.Event.ID
	}
	return ids
}

// Rosters returns a copy of the rosters in selection order.
func (s Selection) Rosters() []Roster {
	out := make([]Roster, len(s.rosters))
	for i, r := range s.rosters {
		out[i] = Roster{Event: r.Event, Participants: append([]participant.Participant(nil), r.Participants...)}
	}
	return out
}

func (s Selection) index(eventID string) int {
	for i, r := range s.rosters {
		if r.Event.ID == eventID {
			return i
		}
	}
	return -1
}

func (s Selection) with(ev event.Event) Selection {
	out := make([]Roster, len(s.rosters), len(s.rosters)+1)
	copy(out, s.rosters)
	return Selection{rosters: append(out, Roster{Event: ev})}
}

func (s Selection) without(eventID string) Selection {
	out := make([]Roster, 0, len(s.rosters))
	for _, r := range s.rosters {
		if r.Event.ID != eventID {
			out = append(out, r)
		}
	}
	return Selection{rosters: out}
}

func (s Selection) appendAt(i int, p participant.Participant) Selection {
	out := make([]Roster, len(s.rosters))
	copy(out, s.rosters)
	ps := make([]participant.Participant, len(out[i].Participants), len(out[i].Participants)+1)
	copy(ps, out[i].Participants)
	out[i].Participants = append(ps, p)
	return Selection{rosters: out}
}

func (s Selection) removeAt(i, index int) Selection {
	out := make([]Roster, len(s.rosters))
	copy(out, s.rosters)
	old := out[i].Participants
	ps := make([]participant.Participant, 0, len(old)-1)
	ps = append(ps, old[:index]...)
	out[i].Participants = append(ps, old[index+1:]...)
	return Selection{rosters: out}
}
