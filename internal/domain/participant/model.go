package participant

import (
	"strings"

	"meraki/internal/domain/validation"
)

// Participant is a student entered for one event by one school.
type Participant struct {
	ID             string            `json:"id"`
	RegistrationID string            `json:"registrationId,omitempty" validate:"-"`
	EventID        string            `json:"eventId" validate:"-"`
	SchoolID       string            `json:"schoolId" validate:"-"`
	Name           string            `json:"name" validate:"trimmin=3,max=200"`
	Email          string            `json:"email" validate:"required,email,max=254"`
	Grade          string            `json:"grade" validate:"trimmin=1,max=20"`
	Details        map[string]string `json:"details,omitempty" validate:"omitempty,dive,keys,trimmin=1,max=64,endkeys,max=1000"`
}

// Validate checks the participant form rules. Association ids are not checked
// here; the wizard and the store assign them.
// PRE: Participant struct is populated
// POST: Returns nil if valid, *validation.Error otherwise
func (p *Participant) Validate() error {
	return validation.Struct(p)
}

// Normalize returns a copy with surrounding whitespace trimmed and empty detail
// values dropped.
func (p Participant) Normalize() Participant {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Grade = strings.TrimSpace(p.Grade)
	if len(p.Details) > 0 {
		details := make(map[string]string, len(p.Details))
		for k, v := range p.Details {
			k, v = strings.TrimSpace(k), strings.TrimSpace(v)
			if k == "" || v == "" {
				continue
			}
			details[k] = v
		}
		p.Details = details
	}
	return p
}
