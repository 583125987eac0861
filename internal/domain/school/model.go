package school

import (
	"strings"

	"meraki/internal/domain/validation"
)

// School is the institution a coordinator registers participants for.
type School struct {
	ID      string `json:"id"`
	Name    string `json:"name" validate:"trimmin=3,max=200"`
	Address string `json:"address" validate:"trimmin=10,max=500"`
	City    string `json:"city" validate:"trimmin=2,max=100"`
	State   string `json:"state" validate:"trimmin=2,max=100"`
	Pincode string `json:"pincode" validate:"pincode"`
	Phone   string `json:"phone" validate:"phone"`
}

// Validate checks the school form rules.
// PRE: School struct is populated
// POST: Returns nil if valid, *validation.Error otherwise
func (s *School) Validate() error {
	return validation.Struct(s)
}

// Normalize returns a copy with surrounding whitespace removed from every field.
// INVARIANT: ID is not changed
func (s School) Normalize() School {
	s.Name = strings.TrimSpace(s.Name)
	s.Address = strings.TrimSpace(s.Address)
	s.City = strings.TrimSpace(s.City)
	s.State = strings.TrimSpace(s.State)
	s.Pincode = strings.TrimSpace(s.Pincode)
	s.Phone = strings.TrimSpace(s.Phone)
	return s
}
