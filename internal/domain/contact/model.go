package contact

import (
	"strings"
	"time"

	"meraki/internal/domain/validation"
)

// Message is a submission from the public contact form.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"trimmin=2,max=200"`
	Email     string    `json:"email" validate:"required,email,max=254"`
	Subject   string    `json:"subject" validate:"trimmin=5,max=200"`
	Body      string    `json:"message" validate:"trimmin=10,max=5000"`
	Forwarded bool      `json:"forwarded"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the contact form rules.
// PRE: Message struct is populated
// POST: Returns nil if valid, *validation.Error otherwise
func (m *Message) Validate() error {
	return validation.Struct(m)
}

// Normalize returns a copy with surrounding whitespace trimmed.
func (m Message) Normalize() Message {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Body = strings.TrimSpace(m.Body)
	return m
}
