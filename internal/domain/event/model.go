package event

import (
	"errors"
	"strings"
	"time"
)

// Event categories used by the seeded catalog.
const (
	CategoryCompetition = "Competition"
	CategoryWorkshop    = "Workshop"
	CategoryDebate      = "Debate"
)

// Domain errors
var (
	ErrEmptyTitle      = errors.New("event title cannot be empty")
	ErrInvalidCapacity = errors.New("event max participants must be at least 1")
	ErrMissingDate     = errors.New("event date must be set")
)

// Event is a festival activity schools can register participants for.
// MaxParticipants is the exact roster size a registration must supply.
type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	Category         string    `json:"category"`
	RegistrationOpen bool      `json:"registrationOpen"`
	MaxParticipants  int       `json:"maxParticipants"`
}

// Validate checks that the Event has valid data.
// PRE: Event struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if e.MaxParticipants < 1 {
		return ErrInvalidCapacity
	}
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// IsUpcoming reports whether the event happens on or after the given day.
func (e *Event) IsUpcoming(now time.Time) bool {
	y, m, d := now.Date()
	return !e.Date.Before(time.Date(y, m, d, 0, 0, 0, 0, now.Location()))
}
