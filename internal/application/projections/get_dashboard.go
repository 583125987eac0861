package projections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"meraki/internal/adapters/telemetry"
	"meraki/internal/domain/coordinator"
	"meraki/internal/domain/event"
	"meraki/internal/domain/participant"
	"meraki/internal/domain/school"
)

// ErrRegistrationGone is returned when a signed-in session refers to a
// registration that no longer exists.
var ErrRegistrationGone = errors.New("registration no longer exists")

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	RegistrationID string
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	Registrations RegistrationReader
	Events        EventLister
}

// DashboardEvent is one selected event with its roster.
type DashboardEvent struct {
	EventID      string                    `json:"eventId"`
	Title        string                    `json:"title"`
	Category     string                    `json:"category,omitempty"`
	Capacity     int                       `json:"capacity"`
	Participants []participant.Participant `json:"participants"`
}

// DashboardView is everything the coordinator dashboard renders.
type DashboardView struct {
	RegistrationID   string                  `json:"registrationId"`
	School           school.School           `json:"school"`
	Coordinator      coordinator.Coordinator `json:"coordinator"`
	Events           []DashboardEvent        `json:"events"`
	ParticipantCount int                     `json:"participantCount"`
}

// QueryGetDashboard assembles the coordinator dashboard from the cached
// aggregate and the event catalog.
// PRE: query.RegistrationID comes from a verified session
// POST: events appear in selection order; an event missing from the catalog shows its id as title
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (DashboardView, error) {
	ctx, span := telemetry.Tracer("meraki/projections").Start(ctx, "dashboard.get")
	defer span.End()

	reg, err := deps.Registrations.Get(ctx, query.RegistrationID)
	if errors.Is(err, sql.ErrNoRows) {
		return DashboardView{}, ErrRegistrationGone
	}
	if err != nil {
		return DashboardView{}, fmt.Errorf("load registration: %w", err)
	}
	catalog, err := deps.Events.List(ctx)
	if err != nil {
		return DashboardView{}, fmt.Errorf("list events: %w", err)
	}
	byID := make(map[string]event.Event, len(catalog))
	for _, e := range catalog {
		byID[e.ID] = e
	}

	view := DashboardView{
		RegistrationID:   reg.ID,
		School:           reg.School,
		Coordinator:      reg.Coordinator,
		ParticipantCount: reg.ParticipantCount(),
	}
	for _, id := range reg.SelectedEvents {
		de := DashboardEvent{EventID: id, Title: id, Participants: reg.Participants[id]}
		if e, ok := byID[id]; ok {
			de.Title = e.Title
			de.Category = e.Category
			de.Capacity = e.MaxParticipants
		}
		view.Events = append(view.Events, de)
	}
	return view, nil
}
