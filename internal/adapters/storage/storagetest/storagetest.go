// Package storagetest provides migrated in-memory databases and aggregate
// fixtures for store tests.
package storagetest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"meraki/internal/adapters/storage"
	"meraki/internal/domain/coordinator"
	"meraki/internal/domain/event"
	"meraki/internal/domain/participant"
	"meraki/internal/domain/registration"
	"meraki/internal/domain/school"
)

// Open returns a fully migrated in-memory database closed at test cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// InsertEvent writes a minimal open event row.
func InsertEvent(t *testing.T, db *sql.DB, id string, capacity int) event.Event {
	t.Helper()
	e := event.Event{
		ID:               id,
		Title:            "Event " + id,
		Date:             time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
		Category:         event.CategoryCompetition,
		RegistrationOpen: true,
		MaxParticipants:  capacity,
	}
	_, err := db.Exec(`INSERT INTO event (id, title, description, date, category, registration_open, max_participants)
		VALUES (?, ?, '', ?, ?, 1, ?)`, e.ID, e.Title, e.Date.Format(storage.DateLayout), e.Category, e.MaxParticipants)
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	return e
}

// Registration returns a complete aggregate with every id assigned. The
// suffix keeps ids and the coordinator email unique across fixtures.
// Its single event "ev-<suffix>" holds two participants.
func Registration(suffix string) registration.Registration {
	eventID := "ev-" + suffix
	schoolID := "sc-" + suffix
	return registration.Registration{
		ID: "reg-" + suffix,
		School: school.School{
			ID: schoolID, Name: "Lincoln High", Address: "1 Main St Suite 2",
			City: "Springfield", State: "IL", Pincode: "620001", Phone: "9876543210",
		},
		Coordinator: coordinator.Coordinator{
			ID: "co-" + suffix, Name: "Asha Rao", Email: "asha-" + suffix + "@example.com",
			Phone: "9876543210", PasswordHash: "$2a$12$hash",
		},
		SelectedEvents: []string{eventID},
		Participants: map[string][]participant.Participant{
			eventID: {
				{ID: "pa-" + suffix + "-1", EventID: eventID, SchoolID: schoolID, Name: "Ravi", Email: "ravi@example.com", Grade: "9", Details: map[string]string{"piece": "Ozymandias"}},
				{ID: "pa-" + suffix + "-2", EventID: eventID, SchoolID: schoolID, Name: "Meera", Email: "meera@example.com", Grade: "10"},
			},
		},
		CreatedAt: time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC),
	}
}
