package event_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"meraki/internal/adapters/storage/event"
	"meraki/internal/adapters/storage/storagetest"
	domain "meraki/internal/domain/event"
)

// TestSQLiteStore_SaveListGet verifies upsert, ordering and lookup.
func TestSQLiteStore_SaveListGet(t *testing.T) {
	store := event.NewSQLiteStore(storagetest.Open(t))
	ctx := context.Background()

	later := domain.Event{ID: "2", Title: "Literary Debate", Date: time.Date(2026, 3, 22, 0, 0, 0, 0, time.UTC), RegistrationOpen: true, MaxParticipants: 4}
	sooner := domain.Event{ID: "1", Title: "Poetry Slam", Date: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), RegistrationOpen: true, MaxParticipants: 3}
	for _, e := range []domain.Event{later, sooner} {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save(%s): %v", e.ID, err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "1" || list[1].ID != "2" {
		t.Fatalf("List order = %+v", list)
	}
	if !list[0].RegistrationOpen || list[0].MaxParticipants != 3 || !list[0].Date.Equal(sooner.Date) {
		t.Errorf("List[0] = %+v", list[0])
	}

	sooner.RegistrationOpen = false
	if err := store.Save(ctx, sooner); err != nil {
		t.Fatalf("Save(update): %v", err)
	}
	got, err := store.GetByID(ctx, "1")
	if err != nil || got.RegistrationOpen {
		t.Errorf("GetByID = %+v, %v", got, err)
	}
	if n, _ := store.Count(ctx); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
	if _, err := store.GetByID(ctx, "9"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetByID(missing) error = %v", err)
	}
}
