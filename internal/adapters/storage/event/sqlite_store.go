package event

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meraki/internal/adapters/storage"
	domain "meraki/internal/domain/event"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const selectEvent = `SELECT id, title, description, date, category, registration_open, max_participants FROM event`

// List returns every event ordered by date, then title.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectEvent+` ORDER BY date, title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetByID retrieves an event by id.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx, selectEvent+` WHERE id = ?`, id).Scan)
	if err == sql.ErrNoRows {
		return domain.Event{}, fmt.Errorf("event not found: %w", err)
	}
	return e, err
}

// Save inserts or replaces an event.
// PRE: e has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event (id, title, description, date, category, registration_open, max_participants)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, description=excluded.description, date=excluded.date,
		   category=excluded.category, registration_open=excluded.registration_open,
		   max_participants=excluded.max_participants`,
		e.ID, e.Title, e.Description, e.Date.UTC().Format(storage.DateLayout), e.Category, e.RegistrationOpen, e.MaxParticipants)
	return err
}

// Count returns the number of events.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM event`).Scan(&n)
	return n, err
}

func scanEvent(scan func(dest ...any) error) (domain.Event, error) {
	var e domain.Event
	var date string
	if err := scan(&e.ID, &e.Title, &e.Description, &date, &e.Category, &e.RegistrationOpen, &e.MaxParticipants); err != nil {
		return domain.Event{}, err
	}
	e.Date, _ = time.Parse(storage.DateLayout, date)
	return e, nil
}
