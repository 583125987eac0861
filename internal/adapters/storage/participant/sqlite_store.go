package participant

import (
	"context"
	"database/sql"
	"fmt"

	"meraki/internal/adapters/storage"
	"meraki/internal/adapters/storage/registration"
	domain "meraki/internal/domain/participant"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new participant store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a participant by id.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Participant, error) {
	var p domain.Participant
	var details string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, registration_id, event_id, school_id, name, email, grade, details FROM participant WHERE id = ?`, id).
		Scan(&p.ID, &p.RegistrationID, &p.EventID, &p.SchoolID, &p.Name, &p.Email, &p.Grade, &details)
	if err == sql.ErrNoRows {
		return domain.Participant{}, fmt.Errorf("participant not found: %w", err)
	}
	if err != nil {
		return domain.Participant{}, err
	}
	p.Details, err = registration.DecodeDetails(details)
	return p, err
}

// Update rewrites the editable participant columns.
// PRE: p has been validated
// POST: only the row with p.ID inside registrationID changes
func (s *SQLiteStore) Update(ctx context.Context, registrationID string, p domain.Participant) error {
	details, err := registration.EncodeDetails(p.Details)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE participant SET name = ?, email = ?, grade = ?, details = ? WHERE id = ? AND registration_id = ?`,
		p.Name, p.Email, p.Grade, details, p.ID, registrationID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("participant not found: %w", sql.ErrNoRows)
	}
	return nil
}
