package school

import (
	"context"
	"database/sql"
	"fmt"

	"meraki/internal/adapters/storage"
	domain "meraki/internal/domain/school"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new school store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a school by id.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.School, error) {
	var sc domain.School
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, address, city, state, pincode, phone FROM school WHERE id = ?`, id).
		Scan(&sc.ID, &sc.Name, &sc.Address, &sc.City, &sc.State, &sc.Pincode, &sc.Phone)
	if err == sql.ErrNoRows {
		return domain.School{}, fmt.Errorf("school not found: %w", err)
	}
	return sc, err
}

// Update rewrites the school row owned by registrationID.
// PRE: sc has been validated
// POST: no other row changes
func (s *SQLiteStore) Update(ctx context.Context, registrationID string, sc domain.School) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE school SET name = ?, address = ?, city = ?, state = ?, pincode = ?, phone = ?
		 WHERE id = ? AND id IN (SELECT school_id FROM registration WHERE id = ?)`,
		sc.Name, sc.Address, sc.City, sc.State, sc.Pincode, sc.Phone, sc.ID, registrationID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("school not found: %w", sql.ErrNoRows)
	}
	return nil
}
