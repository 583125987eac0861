package registration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"meraki/internal/adapters/storage"
	"meraki/internal/domain/coordinator"
	"meraki/internal/domain/participant"
	domain "meraki/internal/domain/registration"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new registration store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts the whole aggregate in one transaction.
// PRE: every id in the aggregate is assigned
// POST: all rows exist, or none do; a taken coordinator email yields ErrDuplicateEmail
func (s *SQLiteStore) Create(ctx context.Context, reg domain.Registration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sc := reg.School
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO school (id, name, address, city, state, pincode, phone) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.Name, sc.Address, sc.City, sc.State, sc.Pincode, sc.Phone); err != nil {
		return fmt.Errorf("insert school: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO registration (id, school_id, created_at) VALUES (?, ?, ?)`,
		reg.ID, sc.ID, reg.CreatedAt.UTC().Format(storage.DateLayout)); err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	c := reg.Coordinator
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO coordinator (id, registration_id, name, email, phone, password_hash) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, reg.ID, c.Name, c.Email, c.Phone, c.PasswordHash); err != nil {
		if isUniqueViolation(err, "coordinator.email") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert coordinator: %w", err)
	}
	for i, eventID := range reg.SelectedEvents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO registration_event (registration_id, event_id, position) VALUES (?, ?, ?)`,
			reg.ID, eventID, i); err != nil {
			return fmt.Errorf("insert registration_event %s: %w", eventID, err)
		}
		for pos, p := range reg.Participants[eventID] {
			details, err := EncodeDetails(p.Details)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO participant (id, registration_id, event_id, school_id, name, email, grade, details, position)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, reg.ID, eventID, sc.ID, p.Name, p.Email, p.Grade, details, pos); err != nil {
				return fmt.Errorf("insert participant: %w", err)
			}
		}
	}
	return tx.Commit()
}

// GetByID assembles the aggregate for a registration id.
// PRE: id is non-empty
// POST: Returns the aggregate or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Registration, error) {
	return s.load(ctx, "r.id = ?", id)
}

// GetByCoordinatorEmail assembles the aggregate for an exact email match.
// PRE: email is non-empty
// POST: Returns the aggregate or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByCoordinatorEmail(ctx context.Context, email string) (domain.Registration, error) {
	return s.load(ctx, "c.email = ?", email)
}

const aggregateQuery = `
	SELECT r.id, r.created_at,
	       sc.id, sc.name, sc.address, sc.city, sc.state, sc.pincode, sc.phone,
	       c.id, c.name, c.email, c.phone, c.password_hash
	FROM registration r
	JOIN school sc ON sc.id = r.school_id
	JOIN coordinator c ON c.registration_id = r.id
	WHERE `

// load reads the registration row, its selected events and its participants
// inside one transaction so the aggregate is a single snapshot.
func (s *SQLiteStore) load(ctx context.Context, where string, arg string) (domain.Registration, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Registration{}, err
	}
	defer tx.Rollback()

	var reg domain.Registration
	var createdAt string
	sc, c := &reg.School, &reg.Coordinator
	err = tx.QueryRowContext(ctx, aggregateQuery+where, arg).Scan(
		&reg.ID, &createdAt,
		&sc.ID, &sc.Name, &sc.Address, &sc.City, &sc.State, &sc.Pincode, &sc.Phone,
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.PasswordHash)
	if err == sql.ErrNoRows {
		return domain.Registration{}, fmt.Errorf("registration not found: %w", err)
	}
	if err != nil {
		return domain.Registration{}, err
	}
	if reg.CreatedAt, err = time.Parse(storage.DateLayout, createdAt); err != nil {
		return domain.Registration{}, fmt.Errorf("registration %s created_at: %w", reg.ID, err)
	}

	if reg.SelectedEvents, err = selectedEvents(ctx, tx, reg.ID); err != nil {
		return domain.Registration{}, err
	}
	if reg.Participants, err = participants(ctx, tx, reg.ID); err != nil {
		return domain.Registration{}, err
	}
	return reg, tx.Commit()
}

func selectedEvents(ctx context.Context, tx *sql.Tx, registrationID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT event_id FROM registration_event WHERE registration_id = ? ORDER BY position`, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func participants(ctx context.Context, tx *sql.Tx, registrationID string) (map[string][]participant.Participant, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, registration_id, event_id, school_id, name, email, grade, details
		 FROM participant WHERE registration_id = ? ORDER BY event_id, position`, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]participant.Participant)
	for rows.Next() {
		var p participant.Participant
		var details string
		if err := rows.Scan(&p.ID, &p.RegistrationID, &p.EventID, &p.SchoolID, &p.Name, &p.Email, &p.Grade, &details); err != nil {
			return nil, err
		}
		if p.Details, err = DecodeDetails(details); err != nil {
			return nil, fmt.Errorf("participant %s details: %w", p.ID, err)
		}
		out[p.EventID] = append(out[p.EventID], p)
	}
	return out, rows.Err()
}

// UpdateCoordinator rewrites the editable coordinator columns.
// PRE: c has been validated
// POST: only the row with c.ID inside registrationID changes
func (s *SQLiteStore) UpdateCoordinator(ctx context.Context, registrationID string, c coordinator.Coordinator) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE coordinator SET name = ?, email = ?, phone = ? WHERE id = ? AND registration_id = ?`,
		c.Name, c.Email, c.Phone, c.ID, registrationID)
	if err != nil {
		if isUniqueViolation(err, "coordinator.email") {
			return ErrDuplicateEmail
		}
		return err
	}
	return requireRow(res, "coordinator")
}

// UpdateCredential replaces the stored credential hash.
// PRE: passwordHash is a bcrypt hash
// POST: wraps sql.ErrNoRows when the id is absent
func (s *SQLiteStore) UpdateCredential(ctx context.Context, coordinatorID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE coordinator SET password_hash = ? WHERE id = ?`, passwordHash, coordinatorID)
	if err != nil {
		return err
	}
	return requireRow(res, "coordinator")
}

// EmailTaken reports whether any coordinator other than excludeID uses email.
func (s *SQLiteStore) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM coordinator WHERE email = ? AND id <> ?`, email, excludeID).Scan(&n)
	return n > 0, err
}

func requireRow(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s not found: %w", entity, sql.ErrNoRows)
	}
	return nil
}

func isUniqueViolation(err error, column string) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}

// EncodeDetails serializes participant details for the JSON details column.
func EncodeDetails(details map[string]string) (string, error) {
	if len(details) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(details)
	if err != nil {
		return "", fmt.Errorf("encode participant details: %w", err)
	}
	return string(b), nil
}

// DecodeDetails parses the JSON details column; an empty object yields nil.
func DecodeDetails(s string) (map[string]string, error) {
	if s == "" || s == "{}" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}
