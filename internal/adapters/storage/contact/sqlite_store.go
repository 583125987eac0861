package contact

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meraki/internal/adapters/storage"
	domain "meraki/internal/domain/contact"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new contact message store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const selectMessage = `SELECT id, name, email, subject, body, forwarded, created_at FROM contact_message`

// Save inserts or updates a message.
// PRE: m has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, m domain.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_message (id, name, email, subject, body, forwarded, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET forwarded=excluded.forwarded`,
		m.ID, m.Name, m.Email, m.Subject, m.Body, m.Forwarded, m.CreatedAt.UTC().Format(storage.DateLayout))
	return err
}

// GetByID retrieves a message by id.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Message, error) {
	m, err := scanMessage(s.db.QueryRowContext(ctx, selectMessage+` WHERE id = ?`, id).Scan)
	if err == sql.ErrNoRows {
		return domain.Message{}, fmt.Errorf("contact message not found: %w", err)
	}
	return m, err
}

// List returns the newest messages first.
// PRE: limit > 0
// POST: Returns up to limit messages
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, selectMessage+` ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMessage(scan func(dest ...any) error) (domain.Message, error) {
	var m domain.Message
	var createdAt string
	if err := scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.Forwarded, &createdAt); err != nil {
		return domain.Message{}, err
	}
	m.CreatedAt, _ = time.Parse(storage.DateLayout, createdAt)
	return m, nil
}
