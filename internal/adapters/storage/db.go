package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// DateLayout is the TEXT encoding of every timestamp column.
const DateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// migration is one forward-only schema step, applied inside a transaction.
type migration func(tx *sql.Tx) error

// migrations run in order; index i brings the schema to version i+1.
var migrations = []migration{
	migrateBaseline,
}

// LatestSchemaVersion returns the version a fully migrated database reports.
func LatestSchemaVersion() int {
	return len(migrations)
}

// Open opens the SQLite database at path with the connection pragmas every
// store relies on.
// PRE: path is a file path or ":memory:"
// POST: foreign keys are enforced; WAL is enabled for file databases
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	for _, pragma := range []string{"PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return db, nil
}

// SchemaVersion returns the applied schema version, 0 for an empty database.
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return 0, err
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration.
// PRE: db is a valid database connection
// POST: SchemaVersion(db) == LatestSchemaVersion(); running it again is a no-op
func MigrateDB(db *sql.DB) error {
	current, err := SchemaVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for v := current; v < len(migrations); v++ {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if err := migrations[v](tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, v+1); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", v+1, err)
		}
		slog.Info("schema_migrated", "version", v+1)
	}
	return nil
}

func migrateBaseline(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS event (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		registration_open INTEGER NOT NULL DEFAULT 1,
		max_participants INTEGER NOT NULL CHECK (max_participants >= 1)
	);

	CREATE TABLE IF NOT EXISTS school (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		pincode TEXT NOT NULL,
		phone TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS registration (
		id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL,
		FOREIGN KEY (school_id) REFERENCES school(id)
	);

	CREATE TABLE IF NOT EXISTS coordinator (
		id TEXT PRIMARY KEY,
		registration_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		FOREIGN KEY (registration_id) REFERENCES registration(id)
	);

	CREATE TABLE IF NOT EXISTS registration_event (
		registration_id TEXT NOT NULL,
		event_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (registration_id, event_id),
		FOREIGN KEY (registration_id) REFERENCES registration(id),
		FOREIGN KEY (event_id) REFERENCES event(id)
	);

	CREATE TABLE IF NOT EXISTS participant (
		id TEXT PRIMARY KEY,
		registration_id TEXT NOT NULL,
		event_id TEXT NOT NULL,
		school_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		grade TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '{}',
		position INTEGER NOT NULL,
		FOREIGN KEY (registration_id, event_id) REFERENCES registration_event(registration_id, event_id),
		FOREIGN KEY (school_id) REFERENCES school(id)
	);
	CREATE INDEX IF NOT EXISTS idx_participant_registration ON participant(registration_id, event_id, position);

	CREATE TABLE IF NOT EXISTS blog_post (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		published INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS speaker (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		bio TEXT NOT NULL,
		image_url TEXT NOT NULL DEFAULT '',
		event_id TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS sponsor (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		tier TEXT NOT NULL,
		logo_url TEXT NOT NULL DEFAULT '',
		website TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS contact_message (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		forwarded INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		last_attempted_at TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status, created_at);
	`)
	return err
}
