package storage

import (
	"context"
	"database/sql"
	"reflect"
	"testing"
)

// openTestDB creates a migrated in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	return names
}

var expectedTables = []string{
	"blog_post",
	"contact_message",
	"coordinator",
	"event",
	"outbox",
	"participant",
	"registration",
	"registration_event",
	"schema_version",
	"school",
	"speaker",
	"sponsor",
}

// TestMigrateDB_Fresh verifies all migrations apply cleanly to an empty database.
func TestMigrateDB_Fresh(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB failed on fresh db: %v", err)
	}
	version, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", version, LatestSchemaVersion())
	}
	if got := getTableNames(t, db); !reflect.DeepEqual(got, expectedTables) {
		t.Errorf("tables = %v\nwant     %v", got, expectedTables)
	}
}

// TestMigrateDB_Idempotent verifies a second run changes nothing.
func TestMigrateDB_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db); err != nil {
		t.Fatalf("first MigrateDB failed: %v", err)
	}
	if err := MigrateDB(db); err != nil {
		t.Fatalf("second MigrateDB failed: %v", err)
	}
	var rows int
	db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&rows)
	if rows != LatestSchemaVersion() {
		t.Errorf("schema_version rows = %d, want %d", rows, LatestSchemaVersion())
	}
}

// TestOpen_ForeignKeys verifies that orphaned rows are rejected.
func TestOpen_ForeignKeys(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db); err != nil {
		t.Fatal(err)
	}
	_, err := db.Exec(`INSERT INTO registration (id, school_id, created_at) VALUES ('r1', 'missing', '2026-01-01T00:00:00Z')`)
	if err == nil {
		t.Error("insert referencing a missing school succeeded")
	}
}
