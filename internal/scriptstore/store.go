// Package scriptstore is a small SQLite-backed repository for named scripts,
// used only by the CLI (the `scripts` subcommands and `run --registry`).
// The core engine (Importer,
// NamespaceRegistry, ExecutionContext) never depends on this package and
// stays storage-agnostic: a driver can feed it scripts from here, from disk,
// or from anywhere else.
package scriptstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the scripts table.
type Store struct {
	db *sql.DB
}

// Record is one saved script.
type Record struct {
	Name         string
	Source       string
	Kind         string
	RegisteredAt time.Time
}

// Open opens a SQLite database at dbPath with WAL mode enabled and migrates
// the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	const schemaDDL = `
CREATE TABLE IF NOT EXISTS scripts (
  name          TEXT PRIMARY KEY,
  source        TEXT NOT NULL,
  kind          TEXT NOT NULL,
  registered_at TIMESTAMP NOT NULL
);
`
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Put inserts or replaces the script registered under name.
func (s *Store) Put(name, source, kind string, registeredAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO scripts (name, source, kind, registered_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET source = excluded.source, kind = excluded.kind, registered_at = excluded.registered_at`,
		name, source, kind, registeredAt,
	)
	if err != nil {
		return fmt.Errorf("put script %q: %w", name, err)
	}
	return nil
}

// Get returns the script registered under name.
func (s *Store) Get(name string) (Record, error) {
	var rec Record
	row := s.db.QueryRow(`SELECT name, source, kind, registered_at FROM scripts WHERE name = ?`, name)
	if err := row.Scan(&rec.Name, &rec.Source, &rec.Kind, &rec.RegisteredAt); err != nil {
		if err == sql.ErrNoRows {
			return Record{}, fmt.Errorf("script %q not found", name)
		}
		return Record{}, fmt.Errorf("get script %q: %w", name, err)
	}
	return rec, nil
}

// List returns every registered script, ordered by name.
func (s *Store) List() ([]Record, error) {
	rows, err := s.db.Query(`SELECT name, source, kind, registered_at FROM scripts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Name, &rec.Source, &rec.Kind, &rec.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan script row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Remove deletes the script registered under name. It is not an error to
// remove a name that was never registered.
func (s *Store) Remove(name string) error {
	if _, err := s.db.Exec(`DELETE FROM scripts WHERE name = ?`, name); err != nil {
		return fmt.Errorf("remove script %q: %w", name, err)
	}
	return nil
}
