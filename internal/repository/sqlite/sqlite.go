// Package sqlite implements the repository.Store interface on an embedded
// SQLite database (pure-Go driver, no cgo).
//
// It is the alternative to the flat-file jsonfile backend, selected with
// STORE_BACKEND=sqlite. The observable semantics are identical: user ids are
// count+1, movie ids are unique store-wide with reuse-by-name, movie lists
// keep insertion order. What SQLite adds is real transactions around the
// multi-statement mutations instead of whole-document rewrites.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// Store wraps a sql.DB connection pool and implements repository.Store.
type Store struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath (":memory:" works for tests) and
// creates the schema if it does not exist yet.
func New(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows reads to proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	// movie_id is deliberately NOT unique: the same movie (same id) can sit
	// in several users' lists. Entry identity is the implicit rowid, which
	// also gives us insertion order per user.
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS movies (
			user_id  INTEGER NOT NULL REFERENCES users(id),
			movie_id INTEGER NOT NULL,
			name     TEXT NOT NULL,
			poster   TEXT NOT NULL DEFAULT '',
			director TEXT NOT NULL DEFAULT '',
			year     TEXT NOT NULL DEFAULT '',
			rating   TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_movies_user_id ON movies(user_id);
		CREATE INDEX IF NOT EXISTS idx_movies_name ON movies(name);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
