// Package store provides SQLite persistence for spatialtouch: gesture
// bindings, settings overrides, tracking sessions and the gesture event log.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Store is the application database. Bindings, Settings, Sessions and
// Events return its repositories.
type Store struct {
	db   *sql.DB
	path string
}

// New opens or creates the database at path and migrates it to the current
// schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection: the pragmas below are per connection and SQLite
	// serializes writers anyway
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := s.migrate(); err != nil {
		return fmt.Errorf("migrate %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the connection for tests and maintenance queries.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Path() string { return s.path }
