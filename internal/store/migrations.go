package store

import "fmt"

// schema holds one entry per schema version. The database records how many
// have been applied in PRAGMA user_version; append, never edit.
var schema = []string{
	// 1: gesture bindings, settings overrides and history
	`CREATE TABLE bindings (
		id TEXT PRIMARY KEY,
		gesture_type TEXT NOT NULL UNIQUE,
		plugin_name TEXT NOT NULL,
		action_name TEXT NOT NULL,
		config TEXT NOT NULL DEFAULT '{}',
		enabled INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE sessions (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		ended_at DATETIME,
		frames INTEGER NOT NULL DEFAULT 0,
		gestures INTEGER NOT NULL DEFAULT 0,
		actions INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE gesture_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT REFERENCES sessions(id) ON DELETE CASCADE,
		gesture_type TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		screen_x INTEGER,
		screen_y INTEGER,
		confidence REAL NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX idx_gesture_events_session_id ON gesture_events(session_id);`,

	// 2: history filtering by type
	`CREATE INDEX idx_gesture_events_type ON gesture_events(gesture_type);`,
}

// migrate brings the schema up to date, one transaction per version.
func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > len(schema) {
		return fmt.Errorf("schema version %d is newer than this build (%d)", version, len(schema))
	}

	for v := version; v < len(schema); v++ {
		if err := s.apply(v+1, schema[v]); err != nil {
			return fmt.Errorf("schema version %d: %w", v+1, err)
		}
	}
	return nil
}

func (s *Store) apply(version int, ddl string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(ddl); err != nil {
		return err
	}
	// PRAGMA does not take bind parameters
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return err
	}
	return tx.Commit()
}
