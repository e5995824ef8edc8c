package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Event is one emitted gesture.
type Event struct {
	ID          int64           `json:"id"`
	SessionID   string          `json:"session_id,omitempty"`
	GestureType string          `json:"gesture_type"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	ScreenX     *int            `json:"screen_x,omitempty"`
	ScreenY     *int            `json:"screen_y,omitempty"`
	Confidence  float64         `json:"confidence"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// EventRepository is the gesture event log.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record appends e to the log and sets its ID.
func (r *EventRepository) Record(e *Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	var session any
	if e.SessionID != "" {
		session = e.SessionID
	}

	result, err := r.db.Exec(
		`INSERT INTO gesture_events (session_id, gesture_type, x, y, screen_x, screen_y, confidence, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session, e.GestureType, e.X, e.Y, nullInt(e.ScreenX), nullInt(e.ScreenY),
		e.Confidence, string(configOrEmpty(e.Metadata)), e.CreatedAt,
	)
	if err != nil {
		return err
	}

	e.ID, err = result.LastInsertId()
	return err
}

// Recent returns up to limit events, newest first.
func (r *EventRepository) Recent(limit int) ([]*Event, error) {
	rows, err := r.db.Query(
		`SELECT id, COALESCE(session_id, ''), gesture_type, x, y, screen_x, screen_y, confidence, metadata, created_at
		 FROM gesture_events ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		e := &Event{}
		var sx, sy sql.NullInt64
		var meta string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.GestureType, &e.X, &e.Y, &sx, &sy, &e.Confidence, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		if sx.Valid && sy.Valid {
			x, y := int(sx.Int64), int(sy.Int64)
			e.ScreenX, e.ScreenY = &x, &y
		}
		e.Metadata = json.RawMessage(meta)
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountByType returns event counts per gesture type. An empty sessionID
// counts across all sessions.
func (r *EventRepository) CountByType(sessionID string) (map[string]int64, error) {
	query := `SELECT gesture_type, COUNT(*) FROM gesture_events GROUP BY gesture_type`
	args := []any{}
	if sessionID != "" {
		query = `SELECT gesture_type, COUNT(*) FROM gesture_events WHERE session_id = ? GROUP BY gesture_type`
		args = append(args, sessionID)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var typ string
		var n int64
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[typ] = n
	}
	return out, rows.Err()
}

// Prune deletes events created before cutoff and returns how many were
// removed.
func (r *EventRepository) Prune(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM gesture_events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
