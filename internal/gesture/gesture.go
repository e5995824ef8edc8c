// Package gesture turns per-frame hand data into discrete gesture events:
// pinch state machines, the engine that orders cursor, click and drag events,
// and a DTW swipe recognizer for scrolling.
package gesture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// GestureType identifies a gesture event. The zero value is not a gesture.
type GestureType int

const (
	CursorMove GestureType = iota + 1
	LeftClick
	RightClick
	DragStart
	DragMove
	DragEnd
	ScrollUp
	ScrollDown
)

var typeNames = map[GestureType]string{
	CursorMove: "CURSOR_MOVE",
	LeftClick:  "LEFT_CLICK",
	RightClick: "RIGHT_CLICK",
	DragStart:  "DRAG_START",
	DragMove:   "DRAG_MOVE",
	DragEnd:    "DRAG_END",
	ScrollUp:   "SCROLL_UP",
	ScrollDown: "SCROLL_DOWN",
}

// AllTypes lists every gesture type in declaration order.
func AllTypes() []GestureType {
	return []GestureType{CursorMove, LeftClick, RightClick, DragStart, DragMove, DragEnd, ScrollUp, ScrollDown}
}

func (t GestureType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("GestureType(%d)", int(t))
}

// Valid reports whether t is one of the declared gesture types.
func (t GestureType) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseGestureType is the inverse of String.
func ParseGestureType(s string) (GestureType, error) {
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown gesture type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t GestureType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid gesture type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *GestureType) UnmarshalText(b []byte) error {
	parsed, err := ParseGestureType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Delta is the per-axis absolute movement carried by CURSOR_MOVE events.
type Delta struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Metadata keys set by this package or by the driver.
const (
	MetaDelta     = "delta"
	MetaScreenPos = "screen_pos"
	MetaDistance  = "distance"
	MetaTravel    = "travel"
)

// MetaEntry is one metadata key/value pair.
type MetaEntry struct {
	Key   string
	Value any
}

// Metadata is an insertion-ordered set of key/value pairs. Entries are only
// ever added or replaced, never removed.
type Metadata []MetaEntry

// Get returns the value stored under key.
func (m Metadata) Get(key string) (any, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// With returns a copy of m with key set to v. An existing key keeps its
// position.
func (m Metadata) With(key string, v any) Metadata {
	out := make(Metadata, len(m), len(m)+1)
	copy(out, m)
	for i := range out {
		if out[i].Key == key {
			out[i].Value = v
			return out
		}
	}
	return append(out, MetaEntry{Key: key, Value: v})
}

// MarshalJSON encodes m as a JSON object preserving insertion order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("metadata %q: %w", e.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Gesture is one recognized event.
type Gesture struct {
	Type       GestureType `json:"type"`
	Position   [2]float64  `json:"position"`
	Confidence float64     `json:"confidence"`
	Timestamp  time.Time   `json:"timestamp"`
	Metadata   Metadata    `json:"metadata"`
}

// SetMeta adds or replaces a metadata entry on g without touching metadata
// shared with other copies of the gesture.
func (g *Gesture) SetMeta(key string, v any) {
	g.Metadata = g.Metadata.With(key, v)
}

// Delta returns the CURSOR_MOVE delta, if present.
func (g Gesture) Delta() (Delta, bool) {
	v, ok := g.Metadata.Get(MetaDelta)
	if !ok {
		return Delta{}, false
	}
	d, ok := v.(Delta)
	return d, ok
}
