package store

import (
	"errors"
	"testing"
	"time"
)

func TestSessionRepository_Lifecycle(t *testing.T) {
	repo := newTestStore(t).Sessions()

	sess, err := repo.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if sess.ID == "" || sess.StartedAt.IsZero() {
		t.Fatalf("Start() = %+v", sess)
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.EndedAt != nil {
		t.Error("open session should have no end time")
	}

	if err := repo.End(sess.ID, 300, 12, 9); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	got, _ = repo.GetByID(sess.ID)
	if got.EndedAt == nil || got.Frames != 300 || got.Gestures != 12 || got.Actions != 9 {
		t.Errorf("after End got %+v", got)
	}

	if err := repo.End("missing", 0, 0, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("End(missing) error = %v, want ErrNotFound", err)
	}

	list, err := repo.List(10)
	if err != nil || len(list) != 1 {
		t.Errorf("List() = %d sessions, %v", len(list), err)
	}
}

func TestEventRepository(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.Sessions().Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	repo := s.Events()

	x, y := 960, 540
	events := []*Event{
		{SessionID: sess.ID, GestureType: "CURSOR_MOVE", X: 0.5, Y: 0.5, ScreenX: &x, ScreenY: &y, Confidence: 1},
		{SessionID: sess.ID, GestureType: "LEFT_CLICK", X: 0.5, Y: 0.5, Confidence: 1},
		{GestureType: "LEFT_CLICK", X: 0.1, Y: 0.2, Confidence: 1},
	}
	for _, e := range events {
		if err := repo.Record(e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if e.ID == 0 {
			t.Error("Record() should set ID")
		}
	}

	recent, err := repo.Recent(2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 || recent[0].ID != events[2].ID {
		t.Fatalf("Recent(2) = %+v", recent)
	}
	if recent[0].SessionID != "" {
		t.Errorf("session-less event SessionID = %q", recent[0].SessionID)
	}

	all, _ := repo.Recent(10)
	first := all[len(all)-1]
	if first.ScreenX == nil || *first.ScreenX != 960 || *first.ScreenY != 540 {
		t.Errorf("screen position did not round trip: %+v", first)
	}

	counts, err := repo.CountByType(sess.ID)
	if err != nil {
		t.Fatalf("CountByType() error = %v", err)
	}
	if counts["LEFT_CLICK"] != 1 || counts["CURSOR_MOVE"] != 1 {
		t.Errorf("CountByType(session) = %v", counts)
	}
	counts, _ = repo.CountByType("")
	if counts["LEFT_CLICK"] != 2 {
		t.Errorf("CountByType(all) = %v", counts)
	}

	n, err := repo.Prune(time.Now().Add(time.Minute))
	if err != nil || n != 3 {
		t.Errorf("Prune() = %d, %v, want 3", n, err)
	}
}
