package action

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// RobotgoSink drives the real pointer and keyboard through robotgo.
type RobotgoSink struct {
	safeMode bool
}

// NewRobotgoSink creates a sink. With safeMode set, every action first
// checks whether the pointer sits at (0, 0) and returns ErrFailSafe if so.
func NewRobotgoSink(safeMode bool) *RobotgoSink {
	return &RobotgoSink{safeMode: safeMode}
}

// ScreenSize returns the main display size.
func ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

func (s *RobotgoSink) check() error {
	if !s.safeMode {
		return nil
	}
	if x, y := robotgo.Location(); x == 0 && y == 0 {
		return ErrFailSafe
	}
	return nil
}

// MoveTo moves the pointer to screen pixel (x, y).
func (s *RobotgoSink) MoveTo(x, y int) error {
	if err := s.check(); err != nil {
		return err
	}
	robotgo.Move(x, y)
	return nil
}

// Click clicks button b at the current position.
func (s *RobotgoSink) Click(b Button) error {
	if err := s.check(); err != nil {
		return err
	}
	robotgo.Click(b.String())
	return nil
}

// MouseDown presses and holds b.
func (s *RobotgoSink) MouseDown(b Button) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := robotgo.Toggle(b.String()); err != nil {
		return fmt.Errorf("mouse down %s: %w", b, err)
	}
	return nil
}

// MouseUp releases b. It skips the fail-safe check so a held button can
// always be released.
func (s *RobotgoSink) MouseUp(b Button) error {
	if err := robotgo.Toggle(b.String(), "up"); err != nil {
		return fmt.Errorf("mouse up %s: %w", b, err)
	}
	return nil
}

// Scroll scrolls vertically by amount notches.
func (s *RobotgoSink) Scroll(amount int) error {
	if err := s.check(); err != nil {
		return err
	}
	robotgo.Scroll(0, amount)
	return nil
}

// PressKey taps a single key.
func (s *RobotgoSink) PressKey(key string) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := robotgo.KeyTap(key); err != nil {
		return fmt.Errorf("key %s: %w", key, err)
	}
	return nil
}

// Hotkey taps the last key with the preceding keys held.
func (s *RobotgoSink) Hotkey(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.check(); err != nil {
		return err
	}
	key, mods := keys[len(keys)-1], keys[:len(keys)-1]
	var err error
	if len(mods) == 0 {
		err = robotgo.KeyTap(key)
	} else {
		err = robotgo.KeyTap(key, mods)
	}
	if err != nil {
		return fmt.Errorf("hotkey %v: %w", keys, err)
	}
	return nil
}
