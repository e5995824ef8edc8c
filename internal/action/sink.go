// Package action executes OS pointer and keyboard actions for recognized
// gestures.
package action

import (
	"errors"
	"fmt"
)

// ErrFailSafe is returned by a sink when the user triggered the fail-safe
// (pointer parked in the top-left corner). The dispatcher stops on it.
var ErrFailSafe = errors.New("fail-safe triggered")

// Button is a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	default:
		return fmt.Sprintf("Button(%d)", int(b))
	}
}

// Sink performs OS-level input actions.
type Sink interface {
	MoveTo(x, y int) error
	Click(b Button) error
	MouseDown(b Button) error
	MouseUp(b Button) error
	// Scroll scrolls vertically; positive amounts scroll up.
	Scroll(amount int) error
	PressKey(key string) error
	// Hotkey presses keys together; the last key is tapped while the
	// others are held as modifiers.
	Hotkey(keys ...string) error
}
