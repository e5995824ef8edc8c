// Package tray puts pause control and the last gesture in the system tray.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Controller is the part of the pipeline the tray drives.
type Controller interface {
	Toggle() bool
	Paused() bool
}

// Tray is the system tray menu.
type Tray struct {
	ctrl Controller

	mu          sync.RWMutex
	onDashboard func()
	onQuit      func()
	lastGesture string

	menuToggle      *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a Tray that pauses and resumes ctrl.
func New(ctrl Controller) *Tray {
	return &Tray{ctrl: ctrl}
}

// OnDashboard sets the callback for the dashboard menu item.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run shows the tray and blocks until Quit. It must be called from the main
// goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Spatial Touch")
	systray.SetTooltip("Spatial Touch hand tracking")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleLabel(t.ctrl.Paused()), "Pause or resume hand tracking")
	systray.AddSeparator()
	t.menuLastGesture = systray.AddMenuItem(gestureLabel(t.lastGesture), "Last detected gesture")
	t.menuLastGesture.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Spatial Touch")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.SetPaused(t.ctrl.Toggle())
			case <-menuDashboard.ClickedCh:
				t.call(func() func() { return t.onDashboard })
			case <-menuQuit.ClickedCh:
				t.call(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

// call runs the callback returned by get outside the lock.
func (t *Tray) call(get func() func()) {
	t.mu.RLock()
	fn := get()
	t.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// SetPaused updates the toggle item. Pause changes made through the API
// reach the tray through this.
func (t *Tray) SetPaused(paused bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleLabel(paused))
	}
}

// SetLastGesture updates the last gesture item.
func (t *Tray) SetLastGesture(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastGesture = name
	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(gestureLabel(name))
	}
}

// LastGesture returns the name shown in the menu.
func (t *Tray) LastGesture() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastGesture
}

func toggleLabel(paused bool) string {
	if paused {
		return "○ Paused"
	}
	return "● Tracking"
}

func gestureLabel(name string) string {
	if name == "" {
		return "Last: none"
	}
	return "Last: " + name
}
