// Package menu implements the in-game quick menu state machine: cursor
// navigation, confirm gating and hold-to-activate bindings.
//
// Every time-dependent method takes the current time so callers (and tests)
// own the clock.
package menu

import (
	"time"

	"github.com/jmylchreest/cheevo/internal/buttons"
)

const (
	OpenDuration  = 200 * time.Millisecond
	CloseDuration = 150 * time.Millisecond
)

// State is the menu's animation and interaction state.
type State int

const (
	Closed State = iota
	Opening
	Open
	Confirming
	Closing
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Confirming:
		return "confirming"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Menu is not safe for concurrent use; the overlay tick loop owns it.
type Menu struct {
	state           State
	armed           int // item index awaiting confirmation while Confirming
	cursor          int
	items           []Item
	transitionStart time.Time
	dirty           bool
	holdStarts      map[buttons.Button]time.Time
}

// New creates a closed menu over items.
func New(items []Item) *Menu {
	return &Menu{
		items:      items,
		holdStarts: make(map[buttons.Button]time.Time),
	}
}

func (m *Menu) State() State  { return m.state }
func (m *Menu) Cursor() int   { return m.cursor }
func (m *Menu) Items() []Item { return m.items }
func (m *Menu) Dirty() bool   { return m.dirty }
func (m *Menu) ClearDirty()   { m.dirty = false }

// IsVisible reports whether anything of the menu should be drawn.
func (m *Menu) IsVisible() bool {
	return m.state != Closed
}

// Armed returns the item index awaiting confirmation.
func (m *Menu) Armed() (int, bool) {
	if m.state != Confirming {
		return 0, false
	}
	return m.armed, true
}

// SetItems replaces the item list. It is only applied while Closed; the
// return value reports whether the swap happened.
func (m *Menu) SetItems(items []Item) bool {
	if m.state != Closed {
		return false
	}
	m.items = items
	m.cursor = 0
	clear(m.holdStarts)
	return true
}

func (m *Menu) interactive() bool {
	return m.state == Open || m.state == Confirming
}

func (m *Menu) transition(to State, now time.Time) {
	m.state = to
	m.transitionStart = now
	m.dirty = true
	if to != Open && to != Confirming {
		clear(m.holdStarts)
	}
}

// Toggle opens a closed menu or starts closing an open one.
// It does nothing mid-animation.
func (m *Menu) Toggle(now time.Time) {
	switch m.state {
	case Closed:
		m.cursor = 0
		m.transition(Opening, now)
	case Open, Confirming:
		m.transition(Closing, now)
	}
}

func (m *Menu) MoveUp() {
	if m.state != Open || len(m.items) == 0 {
		return
	}
	if m.cursor == 0 {
		m.cursor = len(m.items) - 1
	} else {
		m.cursor--
	}
	m.dirty = true
}

func (m *Menu) MoveDown() {
	if m.state != Open || len(m.items) == 0 {
		return
	}
	m.cursor = (m.cursor + 1) % len(m.items)
	m.dirty = true
}

// Select activates the item under the cursor. Items requiring confirmation
// arm on the first select and execute on the second.
func (m *Menu) Select(now time.Time) *Action {
	if len(m.items) == 0 {
		return nil
	}
	switch m.state {
	case Open:
		if m.items[m.cursor].Confirm {
			m.armed = m.cursor
			m.state = Confirming
			m.dirty = true
			return nil
		}
		return m.execute(m.cursor, now)
	case Confirming:
		return m.execute(m.armed, now)
	default:
		return nil
	}
}

// Back closes an open menu or cancels a pending confirmation.
func (m *Menu) Back(now time.Time) {
	switch m.state {
	case Open:
		m.transition(Closing, now)
	case Confirming:
		m.state = Open
		m.dirty = true
	}
}

// Tick completes open and close animations.
func (m *Menu) Tick(now time.Time) {
	elapsed := now.Sub(m.transitionStart)
	switch m.state {
	case Opening:
		if elapsed >= OpenDuration {
			m.state = Open
		}
		m.dirty = true
	case Closing:
		if elapsed >= CloseDuration {
			m.state = Closed
		}
		m.dirty = true
	}
}

// Opacity is the fade factor in [0, 1].
func (m *Menu) Opacity(now time.Time) float64 {
	elapsed := max(now.Sub(m.transitionStart), 0)
	switch m.state {
	case Opening:
		return min(float64(elapsed)/float64(OpenDuration), 1)
	case Open, Confirming:
		return 1
	case Closing:
		return 1 - min(float64(elapsed)/float64(CloseDuration), 1)
	default:
		return 0
	}
}

// Scale grows the panel from 95% to full size as it fades in.
func (m *Menu) Scale(now time.Time) float64 {
	return 0.95 + 0.05*m.Opacity(now)
}

// ActivateBind handles a quick-press button. The first item bound to button
// executes, or arms if it requires confirmation.
func (m *Menu) ActivateBind(button buttons.Button, now time.Time) *Action {
	if !m.interactive() || button == buttons.None {
		return nil
	}
	for idx, it := range m.items {
		if it.Bind != button {
			continue
		}
		if it.Confirm {
			m.cursor = idx
			m.armed = idx
			m.state = Confirming
			m.dirty = true
			return nil
		}
		return m.execute(idx, now)
	}
	return nil
}

// HoldStart records the first press of button. Repeated presses keep the
// original timestamp.
func (m *Menu) HoldStart(button buttons.Button, now time.Time) {
	if !m.interactive() || button == buttons.None {
		return
	}
	if _, ok := m.holdStarts[button]; !ok {
		m.holdStarts[button] = now
	}
	m.dirty = true
}

func (m *Menu) HoldRelease(button buttons.Button) {
	delete(m.holdStarts, button)
	m.dirty = true
}

// IsHeld reports whether button has a running hold timer.
func (m *Menu) IsHeld(button buttons.Button) bool {
	_, ok := m.holdStarts[button]
	return ok
}

// CheckHolds fires at most one item whose hold button has been held long
// enough, in item order. Leaving the interactive states drops all timers.
func (m *Menu) CheckHolds(now time.Time) *Action {
	if !m.interactive() {
		clear(m.holdStarts)
		return nil
	}
	for idx, it := range m.items {
		if it.HoldBind == buttons.None {
			continue
		}
		start, ok := m.holdStarts[it.HoldBind]
		if !ok {
			continue
		}
		if now.Sub(start) >= it.holdThreshold() {
			delete(m.holdStarts, it.HoldBind)
			return m.execute(idx, now)
		}
	}
	return nil
}

// HoldProgress returns how far button's hold is toward firing, in [0, 1].
func (m *Menu) HoldProgress(button buttons.Button, now time.Time) float64 {
	start, ok := m.holdStarts[button]
	if !ok {
		return 0
	}
	threshold := DefaultHoldDuration
	for _, it := range m.items {
		if it.HoldBind == button {
			threshold = it.holdThreshold()
			break
		}
	}
	elapsed := max(now.Sub(start), 0)
	return min(float64(elapsed)/float64(threshold), 1)
}

// BoundItems lists items with a controller binding. A quick-press binding
// takes precedence over a hold binding on the same item.
func (m *Menu) BoundItems() []BoundItem {
	var out []BoundItem
	for _, it := range m.items {
		switch {
		case it.Bind != buttons.None:
			out = append(out, BoundItem{Item: it})
		case it.HoldBind != buttons.None:
			out = append(out, BoundItem{Item: it, Hold: true})
		}
	}
	return out
}

func (m *Menu) execute(idx int, now time.Time) *Action {
	it := m.items[idx]

	var action *Action
	switch it.Action {
	case Dismiss:
		action = &Action{Kind: Dismiss, ItemID: it.ID}
	case RetroArch, Shell:
		if it.Command != "" {
			action = &Action{Kind: it.Action, Command: it.Command, ItemID: it.ID}
		}
	}

	m.transition(Closing, now)
	return action
}
