package menu

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/cheevo/internal/buttons"
)

// DefaultHoldDuration applies to hold bindings that do not set their own.
const DefaultHoldDuration = 1500 * time.Millisecond

// ActionKind says what executing an item does.
type ActionKind int

const (
	Unknown ActionKind = iota
	Dismiss
	RetroArch
	Shell
)

// ParseActionKind resolves a config action name. Unknown names return Unknown and false.
func ParseActionKind(s string) (ActionKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dismiss":
		return Dismiss, true
	case "retroarch":
		return RetroArch, true
	case "shell":
		return Shell, true
	default:
		return Unknown, false
	}
}

func (k ActionKind) String() string {
	switch k {
	case Dismiss:
		return "dismiss"
	case RetroArch:
		return "retroarch"
	case Shell:
		return "shell"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ActionKind) UnmarshalText(text []byte) error {
	parsed, ok := ParseActionKind(string(text))
	if !ok {
		return fmt.Errorf("unknown action %q", string(text))
	}
	*k = parsed
	return nil
}

// Item is one actionable menu row.
type Item struct {
	ID      string
	Label   string
	Icon    string
	Action  ActionKind
	Command string
	Confirm bool

	// Bind is the quick-press button, buttons.None when unbound.
	Bind buttons.Button
	// HoldBind fires the item after the button is held for HoldDuration.
	HoldBind     buttons.Button
	HoldDuration time.Duration

	HintLabel string
}

// Hint returns the short label shown in the hint bar.
func (it Item) Hint() string {
	if it.HintLabel != "" {
		return it.HintLabel
	}
	return it.Label
}

func (it Item) holdThreshold() time.Duration {
	if it.HoldDuration <= 0 {
		return DefaultHoldDuration
	}
	return it.HoldDuration
}

// Action is the side effect requested by an executed item.
type Action struct {
	Kind    ActionKind
	Command string
	ItemID  string
}

func (a Action) String() string {
	if a.Command == "" {
		return a.Kind.String()
	}
	return a.Kind.String() + ":" + a.Command
}

// BoundItem is an item with a controller binding. Hold is true when the
// binding is a hold rather than a quick press.
type BoundItem struct {
	Item Item
	Hold bool
}

// Button returns the button that drives the hint.
func (b BoundItem) Button() buttons.Button {
	if b.Hold {
		return b.Item.HoldBind
	}
	return b.Item.Bind
}

// Hint converts the binding into a hint bar entry.
func (b BoundItem) Hint() Hint {
	return Hint{Button: b.Button(), Label: b.Item.Hint(), Hold: b.Hold}
}

// Hint is one entry of the hint bar under the menu panel.
type Hint struct {
	Button buttons.Button
	Label  string
	Hold   bool
}
