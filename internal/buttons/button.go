// Package buttons maps logical controller buttons to names, controller styles and icons.
package buttons

import "strings"

// Button is a logical controller button using the SDL/EmulationStation layout.
type Button int

const (
	// None is the zero value and means "no binding".
	None Button = iota
	A           // bottom face
	B           // right face
	X           // left face
	Y           // top face
	LB
	RB
	LT
	RT
	Start
	Select
	DpadUp
	DpadDown
	DpadLeft
	DpadRight
)

// All lists every bindable button in display order.
var All = []Button{
	A, B, X, Y,
	LB, RB, LT, RT,
	Start, Select,
	DpadUp, DpadDown, DpadLeft, DpadRight,
}

// Parse resolves a config button name (case-insensitive, with aliases).
// Unknown names return None and false.
func Parse(name string) (Button, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "a":
		return A, true
	case "b":
		return B, true
	case "x":
		return X, true
	case "y":
		return Y, true
	case "lb", "l1":
		return LB, true
	case "rb", "r1":
		return RB, true
	case "lt", "l2":
		return LT, true
	case "rt", "r2":
		return RT, true
	case "start":
		return Start, true
	case "select", "back":
		return Select, true
	case "dpad_up", "up":
		return DpadUp, true
	case "dpad_down", "down":
		return DpadDown, true
	case "dpad_left", "left":
		return DpadLeft, true
	case "dpad_right", "right":
		return DpadRight, true
	default:
		return None, false
	}
}

// ConfigName returns the canonical config spelling of the button.
func (b Button) ConfigName() string {
	switch b {
	case A:
		return "a"
	case B:
		return "b"
	case X:
		return "x"
	case Y:
		return "y"
	case LB:
		return "l1"
	case RB:
		return "r1"
	case LT:
		return "l2"
	case RT:
		return "r2"
	case Start:
		return "start"
	case Select:
		return "select"
	case DpadUp:
		return "up"
	case DpadDown:
		return "down"
	case DpadLeft:
		return "left"
	case DpadRight:
		return "right"
	default:
		return ""
	}
}

func (b Button) String() string {
	if name := b.ConfigName(); name != "" {
		return name
	}
	return "none"
}

// MarshalText implements encoding.TextMarshaler.
func (b Button) MarshalText() ([]byte, error) {
	return []byte(b.ConfigName()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty value is None.
func (b *Button) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*b = None
		return nil
	}
	parsed, ok := Parse(string(text))
	if !ok {
		return &UnknownButtonError{Name: string(text)}
	}
	*b = parsed
	return nil
}

// UnknownButtonError is returned when a button name cannot be resolved.
type UnknownButtonError struct {
	Name string
}

func (e *UnknownButtonError) Error() string {
	return "unknown button " + `"` + e.Name + `"`
}
