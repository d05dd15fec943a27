package buttons

import (
	"bufio"
	"os"
	"path"
	"strings"
)

// Style is a controller family, which decides button glyphs and icons.
type Style int

const (
	Xbox Style = iota
	PlayStation
	SteamDeck
	Switch
)

// StyleEnv overrides controller detection.
const StyleEnv = "SUPERKONNA_CONTROLLER_STYLE"

// DefaultESInputPath is where EmulationStation records configured controllers.
const DefaultESInputPath = "/userdata/system/configs/emulationstation/es_input.cfg"

func (s Style) String() string {
	switch s {
	case PlayStation:
		return "playstation"
	case SteamDeck:
		return "steamdeck"
	case Switch:
		return "switch"
	default:
		return "xbox"
	}
}

// ParseStyle resolves a style name as accepted by SUPERKONNA_CONTROLLER_STYLE.
func ParseStyle(name string) (Style, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "playstation", "ps":
		return PlayStation, true
	case "switch", "nintendo":
		return Switch, true
	case "steamdeck", "steam":
		return SteamDeck, true
	case "xbox":
		return Xbox, true
	default:
		return Xbox, false
	}
}

// DetectStyle picks the controller style from the environment override, falling
// back to the most recently listed device in esInputPath. Xbox is the default.
func DetectStyle(esInputPath string) Style {
	if s, ok := ParseStyle(os.Getenv(StyleEnv)); ok {
		return s
	}
	if esInputPath == "" {
		esInputPath = DefaultESInputPath
	}
	return StyleFromDeviceName(lastDeviceName(esInputPath))
}

// StyleFromDeviceName classifies a controller by its reported device name.
func StyleFromDeviceName(name string) Style {
	name = strings.ToLower(name)
	switch {
	case containsAny(name, "playstation", "dualshock", "dualsense", "sony"):
		return PlayStation
	case strings.Contains(name, "steam") && strings.Contains(name, "deck"),
		strings.Contains(name, "valve"):
		return SteamDeck
	case containsAny(name, "nintendo", "switch", "pro controller", "joy-con", "joycon"):
		return Switch
	default:
		return Xbox
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// lastDeviceName returns the last deviceName="..." attribute in the file.
func lastDeviceName(p string) string {
	f, err := os.Open(p)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	const attr = `devicename="`
	var last string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.ToLower(scanner.Text())
		idx := strings.Index(line, attr)
		if idx < 0 {
			continue
		}
		rest := line[idx+len(attr):]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			continue
		}
		last = rest[:end]
	}
	return last
}

// iconNames holds per-style SVG base names, indexed by Button.
var iconNames = map[Style]map[Button]string{
	Xbox: {
		A: "xbox_button_a", B: "xbox_button_b", X: "xbox_button_x", Y: "xbox_button_y",
		LB: "xbox_lb", RB: "xbox_rb", LT: "xbox_lt", RT: "xbox_rt",
		Start: "xbox_button_menu", Select: "xbox_button_view",
		DpadUp: "xbox_dpad_up", DpadDown: "xbox_dpad_down",
		DpadLeft: "xbox_dpad_left", DpadRight: "xbox_dpad_right",
	},
	PlayStation: {
		A: "playstation_button_cross", B: "playstation_button_circle",
		X: "playstation_button_square", Y: "playstation_button_triangle",
		LB: "playstation_trigger_l1", RB: "playstation_trigger_r1",
		LT: "playstation_trigger_l2", RT: "playstation_trigger_r2",
		Start: "playstation5_button_options", Select: "playstation5_button_create",
		DpadUp: "playstation_dpad_up", DpadDown: "playstation_dpad_down",
		DpadLeft: "playstation_dpad_left", DpadRight: "playstation_dpad_right",
	},
	SteamDeck: {
		A: "steamdeck_button_a", B: "steamdeck_button_b", X: "steamdeck_button_x", Y: "steamdeck_button_y",
		LB: "steamdeck_button_l1", RB: "steamdeck_button_r1",
		LT: "steamdeck_button_l2", RT: "steamdeck_button_r2",
		Start: "steamdeck_button_options", Select: "steamdeck_button_view",
		DpadUp: "steamdeck_dpad_up", DpadDown: "steamdeck_dpad_down",
		DpadLeft: "steamdeck_dpad_left", DpadRight: "steamdeck_dpad_right",
	},
	// Nintendo swaps the face labels: the bottom button is B, the right one A.
	Switch: {
		A: "switch_button_b", B: "switch_button_a", X: "switch_button_y", Y: "switch_button_x",
		LB: "switch_button_l", RB: "switch_button_r",
		LT: "switch_button_zl", RT: "switch_button_zr",
		Start: "switch_button_plus", Select: "switch_button_minus",
		DpadUp: "switch_dpad_up", DpadDown: "switch_dpad_down",
		DpadLeft: "switch_dpad_left", DpadRight: "switch_dpad_right",
	},
}

// IconFile returns the icon path relative to assets/buttons/, or "" for None.
func IconFile(b Button, s Style) string {
	name, ok := iconNames[s][b]
	if !ok {
		return ""
	}
	return path.Join(s.String(), name+".svg")
}

// Label returns the short glyph text drawn inside a button circle when no icon is available.
func Label(b Button, s Style) string {
	switch s {
	case PlayStation:
		switch b {
		case A:
			return "X"
		case B:
			return "O"
		case X:
			return "S"
		case Y:
			return "T"
		case LB:
			return "L1"
		case RB:
			return "R1"
		case LT:
			return "L2"
		case RT:
			return "R2"
		}
	case Switch:
		switch b {
		case A:
			return "B"
		case B:
			return "A"
		case X:
			return "Y"
		case Y:
			return "X"
		case LB:
			return "L"
		case RB:
			return "R"
		case LT:
			return "ZL"
		case RT:
			return "ZR"
		case Start:
			return "+"
		case Select:
			return "-"
		}
	}

	switch b {
	case A:
		return "A"
	case B:
		return "B"
	case X:
		return "X"
	case Y:
		return "Y"
	case LB:
		return "LB"
	case RB:
		return "RB"
	case LT:
		return "LT"
	case RT:
		return "RT"
	case Start:
		return "≡"
	case Select:
		return "⧉"
	case DpadUp:
		return "↑"
	case DpadDown:
		return "↓"
	case DpadLeft:
		return "←"
	case DpadRight:
		return "→"
	default:
		return ""
	}
}
