// Package command implements the overlay's line-based control protocol and
// its transports: a unix socket listener and client, and a D-Bus service.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmylchreest/cheevo/internal/buttons"
)

// Sentinel errors.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotRunning     = errors.New("overlay is not running")
)

// Kind identifies a command.
type Kind int

const (
	Toggle Kind = iota + 1
	Up
	Down
	Select
	Back
	Popup
	Bind
	HoldStart
	HoldRelease
)

var kindWords = map[Kind]string{
	Toggle:      "MENU_TOGGLE",
	Up:          "MENU_UP",
	Down:        "MENU_DOWN",
	Select:      "MENU_SELECT",
	Back:        "MENU_BACK",
	Popup:       "POPUP",
	Bind:        "BIND",
	HoldStart:   "HOLD_START",
	HoldRelease: "HOLD_RELEASE",
}

func (k Kind) String() string {
	if w, ok := kindWords[k]; ok {
		return w
	}
	return "unknown"
}

// Command is one decoded control line.
type Command struct {
	Kind Kind
	// Title and Description are set for Popup.
	Title       string
	Description string
	// Button is set for Bind, HoldStart and HoldRelease.
	Button buttons.Button
}

// NewPopup returns a POPUP command.
func NewPopup(title, description string) Command {
	return Command{Kind: Popup, Title: title, Description: description}
}

// Parse decodes a trimmed line. Unrecognized lines, and button commands
// naming unknown buttons, yield false.
func Parse(line string) (Command, bool) {
	line = strings.TrimSpace(line)

	switch line {
	case "MENU_TOGGLE":
		return Command{Kind: Toggle}, true
	case "MENU_UP":
		return Command{Kind: Up}, true
	case "MENU_DOWN":
		return Command{Kind: Down}, true
	case "MENU_SELECT":
		return Command{Kind: Select}, true
	case "MENU_BACK":
		return Command{Kind: Back}, true
	}

	if rest, ok := strings.CutPrefix(line, "POPUP "); ok {
		title, desc, _ := strings.Cut(rest, "|")
		return NewPopup(title, desc), true
	}

	word, arg, ok := strings.Cut(line, " ")
	if !ok {
		return Command{}, false
	}
	var kind Kind
	switch word {
	case "BIND":
		kind = Bind
	case "HOLD_START":
		kind = HoldStart
	case "HOLD_RELEASE":
		kind = HoldRelease
	default:
		return Command{}, false
	}
	b, ok := buttons.Parse(strings.TrimSpace(arg))
	if !ok || b == buttons.None {
		return Command{}, false
	}
	return Command{Kind: kind, Button: b}, true
}

// ParseStrict is Parse with an error naming the rejected line.
func ParseStrict(line string) (Command, error) {
	c, ok := Parse(line)
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, strings.TrimSpace(line))
	}
	return c, nil
}

// String renders the wire form accepted by Parse.
func (c Command) String() string {
	switch c.Kind {
	case Popup:
		if c.Description == "" {
			return "POPUP " + c.Title
		}
		return "POPUP " + c.Title + "|" + c.Description
	case Bind, HoldStart, HoldRelease:
		return c.Kind.String() + " " + c.Button.ConfigName()
	default:
		return c.Kind.String()
	}
}
