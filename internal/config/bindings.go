package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/cheevo/internal/buttons"
	"github.com/jmylchreest/cheevo/internal/menu"
)

// BindingsEnv points at an explicit bindings.toml.
const BindingsEnv = "SUPERKONNA_BINDINGS"

// ConfirmAction is the action name whose hint always leads the hint bar.
const ConfirmAction = "confirm"

//go:embed bindings.toml
var defaultBindings []byte

type bindingsFile struct {
	Defaults struct {
		HoldMS Duration `toml:"hold_ms"`
	} `toml:"defaults"`
	Actions map[string]actionDef `toml:"actions"`
	Menu    []menuItemDef        `toml:"menu"`
}

type actionDef struct {
	Label   string   `toml:"label"`
	Button  string   `toml:"button"`
	Hold    bool     `toml:"hold"`
	HoldMS  Duration `toml:"hold_ms"`
	Confirm bool     `toml:"confirm"`
}

type menuItemDef struct {
	ID         string `toml:"id"`
	Label      string `toml:"label"`
	Icon       string `toml:"icon"`
	ActionType string `toml:"action_type"`
	Command    string `toml:"command"`
	BindAction string `toml:"bind_action"`
}

// Binding is a resolved semantic action.
type Binding struct {
	Name         string
	Label        string
	Button       buttons.Button
	Hold         bool
	HoldDuration time.Duration
	Confirm      bool
}

// BoundMenuItem is a menu entry with the binding it references, if any.
type BoundMenuItem struct {
	ID      string
	Label   string
	Icon    string
	Action  menu.ActionKind
	Command string
	Confirm bool
	Binding *Binding
}

// Bindings is the resolved content of bindings.toml.
type Bindings struct {
	Actions map[string]Binding
	Menu    []BoundMenuItem
}

// ParseBindings decodes and resolves bindings.toml content. Actions naming an
// unknown button are dropped with a warning; menu entries with an unknown
// action type are an error.
func ParseBindings(data []byte, logger *slog.Logger) (*Bindings, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var file bindingsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse bindings: %w", err)
	}

	defaultHold := file.Defaults.HoldMS.Duration()
	if defaultHold <= 0 {
		defaultHold = menu.DefaultHoldDuration
	}

	b := &Bindings{Actions: make(map[string]Binding, len(file.Actions))}
	for name, def := range file.Actions {
		btn, ok := buttons.Parse(def.Button)
		if !ok {
			logger.Warn("dropping binding with unknown button", "action", name, "button", def.Button)
			continue
		}
		hold := def.HoldMS.Duration()
		if hold <= 0 {
			hold = defaultHold
		}
		b.Actions[name] = Binding{
			Name:         name,
			Label:        def.Label,
			Button:       btn,
			Hold:         def.Hold,
			HoldDuration: hold,
			Confirm:      def.Confirm,
		}
	}

	for i, def := range file.Menu {
		kind, ok := menu.ParseActionKind(def.ActionType)
		if !ok {
			return nil, invalid(fmt.Sprintf("menu[%d].action_type", i), "unknown action %q", def.ActionType)
		}
		item := BoundMenuItem{
			ID:      def.ID,
			Label:   def.Label,
			Icon:    def.Icon,
			Action:  kind,
			Command: def.Command,
		}
		if binding, ok := b.Actions[def.BindAction]; ok {
			item.Binding = &binding
			item.Confirm = binding.Confirm
		}
		b.Menu = append(b.Menu, item)
	}

	items, _ := b.MenuItems()
	if err := ValidateItems(items); err != nil {
		return nil, err
	}
	return b, nil
}

// LoadBindings reads and resolves the bindings file at path.
func LoadBindings(path string, logger *slog.Logger) (*Bindings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bindings file: %w", err)
	}
	return ParseBindings(data, logger)
}

// DefaultBindings returns the built-in bindings.
func DefaultBindings() *Bindings {
	b, err := ParseBindings(defaultBindings, slog.Default())
	if err != nil {
		panic(fmt.Sprintf("built-in bindings.toml is invalid: %v", err))
	}
	return b
}

// BindingsCandidates returns the bindings.toml search chain in priority order.
func BindingsCandidates(themeRoot string) []string {
	var out []string
	if p := os.Getenv(BindingsEnv); p != "" {
		out = append(out, p)
	}
	out = append(out, filepath.Join(UserDir, "bindings.toml"))
	if themeRoot != "" {
		out = append(out, filepath.Join(themeRoot, "bindings.toml"))
	}
	return out
}

// FindBindings walks the bindings search chain. The returned path is empty
// when the built-in bindings are used.
func FindBindings(themeRoot string, logger *slog.Logger) (*Bindings, string) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, path := range BindingsCandidates(themeRoot) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		b, err := LoadBindings(path, logger)
		if err != nil {
			logger.Warn("failed to load bindings", "path", path, "error", err)
			continue
		}
		logger.Info("loaded bindings", "path", path, "actions", len(b.Actions))
		return b, path
	}

	logger.Info("using built-in default bindings")
	return DefaultBindings(), ""
}

// HintBar returns the hint bar entries: confirm first, then every menu item
// binding in menu order.
func (b *Bindings) HintBar() []menu.Hint {
	var hints []menu.Hint
	if a, ok := b.Actions[ConfirmAction]; ok {
		hints = append(hints, menu.Hint{Button: a.Button, Label: a.Label})
	}
	for _, item := range b.Menu {
		if item.Binding == nil || item.Binding.Name == ConfirmAction {
			continue
		}
		hints = append(hints, menu.Hint{
			Button: item.Binding.Button,
			Label:  item.Binding.Label,
			Hold:   item.Binding.Hold,
		})
	}
	return hints
}

// MenuItems converts the bound menu entries into menu items.
func (b *Bindings) MenuItems() ([]menu.Item, error) {
	if len(b.Menu) == 0 {
		return nil, errors.New("bindings declare no menu items")
	}
	items := make([]menu.Item, 0, len(b.Menu))
	for _, bm := range b.Menu {
		it := menu.Item{
			ID:           bm.ID,
			Label:        bm.Label,
			Icon:         bm.Icon,
			Action:       bm.Action,
			Command:      bm.Command,
			Confirm:      bm.Confirm,
			HoldDuration: menu.DefaultHoldDuration,
			HintLabel:    bm.Label,
		}
		if bm.Binding != nil {
			it.HintLabel = bm.Binding.Label
			if bm.Binding.Hold {
				it.HoldBind = bm.Binding.Button
				it.HoldDuration = bm.Binding.HoldDuration
			} else {
				it.Bind = bm.Binding.Button
			}
		}
		items = append(items, it)
	}
	return items, nil
}

// HintsForItems builds a hint bar for items that did not come from a
// bindings file: the confirm hint first, then each bound item.
func HintsForItems(confirm menu.Hint, items []menu.Item) []menu.Hint {
	hints := []menu.Hint{confirm}
	for _, bi := range menu.New(items).BoundItems() {
		hints = append(hints, bi.Hint())
	}
	return hints
}
