// Package config loads menu.toml and bindings.toml: menu layout, menu items,
// RetroArch connection, overlay runtime settings and controller bindings.
package config

import (
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

// Default configuration values.
const (
	DefaultTitle           = "GAME MENU"
	DefaultWidth           = 420
	DefaultBackdropOpacity = 0.6
	DefaultItemHeight      = 56
	DefaultPadding         = 16
	DefaultCornerRadius    = 16.0
	DefaultRetroArchHost   = "127.0.0.1"
	DefaultRetroArchPort   = 55355
	DefaultSocketPath      = "/tmp/superkonna-overlay.sock"
	DefaultLogPath         = "/tmp/retroarch.log"
	DefaultScreenWidth     = 1920
	DefaultScreenHeight    = 1080
	DefaultFPS             = 60
	DefaultLanguage        = "en"
	DefaultVolume          = 80
)

// MenuConfigEnv points at an explicit menu.toml.
const MenuConfigEnv = "SUPERKONNA_MENU_CONFIG"

// UserDir holds per-device overrides on Batocera.
const UserDir = "/userdata/system/superkonna-overlay"

// Config is the content of menu.toml.
type Config struct {
	Menu    MenuConfig    `toml:"menu" yaml:"menu"`
	Overlay OverlayConfig `toml:"overlay" yaml:"overlay"`
}

// MenuConfig describes the quick menu panel and its items.
type MenuConfig struct {
	Title           string          `toml:"title" yaml:"title"`
	Width           int             `toml:"width" yaml:"width"`
	BackdropOpacity float64         `toml:"backdrop_opacity" yaml:"backdrop_opacity"`
	ItemHeight      int             `toml:"item_height" yaml:"item_height"`
	Padding         int             `toml:"padding" yaml:"padding"`
	CornerRadius    float64         `toml:"corner_radius" yaml:"corner_radius"`
	SoundScroll     string          `toml:"sound_scroll,omitempty" yaml:"sound_scroll,omitempty"`
	SoundSelect     string          `toml:"sound_select,omitempty" yaml:"sound_select,omitempty"`
	SoundBack       string          `toml:"sound_back,omitempty" yaml:"sound_back,omitempty"`
	RetroArch       RetroArchConfig `toml:"retroarch" yaml:"retroarch"`
	Items           []ItemConfig    `toml:"items" yaml:"items"`
}

// RetroArchConfig is the address of RetroArch's network command interface.
type RetroArchConfig struct {
	Host string `toml:"host" yaml:"host"`
	Port int    `toml:"port" yaml:"port"`
}

// Addr returns host:port.
func (r RetroArchConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ItemConfig is a [[menu.items]] entry.
type ItemConfig struct {
	ID        string   `toml:"id" yaml:"id"`
	Label     string   `toml:"label" yaml:"label"`
	Icon      string   `toml:"icon,omitempty" yaml:"icon,omitempty"`
	Action    string   `toml:"action" yaml:"action"` // dismiss, retroarch, shell
	Command   string   `toml:"command,omitempty" yaml:"command,omitempty"`
	Confirm   bool     `toml:"confirm" yaml:"confirm"`
	Bind      string   `toml:"bind,omitempty" yaml:"bind,omitempty"`
	HoldBind  string   `toml:"hold_bind,omitempty" yaml:"hold_bind,omitempty"`
	HoldMS    Duration `toml:"hold_ms" yaml:"hold_ms"`
	HintLabel string   `toml:"hint_label,omitempty" yaml:"hint_label,omitempty"`
}

// OverlayConfig holds daemon runtime settings.
type OverlayConfig struct {
	SocketPath   string `toml:"socket_path" yaml:"socket_path"`
	LogPath      string `toml:"log_path" yaml:"log_path"`
	ScreenWidth  int    `toml:"screen_width" yaml:"screen_width"`
	ScreenHeight int    `toml:"screen_height" yaml:"screen_height"`
	FPS          int    `toml:"fps" yaml:"fps"`
	MaxQueued    int    `toml:"max_queued" yaml:"max_queued"` // 0 = unbounded
	Language     string `toml:"language" yaml:"language"`
	Volume       int    `toml:"volume" yaml:"volume"` // 0-100
	Sounds       bool   `toml:"sounds" yaml:"sounds"`
	DBus         bool   `toml:"dbus" yaml:"dbus"`
	History      bool   `toml:"history" yaml:"history"`
	HistoryPath  string `toml:"history_path" yaml:"history_path"` // "" = HistoryPath()
}

// HistoryFile returns the achievement history path for this config.
func (o OverlayConfig) HistoryFile() string {
	if o.HistoryPath != "" {
		return o.HistoryPath
	}
	return HistoryPath()
}

// FrameInterval returns the tick period for the configured frame rate.
func (o OverlayConfig) FrameInterval() time.Duration {
	if o.FPS <= 0 {
		return time.Second / DefaultFPS
	}
	return time.Second / time.Duration(o.FPS)
}

// DefaultItems returns the built-in menu: resume, save, load and quit.
func DefaultItems() []ItemConfig {
	hold := Duration(menu.DefaultHoldDuration)
	return []ItemConfig{
		{ID: "resume", Label: "Resume", Icon: "gamepad.svg", Action: "dismiss", Bind: "b", HoldMS: hold},
		{ID: "save_state", Label: "Save State", Icon: "savestate.svg", Action: "retroarch", Command: "SAVE_STATE",
			HoldBind: "y", HoldMS: hold, HintLabel: "Save"},
		{ID: "load_state", Label: "Load State", Icon: "savestate.svg", Action: "retroarch", Command: "LOAD_STATE",
			HoldBind: "x", HoldMS: hold, HintLabel: "Load"},
		{ID: "quit_to_es", Label: "Quit to EmulationStation", Icon: "exit-to-app.svg", Action: "retroarch", Command: "QUIT",
			Confirm: true, HoldBind: "start", HoldMS: Duration(2 * time.Second), HintLabel: "Quit"},
	}
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Menu: MenuConfig{
			Title:           DefaultTitle,
			Width:           DefaultWidth,
			BackdropOpacity: DefaultBackdropOpacity,
			ItemHeight:      DefaultItemHeight,
			Padding:         DefaultPadding,
			CornerRadius:    DefaultCornerRadius,
			SoundScroll:     "scroll.wav",
			SoundSelect:     "confirm.wav",
			SoundBack:       "back.wav",
			RetroArch: RetroArchConfig{
				Host: DefaultRetroArchHost,
				Port: DefaultRetroArchPort,
			},
			Items: DefaultItems(),
		},
		Overlay: OverlayConfig{
			SocketPath:   DefaultSocketPath,
			LogPath:      DefaultLogPath,
			ScreenWidth:  DefaultScreenWidth,
			ScreenHeight: DefaultScreenHeight,
			FPS:          DefaultFPS,
			Language:     DefaultLanguage,
			Volume:       DefaultVolume,
			Sounds:       true,
			History:      true,
		},
	}
}

// Parse decodes menu.toml content over the defaults and validates it.
// A file that declares [[menu.items]] replaces the built-in items entirely.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Menu.Items = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Menu.Items == nil {
		cfg.Menu.Items = DefaultItems()
	}
	for i := range cfg.Menu.Items {
		if cfg.Menu.Items[i].HoldMS == 0 {
			cfg.Menu.Items[i].HoldMS = Duration(menu.DefaultHoldDuration)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Load reads and validates the config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// MenuCandidates returns the menu.toml search chain in priority order.
func MenuCandidates(themeRoot string) []string {
	var out []string
	if p := os.Getenv(MenuConfigEnv); p != "" {
		out = append(out, p)
	}
	out = append(out, filepath.Join(UserDir, "menu.toml"))
	if themeRoot != "" {
		out = append(out,
			filepath.Join(themeRoot, "projects", "overlay", "menu.toml"),
			filepath.Join(themeRoot, "menu.toml"),
		)
	}
	return out
}

// FindAndLoad walks the menu.toml search chain and returns the first config
// that loads, along with its path. Candidates that exist but fail to load are
// logged and skipped. With no usable file the defaults are returned with an
// empty path.
func FindAndLoad(themeRoot string, logger *slog.Logger) (*Config, string) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, path := range MenuCandidates(themeRoot) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := Load(path)
		if err != nil {
			logger.Warn("failed to load menu config", "path", path, "error", err)
			continue
		}
		logger.Info("loaded menu config", "path", path, "items", len(cfg.Menu.Items))
		return cfg, path
	}

	logger.Info("using built-in default menu config")
	return DefaultConfig(), ""
}

// Save writes the configuration atomically to path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// MenuItems resolves the configured items into menu items.
func (c *MenuConfig) MenuItems() ([]menu.Item, error) {
	items := make([]menu.Item, 0, len(c.Items))
	for i, ic := range c.Items {
		it, err := ic.resolve()
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Field = fmt.Sprintf("menu.items[%d].%s", i, ve.Field)
			}
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func (ic ItemConfig) resolve() (menu.Item, error) {
	kind, ok := menu.ParseActionKind(ic.Action)
	if !ok {
		return menu.Item{}, &ValidationError{Field: "action", Reason: fmt.Sprintf("unknown action %q", ic.Action)}
	}
	bind, err := parseOptionalButton(ic.Bind)
	if err != nil {
		return menu.Item{}, &ValidationError{Field: "bind", Reason: err.Error()}
	}
	hold, err := parseOptionalButton(ic.HoldBind)
	if err != nil {
		return menu.Item{}, &ValidationError{Field: "hold_bind", Reason: err.Error()}
	}

	return menu.Item{
		ID:           ic.ID,
		Label:        ic.Label,
		Icon:         ic.Icon,
		Action:       kind,
		Command:      ic.Command,
		Confirm:      ic.Confirm,
		Bind:         bind,
		HoldBind:     hold,
		HoldDuration: ic.HoldMS.Duration(),
		HintLabel:    ic.HintLabel,
	}, nil
}

func parseOptionalButton(name string) (buttons.Button, error) {
	var b buttons.Button
	if err := b.UnmarshalText([]byte(name)); err != nil {
		return buttons.None, err
	}
	return b, nil
}
