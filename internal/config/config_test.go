package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/cheevo/internal/buttons"
	"github.com/jmylchreest/cheevo/internal/menu"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "GAME MENU", cfg.Menu.Title)
	assert.Equal(t, 420, cfg.Menu.Width)
	assert.Equal(t, 0.6, cfg.Menu.BackdropOpacity)
	assert.Equal(t, 56, cfg.Menu.ItemHeight)
	assert.Equal(t, 16, cfg.Menu.Padding)
	assert.Equal(t, 16.0, cfg.Menu.CornerRadius)
	assert.Equal(t, "confirm.wav", cfg.Menu.SoundSelect)
	assert.Equal(t, "127.0.0.1:55355", cfg.Menu.RetroArch.Addr())
	assert.Equal(t, DefaultSocketPath, cfg.Overlay.SocketPath)
	assert.Equal(t, 60, cfg.Overlay.FPS)
	assert.True(t, cfg.Overlay.Sounds)
	assert.False(t, cfg.Overlay.DBus)
	assert.True(t, cfg.Overlay.History)
	require.NoError(t, cfg.Validate())

	items, err := cfg.Menu.MenuItems()
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "resume", items[0].ID)
	assert.Equal(t, buttons.B, items[0].Bind)
	assert.Equal(t, menu.Dismiss, items[0].Action)
	assert.Equal(t, buttons.Y, items[1].HoldBind)
	assert.Equal(t, "quit_to_es", items[3].ID)
	assert.True(t, items[3].Confirm)
	assert.Equal(t, buttons.Start, items[3].HoldBind)
	assert.Equal(t, 2*time.Second, items[3].HoldDuration)
}

func TestParse(t *testing.T) {
	data := `
[menu]
title = "TEST MENU"
width = 400
backdrop_opacity = 0.5
item_height = 48
padding = 12
corner_radius = 12.0

[menu.retroarch]
host = "10.0.0.2"
port = 55400

[[menu.items]]
id = "resume"
label = "Resume"
action = "dismiss"

[[menu.items]]
id = "quit"
label = "Quit"
action = "retroarch"
command = "QUIT"
confirm = true
hold_bind = "start"
hold_ms = 2500

[overlay]
fps = 30
max_queued = 5
`
	cfg, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "TEST MENU", cfg.Menu.Title)
	assert.Equal(t, 400, cfg.Menu.Width)
	assert.Equal(t, "10.0.0.2:55400", cfg.Menu.RetroArch.Addr())
	require.Len(t, cfg.Menu.Items, 2)
	assert.Equal(t, 1500, cfg.Menu.Items[0].HoldMS.Milliseconds(), "hold_ms defaults per item")
	assert.Equal(t, 2500, cfg.Menu.Items[1].HoldMS.Milliseconds())
	assert.True(t, cfg.Menu.Items[1].Confirm)
	assert.Equal(t, 30, cfg.Overlay.FPS)
	assert.Equal(t, 5, cfg.Overlay.MaxQueued)
	assert.Equal(t, "confirm.wav", cfg.Menu.SoundSelect, "unset fields keep defaults")
	assert.Equal(t, DefaultLogPath, cfg.Overlay.LogPath)
}

func TestParse_NoItemsUsesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("[menu]\ntitle = \"X\"\n"))
	require.NoError(t, err)
	assert.Len(t, cfg.Menu.Items, 4)
}

func TestParse_InvalidTOML(t *testing.T) {
	_, err := Parse([]byte("this is not valid toml ["))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"width too small", func(c *Config) { c.Menu.Width = 99 }, "menu.width"},
		{"width too large", func(c *Config) { c.Menu.Width = 5000 }, "menu.width"},
		{"item height", func(c *Config) { c.Menu.ItemHeight = 10 }, "menu.item_height"},
		{"padding", func(c *Config) { c.Menu.Padding = -1 }, "menu.padding"},
		{"backdrop", func(c *Config) { c.Menu.BackdropOpacity = 1.5 }, "menu.backdrop_opacity"},
		{"port", func(c *Config) { c.Menu.RetroArch.Port = 0 }, "menu.retroarch.port"},
		{"fps", func(c *Config) { c.Overlay.FPS = 0 }, "overlay.fps"},
		{"fps too high", func(c *Config) { c.Overlay.FPS = 500 }, "overlay.fps"},
		{"volume", func(c *Config) { c.Overlay.Volume = 101 }, "overlay.volume"},
		{"unknown action", func(c *Config) { c.Menu.Items[0].Action = "launch" }, "menu.items[0].action"},
		{"bad bind", func(c *Config) { c.Menu.Items[1].Bind = "turbo" }, "menu.items[1].bind"},
		{"bad hold bind", func(c *Config) { c.Menu.Items[2].HoldBind = "turbo" }, "menu.items[2].hold_bind"},
		{"duplicate hold", func(c *Config) { c.Menu.Items[2].HoldBind = "y" }, "hold_bind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.NotEmpty(t, ve.Reason)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "menu.toml")
	cfg := DefaultConfig()
	cfg.Menu.Title = "SAVED"

	require.NoError(t, cfg.Save(path))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "SAVED", loaded.Menu.Title)
	assert.Equal(t, cfg.Menu.Items, loaded.Menu.Items)
}

func TestMenuCandidates(t *testing.T) {
	t.Setenv(MenuConfigEnv, "/custom/menu.toml")
	got := MenuCandidates("/theme")
	assert.Equal(t, []string{
		"/custom/menu.toml",
		"/userdata/system/superkonna-overlay/menu.toml",
		"/theme/projects/overlay/menu.toml",
		"/theme/menu.toml",
	}, got)
}

func TestFindAndLoad_SkipsBrokenCandidate(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("[menu]\nwidth = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "menu.toml"), []byte("[menu]\ntitle = \"THEME\"\n"), 0o644))
	t.Setenv(MenuConfigEnv, broken)

	cfg, path := FindAndLoad(dir, nil)
	assert.Equal(t, "THEME", cfg.Menu.Title)
	assert.Equal(t, filepath.Join(dir, "menu.toml"), path)
}

func TestFindAndLoad_Defaults(t *testing.T) {
	t.Setenv(MenuConfigEnv, "")
	cfg, path := FindAndLoad(t.TempDir(), nil)
	assert.Empty(t, path)
	assert.Equal(t, DefaultTitle, cfg.Menu.Title)
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"1500", 1500 * time.Millisecond, false},
		{"2s", 2 * time.Second, false},
		{"250ms", 250 * time.Millisecond, false},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestFrameInterval(t *testing.T) {
	assert.Equal(t, time.Second/60, OverlayConfig{FPS: 60}.FrameInterval())
	assert.Equal(t, time.Second/60, OverlayConfig{}.FrameInterval())
	assert.Equal(t, time.Second/30, OverlayConfig{FPS: 30}.FrameInterval())
}

func TestThemeRoot(t *testing.T) {
	t.Setenv(ThemeRootEnv, "/themes/custom")
	assert.Equal(t, "/themes/custom", ThemeRoot())
}

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "theme.xml"), nil, 0o644))

	assert.Equal(t, filepath.Join(root, "a"), findUp(nested, "theme.xml"))
	assert.Empty(t, findUp(nested, "does-not-exist.xml"))
}

func TestHistoryPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	assert.Equal(t, "/custom/data/cheevo", DataPath())
	assert.Equal(t, "/custom/data/cheevo/history.jsonl", HistoryPath())

	o := OverlayConfig{}
	assert.Equal(t, HistoryPath(), o.HistoryFile())
	o.HistoryPath = "/tmp/cheevos.jsonl"
	assert.Equal(t, "/tmp/cheevos.jsonl", o.HistoryFile())
}
