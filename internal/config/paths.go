package config

import (
	"os"
	"path/filepath"
)

// ThemeRootEnv overrides theme root discovery.
const ThemeRootEnv = "SUPERKONNA_THEME_ROOT"

// DefaultThemeRoot is the Batocera install location of the theme.
const DefaultThemeRoot = "/userdata/themes/es-theme-superkonna"

// ThemeRoot locates the EmulationStation theme the overlay belongs to:
// $SUPERKONNA_THEME_ROOT, else the nearest ancestor of the executable that
// holds a theme.xml, else DefaultThemeRoot.
func ThemeRoot() string {
	if root := os.Getenv(ThemeRootEnv); root != "" {
		return root
	}
	if exe, err := os.Executable(); err == nil {
		if root := findUp(filepath.Dir(exe), "theme.xml"); root != "" {
			return root
		}
	}
	return DefaultThemeRoot
}

// findUp returns the first directory from dir upwards that contains name.
func findUp(dir, name string) string {
	for {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// SoundsDir returns the directory holding UI sound effects.
func SoundsDir(themeRoot string) string {
	return filepath.Join(themeRoot, "assets", "sounds")
}

// ButtonsDir returns the directory holding controller button icons.
func ButtonsDir(themeRoot string) string {
	return filepath.Join(themeRoot, "assets", "buttons")
}

// IconsDir returns the directory holding menu item icons.
func IconsDir(themeRoot string) string {
	return filepath.Join(themeRoot, "assets", "icons")
}

// BadgePath returns the default achievement badge image.
func BadgePath(themeRoot string) string {
	return filepath.Join(themeRoot, "assets", "badges", "trophy.png")
}

// DataPath returns the directory for persistent data:
// $XDG_DATA_HOME/cheevo, else ~/.local/share/cheevo.
func DataPath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "cheevo")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "cheevo")
	}
	return filepath.Join(home, ".local", "share", "cheevo")
}

// HistoryPath returns the default achievement history file.
func HistoryPath() string {
	return filepath.Join(DataPath(), "history.jsonl")
}
