package daemon

import (
	"image"
	"log/slog"
	"path/filepath"

	"github.com/jmylchreest/cheevo/internal/buttons"
	"github.com/jmylchreest/cheevo/internal/config"
	"github.com/jmylchreest/cheevo/internal/locale"
	"github.com/jmylchreest/cheevo/internal/menu"
	"github.com/jmylchreest/cheevo/internal/render"
	"github.com/jmylchreest/cheevo/internal/theme"
)

// Resources are the theme-derived inputs of the compositor.
type Resources struct {
	Root    string
	Theme   *theme.Theme
	Fonts   *render.Fonts
	Strings *locale.Strings
	Icons   *buttons.IconSet
	Style   buttons.Style
	Badge   image.Image
}

// LocalesDir is where a theme keeps extra translation files.
func LocalesDir(themeRoot string) string {
	return filepath.Join(themeRoot, "locales")
}

// LoadResources loads everything the compositor draws with from a theme
// root. Nothing here is fatal: each missing piece falls back to a built-in.
func LoadResources(themeRoot string, overlay config.OverlayConfig, logger *slog.Logger) *Resources {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resources{Root: themeRoot}

	th, err := theme.Load(themeRoot)
	if err != nil {
		logger.Warn("failed to load theme, using defaults", "root", themeRoot, "error", err)
		th = theme.Default(themeRoot)
	}
	r.Theme = th
	r.Fonts = render.LoadFonts(th, logger)

	strs, err := locale.New(overlay.Language)
	if err != nil {
		logger.Warn("unsupported language, using english", "language", overlay.Language, "error", err)
		strs = locale.MustNew(config.DefaultLanguage)
	}
	if err := strs.LoadDir(LocalesDir(themeRoot)); err != nil {
		logger.Warn("failed to load theme translations", "error", err)
	}
	r.Strings = strs

	style := buttons.DetectStyle("")
	r.Style = style
	icons, err := buttons.LoadIcons(config.ButtonsDir(themeRoot), style, render.HintIconSize)
	if err != nil {
		logger.Warn("failed to load button icons", "style", style, "error", err)
		icons = nil
	} else {
		logger.Debug("loaded button icons", "style", style, "count", icons.Len())
	}
	r.Icons = icons

	if badge, err := render.LoadBadge(config.BadgePath(themeRoot)); err == nil {
		r.Badge = badge
	} else {
		logger.Debug("no achievement badge", "error", err)
	}
	return r
}

// Compositor builds a compositor for mc over these resources.
func (r *Resources) Compositor(mc config.MenuConfig) *render.Compositor {
	return render.New(render.Options{
		Theme:   r.Theme,
		Menu:    mc,
		Fonts:   r.Fonts,
		Strings: r.Strings,
		Icons:   r.Icons,
		Style:   r.Style,
		Badge:   r.Badge,
	})
}

// ConfirmHint returns the confirm hint labelled in the loaded language.
func (r *Resources) ConfirmHint() menu.Hint {
	return ConfirmHint(r.Strings.Select())
}
