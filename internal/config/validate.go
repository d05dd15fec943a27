package config

import (
	"fmt"

	"github.com/jmylchreest/cheevo/internal/buttons"
	"github.com/jmylchreest/cheevo/internal/menu"
)

// ValidationError reports a single invalid configuration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	m := c.Menu
	if m.Width < 100 || m.Width > 4096 {
		return invalid("menu.width", "must be between 100 and 4096, got %d", m.Width)
	}
	if m.ItemHeight < 16 {
		return invalid("menu.item_height", "must be at least 16, got %d", m.ItemHeight)
	}
	if m.Padding < 0 {
		return invalid("menu.padding", "must not be negative, got %d", m.Padding)
	}
	if m.BackdropOpacity < 0 || m.BackdropOpacity > 1 {
		return invalid("menu.backdrop_opacity", "must be between 0 and 1, got %g", m.BackdropOpacity)
	}
	if m.CornerRadius < 0 {
		return invalid("menu.corner_radius", "must not be negative, got %g", m.CornerRadius)
	}
	if m.RetroArch.Port <= 0 || m.RetroArch.Port > 65535 {
		return invalid("menu.retroarch.port", "must be between 1 and 65535, got %d", m.RetroArch.Port)
	}

	items, err := m.MenuItems()
	if err != nil {
		return err
	}
	if err := ValidateItems(items); err != nil {
		return err
	}

	o := c.Overlay
	if o.FPS < 1 || o.FPS > 240 {
		return invalid("overlay.fps", "must be between 1 and 240, got %d", o.FPS)
	}
	if o.Volume < 0 || o.Volume > 100 {
		return invalid("overlay.volume", "must be between 0 and 100, got %d", o.Volume)
	}
	if o.MaxQueued < 0 {
		return invalid("overlay.max_queued", "must not be negative, got %d", o.MaxQueued)
	}
	if o.ScreenWidth <= 0 || o.ScreenHeight <= 0 {
		return invalid("overlay.screen_width", "screen size must be positive, got %dx%d", o.ScreenWidth, o.ScreenHeight)
	}
	return nil
}

// ValidateItems rejects item lists where two items share a hold button,
// since only the first of them could ever fire.
func ValidateItems(items []menu.Item) error {
	seen := make(map[buttons.Button]string)
	for _, it := range items {
		if it.HoldBind == buttons.None {
			continue
		}
		if prev, ok := seen[it.HoldBind]; ok {
			return invalid("hold_bind", "button %q is held by both %q and %q", it.HoldBind, prev, it.ID)
		}
		seen[it.HoldBind] = it.ID
	}
	return nil
}
