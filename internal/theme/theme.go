// Package theme reads colors and fonts from an EmulationStation theme's
// XML variables so the overlay matches the front-end it sits on.
package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Color is a straight-alpha RGBA8 color.
type Color struct {
	R, G, B, A uint8
}

// ParseColor parses "RRGGBB" or "RRGGBBAA" with an optional leading '#'.
func ParseColor(hex string) (Color, bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

func mustColor(hex string) Color {
	c, ok := ParseColor(hex)
	if !ok {
		panic("invalid color " + hex)
	}
	return c
}

// ARGB packs the color as 0xAARRGGBB.
func (c Color) ARGB() uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a uint8) Color {
	c.A = a
	return c
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Theme variable names and their defaults.
const (
	VarFg      = "fgColor"
	VarBg      = "bgColor"
	VarAccent  = "mainColor"
	VarOnMain  = "onMainColor"
	VarCard    = "cardColor"
	VarShadow  = "shadowColor"
	VarSubtle  = "subtleColor"
	VarDisplay = "fontDisplay"
	VarBody    = "fontBody"
	VarLight   = "fontLight"
)

var defaultColors = map[string]string{
	VarFg:     "FFFFFFFF",
	VarBg:     "1A1A2EFF",
	VarAccent: "E94560FF",
	VarOnMain: "FFFFFFFF",
	VarCard:   "16213EFF",
	VarShadow: "000000FF",
	VarSubtle: "FFFFFFFF",
}

var defaultFonts = map[string]string{
	VarDisplay: "assets/fonts/Inter/Inter-Bold.otf",
	VarBody:    "assets/fonts/Inter/Inter-Regular.otf",
	VarLight:   "assets/fonts/Inter/Inter-Light.otf",
}

// Theme is the immutable palette and font set used by the compositor.
type Theme struct {
	Root string

	Fg       Color
	Bg       Color
	Accent   Color
	OnAccent Color
	Card     Color
	Shadow   Color
	Subtle   Color

	FontDisplay string
	FontBody    string
	FontLight   string

	// ModTime is the newest modification time of the source files.
	ModTime time.Time
}

// VariablesPath and ColorSchemePath are the files read from a theme root.
func VariablesPath(root string) string {
	return filepath.Join(root, "variables.xml")
}

func ColorSchemePath(root string) string {
	return filepath.Join(root, "settings", "colorScheme", "main.xml")
}

// Default returns the built-in palette with font paths under root.
func Default(root string) *Theme {
	return build(root, nil, nil)
}

// Load reads the theme at root. Colors come from the color scheme file,
// then variables.xml, then the defaults; fonts from variables.xml. Missing
// files are not errors.
func Load(root string) (*Theme, error) {
	vars, err := parseVariablesFile(VariablesPath(root))
	if err != nil {
		return nil, err
	}
	scheme, err := parseVariablesFile(ColorSchemePath(root))
	if err != nil {
		return nil, err
	}

	t := build(root, vars, scheme)
	t.ModTime = newestModTime(VariablesPath(root), ColorSchemePath(root))
	return t, nil
}

func build(root string, vars, scheme map[string]string) *Theme {
	color := func(key string) Color {
		for _, src := range []map[string]string{scheme, vars} {
			if v, ok := src[key]; ok {
				if c, ok := ParseColor(v); ok {
					return c
				}
			}
		}
		return mustColor(defaultColors[key])
	}
	font := func(key string) string {
		rel, ok := vars[key]
		if !ok || rel == "" {
			rel = defaultFonts[key]
		}
		rel = strings.TrimPrefix(rel, "./")
		if filepath.IsAbs(rel) {
			return rel
		}
		return filepath.Join(root, filepath.FromSlash(rel))
	}

	return &Theme{
		Root:        root,
		Fg:          color(VarFg),
		Bg:          color(VarBg),
		Accent:      color(VarAccent),
		OnAccent:    color(VarOnMain),
		Card:        color(VarCard),
		Shadow:      color(VarShadow),
		Subtle:      color(VarSubtle),
		FontDisplay: font(VarDisplay),
		FontBody:    font(VarBody),
		FontLight:   font(VarLight),
	}
}

func newestModTime(paths ...string) time.Time {
	var newest time.Time
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest
}

// Changed reports whether either source file was modified after the theme was loaded.
func (t *Theme) Changed() bool {
	return newestModTime(VariablesPath(t.Root), ColorSchemePath(t.Root)).After(t.ModTime)
}
