// Package render rasterizes the overlay: achievement toasts, the quick menu
// panel and its status pill, into packed premultiplied ARGB frames. Every
// frame is computed from scratch from the scene and the injected time.
package render

import (
	"image"
	"math"
	"time"

	"github.com/jmylchreest/cheevo/internal/buttons"
	"github.com/jmylchreest/cheevo/internal/config"
	"github.com/jmylchreest/cheevo/internal/locale"
	"github.com/jmylchreest/cheevo/internal/menu"
	"github.com/jmylchreest/cheevo/internal/popup"
	"github.com/jmylchreest/cheevo/internal/theme"
)

// Layout constants.
const (
	ToastWidth  = 640
	ToastHeight = 140
	ToastMargin = 20

	MenuPreviewWidth  = 480
	MenuPreviewHeight = 400

	toastRadius    = 16.0
	badgeSize      = 96
	badgeRadius    = 14.0
	menuSlide      = 40.0
	menuMaxMargin  = 48.0
	titleHeight    = 52.0
	hintRowHeight  = 44.0
	hintGlyph      = 26.0
	pillHeight     = 36.0
	pillMaxWidth   = 480.0
	pillMargin     = 24.0
	statusFontSize = 16.0
)

// HintIconSize is the pixel size button icons should be rasterized at.
const HintIconSize = int(hintGlyph)

var white = theme.Color{R: 255, G: 255, B: 255, A: 255}

// Options are the immutable resources a Compositor draws with.
type Options struct {
	Theme   *theme.Theme
	Menu    config.MenuConfig
	Fonts   *Fonts
	Strings *locale.Strings
	// Icons is optional; without it hints use lettered circles.
	Icons *buttons.IconSet
	Style buttons.Style
	// Badge is drawn on toasts whose popup carries no badge of its own.
	Badge image.Image
}

// Compositor turns scenes into frames.
type Compositor struct {
	theme   *theme.Theme
	menu    config.MenuConfig
	fonts   *Fonts
	strings *locale.Strings
	icons   *buttons.IconSet
	style   buttons.Style
	badge   image.Image
}

// New creates a compositor. Missing theme, fonts or strings fall back to
// the built-in defaults.
func New(opts Options) *Compositor {
	c := &Compositor{
		theme:   opts.Theme,
		menu:    opts.Menu,
		fonts:   opts.Fonts,
		strings: opts.Strings,
		icons:   opts.Icons,
		style:   opts.Style,
		badge:   opts.Badge,
	}
	if c.theme == nil {
		c.theme = theme.Default("")
	}
	if c.fonts == nil {
		c.fonts = DefaultFonts()
	}
	if c.strings == nil {
		c.strings = locale.MustNew(config.DefaultLanguage)
	}
	if c.icons != nil {
		c.style = c.icons.Style
	}
	return c
}

// Scene is everything visible at one instant.
type Scene struct {
	Popup *popup.Popup
	Menu  *menu.Menu
	Hints []menu.Hint
	// Game is the running game's name for the status pill, if known.
	Game string
	Now  time.Time
}

// Render draws a full-screen frame: the menu when visible, else the current
// toast, else nothing.
func (c *Compositor) Render(s Scene, w, h int) *Frame {
	cv := newCanvas(w, h)
	switch {
	case s.Menu != nil && s.Menu.IsVisible():
		c.drawMenu(cv, s.Menu, s.Hints, s.Now)
		c.drawStatusPill(cv, s.Game, s.Menu.Opacity(s.Now), s.Now)
	case s.Popup != nil && !s.Popup.IsDone():
		x := float64(w-ToastWidth-ToastMargin) + s.Popup.SlideOffset(s.Now)*float64(ToastWidth+ToastMargin)
		c.drawToast(cv, s.Popup, s.Now, rect{X: x, Y: ToastMargin, W: ToastWidth, H: ToastHeight})
	}
	return cv.frame()
}

// RenderToast draws a toast card filling a w x h frame.
func (c *Compositor) RenderToast(p *popup.Popup, now time.Time, w, h int) *Frame {
	cv := newCanvas(w, h)
	if p != nil {
		x := 2 + p.SlideOffset(now)*float64(w)
		c.drawToast(cv, p, now, rect{X: x, Y: 2, W: float64(w) - 4, H: float64(h) - 4})
	}
	return cv.frame()
}

// RenderMenu draws the menu panel and backdrop alone.
func (c *Compositor) RenderMenu(m *menu.Menu, hints []menu.Hint, now time.Time, w, h int) *Frame {
	cv := newCanvas(w, h)
	if m != nil && m.IsVisible() {
		c.drawMenu(cv, m, hints, now)
	}
	return cv.frame()
}

type textLine struct {
	font  *Font
	size  float64
	text  string
	color theme.Color
}

func (c *Compositor) drawToast(cv *canvas, p *popup.Popup, now time.Time, r rect) {
	opacity := p.Opacity(now)
	if opacity <= 0 || r.empty() {
		return
	}
	t := c.theme

	cv.dropShadow(r, toastRadius, t.Shadow, opacity)
	cv.fillRoundedRectGradient(r, toastRadius, fade(lighten(t.Card, 0.06), opacity), fade(t.Card, opacity))
	cv.strokeRoundedRect(r, toastRadius, 1.5, fade(t.Accent.WithAlpha(90), opacity))
	cv.fillRoundedRect(rect{X: r.X + 10, Y: r.Y + 24, W: 4, H: r.H - 48}, 2, fade(t.Accent, opacity))

	size := math.Min(badgeSize, r.H-16)
	bx := r.X + 24
	by := r.Y + (r.H-size)/2
	badge := p.Badge
	if badge == nil {
		badge = c.badge
	}
	if badge != nil {
		cv.drawBadge(badge, int(math.Round(bx)), int(math.Round(by)), int(size), badgeRadius, opacity)
	} else {
		cx, cy, rad := bx+size/2, by+size/2, size*0.42
		cv.fillPath(circlePath(cx, cy, rad), verticalGradient(
			rect{X: cx - rad, Y: cy - rad, W: 2 * rad, H: 2 * rad},
			fade(lighten(t.Accent, 0.2), opacity), fade(t.Accent, opacity)))
		cv.fillPath(starPath(cx, cy, rad*0.55, rad*0.23), solid(fade(t.OnAccent, opacity)))
	}

	tx := bx + size + 20
	maxW := r.X + r.W - 24 - tx
	lines := []textLine{
		{c.fonts.Body, 13, c.strings.AchievementHeader(), fade(t.Accent, opacity)},
		{c.fonts.Display, 24, p.Title, fade(t.Fg, opacity)},
	}
	if p.Description != "" {
		lines = append(lines, textLine{c.fonts.Light, 17, p.Description, fade(t.Subtle, 0.7*opacity)})
	}
	c.drawTextBlock(cv, lines, tx, r.Y, maxW, r.H, 6)
}

// drawTextBlock stacks lines, each truncated to maxW, centered vertically
// as a group in [y, y+h).
func (c *Compositor) drawTextBlock(cv *canvas, lines []textLine, x, y, maxW, h, gap float64) {
	type metrics struct{ ascent, descent float64 }
	ms := make([]metrics, len(lines))
	total := 0.0
	for i, l := range lines {
		a, d := l.font.Metrics(l.size)
		ms[i] = metrics{a, d}
		total += a + d
	}
	total += gap * float64(len(lines)-1)

	cy := y + (h-total)/2
	for i, l := range lines {
		text := l.font.Truncate(l.text, l.size, maxW)
		cv.drawText(l.font, text, l.size, x, cy+ms[i].ascent, l.color)
		cy += ms[i].ascent + ms[i].descent + gap
	}
}

// baseline returns the baseline that vertically centers a font's line box
// on cy.
func baseline(f *Font, size, cy float64) float64 {
	a, d := f.Metrics(size)
	return cy + (a-d)/2
}

func (c *Compositor) drawMenu(cv *canvas, m *menu.Menu, hints []menu.Hint, now time.Time) {
	opacity := m.Opacity(now)
	if opacity <= 0 {
		return
	}
	s := m.Scale(now)
	t := c.theme
	cfg := c.menu
	b := cv.bounds()
	sw, sh := float64(b.Dx()), float64(b.Dy())

	cv.fill(b, theme.Color{A: alpha(cfg.BackdropOpacity * opacity)})

	items := m.Items()
	pad := float64(cfg.Padding) * s
	rowH := float64(cfg.ItemHeight) * s
	titleH := titleHeight * s
	hintH := 0.0
	if len(hints) > 0 {
		hintH = hintRowHeight*s + pad
	}
	pw := float64(cfg.Width) * s
	ph := pad + titleH + float64(len(items))*rowH + pad + hintH

	margin := math.Max(0, math.Min(menuMaxMargin, (sw-pw)/2))
	panel := rect{
		X: margin - (1-opacity)*menuSlide,
		Y: (sh - ph) / 2,
		W: pw,
		H: ph,
	}
	radius := cfg.CornerRadius * s

	cv.dropShadow(panel, radius, t.Shadow, opacity)
	cv.fillRoundedRectGradient(panel, radius,
		fade(lighten(t.Bg, 0.08).WithAlpha(240), opacity),
		fade(t.Bg.WithAlpha(240), opacity))
	cv.strokeRoundedRect(panel, radius, 1, fade(t.Subtle.WithAlpha(26), opacity))

	titleSize := 20 * s
	cv.drawTextCentered(c.fonts.Display, c.fonts.Display.Truncate(cfg.Title, titleSize, pw-2*pad),
		titleSize, panel.X, pw, baseline(c.fonts.Display, titleSize, panel.Y+pad+titleH/2), fade(t.Fg, opacity))
	divY := int(math.Round(panel.Y + pad + titleH - 1))
	cv.fill(image.Rect(int(panel.X+pad), divY, int(panel.X+pw-pad), divY+1), fade(t.Subtle.WithAlpha(30), opacity))

	armed, confirming := m.Armed()
	rowTop := panel.Y + pad + titleH
	for i, it := range items {
		row := rect{X: panel.X + pad, Y: rowTop + float64(i)*rowH, W: pw - 2*pad, H: rowH}
		pill := rect{X: row.X, Y: row.Y + 4*s, W: row.W, H: row.H - 8*s}
		size := 18 * s
		label := it.Label

		font, col := c.fonts.Body, fade(t.Fg, 0.85*opacity)
		if i == m.Cursor() {
			cv.fillRoundedRectGradient(pill, pill.H/2, fade(lighten(t.Accent, 0.12), opacity), fade(t.Accent, opacity))
			cv.strokeRoundedRect(pill.inset(1), pill.H/2, 1, fade(white.WithAlpha(40), opacity))
			font, col = c.fonts.Display, fade(t.OnAccent, opacity)
			if confirming && armed == i {
				label = c.strings.ConfirmPrompt()
			}
		}
		label = font.Truncate(label, size, pill.W-24*s)
		cv.drawTextCentered(font, label, size, pill.X, pill.W, baseline(font, size, pill.Y+pill.H/2), col)
	}

	if len(hints) > 0 {
		row := rect{X: panel.X + pad, Y: rowTop + float64(len(items))*rowH + pad, W: pw - 2*pad, H: hintRowHeight * s}
		c.drawHints(cv, m, hints, row, s, opacity, now)
	}
}

func (c *Compositor) drawHints(cv *canvas, m *menu.Menu, hints []menu.Hint, row rect, s, opacity float64, now time.Time) {
	t := c.theme
	glyph := hintGlyph * s
	labelGap := 8 * s
	hintGap := 18 * s
	size := 14 * s
	font := c.fonts.Body

	labels := make([]string, len(hints))
	total := 0.0
	for i, h := range hints {
		labels[i] = h.Label
		if h.Hold && m.IsHeld(h.Button) {
			labels[i] = c.strings.HoldLabel(h.Label)
		}
		total += glyph + labelGap + font.Measure(labels[i], size)
	}
	total += hintGap * float64(len(hints)-1)

	x := row.X + (row.W-total)/2
	cy := row.Y + row.H/2
	for i, h := range hints {
		cx := x + glyph/2
		if icon := c.icons.Get(h.Button); icon != nil {
			ib := icon.Bounds()
			cv.drawImage(icon, int(math.Round(cx-float64(ib.Dx())/2)), int(math.Round(cy-float64(ib.Dy())/2)), opacity)
		} else {
			cv.fillCircle(cx, cy, glyph/2, fade(t.Card, opacity))
			cv.strokeCircle(cx, cy, glyph/2, 1.5*s, fade(t.Fg.WithAlpha(200), opacity))
			letterSize := 12 * s
			cv.drawTextCentered(c.fonts.Display, buttons.Label(h.Button, c.style), letterSize,
				x, glyph, baseline(c.fonts.Display, letterSize, cy), fade(t.Fg, opacity))
		}

		if h.Hold && m.IsHeld(h.Button) {
			ringR := glyph/2 + 5*s
			cv.strokeCircle(cx, cy, ringR+1.5*s, 3*s, fade(t.Subtle.WithAlpha(40), opacity))
			cv.fillArcRing(cx, cy, ringR, 3*s, m.HoldProgress(h.Button, now), fade(t.Accent, opacity))
		}

		lx := x + glyph + labelGap
		w := cv.drawText(font, labels[i], size, lx, baseline(font, size, cy), fade(t.Fg, 0.8*opacity))
		x = lx + w + hintGap
	}
}

// drawStatusPill shows the clock and the running game in the top corner.
func (c *Compositor) drawStatusPill(cv *canvas, game string, opacity float64, now time.Time) {
	if opacity <= 0 {
		return
	}
	t := c.theme
	font := c.fonts.Body
	padX := 16.0

	text := now.Format("15:04")
	if game != "" {
		text += " · " + game
	}
	text = font.Truncate(text, statusFontSize, pillMaxWidth-2*padX)
	if text == "" {
		return
	}
	w := font.Measure(text, statusFontSize) + 2*padX
	b := cv.bounds()
	r := rect{
		X: float64(b.Dx()) - pillMargin - w,
		Y: pillMargin - (1-opacity)*12,
		W: w,
		H: pillHeight,
	}
	cv.fillRoundedRect(r, pillHeight/2, fade(t.Card.WithAlpha(220), opacity))
	cv.strokeRoundedRect(r, pillHeight/2, 1, fade(t.Subtle.WithAlpha(26), opacity))
	cv.drawText(font, text, statusFontSize, r.X+padX, baseline(font, statusFontSize, r.Y+r.H/2), fade(t.Fg, opacity))
}

// starPath is a five-pointed star, point up.
func starPath(cx, cy, outer, inner float64) *path {
	p := newPath()
	for i := 0; i < 10; i++ {
		rad := outer
		if i%2 == 1 {
			rad = inner
		}
		a := -math.Pi/2 + float64(i)*math.Pi/5
		x, y := cx+rad*math.Cos(a), cy+rad*math.Sin(a)
		if i == 0 {
			p.moveTo(x, y)
		} else {
			p.lineTo(x, y)
		}
	}
	p.close()
	return p
}
