package render

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/jmylchreest/cheevo/internal/theme"
)

// Ellipsis is appended to truncated text.
const Ellipsis = "..."

// Font is a parsed OpenType font with a per-size face cache. Faces are not
// safe for concurrent use, so every access goes through mu.
type Font struct {
	Name string

	mu    sync.Mutex
	src   *opentype.Font
	faces map[float64]font.Face
}

// ParseFont parses TTF or OTF data.
func ParseFont(name string, data []byte) (*Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", name, err)
	}
	return &Font{Name: name, src: f, faces: make(map[float64]font.Face)}, nil
}

// LoadFont reads a font file.
func LoadFont(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	return ParseFont(path, data)
}

func mustParseFont(name string, data []byte) *Font {
	f, err := ParseFont(name, data)
	if err != nil {
		panic(err)
	}
	return f
}

// faceStep is the size granularity of cached faces. Animated text scales
// every frame; sizes are snapped so the cache stays bounded.
const faceStep = 0.5

// face returns the cached face for size. Callers hold f.mu.
func (f *Font) face(size float64) font.Face {
	size = max(math.Round(size/faceStep)*faceStep, faceStep)
	if fc, ok := f.faces[size]; ok {
		return fc
	}
	fc, err := opentype.NewFace(f.src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		// Only invalid options fail here.
		panic(err)
	}
	f.faces[size] = fc
	return fc
}

// Metrics returns ascent and descent in pixels at size.
func (f *Font) Metrics(size float64) (ascent, descent float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.face(size).Metrics()
	return fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
}

// Measure returns the advance width of text at size: the sum of glyph
// advances, without kerning.
func (f *Font) Measure(text string, size float64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.measure(f.face(size), text)
}

func (f *Font) measure(fc font.Face, text string) float64 {
	var w fixed.Int26_6
	for _, r := range text {
		adv, _ := fc.GlyphAdvance(r)
		w += adv
	}
	return fixedToFloat(w)
}

// Truncate shortens text to fit maxWidth, appending an ellipsis. Glyphs are
// added until the next one would overflow the space left for the ellipsis.
// If not even one glyph fits, it returns "".
func (f *Font) Truncate(text string, size, maxWidth float64) string {
	if text == "" || maxWidth <= 0 {
		return ""
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fc := f.face(size)

	if f.measure(fc, text) <= maxWidth {
		return text
	}
	avail := maxWidth - f.measure(fc, Ellipsis)
	var w float64
	end := 0
	for i, r := range text {
		adv, _ := fc.GlyphAdvance(r)
		if w+fixedToFloat(adv) > avail {
			break
		}
		w += fixedToFloat(adv)
		end = i + len(string(r))
	}
	if end == 0 {
		return ""
	}
	return text[:end] + Ellipsis
}

// drawText renders text with its baseline origin at (x, y) and returns the
// advance width.
func (c *canvas) drawText(f *Font, text string, size, x, y float64, col theme.Color) float64 {
	if f == nil || text == "" || size <= 0 {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fc := f.face(size)

	dot := fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(y)}
	start := dot.X
	for _, r := range text {
		dr, mask, mp, adv, ok := fc.Glyph(dot, r)
		if ok && col.A != 0 {
			c.drawGlyph(dr, mask, mp, col)
		}
		dot.X += adv
	}
	return fixedToFloat(dot.X - start)
}

// drawGlyph blends a glyph coverage mask. Source alpha is coverage*colorA/255.
func (c *canvas) drawGlyph(dr image.Rectangle, mask image.Image, mp image.Point, col theme.Color) {
	clip := dr.Intersect(c.img.Rect)
	alphaMask, fast := mask.(*image.Alpha)
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			mx, my := mp.X+x-dr.Min.X, mp.Y+y-dr.Min.Y
			var cov uint8
			if fast {
				cov = alphaMask.AlphaAt(mx, my).A
			} else {
				_, _, _, a := mask.At(mx, my).RGBA()
				cov = uint8(a >> 8)
			}
			if cov == 0 {
				continue
			}
			blendPixel(c.img.Pix, c.img.PixOffset(x, y), col.R, col.G, col.B, coverageAlpha(cov, col.A))
		}
	}
}

// drawTextCentered centers text horizontally within [x, x+w) on baseline y.
func (c *canvas) drawTextCentered(f *Font, text string, size, x, w, y float64, col theme.Color) {
	if f == nil || text == "" {
		return
	}
	tw := f.Measure(text, size)
	c.drawText(f, text, size, x+(w-tw)/2, y, col)
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
func floatToFixed(v float64) fixed.Int26_6  { return fixed.Int26_6(v*64 + 0.5) }

// Fonts is the display, body and light font set used by the compositor.
type Fonts struct {
	Display *Font
	Body    *Font
	Light   *Font
}

// DefaultFonts returns the embedded Go fonts.
func DefaultFonts() *Fonts {
	bold := mustParseFont("gobold", gobold.TTF)
	regular := mustParseFont("goregular", goregular.TTF)
	return &Fonts{Display: bold, Body: regular, Light: regular}
}

// LoadFonts loads the theme's fonts, falling back to the embedded Go fonts
// for any that are missing or unreadable.
func LoadFonts(t *theme.Theme, logger *slog.Logger) *Fonts {
	if logger == nil {
		logger = slog.Default()
	}
	fonts := DefaultFonts()
	load := func(path string, fallback *Font) *Font {
		f, err := LoadFont(path)
		if err != nil {
			logger.Debug("using fallback font", "path", path, "fallback", fallback.Name, "error", err)
			return fallback
		}
		return f
	}
	return &Fonts{
		Display: load(t.FontDisplay, fonts.Display),
		Body:    load(t.FontBody, fonts.Body),
		Light:   load(t.FontLight, fonts.Light),
	}
}
