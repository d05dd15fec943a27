package render

import (
	"image"
	"image/color"

	"github.com/jmylchreest/cheevo/internal/theme"
)

// Frame is a packed premultiplied ARGB pixel buffer, row-major.
type Frame struct {
	Width  int
	Height int
	Pix    []uint32
}

// NewFrame returns a fully transparent frame.
func NewFrame(w, h int) *Frame {
	return &Frame{Width: w, Height: h, Pix: make([]uint32, w*h)}
}

// At returns the packed pixel at (x, y), or 0 outside the frame.
func (f *Frame) At(x, y int) uint32 {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0
	}
	return f.Pix[y*f.Width+x]
}

// IsTransparent reports whether every pixel has zero alpha.
func (f *Frame) IsTransparent() bool {
	for _, p := range f.Pix {
		if p>>24 != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether two frames have the same size and pixels.
func (f *Frame) Equal(o *Frame) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.Width != o.Width || f.Height != o.Height {
		return false
	}
	for i := range f.Pix {
		if f.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Image converts the frame to a premultiplied image for encoding.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, p := range f.Pix {
		j := i * 4
		img.Pix[j+0] = uint8(p >> 16)
		img.Pix[j+1] = uint8(p >> 8)
		img.Pix[j+2] = uint8(p)
		img.Pix[j+3] = uint8(p >> 24)
	}
	return img
}

// canvas is the mutable drawing target behind a Frame.
type canvas struct {
	img *image.RGBA
}

func newCanvas(w, h int) *canvas {
	return &canvas{img: image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))}
}

func (c *canvas) bounds() image.Rectangle { return c.img.Rect }

func (c *canvas) blend(x, y int, col theme.Color) {
	if !(image.Point{X: x, Y: y}).In(c.img.Rect) {
		return
	}
	blendPixel(c.img.Pix, c.img.PixOffset(x, y), col.R, col.G, col.B, col.A)
}

// fill blends col over every pixel in r.
func (c *canvas) fill(r image.Rectangle, col theme.Color) {
	if col.A == 0 {
		return
	}
	r = r.Intersect(c.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := c.img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			blendPixel(c.img.Pix, i, col.R, col.G, col.B, col.A)
			i += 4
		}
	}
}

// fillMask blends colorAt(y) over the mask, using mask coverage as alpha.
func (c *canvas) fillMask(mask *image.Alpha, colorAt func(y int) theme.Color) {
	if mask == nil {
		return
	}
	r := mask.Rect.Intersect(c.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		col := colorAt(y)
		if col.A == 0 {
			continue
		}
		mi := mask.PixOffset(r.Min.X, y)
		ci := c.img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			if cov := mask.Pix[mi]; cov != 0 {
				blendPixel(c.img.Pix, ci, col.R, col.G, col.B, coverageAlpha(cov, col.A))
			}
			mi++
			ci += 4
		}
	}
}

// drawImage blends src with its top-left corner at (x, y), multiplying its
// alpha by opacity.
func (c *canvas) drawImage(src image.Image, x, y int, opacity float64) {
	if src == nil || opacity <= 0 {
		return
	}
	sb := src.Bounds()
	dst := image.Rect(x, y, x+sb.Dx(), y+sb.Dy()).Intersect(c.img.Rect)
	for py := dst.Min.Y; py < dst.Max.Y; py++ {
		for px := dst.Min.X; px < dst.Max.X; px++ {
			nc := color.NRGBAModel.Convert(src.At(sb.Min.X+px-x, sb.Min.Y+py-y)).(color.NRGBA)
			a := alpha(float64(nc.A) / 255 * opacity)
			blendPixel(c.img.Pix, c.img.PixOffset(px, py), nc.R, nc.G, nc.B, a)
		}
	}
}

// frame packs the canvas into a Frame.
func (c *canvas) frame() *Frame {
	w, h := c.img.Rect.Dx(), c.img.Rect.Dy()
	f := NewFrame(w, h)
	pix := c.img.Pix
	for i := range f.Pix {
		j := i * 4
		f.Pix[i] = pack(pix[j], pix[j+1], pix[j+2], pix[j+3])
	}
	return f
}
