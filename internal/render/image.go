package render

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// LoadBadge decodes a badge image (PNG, JPEG, GIF, BMP, TIFF).
func LoadBadge(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load badge: %w", err)
	}
	return img, nil
}

// drawBadge resamples img (nearest neighbour) into a size x size square at
// (x, y), masks the corners to radius and multiplies alpha by opacity.
func (c *canvas) drawBadge(img image.Image, x, y, size int, radius, opacity float64) {
	if img == nil || size <= 0 || opacity <= 0 {
		return
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	src := imaging.Resize(img, size, size, imaging.NearestNeighbor)
	radius = math.Max(0, math.Min(radius, float64(size)/2))

	clip := image.Rect(x, y, x+size, y+size).Intersect(c.img.Rect)
	for py := clip.Min.Y; py < clip.Max.Y; py++ {
		for px := clip.Min.X; px < clip.Max.X; px++ {
			lx, ly := px-x, py-y
			if !insideRounded(float64(lx)+0.5, float64(ly)+0.5, float64(size), radius) {
				continue
			}
			i := src.PixOffset(lx, ly)
			a := alpha(float64(src.Pix[i+3]) / 255 * opacity)
			blendPixel(c.img.Pix, c.img.PixOffset(px, py), src.Pix[i], src.Pix[i+1], src.Pix[i+2], a)
		}
	}
}

// insideRounded tests a point against a size x size square with rounded
// corners by its distance from the nearest corner center.
func insideRounded(x, y, size, radius float64) bool {
	if radius <= 0 {
		return true
	}
	cx := math.Max(radius, math.Min(x, size-radius))
	cy := math.Max(radius, math.Min(y, size-radius))
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= radius*radius
}
