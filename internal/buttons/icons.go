package buttons

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// IconSet holds rasterized button icons for one controller style.
type IconSet struct {
	Style Style
	Size  int
	icons map[Button]*image.RGBA
}

// Get returns the icon for b, or nil when none was loaded.
func (s *IconSet) Get(b Button) *image.RGBA {
	if s == nil {
		return nil
	}
	return s.icons[b]
}

// Len returns the number of loaded icons.
func (s *IconSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.icons)
}

// LoadIcons rasterizes the SVG icon of every button for style from dir
// (normally {theme}/assets/buttons) at size x size pixels. Missing files are
// skipped so callers fall back to letter glyphs; malformed SVGs are errors.
func LoadIcons(dir string, style Style, size int) (*IconSet, error) {
	set := &IconSet{Style: style, Size: size, icons: make(map[Button]*image.RGBA)}
	if size <= 0 {
		return set, nil
	}

	for _, b := range All {
		rel := IconFile(b, style)
		if rel == "" {
			continue
		}
		f, err := os.Open(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to open icon %s: %w", rel, err)
		}
		img, err := RasterizeSVG(f, size, size)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to rasterize icon %s: %w", rel, err)
		}
		set.icons[b] = img
	}
	return set, nil
}

// RasterizeSVG renders an SVG document into a new w x h RGBA image.
func RasterizeSVG(r io.Reader, w, h int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(r, oksvg.WarnErrorMode)
	if err != nil {
		return nil, err
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}
