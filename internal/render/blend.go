package render

import "github.com/jmylchreest/cheevo/internal/theme"

// blendPixel composites a straight-alpha source over the premultiplied RGBA
// pixel at pix[i:i+4]:
//
//	out   = (src*a + dst*(255-a)) / 255
//	alpha = min(a + dst*(255-a)/255, 255)
func blendPixel(pix []uint8, i int, r, g, b, a uint8) {
	if a == 0 {
		return
	}
	sa := uint32(a)
	inv := 255 - sa
	pix[i+0] = uint8((uint32(r)*sa + uint32(pix[i+0])*inv) / 255)
	pix[i+1] = uint8((uint32(g)*sa + uint32(pix[i+1])*inv) / 255)
	pix[i+2] = uint8((uint32(b)*sa + uint32(pix[i+2])*inv) / 255)
	pix[i+3] = uint8(min(sa+uint32(pix[i+3])*inv/255, 255))
}

// coverageAlpha scales a color's alpha by an 8-bit coverage value.
func coverageAlpha(coverage, a uint8) uint8 {
	return uint8(uint32(coverage) * uint32(a) / 255)
}

// pack packs premultiplied channels as 0xAARRGGBB.
func pack(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// fade multiplies c's alpha by opacity in [0, 1].
func fade(c theme.Color, opacity float64) theme.Color {
	return c.WithAlpha(alpha(float64(c.A) / 255 * opacity))
}

// alpha converts a [0, 1] fraction to an 8-bit alpha, clamping out of range values.
func alpha(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	default:
		return uint8(f*255 + 0.5)
	}
}

// mix interpolates between two colors; t=0 is a, t=1 is b.
func mix(a, b theme.Color, t float64) theme.Color {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return theme.Color{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}

// lighten mixes c toward white, keeping its alpha.
func lighten(c theme.Color, amount float64) theme.Color {
	return mix(c, theme.Color{R: 255, G: 255, B: 255, A: c.A}, amount)
}
