// Package colormap turns iteration counts into RGB colors.
//
// A count c with limit m is placed on the gradient at (m − c)/m, so points
// inside the set sit at 0 and fast escapes near 1. Inverted mode uses c/m
// instead. Unevaluable pixels are black.
package colormap

import (
	"image"
	"image/color"
	"math"

	"github.com/matzehuels/mandelscope/pkg/gradient"
	"github.com/matzehuels/mandelscope/pkg/grid"
)

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// RGBA converts to the standard library color type.
func (c RGB) RGBA() color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff} }

// Position returns the gradient position of count, before clamping.
func Position(count float64, maxIters int, inverted bool) float64 {
	if maxIters <= 0 {
		return 0
	}
	m := float64(maxIters)
	if inverted {
		return count / m
	}
	return (m - count) / m
}

// Map samples g at the position of count and scales it to 8 bits.
func Map(count float64, maxIters int, inverted bool, g gradient.Gradient) RGB {
	if grid.Unevaluable(count) {
		return RGB{}
	}
	pos := Position(count, maxIters, inverted)
	c := g.At(math.Min(1, math.Max(0, pos)))
	return RGB{R: channel(c.R), G: channel(c.G), B: channel(c.B)}
}

func channel(v float64) uint8 {
	v = math.Round(v * 255)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// maxTable bounds the lookup table; larger limits fall back to Map.
const maxTable = 1 << 20

// Palette holds the colors of every integral count in [−1, maxIters].
type Palette struct {
	maxIters int
	inverted bool
	g        gradient.Gradient
	colors   []RGB
}

// NewPalette precomputes the colors of all integral counts.
func NewPalette(maxIters int, inverted bool, g gradient.Gradient) *Palette {
	p := &Palette{maxIters: maxIters, inverted: inverted, g: g}
	if maxIters > 0 && maxIters < maxTable {
		p.colors = make([]RGB, maxIters+2)
		for i := range p.colors {
			p.colors[i] = Map(float64(i-1), maxIters, inverted, g)
		}
	}
	return p
}

// Color returns the color of count, from the table when count is integral.
func (p *Palette) Color(count float64) RGB {
	if i := int(count); float64(i) == count && i >= -1 && i+1 < len(p.colors) {
		return p.colors[i+1]
	}
	return Map(count, p.maxIters, p.inverted, p.g)
}

// Inverted reports whether the palette uses inverted positions.
func (p *Palette) Inverted() bool { return p.inverted }

// Image colors a whole buffer. Column u of the buffer becomes image column u.
func Image(buf *grid.Buffer, inverted bool, g gradient.Gradient) *image.RGBA {
	return PaletteImage(buf, NewPalette(buf.MaxIters(), inverted, g))
}

// PaletteImage colors a whole buffer with a prepared palette.
func PaletteImage(buf *grid.Buffer, p *Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, buf.Width(), buf.Height()))
	for u := 0; u < buf.Width(); u++ {
		for v, count := range buf.Column(u) {
			img.SetRGBA(u, v, p.Color(count).RGBA())
		}
	}
	return img
}
