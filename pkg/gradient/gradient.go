// Package gradient provides continuous color gradients addressed by name.
//
// # Overview
//
// A [Gradient] maps a position t in [0, 1] to a color. Two kinds exist:
//
//   - [Stops]: evenly spaced colors blended linearly in RGB
//   - [Func]: a closed-form curve such as sinebow
//
// # Registry
//
// A [Registry] looks gradients up by name and cycles through them in sorted
// order, which is how front-ends step to the next or previous gradient:
//
//	reg := gradient.Default()
//	g, err := reg.Lookup("magma")
//	next := reg.Next("magma") // "or_rd"
//
// [Default] holds the ColorBrewer, matplotlib and d3 presets (38 names).
// Unknown names fail with UNKNOWN_GRADIENT.
package gradient

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Gradient maps t in [0, 1] to a color with channels in [0, 1].
// Values of t outside the interval are clamped.
type Gradient interface {
	At(t float64) colorful.Color
}

// Stops is a gradient through evenly spaced colors.
// The first color sits at t=0 and the last at t=1.
type Stops []colorful.Color

// At blends the two stops surrounding t.
func (s Stops) At(t float64) colorful.Color {
	switch len(s) {
	case 0:
		return colorful.Color{}
	case 1:
		return s[0]
	}
	t = clamp(t)
	pos := t * float64(len(s)-1)
	i := int(pos)
	if i >= len(s)-1 {
		return s[len(s)-1]
	}
	return s[i].BlendRgb(s[i+1], pos-float64(i)).Clamped()
}

// Func adapts a function to the Gradient interface.
type Func func(t float64) colorful.Color

// At calls f with t clamped to [0, 1].
func (f Func) At(t float64) colorful.Color { return f(clamp(t)) }

// FromHex builds Stops from "#rrggbb" strings.
func FromHex(hexes ...string) (Stops, error) {
	stops := make(Stops, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, err
		}
		stops[i] = c
	}
	return stops, nil
}

// Sinebow is the cyclical rainbow of sine-squared channels.
func Sinebow(t float64) colorful.Color {
	a := (0.5 - t) * math.Pi
	sq := func(x float64) float64 { s := math.Sin(x); return s * s }
	return colorful.Color{
		R: sq(a),
		G: sq(a + math.Pi/3),
		B: sq(a + 2*math.Pi/3),
	}
}

// Swatch samples g at n evenly spaced positions, endpoints included.
func Swatch(g Gradient, n int) []colorful.Color {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []colorful.Color{g.At(0)}
	}
	out := make([]colorful.Color, n)
	for i := range out {
		out[i] = g.At(float64(i) / float64(n-1))
	}
	return out
}

func clamp(t float64) float64 {
	switch {
	case math.IsNaN(t), t < 0:
		return 0
	case t > 1:
		return 1
	default:
		return t
	}
}
