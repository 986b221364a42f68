package colormap

import (
	"context"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/mandelscope/pkg/escape"
	"github.com/matzehuels/mandelscope/pkg/gradient"
	"github.com/matzehuels/mandelscope/pkg/grid"
	"github.com/matzehuels/mandelscope/pkg/numeric"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

var greyRamp = gradient.Stops{{}, {R: 1, G: 1, B: 1}}

func TestPosition(t *testing.T) {
	tests := []struct {
		count    float64
		max      int
		inverted bool
		want     float64
	}{
		{100, 100, false, 0},
		{0, 100, false, 1},
		{25, 100, false, 0.75},
		{25, 100, true, 0.25},
		{-1, 100, false, 1.01},
		{5, 0, false, 0},
	}
	for _, tt := range tests {
		if got := Position(tt.count, tt.max, tt.inverted); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Position(%v, %d, %v) = %v, want %v", tt.count, tt.max, tt.inverted, got, tt.want)
		}
	}
}

func TestMapEndpoints(t *testing.T) {
	if got := Map(100, 100, false, greyRamp); got != (RGB{}) {
		t.Errorf("interior point = %v, want black", got)
	}
	if got := Map(0, 100, false, greyRamp); got != (RGB{255, 255, 255}) {
		t.Errorf("instant escape = %v, want white", got)
	}
	if got := Map(-1, 100, false, greyRamp); got != (RGB{255, 255, 255}) {
		t.Errorf("count -1 = %v, want clamped white", got)
	}
	if got := Map(50, 100, false, greyRamp); got != (RGB{128, 128, 128}) {
		t.Errorf("midpoint = %v, want 128 grey", got)
	}
}

func TestMapUnevaluableIsBlack(t *testing.T) {
	white := gradient.Stops{{R: 1, G: 1, B: 1}}
	if got := Map(math.NaN(), 100, false, white); got != (RGB{}) {
		t.Errorf("NaN count = %v, want black", got)
	}
}

func TestInversionSymmetry(t *testing.T) {
	g, err := gradient.Default().Lookup("viridis")
	if err != nil {
		t.Fatal(err)
	}
	const m = 500
	for c := 0; c <= m; c += 7 {
		a := Map(float64(c), m, false, g)
		b := Map(float64(m-c), m, true, g)
		if a != b {
			t.Errorf("Map(%d) = %v, inverted Map(%d) = %v", c, a, m-c, b)
		}
	}
	if a, b := Map(m, m, false, g), Map(0, m, true, g); a != b {
		t.Errorf("interior %v and inverted instant escape %v differ", a, b)
	}
}

func TestPaletteMatchesMap(t *testing.T) {
	g, _ := gradient.Default().Lookup("plasma")
	p := NewPalette(64, true, g)
	for _, c := range []float64{-1, 0, 1, 31, 64, 12.5, math.NaN(), 65} {
		want := Map(c, 64, true, g)
		if got := p.Color(c); got != want {
			t.Errorf("Color(%v) = %v, want %v", c, got, want)
		}
	}
}

func TestPaletteWithoutTable(t *testing.T) {
	p := NewPalette(maxTable, false, greyRamp)
	if p.colors != nil {
		t.Fatal("table built for huge limit")
	}
	if got, want := p.Color(3), Map(3, maxTable, false, greyRamp); got != want {
		t.Errorf("Color(3) = %v, want %v", got, want)
	}
}

func TestImage(t *testing.T) {
	rect, _ := viewport.LookupRegion[numeric.Float](viewport.DefaultRegion)
	eval, _ := escape.NewEvaluator[numeric.Float](50)
	buf, err := grid.Compute(context.Background(), viewport.Resolution{Width: 10, Height: 10}, rect, eval)
	if err != nil {
		t.Fatal(err)
	}
	img := Image(buf, false, greyRamp)
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 10 {
		t.Fatalf("bounds = %v", b)
	}
	// (8, 5) is the origin, inside the set.
	if got := img.RGBAAt(8, 5); got.R != 0 || got.A != 0xff {
		t.Errorf("origin pixel = %v, want opaque black", got)
	}
	// (0, 0) is −2−2i, outside after one step.
	if got := img.RGBAAt(0, 0); got.R != 255 {
		t.Errorf("corner pixel = %v, want white", got)
	}
}

func TestChannelRounding(t *testing.T) {
	c := colorful.Color{R: 0.6 / 255, G: 254.6 / 255, B: 2}
	g := gradient.Stops{c}
	got := Map(0, 1, false, g)
	if got.R != 1 || got.G != 255 || got.B != 255 {
		t.Errorf("rounded = %v, want {1 255 255}", got)
	}
}
