package session

import (
	"context"
	"image"

	"github.com/matzehuels/mandelscope/pkg/colormap"
	"github.com/matzehuels/mandelscope/pkg/grid"
	"github.com/matzehuels/mandelscope/pkg/numeric"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

// Explorer is a session with its numeric type erased.
type Explorer interface {
	Recompute(ctx context.Context, res viewport.Resolution) (*grid.Buffer, error)
	ZoomIn(x, y int, margin Margin) error
	ZoomOut() bool
	Reset()
	ColorAt(count float64) colormap.RGB
	Palette() *colormap.Palette
	SetGradient(name string) error
	CycleGradient(delta int) (string, error)
	ToggleInverted() bool
	Buffer() *grid.Buffer
	Image() *image.RGBA
	State() State
}

var (
	_ Explorer = (*Session[numeric.Float])(nil)
	_ Explorer = (*Session[numeric.Decimal])(nil)
)

// Open creates a session using decimal arithmetic when precise is set and
// float64 otherwise.
func Open(precise bool, res viewport.Resolution, gradientName string, maxIters int, inverted bool, opts ...Option) (Explorer, error) {
	if precise {
		s, err := New[numeric.Decimal](res, gradientName, maxIters, inverted, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := New[numeric.Float](res, gradientName, maxIters, inverted, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}
