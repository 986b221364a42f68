// Package viewport maps pixels to the complex plane and tracks nested zoom
// regions.
//
// A [Rect] is a rectangle of the plane, a [Resolution] is the pixel grid
// drawn over it, and [Remap] is the single linear formula that converts
// between the two. A [Stack] holds the zoom history: its root is the initial
// view and each zoom-in pushes a sub-rectangle of the active one.
package viewport

import (
	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/numeric"
)

// Remap linearly maps val from the interval [a, b] onto [c, d]:
//
//	(val − a)·(d − c)/(b − a) + c
//
// b must differ from a.
func Remap[T numeric.Real[T]](val, a, b, c, d T) T {
	return val.Sub(a).Mul(d.Sub(c)).Quo(b.Sub(a)).Add(c)
}

// Resolution is the pixel size of a rendered frame.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validate checks that both dimensions are positive and within bounds.
func (r Resolution) Validate() error {
	return errs.ValidateResolution(r.Width, r.Height)
}

// Pixels returns Width·Height.
func (r Resolution) Pixels() int { return r.Width * r.Height }

// Rect is an axis-aligned rectangle of the complex plane.
// Construct it with NewRect so the ordering invariant holds.
type Rect[T numeric.Real[T]] struct {
	XMin, XMax T
	YMin, YMax T
}

// NewRect returns a rectangle, requiring xMin < xMax and yMin < yMax.
func NewRect[T numeric.Real[T]](xMin, xMax, yMin, yMax T) (Rect[T], error) {
	if xMin.Cmp(xMax) >= 0 || yMin.Cmp(yMax) >= 0 {
		return Rect[T]{}, errs.New(errs.ErrCodeInvalidRegion,
			"empty rectangle x=[%s, %s] y=[%s, %s]", xMin, xMax, yMin, yMax)
	}
	return Rect[T]{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}, nil
}

// RectFromFloat64 converts float64 bounds to a Rect over T.
func RectFromFloat64[T numeric.Real[T]](xMin, xMax, yMin, yMax float64) (Rect[T], error) {
	var vals [4]T
	for i, v := range [4]float64{xMin, xMax, yMin, yMax} {
		t, err := numeric.FromFloat64[T](v)
		if err != nil {
			return Rect[T]{}, err
		}
		vals[i] = t
	}
	return NewRect(vals[0], vals[1], vals[2], vals[3])
}

// Equal reports exact equality of all four bounds.
func (r Rect[T]) Equal(o Rect[T]) bool {
	return r.XMin.Equal(o.XMin) && r.XMax.Equal(o.XMax) &&
		r.YMin.Equal(o.YMin) && r.YMax.Equal(o.YMax)
}

// Contains reports whether x+yi lies inside r, bounds included.
func (r Rect[T]) Contains(x, y T) bool {
	return x.Cmp(r.XMin) >= 0 && x.Cmp(r.XMax) <= 0 &&
		y.Cmp(r.YMin) >= 0 && y.Cmp(r.YMax) <= 0
}

// Width returns XMax − XMin.
func (r Rect[T]) Width() T { return r.XMax.Sub(r.XMin) }

// Height returns YMax − YMin.
func (r Rect[T]) Height() T { return r.YMax.Sub(r.YMin) }

// Bounds returns the four bounds as exact strings, in
// XMin, XMax, YMin, YMax order.
func (r Rect[T]) Bounds() [4]string {
	return [4]string{r.XMin.String(), r.XMax.String(), r.YMin.String(), r.YMax.String()}
}

// Float64 returns the bounds as float64 for display.
func (r Rect[T]) Float64() [4]float64 {
	return [4]float64{r.XMin.Float64(), r.XMax.Float64(), r.YMin.Float64(), r.YMax.Float64()}
}

// PixelToPlane maps pixel (px, py) of res onto r.
func PixelToPlane[T numeric.Real[T]](r Rect[T], res Resolution, px, py int) (x, y T, err error) {
	fx, err := numeric.FromInt[T](px)
	if err != nil {
		return x, y, err
	}
	fy, err := numeric.FromInt[T](py)
	if err != nil {
		return x, y, err
	}
	var zero T
	w, err := numeric.FromInt[T](res.Width)
	if err != nil {
		return x, y, err
	}
	h, err := numeric.FromInt[T](res.Height)
	if err != nil {
		return x, y, err
	}
	return Remap(fx, zero, w, r.XMin, r.XMax), Remap(fy, zero, h, r.YMin, r.YMax), nil
}
