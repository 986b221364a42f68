package viewport

import (
	"math"

	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/numeric"
)

// Stack is the zoom history. It always holds at least the root rectangle;
// the last element is the active view.
//
// Stack is not safe for concurrent use. Sessions guard it with their own
// mutex.
type Stack[T numeric.Real[T]] struct {
	rects []Rect[T]
}

// NewStack returns a stack holding only root.
func NewStack[T numeric.Real[T]](root Rect[T]) *Stack[T] {
	return &Stack[T]{rects: []Rect[T]{root}}
}

// Active returns the rectangle currently on screen.
func (s *Stack[T]) Active() (Rect[T], error) {
	if len(s.rects) == 0 {
		return Rect[T]{}, errs.New(errs.ErrCodeEmptyStack, "viewport stack has no root")
	}
	return s.rects[len(s.rects)-1], nil
}

// Root returns the bottom rectangle.
func (s *Stack[T]) Root() Rect[T] { return s.rects[0] }

// Depth returns the number of rectangles, 1 at the root.
func (s *Stack[T]) Depth() int { return len(s.rects) }

// Rects returns a copy of the stack, root first.
func (s *Stack[T]) Rects() []Rect[T] {
	out := make([]Rect[T], len(s.rects))
	copy(out, s.rects)
	return out
}

// ZoomIn pushes the sub-rectangle of the active view covering pixels
// [px−halfW, px+halfW] × [py−halfH, py+halfH] of res. The box may extend
// past the frame edge; there is no depth limit.
//
// On error the stack is unchanged. A box whose bounds are no longer
// distinguishable at T's precision fails with NUMERIC_CONVERSION.
func (s *Stack[T]) ZoomIn(px, py, halfW, halfH int, res Resolution) error {
	if err := res.Validate(); err != nil {
		return err
	}
	if err := errs.ValidateMargin(halfW, halfH); err != nil {
		return err
	}
	if uint64(halfW) > math.MaxUint32 || uint64(halfH) > math.MaxUint32 {
		return errs.New(errs.ErrCodeInvalidInput, "zoom margin %dx%d overflows uint32", halfW, halfH)
	}
	active, err := s.Active()
	if err != nil {
		return err
	}

	x, err := numeric.FromInt[T](px)
	if err != nil {
		return err
	}
	y, err := numeric.FromInt[T](py)
	if err != nil {
		return err
	}
	dx, err := numeric.FromUint32[T](uint32(halfW))
	if err != nil {
		return err
	}
	dy, err := numeric.FromUint32[T](uint32(halfH))
	if err != nil {
		return err
	}
	w, err := numeric.FromUint32[T](uint32(res.Width))
	if err != nil {
		return err
	}
	h, err := numeric.FromUint32[T](uint32(res.Height))
	if err != nil {
		return err
	}

	var zero T
	next := Rect[T]{
		XMin: Remap(x.Sub(dx), zero, w, active.XMin, active.XMax),
		XMax: Remap(x.Add(dx), zero, w, active.XMin, active.XMax),
		YMin: Remap(y.Sub(dy), zero, h, active.YMin, active.YMax),
		YMax: Remap(y.Add(dy), zero, h, active.YMin, active.YMax),
	}
	if next.XMin.Cmp(next.XMax) >= 0 || next.YMin.Cmp(next.YMax) >= 0 {
		return errs.New(errs.ErrCodeNumericConversion,
			"zoom box collapsed at %s precision: x=[%s, %s] y=[%s, %s]",
			numeric.KindOf[T](), next.XMin, next.XMax, next.YMin, next.YMax)
	}
	s.rects = append(s.rects, next)
	return nil
}

// ZoomOut pops the active rectangle. At the root it does nothing and
// returns false.
func (s *Stack[T]) ZoomOut() bool {
	if len(s.rects) <= 1 {
		return false
	}
	s.rects = s.rects[:len(s.rects)-1]
	return true
}

// Reset pops everything above the root.
func (s *Stack[T]) Reset() {
	s.rects = s.rects[:1]
}
