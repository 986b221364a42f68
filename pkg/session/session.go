// Package session holds the state of one interactive view of the set: the
// zoom stack, the render parameters and the latest iteration buffer.
//
// # Overview
//
// A [Session] is generic over the numeric type. Front-ends that choose the
// type at runtime use [Open], which returns the non-generic [Explorer].
//
// Mutators never compute. After ZoomIn, ZoomOut or Reset the caller runs
// Recompute; SetGradient and ToggleInverted only recolor, so the existing
// buffer stays valid.
//
// # Concurrency
//
// All methods are safe for concurrent use. Recompute runs outside the
// session lock. Starting a new Recompute cancels the one in flight, and a
// result that finishes after a newer request started is discarded with
// SUPERSEDED, so the installed buffer always comes from exactly one
// rectangle.
//
// # Usage
//
//	ex, err := session.Open(false, viewport.Resolution{Width: 600, Height: 600}, "magma", 500, false,
//	    session.WithRunner(runner))
//	buf, err := ex.Recompute(ctx, res)
//	_ = ex.ZoomIn(320, 240, session.Margin{HalfWidth: 50, HalfHeight: 50})
//	buf, err = ex.Recompute(ctx, res)
//	rgb := ex.ColorAt(buf.At(0, 0))
package session

import (
	"context"
	"image"
	"sync"

	"github.com/matzehuels/mandelscope/pkg/colormap"
	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/gradient"
	"github.com/matzehuels/mandelscope/pkg/grid"
	"github.com/matzehuels/mandelscope/pkg/numeric"
	"github.com/matzehuels/mandelscope/pkg/pipeline"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

// Margin is the half-size of the zoom box in pixels.
type Margin struct {
	HalfWidth  int `json:"half_width"`
	HalfHeight int `json:"half_height"`
}

// Square returns a margin with equal sides.
func Square(px int) Margin { return Margin{HalfWidth: px, HalfHeight: px} }

// Params are the render parameters. MaxIters is fixed for the session.
type Params struct {
	MaxIters int    `json:"max_iters"`
	Inverted bool   `json:"inverted"`
	Gradient string `json:"gradient"`
}

// State is a snapshot of a session for display and the HTTP API.
type State struct {
	Params
	Numeric    string              `json:"numeric"`
	Resolution viewport.Resolution `json:"resolution"`
	Depth      int                 `json:"depth"`
	Rect       [4]string           `json:"rect"`
	Generation uint64              `json:"generation"`
	Computing  bool                `json:"computing"`
	Ready      bool                `json:"ready"`
	Skipped    int                 `json:"skipped"`

	// Stale reports that the installed buffer was computed for a rectangle
	// other than the active one, e.g. after a zoom whose recompute failed.
	Stale bool `json:"stale"`
}

// Session is the state of one view over numeric type T.
type Session[T numeric.Real[T]] struct {
	runner    *pipeline.Runner
	gradients gradient.Lookup

	mu       sync.Mutex
	stack    *viewport.Stack[T]
	res      viewport.Resolution
	params   Params
	grad     gradient.Gradient
	palette  *colormap.Palette
	buf      *grid.Buffer
	bufRect  viewport.Rect[T]
	gen      uint64
	inflight context.CancelFunc
}

// New creates a session at res showing the root rectangle (the default
// region unless WithRoot or WithRegion is given). It does not compute; call
// Recompute for the first buffer.
func New[T numeric.Real[T]](res viewport.Resolution, gradientName string, maxIters int, inverted bool, opts ...Option) (*Session[T], error) {
	cfg := config{region: viewport.DefaultRegion}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.setDefaults()

	if err := res.Validate(); err != nil {
		return nil, err
	}
	if err := errs.ValidateMaxIters(maxIters); err != nil {
		return nil, err
	}
	g, err := cfg.gradients.Lookup(gradientName)
	if err != nil {
		return nil, err
	}
	root, err := rootRect[T](cfg)
	if err != nil {
		return nil, err
	}

	s := &Session[T]{
		runner:    cfg.runner,
		gradients: cfg.gradients,
		stack:     viewport.NewStack(root),
		res:       res,
		params:    Params{MaxIters: maxIters, Inverted: inverted, Gradient: gradientName},
		grad:      g,
	}
	s.palette = colormap.NewPalette(maxIters, inverted, g)
	return s, nil
}

func rootRect[T numeric.Real[T]](cfg config) (viewport.Rect[T], error) {
	if cfg.root == nil {
		return viewport.LookupRegion[T](cfg.region)
	}
	r, ok := cfg.root.(viewport.Rect[T])
	if !ok {
		return viewport.Rect[T]{}, errs.New(errs.ErrCodeInvalidRegion,
			"root rectangle is %T, session uses %s", cfg.root, numeric.KindOf[T]())
	}
	return viewport.NewRect(r.XMin, r.XMax, r.YMin, r.YMax)
}

// Recompute evaluates the active rectangle at res and installs the result.
//
// Any computation still running for this session is cancelled. If another
// Recompute starts before this one finishes, this result is discarded and
// the error is SUPERSEDED.
func (s *Session[T]) Recompute(ctx context.Context, res viewport.Resolution) (*grid.Buffer, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.inflight != nil {
		s.inflight()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(ctx)
	s.inflight = cancel
	rect, err := s.stack.Active()
	maxIters := s.params.MaxIters
	s.mu.Unlock()
	defer cancel()

	if err != nil {
		return nil, err
	}

	buf, _, err := pipeline.Compute(ctx, s.runner, pipeline.Request[T]{
		Resolution: res,
		Rect:       rect,
		MaxIters:   maxIters,
		Progress:   progressFromContext(ctx),
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil, errs.New(errs.ErrCodeSuperseded, "recompute %d superseded by %d", gen, s.gen)
	}
	s.inflight = nil
	if err != nil {
		return nil, err
	}
	s.buf = buf
	s.bufRect = rect
	s.res = res
	return buf, nil
}

// ZoomIn pushes the box of margin around pixel (x, y) of the current
// resolution. It does not recompute.
func (s *Session[T]) ZoomIn(x, y int, margin Margin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.ZoomIn(x, y, margin.HalfWidth, margin.HalfHeight, s.res)
}

// ZoomOut pops one zoom level. At the root it is a no-op and returns false.
func (s *Session[T]) ZoomOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.ZoomOut()
}

// Reset returns to the root rectangle.
func (s *Session[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stack.Reset()
}

// Active returns the rectangle the next Recompute will evaluate.
func (s *Session[T]) Active() (viewport.Rect[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Active()
}

// ColorAt colors an iteration count with the current gradient and
// inversion.
func (s *Session[T]) ColorAt(count float64) colormap.RGB {
	s.mu.Lock()
	p := s.palette
	s.mu.Unlock()
	return p.Color(count)
}

// Palette returns the current coloring, for coloring whole frames without
// locking per pixel.
func (s *Session[T]) Palette() *colormap.Palette {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.palette
}

// SetGradient selects a gradient by name. On UNKNOWN_GRADIENT the previous
// gradient stays selected.
func (s *Session[T]) SetGradient(name string) error {
	g, err := s.gradients.Lookup(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grad = g
	s.params.Gradient = name
	s.palette = colormap.NewPalette(s.params.MaxIters, s.params.Inverted, g)
	return nil
}

// CycleGradient selects the next (delta > 0) or previous (delta < 0)
// gradient of the lookup and returns its name. Lookups that cannot cycle
// keep the current gradient.
func (s *Session[T]) CycleGradient(delta int) (string, error) {
	c, ok := s.gradients.(cycler)
	s.mu.Lock()
	name := s.params.Gradient
	s.mu.Unlock()
	if !ok || delta == 0 {
		return name, nil
	}
	if delta > 0 {
		name = c.Next(name)
	} else {
		name = c.Prev(name)
	}
	return name, s.SetGradient(name)
}

// ToggleInverted flips the inversion flag and returns the new value.
func (s *Session[T]) ToggleInverted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Inverted = !s.params.Inverted
	s.palette = colormap.NewPalette(s.params.MaxIters, s.params.Inverted, s.grad)
	return s.params.Inverted
}

// Buffer returns the installed buffer, nil before the first Recompute.
func (s *Session[T]) Buffer() *grid.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf
}

// Image colors the installed buffer. It returns nil before the first
// Recompute.
func (s *Session[T]) Image() *image.RGBA {
	s.mu.Lock()
	buf, p := s.buf, s.palette
	s.mu.Unlock()
	if buf == nil {
		return nil
	}
	return colormap.PaletteImage(buf, p)
}

// State returns a snapshot of the session.
func (s *Session[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Params:     s.params,
		Numeric:    string(numeric.KindOf[T]()),
		Resolution: s.res,
		Depth:      s.stack.Depth(),
		Generation: s.gen,
		Computing:  s.inflight != nil,
		Ready:      s.buf != nil,
	}
	if r, err := s.stack.Active(); err == nil {
		st.Rect = r.Bounds()
		st.Stale = s.buf != nil && !r.Equal(s.bufRect)
	}
	if s.buf != nil {
		st.Skipped = s.buf.Skipped()
	}
	return st
}

type cycler interface {
	Next(name string) string
	Prev(name string) string
}
