// Package grid fills an iteration buffer by evaluating every pixel of a
// viewport in parallel.
//
// Work is split by column: each task remaps its column index to an x
// coordinate, evaluates every row, and writes into the column's own slice of
// the buffer. Row coordinates are computed once up front and shared
// read-only. No task touches another task's slice, so the fan-out needs no
// locking and the result does not depend on scheduling.
package grid

import (
	"context"
	"math"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mandelscope/pkg/escape"
	"github.com/matzehuels/mandelscope/pkg/numeric"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

// cancelCheckRows is how often a column task polls for cancellation.
const cancelCheckRows = 32

// ProgressFunc is called after each finished column with the number of
// finished columns and the total. Calls come from worker goroutines.
type ProgressFunc func(done, total int)

type options struct {
	workers  int
	progress ProgressFunc
}

// Option configures Compute.
type Option func(*options)

// WithWorkers bounds the number of concurrently evaluated columns.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// Compute evaluates every pixel of res over rect.
//
// Column u maps to x = Remap(u, 0, width, XMin, XMax) and row v to
// y = Remap(v, 0, height, YMin, YMax). A pixel whose coordinate cannot be
// converted to T is stored as NaN (see Unevaluable) and does not fail the
// grid. The buffer is returned only once every column is done; if ctx is
// cancelled first, Compute returns ctx.Err() and no buffer.
func Compute[T numeric.Real[T]](ctx context.Context, res viewport.Resolution, rect viewport.Rect[T], eval *escape.Evaluator[T], opts ...Option) (*Buffer, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	buf, err := NewBuffer(res, eval.MaxIters())
	if err != nil {
		return nil, err
	}

	var zero T
	width, err := numeric.FromInt[T](res.Width)
	if err != nil {
		return nil, err
	}
	height, err := numeric.FromInt[T](res.Height)
	if err != nil {
		return nil, err
	}

	rows := make([]T, res.Height)
	rowOK := make([]bool, res.Height)
	for v := range rows {
		fv, err := numeric.FromInt[T](v)
		if err != nil {
			continue
		}
		rows[v] = viewport.Remap(fv, zero, height, rect.YMin, rect.YMax)
		rowOK[v] = true
	}

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for u := 0; u < res.Width; u++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			col := buf.Column(u)
			fu, err := numeric.FromInt[T](u)
			if err != nil {
				for v := range col {
					col[v] = math.NaN()
				}
			} else {
				x := viewport.Remap(fu, zero, width, rect.XMin, rect.XMax)
				for v, y := range rows {
					if v%cancelCheckRows == 0 && gctx.Err() != nil {
						return gctx.Err()
					}
					if !rowOK[v] {
						col[v] = math.NaN()
						continue
					}
					col[v] = eval.Evaluate(x, y)
				}
			}
			n := done.Add(1)
			if o.progress != nil {
				o.progress(int(n), res.Width)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return buf, nil
}
