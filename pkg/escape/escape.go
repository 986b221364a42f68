// Package escape implements the escape-time evaluator for the Mandelbrot
// iteration z ↦ z² + c.
//
// The evaluator is generic over numeric.Real and is a pure function of
// (x, y, maxIters): it holds no mutable state and may be shared by any
// number of goroutines.
//
// Two early exits keep interior points cheap:
//
//   - Points inside the main cardioid are detected in closed form and return
//     maxIters without iterating.
//   - Every PeriodCheckInterval iterations the orbit is snapshotted; an orbit
//     that lands exactly on its snapshot is periodic and never escapes.
package escape

import (
	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/numeric"
)

// PeriodCheckInterval is the number of iterations between orbit snapshots.
const PeriodCheckInterval = 20

// BailoutSq is the squared escape radius.
const BailoutSq = 4.0

// Evaluator computes escape times for a fixed iteration limit.
type Evaluator[T numeric.Real[T]] struct {
	maxIters int
	quarter  T
	bailout  T
}

// NewEvaluator prepares an evaluator for maxIters iterations.
// Constants are converted to T once here, so Evaluate never fails.
func NewEvaluator[T numeric.Real[T]](maxIters int) (*Evaluator[T], error) {
	if err := errs.ValidateMaxIters(maxIters); err != nil {
		return nil, err
	}
	quarter, err := numeric.FromFloat64[T](0.25)
	if err != nil {
		return nil, err
	}
	bailout, err := numeric.FromFloat64[T](BailoutSq)
	if err != nil {
		return nil, err
	}
	return &Evaluator[T]{maxIters: maxIters, quarter: quarter, bailout: bailout}, nil
}

// MaxIters returns the iteration limit.
func (e *Evaluator[T]) MaxIters() int { return e.maxIters }

// Evaluate returns the escape iteration count of c = x + yi.
//
// Escape detected at loop index i returns i−1; points that never escape,
// lie in the cardioid or fall into a detected cycle return maxIters. The
// result always lies in [−1, maxIters].
func (e *Evaluator[T]) Evaluate(x, y T) float64 {
	limit := float64(e.maxIters)

	xq := x.Sub(e.quarter)
	ySq := y.Mul(y)
	q := xq.Mul(xq).Add(ySq)
	if q.Mul(q.Add(xq)).Cmp(ySq.Mul(e.quarter)) <= 0 {
		return limit
	}

	var z, zOld numeric.Complex[T]
	c := numeric.Complex[T]{Re: x, Im: y}
	for i := 0; i < e.maxIters; i++ {
		if z.AbsSq().Cmp(e.bailout) >= 0 {
			return float64(i - 1)
		}
		z = z.Square().Add(c)
		if z.Equal(zOld) {
			return limit
		}
		if i%PeriodCheckInterval == 0 {
			zOld = z
		}
	}
	return limit
}

// Evaluate is a one-shot helper that builds an evaluator for maxIters.
func Evaluate[T numeric.Real[T]](x, y T, maxIters int) (float64, error) {
	e, err := NewEvaluator[T](maxIters)
	if err != nil {
		return 0, err
	}
	return e.Evaluate(x, y), nil
}
