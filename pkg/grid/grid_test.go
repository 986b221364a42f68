package grid

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/escape"
	"github.com/matzehuels/mandelscope/pkg/numeric"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

// want10x10 is the 10x10 frame of x∈[−2, 0.5], y∈[−2, 2] at 50 iterations,
// indexed [column][row].
var want10x10 = [10][10]float64{
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 1, 2, 50, 2, 1, 0, 0},
	{0, 0, 1, 2, 3, 50, 3, 2, 1, 0},
	{0, 0, 1, 2, 11, 50, 11, 2, 1, 0},
	{0, 1, 2, 2, 6, 50, 6, 2, 2, 1},
	{0, 1, 2, 3, 7, 50, 7, 3, 2, 1},
	{0, 1, 2, 4, 50, 50, 50, 4, 2, 1},
	{0, 1, 2, 13, 50, 50, 50, 13, 2, 1},
	{0, 1, 2, 17, 50, 50, 50, 17, 2, 1},
	{0, 1, 1, 4, 50, 50, 50, 4, 1, 1},
}

func TestComputeDefaultFrame(t *testing.T) {
	t.Run("float", func(t *testing.T) { checkDefaultFrame[numeric.Float](t) })
	t.Run("decimal", func(t *testing.T) { checkDefaultFrame[numeric.Decimal](t) })
}

func checkDefaultFrame[T numeric.Real[T]](t *testing.T) {
	t.Helper()
	buf := computeDefault[T](t, viewport.Resolution{Width: 10, Height: 10}, 50)

	if buf.Width() != 10 || buf.Height() != 10 || buf.MaxIters() != 50 {
		t.Fatalf("buffer is %dx%d max %d", buf.Width(), buf.Height(), buf.MaxIters())
	}
	for u := 0; u < 10; u++ {
		for v := 0; v < 10; v++ {
			if got := buf.At(u, v); got != want10x10[u][v] {
				t.Errorf("At(%d, %d) = %v, want %v", u, v, got, want10x10[u][v])
			}
		}
	}
	if buf.Skipped() != 0 {
		t.Errorf("Skipped = %d, want 0", buf.Skipped())
	}
}

func TestComputeDimensionsAndRange(t *testing.T) {
	res := viewport.Resolution{Width: 37, Height: 23}
	buf := computeDefault[numeric.Float](t, res, 40)
	if buf.Resolution() != res {
		t.Fatalf("Resolution = %+v, want %+v", buf.Resolution(), res)
	}
	for u := 0; u < res.Width; u++ {
		col := buf.Column(u)
		if len(col) != res.Height {
			t.Fatalf("column %d has %d rows", u, len(col))
		}
		for v, c := range col {
			if c < -1 || c > 40 {
				t.Errorf("At(%d, %d) = %v outside [-1, 40]", u, v, c)
			}
		}
	}
}

func TestComputeIsDeterministicAcrossWorkerCounts(t *testing.T) {
	res := viewport.Resolution{Width: 64, Height: 48}
	rect, _ := viewport.LookupRegion[numeric.Float]("seahorse")
	eval, _ := escape.NewEvaluator[numeric.Float](200)

	var first *Buffer
	for _, workers := range []int{1, 2, 7, 0} {
		buf, err := Compute(context.Background(), res, rect, eval, WithWorkers(workers))
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if first == nil {
			first = buf
			continue
		}
		if !first.Equal(buf) {
			t.Errorf("workers=%d produced a different buffer", workers)
		}
	}
}

func TestComputeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rect, _ := viewport.LookupRegion[numeric.Float](viewport.DefaultRegion)
	eval, _ := escape.NewEvaluator[numeric.Float](1000)
	buf, err := Compute(ctx, viewport.Resolution{Width: 200, Height: 200}, rect, eval)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if buf != nil {
		t.Error("cancelled Compute returned a buffer")
	}
}

func TestComputeCancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rect, _ := viewport.LookupRegion[numeric.Float](viewport.DefaultRegion)
	eval, _ := escape.NewEvaluator[numeric.Float](500)
	buf, err := Compute(ctx, viewport.Resolution{Width: 400, Height: 100}, rect, eval,
		WithWorkers(1),
		WithProgress(func(done, total int) {
			if done == 10 {
				cancel()
			}
		}))
	if !errors.Is(err, context.Canceled) || buf != nil {
		t.Fatalf("Compute = %v, %v; want nil, context.Canceled", buf, err)
	}
}

func TestComputeProgress(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
		last  int
	)
	res := viewport.Resolution{Width: 16, Height: 4}
	rect, _ := viewport.LookupRegion[numeric.Float](viewport.DefaultRegion)
	eval, _ := escape.NewEvaluator[numeric.Float](10)
	_, err := Compute(context.Background(), res, rect, eval, WithProgress(func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if total != res.Width {
			t.Errorf("total = %d, want %d", total, res.Width)
		}
		if done > last {
			last = done
		}
	}))
	if err != nil {
		t.Fatal(err)
	}
	if calls != res.Width || last != res.Width {
		t.Errorf("progress calls=%d last=%d, want %d", calls, last, res.Width)
	}
}

func TestComputeRejectsBadResolution(t *testing.T) {
	rect, _ := viewport.LookupRegion[numeric.Float](viewport.DefaultRegion)
	eval, _ := escape.NewEvaluator[numeric.Float](10)
	_, err := Compute(context.Background(), viewport.Resolution{Width: 0, Height: 10}, rect, eval)
	if !errs.Is(err, errs.ErrCodeInvalidResolution) {
		t.Errorf("error = %v, want INVALID_RESOLUTION", err)
	}
}

func TestBufferCodec(t *testing.T) {
	buf := computeDefault[numeric.Float](t, viewport.Resolution{Width: 5, Height: 3}, 20)
	buf.Column(2)[1] = math.NaN()

	data, err := buf.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var got Buffer
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if !got.Equal(buf) {
		t.Error("decoded buffer differs")
	}
	if got.Skipped() != 1 || !Unevaluable(got.At(2, 1)) {
		t.Errorf("unevaluable pixel lost: skipped=%d", got.Skipped())
	}
}

func TestBufferUnmarshalRejectsGarbage(t *testing.T) {
	buf := computeDefault[numeric.Float](t, viewport.Resolution{Width: 2, Height: 2}, 5)
	data, _ := buf.MarshalBinary()

	tests := map[string][]byte{
		"empty":     nil,
		"bad magic": append([]byte("XXXX"), data[4:]...),
		"truncated": data[:len(data)-1],
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			var b Buffer
			if err := b.UnmarshalBinary(in); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBufferEqual(t *testing.T) {
	a := computeDefault[numeric.Float](t, viewport.Resolution{Width: 4, Height: 4}, 10)
	b := computeDefault[numeric.Float](t, viewport.Resolution{Width: 4, Height: 4}, 10)
	if !a.Equal(b) {
		t.Fatal("identical computations differ")
	}
	b.Column(0)[0] = -1
	if a.Equal(b) {
		t.Error("Equal ignored a changed pixel")
	}
	if a.Equal(nil) {
		t.Error("Equal(nil) = true")
	}
}

func computeDefault[T numeric.Real[T]](t *testing.T, res viewport.Resolution, maxIters int) *Buffer {
	t.Helper()
	rect, err := viewport.LookupRegion[T](viewport.DefaultRegion)
	if err != nil {
		t.Fatal(err)
	}
	eval, err := escape.NewEvaluator[T](maxIters)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := Compute(context.Background(), res, rect, eval)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return buf
}

// gappyFloat is a float64 that cannot represent the integer 3, so column 3
// and row 3 of a frame have no coordinate.
type gappyFloat float64

func (f gappyFloat) Add(o gappyFloat) gappyFloat { return f + o }
func (f gappyFloat) Sub(o gappyFloat) gappyFloat { return f - o }
func (f gappyFloat) Mul(o gappyFloat) gappyFloat { return f * o }
func (f gappyFloat) Quo(o gappyFloat) gappyFloat { return f / o }
func (f gappyFloat) Equal(o gappyFloat) bool     { return f == o }
func (f gappyFloat) Float64() float64            { return float64(f) }
func (f gappyFloat) String() string              { return numeric.Float(f).String() }

func (f gappyFloat) Cmp(o gappyFloat) int { return numeric.Float(f).Cmp(numeric.Float(o)) }

func (gappyFloat) FromFloat64(v float64) (gappyFloat, error) { return gappyFloat(v), nil }
func (gappyFloat) FromUint32(v uint32) (gappyFloat, error)   { return gappyFloat(v), nil }
func (gappyFloat) FromInt32(v int32) (gappyFloat, error) {
	if v == 3 {
		return 0, errs.New(errs.ErrCodeNumericConversion, "no 3")
	}
	return gappyFloat(v), nil
}

func TestComputeIsolatesConversionFailures(t *testing.T) {
	res := viewport.Resolution{Width: 6, Height: 6}
	ctx := context.Background()

	gappy, _ := escape.NewEvaluator[gappyFloat](50)
	got, err := Compute(ctx, res, viewport.Rect[gappyFloat]{XMin: -2, XMax: 0.5, YMin: -2, YMax: 2}, gappy)
	if err != nil {
		t.Fatalf("conversion failure aborted the grid: %v", err)
	}
	want := computeDefault[numeric.Float](t, res, 50)

	if got.Skipped() != 11 {
		t.Errorf("Skipped = %d, want 11", got.Skipped())
	}
	for u := 0; u < res.Width; u++ {
		for v := 0; v < res.Height; v++ {
			g := got.At(u, v)
			switch {
			case u == 3 || v == 3:
				if !Unevaluable(g) {
					t.Errorf("(%d, %d) = %v, want unevaluable", u, v, g)
				}
			case g != want.At(u, v):
				t.Errorf("(%d, %d) = %v, want %v", u, v, g, want.At(u, v))
			}
		}
	}
}
