package escape

import (
	"testing"

	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/numeric"
)

func TestEvaluateKnownPoints(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"origin is in cardioid", 0, 0, 100},
		{"cardioid cusp", 0.25, 0, 100},
		{"escapes after first update", 2, 2, 0},
		{"real axis outside", 1, 0, 1},
		{"period-2 bulb", -1, 0, 100},
		{"period-4 bulb", -1.3, 0, 100},
		{"upper bulb", -0.1, 0.8, 100},
		{"outside near cardioid", 0.5, 0.5, 4},
		{"slow escape", 0.3, 0.6, 14},
		{"seahorse edge", -0.75, 0.1, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(numeric.Float(tt.x), numeric.Float(tt.y), 100)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestCardioidReturnsMaxIters(t *testing.T) {
	for _, maxIters := range []int{1, 2, 20, 50, 1000} {
		e, err := NewEvaluator[numeric.Float](maxIters)
		if err != nil {
			t.Fatalf("NewEvaluator(%d): %v", maxIters, err)
		}
		if got := e.Evaluate(0, 0); got != float64(maxIters) {
			t.Errorf("maxIters=%d: Evaluate(0,0) = %v", maxIters, got)
		}
		if e.MaxIters() != maxIters {
			t.Errorf("MaxIters() = %d, want %d", e.MaxIters(), maxIters)
		}
	}
}

func TestEvaluateRange(t *testing.T) {
	for _, maxIters := range []int{1, 3, 64} {
		e, err := NewEvaluator[numeric.Float](maxIters)
		if err != nil {
			t.Fatal(err)
		}
		for x := -2.5; x <= 1.5; x += 0.0625 {
			for y := -2.0; y <= 2.0; y += 0.0625 {
				got := e.Evaluate(numeric.Float(x), numeric.Float(y))
				if got < -1 || got > float64(maxIters) {
					t.Fatalf("Evaluate(%v, %v) = %v outside [-1, %d]", x, y, got, maxIters)
				}
			}
		}
	}
}

func TestDecimalAgreesWithFloat(t *testing.T) {
	points := [][2]string{
		{"0", "0"},
		{"2", "2"},
		{"1", "0"},
		{"-1", "0"},
		{"0.5", "0.5"},
		{"0.3", "0.6"},
		{"0.4", "0.3"},
		{"-2.1", "0"},
	}
	fe, err := NewEvaluator[numeric.Float](100)
	if err != nil {
		t.Fatal(err)
	}
	de, err := NewEvaluator[numeric.Decimal](100)
	if err != nil {
		t.Fatal(err)
	}

	for _, p := range points {
		dx, _ := numeric.ParseDecimal(p[0])
		dy, _ := numeric.ParseDecimal(p[1])
		want := fe.Evaluate(numeric.Float(dx.Float64()), numeric.Float(dy.Float64()))
		if got := de.Evaluate(dx, dy); got != want {
			t.Errorf("Decimal Evaluate(%s, %s) = %v, Float = %v", p[0], p[1], got, want)
		}
	}
}

func TestNewEvaluatorRejectsBadLimit(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := NewEvaluator[numeric.Float](n); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("NewEvaluator(%d) error = %v, want INVALID_INPUT", n, err)
		}
	}
	if _, err := Evaluate(numeric.Float(0), numeric.Float(0), 0); err == nil {
		t.Error("Evaluate with maxIters=0 should fail")
	}
}

func BenchmarkEvaluateFloat(b *testing.B) {
	e, _ := NewEvaluator[numeric.Float](1000)
	for i := 0; i < b.N; i++ {
		e.Evaluate(-0.75, 0.1)
	}
}

func BenchmarkEvaluateDecimal(b *testing.B) {
	e, _ := NewEvaluator[numeric.Decimal](1000)
	x, _ := numeric.ParseDecimal("-0.75")
	y, _ := numeric.ParseDecimal("0.1")
	for i := 0; i < b.N; i++ {
		e.Evaluate(x, y)
	}
}
