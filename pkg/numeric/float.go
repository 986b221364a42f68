package numeric

import (
	"math"
	"strconv"
)

// Float is the native double-precision instantiation of Real.
type Float float64

func (f Float) Add(o Float) Float { return f + o }
func (f Float) Sub(o Float) Float { return f - o }
func (f Float) Mul(o Float) Float { return f * o }
func (f Float) Quo(o Float) Float { return f / o }

func (f Float) Cmp(o Float) int {
	switch {
	case f < o:
		return -1
	case f > o:
		return 1
	default:
		return 0
	}
}

func (f Float) Equal(o Float) bool { return f == o }

// FromFloat64 rejects NaN and infinities, which have no place on the plane.
func (Float) FromFloat64(v float64) (Float, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, conversionError(v, KindFloat)
	}
	return Float(v), nil
}

func (Float) FromInt32(v int32) (Float, error)   { return Float(v), nil }
func (Float) FromUint32(v uint32) (Float, error) { return Float(v), nil }

func (f Float) Float64() float64 { return float64(f) }

func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

var _ Real[Float] = Float(0)
