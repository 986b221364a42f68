// Package numeric defines the arithmetic contract the fractal core is written
// against, together with its two instantiations.
//
// Every other core package (escape, viewport, grid) is generic over a type
// T satisfying Real[T]. Two concrete types are provided:
//
//   - Float: native float64. Fast; precision runs out after roughly 1e-13
//     of zoom relative to the root rectangle.
//   - Decimal: fixed-scale decimal backed by github.com/shopspring/decimal.
//     Much slower, but deep zooms keep their resolution.
//
// # Contract
//
// Values must be immutable: every operation returns a new value and leaves
// its operands untouched, so a value can be read from any number of
// goroutines without synchronization. Conversions are methods on the zero
// value so generic code can construct a T without knowing its concrete type:
//
//	four, err := numeric.FromFloat64[numeric.Decimal](4)
package numeric

import (
	errs "github.com/matzehuels/mandelscope/pkg/errors"
)

// Real is the capability set a numeric type needs to be used by the
// evaluator and the coordinate remapper.
type Real[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	// Quo returns the quotient. Division by zero is a programming error;
	// Float yields ±Inf and Decimal panics.
	Quo(T) T

	// Cmp returns -1, 0 or +1 for less, equal, greater.
	Cmp(T) int
	Equal(T) bool

	FromFloat64(float64) (T, error)
	FromInt32(int32) (T, error)
	FromUint32(uint32) (T, error)

	// Float64 returns the nearest float64, for display and coloring only.
	Float64() float64
	String() string
}

// Kind names a numeric instantiation.
type Kind string

const (
	KindFloat   Kind = "float64"
	KindDecimal Kind = "decimal"
)

// KindOf returns the Kind of T.
func KindOf[T Real[T]]() Kind {
	var zero T
	switch any(zero).(type) {
	case Float:
		return KindFloat
	case Decimal:
		return KindDecimal
	default:
		return Kind("unknown")
	}
}

// FromFloat64 converts v to T.
func FromFloat64[T Real[T]](v float64) (T, error) {
	var zero T
	return zero.FromFloat64(v)
}

// FromInt32 converts v to T.
func FromInt32[T Real[T]](v int32) (T, error) {
	var zero T
	return zero.FromInt32(v)
}

// FromUint32 converts v to T.
func FromUint32[T Real[T]](v uint32) (T, error) {
	var zero T
	return zero.FromUint32(v)
}

// FromInt converts a pixel coordinate to T through the 32-bit conversions of
// the contract. Values outside the int32 range cannot be represented.
func FromInt[T Real[T]](v int) (T, error) {
	if v < -1<<31 || v > 1<<31-1 {
		var zero T
		return zero, errs.New(errs.ErrCodeNumericConversion, "pixel coordinate %d overflows int32", v)
	}
	return FromInt32[T](int32(v))
}

// conversionError reports a value that T cannot hold.
func conversionError(v any, kind Kind) error {
	return errs.New(errs.ErrCodeNumericConversion, "cannot represent %v as %s", v, kind)
}
