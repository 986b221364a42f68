package numeric

import (
	"math"

	"github.com/shopspring/decimal"
)

// DecimalScale is the number of fractional digits a Decimal keeps after
// multiplication and division. Exact decimal products double their digit
// count on every squaring, so the escape-time loop would grow without bound;
// rounding to a fixed scale keeps each iteration the same cost.
const DecimalScale = 40

// Decimal is the arbitrary-precision instantiation of Real.
// The zero value is 0.
type Decimal struct {
	v decimal.Decimal
}

// NewDecimal wraps an existing decimal value.
func NewDecimal(v decimal.Decimal) Decimal { return Decimal{v: v} }

// ParseDecimal parses a decimal string such as "-0.743643887037151".
// Strings keep every digit, unlike float64 literals.
func ParseDecimal(s string) (Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, conversionError(s, KindDecimal)
	}
	return Decimal{v: v}, nil
}

func (d Decimal) Add(o Decimal) Decimal { return Decimal{v: d.v.Add(o.v)} }
func (d Decimal) Sub(o Decimal) Decimal { return Decimal{v: d.v.Sub(o.v)} }
func (d Decimal) Mul(o Decimal) Decimal { return Decimal{v: d.v.Mul(o.v).Round(DecimalScale)} }
func (d Decimal) Quo(o Decimal) Decimal { return Decimal{v: d.v.DivRound(o.v, DecimalScale)} }

func (d Decimal) Cmp(o Decimal) int      { return d.v.Cmp(o.v) }
func (d Decimal) Equal(o Decimal) bool   { return d.v.Equal(o.v) }
func (d Decimal) Float64() float64       { return d.v.InexactFloat64() }
func (d Decimal) String() string         { return d.v.String() }
func (d Decimal) Value() decimal.Decimal { return d.v }

func (Decimal) FromFloat64(v float64) (Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Decimal{}, conversionError(v, KindDecimal)
	}
	return Decimal{v: decimal.NewFromFloat(v)}, nil
}

func (Decimal) FromInt32(v int32) (Decimal, error) {
	return Decimal{v: decimal.NewFromInt32(v)}, nil
}

func (Decimal) FromUint32(v uint32) (Decimal, error) {
	return Decimal{v: decimal.NewFromInt(int64(v))}, nil
}

var _ Real[Decimal] = Decimal{}
