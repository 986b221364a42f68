package numeric

// Complex is a complex number over any Real. It has no identity beyond its
// value; all methods return new values.
type Complex[T Real[T]] struct {
	Re, Im T
}

// Add returns z + w.
func (z Complex[T]) Add(w Complex[T]) Complex[T] {
	return Complex[T]{Re: z.Re.Add(w.Re), Im: z.Im.Add(w.Im)}
}

// Mul returns z · w.
func (z Complex[T]) Mul(w Complex[T]) Complex[T] {
	return Complex[T]{
		Re: z.Re.Mul(w.Re).Sub(z.Im.Mul(w.Im)),
		Im: z.Re.Mul(w.Im).Add(z.Im.Mul(w.Re)),
	}
}

// Square returns z², using three multiplications instead of four.
func (z Complex[T]) Square() Complex[T] {
	ri := z.Re.Mul(z.Im)
	return Complex[T]{
		Re: z.Re.Mul(z.Re).Sub(z.Im.Mul(z.Im)),
		Im: ri.Add(ri),
	}
}

// AbsSq returns |z|², the squared magnitude.
func (z Complex[T]) AbsSq() T {
	return z.Re.Mul(z.Re).Add(z.Im.Mul(z.Im))
}

// Equal reports exact equality of both parts.
func (z Complex[T]) Equal(w Complex[T]) bool {
	return z.Re.Equal(w.Re) && z.Im.Equal(w.Im)
}
