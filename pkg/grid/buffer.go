package grid

import (
	"encoding/binary"
	"math"

	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

// Buffer holds one iteration count per pixel, indexed (column, row).
//
// Storage is column-major so each compute task writes one contiguous slice.
// A Buffer is never mutated after Compute returns it.
type Buffer struct {
	width    int
	height   int
	maxIters int
	counts   []float64
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(res viewport.Resolution, maxIters int) (*Buffer, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	if err := errs.ValidateMaxIters(maxIters); err != nil {
		return nil, err
	}
	return &Buffer{
		width:    res.Width,
		height:   res.Height,
		maxIters: maxIters,
		counts:   make([]float64, res.Pixels()),
	}, nil
}

// Width returns the number of columns.
func (b *Buffer) Width() int { return b.width }

// Height returns the number of rows.
func (b *Buffer) Height() int { return b.height }

// Resolution returns the buffer size.
func (b *Buffer) Resolution() viewport.Resolution {
	return viewport.Resolution{Width: b.width, Height: b.height}
}

// MaxIters returns the iteration limit the counts were computed with.
func (b *Buffer) MaxIters() int { return b.maxIters }

// At returns the count of pixel (col, row). It panics when out of range.
func (b *Buffer) At(col, row int) float64 {
	if row < 0 || row >= b.height {
		panic("grid: row out of range")
	}
	return b.counts[col*b.height+row]
}

// Column returns column col, top to bottom. The slice aliases the buffer
// and must not be modified.
func (b *Buffer) Column(col int) []float64 {
	return b.counts[col*b.height : (col+1)*b.height]
}

// Unevaluable reports whether v is the marker for a pixel whose
// coordinates could not be represented.
func Unevaluable(v float64) bool { return math.IsNaN(v) }

// Skipped returns how many pixels are unevaluable.
func (b *Buffer) Skipped() int {
	n := 0
	for _, v := range b.counts {
		if Unevaluable(v) {
			n++
		}
	}
	return n
}

// Equal reports bitwise equality, so two unevaluable pixels compare equal.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.width != o.width || b.height != o.height || b.maxIters != o.maxIters {
		return false
	}
	for i, v := range b.counts {
		if math.Float64bits(v) != math.Float64bits(o.counts[i]) {
			return false
		}
	}
	return true
}

// ==========================================================================
// Binary codec
// ==========================================================================

// CodecTag names the binary layout written by MarshalBinary. Caches scope
// their keys by it so blobs of an older layout are never read back.
const CodecTag = "msb1"

var magic = [4]byte{'M', 'S', 'B', '1'}

const headerSize = 16

// MarshalBinary encodes the buffer as a 16-byte header (magic, width,
// height, maxIters as little-endian uint32) followed by the counts as
// little-endian float64 bits in column-major order.
func (b *Buffer) MarshalBinary() ([]byte, error) {
	out := make([]byte, headerSize+8*len(b.counts))
	copy(out, magic[:])
	binary.LittleEndian.PutUint32(out[4:], uint32(b.width))
	binary.LittleEndian.PutUint32(out[8:], uint32(b.height))
	binary.LittleEndian.PutUint32(out[12:], uint32(b.maxIters))
	p := out[headerSize:]
	for i, v := range b.counts {
		binary.LittleEndian.PutUint64(p[8*i:], math.Float64bits(v))
	}
	return out, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary.
func (b *Buffer) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize || [4]byte(data[:4]) != magic {
		return errs.New(errs.ErrCodeInvalidInput, "not an iteration buffer")
	}
	width := int(binary.LittleEndian.Uint32(data[4:]))
	height := int(binary.LittleEndian.Uint32(data[8:]))
	maxIters := int(binary.LittleEndian.Uint32(data[12:]))
	if err := errs.ValidateResolution(width, height); err != nil {
		return err
	}
	if err := errs.ValidateMaxIters(maxIters); err != nil {
		return err
	}
	n := width * height
	if len(data) != headerSize+8*n {
		return errs.New(errs.ErrCodeInvalidInput, "buffer payload is %d bytes, want %d", len(data)-headerSize, 8*n)
	}
	counts := make([]float64, n)
	p := data[headerSize:]
	for i := range counts {
		counts[i] = math.Float64frombits(binary.LittleEndian.Uint64(p[8*i:]))
	}
	*b = Buffer{width: width, height: height, maxIters: maxIters, counts: counts}
	return nil
}
