package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Keyer builds cache keys.
type Keyer interface {
	// BufferKey returns the key of an iteration buffer.
	BufferKey(opts BufferKeyOpts) string
}

// BufferKeyOpts is everything an iteration buffer depends on.
type BufferKeyOpts struct {
	Numeric  string    `json:"numeric"`
	Rect     [4]string `json:"rect"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	MaxIters int       `json:"max_iters"`
}

// String returns a short human-readable summary for logs.
func (o BufferKeyOpts) String() string {
	return fmt.Sprintf("%s %dx%d/%d x=[%s,%s] y=[%s,%s]",
		o.Numeric, o.Width, o.Height, o.MaxIters, o.Rect[0], o.Rect[1], o.Rect[2], o.Rect[3])
}

// canonical joins every field with NUL separators. Bounds are kept as the
// exact decimal text, so two rectangles that differ past float64 precision
// still produce different keys.
func (o BufferKeyOpts) canonical() string {
	fields := []string{
		o.Numeric,
		o.Rect[0], o.Rect[1], o.Rect[2], o.Rect[3],
		strconv.Itoa(o.Width),
		strconv.Itoa(o.Height),
		strconv.Itoa(o.MaxIters),
	}
	return strings.Join(fields, "\x00")
}

// DefaultKeyer produces "buffer:<sha256 of the canonical fields>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) BufferKey(opts BufferKeyOpts) string {
	return "buffer:" + digest(opts.canonical())
}

// digest is the hex SHA-256 of s.
func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
