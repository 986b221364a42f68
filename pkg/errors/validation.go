package errors

import (
	"strings"
	"unicode"
)

// Upper bounds for user-supplied sizes. They keep a single request from
// allocating an unbounded iteration buffer.
const (
	MaxDimension = 16384
	MaxIters     = 10_000_000
)

// ValidateResolution checks an output resolution in pixels.
//
// The validation rules are:
//   - Width and height must both be positive
//   - Neither may exceed MaxDimension
func ValidateResolution(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidResolution, "resolution must be positive, got %dx%d", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeInvalidResolution, "resolution %dx%d exceeds %d pixels per side", width, height, MaxDimension)
	}
	return nil
}

// ValidateMaxIters checks the iteration limit of a session.
func ValidateMaxIters(n int) error {
	if n < 1 {
		return New(ErrCodeInvalidInput, "max iterations must be at least 1, got %d", n)
	}
	if n > MaxIters {
		return New(ErrCodeInvalidInput, "max iterations %d exceeds limit %d", n, MaxIters)
	}
	return nil
}

// ValidateMargin checks a zoom margin (half the zoom box size, in pixels).
func ValidateMargin(halfWidth, halfHeight int) error {
	if halfWidth <= 0 || halfHeight <= 0 {
		return New(ErrCodeInvalidInput, "zoom margin must be positive, got %dx%d", halfWidth, halfHeight)
	}
	return nil
}

// ValidateName validates a gradient or region identifier.
// Names are short lowercase identifiers such as "magma" or "rd_yl_bu";
// anything with whitespace or control characters is rejected before lookup.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "name too long (max 64 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "name %q contains invalid characters", name)
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "name %q contains path separators", name)
	}
	return nil
}
