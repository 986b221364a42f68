// Package pipeline ties the fractal core to caching, logging and
// observability, so the CLI, the terminal explorer and the HTTP API compute
// buffers the same way.
//
// # Architecture
//
// A request flows through three steps:
//
//  1. Key: derive a cache key from the numeric kind, the exact rectangle
//     bounds, the resolution and the iteration limit
//  2. Compute: on a miss, evaluate the grid in parallel
//  3. Store: encode the buffer and write it back to the cache
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	rect, _ := viewport.LookupRegion[numeric.Float]("seahorse")
//	buf, cached, err := pipeline.Compute(ctx, runner, pipeline.Request[numeric.Float]{
//	    Resolution: viewport.Resolution{Width: 600, Height: 600},
//	    Rect:       rect,
//	    MaxIters:   500,
//	})
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/gradient"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, explorer and API
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 600

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 600

	// DefaultMaxIters is the default iteration limit.
	DefaultMaxIters = 500

	// DefaultMargin is the default half-size of the zoom box in pixels.
	DefaultMargin = 50
)

// DefaultGradient is the default color gradient.
const DefaultGradient = gradient.DefaultName

// DefaultRegion is the default root view.
const DefaultRegion = viewport.DefaultRegion

// =============================================================================
// Options - Render Configuration
// =============================================================================

// Options contains the user-facing render settings.
// This struct supports JSON serialization for API requests.
type Options struct {
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	MaxIters int    `json:"max_iters,omitempty"`
	Gradient string `json:"gradient,omitempty"`
	Inverted bool   `json:"inverted,omitempty"`
	Precise  bool   `json:"precise,omitempty"`
	Region   string `json:"region,omitempty"`
	Margin   int    `json:"margin,omitempty"`

	// Workers bounds parallel columns; 0 means GOMAXPROCS.
	Workers int `json:"workers,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// SetDefaults fills zero fields with the defaults.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.MaxIters == 0 {
		o.MaxIters = DefaultMaxIters
	}
	if o.Gradient == "" {
		o.Gradient = DefaultGradient
	}
	if o.Region == "" {
		o.Region = DefaultRegion
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks every field. It does not apply defaults.
func (o *Options) Validate() error {
	if err := errs.ValidateResolution(o.Width, o.Height); err != nil {
		return err
	}
	if err := errs.ValidateMaxIters(o.MaxIters); err != nil {
		return err
	}
	if err := errs.ValidateMargin(o.Margin, o.Margin); err != nil {
		return err
	}
	if o.Workers < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "workers must be non-negative, got %d", o.Workers)
	}
	if err := ValidateGradient(o.Gradient); err != nil {
		return err
	}
	return ValidateRegion(o.Region)
}

// ValidateAndSetDefaults applies defaults, then validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// Resolution returns the frame size.
func (o *Options) Resolution() viewport.Resolution {
	return viewport.Resolution{Width: o.Width, Height: o.Height}
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateGradient checks that name is a built-in gradient.
func ValidateGradient(name string) error {
	if err := errs.ValidateName(name); err != nil {
		return err
	}
	_, err := gradient.Default().Lookup(name)
	return err
}

// ValidateRegion checks that name is a built-in region.
func ValidateRegion(name string) error {
	if _, ok := viewport.Regions[name]; !ok {
		return errs.New(errs.ErrCodeInvalidRegion, "unknown region %q", name)
	}
	return nil
}
