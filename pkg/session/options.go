package session

import (
	"context"

	"github.com/matzehuels/mandelscope/pkg/gradient"
	"github.com/matzehuels/mandelscope/pkg/grid"
	"github.com/matzehuels/mandelscope/pkg/numeric"
	"github.com/matzehuels/mandelscope/pkg/pipeline"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

// Option configures New and Open.
type Option func(*config)

type config struct {
	runner    *pipeline.Runner
	gradients gradient.Lookup
	region    string
	root      any
}

func (c *config) setDefaults() {
	if c.runner == nil {
		c.runner = pipeline.NewRunner(nil, nil, nil)
	}
	if c.gradients == nil {
		c.gradients = gradient.Default()
	}
}

// WithRunner computes buffers through r, sharing its cache and logger.
func WithRunner(r *pipeline.Runner) Option {
	return func(c *config) { c.runner = r }
}

// WithGradients resolves gradient names through l instead of the default
// registry.
func WithGradients(l gradient.Lookup) Option {
	return func(c *config) { c.gradients = l }
}

// WithRegion starts at a named region instead of the default view.
func WithRegion(name string) Option {
	return func(c *config) {
		if name != "" {
			c.region = name
		}
	}
}

// WithRoot starts at an explicit rectangle. Its numeric type must match the
// session's.
func WithRoot[T numeric.Real[T]](r viewport.Rect[T]) Option {
	return func(c *config) { c.root = r }
}

type progressKey struct{}

// WithProgress returns a context that makes Recompute report finished
// columns to fn.
func WithProgress(ctx context.Context, fn grid.ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func progressFromContext(ctx context.Context) grid.ProgressFunc {
	fn, _ := ctx.Value(progressKey{}).(grid.ProgressFunc)
	return fn
}
