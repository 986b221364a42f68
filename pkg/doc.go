// Package pkg provides the core libraries for Mandelscope, an escape-time
// explorer for the Mandelbrot set.
//
// # Overview
//
// Mandelscope computes iteration-count buffers over a rectangle of the
// complex plane, keeps a stack of zoom levels, and colors buffers with
// gradient palettes. The same libraries back the one-shot renderer, the
// terminal explorer and the HTTP API. The pkg directory is organized into
// three areas:
//
//  1. Fractal core ([numeric], [escape], [viewport], [grid])
//  2. Coloring ([gradient], [colormap])
//  3. Orchestration ([pipeline], [session], [cache], [config])
//
// # Architecture
//
// The typical data flow through Mandelscope:
//
//	viewport.Stack (active rectangle)
//	         ↓
//	    [escape] evaluator per pixel, [grid] in parallel columns
//	         ↓
//	    [grid.Buffer] (cached by [pipeline] through [cache])
//	         ↓
//	    [colormap] with a [gradient]
//	         ↓
//	    PNG, terminal half-blocks or raw buffer bytes
//
// # Quick Start
//
// Compute and color one frame:
//
//	rect, _ := viewport.LookupRegion[numeric.Float]("seahorse")
//	eval, _ := escape.NewEvaluator[numeric.Float](500)
//	buf, _ := grid.Compute(ctx, viewport.Resolution{Width: 600, Height: 600}, rect, eval)
//	g, _ := gradient.Default().Lookup("magma")
//	img := colormap.Image(buf, false, g)
//
// Or let a session own the zoom stack, the palette and recompute
// supersession:
//
//	ex, _ := session.Open(false, res, "magma", 500, false)
//	_, _ = ex.Recompute(ctx, res)
//	_ = ex.ZoomIn(300, 300, session.Square(50))
//
// # Main Packages
//
// [numeric] - Real-number abstraction with a float64 and a fixed-scale
// decimal implementation. Everything above it is generic over the kind.
//
// [viewport] - Rectangles, the zoom stack and the named root regions.
//
// [grid] - Parallel evaluation of a whole frame into a [grid.Buffer], with
// cancellation and progress reporting.
//
// [pipeline] - Compute with buffer caching, logging and observability hooks.
// Ensures consistent behavior across the CLI, the explorer and the API.
//
// [cache] - File, memory and Redis backends for encoded buffers.
//
// [session] - Explorer state: zoom stack, gradient, inversion and the
// installed buffer. [session.Store] holds sessions for the HTTP API.
//
// [config] - TOML configuration file and cache backend selection.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/grid/...               # Specific package
//	go test -bench . ./pkg/escape        # Evaluator benchmarks
//
// [numeric]: https://pkg.go.dev/github.com/matzehuels/mandelscope/pkg/numeric
// [escape]: https://pkg.go.dev/github.com/matzehuels/mandelscope/pkg/escape
// [viewport]: https://pkg.go.dev/github.com/matzehuels/mandelscope/pkg/viewport
// [grid]: https://pkg.go.dev/github.com/matzehuels/mandelscope/pkg/grid
// [grid.Buffer]: https://pkg.go.dev/github.com/matzehuels/mandelscope/pkg/grid#Buffer
// [gradient]: https://pkg.go.dev/github.com/matzehuels/mandelscope/pkg/gradient
// [colormap]: https://pkg.go.dev/github.com/matzehuels/mandelscope/pkg/colormap
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/mandelscope/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/mandelscope/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/mandelscope/pkg/session
// [session.Store]: https://pkg.go.dev/github.com/matzehuels/mandelscope/pkg/session#Store
// [config]: https://pkg.go.dev/github.com/matzehuels/mandelscope/pkg/config
package pkg
