package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mandelscope/pkg/cache"
	"github.com/matzehuels/mandelscope/pkg/escape"
	"github.com/matzehuels/mandelscope/pkg/grid"
	"github.com/matzehuels/mandelscope/pkg/numeric"
	"github.com/matzehuels/mandelscope/pkg/observability"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

// keyType labels buffer entries in cache hooks.
const keyType = "buffer"

// Runner encapsulates buffer computation with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// buffers itself. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Workers bounds parallel columns; 0 means GOMAXPROCS.
	Workers int

	// TTL is how long computed buffers stay cached; 0 means cache.DefaultTTL.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Request describes one buffer.
type Request[T numeric.Real[T]] struct {
	Resolution viewport.Resolution
	Rect       viewport.Rect[T]
	MaxIters   int

	// Refresh skips the cache lookup; the result is still stored.
	Refresh bool

	// Progress receives finished-column counts on a cache miss.
	Progress grid.ProgressFunc
}

// KeyOpts returns the cache key inputs of the request.
func (r Request[T]) KeyOpts() cache.BufferKeyOpts {
	return cache.BufferKeyOpts{
		Numeric:  string(numeric.KindOf[T]()),
		Rect:     r.Rect.Bounds(),
		Width:    r.Resolution.Width,
		Height:   r.Resolution.Height,
		MaxIters: r.MaxIters,
	}
}

// Compute returns the buffer for req, from the cache when possible.
// The boolean reports a cache hit. Cache failures are logged and fall back
// to computing; they never fail the request.
func Compute[T numeric.Real[T]](ctx context.Context, r *Runner, req Request[T]) (*grid.Buffer, bool, error) {
	eval, err := escape.NewEvaluator[T](req.MaxIters)
	if err != nil {
		return nil, false, err
	}
	if err := req.Resolution.Validate(); err != nil {
		return nil, false, err
	}

	keyOpts := req.KeyOpts()
	key := r.Keyer.BufferKey(keyOpts)
	logger := r.Logger.With("numeric", keyOpts.Numeric)

	if !req.Refresh {
		if buf := r.lookup(ctx, key, keyOpts, logger); buf != nil {
			observability.Cache().OnCacheHit(ctx, keyType)
			logger.Debug("buffer cache hit", "width", buf.Width(), "height", buf.Height(), "max_iters", buf.MaxIters(), "cached", true)
			return buf, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, keyType)
	}

	hooks := observability.Compute()
	hooks.OnComputeStart(ctx, keyOpts.Numeric, keyOpts.Width, keyOpts.Height, keyOpts.MaxIters)
	start := time.Now()

	opts := []grid.Option{grid.WithWorkers(r.Workers)}
	if req.Progress != nil {
		opts = append(opts, grid.WithProgress(req.Progress))
	}
	buf, err := grid.Compute(ctx, req.Resolution, req.Rect, eval, opts...)
	elapsed := time.Since(start)
	if err != nil {
		hooks.OnComputeComplete(ctx, keyOpts.Numeric, req.Resolution.Pixels(), 0, elapsed, err)
		return nil, false, err
	}
	hooks.OnComputeComplete(ctx, keyOpts.Numeric, req.Resolution.Pixels(), buf.Skipped(), elapsed, nil)

	logger.Info("computed buffer",
		"width", buf.Width(),
		"height", buf.Height(),
		"max_iters", buf.MaxIters(),
		"cached", false,
		"duration", elapsed.Round(time.Millisecond))
	if n := buf.Skipped(); n > 0 {
		logger.Warn("pixels not representable", "skipped", n)
	}

	r.store(ctx, key, buf, logger)
	return buf, false, nil
}

func (r *Runner) lookup(ctx context.Context, key string, want cache.BufferKeyOpts, logger *log.Logger) *grid.Buffer {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("buffer cache read failed", "error", err)
		return nil
	}
	if !hit {
		return nil
	}
	var buf grid.Buffer
	if err := buf.UnmarshalBinary(data); err != nil {
		logger.Warn("discarding corrupt cache entry", "error", err)
		_ = r.Cache.Delete(ctx, key)
		return nil
	}
	if buf.Width() != want.Width || buf.Height() != want.Height || buf.MaxIters() != want.MaxIters {
		logger.Warn("discarding mismatched cache entry", "key", want)
		_ = r.Cache.Delete(ctx, key)
		return nil
	}
	return &buf
}

func (r *Runner) store(ctx context.Context, key string, buf *grid.Buffer, logger *log.Logger) {
	data, err := buf.MarshalBinary()
	if err != nil {
		return
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.DefaultTTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("buffer cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
