package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/mandelscope/pkg/cache"
	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/numeric"
	"github.com/matzehuels/mandelscope/pkg/observability"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if opts.Width != 600 || opts.Height != 600 {
		t.Errorf("resolution = %dx%d, want 600x600", opts.Width, opts.Height)
	}
	if opts.MaxIters != 500 || opts.Gradient != "magma" || opts.Margin != 50 || opts.Region != "default" {
		t.Errorf("defaults = %+v", opts)
	}
	if opts.Logger == nil {
		t.Error("Logger default missing")
	}
	if opts.Resolution() != (viewport.Resolution{Width: 600, Height: 600}) {
		t.Errorf("Resolution = %+v", opts.Resolution())
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		code   errs.Code
	}{
		{"negative width", func(o *Options) { o.Width = -1 }, errs.ErrCodeInvalidResolution},
		{"huge height", func(o *Options) { o.Height = errs.MaxDimension + 1 }, errs.ErrCodeInvalidResolution},
		{"negative iterations", func(o *Options) { o.MaxIters = -5 }, errs.ErrCodeInvalidInput},
		{"negative margin", func(o *Options) { o.Margin = -3 }, errs.ErrCodeInvalidInput},
		{"negative workers", func(o *Options) { o.Workers = -2 }, errs.ErrCodeInvalidInput},
		{"unknown gradient", func(o *Options) { o.Gradient = "mauve" }, errs.ErrCodeUnknownGradient},
		{"bad gradient name", func(o *Options) { o.Gradient = "a b" }, errs.ErrCodeInvalidInput},
		{"unknown region", func(o *Options) { o.Region = "atlantis" }, errs.ErrCodeInvalidRegion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts Options
			opts.SetDefaults()
			tt.mutate(&opts)
			if err := opts.Validate(); !errs.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestComputeCachesBuffer(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(0)
	runner := NewRunner(c, nil, nil)
	req := defaultRequest(t, 24, 16, 64)

	first, hit, err := Compute(ctx, runner, req)
	if err != nil || hit {
		t.Fatalf("first Compute: hit=%v err=%v", hit, err)
	}
	if c.Len() != 1 {
		t.Fatalf("cache holds %d entries, want 1", c.Len())
	}

	second, hit, err := Compute(ctx, runner, req)
	if err != nil || !hit {
		t.Fatalf("second Compute: hit=%v err=%v", hit, err)
	}
	if !second.Equal(first) {
		t.Error("cached buffer is not bit-identical")
	}

	req.Refresh = true
	third, hit, err := Compute(ctx, runner, req)
	if err != nil || hit {
		t.Fatalf("refresh Compute: hit=%v err=%v", hit, err)
	}
	if !third.Equal(first) {
		t.Error("recomputed buffer differs")
	}
}

func TestComputeKeysDifferByNumericKind(t *testing.T) {
	f := defaultRequest(t, 8, 8, 10)
	rect, _ := viewport.LookupRegion[numeric.Decimal](viewport.DefaultRegion)
	d := Request[numeric.Decimal]{Resolution: f.Resolution, Rect: rect, MaxIters: 10}

	keyer := cache.NewDefaultKeyer()
	if keyer.BufferKey(f.KeyOpts()) == keyer.BufferKey(d.KeyOpts()) {
		t.Error("float and decimal requests share a cache key")
	}
	if f.KeyOpts().Rect != d.KeyOpts().Rect {
		t.Errorf("exact bounds differ: %v vs %v", f.KeyOpts().Rect, d.KeyOpts().Rect)
	}
}

func TestComputeIgnoresCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(0)
	runner := NewRunner(c, nil, nil)
	req := defaultRequest(t, 8, 8, 20)

	key := runner.Keyer.BufferKey(req.KeyOpts())
	_ = c.Set(ctx, key, []byte("garbage"), 0)

	buf, hit, err := Compute(ctx, runner, req)
	if err != nil || hit || buf == nil {
		t.Fatalf("Compute = %v, %v, %v", buf, hit, err)
	}
	data, ok, _ := c.Get(ctx, key)
	if !ok || string(data) == "garbage" {
		t.Error("corrupt entry was not replaced")
	}
}

func TestComputeSurvivesCacheFailure(t *testing.T) {
	runner := NewRunner(failingCache{}, nil, nil)
	buf, hit, err := Compute(context.Background(), runner, defaultRequest(t, 4, 4, 10))
	if err != nil || hit || buf == nil {
		t.Fatalf("Compute = %v, %v, %v", buf, hit, err)
	}
}

func TestComputeRejectsInvalidRequest(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	req := defaultRequest(t, 4, 4, 10)

	req.MaxIters = 0
	if _, _, err := Compute(context.Background(), runner, req); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("MaxIters=0 error = %v", err)
	}
	req.MaxIters = 10
	req.Resolution.Width = 0
	if _, _, err := Compute(context.Background(), runner, req); !errs.Is(err, errs.ErrCodeInvalidResolution) {
		t.Errorf("Width=0 error = %v", err)
	}
}

func TestComputeEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetComputeHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	runner := NewRunner(cache.NewMemoryCache(0), nil, nil)
	req := defaultRequest(t, 6, 6, 10)
	_, _, _ = Compute(ctx, runner, req)
	_, _, _ = Compute(ctx, runner, req)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	want := []string{"miss", "start", "complete", "set", "hit"}
	if len(hooks.events) != len(want) {
		t.Fatalf("events = %v, want %v", hooks.events, want)
	}
	for i := range want {
		if hooks.events[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, hooks.events[i], want[i])
		}
	}
}

func defaultRequest(t *testing.T, w, h, maxIters int) Request[numeric.Float] {
	t.Helper()
	rect, err := viewport.LookupRegion[numeric.Float](viewport.DefaultRegion)
	if err != nil {
		t.Fatal(err)
	}
	return Request[numeric.Float]{
		Resolution: viewport.Resolution{Width: w, Height: h},
		Rect:       rect,
		MaxIters:   maxIters,
	}
}

type failingCache struct{}

var errBackend = errors.New("backend down")

func (failingCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errBackend }
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errBackend
}
func (failingCache) Delete(context.Context, string) error { return errBackend }
func (failingCache) Close() error                         { return nil }

type recordingHooks struct {
	observability.NoopComputeHooks
	observability.NoopCacheHooks

	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnComputeStart(context.Context, string, int, int, int) { h.record("start") }
func (h *recordingHooks) OnComputeComplete(context.Context, string, int, int, time.Duration, error) {
	h.record("complete")
}
func (h *recordingHooks) OnCacheHit(context.Context, string)      { h.record("hit") }
func (h *recordingHooks) OnCacheMiss(context.Context, string)     { h.record("miss") }
func (h *recordingHooks) OnCacheSet(context.Context, string, int) { h.record("set") }
