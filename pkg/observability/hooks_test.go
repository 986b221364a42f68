package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopComputeHooks{}
	p.OnComputeStart(ctx, "float64", 600, 600, 500)
	p.OnComputeComplete(ctx, "float64", 360000, 0, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "buffer")
	c.OnCacheMiss(ctx, "buffer")
	c.OnCacheSet(ctx, "buffer", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/sessions/{id}/frame.png")
	h.OnResponse(ctx, "GET", "/sessions/{id}/frame.png", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Compute().(NoopComputeHooks); !ok {
		t.Error("Compute() should return NoopComputeHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customCompute := &testComputeHooks{}
	SetComputeHooks(customCompute)
	if Compute() != customCompute {
		t.Error("SetComputeHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Compute().(NoopComputeHooks); !ok {
		t.Error("Reset() should restore NoopComputeHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testComputeHooks{}
	SetComputeHooks(custom)
	SetComputeHooks(nil)

	if Compute() != custom {
		t.Error("SetComputeHooks(nil) should be ignored")
	}
}

type testComputeHooks struct{ NoopComputeHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
