package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	NoopPipelineHooks
	NoopCacheHooks
	NoopServerHooks

	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) OnGenerateComplete(_ context.Context, seed string, attempts int, _ time.Duration, _ error) {
	r.add("generated " + seed)
}
func (r *recorder) OnCacheMiss(_ context.Context, keyType string) { r.add("miss " + keyType) }
func (r *recorder) OnResponse(_ context.Context, method, route string, _ int, _ time.Duration) {
	r.add(method + " " + route)
}

func TestRegistry(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	rec := &recorder{}
	SetPipelineHooks(rec)
	SetCacheHooks(rec)
	SetServerHooks(rec)

	ctx := context.Background()
	Pipeline().OnGenerateStart(ctx, "0x000a")
	Pipeline().OnGenerateComplete(ctx, "0x000a", 2, time.Millisecond, nil)
	Cache().OnCacheMiss(ctx, "plot")
	Cache().OnCacheHit(ctx, "plot")
	Server().OnResponse(ctx, "GET", "/plots/{seed}.{format}", 200, time.Millisecond)

	want := []string{"generated 0x000a", "miss plot", "GET /plots/{seed}.{format}"}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, rec.events[i], want[i])
		}
	}

	Reset()
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() after Reset = %T", Cache())
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recorder{}
	SetServerHooks(rec)
	SetServerHooks(nil)
	if Server() != rec {
		t.Errorf("Server() = %T, want recorder", Server())
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Cleanup(Reset)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				SetPipelineHooks(&recorder{})
				return
			}
			Pipeline().OnRenderStart(context.Background(), []string{"svg"})
		}()
	}
	wg.Wait()
}
