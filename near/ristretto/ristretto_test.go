package ristretto

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{NumCounters: 1e4, MaxCost: 1 << 20, BufferItems: 64})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for zero config")
	}
}

func TestSetGetDelClear(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	if ok, err := p.Set(ctx, "a", []byte(`"x"`), 3, time.Minute); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	p.Wait()
	if b, ok, err := p.Get(ctx, "a"); err != nil || !ok || string(b) != `"x"` {
		t.Fatalf("Get: %q ok=%v err=%v", b, ok, err)
	}

	if err := p.Del(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := p.Get(ctx, "a"); ok {
		t.Fatalf("expected miss after Del")
	}

	_, _ = p.Set(ctx, "b", []byte("1"), 1, time.Minute)
	p.Wait()
	if err := p.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := p.Get(ctx, "b"); ok {
		t.Fatalf("expected miss after Clear")
	}
}
