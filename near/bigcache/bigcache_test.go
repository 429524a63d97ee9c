package bigcache

import (
	"context"
	"testing"
	"time"
)

func TestRequiresLifeWindow(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without LifeWindow")
	}
}

func TestSetGetDelClear(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{LifeWindow: time.Minute, MaxEntriesInWindow: 128, MaxEntrySize: 64})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(ctx) })

	if _, ok, err := p.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("miss expected, ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "k", []byte("v"), 1, 0); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	if b, ok, err := p.Get(ctx, "k"); err != nil || !ok || string(b) != "v" {
		t.Fatalf("Get: %q ok=%v err=%v", b, ok, err)
	}

	if err := p.Del(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del of missing key should be nil, got %v", err)
	}

	_, _ = p.Set(ctx, "k2", []byte("v2"), 1, 0)
	if err := p.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := p.Get(ctx, "k2"); ok {
		t.Fatalf("expected miss after Clear")
	}
}
