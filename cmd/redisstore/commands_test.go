package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(zap.NewNop())
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLIRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_URL", "redis://"+mr.Addr()+"/0")

	if _, err := run(t, "set", "counter", "1", "--ttl", "1m"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if raw, _ := mr.Get("counter"); raw != "1" {
		t.Fatalf("stored %q", raw)
	}
	if out, err := run(t, "incrby", "counter", "4"); err != nil || strings.TrimSpace(out) != "5" {
		t.Fatalf("incrby: %q err=%v", out, err)
	}
	if out, err := run(t, "get", "counter"); err != nil || strings.TrimSpace(out) != "5" {
		t.Fatalf("get: %q err=%v", out, err)
	}
	if out, err := run(t, "ttl", "counter"); err != nil || !strings.Contains(out, "1m0s") {
		t.Fatalf("ttl: %q err=%v", out, err)
	}

	_, _ = run(t, "set", "greeting", "hello")
	if raw, _ := mr.Get("greeting"); raw != `"hello"` {
		t.Fatalf("plain strings are stored as JSON strings, got %q", raw)
	}

	out, err := run(t, "keys", "*")
	if err != nil || !strings.Contains(out, "counter") || !strings.Contains(out, "greeting") {
		t.Fatalf("keys: %q err=%v", out, err)
	}
	if out, err := run(t, "scan", "greet*", "--count", "10"); err != nil || !strings.Contains(out, `"greeting"`) {
		t.Fatalf("scan: %q err=%v", out, err)
	}

	if _, err := run(t, "del", "greeting"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "get", "greeting"); err == nil {
		t.Fatalf("get after del should fail")
	}

	if _, err := run(t, "reset"); err != nil {
		t.Fatal(err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("reset left %v", mr.Keys())
	}
}

func TestCLIPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_URL", "redis://"+mr.Addr())

	if _, err := run(t, "--prefix", "ops", "set", "k", `{"a":1}`); err != nil {
		t.Fatal(err)
	}
	if raw, _ := mr.Get("ops:k"); raw != `{"a":1}` {
		t.Fatalf("stored %q", raw)
	}
}

func TestCLIConnectError(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://127.0.0.1:1")
	if _, err := run(t, "get", "k"); err == nil {
		t.Fatalf("expected connect error")
	}
}
