package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/redisstore"
)

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Debug("atomic update conflicted; retrying", redisstore.Fields{"key": "k", "attempt": 2})
	l.Error("near cache delete failed", redisstore.Fields{"err": errors.New("boom")})

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].LoggerName != "redisstore" {
		t.Fatalf("logger name %q", entries[0].LoggerName)
	}
	ctx := entries[0].ContextMap()
	if ctx["key"] != "k" || ctx["attempt"] != int64(2) {
		t.Fatalf("fields %v", ctx)
	}
	if entries[1].Level != zapcore.ErrorLevel || entries[1].ContextMap()["err"] != "boom" {
		t.Fatalf("error entry %+v", entries[1])
	}
}
