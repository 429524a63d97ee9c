package slog

import (
	"bytes"
	stdslog "log/slog"
	"strings"
	"testing"

	"github.com/unkn0wn-root/redisstore"
)

func TestSlogLoggerStableAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := stdslog.NewTextHandler(&buf, &stdslog.HandlerOptions{
		Level: stdslog.LevelDebug,
		ReplaceAttr: func(_ []string, a stdslog.Attr) stdslog.Attr {
			if a.Key == stdslog.TimeKey {
				return stdslog.Attr{}
			}
			return a
		},
	})
	l := Logger{L: stdslog.New(h)}

	l.Debug("atomic update conflicted; retrying", redisstore.Fields{"key": "k", "attempt": 1})

	want := `level=DEBUG msg="atomic update conflicted; retrying" attempt=1 key=k`
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

func TestSlogLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: stdslog.New(stdslog.NewTextHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelWarn}))}
	l.Info("dropped", redisstore.Fields{"k": "v"})
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %s", buf.String())
	}
}
