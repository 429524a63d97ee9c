package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/redisstore"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	ConflictEvery     uint64
	NotCacheableEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	conflictCtr     atomic.Uint64
	notCacheableCtr atomic.Uint64
}

var _ redisstore.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) NotCacheable(key string) {
	if h.l == nil || !sample(h.opts.NotCacheableEvery, &h.notCacheableCtr) {
		return
	}
	h.l.Info("redisstore.not_cacheable",
		"key", h.redact(key))
}

func (h *Hooks) DecodeFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("redisstore.decode_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) AtomicConflict(key string, attempt int) {
	if h.l == nil || !sample(h.opts.ConflictEvery, &h.conflictCtr) {
		return
	}
	h.l.Debug("redisstore.atomic_conflict",
		"key", h.redact(key),
		"attempt", attempt)
}

func (h *Hooks) AtomicExhausted(key string, attempts int) {
	if h.l == nil {
		return
	}
	h.l.Error("redisstore.atomic_exhausted",
		"key", h.redact(key),
		"attempts", attempts)
}

func (h *Hooks) NearError(op, key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("redisstore.near_error",
		"op", op,
		"key", h.redact(key),
		"err", err)
}
