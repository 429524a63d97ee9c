// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    ConflictEvery: 10, // sample logs: ~every 10th WATCH conflict
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	store, _ := redisstore.New[User](redisstore.Options[User]{
//	    Client: rdb,
//	    Hooks:  hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/redisstore"
)

type Hooks struct {
	inner   redisstore.Hooks
	q       chan func()
	wg      sync.WaitGroup
	mu      sync.RWMutex // held for reading around sends, for writing around close
	closed  bool
	dropped atomic.Uint64
}

var _ redisstore.Hooks = (*Hooks)(nil)

func New(inner redisstore.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.q)
	h.mu.Unlock()
	h.wg.Wait()
}

// Dropped counts events discarded because the queue was full or closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) NotCacheable(k string) { h.try(func() { h.inner.NotCacheable(k) }) }
func (h *Hooks) DecodeFailed(k string, err error) {
	h.try(func() { h.inner.DecodeFailed(k, err) })
}
func (h *Hooks) AtomicConflict(k string, attempt int) {
	h.try(func() { h.inner.AtomicConflict(k, attempt) })
}
func (h *Hooks) AtomicExhausted(k string, attempts int) {
	h.try(func() { h.inner.AtomicExhausted(k, attempts) })
}
func (h *Hooks) NearError(op, k string, err error) {
	h.try(func() { h.inner.NearError(op, k, err) })
}
