package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type counter struct {
	A int `json:"a"`
}

func incA(cur counter, _ bool) (counter, error) {
	cur.A++
	return cur, nil
}

func TestAtomicGetAndSetIncrements(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	s := newTestStore[counter](t, client, nil)

	if err := s.Set(ctx, "test", counter{A: 1}, 0); err != nil {
		t.Fatal(err)
	}
	res, err := s.AtomicGetAndSet(ctx, "test", incA)
	if err != nil {
		t.Fatalf("AtomicGetAndSet: %v", err)
	}

	if len(res) != 2 || res[0] != "OK" || res.Status() != "OK" {
		t.Fatalf("status element: %#v", res)
	}
	var got map[string]int
	if err := json.Unmarshal([]byte(res[1].(string)), &got); err != nil {
		t.Fatalf("reply value %q: %v", res.Value(), err)
	}
	if got["a"] != 2 {
		t.Fatalf("reply value %v want a=2", got)
	}
	if v, ok, _ := s.Get(ctx, "test"); !ok || v.A != 2 {
		t.Fatalf("stored value %+v ok=%v", v, ok)
	}
}

func TestAtomicGetAndSetMissingKey(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	s := newTestStore[counter](t, client, func(o *Options[counter]) { o.DefaultTTL = time.Hour })

	var sawFound bool
	res, err := s.AtomicGetAndSet(ctx, "fresh", func(cur counter, found bool) (counter, error) {
		sawFound = found
		cur.A = 10
		return cur, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if sawFound {
		t.Fatalf("found must be false for a missing key")
	}
	if res.Value() != `{"a":10}` {
		t.Fatalf("reply value %q", res.Value())
	}
	if ttl, _ := s.TTL(ctx, "fresh"); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("fresh key should get DefaultTTL, got %v", ttl)
	}
}

func TestAtomicGetAndSetKeepsTTL(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	s := newTestStore[counter](t, client, nil)

	_ = s.Set(ctx, "c", counter{}, 30*time.Second)
	if _, err := s.AtomicGetAndSet(ctx, "c", incA); err != nil {
		t.Fatal(err)
	}
	if ttl, _ := s.TTL(ctx, "c"); ttl <= 0 || ttl > 30*time.Second {
		t.Fatalf("existing TTL should be kept, got %v", ttl)
	}
}

func TestAtomicGetAndSetFnErrorAborts(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	s := newTestStore[counter](t, client, nil)

	_ = s.Set(ctx, "c", counter{A: 5}, 0)
	boom := errors.New("boom")
	_, err := s.AtomicGetAndSet(ctx, "c", func(counter, bool) (counter, error) {
		return counter{A: 99}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want fn error, got %v", err)
	}
	if v, _, _ := s.Get(ctx, "c"); v.A != 5 {
		t.Fatalf("value changed after aborted update: %+v", v)
	}
}

func TestAtomicGetAndSetRejectsNonCacheableResult(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	s := newTestStore[*counter](t, client, nil)

	_ = s.Set(ctx, "c", &counter{A: 1}, 0)
	_, err := s.AtomicGetAndSet(ctx, "c", func(*counter, bool) (*counter, error) { return nil, nil })
	if !errors.Is(err, ErrNotCacheable) {
		t.Fatalf("want ErrNotCacheable, got %v", err)
	}
	if v, _, _ := s.Get(ctx, "c"); v == nil || v.A != 1 {
		t.Fatalf("value changed: %+v", v)
	}
}

func TestAtomicGetAndSetConcurrentUpdaters(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	s := newTestStore[counter](t, client, func(o *Options[counter]) { o.AtomicRetries = 1000 })
	noise := newTestStore[string](t, client, nil)

	_ = s.Set(ctx, "test", counter{}, 0)

	const workers, rounds = 8, 10
	var wg sync.WaitGroup
	errs := make(chan error, workers*rounds*2)
	for w := 0; w < workers; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				res, err := s.AtomicGetAndSet(ctx, "test", incA)
				if err != nil {
					errs <- err
					continue
				}
				if res.Status() != "OK" {
					errs <- fmt.Errorf("status %v", res[0])
				}
			}
		}()
		// writers to unrelated keys
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if err := noise.Set(ctx, fmt.Sprintf("other:%d:%d", w, i), "x", 0); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent update: %v", err)
	}

	v, ok, err := s.Get(ctx, "test")
	if err != nil || !ok || v.A != workers*rounds {
		t.Fatalf("counter=%d want %d (ok=%v err=%v)", v.A, workers*rounds, ok, err)
	}
}

func TestAtomicGetAndSetGivesUpUnderConstantConflict(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	hooks := &recHooks{}
	s := newTestStore[counter](t, client, func(o *Options[counter]) {
		o.AtomicRetries = 3
		o.Hooks = hooks
	})

	// a second connection writes the watched key inside every round
	other := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = other.Close() })

	_ = s.Set(ctx, "hot", counter{}, 0)
	calls := 0
	_, err := s.AtomicGetAndSet(ctx, "hot", func(cur counter, _ bool) (counter, error) {
		calls++
		if err := other.Set(ctx, "hot", `{"a":100}`, 0).Err(); err != nil {
			return cur, err
		}
		cur.A++
		return cur, nil
	})
	if !errors.Is(err, ErrAtomicConflict) {
		t.Fatalf("want ErrAtomicConflict, got %v", err)
	}
	if calls != 3 || hooks.conflicts != 3 || hooks.exhausted != 1 {
		t.Fatalf("calls=%d conflicts=%d exhausted=%d", calls, hooks.conflicts, hooks.exhausted)
	}
	if v, _, _ := s.Get(ctx, "hot"); v.A != 100 {
		t.Fatalf("only the foreign write should land, got %+v", v)
	}
}
