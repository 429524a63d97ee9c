package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	c "github.com/unkn0wn-root/redisstore/codec"
	"github.com/unkn0wn-root/redisstore/internal/genstore"
	"github.com/unkn0wn-root/redisstore/internal/util"
	"github.com/unkn0wn-root/redisstore/near"
)

type store[V any] struct {
	rdb         Client
	codec       c.Codec[V]
	prefix      string
	defaultTTL  time.Duration
	cacheable   func(any) bool
	log         Logger
	hooks       Hooks
	retries     int
	near        near.Provider
	nearTTL     time.Duration
	gens        *genstore.Local // nil without near
	closeClient bool
}

func newStore[V any](opts Options[V]) (*store[V], error) {
	if opts.Client == nil {
		return nil, ErrNilClient
	}
	if opts.DefaultTTL < 0 {
		return nil, fmt.Errorf("redisstore: negative default ttl %v", opts.DefaultTTL)
	}
	if opts.AtomicRetries < 0 {
		return nil, fmt.Errorf("redisstore: negative atomic retries %d", opts.AtomicRetries)
	}

	s := &store[V]{
		rdb:         opts.Client,
		prefix:      opts.Prefix,
		defaultTTL:  opts.DefaultTTL,
		near:        opts.Near,
		closeClient: opts.CloseClient,
	}

	// defaults
	s.codec = coalesce[c.Codec[V]](opts.Codec, c.JSON[V]{})
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	if opts.Prefix != "" {
		s.log = newWithFields(s.log, Fields{"prefix": opts.Prefix})
	}
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	s.retries = coalesce(opts.AtomicRetries, defaultAtomicRetries)
	s.nearTTL = coalesce(opts.NearTTL, defaultNearTTL)
	if s.near != nil {
		s.gens = genstore.NewLocal(genRetention(s.nearTTL))
	}

	if opts.IsCacheable != nil {
		s.cacheable = opts.IsCacheable
	} else {
		s.cacheable = IsCacheableValue
	}
	return s, nil
}

func (s *store[V]) Client() Client { return s.rdb }

func (s *store[V]) IsCacheableValue(v any) bool { return s.cacheable(v) }

func (s *store[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	k := s.key(key)
	if raw, ok := s.nearGet(ctx, k); ok {
		if v, err := s.codec.Decode(raw); err == nil {
			return v, true, nil
		}
		s.nearDel(ctx, k)
	}

	st := s.snapshot(k)
	raw, err := s.rdb.Get(ctx, k).Bytes()
	if err == goredis.Nil {
		return zero, false, nil // miss
	}
	if err != nil {
		return zero, false, err // transport/server error
	}
	v, err := s.decode(key, raw)
	if err != nil {
		return zero, false, err
	}
	s.nearSet(ctx, k, raw, st)
	return v, true, nil
}

func (s *store[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	if err := s.checkCacheable(key, value); err != nil {
		return err
	}
	raw, err := s.codec.Encode(value)
	if err != nil {
		return err
	}
	k := s.key(key)
	if err := s.rdb.Set(ctx, k, raw, s.expiration(ttl)).Err(); err != nil {
		return err
	}
	s.nearDel(ctx, k)
	return nil
}

func (s *store[V]) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	storage := util.JoinMany(s.prefix, keys)
	if err := s.rdb.Del(ctx, storage...).Err(); err != nil {
		return err
	}
	for _, k := range storage {
		s.nearDel(ctx, k)
	}
	return nil
}

func (s *store[V]) MGet(ctx context.Context, keys ...string) ([]V, []bool, error) {
	values := make([]V, len(keys))
	found := make([]bool, len(keys))
	if len(keys) == 0 {
		return values, found, nil
	}

	// near hits first; the rest go to the server in one MGET
	pending := make([]int, 0, len(keys))
	for i, key := range keys {
		if raw, ok := s.nearGet(ctx, s.key(key)); ok {
			if v, err := s.codec.Decode(raw); err == nil {
				values[i], found[i] = v, true
				continue
			}
		}
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return values, found, nil
	}

	storage := make([]string, len(pending))
	for j, i := range pending {
		storage[j] = s.key(keys[i])
	}
	stamps := s.snapshotMany(storage)
	res, err := s.rdb.MGet(ctx, storage...).Result()
	if err != nil {
		return nil, nil, err
	}
	for j, r := range res {
		raw, ok := replyBytes(r)
		if !ok {
			continue
		}
		i := pending[j]
		v, err := s.decode(keys[i], raw)
		if err != nil {
			return nil, nil, err
		}
		values[i], found[i] = v, true
		s.nearSet(ctx, storage[j], raw, stamps[j])
	}
	return values, found, nil
}

func (s *store[V]) MSet(ctx context.Context, pairs []Pair[V], ttl time.Duration) error {
	if len(pairs) == 0 {
		return nil
	}
	// validate and encode everything before the first write
	encoded := make([][]byte, len(pairs))
	for i, p := range pairs {
		if err := s.checkCacheable(p.Key, p.Value); err != nil {
			return err
		}
		raw, err := s.codec.Encode(p.Value)
		if err != nil {
			return err
		}
		encoded[i] = raw
	}

	exp := s.expiration(ttl)
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, p := range pairs {
			pipe.Set(ctx, s.key(p.Key), encoded[i], exp)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, p := range pairs {
		s.nearDel(ctx, s.key(p.Key))
	}
	return nil
}

func (s *store[V]) TTL(ctx context.Context, key string) (time.Duration, error) {
	return s.rdb.TTL(ctx, s.key(key)).Result()
}

func (s *store[V]) IncrBy(ctx context.Context, key string, amount int64) (int64, error) {
	k := s.key(key)
	n, err := s.rdb.IncrBy(ctx, k, amount).Result()
	if err != nil {
		return 0, err
	}
	s.nearDel(ctx, k)
	return n, nil
}

func (s *store[V]) Reset(ctx context.Context) error {
	defer s.nearClear(ctx)
	if s.prefix == "" {
		return s.rdb.FlushDB(ctx).Err()
	}

	// namespace flush: delete page by page so large keyspaces never load at once
	match := util.Pattern(s.prefix, "*")
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, match, defaultScanCount).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *store[V]) FlushAll(ctx context.Context) error {
	defer s.nearClear(ctx)
	return s.rdb.FlushAll(ctx).Err()
}

// Close releases the near cache, and the client only when the store owns it.
// Safe to call multiple times.
func (s *store[V]) Close(ctx context.Context) error {
	if s.near != nil {
		if err := s.near.Close(ctx); err != nil {
			s.log.Warn("near cache close failed", Fields{"err": err})
		}
	}
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

func (s *store[V]) key(userKey string) string { return util.Join(s.prefix, userKey) }

// expiration maps a caller ttl to the value passed to SET (0 means no expiry there).
func (s *store[V]) expiration(ttl time.Duration) time.Duration {
	switch {
	case ttl > 0:
		return ttl
	case ttl < 0:
		return 0
	default:
		return s.defaultTTL
	}
}

func (s *store[V]) checkCacheable(key string, v any) error {
	if s.cacheable(v) {
		return nil
	}
	s.hooks.NotCacheable(key)
	return &NotCacheableError{Key: key, Value: v}
}

func (s *store[V]) decode(key string, raw []byte) (V, error) {
	v, err := s.codec.Decode(raw)
	if err != nil {
		s.hooks.DecodeFailed(key, err)
		s.log.Warn("value decode failed", Fields{"key": key, "err": err})
		return v, &DecodeError{Key: key, Err: err}
	}
	return v, nil
}

// replyBytes extracts a bulk string from an MGET element; nil means missing.
func replyBytes(v interface{}) ([]byte, bool) {
	switch vv := v.(type) {
	case nil:
		return nil, false
	case string:
		return []byte(vv), true
	case []byte:
		return vv, true
	default:
		return []byte(fmt.Sprint(vv)), true
	}
}

func (s *store[V]) snapshot(k string) genstore.Stamp {
	if s.gens == nil {
		return genstore.Stamp{}
	}
	return s.gens.Snapshot(k)
}

func (s *store[V]) snapshotMany(ks []string) []genstore.Stamp {
	if s.gens == nil {
		return make([]genstore.Stamp, len(ks))
	}
	return s.gens.SnapshotMany(ks)
}

func (s *store[V]) nearGet(ctx context.Context, k string) ([]byte, bool) {
	if s.near == nil {
		return nil, false
	}
	raw, ok, err := s.near.Get(ctx, k)
	if err != nil {
		s.hooks.NearError("get", k, err)
		return nil, false
	}
	return raw, ok
}

// nearSet fills the near cache with a value read under st. A write that bumped
// the key since st wins: the fill is skipped, or undone when the bump lands
// between the check and the Set.
func (s *store[V]) nearSet(ctx context.Context, k string, raw []byte, st genstore.Stamp) {
	if s.near == nil || !s.gens.Valid(k, st) {
		return
	}
	ok, err := s.near.Set(ctx, k, raw, int64(len(raw)), s.nearTTL)
	if err != nil {
		s.hooks.NearError("set", k, err)
		return
	}
	if !ok {
		s.log.Debug("near cache rejected entry", Fields{"key": k})
		return
	}
	if !s.gens.Valid(k, st) {
		s.dropNear(ctx, k)
	}
}

// nearDel invalidates k after a write. The bump must precede the delete.
func (s *store[V]) nearDel(ctx context.Context, k string) {
	if s.near == nil {
		return
	}
	s.gens.Bump(k)
	s.dropNear(ctx, k)
}

func (s *store[V]) dropNear(ctx context.Context, k string) {
	if err := s.near.Del(ctx, k); err != nil {
		s.hooks.NearError("del", k, err)
		s.log.Error("near cache delete failed", Fields{"key": k, "err": err})
	}
}

func (s *store[V]) nearClear(ctx context.Context) {
	if s.near == nil {
		return
	}
	s.gens.BumpAll()
	if err := s.near.Clear(ctx); err != nil {
		s.hooks.NearError("clear", "", err)
		s.log.Error("near cache clear failed", Fields{"err": err})
	}
}
