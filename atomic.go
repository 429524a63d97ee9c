package redisstore

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// AtomicGetAndSet is an optimistic read-modify-write on one key.
//
// The value is read on a WATCHed connection, fn runs on exactly that value, and
// SET + GET are queued in MULTI/EXEC. If any other client writes the key in
// between, EXEC aborts and the whole round (read, fn, write) is repeated, up to
// Options.AtomicRetries times. An existing TTL is kept; a fresh key gets DefaultTTL.
func (s *store[V]) AtomicGetAndSet(ctx context.Context, key string, fn UpdateFunc[V]) (RawReply, error) {
	k := s.key(key)

	var reply RawReply
	txf := func(tx *goredis.Tx) error {
		var cur V
		found := true
		raw, err := tx.Get(ctx, k).Bytes()
		switch {
		case err == goredis.Nil:
			found = false
		case err != nil:
			return err
		default:
			if cur, err = s.decode(key, raw); err != nil {
				return err
			}
		}

		next, err := fn(cur, found)
		if err != nil {
			return err
		}
		if err := s.checkCacheable(key, next); err != nil {
			return err
		}
		enc, err := s.codec.Encode(next)
		if err != nil {
			return err
		}

		var exp time.Duration = goredis.KeepTTL
		if !found {
			exp = s.expiration(0)
		}
		var set *goredis.StatusCmd
		var get *goredis.StringCmd
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			set = pipe.Set(ctx, k, enc, exp)
			get = pipe.Get(ctx, k)
			return nil
		})
		if err != nil {
			return err
		}
		reply = RawReply{set.Val(), get.Val()}
		return nil
	}

	for attempt := 1; attempt <= s.retries; attempt++ {
		err := s.rdb.Watch(ctx, txf, k)
		if err == nil {
			s.nearDel(ctx, k)
			return reply, nil
		}
		if !errors.Is(err, goredis.TxFailedErr) {
			return nil, err
		}
		s.hooks.AtomicConflict(key, attempt)
		s.log.Debug("atomic update conflicted; retrying", Fields{"key": key, "attempt": attempt})
	}

	s.hooks.AtomicExhausted(key, s.retries)
	s.log.Error("atomic update gave up", Fields{"key": key, "attempts": s.retries})
	return nil, ErrAtomicConflict
}
