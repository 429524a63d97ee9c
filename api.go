package redisstore

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	c "github.com/unkn0wn-root/redisstore/codec"
	"github.com/unkn0wn-root/redisstore/near"
)

// Store is the generic cache surface: get/set/delete/reset over string keys.
// V is the caller's value type. Serialization is handled by a pluggable Codec[V].
type Store[V any] interface {
	// Single
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error

	// Multi (values and found flags follow the order of keys)
	MGet(ctx context.Context, keys ...string) (values []V, found []bool, err error)
	MSet(ctx context.Context, pairs []Pair[V], ttl time.Duration) error

	TTL(ctx context.Context, key string) (time.Duration, error)
	IncrBy(ctx context.Context, key string, amount int64) (int64, error)
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Reset flushes the store's namespace (the whole DB when no Prefix is set).
	Reset(ctx context.Context) error
	Close(ctx context.Context) error
}

// RedisStore exposes the Redis-specific operations on top of Store.
type RedisStore[V any] interface {
	Store[V]

	IsCacheableValue(v any) bool
	Client() Client

	// Scan returns one SCAN page. cursor 0 starts a walk; a returned cursor of 0 ends it.
	// count 0 lets the server pick the page size.
	Scan(ctx context.Context, pattern string, cursor uint64, count int64) (ScanReply, error)

	// AtomicGetAndSet runs fn against the value observed under WATCH and writes
	// the result back in MULTI/EXEC. Returns the raw EXEC reply.
	AtomicGetAndSet(ctx context.Context, key string, fn UpdateFunc[V]) (RawReply, error)

	// FlushAll drops every key in every DB of the server.
	FlushAll(ctx context.Context) error
}

// Client is the subset of goredis.UniversalClient used by the store.
// *goredis.Client, *goredis.ClusterClient and *goredis.Ring all satisfy it.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	MGet(ctx context.Context, keys ...string) *goredis.SliceCmd
	TTL(ctx context.Context, key string) *goredis.DurationCmd
	IncrBy(ctx context.Context, key string, value int64) *goredis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *goredis.ScanCmd
	FlushDB(ctx context.Context) *goredis.StatusCmd
	FlushAll(ctx context.Context) *goredis.StatusCmd
	TxPipelined(ctx context.Context, fn func(goredis.Pipeliner) error) ([]goredis.Cmder, error)
	Watch(ctx context.Context, fn func(*goredis.Tx) error, keys ...string) error
	Ping(ctx context.Context) *goredis.StatusCmd
	Close() error
}

var _ Client = (goredis.UniversalClient)(nil)

// UpdateFunc receives the current value (zero V and found=false on a miss)
// and returns the value to store. Returning an error aborts without a write.
type UpdateFunc[V any] func(current V, found bool) (V, error)

// Pair is one key/value for MSet.
type Pair[V any] struct {
	Key   string
	Value V
}

// ScanReply is one page of a SCAN walk.
type ScanReply struct {
	Cursor uint64
	Keys   []string
}

// RawReply is the EXEC reply of AtomicGetAndSet: [SET status, value read back].
type RawReply []any

// Status is the SET status element ("OK" on success).
func (r RawReply) Status() string {
	if len(r) == 0 {
		return ""
	}
	s, _ := r[0].(string)
	return s
}

// Value is the encoded value read back in the same transaction.
func (r RawReply) Value() string {
	if len(r) < 2 {
		return ""
	}
	s, _ := r[1].(string)
	return s
}

// Options tune the store. Only Client is required.
type Options[V any] struct {
	// Required
	Client Client

	Codec         c.Codec[V]     // nil => codec.JSON[V]
	Prefix        string         // key namespace, joined as "<prefix>:<key>"
	DefaultTTL    time.Duration  // used when a write passes ttl 0; 0 => no expiry
	IsCacheable   func(any) bool // nil => IsCacheableValue
	Logger        Logger         // nil => NopLogger
	Hooks         Hooks          // nil => NopHooks
	AtomicRetries int            // WATCH attempts; 0 => 16
	Near          near.Provider  // optional in-process read cache
	NearTTL       time.Duration  // 0 => 5s
	CloseClient   bool           // set true only if the store exclusively owns the client
}

func New[V any](opts Options[V]) (RedisStore[V], error) {
	return newStore[V](opts)
}
