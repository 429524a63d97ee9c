package redisstore

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The store calls them on hot paths.
type Hooks interface {
	// A write was rejected by the cacheable check (no network call was made).
	NotCacheable(key string)

	// A value read from the server could not be decoded by the codec.
	DecodeFailed(key string, err error)

	// WATCH detected a concurrent write; attempt is 1-based.
	AtomicConflict(key string, attempt int)

	// AtomicGetAndSet gave up after attempts conflicting rounds.
	AtomicExhausted(key string, attempts int)

	// The near cache failed. op ∈ {"get", "set", "del", "clear"}.
	NearError(op, key string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) NotCacheable(string)             {}
func (NopHooks) DecodeFailed(string, error)      {}
func (NopHooks) AtomicConflict(string, int)      {}
func (NopHooks) AtomicExhausted(string, int)     {}
func (NopHooks) NearError(string, string, error) {}
