// Package near defines the optional in-process read cache that sits in front of Redis.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte previously passed to Set for a key. The store only ever puts
// encoded values it just read from Redis, and drops keys on every write it makes.
// Writes made by other processes become visible once the near entry expires.
package near

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. May ignore cost or ttl if unsupported.
	// Returns ok=false when the cache refused the entry under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Clear drops every entry (store Reset/FlushAll).
	Clear(ctx context.Context) error

	// Close releases resources.
	Close(ctx context.Context) error
}
