package redisstore

import "time"

const (
	defaultAtomicRetries = 16
	defaultNearTTL       = 5 * time.Second
	defaultScanCount     = 256
)

// NoExpiration passed as ttl stores the value without expiry, ignoring DefaultTTL.
const NoExpiration time.Duration = -1

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// genRetention bounds how long idle generation counters are kept.
func genRetention(nearTTL time.Duration) time.Duration {
	if r := 10 * nearTTL; r > time.Minute {
		return r
	}
	return time.Minute
}
