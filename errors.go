package redisstore

import (
	"errors"
	"fmt"
)

var (
	ErrNilClient      = errors.New("redisstore: client is required")
	ErrNotCacheable   = errors.New("redisstore: value is not cacheable")
	ErrAtomicConflict = errors.New("redisstore: atomic update kept conflicting with concurrent writers")
)

// NotCacheableError is returned by writes whose value failed the cacheable check.
// Nothing is sent to the server.
type NotCacheableError struct {
	Key   string
	Value any
}

func (e *NotCacheableError) Error() string {
	return fmt.Sprintf("%q is not a cacheable value", fmt.Sprint(e.Value))
}

func (e *NotCacheableError) Is(target error) bool { return target == ErrNotCacheable }

// DecodeError wraps a codec failure on a value read from the server.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("redisstore: decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
