// Package redisstore backs a generic cache Store with a Redis-compatible server.
//
// The store is a thin adapter: values go through a pluggable Codec[V] (JSON by
// default), operations are forwarded to an injected go-redis client, and
// Redis-specific replies (SCAN cursors, EXEC replies) are returned in shapes the
// Store interface expects. Absent values (nil, typed nil) are rejected before
// any network call.
//
// Components:
//   - Client: the go-redis connection (pooling, timeouts, retries live there).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - near.Provider: optional in-process read cache in front of Redis.
//
// Keys:
//
//	<key>           - no Prefix
//	<prefix>:<key>  - with Prefix; Scan/Keys strip the prefix again
//
// Read-modify-write:
//
//	reply, err := store.AtomicGetAndSet(ctx, "counter", func(cur Counter, found bool) (Counter, error) {
//	    cur.N++
//	    return cur, nil
//	})
//	// reply.Status() == "OK", reply.Value() is the stored encoding
package redisstore
