// Package codec turns values into the bytes stored under a Redis key and back.
package codec

import "errors"

var (
	// ErrTooLarge is returned when a payload exceeds a configured size limit.
	ErrTooLarge = errors.New("codec: payload too large")
	// ErrNilMessage is returned when asked to encode an absent message.
	ErrNilMessage = errors.New("codec: nil message")
)

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
