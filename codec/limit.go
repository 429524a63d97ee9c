package codec

import "fmt"

// LimitCodec wraps another codec and bounds payload sizes in both directions.
// MaxDecode guards reads of oversized/foreign values from a shared Redis;
// MaxEncode refuses writes that would store more than that many bytes.
// A limit <= 0 disables that side.
type LimitCodec[V any] struct {
	Inner     Codec[V]
	MaxDecode int // bytes
	MaxEncode int // bytes
}

func (c LimitCodec[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.MaxEncode > 0 && len(b) > c.MaxEncode {
		return nil, fmt.Errorf("%w to store: %d > %d", ErrTooLarge, len(b), c.MaxEncode)
	}
	return b, nil
}

func (c LimitCodec[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
