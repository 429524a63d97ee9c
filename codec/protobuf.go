package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// Protobuf stores proto messages in their deterministic binary wire form.
// A nil message is refused on Encode: it would marshal to zero bytes and read
// back as an empty, non-nil message.
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *mypb.User { return &mypb.User{} }

	// MaxSize bounds both encoded and decoded payloads; <= 0 disables it.
	MaxSize int
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	if any(v) == nil || !v.ProtoReflect().IsValid() {
		return nil, ErrNilMessage
	}
	if c.MaxSize > 0 {
		if n := proto.Size(v); n > c.MaxSize {
			return nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, n, c.MaxSize)
		}
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	if c.MaxSize > 0 && len(b) > c.MaxSize {
		var zero T
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), c.MaxSize)
	}
	m := c.new()
	if err := proto.Unmarshal(b, m); err != nil {
		return m, fmt.Errorf("protobuf decode: %w", err)
	}
	return m, nil
}
