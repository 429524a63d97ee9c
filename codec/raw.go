package codec

// Bytes is an identity codec for []byte values: what you Set is what Redis holds.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String stores Go strings verbatim (no JSON quoting), so values written by
// other Redis clients with plain SET read back unchanged.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
