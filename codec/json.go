package codec

import (
	"bytes"
	"encoding/json"
)

// JSON is the default codec. Integers are stored as decimal text, so keys
// written through it can be bumped with INCRBY and read back.
//
// With UseNumber, numbers decoded into interface values become json.Number
// instead of float64 (exact for large integers).
type JSON[V any] struct {
	UseNumber bool
}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }

func (c JSON[V]) Decode(b []byte) (V, error) {
	var v V
	if !c.UseNumber {
		err := json.Unmarshal(b, &v)
		return v, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	err := dec.Decode(&v)
	return v, err
}
