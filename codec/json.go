package codec

import "encoding/json"

// JSON is the default codec. Maps are stored as objects of their entries,
// Set values as arrays of their elements, and everything else with
// encoding/json semantics.
type JSON[V any] struct{}

var _ Codec[map[string]int] = JSON[map[string]int]{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
