package codec

// Funcs builds a Codec from a serializer/deserializer pair.
// A nil function falls back to JSON for that direction.
type Funcs[V any] struct {
	EncodeFunc func(V) (string, error)
	DecodeFunc func(string) (V, error)
}

func (f Funcs[V]) Encode(v V) ([]byte, error) {
	if f.EncodeFunc == nil {
		return JSON[V]{}.Encode(v)
	}
	s, err := f.EncodeFunc(v)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (f Funcs[V]) Decode(b []byte) (V, error) {
	if f.DecodeFunc == nil {
		return JSON[V]{}.Decode(b)
	}
	return f.DecodeFunc(string(b))
}
