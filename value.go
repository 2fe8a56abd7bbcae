package synccache

// Undefined is the raw text stored for an explicitly unset value.
// Reading it yields the zero value without invoking the codec.
const Undefined = "undefined"

// Initial is the fallback value of an entry: either a literal or a producer.
// It is evaluated afresh on every fallback and never cached.
type Initial[V any] struct {
	lit  V
	prod func() V
}

// Literal returns an Initial that always evaluates to v.
func Literal[V any](v V) Initial[V] { return Initial[V]{lit: v} }

// Producer returns an Initial that calls fn on every evaluation.
func Producer[V any](fn func() V) Initial[V] { return Initial[V]{prod: fn} }

func (i Initial[V]) Eval() V {
	if i.prod != nil {
		return i.prod()
	}
	return i.lit
}

type updateKind uint8

const (
	updateValue updateKind = iota
	updateFunc
	updateUnset
)

// Update is the argument of Entry.Write: a new value, a function of the
// currently stored value, or an explicit unset.
type Update[V any] struct {
	kind updateKind
	v    V
	fn   func(V) V
}

func Value[V any](v V) Update[V] { return Update[V]{kind: updateValue, v: v} }

// Func resolves against a fresh read of the store, not the cached value.
func Func[V any](fn func(V) V) Update[V] { return Update[V]{kind: updateFunc, fn: fn} }

// Unset stores Undefined; the entry then holds the zero value.
func Unset[V any]() Update[V] { return Update[V]{kind: updateUnset} }

func (u Update[V]) resolve(current func() V) V {
	switch u.kind {
	case updateFunc:
		return u.fn(current())
	case updateUnset:
		var zero V
		return zero
	default:
		return u.v
	}
}
