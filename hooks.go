package synccache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The entry calls them on every read and write.
type Hooks interface {
	// The store had no session context. op ∈ {"read", "write", "remove"}
	StoreUnavailable(op, key string)

	// The store failed a Get/Set/Del; the entry fell back.
	StoreAccessFailed(op, key string, err error)

	// The codec failed; Encode aborts the write, Decode falls back to the initial value.
	EncodeFailed(key string, err error)
	DecodeFailed(key string, err error)

	// A change notification for the entry's key triggered a re-read.
	// source ∈ {"local", "store"}
	Notified(key, source string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) StoreUnavailable(string, string)         {}
func (NopHooks) StoreAccessFailed(string, string, error) {}
func (NopHooks) EncodeFailed(string, error)              {}
func (NopHooks) DecodeFailed(string, error)              {}
func (NopHooks) Notified(string, string)                 {}
