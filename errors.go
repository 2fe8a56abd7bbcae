package synccache

import "fmt"

// Operations reported in OpError and to Hooks.
const (
	OpRead   = "read"
	OpWrite  = "write"
	OpRemove = "remove"
	OpEncode = "encode"
	OpDecode = "decode"
)

// OpError is what an entry hands to its Logger and Hooks when it masks a
// failure behind a fallback. It is never returned from Read or Write.
type OpError struct {
	Op  string
	Key string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("synccache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
