package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

var ErrNoMessageCtor = errors.New("codec: protobuf codec built without a message constructor")

// Protobuf stores a session value as a protobuf message. Build it with
// NewProtobuf; Decode needs a fresh message of the concrete type to fill.
//
// Marshaling is deterministic, so rewriting an equal message leaves the stored
// bytes unchanged. An empty stored value decodes to an empty message.
type Protobuf[T proto.Message] struct {
	newMsg func() T
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{newMsg: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	if c.newMsg == nil {
		var zero T
		return zero, ErrNoMessageCtor
	}
	m := c.newMsg()
	err := proto.Unmarshal(b, m)
	return m, err
}
