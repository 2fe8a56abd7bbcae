// Package wire frames store change events published between contexts.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

// Kind is the mutation carried by an Event.
type Kind byte

const (
	KindSet   Kind = 1
	KindDel   Kind = 2
	KindClear Kind = 3
)

var (
	ErrCorrupt = errors.New("synccache: corrupt change event")
	magic4     = [...]byte{'S', 'Y', 'N', 'C'}
)

// Event is one change made by the context identified by Origin.
// Key is empty for KindClear.
type Event struct {
	Kind   Kind
	Origin string
	Key    string
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// magic(4) | ver(1) | kind(1) | originLen(u16 be) | origin | keyLen(u16 be) | key
func Encode(ev Event) ([]byte, error) {
	if ev.Kind < KindSet || ev.Kind > KindClear {
		return nil, ErrCorrupt
	}
	if len(ev.Origin) == 0 || len(ev.Origin) > 0xFFFF || len(ev.Key) > 0xFFFF {
		return nil, ErrCorrupt
	}
	if (ev.Kind == KindClear) != (ev.Key == "") {
		return nil, ErrCorrupt
	}

	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 2 + len(ev.Origin) + 2 + len(ev.Key))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(byte(ev.Kind))

	var u2 [2]byte
	binary.BigEndian.PutUint16(u2[:], uint16(len(ev.Origin)))
	buf.Write(u2[:])
	buf.WriteString(ev.Origin)

	binary.BigEndian.PutUint16(u2[:], uint16(len(ev.Key)))
	buf.Write(u2[:])
	buf.WriteString(ev.Key)

	return buf.Bytes(), nil
}

func Decode(b []byte) (Event, error) {
	const hdr = 4 + 1 + 1 + 2
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return Event{}, ErrCorrupt
	}
	kind := Kind(b[5])
	if kind < KindSet || kind > KindClear {
		return Event{}, ErrCorrupt
	}
	off := 6

	olen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if olen == 0 || olen > len(b)-off {
		return Event{}, ErrCorrupt
	}
	origin := string(b[off : off+olen])
	off += olen

	if off+2 > len(b) {
		return Event{}, ErrCorrupt
	}
	klen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if klen != len(b)-off { // no trailing bytes
		return Event{}, ErrCorrupt
	}
	key := string(b[off:])

	if (kind == KindClear) != (key == "") {
		return Event{}, ErrCorrupt
	}
	return Event{Kind: kind, Origin: origin, Key: key}, nil
}
