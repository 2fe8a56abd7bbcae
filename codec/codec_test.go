package codec

import (
	"bytes"
	"errors"
	"strconv"
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type prefs struct {
	Theme string `json:"theme" msgpack:"theme" cbor:"theme"`
	Size  int    `json:"size" msgpack:"size" cbor:"size"`
}

func TestJSONMapIsObject(t *testing.T) {
	b, err := JSON[map[string]int]{}.Encode(map[string]int{"a": 1, "b": 2})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"a":1,"b":2}` {
		t.Fatalf("got %s", b)
	}
	m, err := JSON[map[string]int]{}.Decode(b)
	if err != nil || m["a"] != 1 || m["b"] != 2 {
		t.Fatalf("decode: %v %v", m, err)
	}
}

func TestJSONSetIsArray(t *testing.T) {
	s := NewSet("b", "a", "b", "c")
	b, err := JSON[Set[string]]{}.Encode(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `["b","a","c"]` {
		t.Fatalf("got %s", b)
	}

	got, err := JSON[Set[string]]{}.Decode([]byte(`["x","y","x"]`))
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 2 || !got.Has("x") || !got.Has("y") {
		t.Fatalf("decoded set: %v", got.Values())
	}

	var empty Set[int]
	b, _ = JSON[Set[int]]{}.Encode(empty)
	if string(b) != `[]` {
		t.Fatalf("empty set encoded as %s", b)
	}
}

func TestSetDeleteKeepsOrder(t *testing.T) {
	s := NewSet(1, 2, 3, 4)
	if !s.Delete(2) || s.Delete(2) {
		t.Fatalf("delete semantics")
	}
	if v := s.Values(); len(v) != 3 || v[0] != 1 || v[1] != 3 || v[2] != 4 {
		t.Fatalf("values after delete: %v", v)
	}
	if !s.Has(4) || s.Has(2) {
		t.Fatalf("index not rebuilt")
	}
	if !s.Add(2) || s.Values()[3] != 2 {
		t.Fatalf("re-add should append")
	}
}

func TestSetCopiesShareState(t *testing.T) {
	s := NewSet("a")
	cp := s
	cp.Add("b")
	if s.Len() != 2 || !s.Has("b") {
		t.Fatalf("copy diverged: %v", s.Values())
	}
	if !s.Delete("b") || cp.Has("b") || cp.Len() != 1 {
		t.Fatalf("delete through original: %v / %v", s.Values(), cp.Values())
	}

	cl := s.Clone()
	cl.Add("c")
	if s.Has("c") || s.Len() != 1 || cl.Len() != 2 {
		t.Fatalf("clone shares state: %v / %v", s.Values(), cl.Values())
	}

	var zero Set[string]
	if zero.Delete("x") || zero.Has("x") || zero.Values() != nil {
		t.Fatalf("zero set not empty")
	}
}

func TestJSONDecodeError(t *testing.T) {
	if _, err := (JSON[prefs]{}).Decode([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFuncs(t *testing.T) {
	c := Funcs[int]{
		EncodeFunc: func(v int) (string, error) { return "n=" + strconv.Itoa(v), nil },
		DecodeFunc: func(s string) (int, error) {
			if len(s) < 2 || s[:2] != "n=" {
				return 0, errors.New("bad prefix")
			}
			return strconv.Atoi(s[2:])
		},
	}
	b, err := c.Encode(7)
	if err != nil || string(b) != "n=7" {
		t.Fatalf("encode: %s %v", b, err)
	}
	v, err := c.Decode(b)
	if err != nil || v != 7 {
		t.Fatalf("decode: %d %v", v, err)
	}
	if _, err := c.Decode([]byte("7")); err == nil {
		t.Fatalf("expected error")
	}

	// nil funcs fall back to JSON
	var d Funcs[[]int]
	b, err = d.Encode([]int{1, 2})
	if err != nil || string(b) != "[1,2]" {
		t.Fatalf("fallback encode: %s %v", b, err)
	}
}

func TestLimitCodec(t *testing.T) {
	c := LimitCodec[string]{Inner: String{}, MaxDecode: 3}
	if _, err := c.Decode([]byte("abcd")); err == nil {
		t.Fatalf("expected size error")
	}
	if v, err := c.Decode([]byte("abc")); err != nil || v != "abc" {
		t.Fatalf("got %q %v", v, err)
	}
	b, _ := c.Encode("abcdef")
	if string(b) != "abcdef" {
		t.Fatalf("encode must not be limited")
	}
}

func TestBinaryCodecs(t *testing.T) {
	in := prefs{Theme: "dark", Size: 14}
	cases := map[string]Codec[prefs]{
		"msgpack":  Msgpack[prefs]{},
		"cbor":     MustCBOR[prefs](false),
		"cbor-det": MustCBOR[prefs](true),
	}
	for name, c := range cases {
		b, err := c.Encode(in)
		if err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		out, err := c.Decode(b)
		if err != nil || out != in {
			t.Fatalf("%s decode: %+v %v", name, out, err)
		}
	}
}

func TestCBORDeterministicIsStable(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	m := map[string]int{"z": 1, "a": 2, "m": 3}
	first, _ := c.Encode(m)
	for i := 0; i < 10; i++ {
		b, _ := c.Encode(m)
		if !bytes.Equal(b, first) {
			t.Fatalf("non-deterministic output")
		}
	}
}

func TestProtobuf(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	b, err := c.Encode(wrapperspb.String("dark"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Decode(b)
	if err != nil || !proto.Equal(got, wrapperspb.String("dark")) {
		t.Fatalf("got %v %v", got, err)
	}
	if _, err := c.Decode([]byte{0xff, 0xff}); err == nil {
		t.Fatalf("expected error on garbage")
	}
}

func TestProtobufEmptyAndMissingCtor(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	got, err := c.Decode(nil)
	if err != nil || got.GetValue() != "" {
		t.Fatalf("empty stored value: %v %v", got, err)
	}
	if _, err := (Protobuf[*wrapperspb.StringValue]{}).Decode([]byte{}); !errors.Is(err, ErrNoMessageCtor) {
		t.Fatalf("want ErrNoMessageCtor, got %v", err)
	}
}

func TestMsgpackUsesJSONFieldNames(t *testing.T) {
	type jsonOnly struct {
		Theme string `json:"theme"`
	}
	b, err := Msgpack[jsonOnly]{}.Encode(jsonOnly{Theme: "dark"})
	if err != nil {
		t.Fatal(err)
	}
	m, err := Msgpack[map[string]any]{}.Decode(b)
	if err != nil || m["theme"] != "dark" {
		t.Fatalf("field names: %v %v", m, err)
	}
}

func TestString(t *testing.T) {
	b, _ := String{}.Encode("plain")
	if string(b) != "plain" {
		t.Fatalf("got %s", b)
	}
	raw, _ := Bytes{}.Decode([]byte{1, 2})
	if len(raw) != 2 {
		t.Fatalf("bytes codec changed payload")
	}
}
