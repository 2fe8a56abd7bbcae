package codec

import "encoding/json"

// Set is an insertion-ordered set. It is stored as a JSON array of its
// elements and rebuilt from one, dropping duplicates.
//
// Like a map, a Set refers to shared state: copies made after the first Add
// see each other's changes. Use Clone for an independent set. The zero value
// is an empty set ready to use.
type Set[E comparable] struct {
	s *setState[E]
}

type setState[E comparable] struct {
	items []E
	index map[E]int
}

func NewSet[E comparable](elems ...E) Set[E] {
	var s Set[E]
	for _, e := range elems {
		s.Add(e)
	}
	return s
}

// Add reports whether e was not already present.
func (s *Set[E]) Add(e E) bool {
	if s.s == nil {
		s.s = &setState[E]{index: make(map[E]int)}
	}
	st := s.s
	if _, ok := st.index[e]; ok {
		return false
	}
	st.index[e] = len(st.items)
	st.items = append(st.items, e)
	return true
}

// Delete reports whether e was present.
func (s *Set[E]) Delete(e E) bool {
	if s.s == nil {
		return false
	}
	st := s.s
	i, ok := st.index[e]
	if !ok {
		return false
	}
	delete(st.index, e)
	st.items = append(st.items[:i:i], st.items[i+1:]...)
	for j := i; j < len(st.items); j++ {
		st.index[st.items[j]] = j
	}
	return true
}

func (s Set[E]) Has(e E) bool {
	if s.s == nil {
		return false
	}
	_, ok := s.s.index[e]
	return ok
}

func (s Set[E]) Len() int {
	if s.s == nil {
		return 0
	}
	return len(s.s.items)
}

// Values returns the elements in insertion order.
func (s Set[E]) Values() []E {
	if s.s == nil {
		return nil
	}
	return append([]E(nil), s.s.items...)
}

// Clone returns a set with the same elements that shares nothing with s.
func (s Set[E]) Clone() Set[E] {
	return NewSet(s.Values()...)
}

func (s Set[E]) MarshalJSON() ([]byte, error) {
	if s.Len() == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(s.s.items)
}

func (s *Set[E]) UnmarshalJSON(b []byte) error {
	var elems []E
	if err := json.Unmarshal(b, &elems); err != nil {
		return err
	}
	*s = NewSet(elems...)
	return nil
}
