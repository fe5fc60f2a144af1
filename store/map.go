package store

// Map is a Store backed by a Go map. Values are boxed so that pointers
// returned by BorrowMut survive map growth.
type Map[K comparable, V any] struct {
	m map[K]*V
}

var _ Store[string, int] = (*Map[string, int])(nil)

// NewMap returns an empty Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{m: make(map[K]*V)}
}

func (s *Map[K, V]) Add(key K, val V) error {
	if _, ok := s.m[key]; ok {
		return duplicateKey(key)
	}
	if s.m == nil {
		// re-used after DestroyEmpty
		s.m = make(map[K]*V)
	}
	box := new(V)
	*box = val
	s.m[key] = box
	return nil
}

func (s *Map[K, V]) Remove(key K) (val V, err error) {
	box, ok := s.m[key]
	if !ok {
		return val, keyNotFound(key)
	}
	delete(s.m, key)
	val = *box
	return val, nil
}

func (s *Map[K, V]) Borrow(key K) (val V, err error) {
	box, ok := s.m[key]
	if !ok {
		return val, keyNotFound(key)
	}
	return *box, nil
}

func (s *Map[K, V]) BorrowMut(key K) (*V, error) {
	box, ok := s.m[key]
	if !ok {
		return nil, keyNotFound(key)
	}
	return box, nil
}

func (s *Map[K, V]) Contains(key K) bool {
	_, ok := s.m[key]
	return ok
}

func (s *Map[K, V]) Len() uint64 {
	return uint64(len(s.m))
}

func (s *Map[K, V]) DestroyEmpty() error {
	if n := s.Len(); n != 0 {
		return notEmpty(n)
	}
	s.m = nil
	return nil
}

// Range calls handler for every entry in unspecified order until the handler
// returns false. It reports whether all entries were visited.
func (s *Map[K, V]) Range(handler func(K, V) bool) bool {
	for k, box := range s.m {
		if !handler(k, *box) {
			return false
		}
	}
	return true
}
