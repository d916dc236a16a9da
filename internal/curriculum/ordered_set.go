package curriculum

// orderedSet is an insertion-order-preserving set keyed by string.
// The mastery resolver uses it to deduplicate grammar points and
// vocabulary items by identity key while keeping first-introduced
// order, without leaning on any container's iteration guarantees.
type orderedSet[T any] struct {
	seen  map[string]struct{}
	items []T
}

func newOrderedSet[T any]() *orderedSet[T] {
	return &orderedSet[T]{
		seen: make(map[string]struct{}),
	}
}

// add inserts the item under the given key if the key has not been
// seen before. Returns true if the item was inserted.
func (s *orderedSet[T]) add(key string, item T) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, item)
	return true
}

// values returns the inserted items in insertion order. The returned
// slice is owned by the set; callers must not mutate it.
func (s *orderedSet[T]) values() []T {
	return s.items
}
