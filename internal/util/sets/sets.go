package sets

// Ordered is a generic set that remembers insertion order.
// Usage: s := sets.NewOrdered[string]("a","b"); s.Add("a"); s.Values() // [a b]
type Ordered[T comparable] struct {
	index  map[T]struct{}
	values []T
}

// NewOrdered creates an ordered set pre-populated with the provided values.
func NewOrdered[T comparable](vals ...T) *Ordered[T] {
	s := &Ordered[T]{index: make(map[T]struct{}, len(vals))}
	for _, v := range vals {
		s.Add(v)
	}
	return s
}

// Add inserts v and reports whether it was new.
func (s *Ordered[T]) Add(v T) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.values = append(s.values, v)
	return true
}

// Has returns true if v is present.
func (s *Ordered[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of distinct values.
func (s *Ordered[T]) Len() int { return len(s.values) }

// Values returns a copy of the values in first-insertion order.
func (s *Ordered[T]) Values() []T {
	out := make([]T, len(s.values))
	copy(out, s.values)
	return out
}
