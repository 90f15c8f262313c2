package render

// linearMap is a fixed-capacity associative array searched linearly, sized
// for a handful of entries per frame. There is no eviction: Insert on a
// full table fails and the entry is simply not remembered, which costs a
// redecode later but never a correctness violation. Both tile caches reset
// every frame, so stale entries cannot accumulate.
type linearMap[K comparable, V any] struct {
	keys []K
	vals []V
	max  int
}

func newLinearMap[K comparable, V any](capacity int) *linearMap[K, V] {
	return &linearMap[K, V]{
		keys: make([]K, 0, capacity),
		vals: make([]V, 0, capacity),
		max:  capacity,
	}
}

// Get returns the value stored under k.
func (m *linearMap[K, V]) Get(k K) (V, bool) {
	for i, key := range m.keys {
		if key == k {
			return m.vals[i], true
		}
	}
	var zero V
	return zero, false
}

// Insert stores v under k, reporting false when the table is full. An
// existing entry for k is overwritten.
func (m *linearMap[K, V]) Insert(k K, v V) bool {
	for i, key := range m.keys {
		if key == k {
			m.vals[i] = v
			return true
		}
	}
	if len(m.keys) == m.max {
		return false
	}
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
	return true
}

// Clear empties the table, keeping its backing storage.
func (m *linearMap[K, V]) Clear() {
	m.keys = m.keys[:0]
	m.vals = m.vals[:0]
}

// Len returns the number of stored entries.
func (m *linearMap[K, V]) Len() int { return len(m.keys) }
