package hashmap

// Iterator is an opaque forward cursor over a Map's entries. It is a
// small value type; compare iterators with ==. Two iterators are equal
// when they refer to the same position of the same map instance in the
// same generation, so Find(k) == End() is the absence test.
//
// An iterator is invalidated when its entry is removed, and wholesale by
// Clear and by a growth rehash. Dereferencing an invalidated iterator is
// a precondition violation: the map detects the common cases (reclaimed
// slot, stale generation) and panics with a descriptive message, but that
// detection is best-effort diagnostics, not a contract: a reclaimed slot
// that has since been reused for another entry is indistinguishable from
// a live position.
type Iterator[K comparable, V any] struct {
	m    *Map[K, V]
	slot int
	gen  uint32
}

// Begin returns an iterator to the first entry in traversal order, or
// End when the map is empty.
func (m *Map[K, V]) Begin() Iterator[K, V] {
	if m.buckets == nil {
		return m.End()
	}
	return Iterator[K, V]{m: m, slot: m.head, gen: m.gen}
}

// End returns the one-past-last iterator. It is never dereferenceable.
func (m *Map[K, V]) End() Iterator[K, V] {
	return Iterator[K, V]{m: m, slot: noSlot, gen: m.gen}
}

// Find returns an iterator to the entry for key, or End when the key has
// no entry. It never mutates the map and never triggers growth.
func (m *Map[K, V]) Find(key K) Iterator[K, V] {
	if m.size == 0 {
		return m.End()
	}
	s := m.findSlot(m.bucketIdx(&key), key)
	if s == noSlot {
		return m.End()
	}
	return Iterator[K, V]{m: m, slot: s, gen: m.gen}
}

// Ok reports whether the iterator refers to an entry, i.e. it is neither
// the end iterator nor a zero Iterator.
func (it Iterator[K, V]) Ok() bool {
	return it.m != nil && it.slot != noSlot
}

func (it Iterator[K, V]) check() {
	if it.m == nil || it.slot == noSlot {
		panic("hashmap: dereference of end iterator")
	}
	if it.gen != it.m.gen {
		panic("hashmap: iterator invalidated by growth or clear")
	}
	if it.slot >= len(it.m.slots) || it.m.slots[it.slot].prev == tombstone {
		panic("hashmap: iterator refers to a removed entry")
	}
}

// Key returns the entry's key. Keys are immutable once stored.
func (it Iterator[K, V]) Key() K {
	it.check()
	return it.m.slots[it.slot].key
}

// Value returns the entry's value.
func (it Iterator[K, V]) Value() V {
	it.check()
	return it.m.slots[it.slot].value
}

// Ref returns a pointer to the entry's value for in-place mutation. The
// pointer is subject to the same validity window as Map.Ref.
func (it Iterator[K, V]) Ref() *V {
	it.check()
	return &it.m.slots[it.slot].value
}

// Set replaces the entry's value.
func (it Iterator[K, V]) Set(value V) {
	it.check()
	it.m.slots[it.slot].value = value
}

// Entry returns the entry as a pair.
func (it Iterator[K, V]) Entry() Entry[K, V] {
	it.check()
	s := &it.m.slots[it.slot]
	return Entry[K, V]{Key: s.key, Value: s.value}
}

// Next returns an iterator to the following entry in traversal order, or
// End after the last entry.
func (it Iterator[K, V]) Next() Iterator[K, V] {
	it.check()
	return Iterator[K, V]{m: it.m, slot: it.m.slots[it.slot].next, gen: it.gen}
}

// Range calls yield for each entry in traversal order (insertion order
// up to intra-bucket collision placement) until yield returns false.
// The walk is over live entries only; capacity does not matter. The
// entry being yielded may be deleted from inside yield; any other
// mutation during the walk is undefined.
func (m *Map[K, V]) Range(yield func(key K, value V) bool) {
	if m.size == 0 {
		return
	}
	for s := m.head; s != noSlot; {
		next := m.slots[s].next
		if !yield(m.slots[s].key, m.slots[s].value) {
			return
		}
		s = next
	}
}

// RangeKeys calls yield for each key in traversal order.
func (m *Map[K, V]) RangeKeys(yield func(key K) bool) {
	m.Range(func(key K, _ V) bool {
		return yield(key)
	})
}

// RangeValues calls yield for each value in traversal order.
func (m *Map[K, V]) RangeValues(yield func(value V) bool) {
	m.Range(func(_ K, value V) bool {
		return yield(value)
	})
}

// All is the iterator form of Range, usable with range-over-func. The
// sequence is lazy, finite, and restartable.
func (m *Map[K, V]) All() func(yield func(K, V) bool) {
	return m.Range
}

// Keys is the iterator form of RangeKeys.
func (m *Map[K, V]) Keys() func(yield func(K) bool) {
	return m.RangeKeys
}

// Values is the iterator form of RangeValues.
func (m *Map[K, V]) Values() func(yield func(V) bool) {
	return m.RangeValues
}
