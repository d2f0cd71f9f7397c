// Package hashmap provides a generic associative container with amortized
// O(1) key operations and deterministic, capacity-independent traversal.
package hashmap

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"unsafe"
)

const (
	// noSlot is the sentinel slot index: end of the element sequence,
	// empty bucket head, exhausted free list.
	noSlot = -1
	// tombstone marks the prev link of a reclaimed slot so that a stale
	// iterator dereference can be caught on a best-effort basis.
	tombstone = -2

	// defaultCapacity is the initial bucket count when no WithCapacity
	// option is given. Must be a power of two.
	defaultCapacity = 16
)

// ErrNotFound is reported by At for keys with no entry.
var ErrNotFound = errors.New("key not found")

// slot is one arena cell of the element store. A live slot carries an
// entry and its prev/next links in the insertion sequence; a reclaimed
// slot has prev == tombstone and reuses next as the free-list link.
// The key is never modified after the slot is filled.
type slot[K comparable, V any] struct {
	key   K
	value V
	prev  int
	next  int
}

// bucket indexes one chain: head is the first slot of the bucket's run in
// the element sequence, count is the run length. count == 0 implies
// head == noSlot.
type bucket struct {
	head  int
	count int
}

// Map is a hash map from K to V built on chaining rather than open
// addressing: the entries live in a single doubly-linked element sequence
// (threaded through a slot arena), and each bucket records where its run
// of entries starts in that sequence and how long the run is. All entries
// of one bucket occupy adjacent positions in the sequence, so a lookup
// scans at most count slots, and full traversal is a plain walk of the
// sequence in insertion order and never visits empty capacity.
//
// Key features:
//   - Zero-value usability: a zero Map is empty and ready to use
//   - Amortized O(1) Ref, Set, Insert, Delete, Load, At, Find
//   - Deterministic O(live) traversal independent of capacity, in
//     insertion order up to intra-bucket collision placement (new entries
//     of a colliding bucket are placed at the front of that bucket's run)
//   - Stable iterators: Delete invalidates only iterators to the removed
//     entry; Clear and growth invalidate all iterators
//   - Defaults to Go's built-in hash function, customizable on creation
//
// When the number of live entries reaches the bucket count, the map
// doubles its capacity and rebuilds: the element sequence is snapshotted,
// the state reset, and every entry replayed through the insertion path.
// The rebuild is synchronous and complete before the triggering operation
// acts; no partial state is observable.
//
// A Map is not safe for concurrent use. It performs no internal
// synchronization; callers that share a Map across goroutines must
// provide their own.
type Map[K comparable, V any] struct {
	slots    []slot[K, V]
	buckets  []bucket
	head     int // first live slot in insertion order
	tail     int // last live slot
	free     int // free list of reclaimed slots, linked through next
	size     int
	gen      uint32 // bumped by Clear and growth; iterators snapshot it
	seed     uintptr
	keyHash  hashFunc
	valEqual equalFunc
	hasher   func(K, uintptr) uintptr
}

// Config holds construction options for a Map.
type Config struct {
	capacity int
}

// WithCapacity sets the initial bucket count. The value is rounded up to
// a power of two and never below the default.
func WithCapacity(n int) func(*Config) {
	return func(c *Config) {
		c.capacity = n
	}
}

// New creates a Map with the built-in hasher for K.
func New[K comparable, V any](options ...func(*Config)) *Map[K, V] {
	return NewWithHasher[K, V](nil, nil, options...)
}

// NewWithHasher creates a Map with a custom key hasher and a custom value
// equality function.
//
// Parameters:
//   - keyHash: nil uses the built-in hasher
//   - valEqual: nil uses the built-in comparison, but if V is not of a
//     comparable type, calling Equal will panic
func NewWithHasher[K comparable, V any](
	keyHash func(key K, seed uintptr) uintptr,
	valEqual func(a, b V) bool,
	options ...func(*Config),
) *Map[K, V] {
	m := &Map[K, V]{}
	m.Init(keyHash, valEqual, options...)
	return m
}

// Init configures the Map in place. It may only be called before the Map
// is used; if it is never called, the Map initializes itself with the
// default configuration on first write.
func (m *Map[K, V]) Init(
	keyHash func(key K, seed uintptr) uintptr,
	valEqual func(a, b V) bool,
	options ...func(*Config),
) {
	var hs hashFunc
	var eq equalFunc
	if keyHash != nil {
		hs = func(pointer unsafe.Pointer, seed uintptr) uintptr {
			return keyHash(*(*K)(pointer), seed)
		}
	}
	if valEqual != nil {
		eq = func(a, b unsafe.Pointer) bool {
			return valEqual(*(*V)(a), *(*V)(b))
		}
	}
	m.init(hs, eq, options...)
}

func (m *Map[K, V]) init(
	hs hashFunc,
	eq equalFunc,
	options ...func(*Config),
) {
	c := &Config{capacity: defaultCapacity}
	for _, o := range options {
		o(c)
	}

	m.seed = uintptr(rand.Uint64())
	m.keyHash, m.valEqual = defaultHasher[K, V]()
	if hs != nil {
		m.keyHash = hs
	}
	if eq != nil {
		m.valEqual = eq
	}
	m.hasher = func(key K, seed uintptr) uintptr {
		return m.keyHash(noescape(unsafe.Pointer(&key)), seed)
	}

	capacity := defaultCapacity
	if c.capacity > defaultCapacity {
		capacity = nextPowOf2(c.capacity)
	}
	m.reset(capacity)
}

// reset discards the element store and installs a fresh bucket index of
// the given capacity (a power of two).
func (m *Map[K, V]) reset(capacity int) {
	m.slots = m.slots[:0]
	m.buckets = make([]bucket, capacity)
	for i := range m.buckets {
		m.buckets[i].head = noSlot
	}
	m.head = noSlot
	m.tail = noSlot
	m.free = noSlot
	m.size = 0
}

// initDefault lazily initializes a zero Map on its first write.
func (m *Map[K, V]) initDefault() {
	if m.buckets == nil {
		m.init(nil, nil)
	}
}

// bucketIdx reduces the key's hash to a bucket index. The bucket count is
// a power of two, so masking is the mod.
func (m *Map[K, V]) bucketIdx(key *K) int {
	hash := m.keyHash(noescape(unsafe.Pointer(key)), m.seed)
	return int(hash & uintptr(len(m.buckets)-1))
}

// findSlot scans bucket b's run for key. The scan is bounded by the run
// length: slots past the run belong to other buckets and are never
// touched, even though the element sequence continues.
func (m *Map[K, V]) findSlot(b int, key K) int {
	s := m.buckets[b].head
	for n := m.buckets[b].count; n > 0; n-- {
		if m.slots[s].key == key {
			return s
		}
		s = m.slots[s].next
	}
	return noSlot
}

// newSlot takes a cell from the free list, or grows the arena.
func (m *Map[K, V]) newSlot(key K, value V) int {
	if m.free != noSlot {
		s := m.free
		m.free = m.slots[s].next
		m.slots[s] = slot[K, V]{key: key, value: value}
		return s
	}
	m.slots = append(m.slots, slot[K, V]{key: key, value: value})
	return len(m.slots) - 1
}

// linkBefore threads slot s into the element sequence immediately before
// position at; at == noSlot appends at the tail.
func (m *Map[K, V]) linkBefore(s, at int) {
	prev := m.tail
	if at != noSlot {
		prev = m.slots[at].prev
	}
	m.slots[s].prev = prev
	m.slots[s].next = at
	if prev == noSlot {
		m.head = s
	} else {
		m.slots[prev].next = s
	}
	if at == noSlot {
		m.tail = s
	} else {
		m.slots[at].prev = s
	}
}

// unlink removes slot s from the element sequence and reclaims the cell.
func (m *Map[K, V]) unlink(s int) {
	prev, next := m.slots[s].prev, m.slots[s].next
	if prev == noSlot {
		m.head = next
	} else {
		m.slots[prev].next = next
	}
	if next == noSlot {
		m.tail = prev
	} else {
		m.slots[next].prev = prev
	}
	// Zero the entry so reclaimed cells don't pin key/value memory.
	m.slots[s] = slot[K, V]{prev: tombstone, next: m.free}
	m.free = s
}

// insertAt creates an entry for (key, value) in bucket b. The new entry
// goes at the front of the bucket's run: before the run's current head,
// or at the sequence tail when the run is empty. Either placement keeps
// the run contiguous by construction.
func (m *Map[K, V]) insertAt(b int, key K, value V) int {
	at := noSlot
	if m.buckets[b].count != 0 {
		at = m.buckets[b].head
	}
	s := m.newSlot(key, value)
	m.linkBefore(s, at)
	m.buckets[b].head = s
	m.buckets[b].count++
	m.size++
	return s
}

// maybeGrow doubles capacity once the live count reaches it. Runs before
// every entry-adding operation acts, so a triggering operation always
// works against the rebuilt table.
func (m *Map[K, V]) maybeGrow() {
	if m.size >= len(m.buckets) {
		m.rehash(len(m.buckets) * 2)
	}
}

// rehash rebuilds the map at the given capacity: snapshot the entries in
// traversal order, reset, and replay every pair through the insertion
// path so each bucket's run is reformed against the new capacity. All
// iterators are invalidated.
func (m *Map[K, V]) rehash(capacity int) {
	pairs := make([]Entry[K, V], 0, m.size)
	for s := m.head; s != noSlot; s = m.slots[s].next {
		pairs = append(pairs, Entry[K, V]{m.slots[s].key, m.slots[s].value})
	}
	m.reset(capacity)
	m.gen++
	for i := range pairs {
		m.insertAt(m.bucketIdx(&pairs[i].Key), pairs[i].Key, pairs[i].Value)
	}
}

// Ref returns a pointer to the value for key, inserting a zero value
// first if the key has no entry. The pointer stays valid until the next
// operation that adds or removes entries; growth moves the arena.
func (m *Map[K, V]) Ref(key K) *V {
	m.initDefault()
	m.maybeGrow()
	b := m.bucketIdx(&key)
	s := m.findSlot(b, key)
	if s == noSlot {
		var zero V
		s = m.insertAt(b, key, zero)
	}
	return &m.slots[s].value
}

// Set stores value under key, overwriting any previous value.
func (m *Map[K, V]) Set(key K, value V) {
	*m.Ref(key) = value
}

// Insert adds (key, value) if the key has no entry; when the key is
// already present it is a no-op and the existing value is kept.
func (m *Map[K, V]) Insert(key K, value V) {
	m.initDefault()
	m.maybeGrow()
	b := m.bucketIdx(&key)
	if m.findSlot(b, key) != noSlot {
		return
	}
	m.insertAt(b, key, value)
}

// Load retrieves the value for key. It never mutates the map and never
// triggers growth.
func (m *Map[K, V]) Load(key K) (value V, ok bool) {
	if m.size == 0 {
		return
	}
	s := m.findSlot(m.bucketIdx(&key), key)
	if s == noSlot {
		return
	}
	return m.slots[s].value, true
}

// At retrieves the value for key, reporting ErrNotFound when the key has
// no entry. Like Load it never mutates the map.
func (m *Map[K, V]) At(key K) (V, error) {
	value, ok := m.Load(key)
	if !ok {
		return value, fmt.Errorf("hashmap: at(%v): %w", key, ErrNotFound)
	}
	return value, nil
}

// Has reports whether key has an entry.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.Load(key)
	return ok
}

// Delete removes the entry for key; absent keys are a no-op. Iterators to
// the removed entry become invalid, all others remain valid. Delete never
// rehashes: removal cannot raise the load, so the growth check is left to
// the entry-adding operations, and a quiescent map keeps its handles even
// at the growth threshold.
func (m *Map[K, V]) Delete(key K) {
	if m.size == 0 {
		return
	}
	b := m.bucketIdx(&key)
	s := m.buckets[b].head
	for n := m.buckets[b].count; n > 0; n-- {
		next := m.slots[s].next
		if m.slots[s].key == key {
			if s == m.buckets[b].head {
				m.buckets[b].head = next
			}
			m.buckets[b].count--
			if m.buckets[b].count == 0 {
				m.buckets[b].head = noSlot
			}
			m.unlink(s)
			m.size--
			return
		}
		s = next
	}
}

// Size returns the number of live entries. O(1).
func (m *Map[K, V]) Size() int {
	return m.size
}

// IsZero reports whether the map holds no entries.
func (m *Map[K, V]) IsZero() bool {
	return m.size == 0
}

// Clear removes all entries, resetting each touched bucket on the way.
// It walks the live entries only; cost is proportional to the live count,
// not to capacity. All iterators are invalidated.
func (m *Map[K, V]) Clear() {
	if m.size == 0 {
		return
	}
	for s := m.head; s != noSlot; s = m.slots[s].next {
		b := m.bucketIdx(&m.slots[s].key)
		m.buckets[b].head = noSlot
		m.buckets[b].count = 0
	}
	clear(m.slots)
	m.slots = m.slots[:0]
	m.head = noSlot
	m.tail = noSlot
	m.free = noSlot
	m.size = 0
	m.gen++
}

// Hasher returns the configured hash function as a (key, seed) form;
// pair it with Seed to reproduce the map's bucket assignment.
func (m *Map[K, V]) Hasher() func(K, uintptr) uintptr {
	m.initDefault()
	return m.hasher
}

// Seed returns the seed the map passes to its hash function.
func (m *Map[K, V]) Seed() uintptr {
	m.initDefault()
	return m.seed
}

// Cap returns the current bucket count.
func (m *Map[K, V]) Cap() int {
	return len(m.buckets)
}
