package hashmap

import (
	"encoding/json"
	"fmt"
	"strings"
	"unsafe"
)

// Entry is one key/value pair of a Map. A stored entry's key is
// immutable; only the value changes.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// FromEntries builds a Map from a literal list of pairs. Later pairs for
// the same key overwrite earlier ones.
func FromEntries[K comparable, V any](entries ...Entry[K, V]) *Map[K, V] {
	m := New[K, V](WithCapacity(len(entries)))
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Collect builds a Map from a sequence of pairs, such as another Map's
// All or maps.All over a built-in map. Later pairs for the same key
// overwrite earlier ones.
func Collect[K comparable, V any](seq func(yield func(K, V) bool)) *Map[K, V] {
	m := New[K, V]()
	seq(func(k K, v V) bool {
		m.Set(k, v)
		return true
	})
	return m
}

// FromMap imports all pairs from a standard Go map, overwriting values
// for keys already present.
func (m *Map[K, V]) FromMap(source map[K]V) {
	for k, v := range source {
		m.Set(k, v)
	}
}

// ToMap collects all entries into a standard Go map.
func (m *Map[K, V]) ToMap() map[K]V {
	a := make(map[K]V, m.size)
	m.Range(func(k K, v V) bool {
		a[k] = v
		return true
	})
	return a
}

// Clone creates a deep copy: same hasher, same seed, same entries,
// fully independent storage.
func (m *Map[K, V]) Clone() *Map[K, V] {
	if m.buckets == nil {
		return &Map[K, V]{}
	}

	clone := &Map[K, V]{
		seed:     m.seed,
		keyHash:  m.keyHash,
		valEqual: m.valEqual,
	}
	clone.hasher = func(key K, seed uintptr) uintptr {
		return clone.keyHash(noescape(unsafe.Pointer(&key)), seed)
	}
	clone.reset(len(m.buckets))
	m.Range(func(k K, v V) bool {
		clone.insertAt(clone.bucketIdx(&k), k, v)
		return true
	})
	return clone
}

// CopyFrom replaces the map's contents with a deep copy of other's
// entries, keeping the map's own hasher. Copying a map into itself is a
// no-op.
func (m *Map[K, V]) CopyFrom(other *Map[K, V]) {
	if m == other {
		return
	}
	m.Clear()
	m.initDefault()
	other.Range(func(k K, v V) bool {
		m.Set(k, v)
		return true
	})
}

// Equal reports whether both maps hold the same key set with equal
// values, regardless of traversal order. Values are compared with the
// valEqual function given at construction; with the default and a V that
// is not comparable, Equal panics.
func (m *Map[K, V]) Equal(other *Map[K, V]) bool {
	if m == other {
		return true
	}
	if other == nil || m.size != other.size {
		return false
	}
	if m.size == 0 {
		return true
	}
	equal := true
	m.Range(func(k K, v V) bool {
		ov, ok := other.Load(k)
		if !ok || !m.valEqual(noescape(unsafe.Pointer(&v)), noescape(unsafe.Pointer(&ov))) {
			equal = false
			return false
		}
		return true
	})
	return equal
}

// String implements fmt.Stringer, rendering entries in traversal order.
func (m *Map[K, V]) String() string {
	var sb strings.Builder
	sb.WriteString("Map[")
	first := true
	m.Range(func(k K, v V) bool {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		fmt.Fprintf(&sb, "%v:%v", k, v)
		return true
	})
	sb.WriteByte(']')
	return sb.String()
}

// MarshalJSON implements json.Marshaler, encoding the entries as a plain
// JSON object.
func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler. Decoded pairs are merged
// into the existing contents the same way FromMap merges them.
func (m *Map[K, V]) UnmarshalJSON(data []byte) error {
	var a map[K]V
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	m.FromMap(a)
	return nil
}
