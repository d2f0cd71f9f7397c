package hashmap

import (
	"sort"
	"testing"
)

// TestIterator_Walk walks the map from Begin to End and checks order
// against insertion order (collision-free hasher, so the order is exact).
func TestIterator_Walk(t *testing.T) {
	m := NewWithHasher[int, string](identityHash, nil)
	m.Set(1, "a")
	m.Set(2, "b")
	m.Set(3, "c")

	var keys []int
	for it := m.Begin(); it != m.End(); it = it.Next() {
		keys = append(keys, it.Key())
	}
	want := []int{1, 2, 3}
	if len(keys) != len(want) {
		t.Fatalf("walked %d entries, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("position %d: key %d, want %d", i, keys[i], want[i])
		}
	}
}

// TestIterator_Empty verifies Begin == End on an empty map.
func TestIterator_Empty(t *testing.T) {
	m := New[int, int]()
	if m.Begin() != m.End() {
		t.Error("Begin != End on empty map")
	}
	if m.Begin().Ok() {
		t.Error("Begin on empty map should not be dereferenceable")
	}

	var zero Map[int, int]
	if zero.Begin() != zero.End() {
		t.Error("Begin != End on zero map")
	}
}

// TestIterator_Find verifies that Find yields a dereferenceable handle
// for present keys and End for absent ones.
func TestIterator_Find(t *testing.T) {
	m := New[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)

	it := m.Find("b")
	if it == m.End() || !it.Ok() {
		t.Fatal("Find of present key returned End")
	}
	if it.Key() != "b" || it.Value() != 2 {
		t.Errorf("Find handle = (%q, %d)", it.Key(), it.Value())
	}

	if m.Find("missing") != m.End() {
		t.Error("Find of absent key should return End")
	}
}

// TestIterator_Mutate verifies in-place value mutation through a handle;
// the key stays untouched.
func TestIterator_Mutate(t *testing.T) {
	m := New[string, int]()
	m.Set("a", 1)

	it := m.Find("a")
	it.Set(10)
	if v, _ := m.Load("a"); v != 10 {
		t.Errorf("value after handle Set = %d, want 10", v)
	}

	*it.Ref() = 20
	if v, _ := m.Load("a"); v != 20 {
		t.Errorf("value after handle Ref write = %d, want 20", v)
	}

	if e := it.Entry(); e.Key != "a" || e.Value != 20 {
		t.Errorf("Entry = %+v", e)
	}
}

// TestIterator_StableAcrossDelete verifies that removing one entry keeps
// handles to other entries valid.
func TestIterator_StableAcrossDelete(t *testing.T) {
	m := New[int, string]()
	m.Set(1, "a")
	m.Set(2, "b")
	m.Set(3, "c")

	it := m.Find(1)
	m.Delete(2)
	if it.Key() != 1 || it.Value() != "a" {
		t.Errorf("handle after unrelated Delete = (%d, %q)", it.Key(), it.Value())
	}
}

// TestIterator_EndDerefPanics pins the diagnostic for dereferencing the
// end iterator.
func TestIterator_EndDerefPanics(t *testing.T) {
	m := New[int, int]()
	defer func() {
		if recover() == nil {
			t.Error("dereferencing End did not panic")
		}
	}()
	m.End().Key()
}

// TestRange_Completeness verifies that iteration yields exactly the live
// entries, each once, across growth and deletions.
func TestRange_Completeness(t *testing.T) {
	m := New[int, int]()
	const n = 1000
	for i := 0; i < n; i++ {
		m.Set(i, i*3)
	}
	for i := 0; i < n; i += 2 {
		m.Delete(i)
	}

	seen := make(map[int]int)
	m.Range(func(k, v int) bool {
		if _, dup := seen[k]; dup {
			t.Errorf("key %d yielded twice", k)
		}
		seen[k] = v
		return true
	})
	if len(seen) != n/2 {
		t.Fatalf("iteration yielded %d entries, want %d", len(seen), n/2)
	}
	for k, v := range seen {
		if k%2 == 0 {
			t.Errorf("deleted key %d yielded", k)
		}
		if v != k*3 {
			t.Errorf("key %d yielded value %d, want %d", k, v, k*3)
		}
	}
}

// TestRange_Deterministic verifies that two traversals of the same map
// produce the same sequence.
func TestRange_Deterministic(t *testing.T) {
	m := New[int, int]()
	for i := 0; i < 500; i++ {
		m.Set(i, i)
	}

	collect := func() []int {
		var keys []int
		m.RangeKeys(func(k int) bool {
			keys = append(keys, k)
			return true
		})
		return keys
	}
	first, second := collect(), collect()
	if len(first) != len(second) {
		t.Fatalf("traversal lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("traversal order differs at %d: %d vs %d", i, first[i], second[i])
		}
	}
}

// TestRange_EarlyStop verifies that returning false stops the walk.
func TestRange_EarlyStop(t *testing.T) {
	m := New[int, int]()
	for i := 0; i < 10; i++ {
		m.Set(i, i)
	}

	count := 0
	m.Range(func(int, int) bool {
		count++
		return count < 3
	})
	if count != 3 {
		t.Errorf("Range visited %d entries after stop, want 3", count)
	}
}

// TestAll_RangeOverFunc exercises the All/Keys/Values iterator forms
// with range-over-func, including restartability.
func TestAll_RangeOverFunc(t *testing.T) {
	m := New[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	for pass := 0; pass < 2; pass++ {
		got := make(map[string]int)
		for k, v := range m.All() {
			got[k] = v
		}
		if len(got) != 3 || got["a"] != 1 || got["b"] != 2 || got["c"] != 3 {
			t.Errorf("pass %d: All yielded %v", pass, got)
		}
	}

	var keys []string
	for k := range m.Keys() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("Keys yielded %v", keys)
	}

	sum := 0
	for v := range m.Values() {
		sum += v
	}
	if sum != 6 {
		t.Errorf("Values summed to %d, want 6", sum)
	}
}

// TestRange_DeleteCurrent verifies that the entry being yielded may be
// deleted from inside the callback.
func TestRange_DeleteCurrent(t *testing.T) {
	m := New[int, int]()
	for i := 0; i < 20; i++ {
		m.Set(i, i)
	}

	m.Range(func(k, _ int) bool {
		if k%2 == 0 {
			m.Delete(k)
		}
		return true
	})
	if m.Size() != 10 {
		t.Errorf("size after deleting during Range = %d, want 10", m.Size())
	}
	for i := 0; i < 20; i++ {
		if got := m.Has(i); got != (i%2 == 1) {
			t.Errorf("Has(%d) = %v", i, got)
		}
	}
}

// TestRange_DeleteCurrentAtCapacity deletes every yielded entry while the
// live count sits exactly at the growth threshold: the walk must still
// visit each entry once and drain the map, with no rehash kicking in
// under it.
func TestRange_DeleteCurrentAtCapacity(t *testing.T) {
	m := NewWithHasher[int, int](collideHash, nil)
	for i := 0; m.Size() < m.Cap(); i++ {
		m.Set(i, i)
	}
	n := m.Size()
	capBefore := m.Cap()

	seen := make(map[int]bool)
	m.Range(func(k, _ int) bool {
		if seen[k] {
			t.Errorf("key %d yielded twice", k)
		}
		seen[k] = true
		m.Delete(k)
		return true
	})

	if len(seen) != n {
		t.Errorf("yielded %d distinct keys, want %d", len(seen), n)
	}
	if m.Size() != 0 {
		t.Errorf("size after draining = %d, want 0", m.Size())
	}
	if m.Cap() != capBefore {
		t.Errorf("capacity changed during deletes: %d -> %d", capBefore, m.Cap())
	}
}

// TestIterator_StableAcrossDeleteAtCapacity verifies that a Delete issued
// while the live count equals the capacity does not disturb handles to
// other entries.
func TestIterator_StableAcrossDeleteAtCapacity(t *testing.T) {
	m := New[int, int]()
	for i := 0; m.Size() < m.Cap(); i++ {
		m.Set(i, i*10)
	}

	it := m.Find(1)
	m.Delete(0)
	if it.Key() != 1 || it.Value() != 10 {
		t.Errorf("handle after boundary Delete = (%d, %d)", it.Key(), it.Value())
	}
}
