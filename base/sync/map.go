package sync

import "sync"

// Map is a generic synchronized map. It is a wrapper around Go's standard
// sync.Map, with all the same caveats. Its one use in this module is the
// process-level registry of installed PDKs.
type Map[K comparable, V any] struct {
	m sync.Map
}

// Store a key,value pair.
func (sm *Map[K, V]) Store(k K, v V) {
	sm.m.Store(k, v)
}

// Load returns a value given a key and whether the key was present.
func (sm *Map[K, V]) Load(k K) (v V, ok bool) {
	vAny, ok := sm.m.Load(k)
	if !ok {
		return
	}
	return vAny.(V), true
}

// Delete removes a pair given a key.
func (sm *Map[K, V]) Delete(k K) {
	sm.m.Delete(k)
}

// Size returns the number of elements in the map. This takes O(n) time.
func (sm *Map[K, V]) Size() (i int) {
	for range sm.Iter() {
		i++
	}
	return
}

// Iter returns an iterator to range over the elements of the map.
func (sm *Map[K, V]) Iter() func(func(K, V) bool) {
	return func(yield func(K, V) bool) {
		sm.m.Range(func(k, v any) bool {
			return yield(k.(K), v.(V))
		})
	}
}
