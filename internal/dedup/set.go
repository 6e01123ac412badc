// Package dedup partitions candidate keys against the keys already persisted
// in the warehouse.
package dedup

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Set is a set of keys. The zero value is an empty set ready to use. A nil
// *Set reads as empty, but Add requires a non-nil set.
//
// Thread-Safety: NOT safe for concurrent use. A load run is single-writer.
type Set[K comparable] struct {
	items mapset.Set[K]
}

// NewSet returns a set holding keys.
func NewSet[K comparable](keys ...K) *Set[K] {
	return &Set[K]{items: mapset.NewThreadUnsafeSet(keys...)}
}

// Contains reports whether k is in the set.
func (s *Set[K]) Contains(k K) bool {
	if s == nil || s.items == nil {
		return false
	}
	return s.items.Contains(k)
}

// Add inserts keys into the set. It panics if s is nil.
func (s *Set[K]) Add(keys ...K) {
	if s == nil {
		panic("dedup: Add on nil *Set")
	}
	if s.items == nil {
		s.items = mapset.NewThreadUnsafeSet[K]()
	}
	s.items.Append(keys...)
}

// Len returns the number of keys in the set.
func (s *Set[K]) Len() int {
	if s == nil || s.items == nil {
		return 0
	}
	return s.items.Cardinality()
}

// Partition splits candidates into keys absent from persisted (fresh) and keys
// already present (existing). Both slices keep candidate order. A candidate
// repeated in the input is reported once, at its first position.
//
// persisted is not modified; callers add fresh keys after a successful insert.
func Partition[K comparable](persisted *Set[K], candidates []K) (fresh, existing []K) {
	seen := mapset.NewThreadUnsafeSetWithSize[K](len(candidates))
	for _, c := range candidates {
		if !seen.Add(c) {
			continue
		}
		if persisted.Contains(c) {
			existing = append(existing, c)
		} else {
			fresh = append(fresh, c)
		}
	}
	return fresh, existing
}
