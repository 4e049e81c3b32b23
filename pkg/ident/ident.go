// Package ident issues stable, generation-tagged identifiers for graph entities.
//
// An [ID] is an arena slot index paired with the generation the slot had when
// the entity was inserted. Removing an entity bumps the slot's generation, so
// any ID that survives the removal resolves to "not found" instead of reaching
// whatever entity later reuses the slot.
//
// The zero ID is never issued and can be used as a "no entity" marker.
//
// A [Registry] is not safe for concurrent use.
package ident

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// ErrMalformed is returned by [Parse] for strings that are not "index.gen".
var ErrMalformed = errors.New("malformed identifier")

// ID is an opaque handle into a [Registry].
type ID struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether id is the zero (never issued) identifier.
func (id ID) IsZero() bool { return id.Gen == 0 }

// String formats id as "index.gen".
func (id ID) String() string {
	return strconv.FormatUint(uint64(id.Index), 10) + "." + strconv.FormatUint(uint64(id.Gen), 10)
}

// Parse is the inverse of [ID.String].
func Parse(s string) (ID, error) {
	idx, gen, ok := strings.Cut(s, ".")
	if !ok {
		return ID{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	i, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	g, err := strconv.ParseUint(gen, 10, 32)
	if err != nil || g == 0 {
		return ID{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return ID{Index: uint32(i), Gen: uint32(g)}, nil
}

type slot[T any] struct {
	gen  uint32
	used bool
	val  T
}

// Registry is a generational arena mapping IDs to values.
//
// The zero value is ready to use.
type Registry[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// New returns an empty registry.
func New[T any]() *Registry[T] { return &Registry[T]{} }

// Insert stores v and returns its freshly issued ID.
// Freed slots are reused with an incremented generation.
func (r *Registry[T]) Insert(v T) ID {
	r.live++
	if n := len(r.free); n > 0 {
		idx := r.free[n-1]
		r.free = r.free[:n-1]
		s := &r.slots[idx]
		s.gen++
		s.used = true
		s.val = v
		return ID{Index: idx, Gen: s.gen}
	}
	r.slots = append(r.slots, slot[T]{gen: 1, used: true, val: v})
	return ID{Index: uint32(len(r.slots) - 1), Gen: 1}
}

// Get resolves id. It returns false for zero, removed, or foreign IDs.
func (r *Registry[T]) Get(id ID) (T, bool) {
	if !r.Contains(id) {
		var zero T
		return zero, false
	}
	return r.slots[id.Index].val, true
}

// Contains reports whether id refers to a live entry.
func (r *Registry[T]) Contains(id ID) bool {
	if id.IsZero() || int(id.Index) >= len(r.slots) {
		return false
	}
	s := r.slots[id.Index]
	return s.used && s.gen == id.Gen
}

// Remove deletes the entry for id and returns its value.
// Removing an unknown id is a no-op that returns false.
func (r *Registry[T]) Remove(id ID) (T, bool) {
	var zero T
	if !r.Contains(id) {
		return zero, false
	}
	s := &r.slots[id.Index]
	v := s.val
	s.used = false
	s.val = zero
	r.free = append(r.free, id.Index)
	r.live--
	return v, true
}

// Len returns the number of live entries.
func (r *Registry[T]) Len() int { return r.live }

// All iterates live entries in slot order.
func (r *Registry[T]) All() iter.Seq2[ID, T] {
	return func(yield func(ID, T) bool) {
		for i := range r.slots {
			s := &r.slots[i]
			if !s.used {
				continue
			}
			if !yield(ID{Index: uint32(i), Gen: s.gen}, s.val) {
				return
			}
		}
	}
}

// IDs returns the IDs of all live entries in slot order.
func (r *Registry[T]) IDs() []ID {
	ids := make([]ID, 0, r.live)
	for id := range r.All() {
		ids = append(ids, id)
	}
	return ids
}
