package ecs

import (
	"reflect"
	"sync"

	"github.com/TheBitDrifter/mask"
)

// maxRegisteredComponentTypes is the width of mask.Mask256: the number of
// distinct component types one registry (and therefore one World) can track.
const maxRegisteredComponentTypes = 256

// BitSet is the registry's set representation for a collection of component
// types: bit i is set iff the type assigned index i is a member.
type BitSet = mask.Mask256

// TypeRegistry assigns a stable, dense index to each component type seen by
// a world and produces BitSets over sets of those types. Registration is
// append-only and safe for concurrent use; every lookup, including one for
// an already registered type, takes the registry's mutex (indices, once
// assigned, never change).
//
// Grounded on other_examples/2592f851_lzuwei-pecs-go's ComponentRegistry
// (reflect.Type -> id map with a monotonic counter), generalized to also
// produce mask.Mask256 bitsets the way the teacher's Storage/Query code
// uses mask.Mask for archetype identity and query matching.
type TypeRegistry struct {
	mu       sync.Mutex
	indices  map[reflect.Type]uint32
	infos    []*componentInfo
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		indices: make(map[reflect.Type]uint32),
	}
}

// indexFor assigns (on first sight) or returns the dense index for T,
// decomposing T's field layout the first time it is seen. Panics, via
// bark.AddTrace, if T has a field of an unsupported kind — this is a
// registration-time programmer error per spec §9.
func indexFor[T any](r *TypeRegistry) uint32 {
	t := reflect.TypeOf((*T)(nil)).Elem()
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx, ok := r.indices[t]; ok {
		return idx
	}
	if len(r.infos) >= maxRegisteredComponentTypes {
		panic(tracedErr(UnsupportedFieldTypeError{
			ComponentType: t.String(),
			FieldName:     "<type set>",
			Kind:          "registry at capacity (256 component types)",
		}))
	}
	idx := uint32(len(r.infos))
	info, err := buildComponentInfo(t)
	if err != nil {
		panic(tracedErr(err))
	}
	r.indices[t] = idx
	r.infos = append(r.infos, info)
	return idx
}

// infoFor returns the decomposition info for an already-registered index.
func (r *TypeRegistry) infoFor(idx uint32) *componentInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.infos[idx]
}

// lookupType returns the index already assigned to t, if any, without
// registering it. Used by World.Spawn/SpawnBatch, which receive component
// values through a heterogeneous any parameter and so cannot go through the
// generic indexFor[T] path.
func (r *TypeRegistry) lookupType(t reflect.Type) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.indices[t]
	return idx, ok
}

// bitset returns a BitSet with bit i set for every index i in idxs.
func bitset(idxs ...uint32) BitSet {
	var b BitSet
	for _, i := range idxs {
		b.Mark(i)
	}
	return b
}

// containsAll reports whether every bit set in b is also set in a.
func containsAll(a, b BitSet) bool {
	return a.ContainsAll(b)
}

// intersects reports whether a and b share any set bit.
func intersects(a, b BitSet) bool {
	return a.ContainsAny(b)
}

// disjoint reports whether a and b share no set bit.
func disjoint(a, b BitSet) bool {
	return a.ContainsNone(b)
}
