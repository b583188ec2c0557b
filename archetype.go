package ecs

import "sync"

// archetypeID is a dense, world-local identifier for an archetype.
type archetypeID uint32

// archetype owns one columnStore and reports the component-type set it
// represents. Readers/writers are resolved lazily and cached per component
// index so repeated queries against the same archetype don't rebuild them.
// Because a cached reader/writer is shared world-wide (two conflict-free
// read-only systems can legally land in the same scheduler stage and call
// Read on it concurrently), ComponentReader/ComponentWriter must carry no
// mutable per-call state — see reader_writer.go.
//
// Grounded on the teacher's archetype.go (an id plus an owned table.Table);
// here the owned table.Table is replaced by the in-repo columnStore, and a
// reader/writer map keyed by component index is kept on the archetype, since
// the teacher delegated that caching to the table package. The map is empty
// at construction; each entry is built on the first reader/writer call for
// that component.
type archetype struct {
	id           archetypeID
	componentSet BitSet
	componentIdx []uint32
	store        *columnStore
	entities     []Entity

	accessorMu sync.Mutex
	readers    map[uint32]any
	writers    map[uint32]any
}

func newArchetype(id archetypeID, componentIdx []uint32, infos map[uint32]*componentInfo) *archetype {
	sorted := append([]uint32(nil), componentIdx...)
	return &archetype{
		id:           id,
		componentSet: bitset(sorted...),
		componentIdx: sorted,
		store:        newColumnStore(sorted, infos),
		readers:      make(map[uint32]any),
		writers:      make(map[uint32]any),
	}
}

// ID returns this archetype's dense identifier.
func (a *archetype) ID() uint32 { return uint32(a.id) }

// ComponentTypes returns the stable, cached bitset of component types this
// archetype carries.
func (a *archetype) ComponentTypes() BitSet { return a.componentSet }

// Size returns the archetype's logical row count.
func (a *archetype) Size() int { return a.store.size }

// has reports whether idx names a component this archetype holds.
func (a *archetype) has(idx uint32) bool {
	_, ok := a.store.components[idx]
	return ok
}

// reader returns (constructing and caching on first use) a typed
// ComponentReader for component index idx.
func reader[T any](a *archetype, idx uint32) *ComponentReader[T] {
	a.accessorMu.Lock()
	defer a.accessorMu.Unlock()
	if r, ok := a.readers[idx]; ok {
		return r.(*ComponentReader[T])
	}
	cc, ok := a.store.components[idx]
	if !ok {
		panic(tracedErr(UnknownComponentError{ComponentType: componentTypeName[T]()}))
	}
	r := &ComponentReader[T]{archetype: a, cc: cc}
	a.readers[idx] = r
	return r
}

// writer returns (constructing and caching on first use) a typed
// ComponentWriter for component index idx.
func writer[T any](a *archetype, idx uint32) *ComponentWriter[T] {
	a.accessorMu.Lock()
	defer a.accessorMu.Unlock()
	if w, ok := a.writers[idx]; ok {
		return w.(*ComponentWriter[T])
	}
	cc, ok := a.store.components[idx]
	if !ok {
		panic(tracedErr(UnknownComponentError{ComponentType: componentTypeName[T]()}))
	}
	w := &ComponentWriter[T]{archetype: a, cc: cc}
	a.writers[idx] = w
	return w
}
