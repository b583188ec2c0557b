package ecs

import "reflect"

// ComponentReader is a typed, read-only handle over one component type's
// columns within one archetype. read(row) reconstructs a value equal to the
// most recent write(row, _) for that row (materialize-on-read, per spec
// §4.1's reconstruction contract).
//
// A ComponentReader is cached and shared world-wide for its (archetype,
// component index) pair (archetype.go's reader/writer cache), so it must
// hold no per-call mutable state: two conflict-free systems declaring only
// read-only access to the same component never conflict (access.go's
// ConflictsWith), so the scheduler may legally pack them into the same
// stage and run them concurrently, both calling Read on this same cached
// instance. Read therefore allocates its own scratch slice per call rather
// than reusing a field.
type ComponentReader[T any] struct {
	archetype *archetype
	cc        *componentColumns
}

// Read reconstructs the component value stored at row.
func (r *ComponentReader[T]) Read(row int) T {
	r.checkRow(row)
	scratch := make([]reflect.Value, len(r.cc.columns))
	for i, col := range r.cc.columns {
		scratch[i] = col.get(row)
	}
	return reconstructTyped[T](r.cc.info, scratch)
}

func (r *ComponentReader[T]) checkRow(row int) {
	if row < 0 || row >= r.archetype.store.size {
		panic(tracedErr(RowOutOfBoundsError{Row: row, Size: r.archetype.store.size}))
	}
}

// ComponentWriter is a typed, read-write handle over one component type's
// columns within one archetype. Write decomposes the value and stores each
// field with immediate, visible-to-subsequent-reads semantics; no cross
// system/thread sharing of one archetype's columns happens within a stage
// (spec §4.1/§5), so a plain store is sufficient for correctness. Like
// ComponentReader, it is cached and shared world-wide, so Read/Write use a
// freshly allocated scratch slice per call instead of a shared field.
type ComponentWriter[T any] struct {
	archetype *archetype
	cc        *componentColumns
}

// Read reconstructs the component value stored at row.
func (w *ComponentWriter[T]) Read(row int) T {
	w.checkRow(row)
	scratch := make([]reflect.Value, len(w.cc.columns))
	for i, col := range w.cc.columns {
		scratch[i] = col.get(row)
	}
	return reconstructTyped[T](w.cc.info, scratch)
}

// Write decomposes value into this component's columns at row.
func (w *ComponentWriter[T]) Write(row int, value T) {
	w.checkRow(row)
	scratch := make([]reflect.Value, len(w.cc.columns))
	for i, col := range w.cc.columns {
		scratch[i] = col.get(row)
	}
	decomposeTyped(w.cc.info, value, scratch)
}

func (w *ComponentWriter[T]) checkRow(row int) {
	if row < 0 || row >= w.archetype.store.size {
		panic(tracedErr(RowOutOfBoundsError{Row: row, Size: w.archetype.store.size}))
	}
}
