package ecs

import "reflect"

// slot is satisfied by *Ro[T] and *Rw[T]: a per-entity handle over one
// component that iteration helpers (ForEach1..ForEach6) bind to the current
// archetype and row. A slot instance is allocated once per query invocation
// and reused across every row of every matching archetype (spec §4.4's
// wrapper lifecycle), which is why rebindArchetype/bindRow mutate in place
// rather than returning a new value.
type slot interface {
	componentIndex(r *TypeRegistry) uint32
	isMutable() bool
	rebindArchetype(a *archetype, idx uint32)
	bindRow(row int)
}

// newSlot default-constructs a pointer-typed slot (S is *Ro[T] or *Rw[T])
// without the caller needing to spell out the element type; Go generics has
// no constructor polymorphism, so this goes through reflect once per slot
// per ForEach1..ForEach6/Modify/ModifyIf call, or per RoSlot/RwSlot call
// (not per row).
func newSlot[S slot]() S {
	var zero S
	elem := reflect.TypeOf(zero).Elem()
	return reflect.New(elem).Interface().(S)
}

// Ro is a read-only wrapper over component T: Get reads the current row's
// value. Mutation operations are intentionally absent from this type (spec
// §4.4: "mutation operations are absent by type").
type Ro[T any] struct {
	reader *ComponentReader[T]
	row    int
}

func (w *Ro[T]) componentIndex(r *TypeRegistry) uint32 { return indexFor[T](r) }
func (w *Ro[T]) isMutable() bool                       { return false }

func (w *Ro[T]) rebindArchetype(a *archetype, idx uint32) {
	w.reader = reader[T](a, idx)
}

func (w *Ro[T]) bindRow(row int) {
	w.row = row
}

// Get returns the component's current value for the bound row.
func (w *Ro[T]) Get() T {
	return w.reader.Read(w.row)
}

// Rw is a mutable wrapper over component T. Get lazily reconstructs the
// value and caches it until the next bind/set; Set writes immediately and
// updates the cache; Update is Set(f(Get())).
type Rw[T any] struct {
	writer    *ComponentWriter[T]
	row       int
	cached    T
	hasCached bool
}

func (w *Rw[T]) componentIndex(r *TypeRegistry) uint32 { return indexFor[T](r) }
func (w *Rw[T]) isMutable() bool                       { return true }

func (w *Rw[T]) rebindArchetype(a *archetype, idx uint32) {
	w.writer = writer[T](a, idx)
}

// bindRow rebinds this wrapper to a new row, invalidating any cached value
// (spec §4.4's rebinding contract).
func (w *Rw[T]) bindRow(row int) {
	w.row = row
	w.hasCached = false
}

// Get lazily reconstructs (and caches) the component's current value.
func (w *Rw[T]) Get() T {
	if !w.hasCached {
		w.cached = w.writer.Read(w.row)
		w.hasCached = true
	}
	return w.cached
}

// Set writes value immediately and updates the cache.
func (w *Rw[T]) Set(value T) {
	w.writer.Write(w.row, value)
	w.cached = value
	w.hasCached = true
}

// Update sets the row's value to f(current value).
func (w *Rw[T]) Update(f func(T) T) {
	w.Set(f(w.Get()))
}
