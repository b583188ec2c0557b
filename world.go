package ecs

import (
	"reflect"
	"runtime"
	"sync"
)

// World owns every archetype in one simulation, the entity id/generation
// bookkeeping, and the query cache. It is the library's single mutable
// top-level object: systems receive it by pointer and it is safe for
// concurrent use by a scheduler's stage workers, since the only concurrent
// access within a stage is read-mostly (no two systems in the same stage
// touch the same component, by construction of the scheduler's conflict
// check).
//
// Grounded on the teacher's Storage (storage.go): an id-keyed slice of
// entity bookkeeping, a map from component-type mask to archetype, and a
// lock/generation pair guarding structural changes made mid-iteration. The
// teacher's table.Table-backed archetypes are replaced by this package's
// own archetype/columnStore.
type World struct {
	registry *TypeRegistry
	cache    *QueryCache

	mu         sync.Mutex
	archByMask map[BitSet]*archetype
	archList   []*archetype

	records []entityRecord // records[0] is unused; ids start at 1
	freeIDs []uint32

	iterDepth int
	commands  []func()
}

// NewWorld returns an empty world with its own type registry and query
// cache.
func NewWorld() *World {
	return &World{
		registry:   NewTypeRegistry(),
		cache:      NewQueryCache(),
		archByMask: make(map[BitSet]*archetype),
		records:    make([]entityRecord, 1),
	}
}

// Query starts building a query against this world.
func (w *World) Query() *QueryBuilder {
	return &QueryBuilder{world: w}
}

// Alive reports whether e still refers to a live entity in this world.
func (w *World) Alive(e Entity) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isAliveLocked(e)
}

func (w *World) isAliveLocked(e Entity) bool {
	if e.id == 0 || int(e.id) >= len(w.records) {
		return false
	}
	rec := &w.records[e.id]
	return rec.alive && rec.generation == e.generation
}

// locate returns the archetype and row currently backing e.
func (w *World) locate(e Entity) (*archetype, int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isAliveLocked(e) {
		return nil, 0, tracedErr(StaleEntityError{Entity: e})
	}
	rec := &w.records[e.id]
	return rec.archetype, rec.row, nil
}

// valuesByIndex resolves each component value's already-registered type
// index, returning both the per-index reflect.Value map addRow needs and
// the ordered list of indices present.
func (w *World) valuesByIndex(components []any) (map[uint32]reflect.Value, []uint32) {
	values := make(map[uint32]reflect.Value, len(components))
	idxs := make([]uint32, 0, len(components))
	for _, c := range components {
		t := reflect.TypeOf(c)
		idx, ok := w.registry.lookupType(t)
		if !ok {
			panic(tracedErr(UnknownComponentError{ComponentType: t.String()}))
		}
		if _, dup := values[idx]; !dup {
			idxs = append(idxs, idx)
		}
		values[idx] = reflect.ValueOf(c)
	}
	return values, idxs
}

// archetypeFor returns the archetype for exactly this component-index set,
// creating it (and invalidating the query cache) on first sight. Invariant
// I3: the component-type set is the archetype's identity.
func (w *World) archetypeFor(idxs []uint32) *archetype {
	set := bitset(idxs...)
	w.mu.Lock()
	defer w.mu.Unlock()
	if a, ok := w.archByMask[set]; ok {
		return a
	}
	infos := make(map[uint32]*componentInfo, len(idxs))
	for _, idx := range idxs {
		infos[idx] = w.registry.infoFor(idx)
	}
	a := newArchetype(archetypeID(len(w.archList)), idxs, infos)
	w.archByMask[set] = a
	w.archList = append(w.archList, a)
	w.cache.invalidate()
	return a
}

func (w *World) allocEntity() Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	if n := len(w.freeIDs); n > 0 {
		id := w.freeIDs[n-1]
		w.freeIDs = w.freeIDs[:n-1]
		rec := &w.records[id]
		rec.alive = true
		rec.hasParent = false
		rec.onDestroy = nil
		return Entity{id: id, generation: rec.generation}
	}
	id := uint32(len(w.records))
	w.records = append(w.records, entityRecord{alive: true})
	return Entity{id: id, generation: 0}
}

// deferOrRun enqueues fn for replay when the outermost query iteration
// unlocks if the world is currently locked, otherwise runs it immediately.
// This is the command-buffer generalization of the teacher's
// operation_queue.go, described in SPEC_FULL.md's World section.
func (w *World) deferOrRun(fn func()) {
	w.mu.Lock()
	if w.iterDepth > 0 {
		w.commands = append(w.commands, fn)
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()
	fn()
}

// lockForIteration marks the world as being walked by a query iteration;
// unlockAfterIteration reverses it and, once the outermost iteration has
// exited, replays any commands queued while locked.
func (w *World) lockForIteration() {
	w.mu.Lock()
	w.iterDepth++
	w.mu.Unlock()
}

func (w *World) unlockAfterIteration() {
	w.mu.Lock()
	w.iterDepth--
	var pending []func()
	if w.iterDepth == 0 && len(w.commands) > 0 {
		pending = w.commands
		w.commands = nil
	}
	w.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

// Spawn creates a new entity carrying the given component values (each of
// whose concrete type must already have been registered via
// RegisterComponent), placing it in the archetype for exactly that
// component-type set.
func (w *World) Spawn(components ...any) Entity {
	values, idxs := w.valuesByIndex(components)
	e := w.allocEntity()
	w.deferOrRun(func() {
		arch := w.archetypeFor(idxs)
		w.mu.Lock()
		row := arch.store.addRow(values)
		arch.entities = append(arch.entities, e)
		w.records[e.id].archetype = arch
		w.records[e.id].row = row
		w.mu.Unlock()
	})
	return e
}

// SpawnBatch creates n entities whose component values come from suppliers,
// one supplier per component type, each called with the entity's index
// within the batch (0..n). Suppliers may be invoked concurrently across
// entities; per entity i, every supplier's i-th call runs on the same
// worker (the Open Question resolution recorded in SPEC_FULL.md), so the
// values produced for one entity are index-aligned even though several
// entities are built in parallel.
func (w *World) SpawnBatch(n int, suppliers ...func(i int) any) []Entity {
	if n <= 0 || len(suppliers) == 0 {
		return nil
	}
	entities := make([]Entity, n)
	values := make([]map[uint32]reflect.Value, n)
	var idxs []uint32

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	var idxOnce sync.Once
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			comps := make([]any, len(suppliers))
			for i := start; i < end; i++ {
				for s, supplier := range suppliers {
					comps[s] = supplier(i)
				}
				vals, iv := w.valuesByIndex(comps)
				values[i] = vals
				idxOnce.Do(func() { idxs = iv })
			}
		}(start, end)
	}
	wg.Wait()

	// archetypeFor is itself a structural mutation (it may create a new
	// archetype and invalidate the query cache), so — like Spawn — it must
	// run inside the deferred command, not eagerly: issuing SpawnBatch from
	// inside a running query callback must not touch archList mid-iteration.
	// The first replayed command resolves and caches it for the rest.
	var arch *archetype
	for i := 0; i < n; i++ {
		e := w.allocEntity()
		entities[i] = e
		vals := values[i]
		w.deferOrRun(func() {
			if arch == nil {
				arch = w.archetypeFor(idxs)
			}
			w.mu.Lock()
			row := arch.store.addRow(vals)
			arch.entities = append(arch.entities, e)
			w.records[e.id].archetype = arch
			w.records[e.id].row = row
			w.mu.Unlock()
		})
	}
	return entities
}

// Despawn removes e from its archetype (swap-remove with the last row) and
// recycles its id with a bumped generation. If e carried a destroy
// callback, it runs after the row is removed.
func (w *World) Despawn(e Entity) error {
	w.mu.Lock()
	if !w.isAliveLocked(e) {
		w.mu.Unlock()
		return tracedErr(StaleEntityError{Entity: e})
	}
	w.mu.Unlock()

	w.deferOrRun(func() {
		w.mu.Lock()
		rec := &w.records[e.id]
		if !rec.alive {
			w.mu.Unlock()
			return
		}
		arch := rec.archetype
		row := rec.row
		movedFrom := arch.store.removeRow(row)
		if movedFrom != row {
			moved := arch.entities[movedFrom]
			arch.entities[row] = moved
			w.records[moved.id].row = row
		}
		arch.entities = arch.entities[:len(arch.entities)-1]

		onDestroy := rec.onDestroy
		rec.alive = false
		rec.generation++
		rec.archetype = nil
		rec.row = -1
		rec.hasParent = false
		rec.onDestroy = nil
		w.freeIDs = append(w.freeIDs, e.id)
		w.mu.Unlock()

		if onDestroy != nil {
			onDestroy(e)
		}
	})
	return nil
}

// SetParent records parent as e's parent. Intra-world bookkeeping only; see
// SPEC_FULL.md's supplemented relationship feature, adapted from the
// teacher's relationships struct.
func (w *World) SetParent(e, parent Entity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isAliveLocked(e) {
		return tracedErr(StaleEntityError{Entity: e})
	}
	if !w.isAliveLocked(parent) {
		return tracedErr(StaleEntityError{Entity: parent})
	}
	rec := &w.records[e.id]
	if rec.hasParent {
		return tracedErr(EntityRelationError{child: e, parent: rec.parent})
	}
	rec.parent = parent
	rec.hasParent = true
	return nil
}

// Parent returns e's parent, if any.
func (w *World) Parent(e Entity) (Entity, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isAliveLocked(e) {
		return Entity{}, false
	}
	rec := &w.records[e.id]
	return rec.parent, rec.hasParent
}

// SetDestroyCallback registers a callback invoked when e is despawned.
func (w *World) SetDestroyCallback(e Entity, cb EntityDestroyCallback) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isAliveLocked(e) {
		return tracedErr(StaleEntityError{Entity: e})
	}
	w.records[e.id].onDestroy = cb
	return nil
}
