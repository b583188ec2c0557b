package ecs

// QueryFactory is handed to a system's execute closure so system bodies
// build queries against the world they were invoked with, without closing
// over *World directly. Grounded on the teacher's factory.go, which played
// the same "handed to callers instead of letting them reach into internals"
// role for constructing accessors.
type QueryFactory struct {
	world *World
}

func (qf QueryFactory) Query() *QueryBuilder { return qf.world.Query() }

// QueryBuilder accumulates include/read-only/mutable/excluded component
// sets (spec §4.3); Build freezes them into an immutable Query.
type QueryBuilder struct {
	world   *World
	builder accessDescriptorBuilder
	include []uint32
	seen    map[uint32]bool
}

func (q *QueryBuilder) addInclude(idx uint32) {
	if q.seen == nil {
		q.seen = make(map[uint32]bool)
	}
	if q.seen[idx] {
		return
	}
	q.seen[idx] = true
	q.include = append(q.include, idx)
}

// With adds components to the query's include set without tagging access.
func (q *QueryBuilder) With(comps ...Component) *QueryBuilder {
	for _, c := range comps {
		q.addInclude(c.typeIndex())
	}
	return q
}

// WithReadOnly adds components to include and tags them read-only.
func (q *QueryBuilder) WithReadOnly(comps ...Component) *QueryBuilder {
	q.With(comps...)
	q.builder.addReadOnly(comps...)
	return q
}

// WithMutable adds components to include and tags them mutable.
func (q *QueryBuilder) WithMutable(comps ...Component) *QueryBuilder {
	q.With(comps...)
	q.builder.addMutable(comps...)
	return q
}

// Without adds components to the excluded set.
func (q *QueryBuilder) Without(comps ...Component) *QueryBuilder {
	q.builder.addExcluded(comps...)
	return q
}

// Build freezes the builder into a Query.
func (q *QueryBuilder) Build() *Query {
	include := append([]uint32(nil), q.include...)
	return &Query{world: q.world, include: include, access: q.builder.build()}
}

// Query is a built, reusable access shape plus iteration operations. A
// Query never mutates itself: Modify/ModifyIf operate on a private
// temporary copy so the original's tagging is unaffected on every exit
// path, satisfying spec §4.4's "restore prior tagging" requirement by
// construction rather than by explicit rollback.
type Query struct {
	world   *World
	include []uint32
	access  AccessDescriptor
}

// matchingArchetypes resolves (and caches) the archetype list for this
// query's shape plus any additional component indices an iteration helper
// requires beyond what was explicitly included (spec §4.3).
func (q *Query) matchingArchetypes(additional []uint32) []*archetype {
	key := queryCacheKey{
		include:    bitset(q.include...),
		excluded:   q.access.excluded,
		additional: bitset(additional...),
	}
	if archs, ok := q.world.cache.get(key); ok {
		return archs
	}

	required := make([]uint32, 0, len(q.include)+len(additional))
	required = append(required, q.include...)
	required = append(required, additional...)
	requiredSet := bitset(required...)

	q.world.mu.Lock()
	archList := append([]*archetype(nil), q.world.archList...)
	q.world.mu.Unlock()

	var matched []*archetype
	for _, a := range archList {
		if containsAll(a.componentSet, requiredSet) && disjoint(a.componentSet, q.access.excluded) {
			matched = append(matched, a)
		}
	}
	q.world.cache.put(key, matched)
	return matched
}

// Count sums the size of every matching archetype.
func (q *Query) Count() int {
	total := 0
	for _, a := range q.matchingArchetypes(nil) {
		total += a.Size()
	}
	return total
}

// Any reports whether any matching archetype has at least one row.
func (q *Query) Any() bool {
	for _, a := range q.matchingArchetypes(nil) {
		if a.Size() > 0 {
			return true
		}
	}
	return false
}

func (q *Query) cloneWithMutable(idx uint32) *Query {
	include := append([]uint32(nil), q.include...)
	found := false
	for _, e := range include {
		if e == idx {
			found = true
			break
		}
	}
	if !found {
		include = append(include, idx)
	}
	access := q.access
	access.mutable.Mark(idx)
	return &Query{world: q.world, include: include, access: access}
}

// Modify temporarily tags h's component as included+mutable and rewrites
// every matching row in place to f(current value).
func Modify[T any](q *Query, h ComponentHandle[T], f func(T) T) {
	tmp := q.cloneWithMutable(h.typeIndex())
	q.world.lockForIteration()
	defer q.world.unlockAfterIteration()
	w := newSlot[*Rw[T]]()
	for _, a := range tmp.matchingArchetypes(nil) {
		w.rebindArchetype(a, h.typeIndex())
		for row := 0; row < a.Size(); row++ {
			w.bindRow(row)
			w.Set(f(w.Get()))
		}
	}
}

// ModifyIf is Modify restricted to rows for which pred holds.
func ModifyIf[T any](q *Query, h ComponentHandle[T], pred func(T) bool, f func(T) T) {
	tmp := q.cloneWithMutable(h.typeIndex())
	q.world.lockForIteration()
	defer q.world.unlockAfterIteration()
	w := newSlot[*Rw[T]]()
	for _, a := range tmp.matchingArchetypes(nil) {
		w.rebindArchetype(a, h.typeIndex())
		for row := 0; row < a.Size(); row++ {
			w.bindRow(row)
			cur := w.Get()
			if pred(cur) {
				w.Set(f(cur))
			}
		}
	}
}

// ForEachValue1 is the "unwrapped" read-only scan overload (spec §4.4):
// the callback receives the component value directly, with no wrapper.
func ForEachValue1[A any](q *Query, ha ComponentHandle[A], fn func(A)) {
	q.world.lockForIteration()
	defer q.world.unlockAfterIteration()
	idxA := ha.typeIndex()
	for _, arch := range q.matchingArchetypes([]uint32{idxA}) {
		ra := reader[A](arch, idxA)
		for row := 0; row < arch.Size(); row++ {
			fn(ra.Read(row))
		}
	}
}

// ForEachValue2 is the two-component unwrapped read-only scan overload.
func ForEachValue2[A, B any](q *Query, ha ComponentHandle[A], hb ComponentHandle[B], fn func(A, B)) {
	q.world.lockForIteration()
	defer q.world.unlockAfterIteration()
	idxA, idxB := ha.typeIndex(), hb.typeIndex()
	for _, arch := range q.matchingArchetypes([]uint32{idxA, idxB}) {
		ra := reader[A](arch, idxA)
		rb := reader[B](arch, idxB)
		for row := 0; row < arch.Size(); row++ {
			fn(ra.Read(row), rb.Read(row))
		}
	}
}

// Results1 materializes matching rows' values for one component.
func Results1[A any](q *Query, ha ComponentHandle[A]) []A {
	idxA := ha.typeIndex()
	var out []A
	for _, arch := range q.matchingArchetypes([]uint32{idxA}) {
		ra := reader[A](arch, idxA)
		for row := 0; row < arch.Size(); row++ {
			out = append(out, ra.Read(row))
		}
	}
	return out
}

// Pair is the 2-tuple result element of Results2.
type Pair[A, B any] struct {
	A A
	B B
}

// Results2 materializes matching rows as an ordered sequence of 2-tuples
// (spec §4.4's results_n); iteration order is per-archetype then per-row
// within each archetype, with no guarantee across archetypes.
func Results2[A, B any](q *Query, ha ComponentHandle[A], hb ComponentHandle[B]) []Pair[A, B] {
	idxA, idxB := ha.typeIndex(), hb.typeIndex()
	var out []Pair[A, B]
	for _, arch := range q.matchingArchetypes([]uint32{idxA, idxB}) {
		ra := reader[A](arch, idxA)
		rb := reader[B](arch, idxB)
		for row := 0; row < arch.Size(); row++ {
			out = append(out, Pair[A, B]{A: ra.Read(row), B: rb.Read(row)})
		}
	}
	return out
}

// ForEach1 is the single-component typed iteration overload. A is *Ro[X]
// or *Rw[X] (see wrapper.go); which one the caller instantiates determines
// whether a reader or writer backs the row.
func ForEach1[A slot](q *Query, fn func(A)) {
	q.world.lockForIteration()
	defer q.world.unlockAfterIteration()
	a1 := newSlot[A]()
	idx1 := a1.componentIndex(q.world.registry)
	for _, arch := range q.matchingArchetypes([]uint32{idx1}) {
		a1.rebindArchetype(arch, idx1)
		for row := 0; row < arch.Size(); row++ {
			a1.bindRow(row)
			fn(a1)
		}
	}
}

// ForEach2 is the two-component typed iteration overload.
func ForEach2[A, B slot](q *Query, fn func(A, B)) {
	q.world.lockForIteration()
	defer q.world.unlockAfterIteration()
	a1, a2 := newSlot[A](), newSlot[B]()
	idx1 := a1.componentIndex(q.world.registry)
	idx2 := a2.componentIndex(q.world.registry)
	for _, arch := range q.matchingArchetypes([]uint32{idx1, idx2}) {
		a1.rebindArchetype(arch, idx1)
		a2.rebindArchetype(arch, idx2)
		for row := 0; row < arch.Size(); row++ {
			a1.bindRow(row)
			a2.bindRow(row)
			fn(a1, a2)
		}
	}
}

// ForEach3 is the three-component typed iteration overload.
func ForEach3[A, B, C slot](q *Query, fn func(A, B, C)) {
	q.world.lockForIteration()
	defer q.world.unlockAfterIteration()
	a1, a2, a3 := newSlot[A](), newSlot[B](), newSlot[C]()
	idx1 := a1.componentIndex(q.world.registry)
	idx2 := a2.componentIndex(q.world.registry)
	idx3 := a3.componentIndex(q.world.registry)
	for _, arch := range q.matchingArchetypes([]uint32{idx1, idx2, idx3}) {
		a1.rebindArchetype(arch, idx1)
		a2.rebindArchetype(arch, idx2)
		a3.rebindArchetype(arch, idx3)
		for row := 0; row < arch.Size(); row++ {
			a1.bindRow(row)
			a2.bindRow(row)
			a3.bindRow(row)
			fn(a1, a2, a3)
		}
	}
}

// ForEach4 is the four-component typed iteration overload.
func ForEach4[A, B, C, D slot](q *Query, fn func(A, B, C, D)) {
	q.world.lockForIteration()
	defer q.world.unlockAfterIteration()
	a1, a2, a3, a4 := newSlot[A](), newSlot[B](), newSlot[C](), newSlot[D]()
	idx1 := a1.componentIndex(q.world.registry)
	idx2 := a2.componentIndex(q.world.registry)
	idx3 := a3.componentIndex(q.world.registry)
	idx4 := a4.componentIndex(q.world.registry)
	for _, arch := range q.matchingArchetypes([]uint32{idx1, idx2, idx3, idx4}) {
		a1.rebindArchetype(arch, idx1)
		a2.rebindArchetype(arch, idx2)
		a3.rebindArchetype(arch, idx3)
		a4.rebindArchetype(arch, idx4)
		for row := 0; row < arch.Size(); row++ {
			a1.bindRow(row)
			a2.bindRow(row)
			a3.bindRow(row)
			a4.bindRow(row)
			fn(a1, a2, a3, a4)
		}
	}
}

// ForEach5 is the five-component typed iteration overload.
func ForEach5[A, B, C, D, E slot](q *Query, fn func(A, B, C, D, E)) {
	q.world.lockForIteration()
	defer q.world.unlockAfterIteration()
	a1, a2, a3, a4, a5 := newSlot[A](), newSlot[B](), newSlot[C](), newSlot[D](), newSlot[E]()
	idx1 := a1.componentIndex(q.world.registry)
	idx2 := a2.componentIndex(q.world.registry)
	idx3 := a3.componentIndex(q.world.registry)
	idx4 := a4.componentIndex(q.world.registry)
	idx5 := a5.componentIndex(q.world.registry)
	for _, arch := range q.matchingArchetypes([]uint32{idx1, idx2, idx3, idx4, idx5}) {
		a1.rebindArchetype(arch, idx1)
		a2.rebindArchetype(arch, idx2)
		a3.rebindArchetype(arch, idx3)
		a4.rebindArchetype(arch, idx4)
		a5.rebindArchetype(arch, idx5)
		for row := 0; row < arch.Size(); row++ {
			a1.bindRow(row)
			a2.bindRow(row)
			a3.bindRow(row)
			a4.bindRow(row)
			a5.bindRow(row)
			fn(a1, a2, a3, a4, a5)
		}
	}
}

// ForEach6 is the six-component typed iteration overload, the last arity
// with a dedicated generic overload; 7+ uses ForEachN's untyped slot slice
// (spec §4.4).
func ForEach6[A, B, C, D, E, F slot](q *Query, fn func(A, B, C, D, E, F)) {
	q.world.lockForIteration()
	defer q.world.unlockAfterIteration()
	a1, a2, a3 := newSlot[A](), newSlot[B](), newSlot[C]()
	a4, a5, a6 := newSlot[D](), newSlot[E](), newSlot[F]()
	idx1 := a1.componentIndex(q.world.registry)
	idx2 := a2.componentIndex(q.world.registry)
	idx3 := a3.componentIndex(q.world.registry)
	idx4 := a4.componentIndex(q.world.registry)
	idx5 := a5.componentIndex(q.world.registry)
	idx6 := a6.componentIndex(q.world.registry)
	for _, arch := range q.matchingArchetypes([]uint32{idx1, idx2, idx3, idx4, idx5, idx6}) {
		a1.rebindArchetype(arch, idx1)
		a2.rebindArchetype(arch, idx2)
		a3.rebindArchetype(arch, idx3)
		a4.rebindArchetype(arch, idx4)
		a5.rebindArchetype(arch, idx5)
		a6.rebindArchetype(arch, idx6)
		for row := 0; row < arch.Size(); row++ {
			a1.bindRow(row)
			a2.bindRow(row)
			a3.bindRow(row)
			a4.bindRow(row)
			a5.bindRow(row)
			a6.bindRow(row)
			fn(a1, a2, a3, a4, a5, a6)
		}
	}
}

// RoSlot and RwSlot construct a fresh read-only/mutable slot for use with
// ForEachN, for callers needing 7 or more components (spec §4.4: "for 7+,
// an untyped array of wrappers is used").
func RoSlot[T any]() slot { return newSlot[*Ro[T]]() }
func RwSlot[T any]() slot { return newSlot[*Rw[T]]() }

// ForEachN is the untyped-array iteration form for arbitrary arity. Each
// element of slots must come from RoSlot/RwSlot and is rebound/reused
// exactly as ForEach1..6 rebind their typed slots.
func ForEachN(q *Query, slots []slot, fn func([]slot)) {
	q.world.lockForIteration()
	defer q.world.unlockAfterIteration()
	idxs := make([]uint32, len(slots))
	for i, s := range slots {
		idxs[i] = s.componentIndex(q.world.registry)
	}
	for _, arch := range q.matchingArchetypes(idxs) {
		for i, s := range slots {
			s.rebindArchetype(arch, idxs[i])
		}
		for row := 0; row < arch.Size(); row++ {
			for _, s := range slots {
				s.bindRow(row)
			}
			fn(slots)
		}
	}
}
