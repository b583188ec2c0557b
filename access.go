package ecs

// AccessDescriptor is an immutable triple of component-type bitsets
// (read-only, mutable, excluded) declared by a query or a system. Built via
// an append-only builder (accessDescriptorBuilder) and never mutated after.
type AccessDescriptor struct {
	readOnly BitSet
	mutable  BitSet
	excluded BitSet
}

// ConflictsWith implements spec §4.2's conflict predicate: two access
// descriptors conflict if either's mutable set intersects the other's
// mutable or read-only set. Exclusion sets never participate.
func (a AccessDescriptor) ConflictsWith(b AccessDescriptor) bool {
	if intersects(a.mutable, b.mutable) {
		return true
	}
	if intersects(a.mutable, b.readOnly) {
		return true
	}
	if intersects(b.mutable, a.readOnly) {
		return true
	}
	return false
}

// accessDescriptorBuilder accumulates read-only/mutable/excluded component
// sets. It is append-only: once a component is marked mutable it is not
// demoted back to read-only by a later with_read_only call, matching the
// teacher's pattern of monotonically-growing bitsets during query building.
type accessDescriptorBuilder struct {
	readOnly BitSet
	mutable  BitSet
	excluded BitSet
}

func (b *accessDescriptorBuilder) addReadOnly(comps ...Component) {
	for _, c := range comps {
		b.readOnly.Mark(c.typeIndex())
	}
}

func (b *accessDescriptorBuilder) addMutable(comps ...Component) {
	for _, c := range comps {
		b.mutable.Mark(c.typeIndex())
	}
}

func (b *accessDescriptorBuilder) addExcluded(comps ...Component) {
	for _, c := range comps {
		b.excluded.Mark(c.typeIndex())
	}
}

func (b *accessDescriptorBuilder) build() AccessDescriptor {
	return AccessDescriptor{readOnly: b.readOnly, mutable: b.mutable, excluded: b.excluded}
}
