package ecs

import "testing"

// TestAccessDescriptorConflictSymmetry checks spec §4.2's conflict predicate
// across the cases that matter: disjoint read-only access never conflicts,
// any overlap touching a mutable set always does, and the relation is
// symmetric regardless of which side declares the mutable access.
func TestAccessDescriptorConflictSymmetry(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)
	velocity := RegisterComponent[Velocity](w)
	health := RegisterComponent[Health](w)

	build := func(fn func(b *accessDescriptorBuilder)) AccessDescriptor {
		var b accessDescriptorBuilder
		fn(&b)
		return b.build()
	}

	tests := []struct {
		name     string
		a, b     AccessDescriptor
		conflict bool
	}{
		{
			name: "disjoint read-only never conflicts",
			a:    build(func(b *accessDescriptorBuilder) { b.addReadOnly(position) }),
			b:    build(func(b *accessDescriptorBuilder) { b.addReadOnly(velocity) }),
		},
		{
			name:     "shared read-only never conflicts",
			a:        build(func(b *accessDescriptorBuilder) { b.addReadOnly(position) }),
			b:        build(func(b *accessDescriptorBuilder) { b.addReadOnly(position) }),
			conflict: false,
		},
		{
			name:     "mutable vs mutable on same component conflicts",
			a:        build(func(b *accessDescriptorBuilder) { b.addMutable(position) }),
			b:        build(func(b *accessDescriptorBuilder) { b.addMutable(position) }),
			conflict: true,
		},
		{
			name:     "mutable vs read-only on same component conflicts",
			a:        build(func(b *accessDescriptorBuilder) { b.addMutable(position) }),
			b:        build(func(b *accessDescriptorBuilder) { b.addReadOnly(position) }),
			conflict: true,
		},
		{
			name:     "read-only vs mutable on same component conflicts (reversed)",
			a:        build(func(b *accessDescriptorBuilder) { b.addReadOnly(position) }),
			b:        build(func(b *accessDescriptorBuilder) { b.addMutable(position) }),
			conflict: true,
		},
		{
			name:     "mutable on disjoint components never conflicts",
			a:        build(func(b *accessDescriptorBuilder) { b.addMutable(position) }),
			b:        build(func(b *accessDescriptorBuilder) { b.addMutable(velocity) }),
			conflict: false,
		},
		{
			name: "exclusion sets never participate",
			a:    build(func(b *accessDescriptorBuilder) { b.addMutable(position); b.addExcluded(health) }),
			b:    build(func(b *accessDescriptorBuilder) { b.addMutable(health) }),
			conflict: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.ConflictsWith(tt.b); got != tt.conflict {
				t.Fatalf("a.ConflictsWith(b) = %v, want %v", got, tt.conflict)
			}
			if got := tt.b.ConflictsWith(tt.a); got != tt.conflict {
				t.Fatalf("b.ConflictsWith(a) (symmetry) = %v, want %v", got, tt.conflict)
			}
		})
	}
}
