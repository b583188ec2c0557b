package ecs

import "testing"

func TestSystemBuilderMustBuildPanicsWithoutExecuteBody(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected MustBuild to panic when no Execute body was set")
		}
	}()
	NewSystemBuilder("incomplete").MustBuild()
}

func TestSystemConflictsWithMatchesAccessDescriptor(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)

	a := NewSystemBuilder("a").WithMutable(position).Execute(func(w *World, qf QueryFactory) error { return nil }).MustBuild()
	b := NewSystemBuilder("b").WithReadOnly(position).Execute(func(w *World, qf QueryFactory) error { return nil }).MustBuild()
	c := NewSystemBuilder("c").InMode(ModeStartup).Execute(func(w *World, qf QueryFactory) error { return nil }).MustBuild()

	if !a.ConflictsWith(b) {
		t.Fatal("mutable vs read-only on the same component should conflict")
	}
	if a.ConflictsWith(c) {
		t.Fatal("systems with disjoint access should not conflict regardless of mode")
	}
	if c.Mode() != ModeStartup {
		t.Fatalf("Mode() = %v, want ModeStartup", c.Mode())
	}
	if a.Name() != "a" {
		t.Fatalf("Name() = %q, want %q", a.Name(), "a")
	}
}
