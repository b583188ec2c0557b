package ecs

import "fmt"

// EntityRelationError is returned when SetParent is called on an entity
// that already has a parent.
type EntityRelationError struct {
	child, parent Entity
}

func (e EntityRelationError) Error() string {
	return fmt.Sprintf("child (%v) already has parent %v", e.child, e.parent)
}

// UnknownComponentError is returned when an accessor is requested for a
// component not present in the archetype.
type UnknownComponentError struct {
	ComponentType string
}

func (e UnknownComponentError) Error() string {
	return fmt.Sprintf("component %s is not present in this archetype", e.ComponentType)
}

// RowOutOfBoundsError is returned when a row index falls outside [0, size).
type RowOutOfBoundsError struct {
	Row, Size int
}

func (e RowOutOfBoundsError) Error() string {
	return fmt.Sprintf("row %d out of bounds for archetype of size %d", e.Row, e.Size)
}

// UnsupportedFieldTypeError is returned when a component type has a field
// whose kind cannot be decomposed into a primitive column.
type UnsupportedFieldTypeError struct {
	ComponentType string
	FieldName     string
	Kind          string
}

func (e UnsupportedFieldTypeError) Error() string {
	return fmt.Sprintf("component %s field %s has unsupported type %s", e.ComponentType, e.FieldName, e.Kind)
}

// DuplicateSystemNameError is returned at scheduler build time when two
// systems share a name.
type DuplicateSystemNameError struct {
	Name string
}

func (e DuplicateSystemNameError) Error() string {
	return fmt.Sprintf("duplicate system name: %s", e.Name)
}

// CircularDependencyError is returned at scheduler build time when the
// precedence edges form a cycle.
type CircularDependencyError struct {
	Name string
}

func (e CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected involving system: %s", e.Name)
}

// UnschedulableSetError is returned if the layer-assignment algorithm cannot
// make progress. Reachable only if the cycle check has a bug; kept for
// robustness per the spec.
type UnschedulableSetError struct {
	Remaining []string
}

func (e UnschedulableSetError) Error() string {
	return fmt.Sprintf("unschedulable system set: %v", e.Remaining)
}

// SystemFailedError wraps an error returned by a system body, surfaced at
// the owning stage's join barrier.
type SystemFailedError struct {
	Name  string
	Cause error
}

func (e SystemFailedError) Error() string {
	return fmt.Sprintf("system %q failed: %v", e.Name, e.Cause)
}

func (e SystemFailedError) Unwrap() error {
	return e.Cause
}

// SchedulerShutdownError is returned when execute is called on a scheduler
// that has already been shut down.
type SchedulerShutdownError struct{}

func (e SchedulerShutdownError) Error() string {
	return "scheduler has been shut down"
}

// StaleEntityError is returned when an operation targets an Entity handle
// whose generation no longer matches the world's record for that id (the
// entity was despawned and its id recycled). Entity lookup validity is
// called out by spec §3 as an external concern left to the implementer.
type StaleEntityError struct {
	Entity Entity
}

func (e StaleEntityError) Error() string {
	return fmt.Sprintf("entity %v is stale or unknown", e.Entity)
}
