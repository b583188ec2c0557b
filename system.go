package ecs

// Mode is a system's lifecycle category: a scheduler computes stages
// independently per mode and runs all startup stages, then update stages on
// each ExecuteUpdate call, then all shutdown stages (spec §5).
type Mode int

const (
	ModeUpdate Mode = iota
	ModeStartup
	ModeShutdown
)

// SystemFunc is a system body: given the world and a factory for building
// queries against it, it does its work and reports failure via error.
type SystemFunc func(w *World, qf QueryFactory) error

// System is an immutable named unit of work carrying a declared access
// descriptor, a lifecycle mode, and a body. Two systems conflict iff their
// access descriptors do (§4.2); the scheduler uses that relation, plus any
// explicit orderings, to compute conflict-free stages.
type System struct {
	name    string
	access  AccessDescriptor
	mode    Mode
	execute SystemFunc
}

// Name returns the system's name.
func (s *System) Name() string { return s.name }

// Mode returns the system's lifecycle mode.
func (s *System) Mode() Mode { return s.mode }

// ConflictsWith reports whether s and other declare conflicting access.
func (s *System) ConflictsWith(other *System) bool {
	return s.access.ConflictsWith(other.access)
}

// SystemBuilder builds a System. Grounded on the teacher's builder-style
// construction idiom (component.go's accessor builders), generalized to
// system declarations.
type SystemBuilder struct {
	name    string
	builder accessDescriptorBuilder
	mode    Mode
	execute SystemFunc
}

// NewSystemBuilder starts building a system named name, defaulting to
// ModeUpdate.
func NewSystemBuilder(name string) *SystemBuilder {
	return &SystemBuilder{name: name, mode: ModeUpdate}
}

func (b *SystemBuilder) WithReadOnly(comps ...Component) *SystemBuilder {
	b.builder.addReadOnly(comps...)
	return b
}

func (b *SystemBuilder) WithMutable(comps ...Component) *SystemBuilder {
	b.builder.addMutable(comps...)
	return b
}

func (b *SystemBuilder) Without(comps ...Component) *SystemBuilder {
	b.builder.addExcluded(comps...)
	return b
}

// InMode sets the system's lifecycle mode (default ModeUpdate).
func (b *SystemBuilder) InMode(m Mode) *SystemBuilder {
	b.mode = m
	return b
}

// Execute sets the system's body.
func (b *SystemBuilder) Execute(fn SystemFunc) *SystemBuilder {
	b.execute = fn
	return b
}

// MustBuild returns the built System, panicking if no body was set — a
// programmer error caught at build time rather than at first execution.
func (b *SystemBuilder) MustBuild() *System {
	if b.execute == nil {
		panic(tracedErr(SystemFailedError{Name: b.name, Cause: errNoExecuteBody}))
	}
	return &System{
		name:    b.name,
		access:  b.builder.build(),
		mode:    b.mode,
		execute: b.execute,
	}
}

var errNoExecuteBody = systemBuildError("system has no Execute body")

type systemBuildError string

func (e systemBuildError) Error() string { return string(e) }
