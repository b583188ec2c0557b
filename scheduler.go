package ecs

import (
	"fmt"
	"sync"
	"time"
)

// edge is an explicit "from must stage-precede to" precedence requirement,
// as produced by RunInSequence.
type edge struct {
	from, to *System
}

// SchedulerBuilder accumulates systems, explicit orderings, and executor
// configuration; Build (or MustBuild) freezes per-mode stages once and for
// all — spec §3's "Scheduler stages: computed once at build, immutable for
// the scheduler's lifetime."
//
// Grounded on plus3-ooftn/ecs/scheduler.go's "Register systems, then
// Run(ctx, interval)" shape, generalized from a single flat system list to
// this spec's mode-partitioned, conflict-staged model.
type SchedulerBuilder struct {
	systems  []*System
	explicit []edge
	executor *Executor
	parallel *bool
}

// NewSchedulerBuilder starts building a scheduler.
func NewSchedulerBuilder() *SchedulerBuilder {
	return &SchedulerBuilder{}
}

// AddSystem appends one system in insertion order.
func (b *SchedulerBuilder) AddSystem(s *System) *SchedulerBuilder {
	b.systems = append(b.systems, s)
	return b
}

// AddSystems appends several systems in insertion order.
func (b *SchedulerBuilder) AddSystems(systems ...*System) *SchedulerBuilder {
	for _, s := range systems {
		b.AddSystem(s)
	}
	return b
}

// RunInSequence records an explicit ordering chain, expanding to all
// adjacent pairs (spec §4.6).
func (b *SchedulerBuilder) RunInSequence(systems ...*System) *SchedulerBuilder {
	for i := 0; i+1 < len(systems); i++ {
		b.explicit = append(b.explicit, edge{from: systems[i], to: systems[i+1]})
	}
	return b
}

// WithExecutor supplies an external executor instead of the default
// hardware-concurrency-sized pool.
func (b *SchedulerBuilder) WithExecutor(e *Executor) *SchedulerBuilder {
	b.executor = e
	return b
}

// Parallel overrides Config's default parallel-execution setting for this
// scheduler: if false, every stage runs sequentially regardless of size.
func (b *SchedulerBuilder) Parallel(v bool) *SchedulerBuilder {
	b.parallel = &v
	return b
}

// Build computes per-mode stages and returns the frozen Scheduler, or the
// first build-time error encountered (DuplicateSystemName, CircularDependency,
// UnschedulableSet).
func (b *SchedulerBuilder) Build() (*Scheduler, error) {
	seen := make(map[string]bool, len(b.systems))
	for _, s := range b.systems {
		if seen[s.name] {
			return nil, tracedErr(DuplicateSystemNameError{Name: s.name})
		}
		seen[s.name] = true
	}

	startup, err := computeStages(b.systems, b.explicit, ModeStartup)
	if err != nil {
		return nil, err
	}
	update, err := computeStages(b.systems, b.explicit, ModeUpdate)
	if err != nil {
		return nil, err
	}
	shutdown, err := computeStages(b.systems, b.explicit, ModeShutdown)
	if err != nil {
		return nil, err
	}

	executor := b.executor
	if executor == nil {
		executor = DefaultExecutor()
	}
	parallel := Config.defaultParallel
	if b.parallel != nil {
		parallel = *b.parallel
	}

	return &Scheduler{
		startupStages:  startup,
		updateStages:   update,
		shutdownStages: shutdown,
		executor:       executor,
		parallel:       parallel,
	}, nil
}

// MustBuild is Build, panicking on a build-time error.
func (b *SchedulerBuilder) MustBuild() *Scheduler {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// computeStages runs spec §4.6's algorithm independently for one mode:
// build the precedence edge set (explicit orderings plus, for every earlier
// conflicting pair in user order, an implicit edge — every earlier
// conflicting system, not just the nearest, per §9), check for cycles, then
// greedily pack stages in original insertion order.
func computeStages(systems []*System, explicit []edge, mode Mode) ([][]*System, error) {
	filtered := make([]*System, 0, len(systems))
	for _, s := range systems {
		if s.mode == mode {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return nil, nil
	}

	inMode := make(map[*System]bool, len(filtered))
	for _, s := range filtered {
		inMode[s] = true
	}

	succ := make(map[*System]map[*System]bool, len(filtered))
	pred := make(map[*System]map[*System]bool, len(filtered))
	for _, s := range filtered {
		succ[s] = make(map[*System]bool)
		pred[s] = make(map[*System]bool)
	}
	addEdge := func(from, to *System) {
		if from == to {
			return
		}
		if !succ[from][to] {
			succ[from][to] = true
			pred[to][from] = true
		}
	}

	for _, e := range explicit {
		if inMode[e.from] && inMode[e.to] {
			addEdge(e.from, e.to)
		}
	}
	for i := 0; i < len(filtered); i++ {
		for j := i + 1; j < len(filtered); j++ {
			if filtered[i].ConflictsWith(filtered[j]) {
				addEdge(filtered[i], filtered[j])
			}
		}
	}

	if name, cyclic := findCycle(filtered, succ); cyclic {
		return nil, tracedErr(CircularDependencyError{Name: name})
	}

	remaining := make(map[*System]bool, len(filtered))
	predCount := make(map[*System]int, len(filtered))
	for _, s := range filtered {
		remaining[s] = true
		predCount[s] = len(pred[s])
	}

	var stages [][]*System
	for len(remaining) > 0 {
		var ready []*System
		for _, s := range filtered {
			if remaining[s] && predCount[s] == 0 {
				ready = append(ready, s)
			}
		}
		if len(ready) == 0 {
			names := make([]string, 0, len(remaining))
			for _, s := range filtered {
				if remaining[s] {
					names = append(names, s.name)
				}
			}
			return nil, tracedErr(UnschedulableSetError{Remaining: names})
		}

		var stage []*System
		for _, cand := range ready {
			conflicts := false
			for _, chosen := range stage {
				if cand.ConflictsWith(chosen) {
					conflicts = true
					break
				}
			}
			if !conflicts {
				stage = append(stage, cand)
			}
		}

		for _, s := range stage {
			delete(remaining, s)
			for nxt := range succ[s] {
				predCount[nxt]--
			}
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

// findCycle runs a DFS over succ looking for a back edge.
func findCycle(nodes []*System, succ map[*System]map[*System]bool) (string, bool) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[*System]int, len(nodes))

	var visit func(s *System) (string, bool)
	visit = func(s *System) (string, bool) {
		color[s] = gray
		for nxt := range succ[s] {
			switch color[nxt] {
			case gray:
				return nxt.name, true
			case white:
				if name, found := visit(nxt); found {
					return name, true
				}
			}
		}
		color[s] = black
		return "", false
	}

	for _, s := range nodes {
		if color[s] == white {
			if name, found := visit(s); found {
				return name, true
			}
		}
	}
	return "", false
}

// Scheduler runs the frozen per-mode stages computed at build time.
type Scheduler struct {
	startupStages  [][]*System
	updateStages   [][]*System
	shutdownStages [][]*System

	executor *Executor
	parallel bool

	mu       sync.Mutex
	isDown   bool
}

// Stages returns startup, update, then shutdown stages concatenated.
func (s *Scheduler) Stages() [][]*System {
	all := make([][]*System, 0, len(s.startupStages)+len(s.updateStages)+len(s.shutdownStages))
	all = append(all, s.startupStages...)
	all = append(all, s.updateStages...)
	all = append(all, s.shutdownStages...)
	return all
}

func (s *Scheduler) StartupStages() [][]*System  { return s.startupStages }
func (s *Scheduler) UpdateStages() [][]*System   { return s.updateStages }
func (s *Scheduler) ShutdownStages() [][]*System { return s.shutdownStages }

func (s *Scheduler) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isDown
}

// runOne invokes one system's body, wrapping any returned error. A panic in
// the body is recovered and reported as a SystemFailedError as well, so the
// stage's other systems still complete.
func runOne(sys *System, w *World) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("panic: %v", r)
			}
			err = SystemFailedError{Name: sys.name, Cause: tracedErr(cause)}
		}
	}()
	if err := sys.execute(w, QueryFactory{world: w}); err != nil {
		return SystemFailedError{Name: sys.name, Cause: err}
	}
	return nil
}

// runStages executes every stage of the given list in order; within a
// stage every system runs to completion even if a peer fails (the first
// failure is returned after the stage's join barrier), and a failing stage
// aborts any subsequent stage in this call (spec §5).
func (s *Scheduler) runStages(stages [][]*System, w *World) error {
	for _, stage := range stages {
		var err error
		if s.parallel && len(stage) > 1 {
			fns := make([]func() error, len(stage))
			for i, sys := range stage {
				sys := sys
				fns[i] = func() error { return runOne(sys, w) }
			}
			err = s.executor.RunStage(fns)
		} else {
			for _, sys := range stage {
				if e := runOne(sys, w); e != nil && err == nil {
					err = e
				}
			}
		}
		if err != nil {
			return tracedErr(err)
		}
	}
	return nil
}

// ExecuteStartup runs every startup stage in order.
func (s *Scheduler) ExecuteStartup(w *World) error {
	if s.isShutdown() {
		return tracedErr(SchedulerShutdownError{})
	}
	return s.runStages(s.startupStages, w)
}

// ExecuteUpdate runs every update stage in order. Intended to be called
// once per simulation tick.
func (s *Scheduler) ExecuteUpdate(w *World) error {
	if s.isShutdown() {
		return tracedErr(SchedulerShutdownError{})
	}
	return s.runStages(s.updateStages, w)
}

// ExecuteShutdown runs every shutdown stage in order.
func (s *Scheduler) ExecuteShutdown(w *World) error {
	if s.isShutdown() {
		return tracedErr(SchedulerShutdownError{})
	}
	return s.runStages(s.shutdownStages, w)
}

// Execute runs startup, then update once, then shutdown.
func (s *Scheduler) Execute(w *World) error {
	if err := s.ExecuteStartup(w); err != nil {
		return err
	}
	if err := s.ExecuteUpdate(w); err != nil {
		return err
	}
	return s.ExecuteShutdown(w)
}

// Shutdown marks the scheduler closed and tears down its executor. Further
// Execute* calls fail with SchedulerShutdownError.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.isDown = true
	s.mu.Unlock()
	s.executor.Shutdown()
}

// ShutdownAndAwait is Shutdown, blocking up to timeout for in-flight stage
// work to drain.
func (s *Scheduler) ShutdownAndAwait(timeout time.Duration) error {
	s.mu.Lock()
	s.isDown = true
	s.mu.Unlock()
	return s.executor.ShutdownAndAwait(timeout)
}
