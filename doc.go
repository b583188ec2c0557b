/*
Package ecs provides a data-oriented Entity Component System: a columnar,
archetype-based component store built on primitive-field decomposition, and
an automatic parallel system scheduler that derives a safe execution plan
from each system's declared component access.

Core Concepts:

  - Entity: an opaque (id, generation) handle for a game object.
  - Component: a record-like value type whose fields are primitive or string.
  - Archetype: the set of entities sharing exactly one component-type set,
    stored column-by-column (one array per field) for cache locality.
  - Query: a declared access pattern (include/read-only/mutable/exclude)
    that resolves to the matching archetypes.
  - System: a named unit of work with a declared access pattern; the
    Scheduler derives conflict-free stages from a set of systems and runs
    each stage's systems concurrently.

Basic Usage:

	world := ecs.NewWorld()

	position := ecs.RegisterComponent[Position](world)
	velocity := ecs.RegisterComponent[Velocity](world)

	world.SpawnBatch(100,
		func(i int) any { return Position{} },
		func(i int) any { return Velocity{X: 1} },
	)

	move := ecs.NewSystemBuilder("move").
		WithMutable(position).
		WithReadOnly(velocity).
		Execute(func(w *ecs.World, qf ecs.QueryFactory) error {
			q := qf.Query().WithMutable(position).WithReadOnly(velocity).Build()
			ecs.ForEach2(q, func(pos *ecs.Rw[Position], vel *ecs.Ro[Velocity]) {
				v := vel.Get()
				pos.Update(func(p Position) Position {
					p.X += v.X
					p.Y += v.Y
					return p
				})
			})
			return nil
		}).
		MustBuild()

	scheduler := ecs.NewSchedulerBuilder().AddSystem(move).MustBuild()
	scheduler.ExecuteUpdate(world)

ecs is a standalone library: it has no opinion on rendering, networking, or
persistence. Those are external collaborators.
*/
package ecs
