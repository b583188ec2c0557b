package ecs_test

import (
	"fmt"

	"github.com/TheBitDrifter/ecs"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Name struct {
	Value string
}

// Example_basic shows registering components, spawning entities, and
// iterating over a query with a mutable and a read-only slot.
func Example_basic() {
	world := ecs.NewWorld()

	position := ecs.RegisterComponent[Position](world)
	velocity := ecs.RegisterComponent[Velocity](world)
	name := ecs.RegisterComponent[Name](world)

	world.SpawnBatch(5, func(i int) any { return Position{} })
	world.SpawnBatch(3, func(i int) any { return Position{} }, func(i int) any { return Velocity{} })

	named := world.Spawn(Position{X: 10, Y: 20}, Velocity{X: 1, Y: 2}, Name{Value: "Player"})

	moving := world.Query().WithMutable(position).WithReadOnly(velocity).Build()
	fmt.Printf("Found %d entities with position and velocity\n", moving.Count())

	ecs.ForEach2(moving, func(pos *ecs.Rw[Position], vel *ecs.Ro[Velocity]) {
		v := vel.Get()
		pos.Update(func(p Position) Position {
			p.X += v.X
			p.Y += v.Y
			return p
		})
	})

	pos, _ := position.GetFromEntity(world, named)
	nm, _ := name.GetFromEntity(world, named)
	fmt.Printf("Updated %s to position (%.1f, %.1f)\n", nm.Value, pos.X, pos.Y)

	// Output:
	// Found 4 entities with position and velocity
	// Updated Player to position (11.0, 22.0)
}

// Example_query shows With/Without and a count-only query.
func Example_query() {
	world := ecs.NewWorld()

	position := ecs.RegisterComponent[Position](world)
	velocity := ecs.RegisterComponent[Velocity](world)
	name := ecs.RegisterComponent[Name](world)

	world.SpawnBatch(3, func(i int) any { return Position{} })
	world.SpawnBatch(3, func(i int) any { return Position{} }, func(i int) any { return Velocity{} })
	world.SpawnBatch(3, func(i int) any { return Position{} }, func(i int) any { return Name{} })
	world.SpawnBatch(3,
		func(i int) any { return Position{} },
		func(i int) any { return Velocity{} },
		func(i int) any { return Name{} },
	)

	withVelocity := world.Query().WithReadOnly(position, velocity).Build()
	fmt.Printf("position+velocity query matched %d entities\n", withVelocity.Count())

	withoutVelocity := world.Query().WithReadOnly(position).Without(velocity).Build()
	fmt.Printf("position-without-velocity query matched %d entities\n", withoutVelocity.Count())

	// Output:
	// position+velocity query matched 6 entities
	// position-without-velocity query matched 6 entities
}
