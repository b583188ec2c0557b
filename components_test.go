package ecs

// Shared component types for world/query/access/scheduler tests.

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	HP int32
}
