package ecs_test

import "github.com/plus3/viztris/ecs"

// Common test component types
type Position struct {
	X, Y int
}

type Velocity struct {
	DX, DY int
}

type Health struct {
	Current int
	Max     int
}

type Frozen struct{}

type Score int32

type Label string

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Frozen](registry)
	ecs.RegisterComponent[Score](registry)
	ecs.RegisterComponent[Label](registry)
	return registry
}
