package ecs_test

import (
	"fmt"
	"sort"

	"github.com/plus3/viztris/ecs"
)

// ExampleQuery demonstrates iterating every entity that carries a set of
// components. Iteration walks the smallest required table and probes the
// others.
func ExampleQuery() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	storage := ecs.NewStorage(registry)

	storage.Spawn(Position{X: 0, Y: 0}, Velocity{DX: 1, DY: 0})
	storage.Spawn(Position{X: 10, Y: 10}, Velocity{DX: 0, DY: 1}, Health{Current: 100, Max: 100})
	storage.Spawn(Position{X: 20, Y: 20}, Velocity{DX: -1, DY: -1})
	storage.Spawn(Position{X: 30, Y: 30})

	query := ecs.NewQuery[struct {
		*Position
		*Velocity
	}](storage)

	var moves []string
	for item := range query.Iter() {
		newX := item.Position.X + item.Velocity.DX
		newY := item.Position.Y + item.Velocity.DY
		moves = append(moves, fmt.Sprintf("Position (%d, %d) -> (%d, %d)", item.Position.X, item.Position.Y, newX, newY))
	}
	sort.Strings(moves)

	fmt.Println("Moving entities:")
	for _, m := range moves {
		fmt.Println(m)
	}

	// Output:
	// Moving entities:
	// Position (0, 0) -> (1, 0)
	// Position (10, 10) -> (10, 11)
	// Position (20, 20) -> (19, 19)
}

// ExampleQuery_optional shows an optional component and the entity id field.
func ExampleQuery_optional() {
	storage := ecs.NewStorage(newTestRegistry())

	storage.Spawn(Position{X: 1}, Health{Current: 7, Max: 10})
	storage.Spawn(Position{X: 2})

	query := ecs.NewQuery[struct {
		ecs.EntityId
		*Position
		Health *Health `ecs:"optional"`
	}](storage)

	var lines []string
	for item := range query.Iter() {
		if item.Health != nil {
			lines = append(lines, fmt.Sprintf("x=%d health=%d", item.Position.X, item.Health.Current))
		} else {
			lines = append(lines, fmt.Sprintf("x=%d no health", item.Position.X))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Println(l)
	}

	// Output:
	// x=1 health=7
	// x=2 no health
}
