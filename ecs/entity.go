package ecs

// EntityId identifies an entity. Ids are handed out in increasing order and
// never reused within a Storage; zero is never a valid id.
type EntityId uint64

// Valid reports whether the id could name an entity.
func (e EntityId) Valid() bool {
	return e != 0
}
