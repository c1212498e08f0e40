package ecs

import (
	"iter"
	"reflect"

	"github.com/kamstrup/intmap"
)

// ComponentRegistry manages component type registration for an ECS instance.
// Each Storage owns the registry it was created with, so independent game
// sessions never share component tables.
type ComponentRegistry struct {
	factories map[reflect.Type]func() table
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() table),
	}
}

// RegisterComponent registers a component type with the given registry.
// This must be called for each component type before it can be spawned.
func RegisterComponent[T any](r *ComponentRegistry) {
	r.factories[reflect.TypeFor[T]()] = func() table {
		return newBlockTable[T]()
	}
}

func (r *ComponentRegistry) factory(t reflect.Type) func() table {
	return r.factories[t]
}

// table is the type-erased view of a blockTable.
type table interface {
	put(id EntityId, item any) (added bool)
	get(id EntityId) any
	has(id EntityId) bool
	remove(id EntityId) bool
	len() int
	ids() iter.Seq[EntityId]
}

const blockSize = 64

// blockTable stores components of one type in fixed-size blocks so that
// pointers handed out by get stay valid while the table grows.
type blockTable[T any] struct {
	slots  *intmap.Map[EntityId, int]
	blocks []*[blockSize]T
	owners []EntityId
	free   []int
}

func newBlockTable[T any]() *blockTable[T] {
	return &blockTable[T]{
		slots: intmap.New[EntityId, int](blockSize),
	}
}

func (t *blockTable[T]) put(id EntityId, item any) bool {
	var value T
	switch v := item.(type) {
	case *T:
		value = *v
	case T:
		value = v
	default:
		panic("component " + reflect.TypeOf(item).String() + " stored in table for " + reflect.TypeFor[T]().String())
	}

	if slot, ok := t.slots.Get(id); ok {
		*t.at(slot) = value
		return false
	}

	var slot int
	if n := len(t.free); n > 0 {
		slot = t.free[n-1]
		t.free = t.free[:n-1]
		t.owners[slot] = id
	} else {
		slot = len(t.owners)
		t.owners = append(t.owners, id)
		if slot/blockSize >= len(t.blocks) {
			t.blocks = append(t.blocks, new([blockSize]T))
		}
	}

	*t.at(slot) = value
	t.slots.Put(id, slot)
	return true
}

func (t *blockTable[T]) at(slot int) *T {
	return &t.blocks[slot/blockSize][slot%blockSize]
}

// get returns a *T, or nil when the entity has no such component.
func (t *blockTable[T]) get(id EntityId) any {
	slot, ok := t.slots.Get(id)
	if !ok {
		return nil
	}
	return t.at(slot)
}

func (t *blockTable[T]) has(id EntityId) bool {
	return t.slots.Has(id)
}

func (t *blockTable[T]) remove(id EntityId) bool {
	slot, ok := t.slots.Get(id)
	if !ok {
		return false
	}
	var zero T
	*t.at(slot) = zero
	t.owners[slot] = 0
	t.free = append(t.free, slot)
	t.slots.Del(id)
	return true
}

func (t *blockTable[T]) len() int {
	return t.slots.Len()
}

// ids yields owners in slot order. Entities removed while iterating are
// skipped; entities added while iterating may or may not be visited.
func (t *blockTable[T]) ids() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for slot := 0; slot < len(t.owners); slot++ {
			id := t.owners[slot]
			if id == 0 {
				continue
			}
			if !yield(id) {
				return
			}
		}
	}
}
