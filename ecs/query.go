package ecs

import (
	"iter"
	"reflect"
)

// Query iterates the entities that carry a combination of components.
// The type T must be a struct whose fields are pointers to component types.
// An embedded EntityId field receives the entity's id. Named pointer fields
// can be marked optional with the `ecs:"optional"` tag; embedded ones are
// always required. All fields must be exported.
type Query[T any] struct {
	storage *Storage
	fields  []queryField
}

type queryField struct {
	index     int
	component reflect.Type
	optional  bool
	entityId  bool
}

var entityIdType = reflect.TypeFor[EntityId]()

// NewQuery creates a Query bound to the given storage.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init binds the Query to a storage and parses the shape of T. The Scheduler
// calls this for every Query field of a registered system.
func (q *Query[T]) Init(storage *Storage) {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("Query type parameter must be a struct")
	}

	fields := make([]queryField, 0, structType.NumField())
	required := 0
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() {
			panic("Query field " + field.Name + " must be exported")
		}

		if field.Type == entityIdType {
			fields = append(fields, queryField{index: i, entityId: true})
			continue
		}

		if field.Type.Kind() != reflect.Ptr {
			panic("Query struct fields must be pointer types")
		}

		optional := false
		if tag := field.Tag.Get("ecs"); tag != "" && !field.Anonymous {
			if tag != "optional" {
				panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
			}
			optional = true
		}
		if !optional {
			required++
		}

		fields = append(fields, queryField{
			index:     i,
			component: field.Type.Elem(),
			optional:  optional,
		})
	}

	if required == 0 {
		panic("Query needs at least one required component")
	}

	q.storage = storage
	q.fields = fields
}

// driver picks the smallest table among the required components. It returns
// nil when a required component has never been stored.
func (q *Query[T]) driver() table {
	var smallest table
	for _, f := range q.fields {
		if f.entityId || f.optional {
			continue
		}
		tbl, ok := q.storage.tables[f.component]
		if !ok {
			return nil
		}
		if smallest == nil || tbl.len() < smallest.len() {
			smallest = tbl
		}
	}
	return smallest
}

func (q *Query[T]) fill(id EntityId) (T, bool) {
	var result T
	v := reflect.ValueOf(&result).Elem()

	for _, f := range q.fields {
		if f.entityId {
			v.Field(f.index).SetUint(uint64(id))
			continue
		}

		var component any
		if tbl, ok := q.storage.tables[f.component]; ok {
			component = tbl.get(id)
		}
		if component == nil {
			if f.optional {
				continue
			}
			return result, false
		}
		v.Field(f.index).Set(reflect.ValueOf(component))
	}
	return result, true
}

// Iter yields a populated T for every matching entity. The set of entities is
// captured when iteration starts; structural changes should go through
// Commands.
func (q *Query[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		drv := q.driver()
		if drv == nil {
			return
		}

		ids := make([]EntityId, 0, drv.len())
		for id := range drv.ids() {
			ids = append(ids, id)
		}

		for _, id := range ids {
			result, ok := q.fill(id)
			if !ok {
				continue
			}
			if !yield(result) {
				return
			}
		}
	}
}

// Get returns the populated T for one entity.
func (q *Query[T]) Get(id EntityId) (T, bool) {
	if !q.storage.Alive(id) {
		var zero T
		return zero, false
	}
	return q.fill(id)
}

// First returns the first matching entity, if any.
func (q *Query[T]) First() (T, bool) {
	for result := range q.Iter() {
		return result, true
	}
	var zero T
	return zero, false
}

// Count returns the number of matching entities.
func (q *Query[T]) Count() int {
	n := 0
	for range q.Iter() {
		n++
	}
	return n
}
