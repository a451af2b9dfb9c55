package ecs

import (
	"iter"
	"reflect"
	"sort"
	"unsafe"
)

var entityIdType = reflect.TypeFor[EntityId]()

// View matches entities by the component pointers declared in struct T.
//
// Embedded pointer fields are required. Named pointer fields may carry the
// `ecs:"optional"` tag, in which case they are nil for entities without the
// component. A field of type EntityId receives the matched entity's id.
type View[T any] struct {
	storage     *Storage
	types       []reflect.Type
	optional    []bool
	fieldOffset []uintptr

	hasEntityField    bool
	entityFieldOffset uintptr

	// archetype id for spawns that set every required field and no optional one
	cachedArchetypeId *uint32
}

// NewView builds a view over storage for struct type T. It panics when T is
// not a struct or declares a field that is neither a pointer nor an EntityId.
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{
		storage:     storage,
		types:       make([]reflect.Type, 0, structType.NumField()),
		optional:    make([]bool, 0, structType.NumField()),
		fieldOffset: make([]uintptr, 0, structType.NumField()),
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Type == entityIdType {
			v.hasEntityField = true
			v.entityFieldOffset = field.Offset
			continue
		}

		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		isOptional := false
		if !field.Anonymous {
			switch tag := field.Tag.Get("ecs"); tag {
			case "":
			case "optional":
				isOptional = true
			default:
				panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
			}
		}

		v.types = append(v.types, field.Type.Elem())
		v.fieldOffset = append(v.fieldOffset, field.Offset)
		v.optional = append(v.optional, isOptional)
	}

	return v
}

// Fill points the fields of *ptr at the entity's components. It returns false
// when the entity lacks a required component.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	archetype, ok := v.storage.archetypes[id.ArchetypeId()]
	if !ok || !archetype.alive(id.Index()) {
		return false
	}
	return v.populateResult(unsafe.Pointer(ptr), archetype, int(id.Index()), v.buildStorageIndices(archetype))
}

// Get returns the populated view struct for id, or nil if it does not match.
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// GetRef is Get for an entity ref; nil for invalidated refs.
func (v *View[T]) GetRef(ref *EntityRef) *T {
	entityId, ok := v.storage.ResolveEntityRef(ref)
	if !ok {
		return nil
	}
	return v.Get(entityId)
}

// matchesArchetype reports whether the archetype has every required component.
func (v *View[T]) matchesArchetype(archetype *Archetype) bool {
	for i, requiredType := range v.types {
		if v.optional[i] {
			continue
		}
		if !archetype.HasComponent(requiredType) {
			return false
		}
	}
	return true
}

func (v *View[T]) buildStorageIndices(archetype *Archetype) []int {
	storageIndices := make([]int, len(v.types))
	for i, componentType := range v.types {
		storageIndices[i] = archetype.storageIndex(componentType)
	}
	return storageIndices
}

func (v *View[T]) populateResult(resultPtr unsafe.Pointer, archetype *Archetype, entityIndex int, storageIndices []int) bool {
	for i, storageIdx := range storageIndices {
		fieldPtr := unsafe.Add(resultPtr, v.fieldOffset[i])

		var component any
		if storageIdx != -1 {
			component = archetype.storages[storageIdx].Get(entityIndex)
		}

		if component == nil {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		*(*unsafe.Pointer)(fieldPtr) = (*iface)(unsafe.Pointer(&component)).data
	}

	if v.hasEntityField {
		*(*EntityId)(unsafe.Add(resultPtr, v.entityFieldOffset)) = NewEntityId(archetype.id, uint32(entityIndex))
	}
	return true
}

// Iter yields every matching entity with its populated view struct. The
// struct is reused between iterations; copy it to keep it.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		for archetypeId, archetype := range v.storage.archetypes {
			if !v.matchesArchetype(archetype) || len(archetype.storages) == 0 {
				continue
			}

			storageIndices := v.buildStorageIndices(archetype)

			var result T
			resultPtr := unsafe.Pointer(&result)

			for entityIndex := range archetype.storages[0].Iter() {
				if !v.populateResult(resultPtr, archetype, entityIndex, storageIndices) {
					continue
				}
				if !yield(NewEntityId(archetypeId, uint32(entityIndex)), result) {
					return
				}
			}
		}
	}
}

// Values returns an iterator over just the view structs (without entity IDs)
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Count returns the number of matching entities.
func (v *View[T]) Count() int {
	n := 0
	for range v.Iter() {
		n++
	}
	return n
}

// Spawn creates an entity from the non-nil component fields of data.
// It panics when a required field is nil.
func (v *View[T]) Spawn(data T) EntityId {
	structPtr := unsafe.Pointer(&data)

	type pending struct {
		typ   reflect.Type
		value any
	}
	parts := make([]pending, 0, len(v.types))
	requiredOnly := true

	for i, componentType := range v.types {
		componentPtr := *(*unsafe.Pointer)(unsafe.Add(structPtr, v.fieldOffset[i]))
		if componentPtr == nil {
			if !v.optional[i] {
				panic("required component is nil in View.Spawn")
			}
			continue
		}
		if v.optional[i] {
			requiredOnly = false
		}
		parts = append(parts, pending{
			typ:   componentType,
			value: reflect.NewAt(componentType, componentPtr).Elem().Interface(),
		})
	}

	if len(parts) == 0 {
		panic("cannot spawn entity without components")
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].typ.String() < parts[j].typ.String() })

	types := make([]reflect.Type, len(parts))
	components := make([]any, len(parts))
	for i, p := range parts {
		types[i] = p.typ
		components[i] = p.value
	}

	var archetype *Archetype
	if requiredOnly && v.cachedArchetypeId != nil {
		archetype = v.storage.archetypes[*v.cachedArchetypeId]
	}
	if archetype == nil {
		archetype = v.storage.archetypeFor(types)
		if requiredOnly {
			id := archetype.id
			v.cachedArchetypeId = &id
		}
	}

	return NewEntityId(archetype.id, archetype.Spawn(components))
}
