package ecs_test

import (
	"testing"

	"github.com/plus3/ducky/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewIter(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(Position{X: 1}, Velocity{DX: 1})
	storage.Spawn(Position{X: 2}, Velocity{DX: 2}, Health{Current: 5})
	storage.Spawn(Position{X: 3})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	var sum float32
	for _, item := range view.Iter() {
		sum += item.Position.X * item.Velocity.DX
	}
	assert.Equal(t, float32(5), sum)
	assert.Equal(t, 2, view.Count())
}

func TestViewOptionalFields(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(Position{X: 1}, Health{Current: 7})
	storage.Spawn(Position{X: 2})

	view := ecs.NewView[struct {
		*Position
		Health *Health `ecs:"optional"`
	}](storage)

	withHealth := 0
	for item := range view.Values() {
		if item.Health != nil {
			withHealth++
			assert.Equal(t, 7, item.Health.Current)
		}
	}
	assert.Equal(t, 2, view.Count())
	assert.Equal(t, 1, withHealth)
}

func TestViewEntityIdField(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Name{Value: "ducky"})

	view := ecs.NewView[struct {
		ecs.EntityId
		*Name
	}](storage)

	for item := range view.Values() {
		assert.Equal(t, id, item.EntityId)
	}

	item := view.Get(id)
	require.NotNil(t, item)
	assert.Equal(t, id, item.EntityId)
	assert.Equal(t, "ducky", item.Name.Value)
}

func TestViewGet(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	full := storage.Spawn(Position{X: 1}, Velocity{DX: 1})
	partial := storage.Spawn(Position{X: 2})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	assert.NotNil(t, view.Get(full))
	assert.Nil(t, view.Get(partial))

	storage.Delete(full)
	assert.Nil(t, view.Get(full))
}

func TestViewSpawn(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[struct {
		*Position
		Velocity *Velocity `ecs:"optional"`
	}](storage)

	a := view.Spawn(struct {
		*Position
		Velocity *Velocity `ecs:"optional"`
	}{Position: &Position{X: 1}})
	b := view.Spawn(struct {
		*Position
		Velocity *Velocity `ecs:"optional"`
	}{Position: &Position{X: 2}, Velocity: &Velocity{DX: 3}})

	assert.NotEqual(t, a.ArchetypeId(), b.ArchetypeId())
	assert.Equal(t, float32(3), ecs.ReadComponent[Velocity](storage, b).DX)
	assert.Nil(t, ecs.ReadComponent[Velocity](storage, a))

	assert.Panics(t, func() {
		view.Spawn(struct {
			*Position
			Velocity *Velocity `ecs:"optional"`
		}{})
	})
}

func TestNewViewPanics(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { ecs.NewView[int](storage) })
	assert.Panics(t, func() { ecs.NewView[struct{ P Position }](storage) })
	assert.Panics(t, func() {
		ecs.NewView[struct {
			P *Position `ecs:"maybe"`
		}](storage)
	})
}
