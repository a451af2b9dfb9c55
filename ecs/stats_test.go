package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageStats(t *testing.T) {
	registry := NewComponentRegistry()
	RegisterComponent[int](registry)
	RegisterComponent[string](registry)
	RegisterComponent[float64](registry)

	storage := NewStorage(registry)

	stats := storage.CollectStats()
	assert.Zero(t, stats.ArchetypeCount)
	assert.Zero(t, stats.TotalEntityCount)
	assert.Zero(t, stats.SingletonCount)

	storage.Spawn(42, "hello")
	storage.Spawn(100, "world")
	gone := storage.Spawn(200.0)
	storage.Delete(gone)

	NewSingleton[float64](storage, 3.14)
	NewSingleton[string](storage, "singleton")

	stats = storage.CollectStats()
	assert.Equal(t, 1, stats.ArchetypeCount, "emptied archetypes are skipped")
	assert.Equal(t, 2, stats.TotalEntityCount)
	assert.Equal(t, 2, stats.SingletonCount)
	assert.Equal(t, []string{"float64", "string"}, stats.SingletonTypes)
	assert.Equal(t, []string{"int", "string"}, stats.ArchetypeBreakdown[0].Types)
	assert.Equal(t, 2, stats.ArchetypeBreakdown[0].EntityCount)
}

func TestRegistryTypes(t *testing.T) {
	registry := NewComponentRegistry()
	RegisterComponent[string](registry)
	RegisterComponent[int](registry)
	RegisterComponent[int](registry)

	types := registry.Types()
	assert.Len(t, types, 2)
	assert.Equal(t, "int", types[0].String())
	assert.True(t, registry.IsRegistered(types[1]))
}
