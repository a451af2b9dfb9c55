package ecs

import "sort"

// StorageStats is a point-in-time summary of a world.
type StorageStats struct {
	ArchetypeCount     int
	TotalEntityCount   int
	SingletonCount     int
	ArchetypeBreakdown []ArchetypeStats
	SingletonTypes     []string
}

// ArchetypeStats describes one non-empty archetype.
type ArchetypeStats struct {
	Id          uint32
	Types       []string
	EntityCount int
}

// CollectStats counts entities per archetype and lists singleton types.
// Archetypes emptied by deletes are left out.
func (s *Storage) CollectStats() StorageStats {
	var stats StorageStats

	for _, archetype := range s.archetypes {
		n := archetype.Len()
		if n == 0 {
			continue
		}

		names := make([]string, len(archetype.types))
		for i, t := range archetype.types {
			names[i] = t.String()
		}

		stats.ArchetypeBreakdown = append(stats.ArchetypeBreakdown, ArchetypeStats{
			Id:          archetype.id,
			Types:       names,
			EntityCount: n,
		})
		stats.TotalEntityCount += n
	}
	sort.Slice(stats.ArchetypeBreakdown, func(i, j int) bool {
		return stats.ArchetypeBreakdown[i].Id < stats.ArchetypeBreakdown[j].Id
	})
	stats.ArchetypeCount = len(stats.ArchetypeBreakdown)

	for typ := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, typ.String())
	}
	sort.Strings(stats.SingletonTypes)
	stats.SingletonCount = len(stats.SingletonTypes)

	return stats
}
