package ecs_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/ducky/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MovementSystem struct {
	Entities ecs.Query[struct {
		*Position
		*Velocity
	}]
	ExecuteCount int
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	for item := range s.Entities.Values() {
		item.Position.X += item.Velocity.DX * float32(frame.DeltaTime)
		item.Position.Y += item.Velocity.DY * float32(frame.DeltaTime)
	}
}

type spawnOnStartup struct {
	Score ecs.Singleton[Score]
	runs  int
}

func (s *spawnOnStartup) Execute(frame *ecs.UpdateFrame) {
	s.runs++
	*s.Score.Get() += 10
	frame.Commands.Spawn(Position{}, Velocity{DX: 1, DY: 2})
}

func TestSchedulerQueryInjection(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	movement := &MovementSystem{}
	scheduler.Register(movement)

	id := storage.Spawn(Position{}, Velocity{DX: 1, DY: 2})
	scheduler.Once(1.0)
	scheduler.Once(1.0)

	assert.Equal(t, 2, movement.ExecuteCount)
	assert.Equal(t, Position{X: 2, Y: 4}, *ecs.ReadComponent[Position](storage, id))
}

func TestStartupRunsOnce(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	ecs.NewSingleton[Score](storage)
	scheduler := ecs.NewScheduler(storage)

	startup := &spawnOnStartup{}
	movement := &MovementSystem{}
	scheduler.AddSystems(ecs.Startup, startup)
	scheduler.AddSystems(ecs.Update, movement)

	for range 5 {
		scheduler.Once(1.0)
	}

	assert.Equal(t, 1, startup.runs)
	assert.Equal(t, Score(10), *ecs.NewSingleton[Score](storage).Get())
	assert.Equal(t, 1, storage.EntityCount())

	t.Run("startup commands land before the first update", func(t *testing.T) {
		for _, item := range ecs.NewView[struct{ *Position }](storage).Iter() {
			assert.Equal(t, float32(5), item.Position.X)
		}
	})

	t.Run("RunSchedule does not rerun startup", func(t *testing.T) {
		scheduler.RunSchedule(ecs.Startup, 0)
		assert.Equal(t, 1, startup.runs)
	})

	t.Run("late startup systems run on the next frame only", func(t *testing.T) {
		late := &spawnOnStartup{}
		scheduler.AddSystems(ecs.Startup, late)
		scheduler.Once(1.0)
		scheduler.Once(1.0)

		assert.Equal(t, 1, startup.runs)
		assert.Equal(t, 1, late.runs)
		assert.Equal(t, 2, storage.EntityCount())
	})
}

func TestDrawScheduleIsSeparate(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	var updates, draws int
	var drawLabel ecs.Schedule
	scheduler.AddSystems(ecs.Update, ecs.SystemFunc(func(*ecs.UpdateFrame) { updates++ }))
	scheduler.AddSystems(ecs.Draw, ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
		draws++
		drawLabel = frame.Schedule
	}))

	scheduler.Once(0)
	scheduler.Once(0)
	scheduler.RunSchedule(ecs.Draw, 0)

	assert.Equal(t, 2, updates)
	assert.Equal(t, 1, draws)
	assert.Equal(t, ecs.Draw, drawLabel)
}

func countFrames(frame *ecs.UpdateFrame) {}

func TestSchedulerStats(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	ecs.NewSingleton[Score](storage)
	scheduler := ecs.NewScheduler(storage)

	assert.Equal(t, 0, scheduler.GetStats().SystemCount)

	scheduler.AddSystems(ecs.Startup, &spawnOnStartup{})
	scheduler.Register(&MovementSystem{})
	scheduler.Register(ecs.SystemFunc(countFrames))

	scheduler.Once(0.016)
	scheduler.Once(0.016)
	scheduler.Once(0.016)

	stats := scheduler.GetStats()
	require.Equal(t, 3, stats.SystemCount)
	assert.Equal(t, int64(7), stats.TotalExecutions)

	assert.Equal(t, "spawnOnStartup", stats.Systems[0].Name)
	assert.Equal(t, ecs.Startup, stats.Systems[0].Schedule)
	assert.Equal(t, int64(1), stats.Systems[0].ExecutionCount)

	assert.Equal(t, "MovementSystem", stats.Systems[1].Name)
	assert.Equal(t, ecs.Update, stats.Systems[1].Schedule)
	assert.Equal(t, int64(3), stats.Systems[1].ExecutionCount)

	assert.Equal(t, "ecs_test.countFrames", stats.Systems[2].Name)

	for _, sys := range stats.Systems {
		assert.LessOrEqual(t, sys.MinDuration, sys.AvgDuration)
		assert.LessOrEqual(t, sys.AvgDuration, sys.MaxDuration)
	}
}

func TestSchedulerRun(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	ecs.NewSingleton[Score](storage)
	scheduler := ecs.NewScheduler(storage)

	startup := &spawnOnStartup{}
	movement := &MovementSystem{}
	scheduler.AddSystems(ecs.Startup, startup)
	scheduler.Register(movement)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	scheduler.Run(ctx, time.Millisecond)

	assert.Equal(t, 1, startup.runs)
	assert.Greater(t, movement.ExecuteCount, 1)
}

func TestScheduleString(t *testing.T) {
	assert.Equal(t, "Startup", ecs.Startup.String())
	assert.Equal(t, "Update", ecs.Update.String())
	assert.Equal(t, "Draw", ecs.Draw.String())
	assert.Equal(t, "Schedule(9)", ecs.Schedule(9).String())
}
