package ecs

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// Schedule labels a group of systems that run together.
type Schedule int

const (
	// Startup systems run exactly once, before the first Update.
	Startup Schedule = iota
	// Update systems run every frame.
	Update
	// Draw systems run when the host asks for a frame to be presented.
	Draw
)

func (s Schedule) String() string {
	switch s {
	case Startup:
		return "Startup"
	case Update:
		return "Update"
	case Draw:
		return "Draw"
	default:
		return fmt.Sprintf("Schedule(%d)", int(s))
	}
}

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Schedule       Schedule
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (st *systemStatsInternal) record(d time.Duration) {
	st.executionCount++
	st.lastDuration = d
	st.totalDuration += d
	st.minDuration = min(st.minDuration, d)
	st.maxDuration = max(st.maxDuration, d)
}

type registeredSystem struct {
	system  System
	queries []queryExecutor
	stats   *systemStatsInternal
}

// schedule holds one label's systems in registration order. For Startup,
// next is the index of the first system that has not run yet.
type schedule struct {
	systems []*registeredSystem
	next    int
}

// storageBinder is implemented by Query and Singleton fields.
type storageBinder interface {
	Init(storage *Storage)
}

// queryExecutor is implemented by Query fields.
type queryExecutor interface {
	Execute()
}

// Scheduler runs systems against one storage, schedule by schedule.
type Scheduler struct {
	storage   *Storage
	schedules map[Schedule]*schedule
	order     []Schedule
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{
		storage:   storage,
		schedules: make(map[Schedule]*schedule),
	}
}

// Register adds a system to the Update schedule.
func (s *Scheduler) Register(system System) {
	s.AddSystems(Update, system)
}

// AddSystems appends systems to a schedule, binding their Query and
// Singleton fields to the scheduler's storage.
func (s *Scheduler) AddSystems(label Schedule, systems ...System) {
	sched, ok := s.schedules[label]
	if !ok {
		sched = &schedule{}
		s.schedules[label] = sched
		s.order = append(s.order, label)
	}

	for _, system := range systems {
		sched.systems = append(sched.systems, &registeredSystem{
			system:  system,
			queries: s.bindFields(system),
			stats: &systemStatsInternal{
				name:        systemName(system),
				minDuration: time.Duration(1<<63 - 1),
			},
		})
	}
}

// bindFields initialises the exported Query and Singleton fields of a struct
// system and returns the queries that need refreshing before each run.
func (s *Scheduler) bindFields(system System) []queryExecutor {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() != reflect.Ptr {
		return nil
	}
	systemValue = systemValue.Elem()
	if systemValue.Kind() != reflect.Struct {
		return nil
	}

	var queries []queryExecutor
	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		binder, ok := field.Addr().Interface().(storageBinder)
		if !ok {
			continue
		}
		binder.Init(s.storage)

		if query, ok := binder.(queryExecutor); ok {
			queries = append(queries, query)
		}
	}
	return queries
}

// Once runs one frame: any Startup systems that have not run yet, then the
// Update schedule. Commands are flushed after each schedule.
func (s *Scheduler) Once(dt float64) {
	s.runStartup(dt)
	s.RunSchedule(Update, dt)
}

func (s *Scheduler) runStartup(dt float64) {
	sched, ok := s.schedules[Startup]
	if !ok || sched.next >= len(sched.systems) {
		return
	}

	pending := sched.systems[sched.next:]
	sched.next = len(sched.systems)
	s.runSystems(Startup, pending, dt)
}

// RunSchedule runs every system of label once. Running Startup this way is
// a no-op once its systems have run.
func (s *Scheduler) RunSchedule(label Schedule, dt float64) {
	if label == Startup {
		s.runStartup(dt)
		return
	}
	sched, ok := s.schedules[label]
	if !ok {
		return
	}
	s.runSystems(label, sched.systems, dt)
}

func (s *Scheduler) runSystems(label Schedule, systems []*registeredSystem, dt float64) {
	frame := newUpdateFrame(label, dt, s.storage)

	for _, rs := range systems {
		for _, query := range rs.queries {
			query.Execute()
		}

		start := time.Now()
		rs.system.Execute(frame)
		rs.stats.record(time.Since(start))
	}

	frame.Commands.Flush(s.storage)
}

// Run executes all systems repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns per-system statistics in schedule registration order.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{}

	for _, label := range s.order {
		for _, rs := range s.schedules[label].systems {
			internal := rs.stats

			var avg time.Duration
			if internal.executionCount > 0 {
				avg = internal.totalDuration / time.Duration(internal.executionCount)
			}

			stats.Systems = append(stats.Systems, SystemStats{
				Name:           internal.name,
				Schedule:       label,
				ExecutionCount: internal.executionCount,
				MinDuration:    internal.minDuration,
				MaxDuration:    internal.maxDuration,
				AvgDuration:    avg,
				LastDuration:   internal.lastDuration,
				TotalDuration:  internal.totalDuration,
			})
			stats.TotalExecutions += internal.executionCount
		}
	}

	stats.SystemCount = len(stats.Systems)
	return stats
}
