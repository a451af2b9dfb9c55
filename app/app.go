// Package app assembles an ECS world, its scheduler and a set of plugins into
// a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/plus3/ducky/ecs"
)

// ErrDuplicatePlugin is reported by Run when a plugin type is added twice.
var ErrDuplicatePlugin = errors.New("plugin added twice")

// Runner drives the app once every plugin is built. It returns when the app
// should exit.
type Runner func(a *App) error

// Exit is the resource systems use to ask the runner to stop.
type Exit struct {
	Requested bool
	Err       error
}

// Request asks the runner to stop after the current frame. A non-nil err
// becomes the result of Run.
func (e *Exit) Request(err error) {
	e.Requested = true
	if err != nil {
		e.Err = err
	}
}

// App owns one world. Build it with AddPlugins, InsertResource and
// AddSystems, then hand control to Run.
type App struct {
	registry  *ecs.ComponentRegistry
	storage   *ecs.Storage
	scheduler *ecs.Scheduler

	ctx    context.Context
	cancel context.CancelFunc

	plugins   []Plugin
	names     map[string]bool
	errs      []error
	finished  bool
	finishErr error

	runner   Runner
	cleanups []func() error
}

// New creates an app with an empty world and the run-once runner.
func New() *App {
	registry := ecs.NewComponentRegistry()
	storage := ecs.NewStorage(registry)
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		registry:  registry,
		storage:   storage,
		scheduler: ecs.NewScheduler(storage),
		ctx:       ctx,
		cancel:    cancel,
		names:     make(map[string]bool),
		runner:    RunOnce,
	}
	storage.AddSingleton(Exit{})
	return a
}

// AddPlugins builds each plugin immediately, in order.
func (a *App) AddPlugins(plugins ...Plugin) *App {
	for _, p := range plugins {
		switch p.(type) {
		case Group, PluginFunc:
		default:
			name := pluginName(p)
			if a.names[name] {
				a.errs = append(a.errs, fmt.Errorf("%w: %s", ErrDuplicatePlugin, name))
				continue
			}
			a.names[name] = true
			a.plugins = append(a.plugins, p)
			log.Debug("adding plugin", "plugin", name)
		}
		p.Build(a)
	}
	return a
}

// HasPlugin reports whether a plugin of the same type as p was added.
func (a *App) HasPlugin(p Plugin) bool {
	return a.names[pluginName(p)]
}

// InsertResource stores value as a world singleton, replacing any value of
// the same type.
func (a *App) InsertResource(value any) *App {
	a.storage.AddSingleton(value)
	return a
}

// AddSystems registers systems on a schedule.
func (a *App) AddSystems(label ecs.Schedule, systems ...ecs.System) *App {
	a.scheduler.AddSystems(label, systems...)
	return a
}

// SetRunner replaces the runner used by Run.
func (a *App) SetRunner(r Runner) *App {
	a.runner = r
	return a
}

// OnCleanup registers fn to run after the runner returns, in reverse order
// of registration.
func (a *App) OnCleanup(fn func() error) {
	a.cleanups = append(a.cleanups, fn)
}

// Storage returns the app's world.
func (a *App) Storage() *ecs.Storage {
	return a.storage
}

// Registry returns the component registry of the world.
func (a *App) Registry() *ecs.ComponentRegistry {
	return a.registry
}

// Scheduler returns the app's scheduler.
func (a *App) Scheduler() *ecs.Scheduler {
	return a.scheduler
}

// Context is cancelled when Run returns.
func (a *App) Context() context.Context {
	return a.ctx
}

// RegisterComponent makes T usable as a component in the app's world.
func RegisterComponent[T any](a *App) {
	ecs.RegisterComponent[T](a.registry)
}

// Resource returns the app's T singleton, or nil.
func Resource[T any](a *App) *T {
	var value *T
	if a.storage.ReadSingleton(&value) {
		return value
	}
	return nil
}

// Finish runs the Finish hook of every plugin that has one. It is safe to
// call repeatedly; only the first call does work.
func (a *App) Finish() error {
	if a.finished {
		return a.finishErr
	}
	a.finished = true

	errs := append([]error(nil), a.errs...)
	for _, p := range a.plugins {
		f, ok := p.(Finisher)
		if !ok {
			continue
		}
		if err := f.Finish(a); err != nil {
			errs = append(errs, fmt.Errorf("finish %s: %w", pluginName(p), err))
		}
	}
	a.finishErr = errors.Join(errs...)
	return a.finishErr
}

// Update runs one frame: pending Startup systems, then Update.
func (a *App) Update(dt float64) error {
	if err := a.Finish(); err != nil {
		return err
	}
	a.scheduler.Once(dt)
	return nil
}

// Draw runs the Draw schedule.
func (a *App) Draw() {
	a.scheduler.RunSchedule(ecs.Draw, 0)
}

// ExitRequested reports whether a system asked to stop, with the error it gave.
func (a *App) ExitRequested() (bool, error) {
	exit := Resource[Exit](a)
	if exit == nil {
		return false, nil
	}
	return exit.Requested, exit.Err
}

// Run finishes the plugins, hands control to the runner and tears the app
// down once it returns. The result joins every error seen on the way.
func (a *App) Run() error {
	var errs []error
	if err := a.Finish(); err != nil {
		errs = append(errs, err)
	} else if err := a.runner(a); err != nil {
		errs = append(errs, err)
	}

	a.cancel()
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.cleanups = nil

	return errors.Join(errs...)
}

// RunOnce is the default runner: a single Update.
func RunOnce(a *App) error {
	if err := a.Update(0); err != nil {
		return err
	}
	_, err := a.ExitRequested()
	return err
}
