// Command ducky opens a window showing a single sprite.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/plus3/ducky/app"
	"github.com/plus3/ducky/asset"
	"github.com/plus3/ducky/assets"
	"github.com/plus3/ducky/ecs"
	"github.com/plus3/ducky/engine"
	"github.com/plus3/ducky/render"
)

const duckyPath = "ducky.png"

func main() {
	if err := newApp(defaultPlugins()).Run(); err != nil {
		log.Error("ducky exited", "err", err)
		os.Exit(1)
	}
}

func newApp(plugins app.Group) *app.App {
	return app.New().
		// Skip .meta lookups; web servers answer them with errors.
		InsertResource(asset.MetaCheckNever).
		AddPlugins(plugins).
		AddSystems(ecs.Startup, &setup{})
}

// embeddedPlugins reads assets from the binary instead of the disk.
func embeddedPlugins() app.Group {
	return engine.DefaultPlugins().Set(asset.Plugin{FS: assets.FS})
}

// setup spawns the camera and the duck.
type setup struct {
	Assets ecs.Singleton[asset.Assets]
}

func (s *setup) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.SpawnBundle(render.NewCamera2dBundle())
	frame.Commands.SpawnBundle(render.NewSpriteBundle(s.Assets.Get().Load(duckyPath)))
}
