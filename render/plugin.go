package render

import (
	"github.com/plus3/ducky/app"
	"github.com/plus3/ducky/ecs"
)

// Plugin registers the render components and draws them on the Draw schedule.
type Plugin struct{}

func (Plugin) Build(a *app.App) {
	app.RegisterComponent[Transform](a)
	app.RegisterComponent[Camera2d](a)
	app.RegisterComponent[OrthographicProjection](a)
	app.RegisterComponent[Sprite](a)
	app.RegisterComponent[Visibility](a)

	ecs.NewSingleton[Screen](a.Storage())
	a.AddSystems(ecs.Draw, &RenderSystem{})
}
