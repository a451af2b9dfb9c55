// Package window runs an app inside an ebiten window.
package window

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/ducky/app"
	"github.com/plus3/ducky/ecs"
	"github.com/plus3/ducky/render"
)

// Window configures the primary window. An empty title and non-positive sizes
// or TPS take the values of DefaultWindow. Windows are resizable unless
// FixedSize is set.
type Window struct {
	Title     string
	Width     int
	Height    int
	FixedSize bool
	// TPS is the number of Update frames per second.
	TPS int
}

func DefaultWindow() Window {
	return Window{
		Title:  "App",
		Width:  1280,
		Height: 720,
		TPS:    ebiten.DefaultTPS,
	}
}

func (w Window) withDefaults() Window {
	d := DefaultWindow()
	if w.Title == "" {
		w.Title = d.Title
	}
	if w.Width <= 0 {
		w.Width = d.Width
	}
	if w.Height <= 0 {
		w.Height = d.Height
	}
	if w.TPS <= 0 {
		w.TPS = d.TPS
	}
	return w
}

// Plugin opens a window and drives the app from ebiten's game loop. A Window
// resource inserted before the plugin is built takes precedence over the
// Window field.
type Plugin struct {
	Window *Window
}

func (p Plugin) Build(a *app.App) {
	w := DefaultWindow()
	if p.Window != nil {
		w = p.Window.withDefaults()
	}
	if res := app.Resource[Window](a); res != nil {
		w = res.withDefaults()
	}
	a.InsertResource(w)
	a.SetRunner(Run)
}

// Run is the windowed runner. It returns when the window closes or a system
// requests exit.
func Run(a *app.App) error {
	w := DefaultWindow()
	if res := app.Resource[Window](a); res != nil {
		w = res.withDefaults()
	}

	ebiten.SetWindowTitle(w.Title)
	ebiten.SetWindowSize(w.Width, w.Height)
	if !w.FixedSize {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetTPS(w.TPS)

	log.Info("opening window", "title", w.Title, "width", w.Width, "height", w.Height)

	game := NewGame(a)
	err := ebiten.RunGame(game)
	if errors.Is(err, ebiten.Termination) {
		return game.Err()
	}
	return err
}

// Game adapts an app to ebiten.Game.
type Game struct {
	app    *app.App
	screen *ecs.Singleton[render.Screen]
	dt     float64
	err    error
}

func NewGame(a *app.App) *Game {
	w := DefaultWindow()
	if res := app.Resource[Window](a); res != nil {
		w = res.withDefaults()
	}
	return &Game{
		app:    a,
		screen: ecs.NewSingleton[render.Screen](a.Storage()),
		dt:     1 / float64(w.TPS),
	}
}

// Update runs one app frame and ends the game once a system asks to exit.
func (g *Game) Update() error {
	if err := g.app.Update(g.dt); err != nil {
		return err
	}
	if exit, err := g.app.ExitRequested(); exit {
		g.err = err
		return ebiten.Termination
	}
	return nil
}

// Draw exposes screen to the Draw schedule for the duration of the call.
func (g *Game) Draw(screen *ebiten.Image) {
	g.screen.Set(render.Screen{Image: screen})
	g.app.Draw()
	g.screen.Set(render.Screen{})
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Err is the error a system gave when it requested exit.
func (g *Game) Err() error {
	return g.err
}
