package asset

import (
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/plus3/ducky/app"
	"github.com/plus3/ducky/ecs"
)

// DefaultFilePath is the asset root used when a Plugin names none.
const DefaultFilePath = "assets"

// Assets is the world resource through which systems load assets.
type Assets struct {
	*Server
}

// Plugin installs an asset Server. A MetaCheck resource inserted before the
// plugin is built takes precedence over the MetaCheck field.
type Plugin struct {
	// FilePath is the on-disk root, relative to the working directory.
	FilePath string
	// FS, when set, is used instead of FilePath. Watching is unavailable.
	FS        fs.FS
	MetaCheck MetaCheck
	Watch     bool
	Workers   int
}

func (p Plugin) Build(a *app.App) {
	check := p.MetaCheck
	if res := app.Resource[MetaCheck](a); res != nil {
		check = *res
	}
	a.InsertResource(check)

	opts := []Option{
		WithMetaCheck(check),
		WithWorkers(p.Workers),
		WithWatch(p.Watch),
	}

	var server *Server
	if p.FS != nil {
		server = NewServer(p.FS, opts...)
	} else {
		dir := p.FilePath
		if dir == "" {
			dir = DefaultFilePath
		}
		server = NewDirServer(dir, opts...)
	}

	a.InsertResource(Assets{Server: server})
	a.AddSystems(ecs.Update, &EventSystem{})
	a.OnCleanup(server.Close)
}

// Finish starts the server's workers on the app context.
func (p Plugin) Finish(a *app.App) error {
	assets := app.Resource[Assets](a)
	return assets.Start(a.Context())
}

// EventSystem reports finished loads through the log. It is the only place
// load failures surface; nothing else inspects load status.
type EventSystem struct {
	Assets ecs.Singleton[Assets]
}

func (s *EventSystem) Execute(frame *ecs.UpdateFrame) {
	assets := s.Assets.Get()
	if assets == nil || assets.Server == nil {
		return
	}

	for _, event := range assets.Drain() {
		switch event.Kind {
		case EventLoaded:
			log.Debug("asset loaded", "path", event.Handle.Path)
		case EventModified:
			log.Info("asset reloaded", "path", event.Handle.Path)
		case EventFailed:
			log.Error("failed to load asset", "path", event.Handle.Path, "err", event.Err)
		}
	}
}
