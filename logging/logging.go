// Package logging configures the process-wide logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/plus3/ducky/app"
)

// Logger is the world resource holding the configured logger.
type Logger struct {
	*log.Logger
}

// Plugin replaces the default charmbracelet logger. Packages that log through
// log.Default after the plugin is built inherit its settings.
type Plugin struct {
	Level        log.Level
	Prefix       string
	ReportCaller bool
	// Output defaults to stderr.
	Output io.Writer
}

func DefaultPlugin() Plugin {
	return Plugin{Level: log.InfoLevel}
}

func (p Plugin) Build(a *app.App) {
	out := p.Output
	if out == nil {
		out = os.Stderr
	}

	l := log.NewWithOptions(out, log.Options{
		Level:           p.Level,
		Prefix:          p.Prefix,
		ReportCaller:    p.ReportCaller,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	log.SetDefault(l)
	a.InsertResource(Logger{Logger: l})
}
