// Package engine bundles the plugins most apps start from.
package engine

import (
	"github.com/plus3/ducky/app"
	"github.com/plus3/ducky/asset"
	"github.com/plus3/ducky/logging"
	"github.com/plus3/ducky/render"
	"github.com/plus3/ducky/window"
)

// DefaultPlugins returns logging, asset loading, a window and the sprite
// renderer, in build order. Use Set or Disable on the result to change one.
func DefaultPlugins() app.Group {
	return app.Group{
		logging.DefaultPlugin(),
		asset.Plugin{},
		window.Plugin{},
		render.Plugin{},
	}
}
