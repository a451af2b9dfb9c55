//go:build !js

package main

import (
	"github.com/plus3/ducky/app"
	"github.com/plus3/ducky/engine"
)

// defaultPlugins loads assets from ./assets so they can be edited in place.
func defaultPlugins() app.Group {
	return engine.DefaultPlugins()
}
