//go:build js

package main

import "github.com/plus3/ducky/app"

// The browser has no file system to read assets from.
func defaultPlugins() app.Group {
	return embeddedPlugins()
}
