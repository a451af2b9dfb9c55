//go:build windows

package main

// Keep Windows from allocating a console window next to the game window.
import _ "github.com/ebitengine/hideconsole"
