package engine_test

import (
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"
	"github.com/plus3/ducky/app"
	"github.com/plus3/ducky/asset"
	"github.com/plus3/ducky/engine"
	"github.com/plus3/ducky/logging"
	"github.com/plus3/ducky/render"
	"github.com/plus3/ducky/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPlugins(t *testing.T) {
	group := engine.DefaultPlugins()

	require.Len(t, group, 4)
	assert.IsType(t, logging.Plugin{}, group[0])
	assert.IsType(t, asset.Plugin{}, group[1])
	assert.IsType(t, window.Plugin{}, group[2])
	assert.IsType(t, render.Plugin{}, group[3])
}

func TestDefaultPluginsBuild(t *testing.T) {
	previous := log.Default()
	t.Cleanup(func() { log.SetDefault(previous) })

	a := app.New().AddPlugins(
		engine.DefaultPlugins().Set(asset.Plugin{FS: fstest.MapFS{}}),
	)

	for _, p := range []app.Plugin{logging.Plugin{}, asset.Plugin{}, window.Plugin{}, render.Plugin{}} {
		assert.True(t, a.HasPlugin(p))
	}
	assert.NotNil(t, app.Resource[asset.Assets](a))
	assert.NotNil(t, app.Resource[window.Window](a))
	assert.NotNil(t, app.Resource[render.Screen](a))
	assert.NotNil(t, app.Resource[logging.Logger](a))
}

func TestDefaultPluginsDisable(t *testing.T) {
	group := engine.DefaultPlugins().Disable(window.Plugin{})

	assert.Len(t, group, 3)
	for _, p := range group {
		assert.NotEqual(t, window.Plugin{}, p)
	}
}
