package main

import (
	"bytes"
	"image"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"
	"github.com/plus3/ducky/app"
	"github.com/plus3/ducky/asset"
	"github.com/plus3/ducky/ecs"
	"github.com/plus3/ducky/engine"
	"github.com/plus3/ducky/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T, fsys fstest.MapFS) *app.App {
	t.Helper()
	previous := log.Default()
	t.Cleanup(func() { log.SetDefault(previous) })

	a := newApp(engine.DefaultPlugins().Set(asset.Plugin{FS: fsys}))
	// Tests drive frames themselves; never open a window.
	a.SetRunner(func(*app.App) error { return nil })
	t.Cleanup(func() { _ = a.Run() })
	return a
}

func duckyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16))))
	return buf.Bytes()
}

func TestSetupSpawnsCameraAndSprite(t *testing.T) {
	a := testApp(t, fstest.MapFS{duckyPath: {Data: duckyPNG(t)}})

	for range 5 {
		require.NoError(t, a.Update(1.0/60.0))
	}
	storage := a.Storage()

	assert.Equal(t, 2, storage.EntityCount())

	cameras := ecs.NewQuery[struct{ *render.Camera2d }](storage)
	cameras.Execute()
	assert.Equal(t, 1, cameras.Len())

	sprites := ecs.NewQuery[struct {
		*render.Sprite
		*render.Transform
	}](storage)
	sprites.Execute()
	_, sprite, ok := sprites.Single()
	require.True(t, ok)
	assert.Equal(t, duckyPath, sprite.Sprite.Image.Path)
	assert.Equal(t, render.DefaultTransform(), *sprite.Transform)

	assets := app.Resource[asset.Assets](a)
	assets.Wait()
	assert.Equal(t, asset.Loaded, assets.State(sprite.Sprite.Image))
}

func TestSetupRunsOnce(t *testing.T) {
	a := testApp(t, fstest.MapFS{duckyPath: {Data: duckyPNG(t)}})

	for range 10 {
		require.NoError(t, a.Update(1.0/60.0))
	}

	var found bool
	for _, stats := range a.Scheduler().GetStats().Systems {
		if stats.Name == "setup" {
			found = true
			assert.Equal(t, ecs.Startup, stats.Schedule)
			assert.Equal(t, int64(1), stats.ExecutionCount)
		}
	}
	assert.True(t, found)
	assert.Equal(t, 2, a.Storage().EntityCount())
}

func TestMissingDuckDoesNotCrash(t *testing.T) {
	a := testApp(t, fstest.MapFS{})

	require.NoError(t, a.Update(0))
	assets := app.Resource[asset.Assets](a)
	assets.Wait()

	require.NoError(t, a.Update(0))
	assert.NotPanics(t, a.Draw)
	assert.Equal(t, 2, a.Storage().EntityCount())
}

func TestMetaCheckDisabled(t *testing.T) {
	a := testApp(t, fstest.MapFS{
		duckyPath:           {Data: duckyPNG(t)},
		duckyPath + ".meta": {Data: []byte("{ not toml")},
	})

	require.NoError(t, a.Update(0))
	assert.Equal(t, asset.MetaNever, app.Resource[asset.MetaCheck](a).Mode)

	assets := app.Resource[asset.Assets](a)
	assets.Wait()
	h := assets.Load(duckyPath)
	assert.Equal(t, asset.Loaded, assets.State(h))
}

func TestBundledDuckDecodes(t *testing.T) {
	server := asset.NewDirServer("../../assets")
	require.NoError(t, server.Start(t.Context()))
	t.Cleanup(func() { _ = server.Close() })

	h := server.Load(duckyPath)
	server.Wait()

	require.NoError(t, server.Err(h))
	img, ok := server.Image(h)
	require.True(t, ok)
	assert.False(t, img.Bounds().Empty())
}

func TestEmbeddedPluginsShowDuck(t *testing.T) {
	previous := log.Default()
	t.Cleanup(func() { log.SetDefault(previous) })

	a := newApp(embeddedPlugins())
	a.SetRunner(func(*app.App) error { return nil })
	t.Cleanup(func() { _ = a.Run() })

	require.NoError(t, a.Update(0))
	assets := app.Resource[asset.Assets](a)
	require.NotNil(t, assets)
	assets.Wait()

	h := assets.Load(duckyPath)
	require.NoError(t, assets.Err(h))
	assert.Equal(t, asset.Loaded, assets.State(h))
	assert.Equal(t, 2, a.Storage().EntityCount())
}
