package render

import (
	"testing"
	"testing/fstest"

	"github.com/plus3/ducky/asset"
	"github.com/plus3/ducky/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderWorld(t *testing.T) (*ecs.Storage, *ecs.Scheduler, *RenderSystem) {
	t.Helper()
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Camera2d](registry)
	ecs.RegisterComponent[OrthographicProjection](registry)
	ecs.RegisterComponent[Sprite](registry)
	ecs.RegisterComponent[Visibility](registry)

	storage := ecs.NewStorage(registry)
	scheduler := ecs.NewScheduler(storage)
	system := &RenderSystem{}
	scheduler.AddSystems(ecs.Draw, system)
	return storage, scheduler, system
}

func TestRenderSystemWithoutScreen(t *testing.T) {
	storage, scheduler, system := newRenderWorld(t)
	storage.SpawnBundle(NewCamera2dBundle())
	storage.SpawnBundle(NewSpriteBundle(asset.Handle{Path: "ducky.png"}))

	assert.NotPanics(t, func() { scheduler.RunSchedule(ecs.Draw, 0) })
	assert.Empty(t, system.textures)
}

func TestActiveCameras(t *testing.T) {
	storage, scheduler, system := newRenderWorld(t)

	late := NewCamera2dBundle()
	late.Camera.Order = 2
	storage.SpawnBundle(late)

	inactive := NewCamera2dBundle()
	inactive.Camera.IsActive = false
	storage.SpawnBundle(inactive)

	first := storage.Spawn(Camera2d{Order: -1, IsActive: true}, DefaultTransform())

	scheduler.RunSchedule(ecs.Draw, 0)
	cameras := system.activeCameras()

	require.Len(t, cameras, 2)
	assert.Equal(t, first, cameras[0].id)
	assert.Equal(t, DefaultProjection(), cameras[0].projection, "missing projection falls back to the default")
	assert.Equal(t, 2, cameras[1].camera.Order)
}

func TestVisibleSprites(t *testing.T) {
	storage, scheduler, system := newRenderWorld(t)

	front := NewSpriteBundle(asset.Handle{Path: "front.png"})
	front.Transform = FromXYZ(0, 0, 5)
	storage.SpawnBundle(front)

	hidden := NewSpriteBundle(asset.Handle{Path: "hidden.png"})
	hidden.Visibility = Hidden
	storage.SpawnBundle(hidden)

	back := NewSpriteBundle(asset.Handle{Path: "back.png"})
	back.Transform = FromXYZ(0, 0, -5)
	storage.SpawnBundle(back)

	storage.Spawn(Sprite{Image: asset.Handle{Path: "bare.png"}}, DefaultTransform())

	scheduler.RunSchedule(ecs.Draw, 0)
	sprites := system.visibleSprites()

	var paths []string
	for _, item := range sprites {
		paths = append(paths, item.sprite.Image.Path)
	}
	assert.Equal(t, []string{"back.png", "bare.png", "front.png"}, paths)
}

func TestTextureNotLoaded(t *testing.T) {
	storage, _, system := newRenderWorld(t)

	tex, _, _ := system.texture(asset.Handle{Path: "ducky.png"})
	assert.Nil(t, tex, "no asset server")

	server := asset.NewServer(fstest.MapFS{})
	storage.AddSingleton(asset.Assets{Server: server})
	t.Cleanup(func() { _ = server.Close() })

	h := server.Load("missing.png")
	tex, _, _ = system.texture(h)
	assert.Nil(t, tex, "still pending")
	assert.Empty(t, system.textures)
}
