package render

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/ducky/asset"
	"github.com/stretchr/testify/assert"
)

const delta = 1e-9

func assertPoint(t *testing.T, g ebiten.GeoM, x, y, wantX, wantY float64) {
	t.Helper()
	gotX, gotY := g.Apply(x, y)
	assert.InDelta(t, wantX, gotX, delta, "x of (%v, %v)", x, y)
	assert.InDelta(t, wantY, gotY, delta, "y of (%v, %v)", x, y)
}

func TestSpriteGeoM(t *testing.T) {
	camera := FromXYZ(0, 0, 1000)
	projection := DefaultProjection()

	t.Run("centred at origin", func(t *testing.T) {
		sprite := &Sprite{}
		transform := DefaultTransform()
		g := spriteGeoM(4, 2, sprite, &transform, &camera, &projection, 100, 100)

		assertPoint(t, g, 0, 0, 48, 49)
		assertPoint(t, g, 4, 2, 52, 51)
	})

	t.Run("world is y-up", func(t *testing.T) {
		sprite := &Sprite{}
		transform := FromXYZ(10, 20, 0)
		g := spriteGeoM(4, 2, sprite, &transform, &camera, &projection, 100, 100)

		assertPoint(t, g, 0, 0, 58, 29)
	})

	t.Run("camera follows", func(t *testing.T) {
		sprite := &Sprite{}
		transform := FromXYZ(10, 20, 0)
		moved := FromXYZ(10, 20, 1000)
		g := spriteGeoM(4, 2, sprite, &transform, &moved, &projection, 100, 100)

		assertPoint(t, g, 0, 0, 48, 49)
	})

	t.Run("flip x", func(t *testing.T) {
		sprite := &Sprite{FlipX: true}
		transform := DefaultTransform()
		g := spriteGeoM(4, 2, sprite, &transform, &camera, &projection, 100, 100)

		assertPoint(t, g, 0, 0, 52, 49)
	})

	t.Run("flip y", func(t *testing.T) {
		sprite := &Sprite{FlipY: true}
		transform := DefaultTransform()
		g := spriteGeoM(4, 2, sprite, &transform, &camera, &projection, 100, 100)

		assertPoint(t, g, 0, 0, 48, 51)
	})

	t.Run("bottom left anchor", func(t *testing.T) {
		sprite := &Sprite{Anchor: AnchorBottomLeft}
		transform := DefaultTransform()
		g := spriteGeoM(4, 2, sprite, &transform, &camera, &projection, 100, 100)

		assertPoint(t, g, 0, 2, 50, 50)
		assertPoint(t, g, 4, 0, 54, 48)
	})

	t.Run("custom size", func(t *testing.T) {
		sprite := &Sprite{CustomSize: &Vec2{X: 8, Y: 8}}
		transform := DefaultTransform()
		g := spriteGeoM(4, 2, sprite, &transform, &camera, &projection, 100, 100)

		assertPoint(t, g, 0, 0, 46, 46)
		assertPoint(t, g, 4, 2, 54, 54)
	})

	t.Run("scale and rotation", func(t *testing.T) {
		sprite := &Sprite{}
		transform := DefaultTransform()
		transform.Scale = Vec2{X: 2, Y: 2}
		transform.Rotation = math.Pi / 2
		g := spriteGeoM(4, 2, sprite, &transform, &camera, &projection, 100, 100)

		// Top-left corner sits at world (-4, 2); a quarter turn takes it to (-2, -4).
		assertPoint(t, g, 0, 0, 48, 54)
	})

	t.Run("projection scale", func(t *testing.T) {
		sprite := &Sprite{}
		transform := DefaultTransform()
		zoomed := OrthographicProjection{Scale: 2, ViewportOrigin: Vec2{X: 0.5, Y: 0.5}}
		g := spriteGeoM(4, 2, sprite, &transform, &camera, &zoomed, 100, 100)

		assertPoint(t, g, 0, 0, 49, 49.5)
	})

	t.Run("viewport origin", func(t *testing.T) {
		sprite := &Sprite{}
		transform := DefaultTransform()
		corner := OrthographicProjection{Scale: 1}
		g := spriteGeoM(4, 2, sprite, &transform, &camera, &corner, 100, 100)

		assertPoint(t, g, 0, 0, -2, -1)
	})
}

func TestViewGeoMIgnoresInvalidScale(t *testing.T) {
	camera := DefaultTransform()
	projection := OrthographicProjection{ViewportOrigin: Vec2{X: 0.5, Y: 0.5}}
	g := viewGeoM(&camera, &projection, 200, 100)

	assertPoint(t, g, 10, 10, 110, 40)
}

func TestFilterFor(t *testing.T) {
	assert.Equal(t, ebiten.FilterLinear, filterFor(asset.ImageSettings{}))
	assert.Equal(t, ebiten.FilterLinear, filterFor(asset.ImageSettings{Sampler: asset.SamplerLinear}))
	assert.Equal(t, ebiten.FilterNearest, filterFor(asset.ImageSettings{Sampler: asset.SamplerNearest}))
}
