package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/ducky/asset"
)

// spriteGeoM maps pixels of a w x h image to screen pixels for a sprite
// seen through a camera.
func spriteGeoM(w, h int, sprite *Sprite, transform *Transform, camera *Transform, projection *OrthographicProjection, screenW, screenH int) ebiten.GeoM {
	var g ebiten.GeoM

	size := Vec2{X: float64(w), Y: float64(h)}
	if sprite.CustomSize != nil {
		size = *sprite.CustomSize
	}
	g.Scale(size.X/float64(w), size.Y/float64(h))

	if sprite.FlipX {
		g.Scale(-1, 1)
		g.Translate(size.X, 0)
	}
	if sprite.FlipY {
		g.Scale(1, -1)
		g.Translate(0, size.Y)
	}

	// Image space is y-down; move the anchor to the origin, then flip up.
	g.Translate(-size.X*(0.5+sprite.Anchor.X), -size.Y*(0.5-sprite.Anchor.Y))
	g.Scale(1, -1)

	g.Scale(transform.Scale.X, transform.Scale.Y)
	g.Rotate(transform.Rotation)
	g.Translate(transform.Translation.X, transform.Translation.Y)

	g.Concat(viewGeoM(camera, projection, screenW, screenH))
	return g
}

// viewGeoM maps world space to screen pixels.
func viewGeoM(camera *Transform, projection *OrthographicProjection, screenW, screenH int) ebiten.GeoM {
	var g ebiten.GeoM

	g.Translate(-camera.Translation.X, -camera.Translation.Y)
	g.Rotate(-camera.Rotation)

	scale := projection.Scale
	if scale <= 0 {
		scale = 1
	}
	g.Scale(1/scale, -1/scale)
	g.Translate(float64(screenW)*projection.ViewportOrigin.X, float64(screenH)*projection.ViewportOrigin.Y)
	return g
}

func filterFor(settings asset.ImageSettings) ebiten.Filter {
	if settings.Sampler == asset.SamplerNearest {
		return ebiten.FilterNearest
	}
	return ebiten.FilterLinear
}
