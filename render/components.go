// Package render draws sprites through 2D cameras onto the ebiten screen.
//
// World space is y-up with the origin at the centre of the camera's view.
// Each active Camera2d clears the screen to its clear colour and then draws
// every visible Sprite, back to front by translation Z.
package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/ducky/asset"
)

type Vec2 struct {
	X, Y float64
}

type Vec3 struct {
	X, Y, Z float64
}

// Transform places an entity in world space. Rotation is in radians,
// counter-clockwise.
type Transform struct {
	Translation Vec3
	Rotation    float64
	Scale       Vec2
}

// DefaultTransform is the identity transform.
func DefaultTransform() Transform {
	return Transform{Scale: Vec2{X: 1, Y: 1}}
}

// FromXYZ returns an unrotated, unscaled transform at (x, y, z).
func FromXYZ(x, y, z float64) Transform {
	t := DefaultTransform()
	t.Translation = Vec3{X: x, Y: y, Z: z}
	return t
}

// Camera2d marks an entity as a 2D camera. Cameras draw in ascending Order.
type Camera2d struct {
	Order int
	// ClearColor fills the screen before the camera draws. A fully
	// transparent colour leaves what earlier cameras drew.
	ClearColor color.RGBA
	IsActive   bool
}

// DefaultClearColor is the dark grey screens are cleared to.
var DefaultClearColor = color.RGBA{R: 43, G: 44, B: 47, A: 255}

// OrthographicProjection maps the camera's view onto the screen.
type OrthographicProjection struct {
	// Scale is the number of world units per screen pixel.
	Scale float64
	// ViewportOrigin is where the camera position lands on screen, as a
	// fraction of the screen size. (0.5, 0.5) is the centre.
	ViewportOrigin Vec2
}

func DefaultProjection() OrthographicProjection {
	return OrthographicProjection{
		Scale:          1,
		ViewportOrigin: Vec2{X: 0.5, Y: 0.5},
	}
}

// Anchor is the point of a sprite placed at its translation, in fractions
// of the sprite size from its centre. Y points up.
type Anchor Vec2

var (
	AnchorCenter      = Anchor{}
	AnchorBottomLeft  = Anchor{X: -0.5, Y: -0.5}
	AnchorBottomRight = Anchor{X: 0.5, Y: -0.5}
	AnchorTopLeft     = Anchor{X: -0.5, Y: 0.5}
	AnchorTopRight    = Anchor{X: 0.5, Y: 0.5}
)

// Sprite draws an image asset.
type Sprite struct {
	Image asset.Handle
	// Color tints the image. Nil draws it unchanged.
	Color color.Color
	FlipX bool
	FlipY bool
	// Anchor is the sprite point placed at the entity translation.
	Anchor Anchor
	// CustomSize overrides the drawn size in world units. Nil uses the
	// image size.
	CustomSize *Vec2
}

type Visibility int

const (
	Visible Visibility = iota
	Hidden
)

// Screen is the image the Draw schedule renders into. The window runner
// sets it before every Draw.
type Screen struct {
	*ebiten.Image
}
