package render

import "github.com/plus3/ducky/asset"

// Camera2dBundle holds the components of a 2D camera.
type Camera2dBundle struct {
	Camera     Camera2d
	Projection OrthographicProjection
	Transform  Transform
}

// NewCamera2dBundle returns an active camera at the origin with the default
// projection. It sits at Z 1000 so it looks down on everything in front of it.
func NewCamera2dBundle() Camera2dBundle {
	return Camera2dBundle{
		Camera: Camera2d{
			ClearColor: DefaultClearColor,
			IsActive:   true,
		},
		Projection: DefaultProjection(),
		Transform:  FromXYZ(0, 0, 1000),
	}
}

func (b Camera2dBundle) Components() []any {
	return []any{b.Camera, b.Projection, b.Transform}
}

// SpriteBundle holds the components of a drawable sprite.
type SpriteBundle struct {
	Sprite     Sprite
	Transform  Transform
	Visibility Visibility
}

// NewSpriteBundle returns a visible sprite of image at the origin.
func NewSpriteBundle(image asset.Handle) SpriteBundle {
	return SpriteBundle{
		Sprite:     Sprite{Image: image},
		Transform:  DefaultTransform(),
		Visibility: Visible,
	}
}

func (b SpriteBundle) Components() []any {
	return []any{b.Sprite, b.Transform, b.Visibility}
}
