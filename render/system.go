package render

import (
	"image"
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/ducky/asset"
	"github.com/plus3/ducky/ecs"
)

type cameraItem struct {
	id         ecs.EntityId
	camera     *Camera2d
	transform  *Transform
	projection OrthographicProjection
}

type spriteItem struct {
	id        ecs.EntityId
	sprite    *Sprite
	transform *Transform
}

// drawOp is one step of a frame: a screen clear when image is nil, otherwise
// a sprite draw.
type drawOp struct {
	clear color.RGBA
	image *ebiten.Image
	opts  ebiten.DrawImageOptions
}

// RenderSystem draws every visible sprite through every active camera. It
// runs on the Draw schedule.
type RenderSystem struct {
	Screen ecs.Singleton[Screen]
	Assets ecs.Singleton[asset.Assets]

	Cameras ecs.Query[struct {
		ecs.EntityId
		*Camera2d
		*Transform
		Projection *OrthographicProjection `ecs:"optional"`
	}]
	Sprites ecs.Query[struct {
		ecs.EntityId
		*Sprite
		*Transform
		Visibility *Visibility `ecs:"optional"`
	}]

	textures *textureCache
}

func (s *RenderSystem) Execute(frame *ecs.UpdateFrame) {
	screen := s.Screen.Get()
	if screen == nil || screen.Image == nil {
		return
	}

	for _, op := range s.plan(screen.Bounds().Dx(), screen.Bounds().Dy()) {
		if op.image == nil {
			screen.Fill(op.clear)
			continue
		}
		screen.DrawImage(op.image, &op.opts)
	}
}

// plan lists the clears and draws of one frame on a w x h screen.
func (s *RenderSystem) plan(w, h int) []drawOp {
	cameras := s.activeCameras()
	if len(cameras) == 0 {
		return nil
	}
	sprites := s.visibleSprites()

	var ops []drawOp
	for _, cam := range cameras {
		if cam.camera.ClearColor.A > 0 {
			ops = append(ops, drawOp{clear: cam.camera.ClearColor})
		}

		for _, item := range sprites {
			tex, size, settings := s.texture(item.sprite.Image)
			if tex == nil {
				continue
			}

			op := drawOp{image: tex}
			op.opts.GeoM = spriteGeoM(size.X, size.Y, item.sprite, item.transform, cam.transform, &cam.projection, w, h)
			op.opts.Filter = filterFor(settings)
			if item.sprite.Color != nil {
				op.opts.ColorScale.ScaleWithColor(item.sprite.Color)
			}
			ops = append(ops, op)
		}
	}
	return ops
}

// activeCameras returns the active cameras in draw order.
func (s *RenderSystem) activeCameras() []cameraItem {
	var cameras []cameraItem
	for id, c := range s.Cameras.Iter() {
		if !c.Camera2d.IsActive {
			continue
		}
		projection := DefaultProjection()
		if c.Projection != nil {
			projection = *c.Projection
		}
		cameras = append(cameras, cameraItem{
			id:         id,
			camera:     c.Camera2d,
			transform:  c.Transform,
			projection: projection,
		})
	}
	sort.SliceStable(cameras, func(i, j int) bool {
		if cameras[i].camera.Order != cameras[j].camera.Order {
			return cameras[i].camera.Order < cameras[j].camera.Order
		}
		return cameras[i].id < cameras[j].id
	})
	return cameras
}

// visibleSprites returns the sprites to draw, back to front.
func (s *RenderSystem) visibleSprites() []spriteItem {
	var sprites []spriteItem
	for id, sp := range s.Sprites.Iter() {
		if sp.Visibility != nil && *sp.Visibility == Hidden {
			continue
		}
		sprites = append(sprites, spriteItem{id: id, sprite: sp.Sprite, transform: sp.Transform})
	}
	sort.SliceStable(sprites, func(i, j int) bool {
		zi, zj := sprites[i].transform.Translation.Z, sprites[j].transform.Translation.Z
		if zi != zj {
			return zi < zj
		}
		return sprites[i].id < sprites[j].id
	})
	return sprites
}

// texture returns the GPU image for h with its pixel size, or nil until the
// asset has loaded.
func (s *RenderSystem) texture(h asset.Handle) (*ebiten.Image, image.Point, asset.ImageSettings) {
	assets := s.Assets.Get()
	if assets == nil || assets.Server == nil || h.IsZero() {
		return nil, image.Point{}, asset.ImageSettings{}
	}

	img, settings, generation, ok := assets.Snapshot(h)
	if !ok {
		return nil, image.Point{}, asset.ImageSettings{}
	}
	if s.textures == nil {
		s.textures = newTextureCache()
	}
	return s.textures.get(h, img, generation), img.Bounds().Size(), settings
}
