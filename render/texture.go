package render

import (
	"image"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/ducky/asset"
)

type texture struct {
	image      *ebiten.Image
	generation uint64
}

// textureCache keeps one GPU image per asset, replacing it when the asset's
// generation moves on.
type textureCache struct {
	entries map[uuid.UUID]*texture
	upload  func(image.Image) *ebiten.Image
	release func(*ebiten.Image)
}

func newTextureCache() *textureCache {
	return &textureCache{
		entries: make(map[uuid.UUID]*texture),
		upload:  ebiten.NewImageFromImage,
		release: (*ebiten.Image).Deallocate,
	}
}

// get returns the GPU image for generation of h, uploading img if the cached
// one is missing or older.
func (c *textureCache) get(h asset.Handle, img image.Image, generation uint64) *ebiten.Image {
	cached, ok := c.entries[h.ID]
	if ok && cached.generation == generation {
		return cached.image
	}
	if ok {
		c.release(cached.image)
	}

	log.Debug("uploading texture", "path", h.Path, "generation", generation)
	cached = &texture{
		image:      c.upload(img),
		generation: generation,
	}
	c.entries[h.ID] = cached
	return cached.image
}

func (c *textureCache) len() int {
	return len(c.entries)
}
