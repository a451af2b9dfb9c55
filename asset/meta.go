package asset

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// MetaMode selects when the server looks for a "<path>.meta" file.
type MetaMode int

const (
	MetaAlways MetaMode = iota
	MetaNever
	MetaPaths
)

// MetaCheck decides which assets get a meta lookup. The zero value checks
// every asset. Web builds served from static hosts usually want
// MetaCheckNever, as probing for missing .meta files there returns HTML
// instead of a 404.
type MetaCheck struct {
	Mode  MetaMode
	Paths []string
}

var (
	MetaCheckAlways = MetaCheck{Mode: MetaAlways}
	MetaCheckNever  = MetaCheck{Mode: MetaNever}
)

// MetaCheckPaths checks meta files only for the listed asset paths.
func MetaCheckPaths(paths ...string) MetaCheck {
	return MetaCheck{Mode: MetaPaths, Paths: paths}
}

// Applies reports whether a meta lookup should happen for assetPath.
func (m MetaCheck) Applies(assetPath string) bool {
	switch m.Mode {
	case MetaNever:
		return false
	case MetaPaths:
		return slices.Contains(m.Paths, assetPath)
	default:
		return true
	}
}

// Sampler picks the texture filter used when a sprite is scaled.
type Sampler string

const (
	SamplerDefault Sampler = ""
	SamplerLinear  Sampler = "linear"
	SamplerNearest Sampler = "nearest"
)

// ImageSettings are the per-image options a meta file can set.
type ImageSettings struct {
	Sampler Sampler `toml:"sampler"`
}

// Meta is the TOML document stored next to an asset as "<path>.meta":
//
//	[image]
//	sampler = "nearest"
type Meta struct {
	Image ImageSettings `toml:"image"`
}

// ParseMeta decodes a meta document. Unknown keys and samplers are errors.
func ParseMeta(data []byte) (Meta, error) {
	var meta Meta
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&meta); err != nil {
		return Meta{}, fmt.Errorf("decode meta: %w", err)
	}

	switch meta.Image.Sampler {
	case SamplerDefault, SamplerLinear, SamplerNearest:
	default:
		return Meta{}, fmt.Errorf("unknown sampler %q", meta.Image.Sampler)
	}
	return meta, nil
}

// readMeta loads the meta file for assetPath. A missing file yields the zero Meta.
func readMeta(fsys fs.FS, assetPath string) (Meta, error) {
	data, err := fs.ReadFile(fsys, assetPath+".meta")
	if errors.Is(err, fs.ErrNotExist) {
		return Meta{}, nil
	}
	if err != nil {
		return Meta{}, err
	}
	return ParseMeta(data)
}
