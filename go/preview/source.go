// Package preview resolves an asset and its state into positioned faces
// for the isometric view, falling back to a flat icon for content that
// does not project well.
package preview

import (
	"io"

	"github.com/rmmh/isoview/go/render"
	rp "github.com/rmmh/isoview/go/resourcepack"
)

// Source provides pack data. resourcepack.Pack and resourcepack.Stack
// implement it.
type Source interface {
	ResolveState(assetID string, props map[string]string) ([]rp.ModelSpec, error)
	LoadModel(modelID string) (*rp.Model, error)
	LoadTexture(textureID string) (io.ReadCloser, error)
	TextureURL(textureID string) string
}

// Instance is one cell of a (possibly multi-block) preview.
type Instance struct {
	Offset   [3]int                   `json:"offset"`
	AssetID  string                   `json:"assetId"`
	State    map[string]string        `json:"state"`
	Elements []render.RenderedElement `json:"elements"`
}

type Result struct {
	Asset     string     `json:"asset"`
	Instances []Instance `json:"instances,omitempty"`
	// Faces holds every instance's faces shifted into place, back to front.
	Faces    []render.RenderedFace `json:"faces"`
	FlatIcon bool                  `json:"flatIcon"`
	IconURL  string                `json:"iconUrl,omitempty"`
}

// Empty reports whether there is nothing to show.
func (r *Result) Empty() bool {
	return len(r.Faces) == 0 && !r.FlatIcon
}
