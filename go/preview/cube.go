package preview

import (
	"sort"

	"github.com/rmmh/isoview/go/render"
	rp "github.com/rmmh/isoview/go/resourcepack"
	"github.com/samber/lo"
)

// Texture variables tried for each face of a synthesized cube, before the
// shared fallbacks.
var cubeSlots = map[render.Direction][]string{
	render.Up:    {"top", "end", "up"},
	render.Down:  {"bottom", "end", "down"},
	render.North: {"front", "north", "side"},
	render.South: {"south", "side"},
	render.West:  {"side", "west"},
	render.East:  {"side", "east"},
}

var sharedSlots = []string{"all", "particle"}

// defaultCube builds one full cube whose faces name texture ids directly,
// picked from textures by slot. Faces with no usable slot are left off.
func defaultCube(textures map[string]string) *rp.ModelElement {
	keys := lo.Keys(textures)
	sort.Strings(keys)

	el := &rp.ModelElement{
		From:  []float64{0, 0, 0},
		To:    []float64{16, 16, 16},
		Faces: map[string]rp.BlockModelFace{},
	}
	for _, d := range render.Directions {
		slots := append(append(append([]string{}, cubeSlots[d]...), sharedSlots...), keys...)
		for _, slot := range slots {
			value, ok := textures[slot]
			if !ok {
				continue
			}
			if id, ok := render.ResolveTexture(value, textures); ok {
				el.Faces[string(d)] = rp.BlockModelFace{Texture: id}
				break
			}
		}
	}
	return el
}

// ownTextures is the texture map of an asset with no model at all.
func ownTextures(assetID string) map[string]string {
	ns, path := rp.SplitID(rp.BlockName(assetID))
	return map[string]string{"all": ns + ":block/" + path}
}
