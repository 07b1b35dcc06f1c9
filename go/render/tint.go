package render

import (
	"strings"

	rp "github.com/rmmh/isoview/go/resourcepack"
)

// Textures that vanilla colors with a biome colormap.
var tintTable = map[string]TintChannel{
	"minecraft:block/grass_block_top":          TintGrass,
	"minecraft:block/grass_block_side_overlay": TintGrass,
	"minecraft:block/short_grass":              TintGrass,
	"minecraft:block/grass":                    TintGrass,
	"minecraft:block/tall_grass_top":           TintGrass,
	"minecraft:block/tall_grass_bottom":        TintGrass,
	"minecraft:block/fern":                     TintGrass,
	"minecraft:block/large_fern_top":           TintGrass,
	"minecraft:block/large_fern_bottom":        TintGrass,
	"minecraft:block/sugar_cane":               TintGrass,
	"minecraft:block/bush":                     TintGrass,
	"minecraft:block/oak_leaves":               TintFoliage,
	"minecraft:block/jungle_leaves":            TintFoliage,
	"minecraft:block/acacia_leaves":            TintFoliage,
	"minecraft:block/dark_oak_leaves":          TintFoliage,
	"minecraft:block/mangrove_leaves":          TintFoliage,
	"minecraft:block/vine":                     TintFoliage,
}

// TintKey normalizes a texture id to "namespace:category/name".
func TintKey(textureID string) string {
	ns, path := rp.SplitID(rp.CanonicalID(textureID))
	if !strings.Contains(path, "/") {
		path = "block/" + path
	}
	return ns + ":" + path
}

// ResolveTint picks the colormap for a face. The face's tintindex is
// authoritative: without it a face is never tinted, whatever its texture.
func ResolveTint(textureID string, tintIndex *int) TintChannel {
	if tintIndex == nil {
		return TintNone
	}
	return tintTable[TintKey(textureID)]
}
