package resourcepack

import (
	"regexp"
	"strings"
)

const DefaultNamespace = "minecraft"

func RemoveDefaultPrefix(s string) string {
	if strings.HasPrefix(s, DefaultNamespace+":") {
		return s[len(DefaultNamespace)+1:]
	}
	return s
}

// SplitID splits "ns:path" into its parts, defaulting the namespace.
func SplitID(id string) (ns, path string) {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		ns, path = id[:i], id[i+1:]
	} else {
		path = id
	}
	if ns == "" {
		ns = DefaultNamespace
	}
	return ns, path
}

var packPathRe = regexp.MustCompile(`^/?assets/(\w+)/(?:blockstates|models|textures)/(.*)$`)

// CanonicalID normalizes an asset identifier to "namespace:path" form.
// It accepts bare names ("stone"), namespaced ids, and pack-relative file
// paths ("assets/minecraft/models/block/stone.json").
func CanonicalID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if m := packPathRe.FindStringSubmatch(id); m != nil {
		id = m[1] + ":" + m[2]
	}
	ns, path := SplitID(id)
	path = strings.TrimPrefix(path, "/")
	for _, dir := range []string{"blockstates/", "models/", "textures/"} {
		path = strings.TrimPrefix(path, dir)
	}
	for _, ext := range []string{".png.mcmeta", ".json", ".png"} {
		path = strings.TrimSuffix(path, ext)
	}
	return ns + ":" + path
}

// BlockName returns the canonical blockstate name for an asset id,
// e.g. "minecraft:block/oak_door" -> "minecraft:oak_door".
func BlockName(id string) string {
	ns, path := SplitID(CanonicalID(id))
	path = strings.TrimPrefix(path, "block/")
	return ns + ":" + path
}

// ModelID returns the canonical model id, adding the "block/" category
// used by modern packs when the id has none.
func ModelID(id string) string {
	ns, path := SplitID(CanonicalID(id))
	if !strings.Contains(path, "/") {
		path = "block/" + path
	}
	return ns + ":" + path
}

// Renames of blocks across data versions (from Schemas.java). Only names
// that were never reused by a later version are listed, so a lookup that
// misses can safely retry with the newer name.
var legacyNames = map[string]string{
	"minecraft:purple_shulker_box":                      "minecraft:shulker_box",
	"minecraft:flowing_water":                           "minecraft:water",
	"minecraft:flowing_lava":                            "minecraft:lava",
	"minecraft:blue_coral":                              "minecraft:tube_coral_block",
	"minecraft:pink_coral":                              "minecraft:brain_coral_block",
	"minecraft:purple_coral":                            "minecraft:bubble_coral_block",
	"minecraft:red_coral":                               "minecraft:fire_coral_block",
	"minecraft:yellow_coral":                            "minecraft:horn_coral_block",
	"minecraft:sea_grass":                               "minecraft:seagrass",
	"minecraft:tall_sea_grass":                          "minecraft:tall_seagrass",
	"minecraft:prismarine_bricks_slab":                  "minecraft:prismarine_brick_slab",
	"minecraft:prismarine_bricks_stairs":                "minecraft:prismarine_brick_stairs",
	"minecraft:melon_block":                             "minecraft:melon",
	"minecraft:portal":                                  "minecraft:nether_portal",
	"minecraft:oak_bark":                                "minecraft:oak_wood",
	"minecraft:spruce_bark":                             "minecraft:spruce_wood",
	"minecraft:birch_bark":                              "minecraft:birch_wood",
	"minecraft:jungle_bark":                             "minecraft:jungle_wood",
	"minecraft:acacia_bark":                             "minecraft:acacia_wood",
	"minecraft:dark_oak_bark":                           "minecraft:dark_oak_wood",
	"minecraft:mob_spawner":                             "minecraft:spawner",
	"minecraft:sign":                                    "minecraft:oak_sign",
	"minecraft:wall_sign":                               "minecraft:oak_wall_sign",
	"minecraft:bee_hive":                                "minecraft:beehive",
	"minecraft:warped_fungi":                            "minecraft:warped_fungus",
	"minecraft:crimson_fungi":                           "minecraft:crimson_fungus",
	"minecraft:soul_fire_torch":                         "minecraft:soul_torch",
	"minecraft:soul_fire_wall_torch":                    "minecraft:soul_wall_torch",
	"minecraft:soul_fire_lantern":                       "minecraft:soul_lantern",
	"minecraft:grass_path":                              "minecraft:dirt_path",
	"minecraft:weathered_copper_block":                  "minecraft:oxidized_copper_block",
	"minecraft:oxidized_copper_block":                   "minecraft:oxidized_copper",
	"minecraft:semi_weathered_copper_block":             "minecraft:weathered_copper",
	"minecraft:lightly_weathered_copper_block":          "minecraft:exposed_copper",
	"minecraft:waxed_copper":                            "minecraft:waxed_copper_block",
	"minecraft:waxed_semi_weathered_copper":             "minecraft:waxed_weathered_copper",
	"minecraft:waxed_lightly_weathered_copper":          "minecraft:waxed_exposed_copper",
	"minecraft:grimstone":                               "minecraft:deepslate",
	"minecraft:grimstone_slab":                          "minecraft:cobbled_deepslate_slab",
	"minecraft:grimstone_stairs":                        "minecraft:cobbled_deepslate_stairs",
	"minecraft:grimstone_wall":                          "minecraft:cobbled_deepslate_wall",
	"minecraft:polished_grimstone":                      "minecraft:polished_deepslate",
	"minecraft:grimstone_tiles":                         "minecraft:deepslate_tiles",
	"minecraft:grimstone_bricks":                        "minecraft:deepslate_bricks",
	"minecraft:chiseled_grimstone":                      "minecraft:chiseled_deepslate",
	"minecraft:cave_vines_head":                         "minecraft:cave_vines",
	"minecraft:cave_vines_body":                         "minecraft:cave_vines_plant",
	"minecraft:azalea_leaves_flowers":                   "minecraft:flowering_azalea_leaves",
	"minecraft:grass":                                   "minecraft:short_grass",
	"minecraft:chain":                                   "minecraft:iron_chain",
	"minecraft:semi_weathered_cut_copper":               "minecraft:weathered_cut_copper",
	"minecraft:lightly_weathered_cut_copper":            "minecraft:exposed_cut_copper",
	"minecraft:waxed_semi_weathered_cut_copper":         "minecraft:waxed_weathered_cut_copper",
	"minecraft:waxed_lightly_weathered_cut_copper":      "minecraft:waxed_exposed_cut_copper",
	"minecraft:semi_weathered_cut_copper_slab":          "minecraft:weathered_cut_copper_slab",
	"minecraft:lightly_weathered_cut_copper_slab":       "minecraft:exposed_cut_copper_slab",
	"minecraft:semi_weathered_cut_copper_stairs":        "minecraft:weathered_cut_copper_stairs",
	"minecraft:lightly_weathered_cut_copper_stairs":     "minecraft:exposed_cut_copper_stairs",
	"minecraft:waxed_semi_weathered_cut_copper_slab":    "minecraft:waxed_weathered_cut_copper_slab",
	"minecraft:waxed_lightly_weathered_cut_copper_slab": "minecraft:waxed_exposed_cut_copper_slab",
}

// NewerNames lists the successive renames of a block name, oldest first,
// not including the name itself. Cycles are not possible in the table
// but the walk is bounded anyway.
func NewerNames(name string) []string {
	var out []string
	for i := 0; i < 8; i++ {
		next, ok := legacyNames[name]
		if !ok {
			break
		}
		out = append(out, next)
		name = next
	}
	return out
}
