package render

import (
	"strings"

	rp "github.com/rmmh/isoview/go/resourcepack"
)

// Part is one cell of a structure that spans several blocks.
type Part struct {
	Offset [3]int `json:"offset"`
	// AssetID replaces the requested asset for this cell when set.
	AssetID   string            `json:"assetId,omitempty"`
	Overrides map[string]string `json:"overrides"`
}

var facingVectors = map[string][3]int{
	"north": {0, 0, -1},
	"south": {0, 0, 1},
	"east":  {1, 0, 0},
	"west":  {-1, 0, 0},
}

func opposite(v [3]int) [3]int {
	return [3]int{-v[0], -v[1], -v[2]}
}

// Matched by substring, so modded variants ("mymod:tall_grass_variant")
// decompose too.
var tallPlants = []string{
	"sunflower",
	"lilac",
	"rose_bush",
	"peony",
	"tall_grass",
	"large_fern",
	"tall_seagrass",
	"pitcher_plant",
}

var stemFruits = map[string]string{
	"pumpkin_stem": "pumpkin",
	"melon_stem":   "melon",
}

const (
	stemMaxAge  = "7"
	defaultBed  = "north"
	defaultStem = "north"
)

type composeRule struct {
	name string
	// match reports whether the rule applies; when it does, the rule's
	// result (possibly nil) is final.
	match   func(path string, props map[string]string) bool
	compose func(ns, path string, props map[string]string) []Part
}

var composeRules = []composeRule{
	{
		// trapdoor and stairs halves are orientation inside one cell
		name: "single-cell half",
		match: func(path string, _ map[string]string) bool {
			return strings.Contains(path, "trapdoor") || strings.Contains(path, "stairs")
		},
		compose: func(string, string, map[string]string) []Part { return nil },
	},
	{
		name: "door",
		match: func(path string, _ map[string]string) bool {
			return strings.Contains(path, "door")
		},
		compose: func(_, _ string, props map[string]string) []Part {
			return verticalPair(forward(props, "facing", "hinge", "open", "powered"))
		},
	},
	{
		name: "tall plant",
		match: func(path string, _ map[string]string) bool {
			for _, suffix := range tallPlants {
				if strings.Contains(path, suffix) {
					return true
				}
			}
			return false
		},
		compose: func(_, _ string, props map[string]string) []Part {
			return verticalPair(forward(props, "facing"))
		},
	},
	{
		name: "half split",
		match: func(_ string, props map[string]string) bool {
			_, ok := props["half"]
			return ok
		},
		compose: func(_, _ string, props map[string]string) []Part {
			return verticalPair(forward(props, "facing"))
		},
	},
	{
		name: "bed",
		match: func(path string, _ map[string]string) bool {
			return path == "bed" || strings.HasSuffix(path, "_bed")
		},
		compose: func(_, _ string, props map[string]string) []Part {
			facing := props["facing"]
			if _, ok := facingVectors[facing]; !ok {
				facing = defaultBed
			}
			return []Part{
				{Overrides: map[string]string{"part": "foot", "facing": facing}},
				{Offset: facingVectors[facing], Overrides: map[string]string{"part": "head", "facing": facing}},
			}
		},
	},
	{
		name: "attached stem",
		match: func(path string, _ map[string]string) bool {
			return strings.HasPrefix(path, "attached_") && stemFruits[strings.TrimPrefix(path, "attached_")] != ""
		},
		compose: func(ns, path string, props map[string]string) []Part {
			facing := stemFacing(props)
			fruit := stemFruits[strings.TrimPrefix(path, "attached_")]
			return []Part{
				{Overrides: map[string]string{"facing": facing}},
				{Offset: opposite(facingVectors[facing]), AssetID: ns + ":" + fruit, Overrides: map[string]string{}},
			}
		},
	},
	{
		name: "stem",
		match: func(path string, _ map[string]string) bool {
			return stemFruits[path] != ""
		},
		compose: func(ns, path string, props map[string]string) []Part {
			if props["age"] != stemMaxAge || props["ripe"] != "true" {
				return nil
			}
			facing := stemFacing(props)
			return []Part{
				{AssetID: ns + ":attached_" + path, Overrides: map[string]string{"facing": facing}},
				{Offset: opposite(facingVectors[facing]), AssetID: ns + ":" + stemFruits[path], Overrides: map[string]string{}},
			}
		},
	},
}

func stemFacing(props map[string]string) string {
	if _, ok := facingVectors[props["facing"]]; ok {
		return props["facing"]
	}
	return defaultStem
}

func forward(props map[string]string, keys ...string) map[string]string {
	out := map[string]string{}
	for _, k := range keys {
		if v, ok := props[k]; ok {
			out[k] = v
		}
	}
	return out
}

func verticalPair(shared map[string]string) []Part {
	lower := map[string]string{"half": "lower"}
	upper := map[string]string{"half": "upper"}
	for k, v := range shared {
		lower[k] = v
		upper[k] = v
	}
	return []Part{
		{Offset: [3]int{0, 0, 0}, Overrides: lower},
		{Offset: [3]int{0, 1, 0}, Overrides: upper},
	}
}

// Compose splits structures that occupy several cells (doors, beds, tall
// plants, fruiting stems) into per-cell parts. It returns nil for assets that
// fit in one cell.
func Compose(assetID string, props map[string]string) []Part {
	ns, path := rp.SplitID(rp.BlockName(assetID))
	for _, rule := range composeRules {
		if rule.match(path, props) {
			return rule.compose(ns, path, props)
		}
	}
	return nil
}

// ComposeRule names the rule that classifies an asset, or "" if none does.
func ComposeRule(assetID string, props map[string]string) string {
	_, path := rp.SplitID(rp.BlockName(assetID))
	for _, rule := range composeRules {
		if rule.match(path, props) {
			return rule.name
		}
	}
	return ""
}
