package preview

import (
	"strings"

	rp "github.com/rmmh/isoview/go/resourcepack"
)

type iconRule struct {
	name  string
	match func(path string) bool
	// flat is the classification of matching items; a rule with flat unset
	// exempts its items from every later rule.
	flat bool
}

// Items conventionally drawn as flat inventory icons. Matching is by
// substring on the item path, first rule wins.
var iconRules = []iconRule{
	{
		name:  "trapdoor",
		match: func(path string) bool { return strings.Contains(path, "trapdoor") },
	},
	{
		name:  "door",
		match: func(path string) bool { return strings.Contains(path, "door") },
		flat:  true,
	},
	{
		name: "bed",
		match: func(path string) bool {
			return strings.Contains(path, "_bed") || path == "item/bed"
		},
		flat: true,
	},
}

const itemPrefix = "item/"

// wantsFlatIcon reports whether an item asset is shown as a flat icon.
func wantsFlatIcon(assetID string) bool {
	_, path := rp.SplitID(assetID)
	if !strings.HasPrefix(path, itemPrefix) {
		return false
	}
	for _, rule := range iconRules {
		if rule.match(path) {
			return rule.flat
		}
	}
	return false
}

// IconRule names the icon rule that classifies an asset, or "".
func IconRule(assetID string) string {
	_, path := rp.SplitID(rp.CanonicalID(assetID))
	if !strings.HasPrefix(path, itemPrefix) {
		return ""
	}
	for _, rule := range iconRules {
		if rule.match(path) {
			return rule.name
		}
	}
	return ""
}

// blockAsset maps an item asset to the block it places.
func blockAsset(assetID string) string {
	ns, path := rp.SplitID(assetID)
	return ns + ":" + strings.TrimPrefix(path, itemPrefix)
}

// planar reports whether the elements form a cross sprite: every element is
// a vertical sheet (zero extent on X or Z), and the sheets either cross
// each other or are turned about the y axis. Sheets that are flat only on
// Y, such as rails and carpets, are left to projection as top faces.
func planar(elements []*rp.ModelElement) bool {
	if len(elements) == 0 {
		return false
	}
	var alongX, alongZ, turned bool
	for _, el := range elements {
		if el == nil || len(el.From) != 3 || len(el.To) != 3 {
			return false
		}
		switch {
		case el.From[0] == el.To[0]:
			alongX = true
		case el.From[2] == el.To[2]:
			alongZ = true
		default:
			return false
		}
		if el.Rotated() && el.Rotation.Axis == "y" {
			turned = true
		}
	}
	return turned || (alongX && alongZ)
}

// Texture variables that hold the sprite of flat models.
var spriteSlots = []string{"layer0", "cross", "plant", "texture", "particle"}
