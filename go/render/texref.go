package render

import "strings"

// MaxTextureHops bounds "#name" indirection so cyclic texture maps terminate.
const MaxTextureHops = 10

// ResolveTexture follows "#name" references through a model's texture map.
// It returns the terminal texture id and true, or the last value reached and
// false when a name is missing, the chain is longer than MaxTextureHops, or
// the terminal value is empty.
func ResolveTexture(ref string, textures map[string]string) (string, bool) {
	tex := ref
	for hops := 0; strings.HasPrefix(tex, "#"); hops++ {
		if hops == MaxTextureHops {
			return tex, false
		}
		next, ok := textures[tex[1:]]
		if !ok {
			return tex, false
		}
		tex = next
	}
	return tex, tex != ""
}
