package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveTexture(t *testing.T) {
	textures := map[string]string{
		"all":      "minecraft:block/stone",
		"side":     "#all",
		"particle": "#side",
		"self":     "#self",
		"ping":     "#pong",
		"pong":     "#ping",
		"empty":    "",
	}
	for _, tc := range []struct {
		ref  string
		want string
		ok   bool
	}{
		{"minecraft:block/dirt", "minecraft:block/dirt", true},
		{"#all", "minecraft:block/stone", true},
		{"#particle", "minecraft:block/stone", true},
		{"#missing", "#missing", false},
		{"#self", "#self", false},
		{"#ping", "#ping", false},
		{"#empty", "", false},
		{"", "", false},
	} {
		got, ok := ResolveTexture(tc.ref, textures)
		require.Equal(t, tc.want, got, "ResolveTexture(%q)", tc.ref)
		require.Equal(t, tc.ok, ok, "ResolveTexture(%q)", tc.ref)
	}
}

func TestResolveTextureChainBound(t *testing.T) {
	// ten hops starting from #b resolve; the eleventh, starting from #a, fails
	textures := map[string]string{}
	for i := 0; i < MaxTextureHops; i++ {
		textures[string(rune('a'+i))] = "#" + string(rune('a'+i+1))
	}
	textures[string(rune('a'+MaxTextureHops))] = "minecraft:block/end"
	got, ok := ResolveTexture("#a", textures)
	require.False(t, ok, "11 references is one too many")
	require.Equal(t, "#"+string(rune('a'+MaxTextureHops)), got)

	got, ok = ResolveTexture("#b", textures)
	require.True(t, ok)
	require.Equal(t, "minecraft:block/end", got)
}
