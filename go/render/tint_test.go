package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveTint(t *testing.T) {
	zero := 0
	for _, tc := range []struct {
		tex  string
		tint *int
		want TintChannel
	}{
		{"minecraft:block/grass_block_top", &zero, TintGrass},
		{"block/grass_block_top", &zero, TintGrass},
		{"grass_block_top", &zero, TintGrass},
		{"minecraft:block/oak_leaves", &zero, TintFoliage},
		{"minecraft:block/oak_leaves", nil, TintNone},
		{"minecraft:block/grass_block_top", nil, TintNone},
		{"minecraft:block/stone", &zero, TintNone},
		{"mymod:block/oak_leaves", &zero, TintNone},
	} {
		require.Equal(t, tc.want, ResolveTint(tc.tex, tc.tint), "ResolveTint(%q)", tc.tex)
	}
}
