package render

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func TestAutoUV(t *testing.T) {
	from, to := mgl64.Vec3{2, 3, 4}, mgl64.Vec3{10, 12, 14}
	for _, tc := range []struct {
		dir  Direction
		want [4]float64
	}{
		{Up, [4]float64{2, 4, 10, 14}},
		{Down, [4]float64{2, 2, 10, 12}},
		{North, [4]float64{6, 4, 14, 13}},
		{South, [4]float64{2, 4, 10, 13}},
		{West, [4]float64{4, 4, 14, 13}},
		{East, [4]float64{2, 4, 12, 13}},
	} {
		require.Equal(t, tc.want, AutoUV(tc.dir, from, to), "AutoUV(%s)", tc.dir)
	}

	full := AutoUV(Up, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{16, 16, 16})
	require.Equal(t, [4]float64{0, 0, 16, 16}, full)
}

func TestNormalizeUV(t *testing.T) {
	for _, tc := range []struct {
		name string
		uv   []float64
		want UV
	}{
		{"full", []float64{0, 0, 16, 16}, UV{0, 0, 1, 1, false, false}},
		{"quarter", []float64{8, 4, 16, 12}, UV{0.5, 0.25, 0.5, 0.5, false, false}},
		{"flipped x", []float64{16, 0, 0, 16}, UV{0, 0, 1, 1, true, false}},
		{"flipped y", []float64{0, 8, 8, 0}, UV{0, 0, 0.5, 0.5, false, true}},
		{"zero width", []float64{4, 0, 4, 16}, UV{0, 0, 1, 1, false, false}},
		{"zero height", []float64{0, 5, 16, 5}, UV{0, 0, 1, 1, false, false}},
		{"short", []float64{0, 0, 16}, UV{0, 0, 1, 1, false, false}},
		{"nan", []float64{0, math.NaN(), 16, 16}, UV{0, 0, 1, 1, false, false}},
		{"missing", nil, UV{0, 0, 1, 1, false, false}},
	} {
		require.Equal(t, tc.want, NormalizeUV(tc.uv, 1), tc.name)
	}
}

func TestNormalizeUVFrames(t *testing.T) {
	uv := []float64{4, 2, 12, 10}
	single := NormalizeUV(uv, 1)
	for _, frames := range []int{2, 3, 16, 32} {
		got := NormalizeUV(uv, frames)
		require.Equal(t, single.U, got.U)
		require.Equal(t, single.V, got.V)
		require.Equal(t, single.Width, got.Width)
		require.InDelta(t, single.Height/float64(frames), got.Height, 1e-12)
	}
	require.Equal(t, single, NormalizeUV(uv, 0))
}

func TestFaceUVAuto(t *testing.T) {
	// a slab's up face samples the whole texture, its north face the lower half
	from, to := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{16, 8, 16}
	require.Equal(t, UV{0, 0, 1, 1, false, false}, FaceUV(Up, nil, from, to, 1))
	require.Equal(t, UV{0, 0.5, 1, 0.5, false, false}, FaceUV(North, nil, from, to, 1))
	require.Equal(t, UV{0.25, 0, 0.5, 0.5, false, false}, FaceUV(Up, []float64{4, 0, 12, 8}, from, to, 1))
}
