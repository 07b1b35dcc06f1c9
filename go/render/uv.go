package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var fullUV = UV{U: 0, V: 0, Width: 1, Height: 1}

// AutoUV derives a face's UV rectangle from the element bounds, matching the
// model format's behavior when a face omits "uv".
func AutoUV(d Direction, from, to mgl64.Vec3) [4]float64 {
	switch d {
	case Down:
		return [4]float64{from.X(), 16 - to.Z(), to.X(), 16 - from.Z()}
	case Up:
		return [4]float64{from.X(), from.Z(), to.X(), to.Z()}
	case North:
		return [4]float64{16 - to.X(), 16 - to.Y(), 16 - from.X(), 16 - from.Y()}
	case South:
		return [4]float64{from.X(), 16 - to.Y(), to.X(), 16 - from.Y()}
	case West:
		return [4]float64{from.Z(), 16 - to.Y(), to.Z(), 16 - from.Y()}
	case East:
		return [4]float64{16 - to.Z(), 16 - to.Y(), 16 - from.Z(), 16 - from.Y()}
	}
	return [4]float64{0, 0, 16, 16}
}

// NormalizeUV converts a 0..16 grid UV into a 0..1 texture window. A UV
// that is missing, not four values long, non-finite, or zero in either
// extent maps to the full texture. frames > 1 narrows the window to the
// first frame of a vertical animation strip.
func NormalizeUV(uv []float64, frames int) UV {
	if len(uv) != 4 {
		return sliceFrame(fullUV, frames)
	}
	for _, c := range uv {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return sliceFrame(fullUV, frames)
		}
	}
	u1, v1, u2, v2 := uv[0], uv[1], uv[2], uv[3]
	w, h := math.Abs(u2-u1), math.Abs(v2-v1)
	if w == 0 || h == 0 {
		return sliceFrame(fullUV, frames)
	}
	return sliceFrame(UV{
		U:      math.Min(u1, u2) / 16,
		V:      math.Min(v1, v2) / 16,
		Width:  w / 16,
		Height: h / 16,
		FlipX:  u2 < u1,
		FlipY:  v2 < v1,
	}, frames)
}

func sliceFrame(uv UV, frames int) UV {
	if frames > 1 {
		uv.Height /= float64(frames)
	}
	return uv
}

// FaceUV resolves a face's UV window, deriving it from the bounds when the
// face has none.
func FaceUV(d Direction, uv []float64, from, to mgl64.Vec3, frames int) UV {
	if uv == nil {
		auto := AutoUV(d, from, to)
		uv = auto[:]
	}
	return NormalizeUV(uv, frames)
}
