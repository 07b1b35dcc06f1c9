package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CellCenter is the center of a block cell in model units.
var CellCenter = mgl64.Vec3{8, 8, 8}

// Offsets holds the screen-space anchor of each visible face family.
type Offsets struct {
	Top, Left, Right mgl64.Vec3
}

// FaceOffsets projects an element's bounds to screen offsets for the top,
// left and right face families. scale is pixels per model unit. Screen y
// grows downwards, so the vertical axis is negated. Rotated elements keep
// their vertical placement but are re-centered horizontally on the cell.
func FaceOffsets(from, to mgl64.Vec3, scale float64, center mgl64.Vec3, rotated bool) Offsets {
	mid := from.Add(to).Mul(0.5).Sub(center)
	top := to.Y() - center.Y()
	south := to.Z() - center.Z()
	east := to.X() - center.X()

	o := Offsets{
		Top:   mgl64.Vec3{mid.X(), top, mid.Z()},
		Left:  mgl64.Vec3{mid.X(), mid.Y(), south},
		Right: mgl64.Vec3{east, mid.Y(), mid.Z()},
	}
	if rotated {
		o.Top[0], o.Top[2] = 0, 0
		o.Left[0], o.Left[2] = 0, 0
		o.Right[0], o.Right[2] = 0, 0
	}
	o.Top = toScreen(o.Top, scale)
	o.Left = toScreen(o.Left, scale)
	o.Right = toScreen(o.Right, scale)
	return o
}

// toScreen scales model units to pixels and flips y. Subtracting from
// zero keeps a zero offset at +0.
func toScreen(v mgl64.Vec3, scale float64) mgl64.Vec3 {
	return mgl64.Vec3{v.X() * scale, 0 - v.Y()*scale, v.Z() * scale}
}

func (o Offsets) forClass(c FaceClass) mgl64.Vec3 {
	switch c {
	case ClassTop:
		return o.Top
	case ClassLeft:
		return o.Left
	}
	return o.Right
}

// FaceSize returns the on-screen width and height of a face family.
func FaceSize(c FaceClass, from, to mgl64.Vec3, scale float64) (w, h float64) {
	size := to.Sub(from)
	switch c {
	case ClassTop:
		return size.X() * scale, size.Z() * scale
	case ClassLeft:
		return size.X() * scale, size.Y() * scale
	}
	return size.Z() * scale, size.Y() * scale
}

const zScale = 10

var zBias = map[Direction]int{
	Up:    3,
	North: 2,
	South: 2,
	West:  1,
	East:  1,
	Down:  0,
}

// ZIndex orders faces back to front: higher elements paint later, and
// within one element top covers left covers right.
func ZIndex(yCenter float64, d Direction) int {
	return int(math.Round(yCenter*zScale)) + zBias[d]
}

// CellZ is the z-index shift of one cell of vertical offset.
const CellZ = 16 * zScale
