package render

import (
	rp "github.com/rmmh/isoview/go/resourcepack"
)

// ApplyRotations returns a copy of elements rotated by a variant's x and y
// rotation (multiples of 90 degrees) about the cell center. Bounds move with
// the rotation and faces are relabelled; face UVs are left alone.
// -Z is north, -X is west.
func ApplyRotations(elements []*rp.ModelElement, x, y int) []*rp.ModelElement {
	x, y = quarterTurns(x), quarterTurns(y)
	if x == 0 && y == 0 {
		return elements
	}
	m := (&rp.Model{Elements: elements}).Clone()

	for _, e := range m.Elements {
		if len(e.From) != 3 || len(e.To) != 3 {
			continue
		}
		for i := 0; i < x; i++ {
			// (y, z) -> (16-z, y)
			e.From[1], e.From[2], e.To[1], e.To[2] = 16-e.From[2], e.From[1], 16-e.To[2], e.To[1]
			rotateFaces(e, "north", "up", "south", "down")
		}
		for i := 0; i < y; i++ {
			// (x, z) -> (16-z, x)
			e.From[0], e.From[2], e.To[0], e.To[2] = 16-e.From[2], e.From[0], 16-e.To[2], e.To[0]
			rotateFaces(e, "north", "east", "south", "west")
		}
		for i := 0; i < 3; i++ {
			if e.From[i] > e.To[i] {
				e.From[i], e.To[i] = e.To[i], e.From[i]
			}
		}
	}
	return m.Elements
}

// rotateFaces moves each face to the next name in the cycle: the face that
// was on a is now on b, and so on, wrapping around.
func rotateFaces(e *rp.ModelElement, cycle ...string) {
	moved := map[string]rp.BlockModelFace{}
	present := map[string]bool{}
	for i, from := range cycle {
		if f, ok := e.Faces[from]; ok {
			to := cycle[(i+1)%len(cycle)]
			moved[to] = f
			present[to] = true
		}
		delete(e.Faces, from)
	}
	if e.Faces == nil {
		e.Faces = map[string]rp.BlockModelFace{}
	}
	for name := range present {
		e.Faces[name] = moved[name]
	}
}

func quarterTurns(deg int) int {
	return ((deg/90)%4 + 4) % 4
}
