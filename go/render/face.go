package render

import "sort"

// Direction is one of the six cuboid face orientations.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

var Directions = []Direction{Up, Down, North, South, East, West}

// FaceClass is the presentation orientation of a visible face.
type FaceClass string

const (
	ClassTop   FaceClass = "top"
	ClassLeft  FaceClass = "left"
	ClassRight FaceClass = "right"
)

// The camera looks down from the south-east, so only these three source
// orientations are ever emitted, in this order.
var visibleFaces = []struct {
	dir   Direction
	class FaceClass
}{
	{Up, ClassTop},
	{North, ClassLeft},
	{West, ClassRight},
}

// IsVisible reports whether faces of this orientation survive culling.
func IsVisible(d Direction) bool {
	for _, v := range visibleFaces {
		if v.dir == d {
			return true
		}
	}
	return false
}

var brightness = map[Direction]float64{
	Up:    1.0,
	North: 0.8,
	West:  0.6,
	South: 0.7,
	East:  0.5,
	Down:  0.4,
}

// Brightness is the fixed shading multiplier for a face orientation.
func Brightness(d Direction) float64 {
	return brightness[d]
}

type UV struct {
	U      float64 `json:"u"`
	V      float64 `json:"v"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	FlipX  bool    `json:"flipX,omitempty"`
	FlipY  bool    `json:"flipY,omitempty"`
}

// TintChannel selects the biome colormap applied to a face.
type TintChannel string

const (
	TintNone    TintChannel = ""
	TintGrass   TintChannel = "grass"
	TintFoliage TintChannel = "foliage"
)

type RenderedFace struct {
	Direction  Direction   `json:"direction"`
	Class      FaceClass   `json:"type"`
	TextureURL string      `json:"textureUrl"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Z          float64     `json:"z"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	UV         UV          `json:"uv"`
	// Rotation is the clockwise turn of the UV window, 90 or 270. The
	// presentation layer applies it; a half turn is already folded into
	// UV.FlipX and UV.FlipY.
	Rotation   int         `json:"rotation,omitempty"`
	ZIndex     int         `json:"zIndex"`
	Brightness float64     `json:"brightness"`
	Tint       TintChannel `json:"tintType,omitempty"`
}

type RenderedElement struct {
	Faces []RenderedFace `json:"faces"`
}

// SortFaces flattens elements into one list ordered back to front.
// Equal keys keep element order.
func SortFaces(elements []RenderedElement) []RenderedFace {
	var out []RenderedFace
	for _, el := range elements {
		out = append(out, el.Faces...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}
