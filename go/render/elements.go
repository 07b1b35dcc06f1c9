package render

import (
	"reflect"

	"github.com/go-gl/mathgl/mgl64"
	rp "github.com/rmmh/isoview/go/resourcepack"
)

// Params carries everything ProcessElements needs besides the elements.
type Params struct {
	// Textures is the model's texture variable map.
	Textures map[string]string
	// Loaded maps resolved texture ids to the URL of a successfully loaded
	// texture. Faces whose texture is absent here are skipped.
	Loaded map[string]string
	// Scale is pixels per model unit.
	Scale float64
	// Frames holds animation frame counts by resolved texture id.
	Frames map[string]int
}

func (p *Params) lookup(textureID string) (string, int, bool) {
	key := textureID
	url, ok := p.Loaded[key]
	if !ok {
		key = rp.CanonicalID(textureID)
		url, ok = p.Loaded[key]
	}
	return url, p.Frames[key], ok
}

func vec3(v []float64) (mgl64.Vec3, bool) {
	if len(v) != 3 {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, true
}

func isFullCube(el *rp.ModelElement) bool {
	return !el.Rotated() &&
		reflect.DeepEqual(el.From, []float64{0, 0, 0}) &&
		reflect.DeepEqual(el.To, []float64{16, 16, 16})
}

// fullCubeOffsets are FaceOffsets for a 0..16 unrotated cube.
func fullCubeOffsets(scale float64) Offsets {
	h := 8 * scale
	return Offsets{
		Top:   mgl64.Vec3{0, 0 - h, 0},
		Left:  mgl64.Vec3{0, 0, h},
		Right: mgl64.Vec3{h, 0, 0},
	}
}

// ProcessElements turns model elements into positioned faces for the fixed
// isometric camera. Elements that produce no faces are dropped.
func ProcessElements(elements []*rp.ModelElement, p Params) []RenderedElement {
	if len(elements) == 1 && elements[0] != nil && isFullCube(elements[0]) {
		el := elements[0]
		size := 16 * p.Scale
		faces := emitFaces(el, p, fullCubeOffsets(p.Scale), mgl64.Vec3{0, 0, 0}, mgl64.Vec3{16, 16, 16},
			func(FaceClass) (float64, float64) { return size, size }, 8)
		if len(faces) == 0 {
			return nil
		}
		return []RenderedElement{{Faces: faces}}
	}

	return processGeneral(elements, p)
}

func processGeneral(elements []*rp.ModelElement, p Params) []RenderedElement {
	var out []RenderedElement
	for _, el := range elements {
		if el == nil {
			continue
		}
		from, ok1 := vec3(el.From)
		to, ok2 := vec3(el.To)
		if !ok1 || !ok2 {
			continue
		}
		offsets := FaceOffsets(from, to, p.Scale, CellCenter, el.Rotated())
		faces := emitFaces(el, p, offsets, from, to, func(c FaceClass) (float64, float64) {
			return FaceSize(c, from, to, p.Scale)
		}, (from.Y()+to.Y())/2)
		if len(faces) > 0 {
			out = append(out, RenderedElement{Faces: faces})
		}
	}
	return out
}

func emitFaces(el *rp.ModelElement, p Params, offsets Offsets, from, to mgl64.Vec3,
	size func(FaceClass) (float64, float64), yCenter float64) []RenderedFace {
	var faces []RenderedFace
	for _, vis := range visibleFaces {
		face, ok := el.Faces[string(vis.dir)]
		if !ok {
			continue
		}
		texID, ok := ResolveTexture(face.Texture, p.Textures)
		if !ok {
			continue
		}
		url, frames, ok := p.lookup(texID)
		if !ok {
			continue
		}
		w, h := size(vis.class)
		pos := offsets.forClass(vis.class)
		rf := RenderedFace{
			Direction:  vis.dir,
			Class:      vis.class,
			TextureURL: url,
			X:          pos.X(),
			Y:          pos.Y(),
			Z:          pos.Z(),
			Width:      w,
			Height:     h,
			UV:         FaceUV(vis.dir, face.UV, from, to, frames),
			ZIndex:     ZIndex(yCenter, vis.dir),
			Brightness: Brightness(vis.dir),
			Tint:       ResolveTint(texID, face.TintIndex),
		}
		if face.Rotation != nil {
			rf.Rotation = ((*face.Rotation%360)+360)%360
		}
		if rf.Rotation == 180 {
			rf.UV.FlipX = !rf.UV.FlipX
			rf.UV.FlipY = !rf.UV.FlipY
			rf.Rotation = 0
		}
		faces = append(faces, rf)
	}
	return faces
}
