package resourcepack

import (
	"bytes"
	"encoding/json"
)

type ModelSpec struct {
	Model  string `json:"model"`
	X      *int   `json:"x,omitempty"`
	Y      *int   `json:"y,omitempty"`
	Z      *int   `json:"z,omitempty"`
	UVLock *bool  `json:"uvlock,omitempty"`
	Weight *int   `json:"weight,omitempty"`
}

// Rotations returns the x, y, z variant rotations in degrees.
func (ms ModelSpec) Rotations() (x, y, z int) {
	if ms.X != nil {
		x = *ms.X
	}
	if ms.Y != nil {
		y = *ms.Y
	}
	if ms.Z != nil {
		z = *ms.Z
	}
	return
}

// SingleOrSlice wraps a slice with custom JSON marshaling/unmarshaling behavior.
// Single-element slices are encoded as that element, otherwise it's encoded as an array.
type SingleOrSlice[T any] []T

func (s *SingleOrSlice[T]) Slice() []T {
	return []T(*s)
}

func (s SingleOrSlice[T]) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s.Slice()[0])
	}
	return json.Marshal(s.Slice())
}

func (s *SingleOrSlice[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]T)(s))
	}
	*s = make([]T, 1)
	return json.Unmarshal(data, &(([]T)(*s))[0])
}

type BlockStateWhenClause struct {
	IsOr    bool
	Clauses []map[string]any
}

func (c *BlockStateWhenClause) UnmarshalJSON(data []byte) error {
	var temp map[string]json.RawMessage
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	if orClauses, ok := temp["OR"]; ok {
		c.IsOr = true
		return json.Unmarshal(orClauses, &c.Clauses)
	} else if andClauses, ok := temp["AND"]; ok {
		return json.Unmarshal(andClauses, &c.Clauses)
	}

	var singleClause map[string]any
	if err := json.Unmarshal(data, &singleClause); err != nil {
		return err
	}
	c.Clauses = append(c.Clauses[:0], singleClause)
	return nil
}

func (c BlockStateWhenClause) MarshalJSON() ([]byte, error) {
	if c.IsOr {
		return json.Marshal(map[string][]map[string]any{
			"OR": c.Clauses,
		})
	} else if len(c.Clauses) != 1 {
		return json.Marshal(map[string][]map[string]any{
			"AND": c.Clauses,
		})
	}
	return json.Marshal(c.Clauses[0])
}

type MultipartCase struct {
	When  *BlockStateWhenClause    `json:"when,omitempty"`
	Apply SingleOrSlice[ModelSpec] `json:"apply,omitempty"`
}

type BlockState struct {
	Variants  map[string]SingleOrSlice[ModelSpec] `json:"variants,omitempty"`
	Multipart []MultipartCase                     `json:"multipart,omitempty"`
}

type BlockModelFace struct {
	UV        []float64 `json:"uv,omitempty"`
	Texture   string    `json:"texture"`
	Cull      *bool     `json:"cull,omitempty"`
	CullFace  string    `json:"cullface,omitempty"`
	Rotation  *int      `json:"rotation,omitempty"`
	TintIndex *int      `json:"tintindex,omitempty"`
}

type ElementRotation struct {
	Origin  []float64 `json:"origin,omitempty"`
	Axis    string    `json:"axis,omitempty"`
	Angle   float64   `json:"angle"`
	Rescale *bool     `json:"rescale,omitempty"`
}

type ModelElement struct {
	From          []float64                 `json:"from"`
	To            []float64                 `json:"to"`
	Rotation      ElementRotation           `json:"rotation,omitzero"`
	Shade         *bool                     `json:"shade,omitempty"`
	Faces         map[string]BlockModelFace `json:"faces"`
	Comment       string                    `json:"__comment,omitempty"`
	Name          string                    `json:"name,omitempty"`
	LightEmission int                       `json:"light_emission,omitempty"`
}

// Rotated reports whether the element carries a non-zero rotation.
func (e *ModelElement) Rotated() bool {
	return e.Rotation.Angle != 0
}

type ModelTransform struct {
	Rotation    []float64 `json:"rotation,omitempty"`
	Scale       []float64 `json:"scale,omitempty"`
	Translation []float64 `json:"translation,omitempty"`
}

type ModelGroup struct {
	Children []int     `json:"children"`
	Color    int       `json:"color"`
	Name     string    `json:"name"`
	Origin   []float64 `json:"origin"`
}

type ModelOverride struct {
	Model     string             `json:"model"`
	Predicate map[string]float64 `json:"predicate"`
}

type Model struct {
	Parent           string                     `json:"parent,omitempty"`
	AmbientOcclusion *bool                      `json:"ambientocclusion,omitempty"`
	Textures         map[string]string          `json:"textures,omitempty"`
	TextureSize      []int                      `json:"texture_size,omitempty"`
	Elements         []*ModelElement            `json:"elements,omitempty"`
	Groups           []*ModelGroup              `json:"groups,omitempty"`
	Display          map[string]*ModelTransform `json:"display,omitempty"`
	GuiLight         string                     `json:"gui_light,omitempty"`
	Overrides        []ModelOverride            `json:"overrides,omitempty"`
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	var c Model
	buf, _ := json.Marshal(m)
	json.Unmarshal(buf, &c)
	return &c
}
