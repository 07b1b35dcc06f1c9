package resourcepack

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is the cause of every lookup miss in a pack.
var ErrNotFound = errors.New("not found")

// maxParentDepth bounds model inheritance chains, which may be cyclic in
// malformed packs.
const maxParentDepth = 32

// Pack is one loaded resource pack (or client jar). Keys are canonical ids:
// blockstates "ns:name", models "ns:block/name", textures "ns:block/name".
type Pack struct {
	Name        string
	BlockStates map[string]*BlockState
	Models      map[string]*Model
	Textures    map[string][]byte
}

func NewPack(name string) *Pack {
	return &Pack{
		Name:        name,
		BlockStates: map[string]*BlockState{},
		Models:      map[string]*Model{},
		Textures:    map[string][]byte{},
	}
}

func (p *Pack) blockState(name string) *BlockState {
	if st := p.BlockStates[name]; st != nil {
		return st
	}
	for _, newer := range NewerNames(name) {
		if st := p.BlockStates[newer]; st != nil {
			return st
		}
	}
	return nil
}

func (p *Pack) model(id string) *Model {
	return p.Models[ModelID(id)]
}

// BlockState looks up a blockstate by asset id, following legacy renames.
func (p *Pack) BlockState(assetID string) (*BlockState, error) {
	name := BlockName(assetID)
	st := p.blockState(name)
	if st == nil {
		return nil, errors.Wrapf(ErrNotFound, "blockstate %s", name)
	}
	return st, nil
}

func (p *Pack) ResolveState(assetID string, props map[string]string) ([]ModelSpec, error) {
	st, err := p.BlockState(assetID)
	if err != nil {
		return nil, err
	}
	return resolveState(assetID, st, props)
}

func resolveState(assetID string, st *BlockState, props map[string]string) ([]ModelSpec, error) {
	specs := st.Resolve(props)
	if len(specs) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "no model of %s matches %q", BlockName(assetID), FormatProperties(props))
	}
	return specs, nil
}

// LoadModel returns a copy of the model with its parent chain flattened:
// elements come from the nearest ancestor that has any, textures from every
// ancestor with children overriding parents.
func (p *Pack) LoadModel(modelID string) (*Model, error) {
	return resolveModel(modelID, p.model)
}

func (p *Pack) LoadTexture(textureID string) (io.ReadCloser, error) {
	buf, ok := p.Textures[CanonicalID(textureID)]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "texture %s", CanonicalID(textureID))
	}
	return io.NopCloser(bytes.NewReader(buf)), nil
}

func (p *Pack) TextureURL(textureID string) string {
	return TextureURL(textureID)
}

// TextureURL is the HTTP path a texture is served under.
func TextureURL(textureID string) string {
	ns, path := SplitID(CanonicalID(textureID))
	return "/textures/" + ns + "/" + path + ".png"
}

// TextureIDFromURL inverts TextureURL.
func TextureIDFromURL(url string) string {
	rest := strings.TrimPrefix(url, "/textures/")
	rest = strings.TrimSuffix(rest, ".png")
	ns, path, ok := strings.Cut(rest, "/")
	if !ok {
		return CanonicalID(rest)
	}
	return ns + ":" + path
}

func resolveModel(modelID string, lookup func(string) *Model) (*Model, error) {
	base := lookup(modelID)
	if base == nil {
		return nil, errors.Wrapf(ErrNotFound, "model %s", ModelID(modelID))
	}
	model := base.Clone()
	if model.Textures == nil {
		model.Textures = map[string]string{}
	}

	parentName := base.Parent
	for depth := 0; parentName != ""; depth++ {
		if depth == maxParentDepth {
			return nil, errors.Errorf("model %s: parent chain deeper than %d", ModelID(modelID), maxParentDepth)
		}
		if strings.HasPrefix(RemoveDefaultPrefix(parentName), "builtin/") {
			break
		}
		parent := lookup(parentName)
		if parent == nil {
			// a missing parent leaves the child usable with what it has
			break
		}
		if model.AmbientOcclusion == nil {
			model.AmbientOcclusion = parent.AmbientOcclusion
		}
		if len(model.Elements) == 0 && len(parent.Elements) > 0 {
			model.Elements = parent.Clone().Elements
		}
		for k, v := range parent.Textures {
			if _, ok := model.Textures[k]; !ok {
				model.Textures[k] = v
			}
		}
		parentName = parent.Parent
	}
	model.Parent = ""
	return model, nil
}

// Stack is an ordered list of packs; earlier packs override later ones.
type Stack []*Pack

func (s Stack) BlockState(assetID string) (*BlockState, error) {
	name := BlockName(assetID)
	for _, p := range s {
		if st := p.blockState(name); st != nil {
			return st, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "blockstate %s", name)
}

func (s Stack) ResolveState(assetID string, props map[string]string) ([]ModelSpec, error) {
	st, err := s.BlockState(assetID)
	if err != nil {
		return nil, err
	}
	return resolveState(assetID, st, props)
}

func (s Stack) model(id string) *Model {
	for _, p := range s {
		if m := p.model(id); m != nil {
			return m
		}
	}
	return nil
}

func (s Stack) LoadModel(modelID string) (*Model, error) {
	return resolveModel(modelID, s.model)
}

func (s Stack) LoadTexture(textureID string) (io.ReadCloser, error) {
	for _, p := range s {
		if rc, err := p.LoadTexture(textureID); err == nil {
			return rc, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "texture %s", CanonicalID(textureID))
}

func (s Stack) TextureURL(textureID string) string {
	return TextureURL(textureID)
}
