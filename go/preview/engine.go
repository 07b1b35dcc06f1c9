package preview

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rmmh/isoview/go/offload"
	"github.com/rmmh/isoview/go/render"
	rp "github.com/rmmh/isoview/go/resourcepack"
	"github.com/samber/lo"
)

// Engine turns asset requests into previews. It is safe for concurrent use.
type Engine struct {
	src        Source
	dispatcher offload.Dispatcher
	cache      *Cache
	seq        atomic.Uint64
}

// NewEngine builds an engine over src. A nil dispatcher processes geometry
// in process; a nil cache gets a private one.
func NewEngine(src Source, dispatcher offload.Dispatcher, cache *Cache) *Engine {
	if dispatcher == nil {
		dispatcher = offload.Sync{}
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Engine{src: src, dispatcher: dispatcher, cache: cache}
}

// cell is the model data of one instance before geometry processing.
type cell struct {
	part     render.Part
	assetID  string
	state    map[string]string
	elements []*rp.ModelElement
	textures map[string]string
}

// Preview resolves assetID in the given state and projects it at scale
// pixels per model unit. Lookup failures degrade the result (fewer faces, a
// synthesized cube, a flat icon) instead of failing it. The only errors are
// from ctx and ErrSuperseded, when ticket stopped being current before the
// result was ready.
func (e *Engine) Preview(ctx context.Context, ticket *Ticket, assetID string, props map[string]string, scale float64) (*Result, error) {
	id := rp.CanonicalID(assetID)
	res := &Result{Asset: id}
	if scale <= 0 {
		scale = 1
	}

	if _, path := rp.SplitID(id); strings.HasPrefix(path, itemPrefix) {
		if wantsFlatIcon(id) || !e.hasGeometry(id) {
			if url, ok := e.firstLoadable(ctx, e.itemIconCandidates(id)); ok {
				return e.flat(ticket, res, url)
			}
			slog.Debug("no item icon, trying block", "asset", id)
		}
		id = blockAsset(id)
	}

	parts := render.Compose(id, props)
	if parts == nil {
		parts = []render.Part{{}}
	}
	cells := make([]*cell, len(parts))
	for i, part := range parts {
		c := &cell{part: part, assetID: id, state: lo.Assign(props, part.Overrides)}
		if part.AssetID != "" {
			c.assetID = rp.CanonicalID(part.AssetID)
		}
		c.elements, c.textures = e.resolveModels(c.assetID, c.state)
		cells[i] = c
	}

	if planar(lo.FlatMap(cells, func(c *cell, _ int) []*rp.ModelElement { return c.elements })) {
		if url, ok := e.firstLoadable(ctx, spriteCandidates(cells)); ok {
			return e.flat(ticket, res, url)
		}
		slog.Debug("no sprite for planar model, projecting anyway", "asset", id)
	}

	for _, c := range cells {
		if len(c.elements) > 0 {
			continue
		}
		if len(c.textures) == 0 {
			c.textures = ownTextures(c.assetID)
		}
		slog.Debug("synthesizing cube", "asset", c.assetID, "textures", c.textures)
		c.elements = []*rp.ModelElement{defaultCube(c.textures)}
	}

	textures := e.loadTextures(ctx, textureIDs(cells))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ticket.check(); err != nil {
		return nil, err
	}

	params := render.Params{
		Loaded: map[string]string{},
		Frames: map[string]int{},
		Scale:  scale,
	}
	for texID, tex := range textures {
		params.Loaded[texID] = tex.URL
		if tex.Frames > 1 {
			params.Frames[texID] = tex.Frames
		}
	}

	var shifted []render.RenderedElement
	for _, c := range cells {
		params.Textures = c.textures
		req := offload.NewRequest(e.nextID(id), c.elements, params)
		elements, err := e.dispatch(ctx, req)
		if err != nil {
			return nil, err
		}
		res.Instances = append(res.Instances, Instance{
			Offset:   c.part.Offset,
			AssetID:  c.assetID,
			State:    c.state,
			Elements: elements,
		})
		shifted = append(shifted, shift(elements, c.part.Offset, scale)...)
	}
	if err := ticket.check(); err != nil {
		return nil, err
	}
	res.Faces = render.SortFaces(shifted)
	if res.Empty() {
		slog.Warn("preview has no faces", "asset", id, "state", rp.FormatProperties(props))
	}
	return res, nil
}

func (e *Engine) flat(ticket *Ticket, res *Result, url string) (*Result, error) {
	if err := ticket.check(); err != nil {
		return nil, err
	}
	res.FlatIcon = true
	res.IconURL = url
	return res, nil
}

func (e *Engine) nextID(assetID string) string {
	return fmt.Sprintf("%s#%d", assetID, e.seq.Add(1))
}

func (e *Engine) hasGeometry(modelID string) bool {
	m, err := e.src.LoadModel(modelID)
	return err == nil && len(m.Elements) > 0
}

// resolveModels loads every model the state selects, rotated into place.
// Multipart texture maps merge in order, later parts overriding earlier
// ones. An asset with no blockstate is tried as a model id.
func (e *Engine) resolveModels(assetID string, state map[string]string) ([]*rp.ModelElement, map[string]string) {
	specs, err := e.src.ResolveState(assetID, state)
	if err != nil {
		slog.Debug("state unresolved, trying model", "asset", assetID, "err", err)
		m, err := e.src.LoadModel(assetID)
		if err != nil {
			slog.Debug("no model", "asset", assetID, "err", err)
			return nil, nil
		}
		return m.Elements, m.Textures
	}

	var elements []*rp.ModelElement
	textures := map[string]string{}
	for _, spec := range specs {
		m, err := e.src.LoadModel(spec.Model)
		if err != nil {
			slog.Warn("model load failed", "asset", assetID, "model", spec.Model, "err", err)
			continue
		}
		x, y, _ := spec.Rotations()
		elements = append(elements, render.ApplyRotations(m.Elements, x, y)...)
		maps.Copy(textures, m.Textures)
	}
	return elements, textures
}

// textureIDs lists the textures behind faces the camera can see.
func textureIDs(cells []*cell) []string {
	var ids []string
	for _, c := range cells {
		for _, el := range c.elements {
			if el == nil {
				continue
			}
			for dir, face := range el.Faces {
				if !render.IsVisible(render.Direction(dir)) {
					continue
				}
				if id, ok := render.ResolveTexture(face.Texture, c.textures); ok {
					ids = append(ids, id)
				}
			}
		}
	}
	ids = lo.Uniq(ids)
	sort.Strings(ids)
	return ids
}

// loadTextures loads ids concurrently and returns the ones that loaded.
func (e *Engine) loadTextures(ctx context.Context, ids []string) map[string]Texture {
	var mu sync.Mutex
	var wg sync.WaitGroup
	out := map[string]Texture{}
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tex, err := e.cache.Load(ctx, e.src, id)
			if err != nil {
				slog.Warn("texture load failed", "texture", id, "err", err)
				return
			}
			mu.Lock()
			out[id] = tex
			mu.Unlock()
		}()
	}
	wg.Wait()
	return out
}

func (e *Engine) firstLoadable(ctx context.Context, ids []string) (string, bool) {
	for _, id := range ids {
		tex, err := e.cache.Load(ctx, e.src, id)
		if err == nil {
			return tex.URL, true
		}
		slog.Debug("icon candidate failed", "texture", id, "err", err)
	}
	return "", false
}

func (e *Engine) itemIconCandidates(itemID string) []string {
	var ids []string
	if m, err := e.src.LoadModel(itemID); err == nil {
		if id, ok := render.ResolveTexture("#layer0", m.Textures); ok {
			ids = append(ids, id)
		}
	}
	return append(ids, itemID)
}

// spriteCandidates lists textures that could stand in for planar cells:
// each asset's own texture, then its sprite-like texture variables.
func spriteCandidates(cells []*cell) []string {
	var ids []string
	for _, c := range cells {
		ns, path := rp.SplitID(rp.BlockName(c.assetID))
		ids = append(ids, ns+":block/"+path)
		for _, slot := range spriteSlots {
			if id, ok := render.ResolveTexture("#"+slot, c.textures); ok {
				ids = append(ids, id)
			}
		}
	}
	return lo.Uniq(ids)
}

// shift moves a cell's faces by its offset in the structure.
func shift(elements []render.RenderedElement, offset [3]int, scale float64) []render.RenderedElement {
	if offset == [3]int{} {
		return elements
	}
	size := 16 * scale
	out := make([]render.RenderedElement, len(elements))
	for i, el := range elements {
		faces := make([]render.RenderedFace, len(el.Faces))
		for j, f := range el.Faces {
			f.X += float64(offset[0]) * size
			f.Y -= float64(offset[1]) * size
			f.Z += float64(offset[2]) * size
			f.ZIndex += offset[1] * render.CellZ
			faces[j] = f
		}
		out[i] = render.RenderedElement{Faces: faces}
	}
	return out
}

// dispatch runs geometry processing through the engine's dispatcher,
// processing in process if the dispatcher fails.
func (e *Engine) dispatch(ctx context.Context, req offload.Request) ([]render.RenderedElement, error) {
	resp, err := e.dispatcher.Dispatch(ctx, req)
	if err == nil {
		return resp.RenderedElements, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	slog.Warn("geometry dispatch failed, processing in process", "id", req.ID, "err", err)
	return offload.Handle(req).RenderedElements, nil
}
