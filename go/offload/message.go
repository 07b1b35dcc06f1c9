// Package offload moves element geometry processing across a message
// boundary. Requests and responses only ever cross as encoded bytes, so a
// worker never shares memory with its caller; Sync runs the same Handle
// in-process for callers that have no worker available.
package offload

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
	"github.com/rmmh/isoview/go/render"
	rp "github.com/rmmh/isoview/go/resourcepack"
	"github.com/samber/lo"
)

type Request struct {
	// ID is an opaque correlation token echoed by the response.
	ID       string             `json:"id"`
	Elements []*rp.ModelElement `json:"elements"`
	Textures map[string]string  `json:"textures"`
	// TextureURLs holds [texture id, url] pairs for every loaded texture.
	TextureURLs   [][2]string    `json:"textureUrls"`
	Scale         float64        `json:"scale"`
	AnimationInfo map[string]int `json:"animationInfo,omitempty"`
}

type Response struct {
	ID               string                   `json:"id"`
	RenderedElements []render.RenderedElement `json:"renderedElements"`
	Error            string                   `json:"error,omitempty"`
}

// Dispatcher runs a request somewhere and returns its response.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) (Response, error)
}

// NewRequest packs processing inputs into a request. The loaded-texture map
// becomes id/url pairs sorted by id.
func NewRequest(id string, elements []*rp.ModelElement, p render.Params) Request {
	pairs := lo.MapToSlice(p.Loaded, func(k, v string) [2]string {
		return [2]string{k, v}
	})
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	return Request{
		ID:            id,
		Elements:      elements,
		Textures:      p.Textures,
		TextureURLs:   pairs,
		Scale:         p.Scale,
		AnimationInfo: p.Frames,
	}
}

// Params unpacks the request's processing inputs.
func (r *Request) Params() render.Params {
	loaded := make(map[string]string, len(r.TextureURLs))
	for _, pair := range r.TextureURLs {
		loaded[pair[0]] = pair[1]
	}
	return render.Params{
		Textures: r.Textures,
		Loaded:   loaded,
		Scale:    r.Scale,
		Frames:   r.AnimationInfo,
	}
}

// Handle is the pure function on the far side of the boundary.
func Handle(req Request) Response {
	return Response{
		ID:               req.ID,
		RenderedElements: render.ProcessElements(req.Elements, req.Params()),
	}
}

// Serve decodes a request, handles it and encodes the response. Malformed
// input produces an error response rather than a failure, so the caller
// always hears back.
func Serve(payload []byte) []byte {
	var req Request
	var resp Response
	if err := json.Unmarshal(payload, &req); err != nil {
		resp = Response{ID: req.ID, Error: errors.Wrap(err, "decoding request").Error()}
	} else {
		resp = Handle(req)
	}
	buf, err := json.Marshal(resp)
	if err != nil {
		buf, _ = json.Marshal(Response{ID: req.ID, Error: err.Error()})
	}
	return buf
}

func decodeResponse(id string, buf []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(buf, &resp); err != nil {
		return Response{}, errors.Wrap(err, "decoding response")
	}
	if resp.ID != id {
		return Response{}, errors.Errorf("response id %q does not match request %q", resp.ID, id)
	}
	if resp.Error != "" {
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}

// Sync handles requests in the calling goroutine.
type Sync struct{}

func (Sync) Dispatch(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	return Handle(req), nil
}
