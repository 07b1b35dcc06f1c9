package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmmh/isoview/go/offload"
	"github.com/rmmh/isoview/go/preview"
	"github.com/rmmh/isoview/go/render"
	rp "github.com/rmmh/isoview/go/resourcepack"
	"github.com/rmmh/isoview/go/store"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func testServer(t *testing.T, st *store.Store) *server {
	p := rp.NewPack("test")
	p.Textures["minecraft:block/stone"] = pngBytes(t, 16, 16)
	p.Textures["minecraft:block/oak_door_bottom"] = pngBytes(t, 16, 16)
	p.Textures["minecraft:item/oak_door"] = pngBytes(t, 16, 16)
	p.Textures["minecraft:block/sea_lantern"] = pngBytes(t, 16, 80)
	var door rp.BlockState
	require.NoError(t, json.Unmarshal([]byte(`{"variants": {
		"facing=east,half=lower": {"model": "minecraft:block/oak_door_bottom"},
		"facing=north,half=lower": {"model": "minecraft:block/oak_door_bottom", "y": 270},
		"facing=east,half=upper": {"model": "minecraft:block/oak_door_bottom"},
		"facing=north,half=upper": {"model": "minecraft:block/oak_door_bottom", "y": 270}
	}}`), &door))
	p.BlockStates["minecraft:oak_door"] = &door
	var model rp.Model
	require.NoError(t, json.Unmarshal([]byte(`{
		"textures": {"tex": "minecraft:block/oak_door_bottom"},
		"elements": [{"from": [0, 0, 0], "to": [16, 16, 3], "faces": {
			"up": {"texture": "#tex"}, "north": {"texture": "#tex"}, "west": {"texture": "#tex"}}}]
	}`), &model))
	p.Models["minecraft:block/oak_door_bottom"] = &model
	return newServer(rp.Stack{p}, preview.NewEngine(rp.Stack{p}, nil, nil), st, 2)
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestPreviewHandler(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer st.Close()
	h := testServer(t, st).routes()

	rec := get(t, h, "/api/preview/minecraft:stone?scale=3")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var res preview.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "minecraft:stone", res.Asset)
	require.Len(t, res.Faces, 3)
	require.Equal(t, 48.0, res.Faces[0].Width)

	n, err := st.Len(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	again := get(t, h, "/api/preview/minecraft:stone?scale=3")
	require.Equal(t, rec.Body.String(), again.Body.String())

	require.Equal(t, http.StatusBadRequest, get(t, h, "/api/preview/minecraft:stone?scale=zero").Code)
	require.Equal(t, http.StatusBadRequest, get(t, h, "/api/preview/minecraft:stone?scale=-2").Code)

	// empty previews are not stored
	get(t, h, "/api/preview/minecraft:missing")
	n, err = st.Len(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestPreviewHandlerDefaultState(t *testing.T) {
	h := testServer(t, nil).routes()
	rec := get(t, h, "/api/preview/minecraft:oak_door")
	require.Equal(t, http.StatusOK, rec.Code)
	var res preview.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Instances, 2)
	require.Equal(t, map[string]string{"facing": "east", "half": "lower"}, res.Instances[0].State)

	rec = get(t, h, "/api/preview/minecraft:oak_door?state=facing=north,half=lower")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "north", res.Instances[1].State["facing"])
	require.Equal(t, "upper", res.Instances[1].State["half"])
}

func TestSessions(t *testing.T) {
	s := testServer(t, nil)
	require.Nil(t, s.begin(""))
	first := s.begin("tab-1")
	other := s.begin("tab-2")
	second := s.begin("tab-1")
	require.False(t, first.Current())
	require.True(t, second.Current())
	require.True(t, other.Current())
}

func TestSessionsBounded(t *testing.T) {
	s := testServer(t, nil)
	s.sessionCap = 2
	s.begin("a")
	s.begin("b")
	s.begin("a")
	s.begin("c")
	require.Len(t, s.sessions, 2)
	require.Contains(t, s.sessions, "a")
	require.Contains(t, s.sessions, "c")
	require.NotContains(t, s.sessions, "b")
}

func TestStatesHandler(t *testing.T) {
	h := testServer(t, nil).routes()
	rec := get(t, h, "/api/states/minecraft:oak_door")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Asset      string              `json:"asset"`
		Properties map[string][]string `json:"properties"`
		States     [][]string          `json:"states"`
		Default    map[string]string   `json:"default"`
		Rule       string              `json:"rule"`
		ItemIcon   string              `json:"itemIcon"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "minecraft:oak_door", body.Asset)
	require.Equal(t, []string{"east", "north"}, body.Properties["facing"])
	require.Equal(t, [][]string{{"facing", "east", "north"}, {"half", "lower", "upper"}}, body.States)
	require.Equal(t, map[string]string{"facing": "east", "half": "lower"}, body.Default)
	require.Equal(t, "door", body.Rule)
	require.Equal(t, "door", body.ItemIcon)

	require.Equal(t, http.StatusNotFound, get(t, h, "/api/states/minecraft:nope").Code)
}

func TestTextureHandler(t *testing.T) {
	s := testServer(t, nil)
	h := s.routes()
	rec := get(t, h, "/textures/minecraft/block/stone.png")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.Equal(t, s.stack[0].Textures["minecraft:block/stone"], rec.Body.Bytes())

	require.Equal(t, http.StatusNotFound, get(t, h, "/textures/minecraft/block/dirt.png").Code)
}

func TestIconHandler(t *testing.T) {
	h := testServer(t, nil).routes()
	for _, tc := range []struct {
		url  string
		size int
	}{
		{"/icons/minecraft:item/oak_door?size=32", 32},
		{"/icons/minecraft:stone", defaultIconSize},
		{"/icons/minecraft:sea_lantern?size=48", 48},
	} {
		rec := get(t, h, tc.url)
		require.Equal(t, http.StatusOK, rec.Code, tc.url)
		img, err := png.Decode(rec.Body)
		require.NoError(t, err, tc.url)
		require.Equal(t, image.Rect(0, 0, tc.size, tc.size), img.Bounds(), tc.url)
	}

	require.Equal(t, http.StatusBadRequest, get(t, h, "/icons/minecraft:stone?size=0").Code)
	require.Equal(t, http.StatusNotFound, get(t, h, "/icons/minecraft:missing").Code)
}

func TestScaleIconFirstFrame(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 4))
	src.Pix[3] = 255 // frame 0, top-left pixel opaque
	icon := scaleIcon(src, 4)
	require.Equal(t, image.Rect(0, 0, 4, 4), icon.Bounds())
	require.Equal(t, uint8(255), icon.NRGBAAt(0, 0).A)
	require.Equal(t, uint8(255), icon.NRGBAAt(1, 1).A)
	require.Equal(t, uint8(0), icon.NRGBAAt(3, 3).A)
}

func TestGeometrySocket(t *testing.T) {
	srv := httptest.NewServer(testServer(t, nil).routes())
	defer srv.Close()

	client, err := offload.Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/geometry")
	require.NoError(t, err)
	defer client.Close()

	el := &rp.ModelElement{From: []float64{0, 0, 0}, To: []float64{16, 16, 16}, Faces: map[string]rp.BlockModelFace{
		"up": {Texture: "#all"}, "north": {Texture: "#all"}, "west": {Texture: "#all"},
	}}
	req := offload.NewRequest("1", []*rp.ModelElement{el}, render.Params{
		Textures: map[string]string{"all": "minecraft:block/stone"},
		Loaded:   map[string]string{"minecraft:block/stone": "/textures/minecraft/block/stone.png"},
		Scale:    1,
	})
	resp, err := client.Dispatch(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, offload.Handle(req), resp)
}
