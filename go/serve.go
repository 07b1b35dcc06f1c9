package main

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rmmh/isoview/go/config"
	"github.com/rmmh/isoview/go/offload"
	"github.com/rmmh/isoview/go/preview"
	"github.com/rmmh/isoview/go/render"
	rp "github.com/rmmh/isoview/go/resourcepack"
	"github.com/rmmh/isoview/go/store"
	"github.com/samber/lo"
	"golang.org/x/image/draw"
)

const (
	defaultIconSize = 64
	maxIconSize     = 1024
	maxSessions     = 4096
)

type server struct {
	stack  rp.Stack
	packs  []string
	engine *preview.Engine
	store  *store.Store
	scale  float64

	sessionLock sync.Mutex
	sessions    map[string]*session
	sessionSeq  uint64
	sessionCap  int
}

type session struct {
	gens     *preview.Generations
	lastUsed uint64
}

func newServer(stack rp.Stack, engine *preview.Engine, st *store.Store, scale float64) *server {
	return &server{
		stack:    stack,
		packs:    lo.Map(stack, func(p *rp.Pack, _ int) string { return p.Name }),
		engine:   engine,
		store:    st,
		scale:    scale,
		sessions:   map[string]*session{},
		sessionCap: maxSessions,
	}
}

func (s *server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/preview/{asset:.+}", s.previewHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/states/{asset:.+}", s.statesHandler).Methods(http.MethodGet)
	r.HandleFunc("/textures/{ns}/{path:.+}", s.textureHandler).Methods(http.MethodGet)
	r.HandleFunc("/icons/{asset:.+}", s.iconHandler).Methods(http.MethodGet)
	r.Handle("/ws/geometry", offload.Handler{})
	return r
}

// begin starts a request in a session; a newer request in the same session
// supersedes it. Requests without a session are never superseded. At most
// sessionCap sessions are tracked; the least recently used one is forgotten
// to make room, so its in-flight requests can no longer be superseded.
func (s *server) begin(name string) *preview.Ticket {
	if name == "" {
		return nil
	}
	s.sessionLock.Lock()
	defer s.sessionLock.Unlock()
	s.sessionSeq++
	sess, ok := s.sessions[name]
	if !ok {
		if len(s.sessions) >= s.sessionCap {
			s.evictSession()
		}
		sess = &session{gens: &preview.Generations{}}
		s.sessions[name] = sess
	}
	sess.lastUsed = s.sessionSeq
	return sess.gens.Begin()
}

// evictSession drops the least recently used session. sessionLock is held.
func (s *server) evictSession() {
	var oldest string
	var oldestSeq uint64
	for name, sess := range s.sessions {
		if oldest == "" || sess.lastUsed < oldestSeq {
			oldest, oldestSeq = name, sess.lastUsed
		}
	}
	delete(s.sessions, oldest)
	slog.Debug("forgot idle session", "session", oldest)
}

func (s *server) previewHandler(w http.ResponseWriter, r *http.Request) {
	asset := mux.Vars(r)["asset"]
	q := r.URL.Query()
	scale := s.scale
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			http.Error(w, "bad scale", http.StatusBadRequest)
			return
		}
		scale = f
	}
	props := requestState(s.stack, asset, q.Get("state"))
	ticket := s.begin(q.Get("session"))

	key := store.Key(s.packs, rp.CanonicalID(asset), rp.FormatProperties(props), scale)
	if s.store != nil {
		buf, ok, err := s.store.Get(r.Context(), key)
		if err != nil {
			slog.Warn("preview cache read failed", "key", key, "err", err)
		} else if ok {
			if !ticket.Current() {
				http.Error(w, preview.ErrSuperseded.Error(), http.StatusConflict)
				return
			}
			writeJSON(w, buf)
			return
		}
	}

	res, err := s.engine.Preview(r.Context(), ticket, asset, props, scale)
	if errors.Is(err, preview.ErrSuperseded) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		// the client went away
		slog.Debug("preview abandoned", "asset", asset, "err", err)
		return
	}
	buf, err := json.Marshal(res)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.store != nil && !res.Empty() {
		if err := s.store.Put(r.Context(), key, buf); err != nil {
			slog.Warn("preview cache write failed", "key", key, "err", err)
		}
	}
	writeJSON(w, buf)
}

func writeJSON(w http.ResponseWriter, buf []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Add("Cache-Control", "no-cache")
	w.Write(buf)
}

func (s *server) statesHandler(w http.ResponseWriter, r *http.Request) {
	asset := mux.Vars(r)["asset"]
	st, err := s.stack.BlockState(asset)
	if errors.Is(err, rp.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	def := render.DefaultState(st)
	ns, path := rp.SplitID(rp.BlockName(asset))
	buf, err := json.Marshal(struct {
		Asset      string              `json:"asset"`
		Properties map[string][]string `json:"properties"`
		States     [][]string          `json:"states"`
		Default    map[string]string   `json:"default"`
		Rule       string              `json:"rule,omitempty"`
		ItemIcon   string              `json:"itemIcon,omitempty"`
	}{
		Asset:      ns + ":" + path,
		Properties: st.Properties(),
		States:     render.StateList(st),
		Default:    def,
		Rule:       render.ComposeRule(asset, def),
		ItemIcon:   preview.IconRule(ns + ":item/" + path),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, buf)
}

func (s *server) textureHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["ns"] + ":" + strings.TrimSuffix(vars["path"], ".png")
	rc, err := s.stack.LoadTexture(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Add("Cache-Control", "max-age=3600")
	io.Copy(w, rc)
}

// iconHandler serves the asset's flat icon, or for projected assets the
// texture of its frontmost face, as a square PNG of the first animation
// frame scaled to ?size=.
func (s *server) iconHandler(w http.ResponseWriter, r *http.Request) {
	asset := mux.Vars(r)["asset"]
	size := defaultIconSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxIconSize {
			http.Error(w, "bad size", http.StatusBadRequest)
			return
		}
		size = n
	}

	res, err := s.engine.Preview(r.Context(), nil, asset, requestState(s.stack, asset, r.URL.Query().Get("state")), s.scale)
	if err != nil {
		return
	}
	url := res.IconURL
	if !res.FlatIcon && len(res.Faces) > 0 {
		url = res.Faces[len(res.Faces)-1].TextureURL
	}
	if url == "" {
		http.Error(w, "no icon for "+asset, http.StatusNotFound)
		return
	}

	rc, err := s.stack.LoadTexture(rp.TextureIDFromURL(url))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	defer rc.Close()
	img, err := png.Decode(rc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	png.Encode(w, scaleIcon(img, size))
}

// scaleIcon crops img to its first square frame and scales it to size
// without smoothing.
func scaleIcon(img image.Image, size int) *image.NRGBA {
	b := img.Bounds()
	frame := b
	if b.Dy() > b.Dx() {
		frame.Max.Y = frame.Min.Y + b.Dx()
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, frame, draw.Src, nil)
	return dst
}

// newDispatcher picks where geometry runs: a remote worker if one is
// configured and reachable, else a local pool, else in process.
func newDispatcher(ctx context.Context, cfg *config.Config) (offload.Dispatcher, func()) {
	if cfg.RemoteWorker != "" {
		c, err := offload.Dial(ctx, cfg.RemoteWorker)
		if err == nil {
			log.Println("using remote geometry worker", cfg.RemoteWorker)
			return c, func() { c.Close() }
		}
		log.Println("remote worker unavailable:", err)
	}
	if cfg.Workers > 0 {
		p := offload.NewPool(cfg.Workers, 4*cfg.Workers)
		return p, p.Close
	}
	return offload.Sync{}, func() {}
}

func serve(cfg *config.Config) {
	stack := mustStack(cfg)

	dispatcher, closeDispatcher := newDispatcher(context.Background(), cfg)
	defer closeDispatcher()

	var st *store.Store
	if cfg.CacheDB != "" {
		var err error
		st, err = store.Open(cfg.CacheDB)
		if err != nil {
			log.Fatal(err)
		}
		defer st.Close()
	}

	s := newServer(stack, preview.NewEngine(stack, dispatcher, nil), st, cfg.Scale)
	srv := &http.Server{
		Handler:      s.routes(),
		Addr:         cfg.Listen,
		WriteTimeout: 120 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	log.Println("listening on", srv.Addr)

	log.Fatal(srv.ListenAndServe())
}
