package preview

import (
	"context"
	"image"
	_ "image/png"
	"sync"

	"github.com/pkg/errors"
)

// Texture is what the engine needs to know about a loaded texture.
type Texture struct {
	URL           string
	Width, Height int
	// Frames is the number of animation frames stacked vertically.
	Frames int
}

// FrameCount derives the frame count of a vertical strip texture.
func FrameCount(width, height int) int {
	if width <= 0 || height <= width || height%width != 0 {
		return 1
	}
	return height / width
}

type cacheEntry struct {
	done chan struct{}
	tex  Texture
	err  error
}

// Cache holds decoded texture metadata keyed by texture URL. Concurrent
// loads of one URL share a single decode. Entries live as long as the
// cache; failed loads are not kept.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: map[string]*cacheEntry{}}
}

// Len returns the number of settled or in-flight entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Load returns the texture's metadata, decoding it from src on a miss.
func (c *Cache) Load(ctx context.Context, src Source, textureID string) (Texture, error) {
	url := src.TextureURL(textureID)

	c.mu.Lock()
	e, ok := c.entries[url]
	if !ok {
		e = &cacheEntry{done: make(chan struct{})}
		c.entries[url] = e
	}
	c.mu.Unlock()

	if ok {
		select {
		case <-e.done:
			return e.tex, e.err
		case <-ctx.Done():
			return Texture{}, ctx.Err()
		}
	}

	e.tex, e.err = decodeTexture(src, textureID, url)
	if e.err != nil {
		c.mu.Lock()
		delete(c.entries, url)
		c.mu.Unlock()
	}
	close(e.done)
	return e.tex, e.err
}

func decodeTexture(src Source, textureID, url string) (Texture, error) {
	rc, err := src.LoadTexture(textureID)
	if err != nil {
		return Texture{}, err
	}
	defer rc.Close()
	cfg, _, err := image.DecodeConfig(rc)
	if err != nil {
		return Texture{}, errors.Wrapf(err, "decoding texture %s", textureID)
	}
	return Texture{
		URL:    url,
		Width:  cfg.Width,
		Height: cfg.Height,
		Frames: FrameCount(cfg.Width, cfg.Height),
	}, nil
}
