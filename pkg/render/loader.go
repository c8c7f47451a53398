// loader.go - Asynchronous image cache for the render pipeline.
// Lookups never block: a miss starts a background load and the caller paints
// nothing for that layer until a later repaint finds the image in the cache.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	_ "golang.org/x/image/webp"

	"github.com/xob0t/GoLayers/pkg/fetch"
)

// Resource is a decoded image ready to paint.
type Resource struct {
	URL   string
	Image image.Image
	// Tainted is set for cross-origin pixels obtained without CORS.
	// Drawing them taints the target surface.
	Tainted bool
	// Placeholder is set when the asset could not be loaded; Image is then a
	// single pixel of Color.
	Placeholder bool
	Color       color.NRGBA
}

type entry struct {
	done chan struct{}
	res  *Resource
}

func (e *entry) ready() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Loader caches images by URL for one editing session.
type Loader struct {
	fetcher *fetch.Fetcher
	ctx     context.Context
	cancel  context.CancelFunc

	mu    sync.Mutex
	cache map[string]*entry
}

// NewLoader creates a loader that fetches through f.
func NewLoader(f *fetch.Fetcher) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		fetcher: f,
		ctx:     ctx,
		cancel:  cancel,
		cache:   make(map[string]*entry),
	}
}

// Fetcher returns the fetcher the loader resolves URLs with.
func (l *Loader) Fetcher() *fetch.Fetcher { return l.fetcher }

// Get returns the cached resource for url. On a miss it starts a load and
// returns false; fallback is the placeholder color used if that load fails.
func (l *Loader) Get(url string, fallback color.NRGBA) (*Resource, bool) {
	e := l.lookup(url, fallback)
	if e.ready() {
		return e.res, true
	}
	return nil, false
}

// Load waits for url to be resolved and returns the resource.
// Load failures are not errors; they yield a placeholder resource.
func (l *Loader) Load(ctx context.Context, url string, fallback color.NRGBA) (*Resource, error) {
	e := l.lookup(url, fallback)
	select {
	case <-e.done:
		return e.res, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("load %s: %w", url, ctx.Err())
	}
}

// Wait blocks until every load started so far has finished.
func (l *Loader) Wait(ctx context.Context) error {
	for {
		pending := l.pending()
		if len(pending) == 0 {
			return nil
		}
		for _, e := range pending {
			select {
			case <-e.done:
			case <-ctx.Done():
				return fmt.Errorf("wait for image loads: %w", ctx.Err())
			}
		}
	}
}

// Pending returns the number of loads in flight.
func (l *Loader) Pending() int { return len(l.pending()) }

// Close cancels in-flight loads and drops the cache.
func (l *Loader) Close() {
	l.cancel()
	l.mu.Lock()
	l.cache = make(map[string]*entry)
	l.mu.Unlock()
}

func (l *Loader) pending() []*entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*entry
	for _, e := range l.cache {
		if !e.ready() {
			out = append(out, e)
		}
	}
	return out
}

func (l *Loader) lookup(url string, fallback color.NRGBA) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.cache[url]; ok {
		return e
	}
	e := &entry{done: make(chan struct{})}
	l.cache[url] = e
	go func() {
		// Only this goroutine writes res, before done is closed.
		e.res = l.resolve(l.ctx, url, fallback)
		close(e.done)
	}()
	return e
}

// resolve tries CORS first, then one opaque retry for cross-origin URLs,
// then a placeholder.
func (l *Loader) resolve(ctx context.Context, url string, fallback color.NRGBA) *Resource {
	log := Logger()

	res, err := l.fetcher.Fetch(ctx, url, fetch.ModeCORS)
	if err != nil && fetch.IsRemote(url) && !l.fetcher.SameOrigin(url) && ctx.Err() == nil {
		log.Debug("cors load failed, retrying without cors", "url", url, "err", err)
		res, err = l.fetcher.Fetch(ctx, url, fetch.ModeNoCORS)
	}
	if err == nil {
		var img image.Image
		if img, err = DecodeImage(res.Body); err == nil {
			return &Resource{URL: url, Image: img, Tainted: res.CrossOrigin}
		}
	}

	log.Warn("image load failed, using placeholder", "url", url, "err", err)
	return placeholder(url, fallback)
}

func placeholder(url string, c color.NRGBA) *Resource {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, c)
	return &Resource{URL: url, Image: img, Placeholder: true, Color: c}
}

// DecodeImage decodes PNG, JPEG, GIF or WebP bytes.
func DecodeImage(body []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
