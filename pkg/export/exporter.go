// Package export flattens a layer document into a single PNG.
//
// The primary path encodes the rendered surface directly. When the surface
// is tainted by cross-origin images, a fallback path rebuilds the picture on
// a fresh surface from sources that cannot taint it: vector layers are
// redrawn, background images are skipped and image layers are re-fetched and
// laundered through an embedded data: URL copy.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xob0t/GoLayers/pkg/fetch"
	"github.com/xob0t/GoLayers/pkg/layer"
	"github.com/xob0t/GoLayers/pkg/render"
)

// ErrNoSurface is returned when no renderer is available to draw on.
var ErrNoSurface = errors.New("export: no drawing surface")

// PlaceholderLabel is drawn on image layers that cannot be recovered.
const PlaceholderLabel = "Image"

// Options configures an Exporter.
type Options struct {
	// WaitTimeout bounds how long Export waits for pending image loads.
	// Default: 10s.
	WaitTimeout time.Duration
	// Concurrency caps parallel image conversions in the fallback path.
	// Default: 4.
	Concurrency int
}

// Exporter produces Artifacts from documents.
type Exporter struct {
	renderer *render.Renderer
	opts     Options
}

// New creates an exporter painting with r.
func New(r *render.Renderer, opts Options) *Exporter {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 10 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Exporter{renderer: r, opts: opts}
}

// Export renders doc without selection chrome and encodes it. A tainted
// render switches to the fallback path; only a failure of that path is
// returned as an error.
func (e *Exporter) Export(ctx context.Context, doc layer.Document) (*Artifact, error) {
	if e == nil || e.renderer == nil {
		return nil, ErrNoSurface
	}
	log := render.Logger()

	// A first pass requests every image; the barrier then replaces a fixed grace delay.
	e.renderer.Render(doc, "")
	if loader := e.renderer.Loader(); loader != nil {
		wctx, cancel := context.WithTimeout(ctx, e.opts.WaitTimeout)
		err := loader.Wait(wctx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("export: %w", ctx.Err())
			}
			log.Warn("exporting before all images loaded", "err", err)
		}
	}

	s := e.renderer.Render(doc, "")
	if s.Exportable() {
		data, err := s.PNG()
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		log.Debug("export path chosen", "path", "direct", "bytes", len(data))
		return &Artifact{Layers: doc.Layers.Clone(), PNG: data}, nil
	}

	log.Info("surface tainted by cross-origin image, using fallback export")
	data, err := e.fallback(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("fallback export: %w", err)
	}
	return &Artifact{Layers: doc.Layers.Clone(), PNG: data, Fallback: true}, nil
}

// fallback converts image layers concurrently, then paints every layer in
// z-order onto a fresh surface.
func (e *Exporter) fallback(ctx context.Context, doc layer.Document) ([]byte, error) {
	layers := doc.Layers.Sorted()
	converted := make([]*render.Resource, len(layers))

	var fetcher *fetch.Fetcher
	if loader := e.renderer.Loader(); loader != nil {
		fetcher = loader.Fetcher()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for i, l := range layers {
		if l.Type != layer.TypeImage || !l.Visible || l.ImageURL == "" || fetcher == nil {
			continue
		}
		i, l := i, l
		g.Go(func() error {
			res, err := convert(gctx, fetcher, l.ImageURL)
			if err != nil {
				// Logged and replaced by a placeholder; one bad image does not fail the export.
				render.Logger().Warn("fallback image conversion failed", "layer", l.ID, "url", l.ImageURL, "err", err)
				return nil
			}
			converted[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := e.renderer
	s := render.NewSurface(doc.Width, doc.Height)
	r.PaintCanvas(s, doc.Canvas)
	for i, l := range layers {
		if !l.Visible {
			continue
		}
		box := render.PixelBox(l, doc.Width, doc.Height)
		switch l.Type {
		case layer.TypeBackground:
			// The image itself is skipped; the overlay still tints its area.
			if l.ImageURL != "" {
				r.PaintOverlay(s, doc.Canvas, box)
			}
		case layer.TypeImage:
			if res := converted[i]; res != nil {
				r.DrawImage(s, res, box, l.Style.ImageClip, l.Style.BorderRadius, l.Style.Opacity)
			} else {
				r.DrawPlaceholder(s, box, PlaceholderLabel)
			}
		default:
			r.PaintVector(s, l, box)
		}
	}
	return s.PNG()
}

// convert re-fetches url, draws it onto an isolated scratch image and
// decodes the result back from an embedded PNG data: URL.
func convert(ctx context.Context, f *fetch.Fetcher, url string) (*render.Resource, error) {
	res, err := f.Fetch(ctx, url, fetch.ModeNoCORS)
	if err != nil {
		return nil, err
	}
	img, err := render.DecodeImage(res.Body)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	scratch := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(scratch, scratch.Bounds(), img, b.Min, draw.Src)

	dataURL, err := encodeDataURL(scratch)
	if err != nil {
		return nil, err
	}
	body, _, err := fetch.DecodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	copyImg, err := render.DecodeImage(body)
	if err != nil {
		return nil, err
	}
	return &render.Resource{URL: url, Image: copyImg}, nil
}
