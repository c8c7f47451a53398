// renderer.go - Paints a layer document onto a raster surface.
// Uses a layered approach: canvas color -> layers by zIndex -> selection chrome.
package render

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/xob0t/GoLayers/pkg/layer"
)

// DefaultRadius is the corner radius of rounded shapes with no borderRadius.
const DefaultRadius = 20

// DefaultHandleSize is the side of a selection handle in pixels.
const DefaultHandleSize = 8

var (
	selectionColor = color.NRGBA{59, 130, 246, 255}
	handleFill     = color.NRGBA{255, 255, 255, 255}
	labelColor     = color.NRGBA{107, 114, 128, 255}
)

// Options configures a Renderer.
type Options struct {
	FontPath   string  // optional TTF replacing the regular sans face
	HandleSize float64 // default DefaultHandleSize
}

// Renderer paints documents. Not safe for concurrent use.
type Renderer struct {
	fonts      *FontManager
	loader     *Loader
	handleSize float64
}

// NewRenderer creates a renderer drawing images from loader.
// A nil loader paints no images.
func NewRenderer(loader *Loader, opts Options) (*Renderer, error) {
	fm, err := NewFontManager(opts.FontPath)
	if err != nil {
		return nil, err
	}
	if opts.HandleSize <= 0 {
		opts.HandleSize = DefaultHandleSize
	}
	return &Renderer{fonts: fm, loader: loader, handleSize: opts.HandleSize}, nil
}

// Loader returns the image cache used by the renderer.
func (r *Renderer) Loader() *Loader { return r.loader }

// Close releases font faces.
func (r *Renderer) Close() { r.fonts.Close() }

// Rect is a box in canvas pixels.
type Rect struct {
	X, Y, W, H float64
}

// PixelBox converts the percentage geometry of l to pixels on a w x h canvas.
func PixelBox(l layer.Layer, w, h int) Rect {
	return Rect{
		X: l.X / 100 * float64(w),
		Y: l.Y / 100 * float64(h),
		W: l.Width / 100 * float64(w),
		H: l.Height / 100 * float64(h),
	}
}

// PlaceholderColor is the color substituted for an unloadable image of l.
func PlaceholderColor(l layer.Layer) color.NRGBA {
	if l.ID == layer.LogoID {
		return LogoPlaceholder
	}
	return ImagePlaceholder
}

// Render paints doc onto a new surface. Images missing from the cache are
// requested and skipped for this pass. selectedID, if not empty, gets the
// selection outline and handles.
func (r *Renderer) Render(doc layer.Document, selectedID string) *Surface {
	s := NewSurface(doc.Width, doc.Height)
	r.PaintCanvas(s, doc.Canvas)

	for _, l := range doc.Layers.Sorted() {
		if !l.Visible {
			continue
		}
		r.PaintLayer(s, doc, l)
	}

	if selectedID != "" {
		if l, ok := doc.Layers.Find(selectedID); ok {
			r.paintSelection(s, doc, l)
		}
	}
	return s
}

// PaintCanvas fills s with the canvas background color.
func (r *Renderer) PaintCanvas(s *Surface, c layer.Canvas) {
	s.Fill(ParseColorOr(c.BackgroundColor, color.NRGBA{255, 255, 255, 255}))
}

// PaintLayer paints a single layer according to its type.
func (r *Renderer) PaintLayer(s *Surface, doc layer.Document, l layer.Layer) {
	box := PixelBox(l, doc.Width, doc.Height)
	switch l.Type {
	case layer.TypeBackground:
		res := r.cached(l)
		if res == nil {
			return
		}
		r.DrawImage(s, res, box, doc.Canvas.ImageShape, 0, l.Style.Opacity)
		r.PaintOverlay(s, doc.Canvas, box)
	case layer.TypeImage:
		res := r.cached(l)
		if res == nil {
			return
		}
		r.DrawImage(s, res, box, l.Style.ImageClip, l.Style.BorderRadius, l.Style.Opacity)
	default:
		r.PaintVector(s, l, box)
	}
}

// PaintVector paints text, button and shape layers. These never taint.
func (r *Renderer) PaintVector(s *Surface, l layer.Layer, box Rect) {
	switch l.Type {
	case layer.TypeText:
		r.drawText(s, l, box)
	case layer.TypeButton:
		r.drawButton(s, l, box)
	case layer.TypeShape:
		r.drawShape(s, l, box)
	}
}

func (r *Renderer) cached(l layer.Layer) *Resource {
	if r.loader == nil || l.ImageURL == "" {
		return nil
	}
	res, ok := r.loader.Get(l.ImageURL, PlaceholderColor(l))
	if !ok {
		return nil
	}
	return res
}

// DrawImage scales res into box, clipped to shape. Drawing a tainted
// resource taints s.
func (r *Renderer) DrawImage(s *Surface, res *Resource, box Rect, shape string, radius, opacity float64) {
	dc := s.Context()
	if box.W < 1 || box.H < 1 {
		return
	}

	clipTo(dc, box, shape, radius)
	defer dc.ResetClip()

	if res.Placeholder {
		dc.SetColor(withOpacity(res.Color, opacity))
		dc.DrawRectangle(box.X, box.Y, box.W, box.H)
		dc.Fill()
		return
	}

	if res.Tainted {
		s.Taint()
	}

	// Only the part of the box that lands on the surface is scaled.
	x0, y0 := int(math.Round(box.X)), int(math.Round(box.Y))
	full := image.Rect(x0, y0, x0+int(math.Ceil(box.W)), y0+int(math.Ceil(box.H)))
	vis := full.Intersect(image.Rect(0, 0, s.Width(), s.Height()))
	if vis.Empty() {
		return
	}
	sr := res.Image.Bounds()
	if sr.Empty() {
		return
	}
	sx := float64(full.Dx()) / float64(sr.Dx())
	sy := float64(full.Dy()) / float64(sr.Dy())
	m := f64.Aff3{
		sx, 0, float64(x0) - float64(sr.Min.X)*sx,
		0, sy, float64(y0) - float64(sr.Min.Y)*sy,
	}
	dst := image.NewRGBA(vis)
	xdraw.CatmullRom.Transform(dst, m, res.Image, sr, xdraw.Over, nil)
	fade(dst, opacity)
	dc.DrawImage(dst, 0, 0)
}

// PaintOverlay composites the canvas color overlay over the background box.
func (r *Renderer) PaintOverlay(s *Surface, c layer.Canvas, box Rect) {
	if !c.Overlay.Enabled || c.Overlay.Opacity <= 0 {
		return
	}
	dc := s.Context()
	clipTo(dc, box, c.ImageShape, 0)
	defer dc.ResetClip()
	dc.SetColor(withOpacity(ParseColorOr(c.Overlay.Color, color.NRGBA{A: 255}), c.Overlay.Opacity))
	dc.DrawRectangle(box.X, box.Y, box.W, box.H)
	dc.Fill()
}

// DrawPlaceholder paints a gray box with a centered label.
func (r *Renderer) DrawPlaceholder(s *Surface, box Rect, label string) {
	dc := s.Context()
	dc.SetColor(ImagePlaceholder)
	dc.DrawRectangle(box.X, box.Y, box.W, box.H)
	dc.Fill()

	if label == "" {
		return
	}
	size := math.Max(10, math.Min(box.H/4, 16))
	face, err := r.fonts.Face("", "", size)
	if err != nil {
		return
	}
	dc.SetFontFace(face)
	dc.SetColor(labelColor)
	dc.DrawStringAnchored(label, box.X+box.W/2, box.Y+box.H/2, 0.5, 0.5)
}

func (r *Renderer) drawText(s *Surface, l layer.Layer, box Rect) {
	st := l.Style
	face, err := r.fonts.Face(st.FontFamily, st.FontWeight, st.FontSize)
	if err != nil {
		Logger().Warn("font unavailable", "layer", l.ID, "err", err)
		return
	}
	dc := s.Context()
	dc.SetFontFace(face)
	dc.SetColor(withOpacity(ParseColorOr(st.Color, color.NRGBA{A: 255}), st.Opacity))

	x, ax := box.X, 0.0
	switch st.TextAlign {
	case "center":
		x, ax = box.X+box.W/2, 0.5
	case "right":
		x, ax = box.X+box.W, 1
	}

	lineHeight := st.FontSize * 1.2
	for i, line := range strings.Split(l.Content, "\n") {
		// ay=1 places the top of the line at y.
		dc.DrawStringAnchored(line, x, box.Y+float64(i)*lineHeight, ax, 1)
	}
}

func (r *Renderer) drawButton(s *Surface, l layer.Layer, box Rect) {
	st := l.Style
	dc := s.Context()

	bg := ParseColorOr(st.BackgroundColor, selectionColor)
	dc.SetColor(withOpacity(bg, st.Opacity))
	if st.BorderRadius > 0 {
		dc.DrawRoundedRectangle(box.X, box.Y, box.W, box.H, st.BorderRadius)
	} else {
		dc.DrawRectangle(box.X, box.Y, box.W, box.H)
	}
	dc.Fill()

	if l.Content == "" {
		return
	}
	face, err := r.fonts.Face(st.FontFamily, st.FontWeight, st.FontSize)
	if err != nil {
		Logger().Warn("font unavailable", "layer", l.ID, "err", err)
		return
	}
	dc.SetFontFace(face)
	dc.SetColor(withOpacity(ParseColorOr(st.Color, color.NRGBA{255, 255, 255, 255}), st.Opacity))
	dc.DrawStringAnchored(l.Content, box.X+box.W/2, box.Y+box.H/2, 0.5, 0.5)
}

func (r *Renderer) drawShape(s *Surface, l layer.Layer, box Rect) {
	st := l.Style
	dc := s.Context()
	dc.SetColor(withOpacity(ParseColorOr(st.BackgroundColor, color.NRGBA{204, 204, 204, 255}), st.Opacity))
	shapePath(dc, box, st.ShapeType, st.BorderRadius)
	dc.Fill()
}

func (r *Renderer) paintSelection(s *Surface, doc layer.Document, l layer.Layer) {
	dc := s.Context()
	box := PixelBox(l, doc.Width, doc.Height)

	dc.SetColor(selectionColor)
	dc.SetLineWidth(2)
	dc.SetDash(5, 5)
	dc.DrawRectangle(box.X, box.Y, box.W, box.H)
	dc.Stroke()
	dc.SetDash()

	if l.Type == layer.TypeBackground {
		return
	}
	hs := r.handleSize
	dc.SetLineWidth(1)
	for _, p := range [4][2]float64{
		{box.X, box.Y},
		{box.X + box.W, box.Y},
		{box.X, box.Y + box.H},
		{box.X + box.W, box.Y + box.H},
	} {
		dc.DrawRectangle(p[0]-hs/2, p[1]-hs/2, hs, hs)
		dc.SetColor(handleFill)
		dc.FillPreserve()
		dc.SetColor(selectionColor)
		dc.Stroke()
	}
}

// shapePath adds the outline of shape inside box to the current path.
func shapePath(dc *gg.Context, box Rect, shape string, radius float64) {
	switch shape {
	case layer.ShapeCircle:
		dc.DrawCircle(box.X+box.W/2, box.Y+box.H/2, math.Min(box.W, box.H)/2)
	case layer.ShapeRoundedRectangle:
		if radius <= 0 {
			radius = DefaultRadius
		}
		dc.DrawRoundedRectangle(box.X, box.Y, box.W, box.H, radius)
	default:
		dc.DrawRectangle(box.X, box.Y, box.W, box.H)
	}
}

// clipTo restricts drawing to shape. "none" and "" clip to the box itself.
func clipTo(dc *gg.Context, box Rect, shape string, radius float64) {
	shapePath(dc, box, shape, radius)
	dc.Clip()
}

// fade scales a premultiplied image by opacity.
func fade(img *image.RGBA, opacity float64) {
	if opacity >= 1 || opacity <= 0 {
		return
	}
	for i, v := range img.Pix {
		img.Pix[i] = uint8(float64(v)*opacity + 0.5)
	}
}
