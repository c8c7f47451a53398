// Package interact turns pointer input into layer store mutations.
//
// The controller is a three-state machine (idle, dragging, resizing).
// Pointer coordinates are canvas pixels; layer geometry is percent of the
// canvas, so every event is converted before it touches the store.
package interact

import (
	"math"

	"github.com/xob0t/GoLayers/pkg/layer"
)

// State is the controller's interaction state.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Handle identifies one of the four corner resize handles.
type Handle int

const (
	HandleNone Handle = iota
	HandleNW
	HandleNE
	HandleSW
	HandleSE
)

func (h Handle) left() bool { return h == HandleNW || h == HandleSW }
func (h Handle) top() bool { return h == HandleNW || h == HandleNE }

// Handles lists the corner handles in hit-test order.
var Handles = [4]Handle{HandleNW, HandleNE, HandleSW, HandleSE}

// Point is a pointer position in canvas pixels.
type Point struct {
	X, Y float64
}

// Bounds is the soft range, in percent, that layer edges may be moved to.
// Layers may sit partly off-canvas so bleed and crop compositions work.
type Bounds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Config tunes the controller.
type Config struct {
	MinSize         float64 // minimum width/height in percent
	Bounds          Bounds
	HandleHitRadius float64 // pixels
}

func (c *Config) defaults() {
	if c.MinSize <= 0 {
		c.MinSize = 5
	}
	if c.Bounds.Min == 0 && c.Bounds.Max == 0 {
		c.Bounds = Bounds{Min: -50, Max: 150}
	}
	if c.HandleHitRadius <= 0 {
		c.HandleHitRadius = 10
	}
}

// Controller holds selection and in-progress gesture state for one session.
type Controller struct {
	cfg      Config
	state    State
	selected string

	// gesture state, valid while not idle
	handle     Handle
	offX, offY float64 // pointer minus layer origin, percent
	startX     float64 // pointer at gesture start, percent
	startY     float64
	start      layer.Layer
	moved      bool
}

// New creates an idle controller with nothing selected.
func New(cfg Config) *Controller {
	cfg.defaults()
	return &Controller{cfg: cfg}
}

func (c *Controller) State() State { return c.state }
func (c *Controller) Selected() string { return c.selected }
func (c *Controller) Config() Config { return c.cfg }
func (c *Controller) ActiveHandle() Handle { return c.handle }

// Select sets the selection directly, as a sidebar layer list would.
func (c *Controller) Select(id string) { c.selected = id }

// ClearSelection deselects and abandons any gesture in progress.
func (c *Controller) ClearSelection() {
	c.selected = ""
	c.reset()
}

// PointerDown starts a resize when p is on a handle of the selected layer,
// otherwise selects the topmost layer under p and starts a drag. Pressing on
// empty canvas clears the selection.
func (c *Controller) PointerDown(s *layer.Store, p Point) {
	if c.state != Idle {
		return
	}
	w, h := s.Size()
	ls := s.Layers()
	px, py := toPercent(p, w, h)

	if sel, ok := ls.Find(c.selected); ok {
		if hd := c.handleAt(sel, w, h, p); hd != HandleNone {
			c.state = Resizing
			c.handle = hd
			c.startX, c.startY = px, py
			c.start = sel
			c.moved = false
			return
		}
	}

	id := LayerAt(ls, px, py)
	if id == "" {
		c.ClearSelection()
		return
	}
	l, _ := ls.Find(id)
	c.selected = id
	c.state = Dragging
	c.offX, c.offY = px-l.X, py-l.Y
	c.start = l
	c.moved = false
}

// PointerMove updates the dragged or resized layer. It is a no-op while idle
// and reports whether the store changed.
func (c *Controller) PointerMove(s *layer.Store, p Point) bool {
	if c.state == Idle {
		return false
	}
	if _, ok := s.Layer(c.selected); !ok {
		c.reset()
		return false
	}
	w, h := s.Size()
	px, py := toPercent(p, w, h)

	var g geom
	switch c.state {
	case Dragging:
		g = c.drag(px, py)
	case Resizing:
		g = c.resize(px, py, s.Canvas().LockAspect)
	}

	s.Update(c.selected, layer.Geometry(g.x, g.y, g.w, g.h))
	if g != (geom{c.start.X, c.start.Y, c.start.Width, c.start.Height}) {
		c.moved = true
	}
	return true
}

// PointerUp ends the gesture. It reports whether the gesture changed the
// document, in which case the caller commits a history snapshot.
func (c *Controller) PointerUp() bool {
	if c.state == Idle {
		return false
	}
	commit := c.moved
	c.reset()
	return commit
}

func (c *Controller) reset() {
	c.state = Idle
	c.handle = HandleNone
	c.moved = false
}

type geom struct {
	x, y, w, h float64
}

func (c *Controller) drag(px, py float64) geom {
	b := c.cfg.Bounds
	return geom{
		x: clamp(px-c.offX, b.Min, b.Max),
		y: clamp(py-c.offY, b.Min, b.Max),
		w: c.start.Width,
		h: c.start.Height,
	}
}

// resize moves the grabbed corner while the opposite corner stays fixed.
func (c *Controller) resize(px, py float64, lockAspect bool) geom {
	s := c.start
	b := c.cfg.Bounds
	minSize := c.cfg.MinSize
	dx, dy := px-c.startX, py-c.startY
	left, top := c.handle.left(), c.handle.top()

	w, h := s.Width+dx, s.Height+dy
	if left {
		w = s.Width - dx
	}
	if top {
		h = s.Height - dy
	}

	ratio := 1.0
	if s.Height > 0 {
		ratio = s.Width / s.Height
	}
	if lockAspect {
		if math.Abs(dx) >= math.Abs(dy) {
			h = w / ratio
		} else {
			w = h * ratio
		}
	}

	// Fixed edges and the largest size that keeps the far edge in bounds.
	right, bottom := s.X+s.Width, s.Y+s.Height
	maxW := b.Max - s.X
	if left {
		maxW = right - b.Min
	}
	maxH := b.Max - s.Y
	if top {
		maxH = bottom - b.Min
	}

	if lockAspect {
		scale := 1.0
		if w > maxW {
			scale = min(scale, maxW/w)
		}
		if h > maxH {
			scale = min(scale, maxH/h)
		}
		w, h = w*scale, h*scale
		if w < minSize {
			w, h = minSize, minSize/ratio
		}
		if h < minSize {
			w, h = minSize*ratio, minSize
		}
	} else {
		w = min(w, maxW)
		h = min(h, maxH)
	}
	// Minimum size wins over the far-edge bound.
	w = max(w, minSize)
	h = max(h, minSize)

	g := geom{x: s.X, y: s.Y, w: w, h: h}
	if left {
		g.x = right - w
	}
	if top {
		g.y = bottom - h
	}
	return g
}

// Constrain applies the drag and resize limits to geometry that arrived
// some other way (property edits, bundles): the origin stays within the
// bounds, the far edge stops at the upper bound and the minimum size wins
// over both.
func (c *Controller) Constrain(l layer.Layer) layer.Layer {
	b := c.cfg.Bounds
	l.X = clamp(l.X, b.Min, b.Max)
	l.Y = clamp(l.Y, b.Min, b.Max)
	l.Width = max(min(l.Width, b.Max-l.X), c.cfg.MinSize)
	l.Height = max(min(l.Height, b.Max-l.Y), c.cfg.MinSize)
	return l
}

// handleAt returns the handle of l under p. The background has no handles.
func (c *Controller) handleAt(l layer.Layer, w, h int, p Point) Handle {
	if l.Type == layer.TypeBackground || !l.Visible {
		return HandleNone
	}
	corners := Corners(l, w, h)
	for i, hd := range Handles {
		if math.Hypot(p.X-corners[i].X, p.Y-corners[i].Y) <= c.cfg.HandleHitRadius {
			return hd
		}
	}
	return HandleNone
}

// LayerAt returns the id of the visually topmost visible layer containing
// the percentage point, or "" for empty canvas. Higher zIndex wins; on ties
// the later-inserted layer wins, matching paint order.
func LayerAt(ls layer.Layers, px, py float64) string {
	sorted := ls.Sorted()
	for i := len(sorted) - 1; i >= 0; i-- {
		l := sorted[i]
		if l.Visible && l.Contains(px, py) {
			return l.ID
		}
	}
	return ""
}

// Corners returns the pixel positions of l's corners in Handles order.
func Corners(l layer.Layer, w, h int) [4]Point {
	x0 := l.X / 100 * float64(w)
	y0 := l.Y / 100 * float64(h)
	x1 := (l.X + l.Width) / 100 * float64(w)
	y1 := (l.Y + l.Height) / 100 * float64(h)
	return [4]Point{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}}
}

func toPercent(p Point, w, h int) (float64, float64) {
	return p.X / float64(w) * 100, p.Y / float64(h) * 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
