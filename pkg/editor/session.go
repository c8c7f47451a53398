// Package editor ties the layer store, history, interaction controller,
// renderer and exporter into one editing session.
//
// A Session is the explicit context that the rest of the editor hangs off:
// it owns its image cache and drops it when cancelled or closed. It is owned
// by a single goroutine and is not safe for concurrent use.
package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/xob0t/GoLayers/pkg/export"
	"github.com/xob0t/GoLayers/pkg/fetch"
	"github.com/xob0t/GoLayers/pkg/history"
	"github.com/xob0t/GoLayers/pkg/interact"
	"github.com/xob0t/GoLayers/pkg/layer"
	"github.com/xob0t/GoLayers/pkg/render"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("editor: session closed")

// SaveFunc receives the final layers and the flattened PNG.
type SaveFunc func(layers layer.Layers, png []byte) error

// CancelFunc is called when the user abandons the session.
type CancelFunc func()

// Option configures a Session.
type Option func(*Session)

// WithSave sets the save callback.
func WithSave(fn SaveFunc) Option { return func(s *Session) { s.onSave = fn } }

// WithCancel sets the cancel callback.
func WithCancel(fn CancelFunc) Option { return func(s *Session) { s.onCancel = fn } }

// Session is one open editor.
type Session struct {
	cfg      Config
	store    *layer.Store
	history  *history.Manager
	ctrl     *interact.Controller
	loader   *render.Loader
	renderer *render.Renderer
	exporter *export.Exporter

	onSave   SaveFunc
	onCancel CancelFunc

	frame  *render.Surface
	closed bool
}

// NewSession opens an editor on a creative and its brand settings.
func NewSession(cfg Config, c layer.Creative, b layer.BrandSettings, opts ...Option) (*Session, error) {
	cfg.defaults()
	doc := layer.NewDocument(c, b)
	doc.Canvas.BackgroundColor = cfg.BackgroundColor
	return Open(cfg, doc, opts...)
}

// Open opens an editor on an existing document, such as one read from a bundle.
func Open(cfg Config, doc layer.Document, opts ...Option) (*Session, error) {
	cfg.defaults()
	loader := render.NewLoader(fetch.New(fetch.Config{
		Timeout:   cfg.Fetch.Timeout,
		MaxBytes:  cfg.Fetch.MaxBytes,
		UserAgent: cfg.Fetch.UserAgent,
		Origin:    cfg.Origin,
	}))
	r, err := render.NewRenderer(loader, render.Options{FontPath: cfg.FontPath, HandleSize: cfg.HandleSize})
	if err != nil {
		loader.Close()
		return nil, fmt.Errorf("new renderer: %w", err)
	}

	ctrl := interact.New(interact.Config{
		MinSize:         cfg.MinSize,
		Bounds:          cfg.DragBounds,
		HandleHitRadius: cfg.HandleHitRadius,
	})
	doc.Layers = doc.Layers.Clone()
	for i, l := range doc.Layers {
		doc.Layers[i] = ctrl.Constrain(l)
	}

	store := layer.NewStore(doc)
	s := &Session{
		cfg:      cfg,
		store:    store,
		history:  history.New(store.Layers(), cfg.HistoryLimit),
		ctrl:     ctrl,
		loader:   loader,
		renderer: r,
		exporter: export.New(r, export.Options{
			WaitTimeout: cfg.Export.WaitTimeout,
			Concurrency: cfg.Export.Concurrency,
		}),
	}
	for _, opt := range opts {
		opt(s)
	}

	w, h := store.Size()
	render.Logger().Debug("session opened", "width", w, "height", h, "layers", len(store.Layers()))
	s.Repaint()
	return s, nil
}

// ── Accessors ──

func (s *Session) Config() Config { return s.cfg }
func (s *Session) Document() layer.Document { return s.store.Document() }
func (s *Session) Layers() layer.Layers { return s.store.Layers() }
func (s *Session) History() *history.Manager { return s.history }
func (s *Session) Controller() *interact.Controller { return s.ctrl }
func (s *Session) Selected() string { return s.ctrl.Selected() }
func (s *Session) Loader() *render.Loader { return s.loader }

// Frame returns the surface of the last repaint.
func (s *Session) Frame() *render.Surface { return s.frame }

// Repaint renders the current document with selection chrome.
// Images still loading are picked up by a later repaint.
func (s *Session) Repaint() *render.Surface {
	if s.closed {
		return s.frame
	}
	s.frame = s.renderer.Render(s.store.Document(), s.ctrl.Selected())
	return s.frame
}

// commit snapshots the layers into history and repaints.
func (s *Session) commit() {
	s.history.Save(s.store.Layers())
	s.Repaint()
}

// ── Pointer input ──

func (s *Session) PointerDown(p interact.Point) {
	if s.closed {
		return
	}
	s.ctrl.PointerDown(s.store, p)
	s.Repaint()
}

func (s *Session) PointerMove(p interact.Point) {
	if s.closed {
		return
	}
	if s.ctrl.PointerMove(s.store, p) {
		s.Repaint()
	}
}

// PointerUp ends a gesture and commits it when it changed the layers.
func (s *Session) PointerUp() {
	if s.closed {
		return
	}
	if s.ctrl.PointerUp() {
		s.commit()
	}
}

// ── Selection ──

func (s *Session) Select(id string) {
	if _, ok := s.store.Layer(id); ok {
		s.ctrl.Select(id)
		s.Repaint()
	}
}

func (s *Session) ClearSelection() {
	s.ctrl.ClearSelection()
	s.Repaint()
}

// ── Discrete edits; each one is a history entry ──

// AddText adds a text layer and selects it.
func (s *Session) AddText(content string) string {
	if content == "" {
		content = "New text"
	}
	return s.add(layer.Layer{
		Type: layer.TypeText, X: 10, Y: 10, Width: 50, Height: 10, Visible: true,
		Content: content,
		Style:   layer.Style{FontSize: 32, Color: "#000000", TextAlign: "left"},
	})
}

// AddShape adds a shape layer and selects it.
func (s *Session) AddShape(shape string) string {
	switch shape {
	case layer.ShapeCircle, layer.ShapeRoundedRectangle:
	default:
		shape = layer.ShapeRectangle
	}
	return s.add(layer.Layer{
		Type: layer.TypeShape, X: 30, Y: 30, Width: 20, Height: 20, Visible: true,
		Style: layer.Style{ShapeType: shape, BackgroundColor: "#cccccc"},
	})
}

// AddImage adds an image layer for url and selects it.
func (s *Session) AddImage(url string) string {
	return s.add(layer.Layer{
		Type: layer.TypeImage, X: 35, Y: 35, Width: 30, Height: 30, Visible: true,
		ImageURL: url,
		Style:    layer.Style{ImageClip: layer.ShapeNone},
	})
}

func (s *Session) add(l layer.Layer) string {
	if s.closed {
		return ""
	}
	id := s.store.Add(l)
	s.ctrl.Select(id)
	s.commit()
	return id
}

// Duplicate copies a layer on top of the stack and selects the copy.
func (s *Session) Duplicate(id string) string {
	if s.closed {
		return ""
	}
	nid := s.store.Duplicate(id)
	if nid == "" {
		return ""
	}
	s.ctrl.Select(nid)
	s.commit()
	return nid
}

// Delete removes a layer. The background cannot be deleted.
func (s *Session) Delete(id string) {
	s.edit(id, func() { s.store.Remove(id) })
	if sel := s.ctrl.Selected(); sel == id && !s.hasLayer(sel) {
		s.ctrl.ClearSelection()
		s.Repaint()
	}
}

func (s *Session) BringForward(id string) { s.edit(id, func() { s.store.BringForward(id) }) }
func (s *Session) SendBack(id string) { s.edit(id, func() { s.store.SendBack(id) }) }

func (s *Session) SetVisible(id string, visible bool) {
	s.edit(id, func() { s.store.SetVisible(id, visible) })
}

// Patch applies a sidebar edit (geometry, content or style) to a layer.
func (s *Session) Patch(id string, p layer.Patch) {
	s.edit(id, func() {
		s.store.Update(id, p)
		if l, ok := s.store.Layer(id); ok {
			l = s.ctrl.Constrain(l)
			s.store.Update(id, layer.Geometry(l.X, l.Y, l.Width, l.Height))
		}
	})
}

// edit runs op against an existing layer and commits when the layers changed.
func (s *Session) edit(id string, op func()) {
	if s.closed {
		return
	}
	if _, ok := s.store.Layer(id); !ok {
		return
	}
	before := s.store.Layers()
	op()
	if !equalLayers(before, s.store.Layers()) {
		s.commit()
	}
}

// SetCanvas replaces the canvas settings. Canvas settings are not part of
// the layer history.
func (s *Session) SetCanvas(c layer.Canvas) {
	if s.closed {
		return
	}
	s.store.SetCanvas(c)
	s.Repaint()
}

// ── History ──

// Undo restores the previous snapshot. It reports false at the oldest entry.
func (s *Session) Undo() bool {
	if s.closed {
		return false
	}
	snap, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

// Redo re-applies an undone snapshot. It reports false at the newest entry.
func (s *Session) Redo() bool {
	if s.closed {
		return false
	}
	snap, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

func (s *Session) restore(snap layer.Layers) {
	s.ctrl.PointerUp()
	s.store.SetLayers(snap)
	if _, ok := s.store.Layer(s.ctrl.Selected()); !ok {
		s.ctrl.ClearSelection()
	}
	s.Repaint()
}

// ── Lifecycle ──

// Save exports the document and hands the result to the save callback.
func (s *Session) Save(ctx context.Context) (*export.Artifact, error) {
	if s.closed {
		return nil, ErrClosed
	}
	a, err := s.exporter.Export(ctx, s.store.Document())
	if err != nil {
		return nil, err
	}
	render.Logger().Info("creative exported", "fallback", a.Fallback, "bytes", len(a.PNG))
	if s.onSave != nil {
		if err := s.onSave(a.Layers, a.PNG); err != nil {
			return a, fmt.Errorf("save callback: %w", err)
		}
	}
	return a, nil
}

// Cancel discards the session and notifies the cancel callback.
func (s *Session) Cancel() {
	if s.closed {
		return
	}
	s.Close()
	if s.onCancel != nil {
		s.onCancel()
	}
}

// Close drops the image cache and releases fonts.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.loader.Close()
	s.renderer.Close()
}

func (s *Session) hasLayer(id string) bool {
	_, ok := s.store.Layer(id)
	return ok
}

func equalLayers(a, b layer.Layers) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
