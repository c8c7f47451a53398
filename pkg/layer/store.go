// store.go - Single source of truth for the document being edited.
package layer

// Store owns the current Document. Mutations swap in a new layer slice built
// by the pure Layers operations; committing to history is left to the caller.
type Store struct {
	doc Document
}

// NewStore creates a store holding a copy of doc.
func NewStore(doc Document) *Store {
	doc.ApplyDefaults()
	return &Store{doc: doc.Clone()}
}

// Document returns a deep copy of the current document.
func (s *Store) Document() Document {
	return s.doc.Clone()
}

// Layers returns a copy of the current layer list.
func (s *Store) Layers() Layers {
	return s.doc.Layers.Clone()
}

// Canvas returns the canvas settings.
func (s *Store) Canvas() Canvas {
	return s.doc.Canvas
}

// Size returns the canvas pixel dimensions.
func (s *Store) Size() (w, h int) {
	return s.doc.Width, s.doc.Height
}

// Layer looks up a single layer.
func (s *Store) Layer(id string) (Layer, bool) {
	return s.doc.Layers.Find(id)
}

// SetLayers replaces the layer list, e.g. when restoring a history snapshot.
func (s *Store) SetLayers(ls Layers) {
	s.doc.Layers = ls.Clone()
}

// Apply replaces the layer list with the result of op.
func (s *Store) Apply(op func(Layers) Layers) {
	s.doc.Layers = op(s.doc.Layers)
}

// SetCanvas replaces the canvas settings.
func (s *Store) SetCanvas(c Canvas) {
	if c.BackgroundColor == "" {
		c.BackgroundColor = s.doc.Canvas.BackgroundColor
	}
	if c.ImageShape == "" {
		c.ImageShape = ShapeNone
	}
	c.Overlay.Opacity = min(max(c.Overlay.Opacity, 0), 1)
	s.doc.Canvas = c
}

// Add appends a layer and returns the id it was stored under.
func (s *Store) Add(l Layer) string {
	s.doc.Layers = s.doc.Layers.Add(l)
	return s.doc.Layers[len(s.doc.Layers)-1].ID
}

func (s *Store) Remove(id string) { s.Apply(func(ls Layers) Layers { return ls.Remove(id) }) }
func (s *Store) Update(id string, p Patch) { s.Apply(func(ls Layers) Layers { return ls.Update(id, p) }) }
func (s *Store) SetVisible(id string, v bool) { s.Apply(func(ls Layers) Layers { return ls.SetVisible(id, v) }) }
func (s *Store) BringForward(id string) { s.Apply(func(ls Layers) Layers { return ls.BringForward(id) }) }
func (s *Store) SendBack(id string) { s.Apply(func(ls Layers) Layers { return ls.SendBack(id) }) }

// Duplicate copies a layer and returns the new layer's id, or "" if nothing was copied.
func (s *Store) Duplicate(id string) string {
	before := len(s.doc.Layers)
	s.doc.Layers = s.doc.Layers.Duplicate(id)
	if len(s.doc.Layers) == before {
		return ""
	}
	return s.doc.Layers[len(s.doc.Layers)-1].ID
}
