// layers.go - Pure mutation operations on an ordered layer list.
// Every operation returns a new slice and leaves its receiver untouched.
package layer

import (
	"sort"

	"github.com/google/uuid"
)

// Layers is an ordered layer list. Slice order is insertion order and breaks
// zIndex ties.
type Layers []Layer

// Clone returns a deep copy. Layer holds only value fields, so a slice copy suffices.
func (ls Layers) Clone() Layers {
	if ls == nil {
		return nil
	}
	out := make(Layers, len(ls))
	copy(out, ls)
	return out
}

// Find returns the layer with the given id.
func (ls Layers) Find(id string) (Layer, bool) {
	if i := ls.index(id); i >= 0 {
		return ls[i], true
	}
	return Layer{}, false
}

// Sorted returns the layers in paint order: ascending zIndex, insertion order on ties.
func (ls Layers) Sorted() Layers {
	out := ls.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}

// MaxZ returns the highest zIndex in the list, or 0 when empty.
func (ls Layers) MaxZ() int {
	z := 0
	for _, l := range ls {
		z = max(z, l.ZIndex)
	}
	return z
}

// Add appends l. An empty ID gets a generated one; a zIndex <= 0 on a
// non-background layer places it on top of the stack.
func (ls Layers) Add(l Layer) Layers {
	if l.ID == "" || ls.index(l.ID) >= 0 {
		l.ID = NewID(l.Type)
	}
	if l.Type != TypeBackground && l.ZIndex <= 0 {
		l.ZIndex = ls.MaxZ() + 1
	}
	applyLayerDefaults(&l)
	out := make(Layers, 0, len(ls)+1)
	out = append(out, ls...)
	return append(out, l)
}

// Remove deletes the layer with the given id. The background layer is never removed.
func (ls Layers) Remove(id string) Layers {
	i := ls.index(id)
	if i < 0 || ls[i].Type == TypeBackground {
		return ls.Clone()
	}
	out := make(Layers, 0, len(ls)-1)
	out = append(out, ls[:i]...)
	return append(out, ls[i+1:]...)
}

// Duplicate copies the layer with the given id, offset slightly, on top of the stack.
func (ls Layers) Duplicate(id string) Layers {
	i := ls.index(id)
	if i < 0 || ls[i].Type == TypeBackground {
		return ls.Clone()
	}
	dup := ls[i]
	dup.ID = ""
	dup.ZIndex = 0
	dup.X += 2
	dup.Y += 2
	return ls.Add(dup)
}

// Update applies a patch to the layer with the given id.
func (ls Layers) Update(id string, p Patch) Layers {
	out := ls.Clone()
	if i := out.index(id); i >= 0 {
		p.apply(&out[i])
	}
	return out
}

// SetVisible toggles visibility of a layer.
func (ls Layers) SetVisible(id string, visible bool) Layers {
	return ls.Update(id, Patch{Visible: &visible})
}

// BringForward raises a layer's zIndex by one. The background stays at 0.
func (ls Layers) BringForward(id string) Layers {
	out := ls.Clone()
	if i := out.index(id); i >= 0 && out[i].Type != TypeBackground {
		out[i].ZIndex++
	}
	return out
}

// SendBack lowers a layer's zIndex by one, never below 1, so the background
// always paints underneath.
func (ls Layers) SendBack(id string) Layers {
	out := ls.Clone()
	if i := out.index(id); i >= 0 && out[i].Type != TypeBackground {
		out[i].ZIndex = max(out[i].ZIndex-1, 1)
	}
	return out
}

func (ls Layers) index(id string) int {
	for i := range ls {
		if ls[i].ID == id {
			return i
		}
	}
	return -1
}

// NewID returns a unique layer id prefixed with the layer type.
func NewID(t Type) string {
	return string(t) + "-" + uuid.NewString()[:8]
}

// Patch is a partial layer update. Nil fields are left unchanged.
type Patch struct {
	X, Y          *float64
	Width, Height *float64
	Visible       *bool
	Content       *string
	ImageURL      *string
	Style         *StylePatch
}

// StylePatch is a partial style update. Empty strings and non-positive
// numbers are left unchanged. Hide a layer with Patch.Visible rather than
// a zero opacity.
type StylePatch struct {
	FontSize        float64
	FontFamily      string
	Color           string
	FontWeight      string
	BackgroundColor string
	BorderRadius    *float64
	TextAlign       string
	Opacity         *float64
	ShapeType       string
	ImageClip       string
}

// Geometry builds a patch that moves and resizes a layer.
func Geometry(x, y, w, h float64) Patch {
	return Patch{X: &x, Y: &y, Width: &w, Height: &h}
}

func (p Patch) apply(l *Layer) {
	if p.X != nil {
		l.X = *p.X
	}
	if p.Y != nil {
		l.Y = *p.Y
	}
	if p.Width != nil && *p.Width > 0 {
		l.Width = *p.Width
	}
	if p.Height != nil && *p.Height > 0 {
		l.Height = *p.Height
	}
	if p.Visible != nil {
		l.Visible = *p.Visible
	}
	if p.Content != nil {
		l.Content = *p.Content
	}
	if p.ImageURL != nil {
		l.ImageURL = *p.ImageURL
	}
	if p.Style != nil {
		mergeStyle(&l.Style, *p.Style)
	}
}

// mergeStyle applies non-zero style overrides.
func mergeStyle(base *Style, over StylePatch) {
	if over.FontSize > 0 {
		base.FontSize = over.FontSize
	}
	if over.FontFamily != "" {
		base.FontFamily = over.FontFamily
	}
	if over.Color != "" {
		base.Color = over.Color
	}
	if over.FontWeight != "" {
		base.FontWeight = over.FontWeight
	}
	if over.BackgroundColor != "" {
		base.BackgroundColor = over.BackgroundColor
	}
	if over.BorderRadius != nil {
		base.BorderRadius = max(*over.BorderRadius, 0)
	}
	if over.TextAlign != "" {
		base.TextAlign = over.TextAlign
	}
	if over.Opacity != nil && *over.Opacity > 0 {
		base.Opacity = min(*over.Opacity, 1)
	}
	if over.ShapeType != "" {
		base.ShapeType = over.ShapeType
	}
	if over.ImageClip != "" {
		base.ImageClip = over.ImageClip
	}
}
