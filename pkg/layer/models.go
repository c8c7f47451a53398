// Package layer holds the editable document of a creative: stacked visual
// layers with percentage geometry plus the canvas-wide settings.
package layer

// ── Layer types ──

// Type identifies what a layer paints.
type Type string

const (
	TypeBackground Type = "background"
	TypeText       Type = "text"
	TypeButton     Type = "button"
	TypeImage      Type = "image"
	TypeShape      Type = "shape"
)

// Shape kinds, used both for shape layers and for image clipping.
const (
	ShapeNone             = "none"
	ShapeRectangle        = "rectangle"
	ShapeCircle           = "circle"
	ShapeRoundedRectangle = "rounded-rectangle"
)

// Well-known layer IDs created by NewDocument.
const (
	BackgroundID = "background"
	LogoID       = "logo"
	ButtonID     = "cta"
)

// Layer is one positioned, styled visual element.
// Geometry is expressed in percent of the canvas (0–100, transiently outside).
type Layer struct {
	ID       string  `json:"id"`
	Type     Type    `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	ZIndex   int     `json:"zIndex"` // paint order (higher = on top)
	Visible  bool    `json:"visible"`
	Style    Style   `json:"style"`
	Content  string  `json:"content,omitempty"`  // text and button layers
	ImageURL string  `json:"imageUrl,omitempty"` // image and background layers
}

// Style holds the optional per-layer appearance fields.
// Fields that do not apply to a layer's type are ignored.
type Style struct {
	FontSize        float64 `json:"fontSize,omitempty"`
	FontFamily      string  `json:"fontFamily,omitempty"`
	Color           string  `json:"color,omitempty"` // text color
	FontWeight      string  `json:"fontWeight,omitempty"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	BorderRadius    float64 `json:"borderRadius,omitempty"` // pixels
	TextAlign       string  `json:"textAlign,omitempty"`    // "left", "center", "right"
	Opacity         float64 `json:"opacity,omitempty"`      // 0..1, 0 means unset
	ShapeType       string  `json:"shapeType,omitempty"`
	ImageClip       string  `json:"imageClip,omitempty"`
}

// Contains reports whether the percentage point (px, py) lies inside the layer box.
func (l Layer) Contains(px, py float64) bool {
	return px >= l.X && px <= l.X+l.Width && py >= l.Y && py <= l.Y+l.Height
}

// ── Canvas types ──

// Overlay is a flat color composited over the background image.
type Overlay struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// Canvas holds the settings that apply to the whole composition.
type Canvas struct {
	BackgroundColor string  `json:"backgroundColor"`
	ImageShape      string  `json:"imageShape"` // clip applied to the background image
	Overlay         Overlay `json:"overlay"`
	LockAspect      bool    `json:"lockAspect"`
}

// Document is the full editable state: canvas settings, pixel size and layers.
type Document struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Canvas Canvas `json:"canvas"`
	Layers Layers `json:"layers"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	d.Layers = d.Layers.Clone()
	return d
}

// ── Input types (from the surrounding application) ──

// Creative is the ad description the editor is opened with.
type Creative struct {
	ID           string `json:"id"`
	Platform     string `json:"platform"`
	Format       string `json:"format"`
	Headline     string `json:"headline"`
	Description  string `json:"description"`
	CallToAction string `json:"call_to_action"`
	ImageURL     string `json:"image_url"`
	Dimensions   string `json:"dimensions"` // "<width>x<height>"
}

// BrandSettings carries the brand colors and logo.
type BrandSettings struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	BrandName      string `json:"brandName"`
	LogoURL        string `json:"logoUrl,omitempty"`
}

// ── Defaults ──

// Default canvas dimensions used when a dimension string cannot be parsed.
const (
	DefaultWidth  = 1200
	DefaultHeight = 627
)

// MaxDimension is the largest accepted canvas side in pixels.
const MaxDimension = 16384

// DefaultCanvas returns the canvas settings of a freshly opened document.
func DefaultCanvas() Canvas {
	return Canvas{
		BackgroundColor: "#ffffff",
		ImageShape:      ShapeNone,
		Overlay: Overlay{
			Color:   "#000000",
			Opacity: 0.3,
		},
	}
}

// applyLayerDefaults sets sane fallbacks for style fields.
func applyLayerDefaults(l *Layer) {
	s := &l.Style
	if s.Opacity <= 0 {
		s.Opacity = 1
	}
	if s.Opacity > 1 {
		s.Opacity = 1
	}
	switch l.Type {
	case TypeText, TypeButton:
		if s.FontSize <= 0 {
			s.FontSize = 24
		}
		if s.Color == "" {
			s.Color = "#000000"
		}
		if s.TextAlign == "" {
			s.TextAlign = "left"
		}
	case TypeShape:
		if s.ShapeType == "" {
			s.ShapeType = ShapeRectangle
		}
		if s.BackgroundColor == "" {
			s.BackgroundColor = "#cccccc"
		}
	case TypeImage:
		if s.ImageClip == "" {
			s.ImageClip = ShapeNone
		}
	}
}

// ApplyDefaults normalizes style defaults on every layer of the document.
func (d *Document) ApplyDefaults() {
	if d.Width <= 0 || d.Height <= 0 || d.Width > MaxDimension || d.Height > MaxDimension {
		d.Width, d.Height = DefaultWidth, DefaultHeight
	}
	if d.Canvas.BackgroundColor == "" {
		d.Canvas.BackgroundColor = "#ffffff"
	}
	if d.Canvas.ImageShape == "" {
		d.Canvas.ImageShape = ShapeNone
	}
	for i := range d.Layers {
		applyLayerDefaults(&d.Layers[i])
	}
}
