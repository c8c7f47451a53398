// surface.go - Raster surface with cross-origin taint tracking.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
)

// ErrTainted is returned when pixels are read back from a surface that has
// had cross-origin content drawn onto it.
var ErrTainted = errors.New("surface is tainted by cross-origin content")

// Surface is the drawing target of a render pass.
// Painting an opaque cross-origin image taints it permanently; a tainted
// surface can still be drawn to but not exported.
type Surface struct {
	dc      *gg.Context
	tainted bool
}

// NewSurface allocates a transparent surface of w x h pixels.
func NewSurface(w, h int) *Surface {
	return &Surface{dc: gg.NewContext(max(w, 1), max(h, 1))}
}

// Context exposes the underlying gg context.
func (s *Surface) Context() *gg.Context { return s.dc }

func (s *Surface) Width() int  { return s.dc.Width() }
func (s *Surface) Height() int { return s.dc.Height() }

// Exportable reports whether the pixels can be read back.
func (s *Surface) Exportable() bool { return !s.tainted }

// Taint marks the surface as holding cross-origin pixels.
func (s *Surface) Taint() { s.tainted = true }

// Fill paints the whole surface with c.
func (s *Surface) Fill(c color.Color) {
	s.dc.SetColor(c)
	s.dc.Clear()
}

// Image returns the pixels for display. It does not check the taint flag:
// showing a tainted surface on screen is allowed, reading it back is not.
func (s *Surface) Image() image.Image { return s.dc.Image() }

// EncodePNG writes the surface as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	if s.tainted {
		return ErrTainted
	}
	if err := s.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PNG returns the encoded surface.
func (s *Surface) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
