// validator.go - Check document invariants.
package layer

import "fmt"

// Validate checks the document invariants. Returns warnings (never fatal
// errors); the editor keeps working on a document that has them.
func Validate(doc Document) []string {
	var warnings []string

	backgrounds := 0
	seen := make(map[string]struct{}, len(doc.Layers))
	for _, l := range doc.Layers {
		if _, dup := seen[l.ID]; dup {
			warnings = append(warnings, fmt.Sprintf("duplicate layer id %q", l.ID))
		}
		seen[l.ID] = struct{}{}

		if l.Type == TypeBackground {
			backgrounds++
			if l.ID != BackgroundID || l.ZIndex != 0 {
				warnings = append(warnings, fmt.Sprintf("background layer %q must have id %q and zIndex 0", l.ID, BackgroundID))
			}
		}
		if l.Width <= 0 || l.Height <= 0 {
			warnings = append(warnings, fmt.Sprintf("layer %q has non-positive size %gx%g", l.ID, l.Width, l.Height))
		}
		if l.Type == TypeImage && l.ImageURL == "" {
			warnings = append(warnings, fmt.Sprintf("image layer %q has no imageUrl", l.ID))
		}
		switch l.Type {
		case TypeBackground, TypeText, TypeButton, TypeImage, TypeShape:
		default:
			warnings = append(warnings, fmt.Sprintf("layer %q has unknown type %q", l.ID, l.Type))
		}
	}

	if backgrounds != 1 {
		warnings = append(warnings, fmt.Sprintf("document has %d background layers, want exactly 1", backgrounds))
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		warnings = append(warnings, fmt.Sprintf("canvas has non-positive size %dx%d", doc.Width, doc.Height))
	}

	return warnings
}

// FormatLayers returns a human-readable table of the document's layers in paint order.
func FormatLayers(doc Document) string {
	s := fmt.Sprintf("Canvas: %dx%d  background %s", doc.Width, doc.Height, doc.Canvas.BackgroundColor)
	if doc.Canvas.Overlay.Enabled {
		s += fmt.Sprintf("  overlay %s@%.2f", doc.Canvas.Overlay.Color, doc.Canvas.Overlay.Opacity)
	}
	s += "\n\nLayers:\n"
	for _, l := range doc.Layers.Sorted() {
		vis := " "
		if !l.Visible {
			vis = "h"
		}
		s += fmt.Sprintf("  %s z=%-3d %-10s %-20s x=%6.1f y=%6.1f w=%6.1f h=%6.1f", vis, l.ZIndex, l.Type, l.ID, l.X, l.Y, l.Width, l.Height)
		switch {
		case l.Content != "":
			s += fmt.Sprintf("  %q", l.Content)
		case l.ImageURL != "":
			s += "  " + shorten(l.ImageURL, 48)
		}
		s += "\n"
	}
	return s
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
