// parser.go - Creative dimension parsing and document initialization.
package layer

import (
	"regexp"
	"strconv"
)

var dimensionsRe = regexp.MustCompile(`(?i)(\d+)\s*[x*×]\s*(\d+)`)

// ParseDimensions reads a "<width>x<height>" string. The separator may be
// x, X, * or ×, with optional spaces. Anything unparseable, or larger than
// MaxDimension on either side, yields the 1200x627 default; ok reports
// whether the input was used.
func ParseDimensions(s string) (w, h int, ok bool) {
	m := dimensionsRe.FindStringSubmatch(s)
	if m == nil {
		return DefaultWidth, DefaultHeight, false
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil || w <= 0 || h <= 0 || w > MaxDimension || h > MaxDimension {
		return DefaultWidth, DefaultHeight, false
	}
	return w, h, true
}

// NewDocument builds the initial document for a creative:
//  1. a full-bleed background layer from the creative image,
//  2. the brand logo top-left (when a logo URL is set),
//  3. a call-to-action button near the bottom center (when set).
//
// The headline is not added; users add text layers themselves.
func NewDocument(c Creative, b BrandSettings) Document {
	w, h, _ := ParseDimensions(c.Dimensions)

	doc := Document{
		Width:  w,
		Height: h,
		Canvas: DefaultCanvas(),
	}

	doc.Layers = doc.Layers.Add(Layer{
		ID:       BackgroundID,
		Type:     TypeBackground,
		X:        0,
		Y:        0,
		Width:    100,
		Height:   100,
		ZIndex:   0,
		Visible:  true,
		ImageURL: c.ImageURL,
	})

	if b.LogoURL != "" {
		doc.Layers = doc.Layers.Add(Layer{
			ID:       LogoID,
			Type:     TypeImage,
			X:        5,
			Y:        5,
			Width:    20,
			Height:   20,
			ZIndex:   2,
			Visible:  true,
			ImageURL: b.LogoURL,
		})
	}

	if c.CallToAction != "" {
		primary := b.PrimaryColor
		if primary == "" {
			primary = "#3b82f6"
		}
		doc.Layers = doc.Layers.Add(Layer{
			ID:      ButtonID,
			Type:    TypeButton,
			X:       20,
			Y:       80,
			Width:   60,
			Height:  15,
			ZIndex:  4,
			Visible: true,
			Content: c.CallToAction,
			Style: Style{
				FontSize:        24,
				FontWeight:      "bold",
				Color:           "#ffffff",
				BackgroundColor: primary,
				BorderRadius:    8,
				TextAlign:       "center",
			},
		})
	}

	return doc
}
