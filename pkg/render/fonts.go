// fonts.go - Font management with custom TTF support and embedded Go fonts.
// Families map onto the Go font set (sans, mono, smallcaps) in regular,
// medium and bold weights. A custom font, when configured, replaces the
// regular sans face; loading failures fall back to the embedded fonts.
package render

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/opentype"
)

type faceKey struct {
	family string
	bold   int // 0 regular, 1 medium, 2 bold
	size   float64
}

// FontManager parses fonts once and caches faces per family, weight and size.
// Faces are not safe for concurrent use; a FontManager belongs to one session.
type FontManager struct {
	fonts map[string]*opentype.Font // "sans/0", "mono/2", ...
	faces map[faceKey]font.Face
}

// NewFontManager creates a font manager. If customPath is empty or invalid,
// the embedded Go fonts are used.
func NewFontManager(customPath string) (*FontManager, error) {
	fm := &FontManager{
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}

	embedded := map[string][]byte{
		"sans/0":      goregular.TTF,
		"sans/1":      gomedium.TTF,
		"sans/2":      gobold.TTF,
		"mono/0":      gomono.TTF,
		"mono/2":      gomonobold.TTF,
		"smallcaps/0": gosmallcaps.TTF,
	}
	for key, data := range embedded {
		parsed, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font %s: %w", key, err)
		}
		fm.fonts[key] = parsed
	}

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err == nil {
			var parsed *opentype.Font
			if parsed, err = opentype.Parse(data); err == nil {
				fm.fonts["sans/0"] = parsed
			}
		}
		if err != nil {
			Logger().Warn("custom font unavailable, using default", "path", customPath, "err", err)
		}
	}

	return fm, nil
}

// Face returns a font.Face for a CSS-like family and weight at size pixels.
func (fm *FontManager) Face(family, weight string, size float64) (font.Face, error) {
	if size <= 0 {
		size = 24
	}
	key := faceKey{family: familyOf(family), bold: weightOf(weight), size: size}
	if face, ok := fm.faces[key]; ok {
		return face, nil
	}

	parsed := fm.lookup(key.family, key.bold)
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72, // 1pt == 1px
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	fm.faces[key] = face
	return face, nil
}

// lookup walks down the weights until a parsed font exists, then falls back to sans.
func (fm *FontManager) lookup(family string, bold int) *opentype.Font {
	for w := bold; w >= 0; w-- {
		if f, ok := fm.fonts[family+"/"+strconv.Itoa(w)]; ok {
			return f
		}
	}
	if f, ok := fm.fonts["sans/"+strconv.Itoa(bold)]; ok {
		return f
	}
	return fm.fonts["sans/0"]
}

// Close releases cached faces.
func (fm *FontManager) Close() {
	for k, f := range fm.faces {
		f.Close()
		delete(fm.faces, k)
	}
}

func familyOf(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "mono"), strings.Contains(f, "courier"), strings.Contains(f, "code"):
		return "mono"
	case strings.Contains(f, "small-caps"), strings.Contains(f, "smallcaps"):
		return "smallcaps"
	default:
		return "sans"
	}
}

func weightOf(weight string) int {
	w := strings.ToLower(strings.TrimSpace(weight))
	switch w {
	case "bold", "bolder":
		return 2
	case "medium", "semibold":
		return 1
	}
	if n, err := strconv.Atoi(w); err == nil {
		switch {
		case n >= 600:
			return 2
		case n >= 500:
			return 1
		}
	}
	return 0
}
