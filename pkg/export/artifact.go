// artifact.go - Export results and file writers.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xob0t/GoLayers/pkg/fetch"
	"github.com/xob0t/GoLayers/pkg/layer"
)

// Artifact is the output of an export: the final layers and the flattened image.
type Artifact struct {
	Layers   layer.Layers
	PNG      []byte
	Fallback bool // produced by the taint fallback path
}

// DataURL returns the PNG as a data: URL.
func (a *Artifact) DataURL() string {
	return fetch.EncodeDataURL("image/png", a.PNG)
}

// Write stores an artifact at output. The format is inferred from the extension:
//   - ".png" → the PNG as-is
//   - ".jpg", ".jpeg" → re-encoded JPEG (quality 92)
//   - ".glayers" → bundle of the document and PNG
func Write(output string, doc layer.Document, a *Artifact) error {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := WriteTo(f, filepath.Ext(output), doc, a); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTo writes an artifact in the format named by ext.
func WriteTo(w io.Writer, ext string, doc layer.Document, a *Artifact) error {
	switch strings.ToLower(ext) {
	case ".png":
		_, err := w.Write(a.PNG)
		return err
	case ".jpg", ".jpeg":
		img, err := png.Decode(bytes.NewReader(a.PNG))
		if err != nil {
			return fmt.Errorf("decode png: %w", err)
		}
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: 92}); err != nil {
			return fmt.Errorf("encode jpeg: %w", err)
		}
		return nil
	case ".glayers":
		doc.Layers = a.Layers
		return layer.WriteBundle(w, doc, a.PNG)
	default:
		return fmt.Errorf("unsupported format %q: use .png, .jpg or .glayers", ext)
	}
}

func encodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return fetch.EncodeDataURL("image/png", buf.Bytes()), nil
}
