// loader.go - Read creative/brand inputs and read/write .glayers (ZIP) bundles.
package layer

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Bundle entry names.
const (
	BundleDocument = "layers.json"
	BundleImage    = "creative.png"
)

// LoadCreative reads a creative JSON file.
func LoadCreative(path string) (*Creative, error) {
	var c Creative
	if err := readJSON(path, &c); err != nil {
		return nil, fmt.Errorf("load creative: %w", err)
	}
	return &c, nil
}

// LoadBrand reads a brand settings JSON file. Returns warnings for issues;
// a malformed file yields empty settings rather than an error.
func LoadBrand(path string) (*BrandSettings, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read brand: %w", err)
	}

	var b BrandSettings
	if err := json.Unmarshal(data, &b); err != nil {
		return &BrandSettings{}, []string{fmt.Sprintf("malformed brand settings: %v - using defaults", err)}, nil
	}
	return &b, nil, nil
}

// DecodeDocument parses a document JSON and applies style defaults.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	doc.ApplyDefaults()
	return &doc, nil
}

// WriteBundle writes the document and its flattened image as a ZIP bundle.
func WriteBundle(w io.Writer, doc Document, png []byte) error {
	zw := zip.NewWriter(w)

	dw, err := zw.Create(BundleDocument)
	if err != nil {
		return fmt.Errorf("create %s: %w", BundleDocument, err)
	}
	enc := json.NewEncoder(dw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	if len(png) > 0 {
		iw, err := zw.Create(BundleImage)
		if err != nil {
			return fmt.Errorf("create %s: %w", BundleImage, err)
		}
		if _, err := iw.Write(png); err != nil {
			return fmt.Errorf("write %s: %w", BundleImage, err)
		}
	}

	return zw.Close()
}

// LoadBundle opens a .glayers ZIP and returns the document and the
// flattened PNG (nil when the bundle carries none).
func LoadBundle(path string) (*Document, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return ReadBundle(data)
}

// ReadBundle parses an in-memory .glayers ZIP.
func ReadBundle(data []byte) (*Document, []byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid ZIP: %w", err)
	}

	var doc *Document
	var png []byte
	for _, f := range zr.File {
		switch f.Name {
		case BundleDocument:
			raw, err := readZipFile(f)
			if err != nil {
				return nil, nil, err
			}
			if doc, err = DecodeDocument(raw); err != nil {
				return nil, nil, err
			}
		case BundleImage:
			if png, err = readZipFile(f); err != nil {
				return nil, nil, err
			}
		}
	}

	if doc == nil {
		return nil, nil, fmt.Errorf("no %s found in archive", BundleDocument)
	}
	return doc, png, nil
}

// readZipFile reads a single zip entry into memory.
func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
