package layer

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		in     string
		w, h   int
		parsed bool
	}{
		{"1200x627", 1200, 627, true},
		{"1200 x 627", 1200, 627, true},
		{"1200×627", 1200, 627, true},
		{"1080X1920", 1080, 1920, true},
		{"300*250", 300, 250, true},
		{"Square 1080 x 1080 (feed)", 1080, 1080, true},
		{"garbage", 1200, 627, false},
		{"", 1200, 627, false},
		{"0x500", 1200, 627, false},
		{"16384x16384", 16384, 16384, true},
		{"100000x100000", 1200, 627, false},
		{"1200x16385", 1200, 627, false},
		{"99999999999999999999x10", 1200, 627, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, ok := ParseDimensions(tt.in)
			if w != tt.w || h != tt.h || ok != tt.parsed {
				t.Errorf("ParseDimensions(%q) = %d, %d, %v; want %d, %d, %v", tt.in, w, h, ok, tt.w, tt.h, tt.parsed)
			}
		})
	}
}

func TestNewDocument(t *testing.T) {
	t.Run("no logo no cta", func(t *testing.T) {
		doc := NewDocument(Creative{ImageURL: "https://cdn.example.com/a.jpg", Dimensions: "garbage"}, BrandSettings{})
		if doc.Width != 1200 || doc.Height != 627 {
			t.Errorf("size = %dx%d, want default 1200x627", doc.Width, doc.Height)
		}
		if len(doc.Layers) != 1 {
			t.Fatalf("layers = %d, want background only", len(doc.Layers))
		}
		bg := doc.Layers[0]
		if bg.ID != BackgroundID || bg.Type != TypeBackground || bg.ZIndex != 0 {
			t.Errorf("background = %+v", bg)
		}
		if bg.X != 0 || bg.Y != 0 || bg.Width != 100 || bg.Height != 100 {
			t.Errorf("background not full-bleed: %+v", bg)
		}
		if bg.ImageURL != "https://cdn.example.com/a.jpg" {
			t.Errorf("background url = %q", bg.ImageURL)
		}
	})

	t.Run("logo and cta", func(t *testing.T) {
		doc := NewDocument(
			Creative{Headline: "Big Sale", CallToAction: "Shop now", Dimensions: "1080x1080"},
			BrandSettings{PrimaryColor: "#ff5500", LogoURL: "https://brand.example.com/logo.png"},
		)

		var buttons, texts int
		for _, l := range doc.Layers {
			switch l.Type {
			case TypeButton:
				buttons++
				if l.ZIndex != 4 {
					t.Errorf("button zIndex = %d, want 4", l.ZIndex)
				}
				if l.X != 20 || l.Y != 80 || l.Width != 60 || l.Height != 15 {
					t.Errorf("button geometry = %+v", l)
				}
				if l.Style.BackgroundColor != "#ff5500" || l.Style.Color != "#ffffff" {
					t.Errorf("button style = %+v", l.Style)
				}
				if l.Content != "Shop now" {
					t.Errorf("button content = %q", l.Content)
				}
			case TypeText:
				texts++
			}
		}
		if buttons != 1 {
			t.Errorf("buttons = %d, want 1", buttons)
		}
		if texts != 0 {
			t.Errorf("headline must not be auto-added, got %d text layers", texts)
		}

		logo, ok := doc.Layers.Find(LogoID)
		if !ok {
			t.Fatal("logo layer missing")
		}
		if logo.Type != TypeImage || logo.ZIndex != 2 || logo.X != 5 || logo.Y != 5 || logo.Width != 20 || logo.Height != 20 {
			t.Errorf("logo = %+v", logo)
		}
	})
}

func TestZOrderClamps(t *testing.T) {
	ls := Layers{
		{ID: BackgroundID, Type: TypeBackground, Width: 100, Height: 100, ZIndex: 0},
		{ID: "t", Type: TypeText, Width: 10, Height: 10, ZIndex: 1},
	}

	up := ls.BringForward(BackgroundID)
	if bg, _ := up.Find(BackgroundID); bg.ZIndex != 0 {
		t.Errorf("background zIndex after BringForward = %d, want 0", bg.ZIndex)
	}

	down := ls.SendBack("t")
	if txt, _ := down.Find("t"); txt.ZIndex != 1 {
		t.Errorf("text zIndex after SendBack = %d, want 1", txt.ZIndex)
	}

	raised := ls.BringForward("t").BringForward("t")
	if txt, _ := raised.Find("t"); txt.ZIndex != 3 {
		t.Errorf("text zIndex after two BringForward = %d, want 3", txt.ZIndex)
	}

	if txt, _ := ls.Find("t"); txt.ZIndex != 1 {
		t.Errorf("receiver mutated: zIndex = %d", txt.ZIndex)
	}
}

func TestRemoveKeepsBackground(t *testing.T) {
	doc := NewDocument(Creative{CallToAction: "Go"}, BrandSettings{})
	ls := doc.Layers.Remove(BackgroundID)
	if _, ok := ls.Find(BackgroundID); !ok {
		t.Error("background was removed")
	}
	ls = ls.Remove(ButtonID)
	if _, ok := ls.Find(ButtonID); ok {
		t.Error("button not removed")
	}
	if len(doc.Layers) != 2 {
		t.Errorf("receiver mutated: %d layers", len(doc.Layers))
	}
}

func TestSortedIsStable(t *testing.T) {
	ls := Layers{
		{ID: "a", ZIndex: 3},
		{ID: "b", ZIndex: 1},
		{ID: "c", ZIndex: 3},
		{ID: BackgroundID, ZIndex: 0},
	}
	var got []string
	for _, l := range ls.Sorted() {
		got = append(got, l.ID)
	}
	if strings.Join(got, ",") != "background,b,a,c" {
		t.Errorf("paint order = %v", got)
	}
}

func TestAddAndUpdate(t *testing.T) {
	ls := NewDocument(Creative{}, BrandSettings{}).Layers
	ls = ls.Add(Layer{Type: TypeText, Content: "Hi", Width: 50, Height: 10, Visible: true})
	added := ls[len(ls)-1]
	if !strings.HasPrefix(added.ID, "text-") {
		t.Errorf("generated id = %q", added.ID)
	}
	if added.ZIndex != 1 {
		t.Errorf("zIndex = %d, want 1", added.ZIndex)
	}
	if added.Style.Opacity != 1 || added.Style.FontSize != 24 {
		t.Errorf("defaults not applied: %+v", added.Style)
	}

	content := "Hello"
	ls = ls.Update(added.ID, Patch{Content: &content, Style: &StylePatch{Color: "#ff0000", FontSize: 40}})
	got, _ := ls.Find(added.ID)
	if got.Content != "Hello" || got.Style.Color != "#ff0000" || got.Style.FontSize != 40 {
		t.Errorf("patched = %+v", got)
	}

	ls = ls.SetVisible(added.ID, false)
	if got, _ := ls.Find(added.ID); got.Visible {
		t.Error("still visible")
	}

	dup := ls.Duplicate(added.ID)
	if len(dup) != len(ls)+1 {
		t.Fatalf("duplicate length = %d", len(dup))
	}
	copyL := dup[len(dup)-1]
	if copyL.ID == added.ID || copyL.Content != "Hello" || copyL.ZIndex != 2 {
		t.Errorf("duplicate = %+v", copyL)
	}
}

func TestValidate(t *testing.T) {
	doc := NewDocument(Creative{}, BrandSettings{LogoURL: "x.png"})
	if w := Validate(doc); len(w) != 0 {
		t.Errorf("fresh document has warnings: %v", w)
	}

	doc.Layers = append(doc.Layers, Layer{ID: LogoID, Type: TypeImage, Width: 0, Height: 10})
	w := Validate(doc)
	if len(w) < 3 {
		t.Errorf("want duplicate id, size and url warnings, got %v", w)
	}
}

func TestBundleRoundTrip(t *testing.T) {
	doc := NewDocument(Creative{CallToAction: "Buy", Dimensions: "600x300"}, BrandSettings{PrimaryColor: "#112233"})
	doc.Canvas.Overlay.Enabled = true

	var buf bytes.Buffer
	png := []byte("\x89PNG fake")
	if err := WriteBundle(&buf, doc, png); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, gotPNG, err := ReadBundle(buf.Bytes())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(gotPNG, png) {
		t.Errorf("png = %q", gotPNG)
	}
	if got.Width != 600 || got.Height != 300 || !got.Canvas.Overlay.Enabled {
		t.Errorf("document = %+v", got)
	}
	if len(got.Layers) != len(doc.Layers) {
		t.Fatalf("layers = %d, want %d", len(got.Layers), len(doc.Layers))
	}
	for i := range doc.Layers {
		if got.Layers[i] != doc.Layers[i] {
			t.Errorf("layer %d = %+v, want %+v", i, got.Layers[i], doc.Layers[i])
		}
	}

	if _, _, err := ReadBundle([]byte("not a zip")); err == nil {
		t.Error("expected error for invalid archive")
	}
}

func TestDecodeDocumentOversized(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"width": 100000, "height": 100000, "layers": []}`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Width != DefaultWidth || doc.Height != DefaultHeight {
		t.Errorf("size = %dx%d, want default", doc.Width, doc.Height)
	}
}
