package interact

import (
	"math"
	"testing"

	"github.com/xob0t/GoLayers/pkg/layer"
)

// newStore builds a 1000x1000 canvas, so 1% == 10px.
func newStore(extra ...layer.Layer) *layer.Store {
	doc := layer.Document{
		Width:  1000,
		Height: 1000,
		Canvas: layer.DefaultCanvas(),
		Layers: layer.Layers{{ID: layer.BackgroundID, Type: layer.TypeBackground, Width: 100, Height: 100, Visible: true}},
	}
	doc.Layers = append(doc.Layers, extra...)
	return layer.NewStore(doc)
}

func box(id string, x, y, w, h float64, z int) layer.Layer {
	return layer.Layer{ID: id, Type: layer.TypeShape, X: x, Y: y, Width: w, Height: h, ZIndex: z, Visible: true}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestHitTestTopmostWins(t *testing.T) {
	s := newStore(box("low", 10, 10, 50, 50, 1), box("high", 30, 30, 50, 50, 3), box("tie", 30, 30, 10, 10, 3))
	c := New(Config{})

	c.PointerDown(s, Point{350, 350}) // inside all three
	if c.Selected() != "tie" {
		t.Errorf("selected = %q, want later-inserted tie winner", c.Selected())
	}
	c.PointerUp()

	c.PointerDown(s, Point{200, 200}) // only low + background
	if c.Selected() != "low" {
		t.Errorf("selected = %q, want low", c.Selected())
	}
	c.PointerUp()

	c.PointerDown(s, Point{900, 900}) // background only
	if c.Selected() != layer.BackgroundID {
		t.Errorf("selected = %q, want background", c.Selected())
	}
}

func TestInvisibleLayersIgnored(t *testing.T) {
	hidden := box("hidden", 0, 0, 100, 100, 9)
	hidden.Visible = false
	s := newStore(hidden)
	if id := LayerAt(s.Layers(), 50, 50); id != layer.BackgroundID {
		t.Errorf("LayerAt = %q", id)
	}
}

func TestEmptyClickClearsSelection(t *testing.T) {
	s := newStore(box("a", 10, 10, 20, 20, 1))
	s.Update(layer.BackgroundID, layer.Geometry(0, 0, 50, 50))
	c := New(Config{})

	c.PointerDown(s, Point{150, 150})
	c.PointerUp()
	if c.Selected() != "a" {
		t.Fatalf("selected = %q", c.Selected())
	}
	c.PointerDown(s, Point{800, 800})
	if c.Selected() != "" || c.State() != Idle {
		t.Errorf("selected = %q state = %v after empty click", c.Selected(), c.State())
	}
}

func TestDragClampsToBounds(t *testing.T) {
	s := newStore(box("a", 10, 10, 20, 20, 1))
	c := New(Config{})

	c.PointerDown(s, Point{150, 150}) // offset 5%,5%
	if c.State() != Dragging {
		t.Fatalf("state = %v", c.State())
	}
	c.PointerMove(s, Point{450, 250})
	if l, _ := s.Layer("a"); !near(l.X, 40) || !near(l.Y, 20) {
		t.Errorf("dragged to %v,%v want 40,20", l.X, l.Y)
	}

	c.PointerMove(s, Point{-5000, 9000})
	l, _ := s.Layer("a")
	if l.X != -50 || l.Y != 150 {
		t.Errorf("clamped to %v,%v want -50,150", l.X, l.Y)
	}
	if l.Width != 20 || l.Height != 20 {
		t.Errorf("drag changed size: %vx%v", l.Width, l.Height)
	}
	if !c.PointerUp() {
		t.Error("drag with movement should commit")
	}
	if c.State() != Idle {
		t.Errorf("state after up = %v", c.State())
	}
}

func TestConfigurableBounds(t *testing.T) {
	s := newStore(box("a", 10, 10, 20, 20, 1))
	c := New(Config{Bounds: Bounds{Min: 0, Max: 100}})
	c.PointerDown(s, Point{150, 150})
	c.PointerMove(s, Point{-1000, -1000})
	if l, _ := s.Layer("a"); l.X != 0 || l.Y != 0 {
		t.Errorf("clamped to %v,%v want 0,0", l.X, l.Y)
	}
}

func TestClickWithoutMoveDoesNotCommit(t *testing.T) {
	s := newStore(box("a", 10, 10, 20, 20, 1))
	c := New(Config{})
	c.PointerDown(s, Point{150, 150})
	if c.PointerUp() {
		t.Error("click without movement should not commit")
	}
}

func TestMoveWhileIdleIsNoop(t *testing.T) {
	s := newStore(box("a", 10, 10, 20, 20, 1))
	c := New(Config{})
	if c.PointerMove(s, Point{500, 500}) {
		t.Error("idle move changed the store")
	}
	if c.PointerUp() {
		t.Error("idle up committed")
	}
}

func TestResizeKeepsOppositeCornerFixed(t *testing.T) {
	tests := []struct {
		name string
		grab Point // handle position in px for box (20,20,40,40)
		to   Point
		want [4]float64 // x, y, w, h
	}{
		{"se", Point{600, 600}, Point{700, 650}, [4]float64{20, 20, 50, 45}},
		{"sw", Point{200, 600}, Point{100, 650}, [4]float64{10, 20, 50, 45}},
		{"ne", Point{600, 200}, Point{700, 100}, [4]float64{20, 10, 50, 50}},
		{"nw", Point{200, 200}, Point{300, 300}, [4]float64{30, 30, 30, 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(box("a", 20, 20, 40, 40, 1))
			c := New(Config{})
			c.Select("a")
			c.PointerDown(s, tt.grab)
			if c.State() != Resizing {
				t.Fatalf("state = %v, want resizing", c.State())
			}
			c.PointerMove(s, tt.to)
			l, _ := s.Layer("a")
			got := [4]float64{l.X, l.Y, l.Width, l.Height}
			for i := range got {
				if !near(got[i], tt.want[i]) {
					t.Fatalf("geometry = %v, want %v", got, tt.want)
				}
			}
			if !c.PointerUp() {
				t.Error("resize should commit")
			}
		})
	}
}

func TestResizeMinimumSize(t *testing.T) {
	s := newStore(box("a", 20, 20, 40, 40, 1))
	c := New(Config{})
	c.Select("a")

	c.PointerDown(s, Point{600, 600})
	c.PointerMove(s, Point{-900, -900})
	l, _ := s.Layer("a")
	if l.Width < 5 || l.Height < 5 {
		t.Errorf("size %vx%v below minimum", l.Width, l.Height)
	}
	if l.X != 20 || l.Y != 20 {
		t.Errorf("origin moved to %v,%v", l.X, l.Y)
	}
	c.PointerUp()

	// Top-left handle: min size keeps the bottom-right corner fixed.
	c.PointerDown(s, Point{200, 200})
	c.PointerMove(s, Point{2000, 2000})
	l, _ = s.Layer("a")
	if !near(l.Width, 5) || !near(l.Height, 5) || !near(l.X+l.Width, 25) || !near(l.Y+l.Height, 25) {
		t.Errorf("nw min resize = %+v", l)
	}
}

func TestResizeFarEdgeClamp(t *testing.T) {
	s := newStore(box("a", 20, 20, 40, 40, 1))
	c := New(Config{})
	c.Select("a")
	c.PointerDown(s, Point{600, 600})
	c.PointerMove(s, Point{5000, 5000})
	l, _ := s.Layer("a")
	if !near(l.X+l.Width, 150) || !near(l.Y+l.Height, 150) {
		t.Errorf("far edge = %v,%v want 150,150", l.X+l.Width, l.Y+l.Height)
	}
}

func TestResizeAspectLock(t *testing.T) {
	s := newStore(box("a", 10, 10, 40, 20, 1))
	cv := s.Canvas()
	cv.LockAspect = true
	s.SetCanvas(cv)
	c := New(Config{})
	c.Select("a")

	c.PointerDown(s, Point{500, 300}) // se corner
	c.PointerMove(s, Point{700, 310}) // width-dominant: +20%
	l, _ := s.Layer("a")
	if !near(l.Width, 60) || !near(l.Height, 30) {
		t.Errorf("locked resize = %vx%v, want 60x30", l.Width, l.Height)
	}

	c.PointerMove(s, Point{510, 500}) // height-dominant: +20%
	l, _ = s.Layer("a")
	if !near(l.Height, 40) || !near(l.Width, 80) {
		t.Errorf("locked resize = %vx%v, want 80x40", l.Width, l.Height)
	}

	c.PointerMove(s, Point{-3000, 300}) // shrink far below minimum
	l, _ = s.Layer("a")
	if l.Width < 5 || l.Height < 5 || !near(l.Width/l.Height, 2) {
		t.Errorf("locked min resize = %vx%v", l.Width, l.Height)
	}
}

func TestHandlesTestedBeforeBodies(t *testing.T) {
	// "top" covers the selected layer's corner; the handle still wins.
	s := newStore(box("a", 20, 20, 40, 40, 1), box("top", 50, 50, 30, 30, 5))
	c := New(Config{})
	c.Select("a")
	c.PointerDown(s, Point{598, 598})
	if c.State() != Resizing || c.ActiveHandle() != HandleSE || c.Selected() != "a" {
		t.Errorf("state = %v handle = %v selected = %q", c.State(), c.ActiveHandle(), c.Selected())
	}
}

func TestBackgroundHasNoHandles(t *testing.T) {
	s := newStore()
	c := New(Config{})
	c.Select(layer.BackgroundID)
	c.PointerDown(s, Point{0, 0})
	if c.State() != Dragging {
		t.Errorf("state = %v, want dragging (no background handles)", c.State())
	}
}

func TestMinimumHoldsAfterAnyGesture(t *testing.T) {
	s := newStore(box("a", 40, 40, 10, 10, 1))
	c := New(Config{})
	c.Select("a")
	moves := []Point{{0, 0}, {1000, 1000}, {-500, 2000}, {2000, -500}, {450, 450}}
	for i := range Handles {
		for _, to := range moves {
			l, _ := s.Layer("a")
			c.PointerDown(s, Corners(l, 1000, 1000)[i])
			if c.State() != Resizing {
				t.Fatalf("handle %d not grabbed", i)
			}
			c.PointerMove(s, to)
			c.PointerUp()
			l, _ = s.Layer("a")
			if l.Width < 5 || l.Height < 5 {
				t.Fatalf("size %vx%v below minimum", l.Width, l.Height)
			}
		}
	}
}

func TestConstrain(t *testing.T) {
	c := New(Config{})
	tests := []struct {
		name       string
		in         layer.Layer
		x, y, w, h float64
	}{
		{"inside", box("a", 10, 20, 30, 40, 1), 10, 20, 30, 40},
		{"huge", box("a", 0, 0, 1e9, 2000, 1), 0, 0, 150, 150},
		{"far origin", box("a", 500, -900, 10, 10, 1), 150, -50, 5, 10},
		{"tiny", box("a", 10, 10, 0.1, 0.1, 1), 10, 10, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Constrain(tt.in)
			if !near(got.X, tt.x) || !near(got.Y, tt.y) || !near(got.Width, tt.w) || !near(got.Height, tt.h) {
				t.Errorf("got %v,%v %vx%v want %v,%v %vx%v", got.X, got.Y, got.Width, got.Height, tt.x, tt.y, tt.w, tt.h)
			}
		})
	}
}

func TestConstrainFollowsConfig(t *testing.T) {
	c := New(Config{Bounds: Bounds{Min: 0, Max: 100}, MinSize: 2})
	got := c.Constrain(box("a", 90, 95, 50, 1, 1))
	if !near(got.Width, 10) || !near(got.Height, 5) {
		t.Errorf("size = %vx%v, want 10x5", got.Width, got.Height)
	}
}
