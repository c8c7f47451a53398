package history

import (
	"reflect"
	"testing"

	"github.com/xob0t/GoLayers/pkg/layer"
)

func docAt(x float64) layer.Layers {
	return layer.Layers{
		{ID: layer.BackgroundID, Type: layer.TypeBackground, Width: 100, Height: 100},
		{ID: "t", Type: layer.TypeText, X: x, Width: 10, Height: 10, ZIndex: 1},
	}
}

func TestUndoRedoRestoresExactState(t *testing.T) {
	states := []layer.Layers{docAt(0)}
	m := New(states[0], 0)
	for k := 1; k <= 10; k++ {
		s := docAt(float64(k))
		states = append(states, s)
		m.Save(s)
	}

	for k := 10; k >= 1; k-- {
		got, ok := m.Undo()
		if !ok {
			t.Fatalf("undo %d failed", k)
		}
		if !reflect.DeepEqual(got, states[k-1]) {
			t.Fatalf("undo after edit %d = %+v, want %+v", k, got, states[k-1])
		}
	}
	if _, ok := m.Undo(); ok {
		t.Error("undo at first entry should be a no-op")
	}

	for k := 1; k <= 10; k++ {
		got, ok := m.Redo()
		if !ok || !reflect.DeepEqual(got, states[k]) {
			t.Fatalf("redo %d = %+v, %v", k, got, ok)
		}
	}
	if _, ok := m.Redo(); ok {
		t.Error("redo at last entry should be a no-op")
	}
}

func TestSaveTruncatesRedoTail(t *testing.T) {
	m := New(docAt(0), 0)
	m.Save(docAt(1))
	m.Save(docAt(2))
	m.Undo()
	m.Undo()
	m.Save(docAt(9))

	if m.Len() != 2 || m.CanRedo() {
		t.Errorf("len = %d, canRedo = %v", m.Len(), m.CanRedo())
	}
	got, _ := m.Undo()
	if !reflect.DeepEqual(got, docAt(0)) {
		t.Errorf("undo = %+v", got)
	}
}

func TestBoundedAtLimit(t *testing.T) {
	m := New(docAt(0), 0)
	for k := 1; k <= 60; k++ {
		m.Save(docAt(float64(k)))
	}
	if m.Len() != DefaultLimit {
		t.Fatalf("len = %d, want %d", m.Len(), DefaultLimit)
	}
	if m.Cursor() != DefaultLimit-1 {
		t.Fatalf("cursor = %d", m.Cursor())
	}

	changed := 0
	for i := 0; i < 60; i++ {
		if _, ok := m.Undo(); ok {
			changed++
		}
	}
	if changed != DefaultLimit-1 {
		t.Errorf("undo changed state %d times, want %d", changed, DefaultLimit-1)
	}
	// Oldest surviving entry is the state after edit 11.
	if got := m.Current(); !reflect.DeepEqual(got, docAt(11)) {
		t.Errorf("oldest entry = %+v", got)
	}
}

func TestSnapshotsAreDeepCopies(t *testing.T) {
	s := docAt(1)
	m := New(docAt(0), 0)
	m.Save(s)
	s[1].X = 42

	if got := m.Current(); got[1].X != 1 {
		t.Errorf("saved snapshot aliased caller slice: x = %v", got[1].X)
	}
	cur := m.Current()
	cur[1].X = 7
	if got := m.Current(); got[1].X != 1 {
		t.Errorf("Current aliased log entry: x = %v", got[1].X)
	}
}
