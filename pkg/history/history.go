// Package history keeps a bounded undo/redo log of layer snapshots.
package history

import "github.com/xob0t/GoLayers/pkg/layer"

// DefaultLimit is the number of snapshots kept when no limit is configured.
const DefaultLimit = 50

// Manager is an append-only log of layer snapshots with a cursor.
// Entries are deep copies; callers may keep mutating what they saved.
type Manager struct {
	entries []layer.Layers
	cursor  int
	limit   int
}

// New creates a manager holding initial as its only entry.
// A limit <= 0 uses DefaultLimit.
func New(initial layer.Layers, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	m := &Manager{limit: limit}
	m.Reset(initial)
	return m
}

// Reset discards the log and starts over from snapshot.
func (m *Manager) Reset(snapshot layer.Layers) {
	m.entries = []layer.Layers{snapshot.Clone()}
	m.cursor = 0
}

// Save drops any redo tail past the cursor, appends snapshot and advances.
// When the log exceeds the limit the oldest entry is dropped and the cursor
// stays on the newest entry.
func (m *Manager) Save(snapshot layer.Layers) {
	m.entries = append(m.entries[:m.cursor+1], snapshot.Clone())
	if len(m.entries) > m.limit {
		m.entries[0] = nil
		m.entries = m.entries[1:]
	}
	m.cursor = len(m.entries) - 1
}

// Undo moves the cursor back and returns the snapshot there.
// At the first entry it returns false.
func (m *Manager) Undo() (layer.Layers, bool) {
	if m.cursor <= 0 {
		return nil, false
	}
	m.cursor--
	return m.entries[m.cursor].Clone(), true
}

// Redo moves the cursor forward and returns the snapshot there.
// At the last entry it returns false.
func (m *Manager) Redo() (layer.Layers, bool) {
	if m.cursor >= len(m.entries)-1 {
		return nil, false
	}
	m.cursor++
	return m.entries[m.cursor].Clone(), true
}

// Current returns the snapshot at the cursor.
func (m *Manager) Current() layer.Layers {
	return m.entries[m.cursor].Clone()
}

func (m *Manager) CanUndo() bool { return m.cursor > 0 }
func (m *Manager) CanRedo() bool { return m.cursor < len(m.entries)-1 }
func (m *Manager) Len() int { return len(m.entries) }
func (m *Manager) Cursor() int { return m.cursor }
