// Package history keeps a bounded, linear stack of grid snapshots for
// undo and redo.
package history

import (
	"github.com/ha1tch/deluxepixel/internal/grid"
	"github.com/ha1tch/deluxepixel/internal/logging"
)

// DefaultDepth is the number of snapshots kept when none is configured.
const DefaultDepth = 200

// History is a linear snapshot stack with a cursor. Pushing after an undo
// discards the redo branch; there is no tree.
type History struct {
	snapshots []*grid.Grid
	cursor    int
	maxDepth  int
}

// New creates an empty history holding at most maxDepth snapshots.
// A maxDepth below 1 selects DefaultDepth.
func New(maxDepth int) *History {
	if maxDepth < 1 {
		maxDepth = DefaultDepth
	}
	return &History{cursor: -1, maxDepth: maxDepth}
}

// Push stores a copy of g as the newest state.
func (h *History) Push(g *grid.Grid) {
	// Drop the redo branch.
	if h.cursor < len(h.snapshots)-1 {
		for i := h.cursor + 1; i < len(h.snapshots); i++ {
			h.snapshots[i] = nil
		}
		h.snapshots = h.snapshots[:h.cursor+1]
	}

	h.snapshots = append(h.snapshots, g.Clone())
	h.cursor = len(h.snapshots) - 1

	if len(h.snapshots) > h.maxDepth {
		h.snapshots[0] = nil
		h.snapshots = h.snapshots[1:]
		h.cursor--
	}
	logging.Logger().Debug("history push", "len", len(h.snapshots), "cursor", h.cursor)
}

// Undo steps back one state and returns a copy of it. ok is false when
// already at the oldest state.
func (h *History) Undo() (g *grid.Grid, ok bool) {
	if h.cursor <= 0 {
		return nil, false
	}
	h.cursor--
	return h.snapshots[h.cursor].Clone(), true
}

// Redo steps forward one state and returns a copy of it. ok is false when
// there is nothing to redo.
func (h *History) Redo() (g *grid.Grid, ok bool) {
	if h.cursor >= len(h.snapshots)-1 {
		return nil, false
	}
	h.cursor++
	return h.snapshots[h.cursor].Clone(), true
}

func (h *History) CanUndo() bool {
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	return h.cursor < len(h.snapshots)-1
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Cursor returns the index of the current state, or -1 when empty.
func (h *History) Cursor() int {
	return h.cursor
}
