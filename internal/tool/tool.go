// Package tool implements the drawing tools and the state machine that
// applies them to the canvas.
package tool

import (
	"fmt"
	"strings"
)

// Tool types
type Tool int

const (
	Pencil Tool = iota
	Eraser
	Fill
	Eyedropper
	Line
	Rectangle
	Circle

	numTools
)

var toolNames = [numTools]string{
	Pencil:     "pencil",
	Eraser:     "eraser",
	Fill:       "fill",
	Eyedropper: "eyedropper",
	Line:       "line",
	Rectangle:  "rectangle",
	Circle:     "circle",
}

// Single-letter labels, also used as keyboard shortcuts.
var toolKeys = [numTools]rune{
	Pencil:     'P',
	Eraser:     'E',
	Fill:       'F',
	Eyedropper: 'I',
	Line:       'L',
	Rectangle:  'R',
	Circle:     'C',
}

var toolAliases = map[string]Tool{
	"pen":    Pencil,
	"bucket": Fill,
	"picker": Eyedropper,
	"rect":   Rectangle,
}

func (t Tool) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return toolNames[t]
}

// Valid reports whether t is one of the defined tools.
func (t Tool) Valid() bool {
	return t >= 0 && t < numTools
}

// IsShape reports whether t draws through a preview session.
func (t Tool) IsShape() bool {
	switch t {
	case Line, Rectangle, Circle:
		return true
	}
	return false
}

// Key returns the tool's shortcut letter.
func (t Tool) Key() rune {
	if !t.Valid() {
		return '?'
	}
	return toolKeys[t]
}

// Tools lists every tool in toolbar order.
func Tools() []Tool {
	out := make([]Tool, numTools)
	for i := range out {
		out[i] = Tool(i)
	}
	return out
}

// ParseTool resolves a tool name, case-insensitively. A few short aliases
// ("pen", "bucket", "picker", "rect") are accepted as well.
func ParseTool(name string) (Tool, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range toolNames {
		if n == name {
			return Tool(i), nil
		}
	}
	if t, ok := toolAliases[name]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("unknown tool %q", name)
}

// ForKey returns the tool whose shortcut is r, ignoring case.
func ForKey(r rune) (Tool, bool) {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	for i, k := range toolKeys {
		if k == r {
			return Tool(i), true
		}
	}
	return 0, false
}

// State of the engine.
type State int

const (
	Idle State = iota
	DrawingShape
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case DrawingShape:
		return "drawing-shape"
	}
	return fmt.Sprintf("State(%d)", int(s))
}
