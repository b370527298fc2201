package tool

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/ha1tch/deluxepixel/internal/grid"
	"github.com/ha1tch/deluxepixel/internal/logging"
	"github.com/ha1tch/deluxepixel/internal/raster"
)

// ColorSource supplies the paint color and receives colors picked with the
// eyedropper.
type ColorSource interface {
	CurrentColor() color.RGBA
	SetColor(r, g, b uint8)
}

// Canvas is the grid the engine draws on. Checkpoint is called once per
// completed operation so the owner can record it.
type Canvas interface {
	Grid() *grid.Grid
	Checkpoint()
}

// ActionError reports a tool action that failed and was rolled back.
type ActionError struct {
	Tool Tool
	Op   string
	Err  error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Tool, e.Op, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// errSessionLost is returned when the canvas grid was replaced while a
// shape session was open.
var errSessionLost = errors.New("canvas replaced during shape session")

// Engine dispatches pointer events to the current tool.
//
// Freehand tools (pencil, eraser) paint straight onto the canvas and commit
// once per stroke, at release. Shape tools (line, rectangle, circle) keep a
// copy of the canvas taken at press; every drag restores that copy and
// redraws the shape, and release commits the result.
//
// Points are grid coordinates. Press and Drag ignore points outside the
// grid.
type Engine struct {
	canvas Canvas
	colors ColorSource

	current Tool
	state   State

	// shape session, set only while state == DrawingShape
	anchor  image.Point
	last    image.Point
	preview *grid.Grid

	// freehand stroke
	stroking bool
	changed  bool
}

// New returns an idle engine with the pencil selected.
func New(canvas Canvas, colors ColorSource) *Engine {
	return &Engine{
		canvas:  canvas,
		colors:  colors,
		current: Pencil,
	}
}

// Tool returns the selected tool.
func (e *Engine) Tool() Tool {
	return e.current
}

// State returns Idle or DrawingShape.
func (e *Engine) State() State {
	return e.state
}

// Anchor returns the press point of the open shape session.
func (e *Engine) Anchor() (image.Point, bool) {
	if e.state != DrawingShape {
		return image.Point{}, false
	}
	return e.anchor, true
}

// SetTool selects t. An open shape session is abandoned with the canvas
// restored; an open stroke is committed.
func (e *Engine) SetTool(t Tool) error {
	if !t.Valid() {
		return &ActionError{Tool: e.current, Op: "select", Err: fmt.Errorf("invalid tool %d", int(t))}
	}
	err := e.guard("select", func() error {
		e.finish()
		return nil
	})
	if e.current != t {
		logging.Logger().Debug("tool selected", "from", e.current, "to", t)
	}
	e.current = t
	return err
}

// Cancel closes any open session: a shape preview is discarded and the
// canvas restored, a freehand stroke is committed. It is called before
// the canvas is replaced by undo, redo, resize or load.
func (e *Engine) Cancel() error {
	return e.guard("cancel", func() error {
		e.finish()
		return nil
	})
}

// Press starts an action at p.
func (e *Engine) Press(p image.Point) error {
	return e.guard("press", func() error {
		g := e.canvas.Grid()
		if !g.In(p.X, p.Y) {
			return nil
		}
		// A press without the matching release closes the old session first.
		e.finish()

		switch e.current {
		case Pencil, Eraser:
			e.stroking = true
			e.changed = false
			e.paint(g, p)
		case Fill:
			c := e.colors.CurrentColor()
			n := raster.FloodFill(g, p, c)
			logging.Logger().Debug("flood fill", "x", p.X, "y", p.Y, "cells", n)
			if n > 0 {
				e.canvas.Checkpoint()
			}
		case Eyedropper:
			c := g.Cell(p.X, p.Y)
			if c.A == 0 {
				return nil
			}
			e.colors.SetColor(c.R, c.G, c.B)
		case Line, Rectangle, Circle:
			e.state = DrawingShape
			e.anchor = p
			e.last = p
			e.preview = g.Clone()
		}
		return nil
	})
}

// Drag continues the action at p.
func (e *Engine) Drag(p image.Point) error {
	return e.guard("drag", func() error {
		g := e.canvas.Grid()
		if !g.In(p.X, p.Y) {
			return nil
		}
		switch {
		case e.state == DrawingShape:
			e.last = p
			return e.redraw(g, p)
		case e.current == Pencil || e.current == Eraser:
			// Strokes entering the canvas from outside open here.
			if !e.stroking {
				e.stroking = true
				e.changed = false
			}
			e.paint(g, p)
		}
		return nil
	})
}

// Release ends the action. A shape released outside the grid is committed
// at the last point inside it.
func (e *Engine) Release(p image.Point) error {
	return e.guard("release", func() error {
		switch {
		case e.state == DrawingShape:
			g := e.canvas.Grid()
			if !g.In(p.X, p.Y) {
				p = e.last
			}
			if err := e.redraw(g, p); err != nil {
				return err
			}
			e.endSession()
			e.canvas.Checkpoint()
			logging.Logger().Debug("shape committed", "tool", e.current, "from", e.anchor, "to", p)
		case e.stroking:
			e.endStroke()
		}
		return nil
	})
}

// paint sets one cell for the freehand tools.
func (e *Engine) paint(g *grid.Grid, p image.Point) {
	c := grid.Transparent
	if e.current == Pencil {
		c = e.colors.CurrentColor()
	}
	if g.Cell(p.X, p.Y) != c {
		g.Set(p.X, p.Y, c)
		e.changed = true
	}
}

// redraw restores the canvas from the session copy and draws the shape
// from the anchor to p on top.
func (e *Engine) redraw(g *grid.Grid, p image.Point) error {
	if err := g.CopyFrom(e.preview); err != nil {
		return fmt.Errorf("%w: %w", errSessionLost, err)
	}
	var pts []image.Point
	switch e.current {
	case Line:
		pts = raster.Line(e.anchor, p)
	case Rectangle:
		pts = raster.Rect(e.anchor, p)
	case Circle:
		pts = raster.Circle(e.anchor, p)
	}
	raster.Paint(g, pts, e.colors.CurrentColor())
	return nil
}

// finish closes whatever is open: shapes are abandoned, strokes committed.
func (e *Engine) finish() {
	if e.state == DrawingShape {
		e.restore()
	}
	if e.stroking {
		e.endStroke()
	}
}

func (e *Engine) endStroke() {
	changed := e.changed
	e.stroking = false
	e.changed = false
	if changed {
		e.canvas.Checkpoint()
	}
}

// restore puts back the canvas content from before the session and closes
// it.
func (e *Engine) restore() {
	if e.preview != nil {
		// A size mismatch means the grid was replaced; nothing to restore.
		_ = e.canvas.Grid().CopyFrom(e.preview)
	}
	e.endSession()
}

func (e *Engine) endSession() {
	e.state = Idle
	e.anchor = image.Point{}
	e.last = image.Point{}
	e.preview = nil
}

// guard runs one action. A returned error or a panic rolls back any open
// shape session and comes back as *ActionError.
func (e *Engine) guard(op string, fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil && err == nil {
			return
		}
		cause := err
		if r != nil {
			if re, ok := r.(error); ok {
				cause = re
			} else {
				cause = fmt.Errorf("%v", r)
			}
		}
		e.abort()
		err = &ActionError{Tool: e.current, Op: op, Err: cause}
		logging.Logger().Warn("tool action failed", "tool", e.current, "op", op, "err", cause)
	}()
	return fn()
}

// abort returns the engine to Idle after a failure. Cells already painted
// by a stroke stay and are recorded.
func (e *Engine) abort() {
	if e.state == DrawingShape {
		e.restore()
	}
	if e.stroking {
		e.stroking = false
		changed := e.changed
		e.changed = false
		if changed {
			func() {
				defer func() { _ = recover() }()
				e.canvas.Checkpoint()
			}()
		}
	}
	e.endSession()
}
