// Package editor ties the canvas, the view, the tools and the undo history
// together behind the operations the front end calls once per input event.
package editor

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ha1tch/deluxepixel/internal/config"
	"github.com/ha1tch/deluxepixel/internal/grid"
	"github.com/ha1tch/deluxepixel/internal/history"
	"github.com/ha1tch/deluxepixel/internal/logging"
	"github.com/ha1tch/deluxepixel/internal/palette"
	"github.com/ha1tch/deluxepixel/internal/project"
	"github.com/ha1tch/deluxepixel/internal/repeat"
	"github.com/ha1tch/deluxepixel/internal/tool"
	"github.com/ha1tch/deluxepixel/internal/viewport"
)

// EventType identifies editor events.
type EventType int

const (
	// EventGridReplaced fires with the new *grid.Grid after undo, redo,
	// resize or load.
	EventGridReplaced EventType = iota
	// EventModified fires with the new modified flag.
	EventModified
	// EventToolChanged fires with the selected tool.Tool.
	EventToolChanged
	// EventColorPicked fires with the color.RGBA taken by the eyedropper.
	EventColorPicked
	// EventSaved fires with the path written.
	EventSaved
)

// Listener is called when an event occurs.
type Listener func(data any)

// Options configure a new editor.
type Options struct {
	Size         int
	Zoom         float64
	HistoryDepth int
	Swatches     []color.RGBA
	Tool         tool.Tool
	ShowGrid     bool
	SaveDir      string
}

// DefaultOptions matches config.Default.
func DefaultOptions() Options {
	return Options{
		Size:         config.DefaultCanvasSize,
		Zoom:         viewport.DefaultZoom,
		HistoryDepth: history.DefaultDepth,
		Tool:         tool.Pencil,
		ShowGrid:     true,
		SaveDir:      ".",
	}
}

// OptionsFrom builds editor options from a validated config.
func OptionsFrom(cfg *config.Config) (Options, error) {
	swatches, err := cfg.Swatches()
	if err != nil {
		return Options{}, err
	}
	t, err := cfg.StartTool()
	if err != nil {
		return Options{}, err
	}
	dir, err := cfg.SaveDir()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Size:         cfg.Canvas.Size,
		Zoom:         cfg.View.Zoom,
		HistoryDepth: cfg.History.Depth,
		Swatches:     swatches,
		Tool:         t,
		ShowGrid:     cfg.Canvas.ShowGrid,
		SaveDir:      dir,
	}, nil
}

// Editor is one open canvas with its view, tools and history.
type Editor struct {
	grid    *grid.Grid
	view    *viewport.Viewport
	engine  *tool.Engine
	history *history.History
	palette *palette.Palette

	undoKey *repeat.Repeater
	redoKey *repeat.Repeater

	showGrid bool
	modified bool
	saveDir  string
	name     string

	listeners map[EventType][]Listener
}

// New creates an editor with a blank canvas. The blank canvas is the
// oldest undo state.
func New(opts Options) (*Editor, error) {
	g, err := grid.New(opts.Size)
	if err != nil {
		return nil, err
	}
	e := &Editor{
		grid:      g,
		view:      viewport.New(opts.Size, opts.Zoom),
		history:   history.New(opts.HistoryDepth),
		palette:   palette.New(opts.Swatches),
		showGrid:  opts.ShowGrid,
		saveDir:   opts.SaveDir,
		listeners: make(map[EventType][]Listener),
	}
	e.engine = tool.New(e, e)
	if err := e.engine.SetTool(opts.Tool); err != nil {
		return nil, err
	}
	e.undoKey = repeat.New(func() { e.Undo() })
	e.redoKey = repeat.New(func() { e.Redo() })
	e.history.Push(g)
	return e, nil
}

// On registers a listener for the event type.
func (e *Editor) On(event EventType, l Listener) {
	e.listeners[event] = append(e.listeners[event], l)
}

func (e *Editor) emit(event EventType, data any) {
	for _, l := range e.listeners[event] {
		l(data)
	}
}

// Grid returns the live canvas. It implements tool.Canvas.
func (e *Editor) Grid() *grid.Grid {
	return e.grid
}

// Checkpoint records the canvas as a new undo state. It implements
// tool.Canvas.
func (e *Editor) Checkpoint() {
	e.history.Push(e.grid)
	e.setModified(true)
}

// CurrentColor implements tool.ColorSource.
func (e *Editor) CurrentColor() color.RGBA {
	return e.palette.CurrentColor()
}

// SetColor implements tool.ColorSource. It is what the eyedropper calls.
func (e *Editor) SetColor(r, g, b uint8) {
	e.palette.SetColor(r, g, b)
	e.emit(EventColorPicked, e.palette.CurrentColor())
}

func (e *Editor) View() *viewport.Viewport {
	return e.view
}

func (e *Editor) Palette() *palette.Palette {
	return e.palette
}

func (e *Editor) Tool() tool.Tool {
	return e.engine.Tool()
}

// State returns the tool engine state.
func (e *Editor) State() tool.State {
	return e.engine.State()
}

// Anchor returns the press cell of an open shape.
func (e *Editor) Anchor() (image.Point, bool) {
	return e.engine.Anchor()
}

// Modified reports whether the canvas changed since it was last saved or
// loaded.
func (e *Editor) Modified() bool {
	return e.modified
}

func (e *Editor) setModified(m bool) {
	if e.modified == m {
		return
	}
	e.modified = m
	e.emit(EventModified, m)
}

// Name returns the artwork name used by Save, empty until the canvas is
// saved or loaded.
func (e *Editor) Name() string {
	return e.name
}

func (e *Editor) SaveDir() string {
	return e.saveDir
}

func (e *Editor) ShowGrid() bool {
	return e.showGrid
}

// ToggleGrid flips the cell outline overlay and returns the new state.
func (e *Editor) ToggleGrid() bool {
	e.showGrid = !e.showGrid
	return e.showGrid
}

// Hover returns the cell under screen point p, if any.
func (e *Editor) Hover(p mgl64.Vec2) (image.Point, bool) {
	return e.view.ScreenToGrid(p)
}

// Press forwards a mouse press at screen point p to the selected tool.
// Presses off the canvas do nothing.
func (e *Editor) Press(p mgl64.Vec2) error {
	return e.engine.Press(e.view.ScreenToCell(p))
}

// Drag forwards mouse movement with the button held.
func (e *Editor) Drag(p mgl64.Vec2) error {
	return e.engine.Drag(e.view.ScreenToCell(p))
}

// Release forwards the button release. A shape released off the canvas is
// committed at the last cell it reached.
func (e *Editor) Release(p mgl64.Vec2) error {
	return e.engine.Release(e.view.ScreenToCell(p))
}

// SetTool selects t and emits EventToolChanged when it differs.
func (e *Editor) SetTool(t tool.Tool) error {
	prev := e.engine.Tool()
	if err := e.engine.SetTool(t); err != nil {
		return err
	}
	if t != prev {
		e.emit(EventToolChanged, t)
	}
	return nil
}

// ZoomAt zooms one step toward or away from screen point p.
func (e *Editor) ZoomAt(direction int, p mgl64.Vec2) bool {
	return e.view.ZoomAt(direction, p)
}

// Pan moves the canvas by delta screen pixels.
func (e *Editor) Pan(delta mgl64.Vec2) {
	e.view.Pan(delta)
}

// Cancel closes any open tool session: a shape preview is discarded, a
// stroke is committed. It runs before the canvas is replaced.
func (e *Editor) Cancel() {
	if err := e.engine.Cancel(); err != nil {
		logging.Logger().Warn("cancel tool session", "err", err)
	}
}

// replace swaps in g as the live canvas.
func (e *Editor) replace(g *grid.Grid) {
	e.grid = g
	e.view.SetGridSize(g.Size())
	e.emit(EventGridReplaced, g)
}

func (e *Editor) CanUndo() bool {
	return e.history.CanUndo()
}

func (e *Editor) CanRedo() bool {
	return e.history.CanRedo()
}

// Step returns the position of the current state in the history, counting
// from 1, and the number of stored states.
func (e *Editor) Step() (cur, total int) {
	return e.history.Cursor() + 1, e.history.Len()
}

// Undo restores the previous state. It reports false when there is none.
func (e *Editor) Undo() bool {
	e.Cancel()
	g, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.replace(g)
	e.setModified(true)
	return true
}

// Redo reapplies the next state. It reports false when there is none.
func (e *Editor) Redo() bool {
	e.Cancel()
	g, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.replace(g)
	e.setModified(true)
	return true
}

// ConfigureRepeat applies fn to the undo and redo key repeaters.
func (e *Editor) ConfigureRepeat(fn func(*repeat.Repeater)) {
	fn(e.undoKey)
	fn(e.redoKey)
}

// HoldUndo drives undo from the key state: one undo on press, then
// accelerating repeats while held. now is the frame clock.
func (e *Editor) HoldUndo(down bool, now time.Duration) {
	e.undoKey.Step(down, now)
}

// HoldRedo is HoldUndo for redo.
func (e *Editor) HoldRedo(down bool, now time.Duration) {
	e.redoKey.Step(down, now)
}

// Resize changes the canvas side length keeping the content centered.
func (e *Editor) Resize(n int) error {
	if n == e.grid.Size() {
		return nil
	}
	e.Cancel()
	g := e.grid.Clone()
	if err := g.Resize(n); err != nil {
		return err
	}
	e.replace(g)
	e.Checkpoint()
	logging.Logger().Info("canvas resized", "size", n)
	return nil
}

// Clear erases every cell.
func (e *Editor) Clear() {
	e.Cancel()
	e.grid.Clear()
	e.Checkpoint()
}

// Load replaces the canvas with the artwork at path. Project bundles also
// restore the swatches, color and tool saved with them. The load is one
// undo step.
func (e *Editor) Load(path string) error {
	e.Cancel()
	var g *grid.Grid
	if strings.EqualFold(filepath.Ext(path), project.BundleExt) {
		b, err := project.OpenBundle(path)
		if err != nil {
			return err
		}
		e.applyBundle(b)
		g = b.Grid
	} else {
		var err error
		g, err = project.Load(path)
		if err != nil {
			return err
		}
	}
	e.replace(g)
	e.history.Push(g)
	e.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	e.setModified(false)
	return nil
}

func (e *Editor) applyBundle(b *project.Bundle) {
	if sw := b.Swatches(); len(sw) > 0 {
		e.palette = palette.New(sw)
	}
	e.palette.SetRGBA(b.CurrentColor.RGBA())
	if b.Tool == "" {
		return
	}
	t, err := tool.ParseTool(b.Tool)
	if err != nil {
		logging.Logger().Warn("ignoring saved tool", "tool", b.Tool, "err", err)
		return
	}
	if err := e.SetTool(t); err != nil {
		logging.Logger().Warn("restore tool", "err", err)
	}
}

// LoadArtwork loads a file from the save directory by name.
func (e *Editor) LoadArtwork(name string) error {
	return e.Load(filepath.Join(e.saveDir, name))
}

// ListArtwork returns the loadable files in the save directory.
func (e *Editor) ListArtwork() ([]string, error) {
	return project.ListArtwork(e.saveDir)
}

// Save writes the canvas to the save directory as name.png and name.json.
// An empty name reuses the current name, or picks artwork_N when there is
// none. It returns the PNG path.
func (e *Editor) Save(name string) (string, error) {
	e.Cancel()
	if strings.TrimSpace(name) == "" {
		name = e.name
	}
	pngPath, _, err := project.SaveArtwork(e.saveDir, name, e.grid)
	if err != nil {
		return "", err
	}
	e.name = strings.TrimSuffix(filepath.Base(pngPath), ".png")
	e.setModified(false)
	e.emit(EventSaved, pngPath)
	return pngPath, nil
}

// SaveBundle writes the canvas, swatches, color and tool as a project
// bundle at path.
func (e *Editor) SaveBundle(path string) error {
	e.Cancel()
	if filepath.Ext(path) == "" {
		path += project.BundleExt
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	b := project.NewBundle(name, e.grid, e.palette.Swatches(), e.palette.CurrentColor())
	b.Tool = e.engine.Tool().String()
	if err := project.SaveBundle(path, b); err != nil {
		return err
	}
	e.name = name
	e.setModified(false)
	e.emit(EventSaved, path)
	return nil
}

// Export writes the canvas scaled by an integer factor, in the format
// named by the extension of path.
func (e *Editor) Export(path string, scale int) error {
	if err := project.ExportFile(path, e.grid, scale); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
