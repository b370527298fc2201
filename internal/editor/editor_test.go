package editor

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ha1tch/deluxepixel/internal/config"
	"github.com/ha1tch/deluxepixel/internal/grid"
	"github.com/ha1tch/deluxepixel/internal/tool"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

// newEditor returns an 8x8 editor at zoom 10 with the canvas at the screen
// origin, so cell (x, y) covers screen [10x, 10x+10).
func newEditor(t *testing.T) *Editor {
	t.Helper()
	opts := DefaultOptions()
	opts.Size = 8
	opts.Zoom = 10
	opts.SaveDir = t.TempDir()
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func at(x, y int) mgl64.Vec2 {
	return mgl64.Vec2{float64(x*10 + 5), float64(y*10 + 5)}
}

func click(t *testing.T, e *Editor, x, y int) {
	t.Helper()
	if err := e.Press(at(x, y)); err != nil {
		t.Fatalf("Press() error = %v", err)
	}
	if err := e.Release(at(x, y)); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
}

func TestNew(t *testing.T) {
	e := newEditor(t)
	if e.Grid().Size() != 8 || e.View().GridSize() != 8 {
		t.Errorf("size = %d/%d, want 8", e.Grid().Size(), e.View().GridSize())
	}
	if e.CanUndo() || e.CanRedo() || e.Modified() {
		t.Error("fresh editor has history or is modified")
	}
	if e.Tool() != tool.Pencil {
		t.Errorf("Tool() = %v, want pencil", e.Tool())
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Size = 1
	if _, err := New(opts); !errors.Is(err, grid.ErrInvalidSize) {
		t.Errorf("New(size 1) error = %v, want ErrInvalidSize", err)
	}
	opts = DefaultOptions()
	opts.Tool = tool.Tool(99)
	if _, err := New(opts); err == nil {
		t.Error("New(bad tool) error = nil")
	}
}

func TestEditor_StrokeAndUndo(t *testing.T) {
	e := newEditor(t)
	var modified []bool
	e.On(EventModified, func(data any) { modified = append(modified, data.(bool)) })

	e.Palette().SetRGBA(red)
	if err := e.Press(at(1, 1)); err != nil {
		t.Fatal(err)
	}
	if err := e.Drag(at(2, 1)); err != nil {
		t.Fatal(err)
	}
	if err := e.Release(at(2, 1)); err != nil {
		t.Fatal(err)
	}
	if e.Grid().Cell(1, 1) != red || e.Grid().Cell(2, 1) != red {
		t.Fatal("stroke cells not painted")
	}
	if !e.Modified() || len(modified) != 1 || !modified[0] {
		t.Errorf("modified events = %v", modified)
	}

	if !e.Undo() {
		t.Fatal("Undo() = false")
	}
	if e.Grid().Cell(1, 1) != grid.Transparent {
		t.Error("Undo() did not remove the stroke")
	}
	if e.Undo() {
		t.Error("Undo() past the blank canvas = true")
	}
	if !e.Redo() || e.Grid().Cell(2, 1) != red {
		t.Error("Redo() did not restore the stroke")
	}
	if e.Redo() {
		t.Error("Redo() at the newest state = true")
	}
}

func TestEditor_PressOffCanvas(t *testing.T) {
	e := newEditor(t)
	if err := e.Press(mgl64.Vec2{-30, 500}); err != nil {
		t.Fatal(err)
	}
	if err := e.Release(mgl64.Vec2{-30, 500}); err != nil {
		t.Fatal(err)
	}
	if e.CanUndo() {
		t.Error("press off the canvas created an undo state")
	}
}

func TestEditor_ShapeReleasedOffCanvas(t *testing.T) {
	e := newEditor(t)
	e.Palette().SetRGBA(blue)
	if err := e.SetTool(tool.Line); err != nil {
		t.Fatal(err)
	}
	if err := e.Press(at(0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := e.Drag(at(3, 0)); err != nil {
		t.Fatal(err)
	}
	if err := e.Release(mgl64.Vec2{400, 5}); err != nil {
		t.Fatal(err)
	}
	for x := 0; x <= 3; x++ {
		if e.Grid().Cell(x, 0) != blue {
			t.Errorf("Cell(%d, 0) not painted", x)
		}
	}
	if e.Grid().Cell(4, 0) != grid.Transparent {
		t.Error("line extended past the last in-canvas cell")
	}
	if e.State() != tool.Idle {
		t.Errorf("State() = %v, want idle", e.State())
	}
}

func TestEditor_UndoDuringShapeSession(t *testing.T) {
	e := newEditor(t)
	click(t, e, 0, 0)
	if err := e.SetTool(tool.Rectangle); err != nil {
		t.Fatal(err)
	}
	if err := e.Press(at(2, 2)); err != nil {
		t.Fatal(err)
	}
	if err := e.Drag(at(5, 5)); err != nil {
		t.Fatal(err)
	}
	if !e.Undo() {
		t.Fatal("Undo() = false")
	}
	if e.State() != tool.Idle {
		t.Errorf("State() = %v, want idle", e.State())
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if e.Grid().Cell(x, y) != grid.Transparent {
				t.Fatalf("Cell(%d, %d) painted after undo", x, y)
			}
		}
	}
}

func TestEditor_Eyedropper(t *testing.T) {
	e := newEditor(t)
	e.Grid().Set(3, 3, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	var picked []color.RGBA
	e.On(EventColorPicked, func(data any) { picked = append(picked, data.(color.RGBA)) })

	if err := e.SetTool(tool.Eyedropper); err != nil {
		t.Fatal(err)
	}
	click(t, e, 3, 3)
	want := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	if e.CurrentColor() != want {
		t.Errorf("CurrentColor() = %v, want %v", e.CurrentColor(), want)
	}
	if len(picked) != 1 || picked[0] != want {
		t.Errorf("picked events = %v", picked)
	}
	if e.CanUndo() {
		t.Error("eyedropper created an undo state")
	}
}

func TestEditor_SetToolEvent(t *testing.T) {
	e := newEditor(t)
	var got []tool.Tool
	e.On(EventToolChanged, func(data any) { got = append(got, data.(tool.Tool)) })
	for _, tl := range []tool.Tool{tool.Fill, tool.Fill, tool.Circle} {
		if err := e.SetTool(tl); err != nil {
			t.Fatal(err)
		}
	}
	if len(got) != 2 || got[0] != tool.Fill || got[1] != tool.Circle {
		t.Errorf("tool events = %v", got)
	}
	if err := e.SetTool(tool.Tool(-1)); err == nil {
		t.Error("SetTool(-1) error = nil")
	}
}

func TestEditor_Resize(t *testing.T) {
	e := newEditor(t)
	e.Palette().SetRGBA(red)
	click(t, e, 0, 0)

	var replaced int
	e.On(EventGridReplaced, func(any) { replaced++ })
	if err := e.Resize(12); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if e.Grid().Size() != 12 || e.View().GridSize() != 12 {
		t.Errorf("size = %d/%d, want 12", e.Grid().Size(), e.View().GridSize())
	}
	if e.Grid().Cell(2, 2) != red {
		t.Error("content not centered after resize")
	}
	if replaced != 1 {
		t.Errorf("grid replaced events = %d, want 1", replaced)
	}

	if !e.Undo() || e.Grid().Size() != 8 || e.View().GridSize() != 8 {
		t.Errorf("Undo() after resize: size %d", e.Grid().Size())
	}
	if e.Grid().Cell(0, 0) != red {
		t.Error("Undo() after resize lost content")
	}

	if err := e.Resize(1000); !errors.Is(err, grid.ErrInvalidSize) {
		t.Errorf("Resize(1000) error = %v, want ErrInvalidSize", err)
	}
	if e.Grid().Size() != 8 {
		t.Errorf("failed resize changed size to %d", e.Grid().Size())
	}
}

func TestEditor_Clear(t *testing.T) {
	e := newEditor(t)
	click(t, e, 4, 4)
	e.Clear()
	if e.Grid().Cell(4, 4) != grid.Transparent {
		t.Error("Clear() left a painted cell")
	}
	if !e.Undo() || e.Grid().Cell(4, 4) == grid.Transparent {
		t.Error("Undo() after Clear() did not restore the cell")
	}
}

func TestEditor_SaveAndLoad(t *testing.T) {
	e := newEditor(t)
	e.Palette().SetRGBA(red)
	click(t, e, 6, 1)

	path, err := e.Save("")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if filepath.Base(path) != "artwork_1.png" || e.Name() != "artwork_1" {
		t.Errorf("Save() = %q, name %q", path, e.Name())
	}
	if e.Modified() {
		t.Error("Modified() = true after save")
	}

	names, err := e.ListArtwork()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Errorf("ListArtwork() = %v, want png and json", names)
	}

	other := newEditor(t)
	other.saveDir = e.SaveDir()
	if err := other.LoadArtwork("artwork_1.json"); err != nil {
		t.Fatalf("LoadArtwork() error = %v", err)
	}
	if !other.Grid().Equal(e.Grid()) {
		t.Error("loaded canvas differs from the saved one")
	}
	if other.Modified() || other.Name() != "artwork_1" {
		t.Errorf("after load: modified %v, name %q", other.Modified(), other.Name())
	}
	if !other.Undo() || other.Grid().Cell(6, 1) != grid.Transparent {
		t.Error("load is not undoable")
	}
}

func TestEditor_LoadMissing(t *testing.T) {
	e := newEditor(t)
	err := e.Load(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want not exist", err)
	}
	if e.CanUndo() {
		t.Error("failed load created an undo state")
	}
}

func TestEditor_BundleRestoresState(t *testing.T) {
	e := newEditor(t)
	e.Palette().SetRGBA(blue)
	click(t, e, 2, 5)
	if err := e.SetTool(tool.Circle); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "scene")
	if err := e.SaveBundle(path); err != nil {
		t.Fatalf("SaveBundle() error = %v", err)
	}

	other := newEditor(t)
	if err := other.Load(path + ".ddp"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !other.Grid().Equal(e.Grid()) {
		t.Error("bundle canvas differs")
	}
	if other.CurrentColor() != blue {
		t.Errorf("CurrentColor() = %v, want %v", other.CurrentColor(), blue)
	}
	if other.Tool() != tool.Circle {
		t.Errorf("Tool() = %v, want circle", other.Tool())
	}
	if other.Name() != "scene" {
		t.Errorf("Name() = %q, want scene", other.Name())
	}
}

func TestEditor_Export(t *testing.T) {
	e := newEditor(t)
	click(t, e, 0, 0)
	path := filepath.Join(t.TempDir(), "out.png")
	if err := e.Export(path, 4); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}
	if err := e.Export(filepath.Join(t.TempDir(), "out.gif"), 1); err == nil {
		t.Error("Export(.gif) error = nil")
	}
}

func TestEditor_HoldUndoAccelerates(t *testing.T) {
	e := newEditor(t)
	for i := 0; i < 4; i++ {
		click(t, e, i, 0)
	}
	if e.history.Cursor() != 4 {
		t.Fatalf("Cursor() = %d, want 4", e.history.Cursor())
	}

	ms := time.Millisecond
	e.HoldUndo(true, 0)
	if e.history.Cursor() != 3 {
		t.Errorf("after press Cursor() = %d, want 3", e.history.Cursor())
	}
	e.HoldUndo(true, 400*ms)
	if e.history.Cursor() != 3 {
		t.Errorf("repeat fired before the initial delay")
	}
	e.HoldUndo(true, 500*ms)
	if e.history.Cursor() != 2 {
		t.Errorf("after first repeat Cursor() = %d, want 2", e.history.Cursor())
	}
	// Next interval is 475ms.
	e.HoldUndo(true, 975*ms)
	if e.history.Cursor() != 1 {
		t.Errorf("after second repeat Cursor() = %d, want 1", e.history.Cursor())
	}
	e.HoldUndo(false, 1000*ms)
	e.HoldRedo(true, 1100*ms)
	e.HoldRedo(false, 1110*ms)
	if e.history.Cursor() != 2 {
		t.Errorf("after redo Cursor() = %d, want 2", e.history.Cursor())
	}
}

func TestEditor_ConfigureRepeat(t *testing.T) {
	e := newEditor(t)
	cfg := config.Default()
	cfg.Repeat.InitialMS = 100
	cfg.Repeat.MinMS = 10
	e.ConfigureRepeat(cfg.RepeatTiming)
	if e.undoKey.Initial != 100*time.Millisecond || e.redoKey.Min != 10*time.Millisecond {
		t.Errorf("repeat timing = %v/%v", e.undoKey.Initial, e.redoKey.Min)
	}
}

func TestOptionsFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Canvas.Size = 24
	cfg.Tool = "eraser"
	cfg.Palette.Colors = []string{"red", "#00ff00"}
	cfg.Files.SaveDir = t.TempDir()
	opts, err := OptionsFrom(cfg)
	if err != nil {
		t.Fatalf("OptionsFrom() error = %v", err)
	}
	if opts.Size != 24 || opts.Tool != tool.Eraser || len(opts.Swatches) != 2 {
		t.Errorf("OptionsFrom() = %+v", opts)
	}
	e, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	if e.Tool() != tool.Eraser || len(e.Palette().Swatches()) != 2 {
		t.Errorf("editor from config: tool %v, swatches %d", e.Tool(), len(e.Palette().Swatches()))
	}
}

func TestEditor_ToggleGridAndHover(t *testing.T) {
	e := newEditor(t)
	if e.ToggleGrid() || e.ShowGrid() {
		t.Error("ToggleGrid() from the default did not hide the grid")
	}
	if pt, ok := e.Hover(at(7, 2)); !ok || pt.X != 7 || pt.Y != 2 {
		t.Errorf("Hover() = %v, %v", pt, ok)
	}
	if _, ok := e.Hover(mgl64.Vec2{-1, 0}); ok {
		t.Error("Hover() off canvas = true")
	}
}

func TestEditor_StepCountsStates(t *testing.T) {
	e := newEditor(t)
	if cur, total := e.Step(); cur != 1 || total != 1 {
		t.Fatalf("Step() = %d, %d, want 1, 1", cur, total)
	}
	click(t, e, 0, 0)
	click(t, e, 0, 0)
	if cur, total := e.Step(); cur != 2 || total != 2 {
		t.Errorf("Step() = %d, %d after an unchanged click, want 2, 2", cur, total)
	}
	e.Undo()
	if cur, total := e.Step(); cur != 1 || total != 2 {
		t.Errorf("Step() = %d, %d after Undo(), want 1, 2", cur, total)
	}
}
