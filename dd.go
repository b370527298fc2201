package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/atotto/clipboard"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ha1tch/deluxepixel/internal/config"
	"github.com/ha1tch/deluxepixel/internal/editor"
	"github.com/ha1tch/deluxepixel/internal/logging"
	"github.com/ha1tch/deluxepixel/internal/palette"
	"github.com/ha1tch/deluxepixel/internal/tool"
	"github.com/ha1tch/deluxepixel/internal/version"
)

const (
	screenWidth  = 1280
	screenHeight = 800
	fontSize     = 8
	leftPanel    = 100
	rightPanel   = 200
	topBar       = 50

	magnifierSize = 160
	magnifierZoom = 4
	exportScale   = 8
	statusTimeout = 4 * time.Second
)

// GUI Control types
type Button struct {
	rect     rl.Rectangle
	text     string
	tip      string
	hover    bool
	selected bool
	disabled bool
	action   func()
	enabled  func() bool
}

// Picker parts that can be dragged
type pickerPart int

const (
	pickNone pickerPart = iota
	pickSV
	pickHue
	pickAlpha
)

// Application state
type App struct {
	ed  *editor.Editor
	cfg *config.Config
	log *slog.Logger

	// Textures
	canvasTex  rl.Texture2D
	checkerTex rl.Texture2D
	texSize    int

	// UI
	toolButtons   []Button
	actionButtons []Button

	// Color picker, kept in HSV so hue survives grays
	hue, sat, val float64
	picking       pickerPart

	// State
	pressing  bool
	isPanning bool
	magnifier bool
	dialog    *Dialog

	status   string
	statusAt time.Duration
}

// Frame clock
func now() time.Duration {
	return time.Duration(rl.GetTime() * float64(time.Second))
}

func vec(v rl.Vector2) mgl64.Vec2 {
	return mgl64.Vec2{float64(v.X), float64(v.Y)}
}

// Screen area the canvas is drawn in
func canvasArea() rl.Rectangle {
	return rl.Rectangle{
		X:      leftPanel,
		Y:      topBar,
		Width:  float32(rl.GetScreenWidth() - leftPanel - rightPanel),
		Height: float32(rl.GetScreenHeight() - topBar),
	}
}

func viewOffset() (mgl64.Vec2, float64, float64) {
	a := canvasArea()
	return mgl64.Vec2{float64(a.X), float64(a.Y)}, float64(a.Width), float64(a.Height)
}

// Initialize application. The window must be open.
func NewApp(ed *editor.Editor, cfg *config.Config) *App {
	app := &App{
		ed:  ed,
		cfg: cfg,
		log: logging.Logger(),
	}
	ed.ConfigureRepeat(cfg.RepeatTiming)

	ed.On(editor.EventGridReplaced, func(any) {
		app.syncTextures()
		app.syncPicker()
		app.updateTitle()
	})
	ed.On(editor.EventModified, func(any) { app.updateTitle() })
	ed.On(editor.EventSaved, func(data any) {
		app.setStatus(fmt.Sprintf("SAVED %s", data))
		app.updateTitle()
	})
	ed.On(editor.EventColorPicked, func(any) { app.syncPicker() })
	ed.On(editor.EventToolChanged, func(data any) { app.markTool(data.(tool.Tool)) })

	// Tool buttons, two columns
	x := float32(10)
	y := float32(50)
	for i, t := range tool.Tools() {
		app.toolButtons = append(app.toolButtons, Button{
			rect:     rl.Rectangle{X: x + float32(i%2)*40, Y: y + float32(i/2)*40, Width: 36, Height: 36},
			text:     string(t.Key()),
			tip:      t.String(),
			selected: t == ed.Tool(),
			action:   func() { app.selectTool(t) },
		})
	}

	actions := []struct {
		text    string
		action  func()
		enabled func() bool
	}{
		{"UNDO", func() { app.ed.Undo() }, app.ed.CanUndo},
		{"REDO", func() { app.ed.Redo() }, app.ed.CanRedo},
		{"CLEAR", func() { app.ed.Clear() }, nil},
		{"RESIZE", func() { app.openDialog(dialogResize) }, nil},
		{"OPEN", func() { app.openDialog(dialogOpen) }, nil},
		{"SAVE", func() { app.openDialog(dialogSave) }, nil},
		{"EXPORT", func() { app.openDialog(dialogExport) }, nil},
	}
	y = 220
	for i, a := range actions {
		app.actionButtons = append(app.actionButtons, Button{
			rect:    rl.Rectangle{X: 10, Y: y + float32(i)*24, Width: 76, Height: 20},
			text:    a.text,
			action:  a.action,
			enabled: a.enabled,
		})
	}

	app.syncTextures()
	app.syncPicker()
	app.updateTitle()
	off, w, h := viewOffset()
	ed.View().Center(off, w, h)
	return app
}

// Recreate textures when the grid size changes
func (app *App) syncTextures() {
	n := app.ed.Grid().Size()
	if n == app.texSize {
		return
	}
	app.unloadTextures()

	img := rl.GenImageColor(n, n, rl.Blank)
	app.canvasTex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(app.canvasTex, rl.FilterPoint)

	// Two checks per cell
	checker := rl.GenImageChecked(n*2, n*2, 1, 1, rl.Color{150, 150, 150, 255}, rl.Color{100, 100, 100, 255})
	app.checkerTex = rl.LoadTextureFromImage(checker)
	rl.UnloadImage(checker)
	rl.SetTextureFilter(app.checkerTex, rl.FilterPoint)

	app.texSize = n
	off, w, h := viewOffset()
	app.ed.View().Center(off, w, h)
	app.log.Debug("canvas texture created", "size", n)
}

func (app *App) unloadTextures() {
	if app.texSize == 0 {
		return
	}
	rl.UnloadTexture(app.canvasTex)
	rl.UnloadTexture(app.checkerTex)
	app.texSize = 0
}

// Pull picker HSV from the current color
func (app *App) syncPicker() {
	h, s, v := palette.ToHSV(app.ed.CurrentColor())
	if s > 0 && v > 0 {
		app.hue = h
	}
	app.sat, app.val = s, v
}

func (app *App) markTool(t tool.Tool) {
	for i := range app.toolButtons {
		app.toolButtons[i].selected = tool.Tool(i) == t
	}
}

func (app *App) selectTool(t tool.Tool) {
	app.report(app.ed.SetTool(t))
}

func (app *App) updateTitle() {
	name := app.ed.Name()
	if name == "" {
		name = "untitled"
	}
	if app.ed.Modified() {
		name += " *"
	}
	rl.SetWindowTitle(fmt.Sprintf("Deluxe Pixel - %s", name))
}

func (app *App) setStatus(msg string) {
	app.status = msg
	app.statusAt = now()
}

// Log and show an error. Nil is ignored.
func (app *App) report(err error) {
	if err == nil {
		return
	}
	app.log.Warn("action failed", "err", err)
	app.setStatus(err.Error())
}

// Update application
func (app *App) Update() {
	t := now()
	if app.dialog != nil {
		app.updateDialog(t)
		return
	}
	app.handleKeys(t)

	mousePos := rl.GetMousePosition()
	mp := vec(mousePos)
	area := canvasArea()
	inCanvas := rl.CheckCollisionPointRec(mousePos, area)

	// Handle space+drag panning
	if rl.IsKeyDown(rl.KeySpace) && rl.IsMouseButtonPressed(rl.MouseLeftButton) && !app.pressing {
		app.isPanning = true
	}
	if app.isPanning && rl.IsMouseButtonDown(rl.MouseLeftButton) {
		app.ed.Pan(vec(rl.GetMouseDelta()))
	}
	if rl.IsMouseButtonReleased(rl.MouseLeftButton) || !rl.IsKeyDown(rl.KeySpace) {
		app.isPanning = false
	}
	if app.isPanning {
		return
	}

	// Handle panning with middle mouse button
	if rl.IsMouseButtonDown(rl.MouseMiddleButton) {
		app.ed.Pan(vec(rl.GetMouseDelta()))
	}

	// Handle zoom with mouse wheel
	if wheel := rl.GetMouseWheelMove(); wheel != 0 && inCanvas {
		dir := 1
		if wheel < 0 {
			dir = -1
		}
		app.ed.ZoomAt(dir, mp)
	}

	clicked := rl.IsMouseButtonPressed(rl.MouseLeftButton)
	for _, buttons := range [][]Button{app.toolButtons, app.actionButtons} {
		for i := range buttons {
			btn := &buttons[i]
			btn.disabled = btn.enabled != nil && !btn.enabled()
			btn.hover = !btn.disabled && rl.CheckCollisionPointRec(mousePos, btn.rect)
			if btn.hover && clicked && !app.pressing {
				btn.action()
			}
		}
	}

	// Handle swatches
	for i := range app.ed.Palette().Swatches() {
		if clicked && rl.CheckCollisionPointRec(mousePos, swatchRect(i)) {
			app.ed.Palette().SelectSwatch(i)
			app.syncPicker()
		}
	}
	for i, c := range app.ed.Palette().Recent() {
		if clicked && rl.CheckCollisionPointRec(mousePos, recentRect(i)) {
			app.ed.Palette().SetRGBA(c)
			app.syncPicker()
			break
		}
	}

	app.updatePicker(mousePos, clicked)

	// Handle drawing on canvas
	if clicked && inCanvas && !app.pressing {
		app.pressing = true
		app.report(app.ed.Press(mp))
	} else if app.pressing && rl.IsMouseButtonDown(rl.MouseLeftButton) {
		if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
			app.report(app.ed.Drag(mp))
		}
	}
	if app.pressing && rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		app.pressing = false
		app.report(app.ed.Release(mp))
	}
}

// Keyboard shortcuts
func (app *App) handleKeys(t time.Duration) {
	ctrl := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl)
	shift := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)

	// Undo and redo repeat while held
	app.ed.HoldUndo(ctrl && !shift && rl.IsKeyDown(rl.KeyZ), t)
	app.ed.HoldRedo(ctrl && (rl.IsKeyDown(rl.KeyY) || shift && rl.IsKeyDown(rl.KeyZ)), t)

	if ctrl {
		switch {
		case rl.IsKeyPressed(rl.KeyS) && shift:
			app.openDialog(dialogBundle)
		case rl.IsKeyPressed(rl.KeyS):
			app.openDialog(dialogSave)
		case rl.IsKeyPressed(rl.KeyO):
			app.openDialog(dialogOpen)
		case rl.IsKeyPressed(rl.KeyR):
			app.openDialog(dialogResize)
		case rl.IsKeyPressed(rl.KeyE):
			app.openDialog(dialogExport)
		case rl.IsKeyPressed(rl.KeyN):
			app.ed.Clear()
		case rl.IsKeyPressed(rl.KeyC):
			app.copyColor()
		case rl.IsKeyPressed(rl.KeyV):
			app.pasteColor()
		}
		return
	}

	switch {
	case rl.IsKeyPressed(rl.KeyF11):
		rl.ToggleFullscreen()
	case rl.IsKeyPressed(rl.KeyEscape):
		app.ed.Cancel()
	case rl.IsKeyPressed(rl.KeyHome):
		off, w, h := viewOffset()
		app.ed.View().Fit(off, w, h)
	}

	for r := rl.GetCharPressed(); r > 0; r = rl.GetCharPressed() {
		switch ch := rune(r); {
		case ch == 'g' || ch == 'G':
			app.ed.ToggleGrid()
		case ch == 'm' || ch == 'M':
			app.magnifier = !app.magnifier
		case ch == 'h' || ch == 'H':
			app.openDialog(dialogHex)
		case ch >= '1' && ch <= '9':
			if app.ed.Palette().SelectSwatch(int(ch - '1')) {
				app.syncPicker()
			}
		default:
			if tl, ok := tool.ForKey(ch); ok {
				app.selectTool(tl)
			}
		}
	}
}

func (app *App) copyColor() {
	hex := palette.Hex(app.ed.CurrentColor())
	if err := clipboard.WriteAll(hex); err != nil {
		app.report(fmt.Errorf("copy color: %w", err))
		return
	}
	app.setStatus("COPIED " + hex)
}

func (app *App) pasteColor() {
	s, err := clipboard.ReadAll()
	if err != nil {
		app.report(fmt.Errorf("paste color: %w", err))
		return
	}
	c, err := palette.ParseColor(s)
	if err != nil {
		app.report(err)
		return
	}
	app.ed.Palette().SetRGBA(c)
	app.syncPicker()
	app.setStatus("COLOR " + palette.Hex(c))
}

// Color picker rectangles in the right panel
func pickerRects() (sv, hue, alpha rl.Rectangle) {
	x := float32(rl.GetScreenWidth() - rightPanel + 10)
	sv = rl.Rectangle{X: x, Y: 40, Width: rightPanel - 20, Height: rightPanel - 20}
	hue = rl.Rectangle{X: x, Y: sv.Y + sv.Height + 10, Width: sv.Width, Height: 16}
	alpha = rl.Rectangle{X: x, Y: hue.Y + 26, Width: sv.Width, Height: 16}
	return sv, hue, alpha
}

func unit(v, lo, size float32) float64 {
	return math.Max(0, math.Min(1, float64((v-lo)/size)))
}

// Color picker drag. The color is committed on release so the recent list
// only records the final pick.
func (app *App) updatePicker(mousePos rl.Vector2, clicked bool) {
	sv, hue, alpha := pickerRects()
	if clicked && !app.pressing {
		switch {
		case rl.CheckCollisionPointRec(mousePos, sv):
			app.picking = pickSV
		case rl.CheckCollisionPointRec(mousePos, hue):
			app.picking = pickHue
		case rl.CheckCollisionPointRec(mousePos, alpha):
			app.picking = pickAlpha
		}
	}
	if app.picking == pickNone {
		return
	}

	switch app.picking {
	case pickSV:
		app.sat = unit(mousePos.X, sv.X, sv.Width)
		app.val = 1 - unit(mousePos.Y, sv.Y, sv.Height)
	case pickHue:
		app.hue = unit(mousePos.X, hue.X, hue.Width)
	case pickAlpha:
		app.ed.Palette().SetAlpha(uint8(math.Round(unit(mousePos.X, alpha.X, alpha.Width) * 255)))
	}

	if !rl.IsMouseButtonDown(rl.MouseLeftButton) {
		if app.picking != pickAlpha {
			app.ed.Palette().SetRGBA(app.pickerColor())
		}
		app.picking = pickNone
	}
}

// Color shown by the picker, which leads the palette while dragging
func (app *App) pickerColor() rl.Color {
	a := app.ed.CurrentColor().A
	if app.picking == pickSV || app.picking == pickHue {
		return palette.FromHSV(app.hue, app.sat, app.val, a)
	}
	return app.ed.CurrentColor()
}

func (app *App) Close() {
	app.unloadTextures()
}

func main() {
	configPath := flag.String("config", config.Path(), "path to config.toml")
	logLevel := flag.String("log-level", "", "override log_level from the config file")
	writeConfig := flag.Bool("write-config", false, "write the effective config to -config and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: deluxepixel [flags] [file.png|file.json|file.ddp]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println("deluxepixel", version.String())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.SetLogger(logger)

	if *writeConfig {
		if err := cfg.Save(*configPath); err != nil {
			logger.Error("write config", "path", *configPath, "err", err)
			os.Exit(1)
		}
		logger.Info("config written", "path", *configPath)
		return
	}

	opts, err := editor.OptionsFrom(cfg)
	if err != nil {
		logger.Error("config", "err", err)
		os.Exit(1)
	}
	ed, err := editor.New(opts)
	if err != nil {
		logger.Error("create editor", "err", err)
		os.Exit(1)
	}
	if flag.NArg() > 0 {
		if err := ed.Load(flag.Arg(0)); err != nil {
			logger.Error("open", "err", err)
			os.Exit(1)
		}
	}
	logger.Info("starting", "version", version.Version, "size", ed.Grid().Size(), "save_dir", ed.SaveDir())

	rl.SetTraceLogLevel(rl.LogWarning)
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(screenWidth, screenHeight, "Deluxe Pixel")
	rl.SetTargetFPS(60)
	// Escape closes dialogs and cancels shapes instead of quitting
	rl.SetExitKey(0)

	app := NewApp(ed, cfg)

	for !rl.WindowShouldClose() {
		app.Update()
		app.Draw()
	}

	// Clean up
	app.Close()
	rl.CloseWindow()
}
