package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/ha1tch/deluxepixel/internal/grid"
	"github.com/ha1tch/deluxepixel/internal/palette"
	"github.com/ha1tch/deluxepixel/internal/project"
	"github.com/ha1tch/deluxepixel/internal/repeat"
)

type dialogKind int

const (
	dialogSave dialogKind = iota
	dialogBundle
	dialogResize
	dialogOpen
	dialogExport
	dialogHex
)

const (
	dialogWidth  = 360
	dialogRows   = 12
	dialogRowH   = 18
	maxInputLen  = 64
	cursorPeriod = 0.5
)

// Dialog is a modal text prompt, or a file list for dialogOpen
type Dialog struct {
	kind  dialogKind
	title string
	hint  string
	input string

	files    []string
	selected int
	scroll   int

	backspace *repeat.Repeater
}

func (d *Dialog) erase() {
	if d.input == "" {
		return
	}
	r := []rune(d.input)
	d.input = string(r[:len(r)-1])
}

func (app *App) openDialog(kind dialogKind) {
	app.ed.Cancel()
	d := &Dialog{kind: kind}
	d.backspace = repeat.New(d.erase)
	app.cfg.RepeatTiming(d.backspace)

	name := app.ed.Name()
	switch kind {
	case dialogSave:
		d.title = "SAVE ARTWORK"
		d.hint = "NAME, EMPTY FOR NEXT ARTWORK_N"
		d.input = name
	case dialogBundle:
		d.title = "SAVE PROJECT"
		d.hint = "FILE NAME IN " + strings.ToUpper(app.ed.SaveDir())
		if name == "" {
			name = "project"
		}
		d.input = name + project.BundleExt
	case dialogResize:
		d.title = "RESIZE CANVAS"
		d.hint = fmt.Sprintf("SIDE LENGTH %d-%d", grid.MinSize, grid.MaxSize)
		d.input = strconv.Itoa(app.ed.Grid().Size())
	case dialogExport:
		d.title = "EXPORT IMAGE"
		d.hint = fmt.Sprintf("PNG, JPG OR BMP, SCALED %dX", exportScale)
		if name == "" {
			name = "artwork"
		}
		d.input = fmt.Sprintf("%s_x%d.png", name, exportScale)
	case dialogHex:
		d.title = "COLOR"
		d.hint = "#RRGGBB, #RRGGBBAA OR A COLOR NAME"
		d.input = palette.Hex(app.ed.CurrentColor())
	case dialogOpen:
		files, err := app.ed.ListArtwork()
		if err != nil {
			app.report(err)
			return
		}
		if len(files) == 0 {
			app.setStatus("NO ARTWORK IN " + app.ed.SaveDir())
			return
		}
		d.title = "OPEN"
		d.hint = "UP/DOWN AND ENTER, OR CLICK"
		d.files = files
	}
	app.dialog = d
}

func dialogRect() rl.Rectangle {
	h := float32(110)
	sw := float32(rl.GetScreenWidth())
	sh := float32(rl.GetScreenHeight())
	return rl.Rectangle{X: (sw - dialogWidth) / 2, Y: sh/2 - 150, Width: dialogWidth, Height: h + dialogRows*dialogRowH}
}

func fileRowRect(box rl.Rectangle, row int) rl.Rectangle {
	return rl.Rectangle{X: box.X + 10, Y: box.Y + 60 + float32(row*dialogRowH), Width: box.Width - 20, Height: dialogRowH}
}

func (app *App) updateDialog(t time.Duration) {
	d := app.dialog
	if rl.IsKeyPressed(rl.KeyEscape) {
		app.dialog = nil
		return
	}

	if d.kind == dialogOpen {
		if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressedRepeat(rl.KeyUp) {
			d.selected = max(0, d.selected-1)
		}
		if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressedRepeat(rl.KeyDown) {
			d.selected = min(len(d.files)-1, d.selected+1)
		}
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			d.scroll -= int(wheel)
		}
		// Keep the selection visible
		if d.selected < d.scroll {
			d.scroll = d.selected
		}
		if d.selected >= d.scroll+dialogRows {
			d.scroll = d.selected - dialogRows + 1
		}
		d.scroll = max(0, min(d.scroll, len(d.files)-dialogRows))

		if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			box := dialogRect()
			for row := 0; row < dialogRows && d.scroll+row < len(d.files); row++ {
				if rl.CheckCollisionPointRec(rl.GetMousePosition(), fileRowRect(box, row)) {
					d.selected = d.scroll + row
					app.applyDialog()
					return
				}
			}
		}
	} else {
		for r := rl.GetCharPressed(); r > 0; r = rl.GetCharPressed() {
			if r >= 32 && r < 127 && len(d.input) < maxInputLen {
				d.input += string(rune(r))
			}
		}
		d.backspace.Step(rl.IsKeyDown(rl.KeyBackspace), t)
	}

	if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeyKpEnter) {
		app.applyDialog()
	}
}

// Run the dialog's action. The dialog stays open on error so the input can
// be fixed.
func (app *App) applyDialog() {
	d := app.dialog
	input := strings.TrimSpace(d.input)
	var err error

	switch d.kind {
	case dialogSave:
		_, err = app.ed.Save(input)
	case dialogBundle:
		if input == "" {
			err = errors.New("project name is empty")
			break
		}
		err = app.ed.SaveBundle(app.inSaveDir(input))
	case dialogResize:
		var n int
		n, err = strconv.Atoi(input)
		if err == nil {
			err = app.ed.Resize(n)
		}
		if err == nil {
			app.setStatus(fmt.Sprintf("RESIZED TO %dX%d", n, n))
		}
	case dialogExport:
		path := app.inSaveDir(input)
		err = app.ed.Export(path, exportScale)
		if err == nil {
			app.setStatus("EXPORTED " + path)
		}
	case dialogHex:
		c, perr := palette.ParseColor(input)
		err = perr
		if err == nil {
			app.ed.Palette().SetRGBA(c)
			app.syncPicker()
		}
	case dialogOpen:
		name := d.files[d.selected]
		err = app.ed.LoadArtwork(name)
		if err == nil {
			app.setStatus("OPENED " + name)
		}
	}

	if err != nil {
		app.report(err)
		return
	}
	app.dialog = nil
}

// Relative names go to the save directory
func (app *App) inSaveDir(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(app.ed.SaveDir(), name)
}

func (app *App) drawDialog() {
	d := app.dialog
	sw := int32(rl.GetScreenWidth())
	sh := int32(rl.GetScreenHeight())
	rl.DrawRectangle(0, 0, sw, sh, rl.Fade(rl.Black, 0.5))

	box := dialogRect()
	if d.kind != dialogOpen {
		box.Height = 110
	}
	rl.DrawRectangleRec(box, panelColor)
	rl.DrawRectangleLinesEx(box, 2, borderColor)

	x := int32(box.X + 10)
	y := int32(box.Y + 10)
	rl.DrawText(d.title, x, y, fontSize, rl.White)
	rl.DrawText(d.hint, x, y+16, fontSize, rl.LightGray)

	if d.kind == dialogOpen {
		mousePos := rl.GetMousePosition()
		for row := 0; row < dialogRows && d.scroll+row < len(d.files); row++ {
			i := d.scroll + row
			rect := fileRowRect(box, row)
			switch {
			case i == d.selected:
				rl.DrawRectangleRec(rect, activeColor)
			case rl.CheckCollisionPointRec(mousePos, rect):
				rl.DrawRectangleRec(rect, hoverColor)
			}
			rl.DrawText(d.files[i], int32(rect.X+4), int32(rect.Y+5), fontSize, rl.White)
		}
	} else {
		field := rl.Rectangle{X: box.X + 10, Y: box.Y + 44, Width: box.Width - 20, Height: 24}
		rl.DrawRectangleRec(field, rl.Color{30, 30, 30, 255})
		rl.DrawRectangleLinesEx(field, 1, borderColor)
		text := d.input
		if int(rl.GetTime()/cursorPeriod)%2 == 0 {
			text += "_"
		}
		rl.DrawText(text, int32(field.X+6), int32(field.Y+8), fontSize, rl.White)
		if d.kind == dialogHex {
			if c, err := palette.ParseColor(d.input); err == nil {
				rl.DrawRectangle(int32(field.X+field.Width-30), int32(field.Y+4), 24, 16, c)
			}
		}
	}

	footer := "ENTER TO CONFIRM, ESC TO CANCEL"
	rl.DrawText(footer, x, int32(box.Y+box.Height-20), fontSize, rl.Gray)

	if app.status != "" && now()-app.statusAt < statusTimeout {
		rl.DrawText(app.status, x, int32(box.Y+box.Height+8), fontSize, rl.Yellow)
	}
}
