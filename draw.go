package main

import (
	"fmt"
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ha1tch/deluxepixel/internal/palette"
)

var (
	panelColor  = rl.Color{50, 50, 50, 255}
	buttonColor = rl.Color{70, 70, 70, 255}
	hoverColor  = rl.Color{80, 80, 80, 255}
	activeColor = rl.Color{100, 100, 150, 255}
	borderColor = rl.Color{90, 90, 90, 255}
)

const (
	swatchY = 410
	recentY = 575
)

func swatchRect(i int) rl.Rectangle {
	return rl.Rectangle{X: float32(10 + (i%3)*25), Y: swatchY + float32(i/3)*25, Width: 20, Height: 20}
}

func recentRect(i int) rl.Rectangle {
	return rl.Rectangle{X: float32(10 + (i%4)*20), Y: recentY + float32(i/4)*20, Width: 16, Height: 16}
}

func toRect(corner mgl64.Vec2, w, h float64) rl.Rectangle {
	return rl.Rectangle{X: float32(corner[0]), Y: float32(corner[1]), Width: float32(w), Height: float32(h)}
}

func drawButton(btn Button) {
	color := buttonColor
	if btn.selected {
		color = activeColor
	} else if btn.hover {
		color = hoverColor
	}
	rl.DrawRectangleRec(btn.rect, color)
	rl.DrawRectangleLinesEx(btn.rect, 1, borderColor)

	text := rl.White
	if btn.disabled {
		text = rl.Gray
	}
	textW := rl.MeasureText(btn.text, fontSize)
	textX := int32(btn.rect.X + btn.rect.Width/2 - float32(textW)/2)
	textY := int32(btn.rect.Y + btn.rect.Height/2 - 4)
	rl.DrawText(btn.text, textX, textY, fontSize, text)
}

// Draw application
func (app *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{40, 40, 40, 255})

	app.drawCanvas()
	app.drawLeftPanel()
	app.drawRightPanel()
	app.drawTopBar()
	if app.dialog != nil {
		app.drawDialog()
	}

	rl.EndDrawing()
}

func (app *App) drawCanvas() {
	area := canvasArea()
	rl.BeginScissorMode(int32(area.X), int32(area.Y), int32(area.Width), int32(area.Height))
	defer rl.EndScissorMode()

	g := app.ed.Grid()
	view := app.ed.View()
	rl.UpdateTexture(app.canvasTex, g.Pixels())

	corner, side := view.CanvasRect()
	dst := toRect(corner, side, side)
	n := float32(g.Size())

	rl.DrawTexturePro(app.checkerTex,
		rl.Rectangle{Width: n * 2, Height: n * 2}, dst, rl.Vector2{}, 0, rl.White)
	rl.DrawTexturePro(app.canvasTex,
		rl.Rectangle{Width: n, Height: n}, dst, rl.Vector2{}, 0, rl.White)

	// Cell outlines, skipped when cells are too small to see them
	if app.ed.ShowGrid() && view.Zoom() >= 4 {
		lineColor := rl.Color{0, 0, 0, 60}
		for i := 0; i <= g.Size(); i++ {
			p := view.GridToScreen(image.Pt(i, 0))
			q := view.GridToScreen(image.Pt(i, g.Size()))
			rl.DrawLine(int32(p[0]), int32(p[1]), int32(q[0]), int32(q[1]), lineColor)
			p = view.GridToScreen(image.Pt(0, i))
			q = view.GridToScreen(image.Pt(g.Size(), i))
			rl.DrawLine(int32(p[0]), int32(p[1]), int32(q[0]), int32(q[1]), lineColor)
		}
	}

	// Draw canvas border
	rl.DrawRectangleLinesEx(dst, 2, rl.Color{100, 100, 100, 255})

	mousePos := rl.GetMousePosition()
	if cell, ok := app.ed.Hover(vec(mousePos)); ok && !app.isPanning && app.dialog == nil {
		c, size := view.CellRect(cell)
		rl.DrawRectangleLinesEx(toRect(c, size, size), 1, rl.White)
	}
	if anchor, ok := app.ed.Anchor(); ok {
		c, size := view.CellRect(anchor)
		rl.DrawRectangleLinesEx(toRect(c, size, size), 1, rl.Yellow)
	}

	if app.isPanning {
		rl.DrawText("HAND", int32(mousePos.X+10), int32(mousePos.Y-10), fontSize, rl.Yellow)
	} else if rl.IsKeyDown(rl.KeySpace) {
		rl.DrawText("CLICK AND DRAG TO PAN", int32(mousePos.X+10), int32(mousePos.Y+10), fontSize, rl.Yellow)
	}

	if app.magnifier {
		app.drawMagnifier(mousePos)
	}
}

// Lens showing the cells around the cursor at four times the view zoom
func (app *App) drawMagnifier(mousePos rl.Vector2) {
	cell, ok := app.ed.Hover(vec(mousePos))
	if !ok {
		return
	}
	view := app.ed.View()
	span := float32(magnifierSize / (view.Zoom() * magnifierZoom))
	src := rl.Rectangle{
		X:      float32(cell.X) + 0.5 - span/2,
		Y:      float32(cell.Y) + 0.5 - span/2,
		Width:  span,
		Height: span,
	}
	half := float32(magnifierSize / 2)
	dst := rl.Rectangle{X: mousePos.X - half, Y: mousePos.Y - half, Width: magnifierSize, Height: magnifierSize}

	rl.DrawRectangleRec(dst, rl.Color{40, 40, 40, 255})
	rl.DrawTexturePro(app.checkerTex,
		rl.Rectangle{X: src.X * 2, Y: src.Y * 2, Width: span * 2, Height: span * 2}, dst, rl.Vector2{}, 0, rl.White)
	rl.DrawTexturePro(app.canvasTex, src, dst, rl.Vector2{}, 0, rl.White)

	border := rl.Rectangle{X: dst.X - 2, Y: dst.Y - 2, Width: dst.Width + 4, Height: dst.Height + 4}
	rl.DrawRectangleLinesEx(border, 2, rl.Color{200, 200, 200, 255})
	rl.DrawLine(int32(dst.X), int32(mousePos.Y), int32(dst.X+dst.Width), int32(mousePos.Y), rl.Red)
	rl.DrawLine(int32(mousePos.X), int32(dst.Y), int32(mousePos.X), int32(dst.Y+dst.Height), rl.Red)

	label := fmt.Sprintf("%dX", magnifierZoom)
	rl.DrawText(label, int32(dst.X), int32(dst.Y+dst.Height+6), fontSize, rl.White)
}

func (app *App) drawLeftPanel() {
	sh := int32(rl.GetScreenHeight())
	rl.DrawRectangle(0, 0, leftPanel, sh, panelColor)

	rl.DrawText("DELUXE PIXEL", 10, 10, fontSize, rl.White)
	rl.DrawText("TOOLS", 10, 35, fontSize, rl.LightGray)

	mousePos := rl.GetMousePosition()
	for _, btn := range app.toolButtons {
		drawButton(btn)
	}
	for _, btn := range app.actionButtons {
		drawButton(btn)
	}
	// Tooltips last so they sit above the buttons
	for _, btn := range app.toolButtons {
		if btn.hover {
			rl.DrawText(btn.tip, int32(mousePos.X+10), int32(mousePos.Y), fontSize, rl.Yellow)
		}
	}

	rl.DrawText("COLORS", 10, swatchY-15, fontSize, rl.LightGray)
	current := app.ed.CurrentColor()
	for i, c := range app.ed.Palette().Swatches() {
		rect := swatchRect(i)
		rl.DrawRectangleRec(rect, c)
		if c == current {
			rl.DrawRectangleLinesEx(rect, 2, rl.White)
		} else {
			rl.DrawRectangleLinesEx(rect, 1, buttonColor)
		}
	}

	if recent := app.ed.Palette().Recent(); len(recent) > 0 {
		rl.DrawText("RECENT", 10, recentY-15, fontSize, rl.LightGray)
		for i, c := range recent {
			rect := recentRect(i)
			rl.DrawRectangleRec(rect, c)
			rl.DrawRectangleLinesEx(rect, 1, buttonColor)
		}
	}

	// Draw current color over a checker so alpha shows
	rl.DrawRectangle(10, 630, 20, 15, rl.LightGray)
	rl.DrawRectangle(30, 630, 20, 15, rl.Gray)
	rl.DrawRectangle(10, 645, 20, 15, rl.Gray)
	rl.DrawRectangle(30, 645, 20, 15, rl.LightGray)
	rl.DrawRectangle(10, 630, 40, 30, current)
	rl.DrawRectangleLines(10, 630, 40, 30, rl.White)
}

func (app *App) drawRightPanel() {
	sw := int32(rl.GetScreenWidth())
	sh := int32(rl.GetScreenHeight())
	rl.DrawRectangle(sw-rightPanel, 0, rightPanel, sh, panelColor)
	rl.DrawText("COLOR", sw-rightPanel+10, 20, fontSize, rl.White)

	sv, hue, alpha := pickerRects()
	c := app.pickerColor()

	// Saturation across, value down, drawn as vertical strips
	const strip = 4
	for x := float32(0); x < sv.Width; x += strip {
		s := float64(x / sv.Width)
		top := palette.FromHSV(app.hue, s, 1, 255)
		rl.DrawRectangleGradientV(int32(sv.X+x), int32(sv.Y), strip, int32(sv.Height), top, rl.Black)
	}
	mx := sv.X + float32(app.sat)*sv.Width
	my := sv.Y + float32(1-app.val)*sv.Height
	rl.DrawCircleLines(int32(mx), int32(my), 5, rl.White)
	rl.DrawRectangleLinesEx(sv, 1, borderColor)

	for x := float32(0); x < hue.Width; x += strip {
		h := float64(x / hue.Width)
		rl.DrawRectangle(int32(hue.X+x), int32(hue.Y), strip, int32(hue.Height), palette.FromHSV(h, 1, 1, 255))
	}
	hx := hue.X + float32(app.hue)*hue.Width
	rl.DrawRectangle(int32(hx-1), int32(hue.Y-2), 3, int32(hue.Height+4), rl.White)
	rl.DrawRectangleLinesEx(hue, 1, borderColor)

	opaque := c
	opaque.A = 255
	faded := c
	faded.A = 0
	rl.DrawRectangleRec(alpha, rl.Gray)
	rl.DrawRectangleGradientH(int32(alpha.X), int32(alpha.Y), int32(alpha.Width), int32(alpha.Height), faded, opaque)
	ax := alpha.X + float32(c.A)/255*alpha.Width
	rl.DrawRectangle(int32(ax-1), int32(alpha.Y-2), 3, int32(alpha.Height+4), rl.White)
	rl.DrawRectangleLinesEx(alpha, 1, borderColor)

	y := int32(alpha.Y + alpha.Height + 14)
	x := int32(sv.X)
	rl.DrawRectangle(x, y, 40, 30, c)
	rl.DrawRectangleLines(x, y, 40, 30, rl.White)
	rl.DrawText(palette.Hex(c), x+50, y+4, fontSize, rl.White)
	rl.DrawText(fmt.Sprintf("R%d G%d B%d A%d", c.R, c.G, c.B, c.A), x+50, y+18, fontSize, rl.LightGray)

	help := []string{
		"KEYS",
		"P E F I L R C  TOOLS",
		"1-9  SWATCH",
		"H  HEX COLOR",
		"G  GRID   M  MAGNIFIER",
		"HOME  FIT   F11  FULLSCREEN",
		"SPACE/MIDDLE DRAG  PAN",
		"CTRL+Z/Y  UNDO/REDO",
		"CTRL+S  SAVE  +SHIFT PROJECT",
		"CTRL+O  OPEN  CTRL+E  EXPORT",
		"CTRL+R  RESIZE  CTRL+N  CLEAR",
		"CTRL+C/V  COPY/PASTE COLOR",
	}
	y += 50
	for i, line := range help {
		color := rl.Gray
		if i == 0 {
			color = rl.LightGray
		}
		rl.DrawText(line, x, y+int32(i)*14, fontSize, color)
	}
}

func (app *App) drawTopBar() {
	sw := int32(rl.GetScreenWidth())
	rl.DrawRectangle(leftPanel, 0, sw-leftPanel-rightPanel, topBar, rl.Color{60, 60, 60, 255})

	g := app.ed.Grid()
	cellInfo := ""
	if cell, ok := app.ed.Hover(vec(rl.GetMousePosition())); ok {
		cellInfo = fmt.Sprintf(" | CELL: %d,%d", cell.X, cell.Y)
	}
	cur, total := app.ed.Step()
	info := fmt.Sprintf("ZOOM: %.0fX | SIZE: %dX%d | TOOL: %s | HISTORY: %d/%d%s",
		app.ed.View().Zoom(), g.Size(), g.Size(), app.ed.Tool(), cur, total, cellInfo)
	rl.DrawText(info, leftPanel+10, 12, fontSize, rl.White)

	if app.status != "" && now()-app.statusAt < statusTimeout {
		rl.DrawText(app.status, leftPanel+10, 30, fontSize, rl.Yellow)
	}
}
