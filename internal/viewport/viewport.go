// Package viewport maps between screen coordinates and grid cells.
package viewport

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	MinZoom     = 2.0
	MaxZoom     = 50.0
	DefaultZoom = 16.0
)

// Viewport holds the zoom level (screen pixels per cell) and the screen
// position of cell (0,0) for a grid of a given side length.
type Viewport struct {
	zoom     float64
	origin   mgl64.Vec2
	gridSize int
}

// New returns a viewport for a gridSize grid with the origin at (0,0).
func New(gridSize int, zoom float64) *Viewport {
	return &Viewport{
		zoom:     clampZoom(zoom),
		gridSize: gridSize,
	}
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return DefaultZoom
	}
	return mgl64.Clamp(z, MinZoom, MaxZoom)
}

// Zoom returns screen pixels per cell.
func (v *Viewport) Zoom() float64 {
	return v.zoom
}

// Origin returns the screen position of cell (0,0).
func (v *Viewport) Origin() mgl64.Vec2 {
	return v.origin
}

// SetOrigin moves cell (0,0) to o.
func (v *Viewport) SetOrigin(o mgl64.Vec2) {
	v.origin = o
}

func (v *Viewport) GridSize() int {
	return v.gridSize
}

// SetGridSize updates the side length of the viewed grid.
func (v *Viewport) SetGridSize(n int) {
	v.gridSize = n
}

// extent is the on-screen side length of the whole canvas.
func (v *Viewport) extent() float64 {
	return float64(v.gridSize) * v.zoom
}

// ScreenToCell returns the cell coordinates under screen point p without
// bounds checking. Points off the canvas give cells outside the grid.
func (v *Viewport) ScreenToCell(p mgl64.Vec2) image.Point {
	return image.Pt(v.cellAt(p.X(), v.origin.X()), v.cellAt(p.Y(), v.origin.Y()))
}

// cellAt is the cell index of screen coordinate p on one axis with the
// origin at o.
func (v *Viewport) cellAt(p, o float64) int {
	return int(math.Floor((p - o) / v.zoom))
}

// ScreenToGrid returns the cell under screen point p. ok is false when p lies
// outside the rendered canvas.
func (v *Viewport) ScreenToGrid(p mgl64.Vec2) (pt image.Point, ok bool) {
	pt = v.ScreenToCell(p)
	if pt.X < 0 || pt.Y < 0 || pt.X >= v.gridSize || pt.Y >= v.gridSize {
		return image.Point{}, false
	}
	return pt, true
}

// GridToScreen returns the screen position of the top-left corner of cell pt.
func (v *Viewport) GridToScreen(pt image.Point) mgl64.Vec2 {
	return v.origin.Add(mgl64.Vec2{float64(pt.X), float64(pt.Y)}.Mul(v.zoom))
}

// CellRect returns the top-left corner and side length of cell pt on screen.
func (v *Viewport) CellRect(pt image.Point) (mgl64.Vec2, float64) {
	return v.GridToScreen(pt), v.zoom
}

// CanvasRect returns the top-left corner and side length of the whole canvas
// on screen.
func (v *Viewport) CanvasRect() (mgl64.Vec2, float64) {
	return v.origin, v.extent()
}

// zoomStep is proportional to the current zoom so the perceived change is
// the same at every magnification.
func zoomStep(z float64) float64 {
	return math.Max(1, z*0.1)
}

// ZoomAt zooms in (direction > 0) or out (direction < 0) keeping the cell
// under screen point p fixed. It reports whether the zoom level changed.
func (v *Viewport) ZoomAt(direction int, p mgl64.Vec2) bool {
	if direction == 0 {
		return false
	}
	old := v.zoom
	step := zoomStep(old)
	if direction < 0 {
		step = -step
	}
	next := clampZoom(old + step)
	if next == old {
		return false
	}
	want := v.ScreenToCell(p)
	// origin' = p - c*next, c being p in fractional cell units
	c := mgl64.Vec2{(p.X() - v.origin.X()) / old, (p.Y() - v.origin.Y()) / old}
	o := p.Sub(c.Mul(next))
	v.zoom = next
	v.origin = mgl64.Vec2{v.settle(p.X(), o.X(), want.X), v.settle(p.Y(), o.Y(), want.Y)}
	return true
}

// maxNudges bounds settle; the step doubles each time, so this covers any
// rounding error far below one screen pixel.
const maxNudges = 64

// settle moves origin coordinate o until screen coordinate p falls in cell
// want again. Points on a cell edge can round into the neighbour after a
// fractional zoom.
func (v *Viewport) settle(p, o float64, want int) float64 {
	m := math.Max(1, math.Max(math.Abs(p), math.Abs(o)))
	step := math.Nextafter(m, math.Inf(1)) - m
	for i := 0; i < maxNudges; i++ {
		got := v.cellAt(p, o)
		switch {
		case got < want:
			o -= step
		case got > want:
			o += step
		default:
			return o
		}
		step *= 2
	}
	return o
}

// Pan moves the canvas by delta screen pixels. The canvas may be dragged
// fully off screen.
func (v *Viewport) Pan(delta mgl64.Vec2) {
	v.origin = v.origin.Add(delta)
}

// Center places the canvas in the middle of a screen area of the given
// size, with the area's top-left corner at offset.
func (v *Viewport) Center(offset mgl64.Vec2, width, height float64) {
	ext := v.extent()
	v.origin = offset.Add(mgl64.Vec2{(width - ext) / 2, (height - ext) / 2})
}

// Fit picks the largest zoom at which the canvas fits in a width x height
// area, then centers it.
func (v *Viewport) Fit(offset mgl64.Vec2, width, height float64) {
	if v.gridSize > 0 {
		v.zoom = clampZoom(math.Floor(math.Min(width, height) / float64(v.gridSize)))
	}
	v.Center(offset, width, height)
}
