// Package grid provides the square RGBA cell store edited by the tools.
package grid

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

const (
	MinSize = 2
	MaxSize = 512
)

// Transparent is the value of every cell of a fresh or cleared grid.
var Transparent = color.RGBA{}

// ErrInvalidSize is returned when a side length falls outside [MinSize, MaxSize].
var ErrInvalidSize = errors.New("invalid grid size")

// OutOfBoundsError is the panic value of Cell when called with coordinates
// outside the grid. Callers are expected to check In first.
type OutOfBoundsError struct {
	X, Y int
	Size int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("cell (%d,%d) out of bounds for %dx%d grid", e.X, e.Y, e.Size, e.Size)
}

// Grid is a square, row-major store of RGBA cells.
type Grid struct {
	size  int
	cells []color.RGBA
}

func checkSize(size int) error {
	if size < MinSize || size > MaxSize {
		return fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidSize, size, MinSize, MaxSize)
	}
	return nil
}

// New creates a transparent grid with the given side length.
func New(size int) (*Grid, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	return &Grid{
		size:  size,
		cells: make([]color.RGBA, size*size),
	}, nil
}

// Size returns the side length of the grid.
func (g *Grid) Size() int {
	return g.size
}

// Pixels returns the row-major cell slice. Callers must not modify it.
func (g *Grid) Pixels() []color.RGBA {
	return g.cells
}

// In reports whether (x, y) addresses a cell.
func (g *Grid) In(x, y int) bool {
	return x >= 0 && x < g.size && y >= 0 && y < g.size
}

// Set overwrites a cell, alpha included. Out of range coordinates are ignored.
func (g *Grid) Set(x, y int, c color.RGBA) {
	if !g.In(x, y) {
		return
	}
	g.cells[y*g.size+x] = c
}

// Cell returns the color at (x, y). It panics with *OutOfBoundsError when the
// coordinates are outside the grid.
func (g *Grid) Cell(x, y int) color.RGBA {
	if !g.In(x, y) {
		panic(&OutOfBoundsError{X: x, Y: y, Size: g.size})
	}
	return g.cells[y*g.size+x]
}

// Fill sets every cell to c.
func (g *Grid) Fill(c color.RGBA) {
	for i := range g.cells {
		g.cells[i] = c
	}
}

// Clear makes every cell transparent.
func (g *Grid) Clear() {
	g.Fill(Transparent)
}

// Resize replaces the grid content with a newSize grid holding the old
// content centered. Content falling outside the new bounds is lost.
// On error the grid is left untouched.
func (g *Grid) Resize(newSize int) error {
	if err := checkSize(newSize); err != nil {
		return err
	}
	cells := make([]color.RGBA, newSize*newSize)
	blitCentered(cells, newSize, g.cells, g.size, g.size)
	g.size = newSize
	g.cells = cells
	return nil
}

// blitCentered copies a srcW x srcH row-major block into a dstSize square,
// offset by (dstSize - src) / 2 on each axis. Only the overlap is copied.
func blitCentered(dst []color.RGBA, dstSize int, src []color.RGBA, srcW, srcH int) {
	offX := (dstSize - srcW) / 2
	offY := (dstSize - srcH) / 2
	for sy := 0; sy < srcH; sy++ {
		dy := sy + offY
		if dy < 0 || dy >= dstSize {
			continue
		}
		for sx := 0; sx < srcW; sx++ {
			dx := sx + offX
			if dx < 0 || dx >= dstSize {
				continue
			}
			dst[dy*dstSize+dx] = src[sy*srcW+sx]
		}
	}
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	cells := make([]color.RGBA, len(g.cells))
	copy(cells, g.cells)
	return &Grid{size: g.size, cells: cells}
}

// CopyFrom restores the content of src into g. Both grids must have the
// same size; a mismatch returns ErrInvalidSize and leaves g unchanged.
func (g *Grid) CopyFrom(src *Grid) error {
	if src.size != g.size {
		return fmt.Errorf("%w: copy %d into %d", ErrInvalidSize, src.size, g.size)
	}
	copy(g.cells, src.cells)
	return nil
}

// Equal reports whether both grids have the same size and cells.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.size != other.size {
		return false
	}
	for i, c := range g.cells {
		if other.cells[i] != c {
			return false
		}
	}
	return true
}

// ColorModel implements image.Image. Cells hold straight alpha, so the
// image view is non-premultiplied.
func (g *Grid) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (g *Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.size, g.size)
}

// At implements image.Image. Unlike Cell it returns transparent outside
// the grid.
func (g *Grid) At(x, y int) color.Color {
	if !g.In(x, y) {
		return color.NRGBA{}
	}
	c := g.cells[y*g.size+x]
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// ToNRGBA copies the grid into a new *image.NRGBA.
func (g *Grid) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(g.Bounds())
	for i, c := range g.cells {
		o := i * 4
		img.Pix[o+0] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = c.A
	}
	return img
}

// FromImage builds a square grid whose side is the larger image dimension
// (at least MinSize), with the image centered the same way Resize centers
// old content. Images larger than MaxSize return ErrInvalidSize.
func FromImage(img image.Image) (*Grid, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	side := max(w, h, MinSize)
	g, err := New(side)
	if err != nil {
		return nil, err
	}

	// Non-premultiplied sources are copied byte for byte; a round trip
	// through premultiplied color would lose low-alpha channels.
	src, ok := img.(*image.NRGBA)
	if !ok {
		src = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)
	}
	sb := src.Bounds()

	cells := make([]color.RGBA, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := src.PixOffset(sb.Min.X+x, sb.Min.Y+y)
			cells[y*w+x] = color.RGBA{R: src.Pix[o], G: src.Pix[o+1], B: src.Pix[o+2], A: src.Pix[o+3]}
		}
	}
	blitCentered(g.cells, side, cells, w, h)
	return g, nil
}
