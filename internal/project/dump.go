// Package project reads and writes artwork: the JSON pixel dump, PNG and
// other images, the zipped project bundle, scaled exports and the save
// directory.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/ha1tch/deluxepixel/internal/grid"
)

// ErrFormat is returned for files that do not hold a valid pixel dump or
// project bundle.
var ErrFormat = errors.New("invalid project format")

// Color is one RGBA value as stored in JSON.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func colorOf(c color.RGBA) Color {
	return Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Dump is the JSON form of a grid: dimensions plus a row-major pixel list.
type Dump struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Pixels []Color `json:"pixels"`
}

// NewDump captures the content of g.
func NewDump(g *grid.Grid) *Dump {
	px := g.Pixels()
	d := &Dump{
		Width:  g.Size(),
		Height: g.Size(),
		Pixels: make([]Color, len(px)),
	}
	for i, c := range px {
		d.Pixels[i] = colorOf(c)
	}
	return d
}

// rawPixel accepts any JSON number per channel so out of range values can
// be clamped instead of rejected.
type rawPixel struct {
	R *float64 `json:"r"`
	G *float64 `json:"g"`
	B *float64 `json:"b"`
	A *float64 `json:"a"`
}

func (p rawPixel) color() (Color, bool) {
	if p.R == nil || p.G == nil || p.B == nil || p.A == nil {
		return Color{}, false
	}
	return Color{R: clampChannel(*p.R), G: clampChannel(*p.G), B: clampChannel(*p.B), A: clampChannel(*p.A)}, true
}

func clampChannel(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// UnmarshalJSON accepts pixels either as a flat row-major list or as a list
// of rows. Channel values are clamped to 0..255.
func (d *Dump) UnmarshalJSON(data []byte) error {
	var raw struct {
		Width  *int            `json:"width"`
		Height *int            `json:"height"`
		Pixels json.RawMessage `json:"pixels"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Width == nil || raw.Height == nil || raw.Pixels == nil {
		return fmt.Errorf("%w: width, height and pixels are required", ErrFormat)
	}
	w, h := *raw.Width, *raw.Height
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: bad dimensions %dx%d", ErrFormat, w, h)
	}

	var flat []rawPixel
	if err := json.Unmarshal(raw.Pixels, &flat); err != nil {
		var rows [][]rawPixel
		if err := json.Unmarshal(raw.Pixels, &rows); err != nil {
			return fmt.Errorf("%w: pixels: %v", ErrFormat, err)
		}
		if len(rows) != h {
			return fmt.Errorf("%w: %d rows, want %d", ErrFormat, len(rows), h)
		}
		flat = make([]rawPixel, 0, w*h)
		for y, row := range rows {
			if len(row) != w {
				return fmt.Errorf("%w: row %d has %d pixels, want %d", ErrFormat, y, len(row), w)
			}
			flat = append(flat, row...)
		}
	}
	if len(flat) != w*h {
		return fmt.Errorf("%w: %d pixels, want %d", ErrFormat, len(flat), w*h)
	}

	d.Width, d.Height = w, h
	d.Pixels = make([]Color, len(flat))
	for i, p := range flat {
		c, ok := p.color()
		if !ok {
			return fmt.Errorf("%w: pixel (%d,%d) is missing a channel", ErrFormat, i%w, i/w)
		}
		d.Pixels[i] = c
	}
	return nil
}

// Image returns the dump as a non-premultiplied image.
func (d *Dump) Image() (*image.NRGBA, error) {
	if d.Width <= 0 || d.Height <= 0 || len(d.Pixels) != d.Width*d.Height {
		return nil, fmt.Errorf("%w: %dx%d with %d pixels", ErrFormat, d.Width, d.Height, len(d.Pixels))
	}
	img := image.NewNRGBA(image.Rect(0, 0, d.Width, d.Height))
	for i, c := range d.Pixels {
		o := i * 4
		img.Pix[o+0] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = c.A
	}
	return img, nil
}

// Grid builds a square grid from the dump, centering non-square content.
func (d *Dump) Grid() (*grid.Grid, error) {
	img, err := d.Image()
	if err != nil {
		return nil, err
	}
	return grid.FromImage(img)
}

// Encode writes g to w as an indented JSON dump.
func Encode(w io.Writer, g *grid.Grid) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDump(g))
}

// Decode reads a JSON dump and builds a grid from it.
func Decode(r io.Reader) (*grid.Grid, error) {
	var d Dump
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		if errors.Is(err, ErrFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return d.Grid()
}
