// Package palette holds the active drawing color, the swatch row and the
// recently used colors.
package palette

import (
	"image/color"
	"slices"

	"golang.org/x/image/colornames"
)

// MaxRecent bounds the recent color list.
const MaxRecent = 8

// DefaultSwatchNames is the swatch row used when the config names none.
var DefaultSwatchNames = []string{
	"black", "white", "red", "lime", "blue",
	"yellow", "orange", "purple", "pink", "saddlebrown",
	"gray", "dimgray", "lightgray", "skyblue", "magenta",
	"#ff0080", "#80ff00", "#0080ff",
}

// Palette is the editor's color source. The zero value is not usable; call
// New.
type Palette struct {
	current  color.RGBA
	swatches []color.RGBA
	recent   []color.RGBA
}

// New returns a palette with opaque white selected. A nil swatch slice
// selects DefaultSwatches.
func New(swatches []color.RGBA) *Palette {
	if swatches == nil {
		swatches = DefaultSwatches()
	}
	return &Palette{
		current:  colornames.White,
		swatches: slices.Clone(swatches),
	}
}

// DefaultSwatches resolves DefaultSwatchNames.
func DefaultSwatches() []color.RGBA {
	out := make([]color.RGBA, 0, len(DefaultSwatchNames))
	for _, name := range DefaultSwatchNames {
		c, err := ParseColor(name)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

// CurrentColor returns the color painted by the drawing tools.
func (p *Palette) CurrentColor() color.RGBA {
	return p.current
}

// SetColor replaces the RGB channels and keeps the current alpha.
func (p *Palette) SetColor(r, g, b uint8) {
	p.SetRGBA(color.RGBA{R: r, G: g, B: b, A: p.current.A})
}

// SetRGBA replaces the current color, alpha included.
func (p *Palette) SetRGBA(c color.RGBA) {
	if c == p.current {
		return
	}
	p.remember(p.current)
	p.current = c
}

// SetAlpha replaces the alpha channel only.
func (p *Palette) SetAlpha(a uint8) {
	p.current.A = a
}

// Swatches returns the swatch row. Callers must not modify it.
func (p *Palette) Swatches() []color.RGBA {
	return p.swatches
}

// SelectSwatch makes swatch i current. Out of range indices are ignored.
func (p *Palette) SelectSwatch(i int) bool {
	if i < 0 || i >= len(p.swatches) {
		return false
	}
	p.SetRGBA(p.swatches[i])
	return true
}

// Recent returns previously selected colors, newest first.
func (p *Palette) Recent() []color.RGBA {
	return p.recent
}

func (p *Palette) remember(c color.RGBA) {
	if i := slices.Index(p.recent, c); i >= 0 {
		p.recent = slices.Delete(p.recent, i, i+1)
	}
	p.recent = slices.Insert(p.recent, 0, c)
	if len(p.recent) > MaxRecent {
		p.recent = p.recent[:MaxRecent]
	}
}
