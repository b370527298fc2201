package project

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/ha1tch/deluxepixel/internal/grid"
	"github.com/ha1tch/deluxepixel/internal/logging"
)

// Format is an export image format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
)

const (
	// MaxExportSide bounds the pixel size of an exported image.
	MaxExportSide = 8192

	jpegQuality = 95
)

// ParseFormat resolves a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Scaled returns g enlarged by an integer factor with nearest-neighbor
// sampling so cells stay sharp.
func Scaled(g *grid.Grid, scale int) (*image.NRGBA, error) {
	if scale < 1 || g.Size()*scale > MaxExportSide {
		return nil, fmt.Errorf("export scale %d out of range for %dx%d canvas", scale, g.Size(), g.Size())
	}
	src := g.ToNRGBA()
	if scale == 1 {
		return src, nil
	}
	side := g.Size() * scale
	dst := image.NewNRGBA(image.Rect(0, 0, side, side))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// flatten composites img over opaque white.
func flatten(img image.Image) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return out
}

// Export writes g scaled by scale in format f.
func Export(w io.Writer, g *grid.Grid, f Format, scale int) error {
	img, err := Scaled(g, scale)
	if err != nil {
		return err
	}
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		// JPEG has no alpha channel.
		return jpeg.Encode(w, flatten(img), &jpeg.Options{Quality: jpegQuality})
	case FormatBMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

// ExportFile writes g to path in the format named by its extension.
func ExportFile(path string, g *grid.Grid, scale int) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := writeFile(path, func(w io.Writer) error {
		return Export(w, g, f, scale)
	}); err != nil {
		return err
	}
	logging.Logger().Info("artwork exported", "path", path, "format", f, "scale", scale)
	return nil
}
