package project

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"

	"github.com/ha1tch/deluxepixel/internal/grid"
	"github.com/ha1tch/deluxepixel/internal/logging"
)

// EncodePNG writes g as a PNG with one image pixel per cell.
func EncodePNG(w io.Writer, g *grid.Grid) error {
	return png.Encode(w, g.ToNRGBA())
}

// DecodeImage reads a PNG, JPEG or BMP image and builds a square grid from
// it, centering non-square content.
func DecodeImage(r io.Reader) (*grid.Grid, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	g, err := grid.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%s image: %w", format, err)
	}
	return g, nil
}

// SavePNG writes g to path as a PNG.
func SavePNG(path string, g *grid.Grid) error {
	return writeFile(path, func(w io.Writer) error {
		return EncodePNG(w, g)
	})
}

// SaveJSON writes g to path as a JSON dump.
func SaveJSON(path string, g *grid.Grid) error {
	return writeFile(path, func(w io.Writer) error {
		return Encode(w, g)
	})
}

// Load reads artwork from path, choosing the reader by extension: .json
// for a pixel dump, .ddp for a project bundle, anything else as an image.
func Load(path string) (*grid.Grid, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == BundleExt {
		b, err := OpenBundle(path)
		if err != nil {
			return nil, err
		}
		return b.Grid, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var g *grid.Grid
	if ext == ".json" {
		g, err = Decode(f)
	} else {
		g, err = DecodeImage(f)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	logging.Logger().Info("artwork loaded", "path", path, "size", g.Size())
	return g, nil
}

// writeFile creates path, runs write and closes the file, reporting the
// first error.
func writeFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
