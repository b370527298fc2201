package project

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"time"

	"github.com/ha1tch/deluxepixel/internal/grid"
	"github.com/ha1tch/deluxepixel/internal/logging"
)

const (
	// BundleExt is the extension of zipped project files.
	BundleExt = ".ddp"

	// BundleVersion is written into every manifest.
	BundleVersion = 1

	manifestName = "project.json"
	canvasName   = "canvas.png"
)

// Manifest is project.json inside a bundle.
type Manifest struct {
	Version      int       `json:"version"`
	Name         string    `json:"name"`
	Created      time.Time `json:"created"`
	Modified     time.Time `json:"modified"`
	GridSize     int       `json:"grid_size"`
	Palette      []Color   `json:"palette"`
	CurrentColor Color     `json:"current_color"`
	Tool         string    `json:"tool,omitempty"`
}

// Bundle is a project: the canvas plus the editor state saved with it.
type Bundle struct {
	Manifest
	Grid *grid.Grid
}

// NewBundle wraps g with a fresh manifest.
func NewBundle(name string, g *grid.Grid, swatches []color.RGBA, current color.RGBA) *Bundle {
	now := time.Now().UTC().Truncate(time.Second)
	b := &Bundle{
		Manifest: Manifest{
			Version:      BundleVersion,
			Name:         name,
			Created:      now,
			Modified:     now,
			GridSize:     g.Size(),
			CurrentColor: colorOf(current),
		},
		Grid: g,
	}
	b.SetSwatches(swatches)
	return b
}

// SetSwatches replaces the saved swatch row.
func (b *Bundle) SetSwatches(swatches []color.RGBA) {
	b.Palette = make([]Color, len(swatches))
	for i, c := range swatches {
		b.Palette[i] = colorOf(c)
	}
}

// Swatches returns the saved swatch row.
func (b *Bundle) Swatches() []color.RGBA {
	out := make([]color.RGBA, len(b.Palette))
	for i, c := range b.Palette {
		out[i] = c.RGBA()
	}
	return out
}

// WriteBundle writes b as a zip archive holding project.json and
// canvas.png.
func WriteBundle(w io.Writer, b *Bundle) error {
	if b.Grid == nil {
		return fmt.Errorf("%w: bundle has no canvas", ErrFormat)
	}
	b.GridSize = b.Grid.Size()

	zw := zip.NewWriter(w)

	data, err := json.MarshalIndent(b.Manifest, "", "  ")
	if err != nil {
		return err
	}
	mf, err := zw.Create(manifestName)
	if err != nil {
		return err
	}
	if _, err := mf.Write(data); err != nil {
		return err
	}

	cf, err := zw.Create(canvasName)
	if err != nil {
		return err
	}
	if err := EncodePNG(cf, b.Grid); err != nil {
		return err
	}
	return zw.Close()
}

// ReadBundle reads a bundle from a zip archive.
func ReadBundle(r io.ReaderAt, size int64) (*Bundle, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	var manifest, canvas *zip.File
	for _, f := range zr.File {
		switch f.Name {
		case manifestName:
			manifest = f
		case canvasName:
			canvas = f
		}
	}
	if manifest == nil {
		return nil, fmt.Errorf("%w: %s not found in archive", ErrFormat, manifestName)
	}
	if canvas == nil {
		return nil, fmt.Errorf("%w: %s not found in archive", ErrFormat, canvasName)
	}

	b := &Bundle{}
	if err := readZipped(manifest, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&b.Manifest)
	}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, manifestName, err)
	}
	if b.Version > BundleVersion {
		return nil, fmt.Errorf("%w: bundle version %d is newer than %d", ErrFormat, b.Version, BundleVersion)
	}
	if err := readZipped(canvas, func(r io.Reader) error {
		g, err := DecodeImage(r)
		b.Grid = g
		return err
	}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, canvasName, err)
	}
	b.GridSize = b.Grid.Size()
	return b, nil
}

func readZipped(f *zip.File, read func(io.Reader) error) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return read(rc)
}

// SaveBundle writes b to path, stamping the modification time.
func SaveBundle(path string, b *Bundle) error {
	b.Modified = time.Now().UTC().Truncate(time.Second)
	if b.Created.IsZero() {
		b.Created = b.Modified
	}
	var buf bytes.Buffer
	if err := WriteBundle(&buf, b); err != nil {
		return fmt.Errorf("save project %s: %w", path, err)
	}
	if err := writeFile(path, func(w io.Writer) error {
		_, err := buf.WriteTo(w)
		return err
	}); err != nil {
		return err
	}
	logging.Logger().Info("project saved", "path", path, "size", b.GridSize)
	return nil
}

// OpenBundle reads the bundle at path.
func OpenBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := ReadBundle(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open project %s: %w", path, err)
	}
	logging.Logger().Info("project opened", "path", path, "size", b.GridSize)
	return b, nil
}
