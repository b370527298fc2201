package main

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ha1tch/deluxepixel/internal/grid"
	"github.com/ha1tch/deluxepixel/internal/project"
)

func writeDump(t *testing.T, dir string) string {
	t.Helper()
	g, err := grid.New(4)
	if err != nil {
		t.Fatal(err)
	}
	g.Set(1, 2, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	path := filepath.Join(dir, "art.json")
	if err := project.SaveJSON(path, g); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_ExportScaledPNG(t *testing.T) {
	dir := t.TempDir()
	in := writeDump(t, dir)
	out := filepath.Join(dir, "art.png")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-in", in, "-out", out, "-scale", "8"}, &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v, stderr %s", err, stderr.String())
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 32 || cfg.Height != 32 {
		t.Errorf("exported size = %dx%d, want 32x32", cfg.Width, cfg.Height)
	}
	if !strings.Contains(stdout.String(), "4x4") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRun_FormatOverridesExtension(t *testing.T) {
	dir := t.TempDir()
	in := writeDump(t, dir)
	out := filepath.Join(dir, "art.img")
	var stdout, stderr bytes.Buffer
	if err := run([]string{"-in", in, "-out", out, "-format", "bmp"}, &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("BM")) {
		t.Error("output is not a BMP file")
	}
}

func TestRun_ResizeAndBundle(t *testing.T) {
	dir := t.TempDir()
	in := writeDump(t, dir)
	out := filepath.Join(dir, "art.ddp")
	var stdout, stderr bytes.Buffer
	if err := run([]string{"-in", in, "-out", out, "-size", "8"}, &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	b, err := project.OpenBundle(out)
	if err != nil {
		t.Fatal(err)
	}
	if b.Grid.Size() != 8 || b.Name != "art" {
		t.Errorf("bundle size %d, name %q", b.Grid.Size(), b.Name)
	}
	if b.Grid.Cell(3, 4).R != 200 {
		t.Error("resized content not centered")
	}
}

func TestRun_JSONFromPNG(t *testing.T) {
	dir := t.TempDir()
	in := writeDump(t, dir)
	pngPath := filepath.Join(dir, "a.png")
	back := filepath.Join(dir, "b.json")
	var stdout, stderr bytes.Buffer
	if err := run([]string{"-in", in, "-out", pngPath}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if err := run([]string{"-in", pngPath, "-out", back}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	a, err := project.Load(in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := project.Load(back)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Error("json -> png -> json changed the canvas")
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	in := writeDump(t, dir)
	tests := []struct {
		name string
		args []string
	}{
		{"missing flags", []string{"-in", in}},
		{"bad scale", []string{"-in", in, "-out", filepath.Join(dir, "x.png"), "-scale", "0"}},
		{"bad format", []string{"-in", in, "-out", filepath.Join(dir, "x.png"), "-format", "tiff"}},
		{"bad extension", []string{"-in", in, "-out", filepath.Join(dir, "x.gif")}},
		{"bad size", []string{"-in", in, "-out", filepath.Join(dir, "x.png"), "-size", "1"}},
		{"missing input", []string{"-in", filepath.Join(dir, "none.json"), "-out", filepath.Join(dir, "x.png")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if err := run(tt.args, &stdout, &stderr); err == nil {
				t.Error("run() error = nil")
			}
		})
	}

	var stdout, stderr bytes.Buffer
	err := run([]string{"-in", in}, &stdout, &stderr)
	if !errors.Is(err, errUsage) {
		t.Errorf("run() error = %v, want usage error", err)
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"-version"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout.String(), "ddexport ") {
		t.Errorf("stdout = %q", stdout.String())
	}
}
