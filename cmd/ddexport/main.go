// Command ddexport converts Deluxe Pixel artwork between formats without
// opening a window.
//
//	ddexport -in art.json -out art.png -scale 8
//	ddexport -in art.png -out art.ddp
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ha1tch/deluxepixel/internal/grid"
	"github.com/ha1tch/deluxepixel/internal/logging"
	"github.com/ha1tch/deluxepixel/internal/palette"
	"github.com/ha1tch/deluxepixel/internal/project"
	"github.com/ha1tch/deluxepixel/internal/version"
)

var errUsage = errors.New("usage")

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ddexport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "input artwork (.json, .png, .jpg, .bmp or .ddp)")
	out := fs.String("out", "", "output file (.png, .jpg, .bmp, .json or .ddp)")
	scale := fs.Int("scale", 1, "integer upscale factor for image output")
	format := fs.String("format", "", "image format, overriding the -out extension (png, jpeg, bmp)")
	size := fs.Int("size", 0, "resize the canvas to this side length first, content centered")
	logLevel := fs.String("log-level", "warn", "log level (debug, info, warn, error)")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, "ddexport", version.String())
		return nil
	}
	if *in == "" || *out == "" {
		fs.Usage()
		return fmt.Errorf("%w: -in and -out are required", errUsage)
	}

	logger, err := logging.New(stderr, *logLevel)
	if err != nil {
		return err
	}
	logging.SetLogger(logger)
	defer logging.SetLogger(nil)

	g, err := project.Load(*in)
	if err != nil {
		return err
	}
	if *size != 0 {
		if err := g.Resize(*size); err != nil {
			return err
		}
	}

	switch ext := strings.ToLower(filepath.Ext(*out)); {
	case *format != "":
		var f project.Format
		f, err = project.ParseFormat(*format)
		if err == nil {
			err = writeImage(*out, g, f, *scale)
		}
	case ext == ".json":
		err = project.SaveJSON(*out, g)
	case ext == project.BundleExt:
		name := strings.TrimSuffix(filepath.Base(*out), filepath.Ext(*out))
		b := project.NewBundle(name, g, palette.DefaultSwatches(), palette.New(nil).CurrentColor())
		err = project.SaveBundle(*out, b)
	default:
		err = project.ExportFile(*out, g, *scale)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s -> %s (%dx%d)\n", *in, *out, g.Size(), g.Size())
	return nil
}

func writeImage(path string, g *grid.Grid, f project.Format, scale int) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return project.Export(file, g, f, scale)
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("ddexport: %v\n", err)
	}
}
