// Package config loads the editor settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"

	"github.com/ha1tch/deluxepixel/internal/grid"
	"github.com/ha1tch/deluxepixel/internal/history"
	"github.com/ha1tch/deluxepixel/internal/logging"
	"github.com/ha1tch/deluxepixel/internal/palette"
	"github.com/ha1tch/deluxepixel/internal/repeat"
	"github.com/ha1tch/deluxepixel/internal/tool"
	"github.com/ha1tch/deluxepixel/internal/viewport"
)

const (
	appDir     = "deluxepixel"
	configFile = "config.toml"

	DefaultCanvasSize = 32
	DefaultSaveDir    = "~/DeluxePixel"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

type Canvas struct {
	Size     int  `toml:"size"`
	ShowGrid bool `toml:"show_grid"`
}

type View struct {
	Zoom float64 `toml:"zoom"`
}

type History struct {
	Depth int `toml:"depth"`
}

// Repeat is the hold-to-repeat timing for undo, redo and backspace.
type Repeat struct {
	InitialMS int     `toml:"initial_ms"`
	MinMS     int     `toml:"min_ms"`
	Factor    float64 `toml:"factor"`
}

type Files struct {
	SaveDir string `toml:"save_dir"`
}

type Palette struct {
	Colors []string `toml:"colors"`
}

// Config is the content of config.toml.
type Config struct {
	LogLevel string  `toml:"log_level"`
	Tool     string  `toml:"tool"`
	Canvas   Canvas  `toml:"canvas"`
	View     View    `toml:"view"`
	History  History `toml:"history"`
	Repeat   Repeat  `toml:"repeat"`
	Files    Files   `toml:"files"`
	Palette  Palette `toml:"palette"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Tool:     tool.Pencil.String(),
		Canvas:   Canvas{Size: DefaultCanvasSize, ShowGrid: true},
		View:     View{Zoom: viewport.DefaultZoom},
		History:  History{Depth: history.DefaultDepth},
		Repeat: Repeat{
			InitialMS: int(repeat.DefaultInitial / time.Millisecond),
			MinMS:     int(repeat.DefaultMin / time.Millisecond),
			Factor:    repeat.DefaultFactor,
		},
		Files:   Files{SaveDir: DefaultSaveDir},
		Palette: Palette{Colors: append([]string(nil), palette.DefaultSwatchNames...)},
	}
}

// Path returns the default location of config.toml under the user config
// directory.
func Path() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir, configFile)
}

// Load reads path over the defaults. A missing file yields the defaults;
// keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Logger().Debug("no config file, using defaults", "path", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		logging.Logger().Warn("unknown config keys", "path", path, "keys", fmt.Sprint(undecoded))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes c to path, creating the directory if needed.
func (c *Config) Save(path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
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
	return toml.NewEncoder(f).Encode(c)
}

// Validate checks every value against the range the editor accepts.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ResolveLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := tool.ParseTool(c.Tool); err != nil {
		errs = append(errs, err)
	}
	if c.Canvas.Size < grid.MinSize || c.Canvas.Size > grid.MaxSize {
		errs = append(errs, fmt.Errorf("canvas.size %d out of range %d..%d", c.Canvas.Size, grid.MinSize, grid.MaxSize))
	}
	if c.View.Zoom < viewport.MinZoom || c.View.Zoom > viewport.MaxZoom {
		errs = append(errs, fmt.Errorf("view.zoom %g out of range %g..%g", c.View.Zoom, viewport.MinZoom, viewport.MaxZoom))
	}
	if c.History.Depth < 1 {
		errs = append(errs, fmt.Errorf("history.depth must be positive, got %d", c.History.Depth))
	}
	if c.Repeat.MinMS < 1 || c.Repeat.InitialMS < c.Repeat.MinMS {
		errs = append(errs, fmt.Errorf("repeat: need 0 < min_ms <= initial_ms, got %d and %d", c.Repeat.MinMS, c.Repeat.InitialMS))
	}
	if c.Repeat.Factor <= 0 || c.Repeat.Factor > 1 {
		errs = append(errs, fmt.Errorf("repeat.factor %g out of range (0, 1]", c.Repeat.Factor))
	}
	if strings.TrimSpace(c.Files.SaveDir) == "" {
		errs = append(errs, errors.New("files.save_dir is empty"))
	}
	for _, s := range c.Palette.Colors {
		if _, err := palette.ParseColor(s); err != nil {
			errs = append(errs, fmt.Errorf("palette.colors: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// SaveDir returns files.save_dir with a leading ~ expanded.
func (c *Config) SaveDir() (string, error) {
	dir, err := homedir.Expand(strings.TrimSpace(c.Files.SaveDir))
	if err != nil {
		return "", fmt.Errorf("files.save_dir: %w", err)
	}
	return filepath.Clean(dir), nil
}

// Swatches resolves palette.colors. An empty list gives the default row.
func (c *Config) Swatches() ([]color.RGBA, error) {
	if len(c.Palette.Colors) == 0 {
		return palette.DefaultSwatches(), nil
	}
	out := make([]color.RGBA, 0, len(c.Palette.Colors))
	for _, s := range c.Palette.Colors {
		col, err := palette.ParseColor(s)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

// StartTool returns the tool selected at startup.
func (c *Config) StartTool() (tool.Tool, error) {
	return tool.ParseTool(c.Tool)
}

// RepeatTiming applies the repeat settings to r.
func (c *Config) RepeatTiming(r *repeat.Repeater) {
	r.Initial = time.Duration(c.Repeat.InitialMS) * time.Millisecond
	r.Min = time.Duration(c.Repeat.MinMS) * time.Millisecond
	r.Factor = c.Repeat.Factor
}
