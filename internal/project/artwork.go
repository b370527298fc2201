package project

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ha1tch/deluxepixel/internal/grid"
	"github.com/ha1tch/deluxepixel/internal/logging"
)

// artworkExts are the files ListArtwork reports.
var artworkExts = []string{".png", ".json", BundleExt}

// NextArtworkName returns the first artwork_N (N from 1) that has neither
// a PNG nor a JSON file in dir.
func NextArtworkName(dir string) string {
	for n := 1; ; n++ {
		name := fmt.Sprintf("artwork_%d", n)
		if !exists(filepath.Join(dir, name+".png")) && !exists(filepath.Join(dir, name+".json")) {
			return name
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SaveArtwork writes g to dir as both name.png and name.json. An empty
// name picks the next free artwork_N.
func SaveArtwork(dir, name string, g *grid.Grid) (pngPath, jsonPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create save directory: %w", err)
	}
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".png"), ".json")
	if name == "" {
		name = NextArtworkName(dir)
	}
	if strings.ContainsAny(name, `/\`) {
		return "", "", fmt.Errorf("invalid artwork name %q", name)
	}

	pngPath = filepath.Join(dir, name+".png")
	jsonPath = filepath.Join(dir, name+".json")
	if err := SavePNG(pngPath, g); err != nil {
		return "", "", err
	}
	if err := SaveJSON(jsonPath, g); err != nil {
		return "", "", err
	}
	logging.Logger().Info("artwork saved", "dir", dir, "name", name, "size", g.Size())
	return pngPath, jsonPath, nil
}

// ListArtwork returns the sorted names of loadable files in dir. A missing
// directory is created and reported as empty.
func ListArtwork(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(artworkExts, strings.ToLower(filepath.Ext(e.Name()))) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}
