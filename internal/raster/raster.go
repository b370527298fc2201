// Package raster enumerates the grid cells covered by the drawing tools.
//
// Shape functions return the covered cells in drawing order. Duplicates are
// allowed; painting a cell twice with the same color is harmless.
package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/ha1tch/deluxepixel/internal/grid"
)

// Line returns the cells of a Bresenham line from a to b, both endpoints
// included. The walk always starts at the lexicographically smaller endpoint
// so Line(a, b) and Line(b, a) cover the same cells.
func Line(a, b image.Point) []image.Point {
	if less(b, a) {
		a, b = b, a
	}
	dx, dy := abs(b.X-a.X), abs(b.Y-a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)

	pts := make([]image.Point, 0, max(dx, dy)+1)
	x, y := a.X, a.Y
	// err holds twice the classic error term so it stays integral.
	if dx > dy {
		err := dx
		for x != b.X {
			pts = append(pts, image.Pt(x, y))
			err -= 2 * dy
			if err < 0 {
				y += sy
				err += 2 * dx
			}
			x += sx
		}
	} else {
		err := dy
		for y != b.Y {
			pts = append(pts, image.Pt(x, y))
			err -= 2 * dx
			if err < 0 {
				x += sx
				err += 2 * dy
			}
			y += sy
		}
	}
	return append(pts, b)
}

// Rect returns the hollow outline of the box spanned by corners a and b.
// Top and bottom rows are emitted in full, the side columns strictly between
// them.
func Rect(a, b image.Point) []image.Point {
	r := image.Rectangle{Min: a, Max: b}.Canon()
	pts := make([]image.Point, 0, 2*(r.Dx()+r.Dy()+2))
	for x := r.Min.X; x <= r.Max.X; x++ {
		pts = append(pts, image.Pt(x, r.Min.Y))
	}
	if r.Max.Y != r.Min.Y {
		for x := r.Min.X; x <= r.Max.X; x++ {
			pts = append(pts, image.Pt(x, r.Max.Y))
		}
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		pts = append(pts, image.Pt(r.Min.X, y))
		if r.Max.X != r.Min.X {
			pts = append(pts, image.Pt(r.Max.X, y))
		}
	}
	return pts
}

// Radius is the rounded Euclidean distance between center and edge.
func Radius(center, edge image.Point) int {
	d := edge.Sub(center)
	return int(math.Round(math.Hypot(float64(d.X), float64(d.Y))))
}

// Circle returns the outline of the circle around center passing through
// edge, each cell once. A zero radius yields the center alone.
func Circle(center, edge image.Point) []image.Point {
	r := Radius(center, edge)
	if r == 0 {
		return []image.Point{center}
	}
	var pts []image.Point
	x, y := 0, r
	d := 1 - r
	for x <= y {
		pts = append(pts,
			center.Add(image.Pt(x, y)), center.Add(image.Pt(-x, y)),
			center.Add(image.Pt(x, -y)), center.Add(image.Pt(-x, -y)),
			center.Add(image.Pt(y, x)), center.Add(image.Pt(-y, x)),
			center.Add(image.Pt(y, -x)), center.Add(image.Pt(-y, -x)),
		)
		x++
		if d < 0 {
			d += 2*x + 1
		} else {
			y--
			d += 2*(x-y) + 1
		}
	}
	// Octant mirrors meet on the axes and diagonals.
	return dedup(pts)
}

// FloodFill repaints the 4-connected region of cells sharing the seed's
// exact color with c and returns the number of cells repainted. It does
// nothing when the seed is outside the grid or already has color c.
func FloodFill(g *grid.Grid, seed image.Point, c color.RGBA) int {
	if !g.In(seed.X, seed.Y) {
		return 0
	}
	target := g.Cell(seed.X, seed.Y)
	if target == c {
		return 0
	}

	n := 0
	stack := []image.Point{seed}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !g.In(p.X, p.Y) || g.Cell(p.X, p.Y) != target {
			continue
		}
		g.Set(p.X, p.Y, c)
		n++
		stack = append(stack,
			image.Pt(p.X+1, p.Y),
			image.Pt(p.X-1, p.Y),
			image.Pt(p.X, p.Y+1),
			image.Pt(p.X, p.Y-1),
		)
	}
	return n
}

// Paint sets every in-bounds cell of pts to c and returns how many cells
// actually changed.
func Paint(g *grid.Grid, pts []image.Point, c color.RGBA) int {
	n := 0
	for _, p := range pts {
		if !g.In(p.X, p.Y) || g.Cell(p.X, p.Y) == c {
			continue
		}
		g.Set(p.X, p.Y, c)
		n++
	}
	return n
}

// dedup returns pts with repeated cells removed, keeping first occurrences.
func dedup(pts []image.Point) []image.Point {
	seen := make(map[image.Point]struct{}, len(pts))
	out := pts[:0:0]
	for _, p := range pts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func less(a, b image.Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
