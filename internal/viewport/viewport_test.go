package viewport

import (
	"image"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestNew_ClampsZoom(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{16, 16},
		{1, MinZoom},
		{100, MaxZoom},
		{math.NaN(), DefaultZoom},
	}
	for _, tt := range tests {
		if got := New(32, tt.in).Zoom(); got != tt.want {
			t.Errorf("New(32, %v).Zoom() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestViewport_ScreenToGrid(t *testing.T) {
	v := New(16, 10)
	v.SetOrigin(mgl64.Vec2{100, 50})

	tests := []struct {
		p      mgl64.Vec2
		want   image.Point
		wantOK bool
	}{
		{mgl64.Vec2{100, 50}, image.Pt(0, 0), true},
		{mgl64.Vec2{109.9, 59.9}, image.Pt(0, 0), true},
		{mgl64.Vec2{110, 60}, image.Pt(1, 1), true},
		{mgl64.Vec2{259.99, 209.99}, image.Pt(15, 15), true},
		{mgl64.Vec2{260, 100}, image.Point{}, false},
		{mgl64.Vec2{150, 210}, image.Point{}, false},
		{mgl64.Vec2{99.99, 60}, image.Point{}, false},
		{mgl64.Vec2{120, 49}, image.Point{}, false},
	}
	for _, tt := range tests {
		got, ok := v.ScreenToGrid(tt.p)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ScreenToGrid(%v) = %v, %v, want %v, %v", tt.p, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestViewport_GridToScreenInverse(t *testing.T) {
	v := New(8, 12)
	v.SetOrigin(mgl64.Vec2{-30, 17})
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			corner, side := v.CellRect(image.Pt(x, y))
			center := corner.Add(mgl64.Vec2{side / 2, side / 2})
			got, ok := v.ScreenToGrid(center)
			if !ok || got != image.Pt(x, y) {
				t.Fatalf("ScreenToGrid(center of %d,%d) = %v, %v", x, y, got, ok)
			}
		}
	}
}

func TestViewport_ZoomAtKeepsCellUnderCursor(t *testing.T) {
	v := New(32, 16)
	v.SetOrigin(mgl64.Vec2{100, 50})
	p := mgl64.Vec2{100 + 5.5*16, 50 + 7.25*16}

	before, ok := v.ScreenToGrid(p)
	if !ok || before != image.Pt(5, 7) {
		t.Fatalf("ScreenToGrid(P) = %v, %v, want (5,7)", before, ok)
	}
	if !v.ZoomAt(+1, p) {
		t.Fatal("ZoomAt(+1) reported no change")
	}
	if got := v.Zoom(); math.Abs(got-17.6) > 1e-9 {
		t.Errorf("Zoom() = %v, want 17.6", got)
	}
	after, ok := v.ScreenToGrid(p)
	if !ok || after != before {
		t.Errorf("after ZoomAt ScreenToGrid(P) = %v, %v, want %v", after, ok, before)
	}
}

func TestViewport_ZoomAtSequence(t *testing.T) {
	v := New(64, 4)
	v.SetOrigin(mgl64.Vec2{13, 21})
	p := v.GridToScreen(image.Pt(20, 33)).Add(mgl64.Vec2{0.5 * v.Zoom(), 0.5 * v.Zoom()})
	want, _ := v.ScreenToGrid(p)

	dirs := []int{1, 1, 1, 1, -1, 1, 1, 1, 1, 1, 1, -1, -1, -1, 1, 1, 1, 1, 1, 1, 1, 1, -1}
	for i, d := range dirs {
		v.ZoomAt(d, p)
		if z := v.Zoom(); z < MinZoom || z > MaxZoom {
			t.Fatalf("step %d: Zoom() = %v out of range", i, z)
		}
		got, ok := v.ScreenToGrid(p)
		if !ok || got != want {
			t.Fatalf("step %d: ScreenToGrid(P) = %v, %v, want %v", i, got, ok, want)
		}
	}
}

func TestViewport_ZoomStep(t *testing.T) {
	tests := []struct {
		zoom float64
		dir  int
		want float64
	}{
		{2, 1, 3},
		{5, -1, 4},
		{20, 1, 22},
		{20, -1, 18},
		{49, 1, 50},
		{2.5, -1, 2},
		{16, 0, 16},
		{16, 7, 17.6},
	}
	for _, tt := range tests {
		v := New(16, tt.zoom)
		v.ZoomAt(tt.dir, mgl64.Vec2{})
		if got := v.Zoom(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("zoom %v dir %d: Zoom() = %v, want %v", tt.zoom, tt.dir, got, tt.want)
		}
	}
}

func TestViewport_ZoomAtBoundsNoChange(t *testing.T) {
	v := New(16, MaxZoom)
	v.SetOrigin(mgl64.Vec2{5, 5})
	if v.ZoomAt(1, mgl64.Vec2{40, 40}) {
		t.Error("ZoomAt(+1) at MaxZoom reported a change")
	}
	if v.Origin() != (mgl64.Vec2{5, 5}) {
		t.Errorf("Origin() = %v, want unchanged", v.Origin())
	}
}

func TestViewport_Pan(t *testing.T) {
	v := New(16, 10)
	v.Pan(mgl64.Vec2{-5000, 3})
	v.Pan(mgl64.Vec2{1, 1})
	if got := v.Origin(); got != (mgl64.Vec2{-4999, 4}) {
		t.Errorf("Origin() = %v, want (-4999, 4)", got)
	}
}

func TestViewport_Center(t *testing.T) {
	v := New(10, 20)
	v.Center(mgl64.Vec2{100, 40}, 400, 300)
	// canvas is 200 wide
	if got := v.Origin(); got != (mgl64.Vec2{200, 90}) {
		t.Errorf("Origin() = %v, want (200, 90)", got)
	}
	corner, side := v.CanvasRect()
	if corner != v.Origin() || side != 200 {
		t.Errorf("CanvasRect() = %v, %v", corner, side)
	}
}

func TestViewport_Fit(t *testing.T) {
	v := New(32, 2)
	v.Fit(mgl64.Vec2{}, 800, 600)
	if got := v.Zoom(); got != 18 {
		t.Errorf("Zoom() = %v, want 18", got)
	}
	v.SetGridSize(512)
	v.Fit(mgl64.Vec2{}, 800, 600)
	if got := v.Zoom(); got != MinZoom {
		t.Errorf("Zoom() = %v, want %v", got, MinZoom)
	}
}

func TestViewport_ScreenToCellUnbounded(t *testing.T) {
	v := New(4, 10)
	v.SetOrigin(mgl64.Vec2{100, 100})
	tests := []struct {
		p    mgl64.Vec2
		want image.Point
	}{
		{mgl64.Vec2{105, 105}, image.Pt(0, 0)},
		{mgl64.Vec2{99, 100}, image.Pt(-1, 0)},
		{mgl64.Vec2{145, 100}, image.Pt(4, 0)},
		{mgl64.Vec2{80, 60}, image.Pt(-2, -4)},
	}
	for _, tt := range tests {
		if got := v.ScreenToCell(tt.p); got != tt.want {
			t.Errorf("ScreenToCell(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestViewport_ZoomAtCellEdge(t *testing.T) {
	tests := []struct {
		zoom   float64
		origin mgl64.Vec2
		dir    int
		p      mgl64.Vec2
		want   image.Point
	}{
		{11, mgl64.Vec2{}, 1, mgl64.Vec2{11, 11}, image.Pt(1, 1)},
		{11, mgl64.Vec2{}, -1, mgl64.Vec2{11, 11}, image.Pt(1, 1)},
		{7, mgl64.Vec2{7, 14}, 1, mgl64.Vec2{21, 35}, image.Pt(2, 3)},
		{13, mgl64.Vec2{35, 0}, 1, mgl64.Vec2{100, 39}, image.Pt(5, 3)},
		{3, mgl64.Vec2{}, 1, mgl64.Vec2{0, 0}, image.Pt(0, 0)},
		{2.5, mgl64.Vec2{}, -1, mgl64.Vec2{10, 5}, image.Pt(4, 2)},
	}
	for _, tt := range tests {
		v := New(64, tt.zoom)
		v.SetOrigin(tt.origin)
		if got := v.ScreenToCell(tt.p); got != tt.want {
			t.Fatalf("zoom %v: ScreenToCell(%v) = %v before zooming, want %v", tt.zoom, tt.p, got, tt.want)
		}
		v.ZoomAt(tt.dir, tt.p)
		if got := v.ScreenToCell(tt.p); got != tt.want {
			t.Errorf("zoom %v dir %d: ScreenToCell(%v) = %v after zooming, want %v", tt.zoom, tt.dir, tt.p, got, tt.want)
		}
	}
}

func TestViewport_ZoomAtWholePixels(t *testing.T) {
	for z := 2; z < 50; z++ {
		for _, dir := range []int{1, -1} {
			for o := 0; o <= 35; o += 7 {
				for px := 0; px <= 200; px++ {
					v := New(64, float64(z))
					v.SetOrigin(mgl64.Vec2{float64(o), float64(o)})
					p := mgl64.Vec2{float64(px), float64(px)}
					want := v.ScreenToCell(p)
					// A second step starts from a fractional zoom.
					for step := 0; step < 2; step++ {
						v.ZoomAt(dir, p)
						if got := v.ScreenToCell(p); got != want {
							t.Fatalf("zoom %d dir %d origin %d p %d step %d: ScreenToCell = %v, want %v",
								z, dir, o, px, step, got, want)
						}
					}
				}
			}
		}
	}
}
