package raster

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"mocap-pair-viewer/internal/camera"
	"mocap-pair-viewer/internal/skelmesh"
)

func pixel(fb *FrameBuffer, x, y int) [4]uint8 {
	i := (y*fb.Width + x) * 4
	return [4]uint8{fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3]}
}

func TestRenderSphereCoversCenter(t *testing.T) {
	cam := camera.New(camera.DefaultPlacement, 64, 48)
	fb := NewFrameBuffer(64, 48)
	sc := &Scene{
		Background: Background,
		Items: []Item{{
			Mesh:     skelmesh.UnitSphere(),
			World:    mgl64.Translate3D(0, 75, 0).Mul4(mgl64.Scale3D(30, 30, 30)),
			Material: JointMaterial,
		}},
	}
	n := Render(fb, cam, sc)
	if n == 0 {
		t.Fatal("no triangles drawn")
	}
	c := pixel(fb, 32, 24)
	if c[0] == Background.R && c[1] == Background.G && c[2] == Background.B {
		t.Fatalf("center pixel still background: %v", c)
	}
	// Joint material is blue-dominant.
	if c[2] <= c[0] {
		t.Errorf("center pixel not blue: %v", c)
	}
	if corner := pixel(fb, 0, 0); corner != [4]uint8{0xee, 0xee, 0xee, 0xff} {
		t.Errorf("corner = %v, want background", corner)
	}
}

func TestRenderBehindCameraSkipped(t *testing.T) {
	cam := camera.New(camera.DefaultPlacement, 32, 32)
	fb := NewFrameBuffer(32, 32)
	sc := &Scene{
		Background: Background,
		Items: []Item{{
			Mesh:     skelmesh.UnitSphere(),
			World:    mgl64.Translate3D(0, 150, 600).Mul4(mgl64.Scale3D(10, 10, 10)),
			Material: BoneMaterial,
		}},
	}
	if n := Render(fb, cam, sc); n != 0 {
		t.Errorf("drew %d triangles behind the camera", n)
	}
}

func TestRenderGrid(t *testing.T) {
	cam := camera.New(camera.DefaultPlacement, 80, 60)
	fb := NewFrameBuffer(80, 60)
	Render(fb, cam, &Scene{Background: Background, Grid: DefaultGrid()})

	lines := 0
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			if c := pixel(fb, x, y); c[0] != Background.R {
				lines++
			}
		}
	}
	if lines == 0 {
		t.Fatal("grid left no pixels")
	}
	// The grid lies below the horizon, so the top row stays clear.
	for x := 0; x < fb.Width; x++ {
		if c := pixel(fb, x, 0); c[0] != Background.R {
			t.Fatalf("grid pixel on top row at x=%d", x)
		}
	}
}

func TestDepthTest(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	near := [3]float64{-1, -1, -1}
	far := [3]float64{-5, -5, -5}
	px := [3]float64{0, 8, 0}
	py := [3]float64{0, 0, 8}
	red := Background
	red.R, red.G, red.B = 255, 0, 0
	blue := Background
	blue.R, blue.G, blue.B = 0, 0, 255

	RasterizeTriangle(fb, px, py, near, red)
	RasterizeTriangle(fb, px, py, far, blue)
	if c := pixel(fb, 1, 1); c[0] != 255 || c[2] != 0 {
		t.Errorf("far triangle overwrote near one: %v", c)
	}
}

func TestClipSegment(t *testing.T) {
	t0, t1, ok := clipSegment(-10, 5, 40, 0, 20, 10)
	if !ok {
		t.Fatal("segment crossing the viewport rejected")
	}
	if t0 != 0.25 || t1 != 0.75 {
		t.Errorf("t0,t1 = %v,%v, want 0.25,0.75", t0, t1)
	}
	if _, _, ok := clipSegment(-10, -5, 5, 0, 20, 10); ok {
		t.Error("segment outside viewport accepted")
	}
}
