package raster

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"mocap-pair-viewer/internal/camera"
	"mocap-pair-viewer/internal/mathutil"
	"mocap-pair-viewer/internal/skelmesh"
)

// Scene defaults.
var (
	Background      = color.NRGBA{0xee, 0xee, 0xee, 0xff}
	GridCenterColor = color.NRGBA{0x44, 0x44, 0x44, 0xff}
	GridLineColor   = color.NRGBA{0x88, 0x88, 0x88, 0xff}
)

// Grid describes a square ground grid on the y=0 plane.
type Grid struct {
	Size      float64
	Divisions int
}

// DefaultGrid is 800 units wide with 20 divisions.
func DefaultGrid() *Grid {
	return &Grid{Size: 800, Divisions: 20}
}

// Item is one mesh instance placed in the world.
type Item struct {
	Mesh     *skelmesh.Mesh
	World    mgl64.Mat4
	Material Material
}

// Scene is everything drawn into one viewport.
type Scene struct {
	Background color.NRGBA
	Grid       *Grid // nil disables the grid
	Items      []Item
}

// Render clears fb and draws the grid and items as seen by cam.
// Returns the number of triangles that reached the rasterizer.
func Render(fb *FrameBuffer, cam *camera.Camera, sc *Scene) int {
	fb.Clear(sc.Background)
	if sc.Grid != nil {
		drawGrid(fb, cam, sc.Grid)
	}

	lc := DefaultLightConfig(cam.Forward())
	drawn := 0

	// Scratch buffers reused across items.
	var view []mgl64.Vec3
	var world []mgl64.Vec3
	for _, it := range sc.Items {
		if it.Mesh == nil || len(it.Mesh.Positions) == 0 {
			continue
		}
		view = view[:0]
		world = world[:0]
		for _, p := range it.Mesh.Positions {
			w := mathutil.MulPoint(it.World, p)
			world = append(world, w)
			view = append(view, cam.ToView(w))
		}

		for _, tri := range it.Mesh.Triangles {
			a, b, c := tri[0], tri[1], tri[2]
			// Triangles touching the near plane are dropped; primitives are small.
			if view[a][2] > -cam.Near || view[b][2] > -cam.Near || view[c][2] > -cam.Near {
				continue
			}
			n := world[b].Sub(world[a]).Cross(world[c].Sub(world[a]))
			if n.Len() < 1e-12 {
				continue
			}
			shade := lc.ComputeShade(n.Normalize(), it.Material)
			col := lc.ShadeColor(it.Material.Color, shade)

			var px, py, pz [3]float64
			for k, vi := range tri {
				px[k], py[k] = cam.ProjectView(view[vi])
				pz[k] = view[vi][2]
			}
			RasterizeTriangle(fb, px, py, pz, col)
			drawn++
		}
	}
	return drawn
}

func drawGrid(fb *FrameBuffer, cam *camera.Camera, g *Grid) {
	if g.Divisions <= 0 || g.Size <= 0 {
		return
	}
	half := g.Size / 2
	step := g.Size / float64(g.Divisions)
	for i := 0; i <= g.Divisions; i++ {
		k := -half + float64(i)*step
		c := GridLineColor
		if i*2 == g.Divisions {
			c = GridCenterColor
		}
		drawWorldLine(fb, cam, mgl64.Vec3{-half, 0, k}, mgl64.Vec3{half, 0, k}, c)
		drawWorldLine(fb, cam, mgl64.Vec3{k, 0, -half}, mgl64.Vec3{k, 0, half}, c)
	}
}

// drawWorldLine clips the segment against the near plane in camera space
// before projecting it.
func drawWorldLine(fb *FrameBuffer, cam *camera.Camera, a, b mgl64.Vec3, c color.NRGBA) {
	va, vb := cam.ToView(a), cam.ToView(b)
	lim := -cam.Near
	if va[2] > lim && vb[2] > lim {
		return
	}
	if va[2] > lim || vb[2] > lim {
		t := (lim - va[2]) / (vb[2] - va[2])
		cut := va.Add(vb.Sub(va).Mul(t))
		if va[2] > lim {
			va = cut
		} else {
			vb = cut
		}
	}
	x0, y0 := cam.ProjectView(va)
	x1, y1 := cam.ProjectView(vb)
	DrawLine(fb, x0, y0, va[2], x1, y1, vb[2], c)
}
