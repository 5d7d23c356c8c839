package camera

import (
	"github.com/go-gl/mathgl/mgl64"

	"mocap-pair-viewer/internal/mathutil"
)

// Projection parameters of the viewer camera.
const (
	FOV  = 60.0 // vertical, degrees
	Near = 1.0
	Far  = 2000.0
)

// Camera is a perspective look-at camera rendering into a Width×Height target.
type Camera struct {
	Placement
	FOV    float64
	Near   float64
	Far    float64
	Width  int
	Height int

	view mgl64.Mat4
	proj mgl64.Mat4
}

// New builds a camera for a viewport of w×h pixels.
func New(p Placement, w, h int) *Camera {
	c := &Camera{
		Placement: p,
		FOV:       FOV,
		Near:      Near,
		Far:       Far,
		Width:     w,
		Height:    h,
	}
	c.Update()
	return c
}

// Update recomputes the cached matrices after a field changed.
func (c *Camera) Update() {
	aspect := 1.0
	if c.Height > 0 {
		aspect = float64(c.Width) / float64(c.Height)
	}
	c.view = mgl64.LookAtV(c.Position, c.Target, mathutil.UpY)
	c.proj = mgl64.Perspective(mgl64.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	return c.view
}

// ToView transforms a world point into camera space.
func (c *Camera) ToView(p mgl64.Vec3) mgl64.Vec3 {
	return mathutil.MulPoint(c.view, p)
}

// Forward is the unit viewing direction.
func (c *Camera) Forward() mgl64.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// Project maps a world point to screen pixels. depth is the camera-space z
// (negative in front of the camera; larger means closer). ok is false for
// points on or behind the near plane.
func (c *Camera) Project(p mgl64.Vec3) (sx, sy, depth float64, ok bool) {
	v := c.ToView(p)
	if v[2] > -c.Near {
		return 0, 0, v[2], false
	}
	sx, sy = c.ProjectView(v)
	return sx, sy, v[2], true
}

// ProjectView maps a camera-space point in front of the near plane to pixels.
func (c *Camera) ProjectView(v mgl64.Vec3) (sx, sy float64) {
	clip := c.proj.Mul4x1(v.Vec4(1))
	w := clip[3]
	nx, ny := clip[0]/w, clip[1]/w
	sx = (nx + 1) / 2 * float64(c.Width)
	sy = (1 - ny) / 2 * float64(c.Height)
	return sx, sy
}
