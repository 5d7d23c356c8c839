package raster

import (
	"image/color"
	"math"
)

// RasterizeTriangle fills a screen-space triangle with a solid colour,
// interpolating depth for the z-buffer test.
//
// Hot path: no allocation in the inner loop.
// px/py are pixel coordinates, pz is camera-space depth (larger is closer).
func RasterizeTriangle(fb *FrameBuffer, px, py, pz [3]float64, c color.NRGBA) {
	x0, y0, z0 := px[0], py[0], pz[0]
	x1, y1, z1 := px[1], py[1], pz[1]
	x2, y2, z2 := px[2], py[2], pz[2]

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	// Pixel loop, sampled at pixel centres
	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = c.R
			fb.Color[pxIdx+1] = c.G
			fb.Color[pxIdx+2] = c.B
			fb.Color[pxIdx+3] = c.A
		}
	}
}

// DrawLine draws a depth-tested line between two screen points.
func DrawLine(fb *FrameBuffer, x0, y0, z0, x1, y1, z1 float64, c color.NRGBA) {
	dx, dy := x1-x0, y1-y0
	t0, t1, ok := clipSegment(x0, y0, dx, dy, float64(fb.Width), float64(fb.Height))
	if !ok {
		return
	}
	x0, y0, z0, x1, y1, z1 = x0+dx*t0, y0+dy*t0, z0+(z1-z0)*t0, x0+dx*t1, y0+dy*t1, z0+(z1-z0)*t1
	dx, dy = x1-x0, y1-y0
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		sx := int(math.Floor(x0 + dx*t))
		sy := int(math.Floor(y0 + dy*t))
		if sx < 0 || sy < 0 || sx >= fb.Width || sy >= fb.Height {
			continue
		}
		z := z0 + (z1-z0)*t
		zIdx := sy*fb.Width + sx
		if z <= fb.ZBuf[zIdx] {
			continue
		}
		fb.ZBuf[zIdx] = z
		pxIdx := zIdx * 4
		fb.Color[pxIdx] = c.R
		fb.Color[pxIdx+1] = c.G
		fb.Color[pxIdx+2] = c.B
		fb.Color[pxIdx+3] = c.A
	}
}

// clipSegment is Liang-Barsky against [0,w]x[0,h].
func clipSegment(x0, y0, dx, dy, w, h float64) (t0, t1 float64, ok bool) {
	t0, t1 = 0, 1
	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{x0, w - x0, y0, h - y0}
	for i := range p {
		if p[i] == 0 {
			if q[i] < 0 {
				return 0, 0, false
			}
			continue
		}
		r := q[i] / p[i]
		if p[i] < 0 {
			if r > t1 {
				return 0, 0, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, false
			}
			t1 = math.Min(t1, r)
		}
	}
	return t0, t1, true
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
