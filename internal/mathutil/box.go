package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box3 is an axis-aligned bounding box. The zero value is NOT empty; use EmptyBox.
type Box3 struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyBox returns a box that contains nothing (Min = +inf, Max = -inf).
func EmptyBox() Box3 {
	inf := math.Inf(1)
	return Box3{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// BoxFromPoints returns the smallest box enclosing pts.
func BoxFromPoints(pts []mgl64.Vec3) Box3 {
	b := EmptyBox()
	for _, p := range pts {
		b.ExpandByPoint(p)
	}
	return b
}

// ExpandByPoint grows the box to include p.
func (b *Box3) ExpandByPoint(p mgl64.Vec3) {
	for k := 0; k < 3; k++ {
		if p[k] < b.Min[k] {
			b.Min[k] = p[k]
		}
		if p[k] > b.Max[k] {
			b.Max[k] = p[k]
		}
	}
}

// Empty reports whether no point has been added.
func (b Box3) Empty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Size returns the extent on each axis. An empty box has zero size.
func (b Box3) Size() mgl64.Vec3 {
	if b.Empty() {
		return mgl64.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box. An empty box is centred at the origin.
func (b Box3) Center() mgl64.Vec3 {
	if b.Empty() {
		return mgl64.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Finite reports whether both corners are finite numbers.
func (b Box3) Finite() bool {
	for k := 0; k < 3; k++ {
		if !IsFinite(b.Min[k]) || !IsFinite(b.Max[k]) {
			return false
		}
	}
	return true
}

// IsFinite is false for NaN and ±Inf.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MaxComponent returns the largest of v's three components.
func MaxComponent(v mgl64.Vec3) float64 {
	return math.Max(v[0], math.Max(v[1], v[2]))
}
