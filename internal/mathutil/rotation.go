package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Canonical axes. UpY is the long axis of unrotated cylinders.
var (
	AxisX = mgl64.Vec3{1, 0, 0}
	UpY   = mgl64.Vec3{0, 1, 0}
	AxisZ = mgl64.Vec3{0, 0, 1}
)

// AxisRotation returns a rotation of deg degrees around the X, Y or Z axis
// (axis is 'X', 'Y' or 'Z'). Any other axis yields the identity.
func AxisRotation(axis byte, deg float64) mgl64.Quat {
	a := mgl64.DegToRad(deg)
	switch axis {
	case 'X':
		return mgl64.QuatRotate(a, AxisX)
	case 'Y':
		return mgl64.QuatRotate(a, UpY)
	case 'Z':
		return mgl64.QuatRotate(a, AxisZ)
	}
	return mgl64.QuatIdent()
}

// ShortestArc returns the rotation that takes unit vector from onto unit vector to.
// Opposite vectors rotate by pi around an axis perpendicular to from.
func ShortestArc(from, to mgl64.Vec3) mgl64.Quat {
	d := from.Dot(to)
	if d >= 1-1e-12 {
		return mgl64.QuatIdent()
	}
	if d <= -1+1e-12 {
		axis := AxisX.Cross(from)
		if axis.Len() < 1e-6 {
			axis = UpY.Cross(from)
		}
		return mgl64.QuatRotate(math.Pi, axis.Normalize())
	}
	// Half-way quaternion: (1 + d, from × to), normalized.
	q := mgl64.Quat{W: 1 + d, V: from.Cross(to)}
	return q.Normalize()
}
