package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Near reports whether a and b are within eps of each other. Unlike
// mgl64's relative comparisons it stays meaningful when one side is zero.
func Near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// NearVec3 compares two vectors component-wise with an absolute tolerance.
func NearVec3(a, b mgl64.Vec3, eps float64) bool {
	return Near(a[0], b[0], eps) && Near(a[1], b[1], eps) && Near(a[2], b[2], eps)
}

// NearQuat compares two rotations; q and -q are the same rotation.
func NearQuat(a, b mgl64.Quat, eps float64) bool {
	same := Near(a.W, b.W, eps) && NearVec3(a.V, b.V, eps)
	flipped := Near(a.W, -b.W, eps) && NearVec3(a.V, b.V.Mul(-1), eps)
	return same || flipped
}

// NearMat4 compares two matrices element-wise.
func NearMat4(a, b mgl64.Mat4, eps float64) bool {
	for i := range a {
		if !Near(a[i], b[i], eps) {
			return false
		}
	}
	return true
}
