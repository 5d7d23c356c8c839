package mathutil

import "github.com/go-gl/mathgl/mgl64"

// Compose builds T · R · S for a translation, rotation and uniform scale.
func Compose(t mgl64.Vec3, r mgl64.Quat, s float64) mgl64.Mat4 {
	m := r.Mat4()
	if s != 1 {
		m = m.Mul4(mgl64.Scale3D(s, s, s))
	}
	m.SetCol(3, mgl64.Vec4{t[0], t[1], t[2], 1})
	return m
}

// Origin extracts the translation column of an affine matrix.
func Origin(m mgl64.Mat4) mgl64.Vec3 {
	return mgl64.Vec3{m[12], m[13], m[14]}
}

// MulPoint transforms a point (w = 1) by an affine matrix.
func MulPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// IsIdentity checks if the matrix is approximately identity.
func IsIdentity(m mgl64.Mat4) bool {
	return NearMat4(m, mgl64.Ident4(), 1e-8)
}
