package bvh

import (
	"github.com/go-gl/mathgl/mgl64"

	"mocap-pair-viewer/internal/mathutil"
	"mocap-pair-viewer/internal/skeleton"
)

// frameLocals converts one line of channel values into per-bone local
// transforms. Position channels add to the bone offset; rotation channels
// (degrees) compose in the order they are declared.
func (m *Motion) frameLocals(values []float64) []skeleton.LocalTransform {
	bones := m.Skeleton.Bones
	locals := make([]skeleton.LocalTransform, len(bones))
	vi := 0
	for i, b := range bones {
		t := b.Offset
		q := mgl64.QuatIdent()
		for _, ch := range m.Channels[i] {
			v := values[vi]
			vi++
			if ch.Kind == Position {
				t[axisIndex(ch.Axis)] += v
				continue
			}
			q = q.Mul(mathutil.AxisRotation(ch.Axis, v))
		}
		locals[i] = skeleton.LocalTransform{Translation: t, Rotation: q.Normalize()}
	}
	return locals
}

func axisIndex(a byte) int {
	return int(a - 'X')
}
