// Package skelmesh reconstructs a visual skeleton (joint markers and bone
// connectors) from a bone hierarchy. Primitives live in their own list keyed
// by bone index; the skeleton topology is never modified.
package skelmesh

import (
	"github.com/go-gl/mathgl/mgl64"

	"mocap-pair-viewer/internal/mathutil"
	"mocap-pair-viewer/internal/skeleton"
)

// Default primitive sizes, in the skeleton's native units. They do not scale
// with bone length or depth.
const (
	JointRadius = 0.02
	BoneRadius  = 0.01
	Epsilon     = 0.001
)

// Kind tells a joint marker from a bone connector.
type Kind uint8

const (
	JointMarker Kind = iota
	BoneConnector
)

func (k Kind) String() string {
	if k == JointMarker {
		return "joint"
	}
	return "bone"
}

// Primitive is a render-only shape attached to a bone. Its transform is
// expressed in the owning bone's local frame.
type Primitive struct {
	Kind        Kind
	Bone        int // owning bone
	Child       int // connector target, -1 for markers
	Radius      float64
	Height      float64 // connectors only
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
}

// Local returns the primitive's transform relative to its bone, including the
// scale that maps the shared unit geometry to the primitive's size.
func (p Primitive) Local() mgl64.Mat4 {
	m := mathutil.Compose(p.Translation, p.Rotation, 1)
	if p.Kind == JointMarker {
		return m.Mul4(mgl64.Scale3D(p.Radius, p.Radius, p.Radius))
	}
	return m.Mul4(mgl64.Scale3D(p.Radius, p.Height, p.Radius))
}

// Geometry returns the unit mesh the primitive instantiates.
func (p Primitive) Geometry() *Mesh {
	if p.Kind == JointMarker {
		return UnitSphere()
	}
	return UnitCylinder()
}

// Options sizes the generated primitives.
type Options struct {
	JointRadius float64
	BoneRadius  float64
	Epsilon     float64 // offsets at or below this length get no connector
}

// DefaultOptions returns the standard marker/connector sizes.
func DefaultOptions() Options {
	return Options{
		JointRadius: JointRadius,
		BoneRadius:  BoneRadius,
		Epsilon:     Epsilon,
	}
}

// Visual is the render-primitive list for one skeleton.
type Visual struct {
	Primitives []Primitive
	byBone     [][]int

	markers    int
	connectors int
}

// Build walks the hierarchy once, depth-first pre-order with an explicit
// stack, and emits one marker per bone plus one connector per child whose
// offset is longer than opts.Epsilon. Every call returns a fresh Visual.
func Build(s *skeleton.Skeleton, opts Options) *Visual {
	v := &Visual{byBone: make([][]int, s.Len())}
	root := s.Root()
	if root < 0 {
		return v
	}

	stack := []int{root}
	for len(stack) > 0 {
		bi := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		bone := &s.Bones[bi]

		v.add(Primitive{
			Kind:     JointMarker,
			Bone:     bi,
			Child:    -1,
			Radius:   opts.JointRadius,
			Rotation: mgl64.QuatIdent(),
		})

		for _, ci := range bone.Children {
			offset := s.Bones[ci].Offset
			length := offset.Len()
			// Zero-length bones have no direction to align to.
			if length <= opts.Epsilon {
				continue
			}
			dir := offset.Mul(1 / length)
			v.add(Primitive{
				Kind:        BoneConnector,
				Bone:        bi,
				Child:       ci,
				Radius:      opts.BoneRadius,
				Height:      length,
				Translation: offset.Mul(0.5),
				Rotation:    mathutil.ShortestArc(mathutil.UpY, dir),
			})
		}

		// Reverse push keeps hierarchy order on pop.
		for i := len(bone.Children) - 1; i >= 0; i-- {
			stack = append(stack, bone.Children[i])
		}
	}
	return v
}

func (v *Visual) add(p Primitive) {
	idx := len(v.Primitives)
	v.Primitives = append(v.Primitives, p)
	v.byBone[p.Bone] = append(v.byBone[p.Bone], idx)
	if p.Kind == JointMarker {
		v.markers++
	} else {
		v.connectors++
	}
}

// Markers returns the number of joint markers.
func (v *Visual) Markers() int { return v.markers }

// Connectors returns the number of bone connectors.
func (v *Visual) Connectors() int { return v.connectors }

// ForBone returns the primitives attached to bone id.
func (v *Visual) ForBone(id int) []Primitive {
	if id < 0 || id >= len(v.byBone) {
		return nil
	}
	out := make([]Primitive, len(v.byBone[id]))
	for i, pi := range v.byBone[id] {
		out[i] = v.Primitives[pi]
	}
	return out
}

// WorldTransforms returns container · bone world · primitive local for every
// primitive, in primitive order.
func (v *Visual) WorldTransforms(pose skeleton.Pose, container mgl64.Mat4) []mgl64.Mat4 {
	out := make([]mgl64.Mat4, len(v.Primitives))
	for i, p := range v.Primitives {
		bw := mgl64.Ident4()
		if p.Bone < len(pose) {
			bw = pose[p.Bone]
		}
		out[i] = container.Mul4(bw).Mul4(p.Local())
	}
	return out
}

// Bounds sweeps every vertex of the assembled visual skeleton in world space.
func (v *Visual) Bounds(pose skeleton.Pose, container mgl64.Mat4) mathutil.Box3 {
	box := mathutil.EmptyBox()
	for i, m := range v.WorldTransforms(pose, container) {
		for _, p := range v.Primitives[i].Geometry().Positions {
			box.ExpandByPoint(mathutil.MulPoint(m, p))
		}
	}
	return box
}
