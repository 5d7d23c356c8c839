package skeleton

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"mocap-pair-viewer/internal/mathutil"
)

// Bone is one node of the skeleton arena. Bones are addressed by index;
// children are owned by their parent through Children, never by back-reference.
type Bone struct {
	Name     string
	Parent   int        // -1 for the root
	Children []int      // hierarchy order
	Offset   mgl64.Vec3 // local offset relative to the parent
	EndSite  bool       // BVH "End Site": position only, no channels
}

// Skeleton is the immutable bone topology. Parents always precede their
// children, so a single forward pass resolves world transforms.
type Skeleton struct {
	Bones []Bone
}

// Add appends a bone under parent (-1 for a root) and returns its index.
func (s *Skeleton) Add(name string, parent int, offset mgl64.Vec3, endSite bool) int {
	idx := len(s.Bones)
	s.Bones = append(s.Bones, Bone{
		Name:    name,
		Parent:  parent,
		Offset:  offset,
		EndSite: endSite,
	})
	if parent >= 0 && parent < idx {
		s.Bones[parent].Children = append(s.Bones[parent].Children, idx)
	}
	return idx
}

// Len returns the number of bones.
func (s *Skeleton) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bones)
}

// Root returns the index of the root bone, or -1 for an empty skeleton.
func (s *Skeleton) Root() int {
	if s.Len() == 0 {
		return -1
	}
	return 0
}

// Index returns the index of the bone called name.
func (s *Skeleton) Index(name string) (int, bool) {
	for i := range s.Bones {
		if s.Bones[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// Validate checks the arena invariants: a single root at index 0 and every
// parent preceding its children.
func (s *Skeleton) Validate() error {
	if s.Len() == 0 {
		return fmt.Errorf("skeleton: no bones")
	}
	for i, b := range s.Bones {
		if i == 0 {
			if b.Parent != -1 {
				return fmt.Errorf("skeleton: root %q has parent %d", b.Name, b.Parent)
			}
			continue
		}
		if b.Parent < 0 || b.Parent >= i {
			return fmt.Errorf("skeleton: bone %d %q has invalid parent %d", i, b.Name, b.Parent)
		}
	}
	return nil
}

// Pose holds one world matrix per bone, ancestors already applied.
type Pose []mgl64.Mat4

// Origins returns the world-space origin of every bone.
func (p Pose) Origins() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(p))
	for i, m := range p {
		out[i] = mathutil.Origin(m)
	}
	return out
}

// LocalTransform is a bone's transform relative to its parent.
type LocalTransform struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
}

// RestLocals returns the local transforms of the rest pose: offsets, no rotation.
func (s *Skeleton) RestLocals() []LocalTransform {
	locals := make([]LocalTransform, s.Len())
	for i, b := range s.Bones {
		locals[i] = LocalTransform{Translation: b.Offset, Rotation: mgl64.QuatIdent()}
	}
	return locals
}

// RestPose computes world matrices for the rest pose.
func (s *Skeleton) RestPose() Pose {
	return s.BuildWorldMatrices(s.RestLocals())
}

// BuildWorldMatrices chains local transforms parent-first.
// Returns a slice of 4×4 matrices indexed by bone index. Bones without a
// matching local transform keep their offset and no rotation.
func (s *Skeleton) BuildWorldMatrices(locals []LocalTransform) Pose {
	worlds := make(Pose, s.Len())
	for i, bone := range s.Bones {
		var local mgl64.Mat4
		if i < len(locals) {
			local = mathutil.Compose(locals[i].Translation, locals[i].Rotation, 1)
		} else {
			local = mgl64.Translate3D(bone.Offset[0], bone.Offset[1], bone.Offset[2])
		}

		// Chain with parent
		if bone.Parent >= 0 && bone.Parent < i {
			worlds[i] = worlds[bone.Parent].Mul4(local)
		} else {
			worlds[i] = local
		}
	}
	return worlds
}
