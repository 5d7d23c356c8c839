package skeleton

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"mocap-pair-viewer/internal/mathutil"
)

func chain() *Skeleton {
	s := &Skeleton{}
	root := s.Add("Hips", -1, mgl64.Vec3{0, 0, 0}, false)
	spine := s.Add("Spine", root, mgl64.Vec3{0, 10, 0}, false)
	s.Add("Head", spine, mgl64.Vec3{0, 5, 0}, true)
	s.Add("LeftLeg", root, mgl64.Vec3{3, -8, 0}, false)
	return s
}

func TestAddLinksChildren(t *testing.T) {
	s := chain()
	if got := s.Bones[0].Children; len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("root children = %v, want [1 3]", got)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if i, ok := s.Index("Head"); !ok || i != 2 {
		t.Fatalf("Index(Head) = %d, %v", i, ok)
	}
}

func TestValidateRejectsBadArena(t *testing.T) {
	cases := map[string]*Skeleton{
		"empty":          {},
		"root parent":    {Bones: []Bone{{Name: "a", Parent: 0}}},
		"forward parent": {Bones: []Bone{{Name: "a", Parent: -1}, {Name: "b", Parent: 2}, {Name: "c", Parent: 0}}},
	}
	for name, s := range cases {
		if err := s.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	var nilSkel *Skeleton
	if nilSkel.Len() != 0 || nilSkel.Root() != -1 {
		t.Fatal("nil skeleton should be empty")
	}
}

func TestRestPoseAccumulatesOffsets(t *testing.T) {
	origins := chain().RestPose().Origins()
	want := []mgl64.Vec3{{0, 0, 0}, {0, 10, 0}, {0, 15, 0}, {3, -8, 0}}
	for i := range want {
		if !mathutil.NearVec3(origins[i], want[i], 1e-12) {
			t.Fatalf("bone %d origin = %v, want %v", i, origins[i], want[i])
		}
	}
}

func TestBuildWorldMatricesAppliesParentRotation(t *testing.T) {
	s := chain()
	locals := s.RestLocals()
	locals[0].Rotation = mathutil.AxisRotation('Z', 90)
	origins := s.BuildWorldMatrices(locals).Origins()
	// +Y rotated 90° around Z points to -X.
	if want := (mgl64.Vec3{-15, 0, 0}); !mathutil.NearVec3(origins[2], want, 1e-9) {
		t.Fatalf("head = %v, want %v", origins[2], want)
	}
}

func TestClipSampleInterpolatesAndLoops(t *testing.T) {
	key := func(x float64, deg float64) []LocalTransform {
		return []LocalTransform{{Translation: mgl64.Vec3{x, 0, 0}, Rotation: mathutil.AxisRotation('Y', deg)}}
	}
	c := &Clip{FrameTime: 0.5, Frames: [][]LocalTransform{key(0, 0), key(10, 90), key(20, 180)}}

	if c.Duration() != time.Second {
		t.Fatalf("duration = %v, want 1s", c.Duration())
	}

	got := c.Sample(0.25, nil)
	if !mathutil.NearVec3(got[0].Translation, mgl64.Vec3{5, 0, 0}, 1e-9) {
		t.Fatalf("translation at 0.25s = %v", got[0].Translation)
	}
	if !mathutil.NearQuat(got[0].Rotation, mathutil.AxisRotation('Y', 45), 1e-9) {
		t.Fatalf("rotation at 0.25s = %v", got[0].Rotation)
	}

	// 1.25s wraps to 0.25s.
	wrapped := c.Sample(1.25, nil)
	if !mathutil.NearVec3(wrapped[0].Translation, got[0].Translation, 1e-9) {
		t.Fatalf("looped sample = %v, want %v", wrapped[0].Translation, got[0].Translation)
	}

	if f := c.Frame(99); f[0].Translation[0] != 20 {
		t.Fatalf("Frame clamps to last, got %v", f[0].Translation)
	}
}

func TestClipSampleSingleFrame(t *testing.T) {
	c := &Clip{FrameTime: 1.0 / 30, Frames: [][]LocalTransform{{{Translation: mgl64.Vec3{1, 2, 3}, Rotation: mgl64.QuatIdent()}}}}
	got := c.Sample(12, make([]LocalTransform, 0, 4))
	if len(got) != 1 || got[0].Translation != (mgl64.Vec3{1, 2, 3}) {
		t.Fatalf("single frame sample = %v", got)
	}
	var empty *Clip
	if len(empty.Sample(1, nil)) != 0 || empty.Duration() != 0 {
		t.Fatal("nil clip should sample to nothing")
	}
}
