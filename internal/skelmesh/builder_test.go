package skelmesh

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"mocap-pair-viewer/internal/mathutil"
	"mocap-pair-viewer/internal/skeleton"
)

func randomSkeleton(rng *rand.Rand, n int) *skeleton.Skeleton {
	s := &skeleton.Skeleton{}
	s.Add("root", -1, mgl64.Vec3{}, false)
	for i := 1; i < n; i++ {
		var off mgl64.Vec3
		// Roughly one bone in five is zero length.
		if rng.Intn(5) != 0 {
			off = mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		}
		s.Add("", rng.Intn(i), off, false)
	}
	return s
}

func TestBuildOneMarkerPerBone(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		s := randomSkeleton(rng, 1+rng.Intn(40))
		v := Build(s, DefaultOptions())
		if v.Markers() != s.Len() {
			t.Fatalf("trial %d: markers = %d, bones = %d", trial, v.Markers(), s.Len())
		}
		seen := make(map[int]int)
		for _, p := range v.Primitives {
			if p.Kind == JointMarker {
				seen[p.Bone]++
			}
		}
		for i := 0; i < s.Len(); i++ {
			if seen[i] != 1 {
				t.Fatalf("trial %d: bone %d has %d markers", trial, i, seen[i])
			}
		}
	}
}

func TestBuildConnectorsSkipShortOffsets(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 50; trial++ {
		s := randomSkeleton(rng, 2+rng.Intn(40))
		v := Build(s, DefaultOptions())

		want := 0
		for i := 1; i < s.Len(); i++ {
			if s.Bones[i].Offset.Len() > Epsilon {
				want++
			}
		}
		if v.Connectors() != want {
			t.Fatalf("trial %d: connectors = %d, want %d", trial, v.Connectors(), want)
		}

		for _, p := range v.Primitives {
			if p.Kind != BoneConnector {
				continue
			}
			off := s.Bones[p.Child].Offset
			if s.Bones[p.Child].Parent != p.Bone {
				t.Fatalf("connector %d->%d is not a parent/child pair", p.Bone, p.Child)
			}
			if !mathutil.NearVec3(p.Translation, off.Mul(0.5), 1e-12) {
				t.Fatalf("connector midpoint = %v, want %v", p.Translation, off.Mul(0.5))
			}
			dir := p.Rotation.Rotate(mathutil.UpY)
			if !mathutil.NearVec3(dir, off.Normalize(), 1e-9) {
				t.Fatalf("connector axis = %v, want %v", dir, off.Normalize())
			}
			if math.Abs(p.Height-off.Len()) > 1e-12 || p.Radius != BoneRadius {
				t.Fatalf("connector size = %v x %v", p.Height, p.Radius)
			}
		}
	}
}

func TestBuildEpsilonBoundary(t *testing.T) {
	s := &skeleton.Skeleton{}
	s.Add("root", -1, mgl64.Vec3{}, false)
	s.Add("at", 0, mgl64.Vec3{Epsilon, 0, 0}, false)
	s.Add("above", 0, mgl64.Vec3{2 * Epsilon, 0, 0}, false)
	v := Build(s, DefaultOptions())
	if v.Connectors() != 1 {
		t.Fatalf("connectors = %d, want 1", v.Connectors())
	}
	if v.Primitives[1].Child != 2 {
		t.Fatalf("connector child = %d, want 2", v.Primitives[1].Child)
	}
}

func TestBuildTwoBoneChain(t *testing.T) {
	s := &skeleton.Skeleton{}
	s.Add("root", -1, mgl64.Vec3{}, false)
	s.Add("tip", 0, mgl64.Vec3{0, 10, 0}, false)
	v := Build(s, DefaultOptions())

	if v.Markers() != 2 || v.Connectors() != 1 {
		t.Fatalf("markers=%d connectors=%d", v.Markers(), v.Connectors())
	}
	c := v.ForBone(0)[1]
	if c.Kind != BoneConnector || c.Height != 10 {
		t.Fatalf("connector = %+v", c)
	}
	if !mathutil.NearQuat(c.Rotation, mgl64.QuatIdent(), 1e-12) {
		t.Fatalf("+Y connector should not rotate, got %v", c.Rotation)
	}
	if c.Translation != (mgl64.Vec3{0, 5, 0}) {
		t.Fatalf("midpoint = %v", c.Translation)
	}

	box := v.Bounds(s.RestPose(), mgl64.Ident4())
	if math.Abs(box.Min[1]+JointRadius) > 1e-12 || math.Abs(box.Max[1]-(10+JointRadius)) > 1e-12 {
		t.Fatalf("bounds y = [%v, %v]", box.Min[1], box.Max[1])
	}
}

func TestBuildZeroLengthMiddleLink(t *testing.T) {
	s := &skeleton.Skeleton{}
	s.Add("a", -1, mgl64.Vec3{}, false)
	s.Add("b", 0, mgl64.Vec3{0, 0, 0}, false)
	s.Add("c", 1, mgl64.Vec3{0, 4, 0}, false)
	v := Build(s, DefaultOptions())

	if v.Markers() != 3 || v.Connectors() != 1 {
		t.Fatalf("markers=%d connectors=%d, want 3 and 1", v.Markers(), v.Connectors())
	}
	if len(v.ForBone(2)) != 1 {
		t.Fatal("recursion did not reach the third bone")
	}
	if got := v.ForBone(1); len(got) != 2 || got[1].Child != 2 {
		t.Fatalf("bone b primitives = %+v", got)
	}
}

func TestBuildSingleBone(t *testing.T) {
	s := &skeleton.Skeleton{}
	s.Add("only", -1, mgl64.Vec3{1, 2, 3}, false)
	v := Build(s, DefaultOptions())
	if v.Markers() != 1 || v.Connectors() != 0 {
		t.Fatalf("markers=%d connectors=%d", v.Markers(), v.Connectors())
	}
	if v.ForBone(5) != nil || v.ForBone(-1) != nil {
		t.Fatal("out of range ForBone should be nil")
	}

	empty := Build(&skeleton.Skeleton{}, DefaultOptions())
	if len(empty.Primitives) != 0 {
		t.Fatal("empty skeleton should produce no primitives")
	}
}

func TestBuildIsRepeatable(t *testing.T) {
	s := randomSkeleton(rand.New(rand.NewSource(3)), 25)
	a := Build(s, DefaultOptions())
	b := Build(s, DefaultOptions())
	if len(a.Primitives) != len(b.Primitives) {
		t.Fatalf("second build differs: %d vs %d", len(a.Primitives), len(b.Primitives))
	}
	for i := range a.Primitives {
		if a.Primitives[i] != b.Primitives[i] {
			t.Fatalf("primitive %d differs", i)
		}
	}
}

func TestUnitGeometry(t *testing.T) {
	sphere := UnitSphere()
	if len(sphere.Positions) != 17*17 {
		t.Fatalf("sphere vertices = %d", len(sphere.Positions))
	}
	if got := mathutil.BoxFromPoints(sphere.Positions).Size(); !mathutil.NearVec3(got, mgl64.Vec3{2, 2, 2}, 1e-9) {
		t.Fatalf("sphere size = %v", got)
	}
	cyl := UnitCylinder()
	box := mathutil.BoxFromPoints(cyl.Positions)
	if box.Min[1] != -0.5 || box.Max[1] != 0.5 {
		t.Fatalf("cylinder y range = [%v, %v]", box.Min[1], box.Max[1])
	}
	for _, m := range []*Mesh{sphere, cyl} {
		for _, tri := range m.Triangles {
			for _, i := range tri {
				if i < 0 || i >= len(m.Positions) {
					t.Fatalf("index %d out of range", i)
				}
			}
		}
	}
}
