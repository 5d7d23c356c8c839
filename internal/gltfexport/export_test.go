package gltfexport

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"mocap-pair-viewer/internal/skeleton"
	"mocap-pair-viewer/internal/skelmesh"
)

func chain() *skeleton.Skeleton {
	s := &skeleton.Skeleton{}
	root := s.Add("Hips", -1, mgl64.Vec3{}, false)
	spine := s.Add("Spine", root, mgl64.Vec3{0, 10, 0}, false)
	s.Add("Head", spine, mgl64.Vec3{0, 5, 0}, true)
	return s
}

func TestBuildCounts(t *testing.T) {
	s := chain()
	v := skelmesh.Build(s, skelmesh.DefaultOptions())
	doc := Build(s, v, s.RestPose(), mgl64.Ident4())

	if len(doc.Meshes) != 2 {
		t.Errorf("meshes = %d, want 2", len(doc.Meshes))
	}
	if len(doc.Materials) != 2 {
		t.Errorf("materials = %d, want 2", len(doc.Materials))
	}
	if want := v.Markers() + v.Connectors(); len(doc.Nodes) != want {
		t.Errorf("nodes = %d, want %d", len(doc.Nodes), want)
	}
	if len(doc.Scenes[0].Nodes) != len(doc.Nodes) {
		t.Errorf("scene nodes = %d", len(doc.Scenes[0].Nodes))
	}
	if doc.Nodes[0].Name != "Hips_joint" {
		t.Errorf("first node = %q", doc.Nodes[0].Name)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	s := chain()
	v := skelmesh.Build(s, skelmesh.DefaultOptions())
	doc := Build(s, v, s.RestPose(), mgl64.Scale3D(2, 2, 2))

	for _, name := range []string{"skel.gltf", "skel.glb"} {
		path := filepath.Join(t.TempDir(), name)
		if err := Save(doc, path); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
		back, err := gltf.Open(path)
		if err != nil {
			t.Fatalf("Open %s: %v", name, err)
		}
		if len(back.Nodes) != len(doc.Nodes) {
			t.Errorf("%s: nodes = %d, want %d", name, len(back.Nodes), len(doc.Nodes))
		}
	}
}

func TestBuildNodeReferences(t *testing.T) {
	s := chain()
	v := skelmesh.Build(s, skelmesh.DefaultOptions())
	container := mgl64.Translate3D(3, 0, 0)
	doc := Build(s, v, s.RestPose(), container)

	worlds := v.WorldTransforms(s.RestPose(), container)
	for i, n := range doc.Nodes {
		if n.Mesh == nil {
			t.Fatalf("node %d has no mesh", i)
		}
		want := uint32(0)
		if v.Primitives[i].Kind == skelmesh.BoneConnector {
			want = 1
		}
		if *n.Mesh != want {
			t.Errorf("node %d mesh = %d, want %d", i, *n.Mesh, want)
		}
		if got := n.Matrix[12]; got != float32(worlds[i][12]) {
			t.Errorf("node %d tx = %v, want %v", i, got, worlds[i][12])
		}
		if doc.Scenes[0].Nodes[i] != uint32(i) {
			t.Errorf("scene node %d = %d", i, doc.Scenes[0].Nodes[i])
		}
	}
	for i, m := range doc.Meshes {
		p := m.Primitives[0]
		if p.Material == nil || *p.Material != uint32(i) {
			t.Errorf("mesh %d material = %v, want %d", i, p.Material, i)
		}
		if _, ok := p.Attributes[gltf.POSITION]; !ok {
			t.Errorf("mesh %d has no POSITION attribute", i)
		}
	}
	if f := doc.Materials[0].PBRMetallicRoughness.RoughnessFactor; f == nil || *f != float32(0.4) {
		t.Errorf("joint roughness = %v, want 0.4", f)
	}
}
