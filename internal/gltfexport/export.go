// Package gltfexport writes a posed visual skeleton as a glTF 2.0 asset.
package gltfexport

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"mocap-pair-viewer/internal/raster"
	"mocap-pair-viewer/internal/skeleton"
	"mocap-pair-viewer/internal/skelmesh"
)

// Build creates a document with one node per primitive. Markers and
// connectors share two unit meshes; each node carries its world matrix.
func Build(s *skeleton.Skeleton, v *skelmesh.Visual, pose skeleton.Pose, container mgl64.Mat4) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "mocap-pair-viewer"

	jointMat := addMaterial(doc, "joint", raster.JointMaterial)
	boneMat := addMaterial(doc, "bone", raster.BoneMaterial)
	sphere := addMesh(doc, "joint", skelmesh.UnitSphere(), jointMat)
	cylinder := addMesh(doc, "bone", skelmesh.UnitCylinder(), boneMat)

	worlds := v.WorldTransforms(pose, container)
	for i, p := range v.Primitives {
		mesh := sphere
		name := s.Bones[p.Bone].Name + "_joint"
		if p.Kind == skelmesh.BoneConnector {
			mesh = cylinder
			name = s.Bones[p.Bone].Name + "_" + s.Bones[p.Child].Name
		}
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:   name,
			Mesh:   gltf.Index(mesh),
			Matrix: matrix32(worlds[i]),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}
	return doc
}

// Save writes doc to path; a ".glb" extension selects the binary container.
func Save(doc *gltf.Document, path string) error {
	var err error
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(doc, path)
	} else {
		err = gltf.Save(doc, path)
	}
	if err != nil {
		return fmt.Errorf("gltfexport: save %s: %w", path, err)
	}
	return nil
}

func addMaterial(doc *gltf.Document, name string, m raster.Material) uint32 {
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name: name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: linearColor(m.Color),
			MetallicFactor:  gltf.Float(float32(m.Metalness)),
			RoughnessFactor: gltf.Float(float32(m.Roughness)),
		},
	})
	return uint32(len(doc.Materials) - 1)
}

func addMesh(doc *gltf.Document, name string, m *skelmesh.Mesh, material uint32) uint32 {
	pos := make([][3]float32, len(m.Positions))
	for i, p := range m.Positions {
		pos[i] = [3]float32{float32(p[0]), float32(p[1]), float32(p[2])}
	}
	idx := make([]uint16, 0, len(m.Triangles)*3)
	for _, t := range m.Triangles {
		idx = append(idx, uint16(t[0]), uint16(t[1]), uint16(t[2]))
	}

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(modeler.WriteIndices(doc, idx)),
			Attributes: gltf.Attribute{gltf.POSITION: modeler.WritePosition(doc, pos)},
			Material:   gltf.Index(material),
		}},
	})
	return uint32(len(doc.Meshes) - 1)
}

// glTF stores node matrices as column-major float32, the same layout as mgl64.
func matrix32(m mgl64.Mat4) [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// glTF color factors are linear.
func linearColor(c color.NRGBA) *[4]float32 {
	lin := func(v uint8) float32 {
		f := float64(v) / 255
		if f <= 0.04045 {
			return float32(f / 12.92)
		}
		return float32(mgl64.Clamp(math.Pow((f+0.055)/1.055, 2.4), 0, 1))
	}
	return &[4]float32{lin(c.R), lin(c.G), lin(c.B), float32(c.A) / 255}
}
