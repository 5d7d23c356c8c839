package skelmesh

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Tessellation matches the viewer's sphere and cylinder resolution.
const (
	SphereWidthSegments  = 16
	SphereHeightSegments = 16
	CylinderSegments     = 8
)

// Mesh is an indexed triangle list. Unit meshes are shared and must not be mutated.
type Mesh struct {
	Positions []mgl64.Vec3
	Triangles [][3]int
}

var (
	unitOnce     sync.Once
	unitSphere   *Mesh
	unitCylinder *Mesh
)

func buildUnits() {
	unitSphere = Sphere(1, SphereWidthSegments, SphereHeightSegments)
	unitCylinder = Cylinder(1, 1, CylinderSegments)
}

// UnitSphere is a radius-1 sphere centred at the origin.
func UnitSphere() *Mesh {
	unitOnce.Do(buildUnits)
	return unitSphere
}

// UnitCylinder is a radius-1, height-1 capped cylinder centred at the origin along +Y.
func UnitCylinder() *Mesh {
	unitOnce.Do(buildUnits)
	return unitCylinder
}

// Sphere builds a UV sphere. Poles sit on the Y axis.
func Sphere(radius float64, widthSegments, heightSegments int) *Mesh {
	m := &Mesh{}
	grid := make([][]int, heightSegments+1)
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		row := make([]int, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			row[ix] = len(m.Positions)
			m.Positions = append(m.Positions, mgl64.Vec3{
				-radius * math.Cos(u*2*math.Pi) * math.Sin(v*math.Pi),
				radius * math.Cos(v*math.Pi),
				radius * math.Sin(u*2*math.Pi) * math.Sin(v*math.Pi),
			})
		}
		grid[iy] = row
	}

	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			// Pole rows collapse to a single triangle per quad.
			if iy != 0 {
				m.Triangles = append(m.Triangles, [3]int{a, b, d})
			}
			if iy != heightSegments-1 {
				m.Triangles = append(m.Triangles, [3]int{b, c, d})
			}
		}
	}
	return m
}

// Cylinder builds a capped cylinder of the given height along Y, centred at the origin.
func Cylinder(radius, height float64, radialSegments int) *Mesh {
	m := &Mesh{}
	half := height / 2

	ring := func(y float64) []int {
		idx := make([]int, radialSegments+1)
		for x := 0; x <= radialSegments; x++ {
			theta := float64(x) / float64(radialSegments) * 2 * math.Pi
			idx[x] = len(m.Positions)
			m.Positions = append(m.Positions, mgl64.Vec3{radius * math.Sin(theta), y, radius * math.Cos(theta)})
		}
		return idx
	}

	top := ring(half)
	bottom := ring(-half)
	for x := 0; x < radialSegments; x++ {
		a, b, c, d := top[x], bottom[x], bottom[x+1], top[x+1]
		m.Triangles = append(m.Triangles, [3]int{a, b, d}, [3]int{b, c, d})
	}

	for _, lid := range []struct {
		y    float64
		ring []int
	}{{half, top}, {-half, bottom}} {
		center := len(m.Positions)
		m.Positions = append(m.Positions, mgl64.Vec3{0, lid.y, 0})
		for x := 0; x < radialSegments; x++ {
			m.Triangles = append(m.Triangles, [3]int{lid.ring[x], lid.ring[x+1], center})
		}
	}
	return m
}
