package raster

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Material is a flat-shaded surface colour with a simple specular response.
type Material struct {
	Color     color.NRGBA
	Roughness float64
	Metalness float64
}

// Scene materials.
var (
	JointMaterial = Material{Color: color.NRGBA{0x00, 0x7b, 0xff, 0xff}, Roughness: 0.4, Metalness: 0.1}
	BoneMaterial  = Material{Color: color.NRGBA{0x44, 0x44, 0x44, 0xff}, Roughness: 0.5, Metalness: 0.2}
)

// LightConfig holds precomputed lighting parameters.
type LightConfig struct {
	LightDir  mgl64.Vec3
	ViewDir   mgl64.Vec3
	HalfMain  mgl64.Vec3 // precomputed half-vector for Blinn-Phong
	Ambient   float64
	Direct    float64
	SpecInt   float64
	SpecPow   float64
	Exposure  float64
	SRGBGamma float64
	InvGamma  float64
}

// DefaultLightConfig returns the scene lighting (ambient 0.8, one directional
// light of intensity 1.0 from above-front) for a camera looking along viewDir.
func DefaultLightConfig(viewDir mgl64.Vec3) LightConfig {
	lightDir := mgl64.Vec3{0, 1, 0.5}.Normalize()
	viewDir = viewDir.Normalize()

	return LightConfig{
		LightDir:  lightDir,
		ViewDir:   viewDir,
		HalfMain:  lightDir.Sub(viewDir).Normalize(),
		Ambient:   0.8,
		Direct:    1.0,
		SpecInt:   0.45,
		SpecPow:   12.0,
		Exposure:  1.0,
		SRGBGamma: 2.2,
		InvGamma:  1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a face normal.
func (lc *LightConfig) ComputeShade(normal mgl64.Vec3, m Material) float64 {
	// Lambertian (abs for double-sided)
	ndl := math.Abs(normal.Dot(lc.LightDir))

	// Blinn-Phong specular, damped by roughness
	ndh := math.Abs(normal.Dot(lc.HalfMain))
	spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt * (1 - m.Roughness)

	// Metals reflect less diffuse light.
	diffuse := 1 - 0.5*m.Metalness
	return lc.Ambient + ndl*lc.Direct*diffuse + spec
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// ShadeColor runs the sRGB decode → shade → tonemap → encode pipeline.
func (lc *LightConfig) ShadeColor(c color.NRGBA, shade float64) color.NRGBA {
	k := shade * lc.Exposure
	return color.NRGBA{
		R: clamp255(math.Pow(ACESTonemap(srgbToLinear[c.R]*k), lc.InvGamma) * 255),
		G: clamp255(math.Pow(ACESTonemap(srgbToLinear[c.G]*k), lc.InvGamma) * 255),
		B: clamp255(math.Pow(ACESTonemap(srgbToLinear[c.B]*k), lc.InvGamma) * 255),
		A: c.A,
	}
}
