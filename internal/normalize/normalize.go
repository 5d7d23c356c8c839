// Package normalize fits a skeleton of any native unit scale into a fixed
// visual envelope centred at the origin with one uniform scale and one translation.
package normalize

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"mocap-pair-viewer/internal/mathutil"
	"mocap-pair-viewer/internal/skeleton"
	"mocap-pair-viewer/internal/skelmesh"
)

// DefaultTarget is the size, in visual units, a normalized skeleton spans.
const DefaultTarget = 150.0

// Policy selects which extent is mapped to the target size. The two policies
// centre non-uniformly proportioned skeletons differently and are never mixed.
type Policy uint8

const (
	// VerticalFit maps the height of the assembled visual skeleton
	// (markers and connectors included) to the target.
	VerticalFit Policy = iota
	// MaxExtent maps the largest extent of the bone origins to the target.
	MaxExtent
)

func (p Policy) String() string {
	switch p {
	case VerticalFit:
		return "vertical-fit"
	case MaxExtent:
		return "max-extent"
	}
	return fmt.Sprintf("Policy(%d)", p)
}

// ParsePolicy accepts the names printed by Policy.String. Empty means VerticalFit.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "vertical-fit":
		return VerticalFit, nil
	case "max-extent":
		return MaxExtent, nil
	}
	return 0, fmt.Errorf("normalize: unknown policy %q", s)
}

// Transform is applied to the container that owns the skeleton root:
// world = Translation + Scale·p.
type Transform struct {
	Scale       float64
	Translation mgl64.Vec3
}

// Identity leaves the skeleton at its native coordinates.
func Identity() Transform {
	return Transform{Scale: 1}
}

// IsIdentity reports whether t changes nothing.
func (t Transform) IsIdentity() bool {
	return t.Scale == 1 && t.Translation == (mgl64.Vec3{})
}

// Mat4 returns the container matrix T · S.
func (t Transform) Mat4() mgl64.Mat4 {
	return mathutil.Compose(t.Translation, mgl64.QuatIdent(), t.Scale)
}

// Apply transforms a point.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return p.Mul(t.Scale).Add(t.Translation)
}

// Normalizer computes the container transform for one skeleton.
type Normalizer struct {
	Policy Policy
	Target float64 // <= 0 means DefaultTarget
	Logger *slog.Logger
}

// Normalize must run after the visual skeleton is built and on a pose whose
// world transforms are fully propagated. A missing pose, an empty skeleton or
// a zero / non-finite extent yields the identity transform; it never fails.
func (n Normalizer) Normalize(pose skeleton.Pose, visual *skelmesh.Visual) Transform {
	target := n.Target
	if target <= 0 {
		target = DefaultTarget
	}

	var t Transform
	var box mathutil.Box3
	switch n.Policy {
	case MaxExtent:
		t, box = maxExtent(pose, target)
	default:
		t, box = verticalFit(pose, visual, target)
	}

	if l := n.Logger; l != nil {
		l.Debug("normalize",
			"policy", n.Policy.String(),
			"bones", len(pose),
			"size", box.Size(),
			"scale", t.Scale,
			"translation", t.Translation)
	}
	return t
}

func verticalFit(pose skeleton.Pose, visual *skelmesh.Visual, target float64) (Transform, mathutil.Box3) {
	if len(pose) == 0 || visual == nil || len(visual.Primitives) == 0 {
		return Identity(), mathutil.EmptyBox()
	}
	// Coincident bones: the markers alone would otherwise give a tiny,
	// meaningless height and a huge scale.
	origins := mathutil.BoxFromPoints(pose.Origins())
	if !origins.Finite() || mathutil.MaxComponent(origins.Size()) == 0 {
		return Identity(), origins
	}

	box := visual.Bounds(pose, mgl64.Ident4())
	if box.Empty() || !box.Finite() {
		return Identity(), box
	}

	h := box.Size()[1]
	if !(h > 0) {
		return Identity(), box
	}
	s := target / h
	if !mathutil.IsFinite(s) {
		return Identity(), box
	}

	// Re-measure under the scale and move its centre to the origin.
	scaled := visual.Bounds(pose, mgl64.Scale3D(s, s, s))
	return Transform{Scale: s, Translation: scaled.Center().Mul(-1)}, box
}

func maxExtent(pose skeleton.Pose, target float64) (Transform, mathutil.Box3) {
	if len(pose) == 0 {
		return Identity(), mathutil.EmptyBox()
	}
	box := mathutil.BoxFromPoints(pose.Origins())
	if !box.Finite() {
		return Identity(), box
	}

	m := mathutil.MaxComponent(box.Size())
	if !(m > 0) || !mathutil.IsFinite(m) {
		return Identity(), box
	}
	s := target / m
	if !mathutil.IsFinite(s) {
		return Identity(), box
	}
	return Transform{Scale: s, Translation: box.Center().Mul(-s)}, box
}
