// Package mpjpe measures how far apart two motions are: the mean per-joint
// position error over their common frames and joints.
package mpjpe

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"mocap-pair-viewer/internal/bvh"
	"mocap-pair-viewer/internal/skeleton"
)

// ErrEmpty is returned when the motions share no frames or joints.
var ErrEmpty = errors.New("mpjpe: no common frames or joints")

// Result is the comparison of two motions, in the motions' native units.
type Result struct {
	Pair        string    `json:"pair,omitempty"`
	MPJPE       float64   `json:"mpjpe"`
	NumFrames   int       `json:"num_frames"`
	NumJoints   int       `json:"num_joints"`
	FrameErrors []float64 `json:"frame_errors"`
	MinError    float64   `json:"min_error"`
	MaxError    float64   `json:"max_error"`
	Duration    float64   `json:"duration"` // seconds, frames × a's frame time
}

// Compare pairs frame i of a with frame i of b and joint j with joint j, in
// hierarchy order, over min(frames) and min(joints). End sites count as joints.
func Compare(a, b *bvh.Motion) (Result, error) {
	if a == nil || b == nil || a.Clip == nil || b.Clip == nil {
		return Result{}, ErrEmpty
	}
	frames := min(a.Clip.Len(), b.Clip.Len())
	joints := min(a.Skeleton.Len(), b.Skeleton.Len())
	if frames == 0 || joints == 0 {
		return Result{}, ErrEmpty
	}

	res := Result{
		NumFrames:   frames,
		NumJoints:   joints,
		FrameErrors: make([]float64, frames),
		Duration:    float64(frames) * a.FrameTime(),
	}
	dist := make([]float64, joints)
	for f := 0; f < frames; f++ {
		pa := positions(a.Skeleton, a.Clip.Frame(f))
		pb := positions(b.Skeleton, b.Clip.Frame(f))
		for j := 0; j < joints; j++ {
			dist[j] = r3.Norm(r3.Sub(pa[j], pb[j]))
		}
		res.FrameErrors[f] = stat.Mean(dist, nil)
	}
	res.MPJPE = stat.Mean(res.FrameErrors, nil)
	res.MinError = floats.Min(res.FrameErrors)
	res.MaxError = floats.Max(res.FrameErrors)
	return res, nil
}

// CompareFiles parses both BVH files and compares them.
func CompareFiles(pathA, pathB string) (Result, error) {
	a, err := bvh.Parse(pathA)
	if err != nil {
		return Result{}, fmt.Errorf("mpjpe: %w", err)
	}
	b, err := bvh.Parse(pathB)
	if err != nil {
		return Result{}, fmt.Errorf("mpjpe: %w", err)
	}
	res, err := Compare(a, b)
	if err != nil {
		return Result{}, err
	}
	res.Pair = fmt.Sprintf("%s vs %s", pathA, pathB)
	return res, nil
}

func positions(s *skeleton.Skeleton, locals []skeleton.LocalTransform) []r3.Vec {
	origins := s.BuildWorldMatrices(locals).Origins()
	out := make([]r3.Vec, len(origins))
	for i, o := range origins {
		out[i] = r3.Vec{X: o[0], Y: o[1], Z: o[2]}
	}
	return out
}
