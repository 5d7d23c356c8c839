// Package viewer ties one motion recording to its visual skeleton,
// normalization, camera and playback clock.
package viewer

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"mocap-pair-viewer/internal/bvh"
	"mocap-pair-viewer/internal/camera"
	"mocap-pair-viewer/internal/logging"
	"mocap-pair-viewer/internal/mathutil"
	"mocap-pair-viewer/internal/normalize"
	"mocap-pair-viewer/internal/postprocess"
	"mocap-pair-viewer/internal/raster"
	"mocap-pair-viewer/internal/skeleton"
	"mocap-pair-viewer/internal/skelmesh"
)

// Options configures a viewer instance.
type Options struct {
	Label       string
	Width       int
	Height      int
	Supersample int
	Placement   camera.Placement
	Normalizer  normalize.Normalizer
	Mesh        skelmesh.Options
	Grid        bool
	Logger      *slog.Logger
}

// DefaultOptions returns a 480×360 viewport with 2× supersampling.
func DefaultOptions() Options {
	return Options{
		Width:       480,
		Height:      360,
		Supersample: 2,
		Placement:   camera.DefaultPlacement,
		Normalizer:  normalize.Normalizer{Policy: normalize.VerticalFit, Target: normalize.DefaultTarget},
		Mesh:        skelmesh.DefaultOptions(),
		Grid:        true,
	}
}

// Viewer is one playing motion. Its mutable state is only touched by the
// goroutine that ticks it.
type Viewer struct {
	Label     string
	Source    string
	Motion    *bvh.Motion
	Visual    *skelmesh.Visual
	Transform normalize.Transform
	Camera    *camera.Camera

	clock  float64
	locals []skeleton.LocalTransform
	pose   skeleton.Pose

	width, height, ss int
	grid              bool
	fb                *raster.FrameBuffer
	last              *image.NRGBA
	logger            *slog.Logger
}

// Load fetches path through l and builds a ready-to-play viewer. A viewer is
// only returned once loading, mesh building and normalization all succeeded.
func Load(ctx context.Context, l Loader, path string, opts Options) (*Viewer, error) {
	logger := logging.OrNop(opts.Logger)
	if path == "" {
		logger.Warn("viewer has no source file", "label", opts.Label)
		return nil, ErrNoSource
	}
	m, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if m.Surplus > 0 {
		logger.Debug("ignoring values after last frame", "label", opts.Label, "source", path, "values", m.Surplus)
	}
	v := New(m, opts)
	v.Source = path
	return v, nil
}

// New builds a viewer for an already parsed motion.
func New(m *bvh.Motion, opts Options) *Viewer {
	logger := logging.OrNop(opts.Logger)
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 480, 360
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}
	if opts.Normalizer.Logger == nil {
		opts.Normalizer.Logger = logger
	}

	v := &Viewer{
		Label:  opts.Label,
		Motion: m,
		width:  opts.Width,
		height: opts.Height,
		ss:     opts.Supersample,
		grid:   opts.Grid,
		logger: logger,
	}
	v.Visual = skelmesh.Build(m.Skeleton, opts.Mesh)
	rest := m.Skeleton.RestPose()
	v.Transform = opts.Normalizer.Normalize(rest, v.Visual)
	v.Camera = camera.New(opts.Placement, opts.Width*opts.Supersample, opts.Height*opts.Supersample)
	v.pose = rest
	v.seek(0)

	logger.Info("viewer ready",
		"label", v.Label,
		"bones", m.Skeleton.Len(),
		"markers", v.Visual.Markers(),
		"connectors", v.Visual.Connectors(),
		"frames", m.Clip.Len(),
		"scale", v.Transform.Scale)
	return v
}

// Clock returns the playback position in seconds.
func (v *Viewer) Clock() float64 { return v.clock }

// Pose returns the current world matrices, one per bone.
func (v *Viewer) Pose() skeleton.Pose { return v.pose }

// Advance moves the playback clock by dt seconds and re-poses the skeleton.
// The clip loops.
func (v *Viewer) Advance(dt float64) {
	v.seek(v.clock + dt)
}

func (v *Viewer) seek(t float64) {
	v.clock = t
	if v.Motion == nil {
		return
	}
	clip := v.Motion.Clip
	if clip == nil || clip.Len() == 0 {
		return
	}
	v.locals = clip.Sample(t, v.locals)
	v.pose = v.Motion.Skeleton.BuildWorldMatrices(v.locals)
}

// Items returns the posed, normalized primitives as renderable scene items.
func (v *Viewer) Items() []raster.Item {
	worlds := v.Visual.WorldTransforms(v.pose, v.Transform.Mat4())
	items := make([]raster.Item, len(worlds))
	for i, w := range worlds {
		p := v.Visual.Primitives[i]
		mat := raster.BoneMaterial
		if p.Kind == skelmesh.JointMarker {
			mat = raster.JointMaterial
		}
		items[i] = raster.Item{Mesh: p.Geometry(), World: w, Material: mat}
	}
	return items
}

// Render draws the current pose and returns the viewport image. The returned
// image is owned by the caller.
func (v *Viewer) Render() (*image.NRGBA, error) {
	if v.Motion == nil {
		return nil, fmt.Errorf("viewer: render %s: disposed", v.Label)
	}
	if v.fb == nil {
		v.fb = raster.NewFrameBuffer(v.width*v.ss, v.height*v.ss)
	}
	sc := &raster.Scene{Background: raster.Background, Items: v.Items()}
	if v.grid {
		sc.Grid = raster.DefaultGrid()
	}
	raster.Render(v.fb, v.Camera, sc)

	img := v.fb.Image()
	if v.ss > 1 {
		img = postprocess.Downsample(img, v.width, v.height)
	}
	v.last = img
	return img, nil
}

// Last returns the most recently rendered image, or nil.
func (v *Viewer) Last() *image.NRGBA { return v.last }

// Root returns the normalized world position of the root bone.
func (v *Viewer) Root() mgl64.Vec3 {
	if len(v.pose) == 0 {
		return mgl64.Vec3{}
	}
	return v.Transform.Apply(mathutil.Origin(v.pose[0]))
}

// Dispose releases the render target. A disposed viewer cannot render.
func (v *Viewer) Dispose() {
	v.fb = nil
	v.last = nil
	v.Motion = nil
	v.logger.Debug("viewer disposed", "label", v.Label)
}
