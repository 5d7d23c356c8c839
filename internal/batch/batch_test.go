package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"mocap-pair-viewer/internal/camera"
	"mocap-pair-viewer/internal/normalize"
	"mocap-pair-viewer/internal/output"
	"mocap-pair-viewer/internal/study"
	"mocap-pair-viewer/internal/viewer"
)

const armBVH = `HIERARCHY
ROOT Hips
{
	OFFSET 0 0 0
	CHANNELS 6 Xposition Yposition Zposition Zrotation Xrotation Yrotation
	JOINT Arm
	{
		OFFSET 0 30 0
		CHANNELS 3 Zrotation Xrotation Yrotation
		End Site
		{
			OFFSET 0 30 0
		}
	}
}
MOTION
Frames: 3
Frame Time: 0.5
0 90 0 0 0 0  0 0 0
0 90 0 0 0 0  45 0 0
0 90 0 0 0 0  90 0 0
`

func setup(t *testing.T) (Config, []study.Pair) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"wave-low-weight.bvh", "wave-high-weight.bvh"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(armBVH), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := Config{
		Loader:      viewer.FileLoader{Dir: dir},
		OutputDir:   filepath.Join(dir, "out"),
		Width:       32,
		Height:      24,
		Supersample: 1,
		FPS:         4,
		Format:      output.WebP,
		Workers:     2,
		Normalizer:  normalize.Normalizer{Policy: normalize.VerticalFit, Target: normalize.DefaultTarget},
		Cameras:     camera.DefaultTable(),
	}
	pairs := []study.Pair{
		{Index: 1, CategoryName: "weight", ModNo: 1, Left: "wave-low-weight.bvh", Right: "wave-high-weight.bvh"},
		{Index: 2, CategoryName: "weight", ModNo: 2, Left: "wave-low-weight.bvh", Right: "missing.bvh"},
	}
	return cfg, pairs
}

func TestRun(t *testing.T) {
	cfg, pairs := setup(t)
	results := Run(context.Background(), cfg, pairs)

	ok := results[0]
	if !ok.Success {
		t.Fatalf("pair 1 failed: %s", ok.Error)
	}
	// 1s clip at 4 fps, both ends included.
	if ok.Frames != 5 {
		t.Errorf("frames = %d, want 5", ok.Frames)
	}
	if ok.MPJPE != 0 {
		t.Errorf("identical motions MPJPE = %v", ok.MPJPE)
	}
	for i := 0; i < ok.Frames; i++ {
		p := filepath.Join(cfg.OutputDir, ok.Dir, output.FrameName(i, cfg.Format))
		if _, err := os.Stat(p); err != nil {
			t.Errorf("frame %d: %v", i, err)
		}
	}

	if results[1].Success || results[1].Error == "" {
		t.Errorf("pair with missing file succeeded: %+v", results[1])
	}
}

func TestFixedFrameCount(t *testing.T) {
	cfg, pairs := setup(t)
	cfg.Frames = 2
	cfg.Format = output.TGA
	res := Run(context.Background(), cfg, pairs[:1])[0]
	if !res.Success || res.Frames != 2 {
		t.Fatalf("result = %+v", res)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, res.Dir, "frame_00001.tga")); err != nil {
		t.Error(err)
	}
}

func TestWriteManifest(t *testing.T) {
	cfg, pairs := setup(t)
	results := Run(context.Background(), cfg, pairs)
	path := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := WriteManifest(path, cfg, results); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	if len(m.Pairs) != 1 {
		t.Fatalf("manifest pairs = %d, want 1", len(m.Pairs))
	}
	e := m.Pairs[0]
	if e.Left != "wave-low-weight.bvh" || e.Frames != 5 || e.FirstFrame != "weight/pair_01/frame_00000.webp" {
		t.Errorf("entry = %+v", e)
	}
}

func TestCancelled(t *testing.T) {
	cfg, pairs := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, r := range Run(ctx, cfg, pairs) {
		if r.Success {
			t.Errorf("pair %d rendered after cancel", r.Pair.Index)
		}
	}
}
