package batch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"mocap-pair-viewer/internal/camera"
	"mocap-pair-viewer/internal/logging"
	"mocap-pair-viewer/internal/mpjpe"
	"mocap-pair-viewer/internal/normalize"
	"mocap-pair-viewer/internal/output"
	"mocap-pair-viewer/internal/playback"
	"mocap-pair-viewer/internal/postprocess"
	"mocap-pair-viewer/internal/skelmesh"
	"mocap-pair-viewer/internal/study"
	"mocap-pair-viewer/internal/viewer"
)

// Config holds all shared resources for a batch run.
type Config struct {
	Loader      viewer.Loader
	OutputDir   string
	Width       int // per viewport
	Height      int
	Supersample int
	FPS         int
	Frames      int // 0 renders the longer clip once
	Format      output.Format
	Workers     int
	Normalizer  normalize.Normalizer
	Cameras     camera.Table
	Logger      *slog.Logger
}

// Result holds the outcome of processing one pair.
type Result struct {
	Pair    study.Pair
	Frames  int
	Dir     string // relative to OutputDir
	MPJPE   float64
	Success bool
	Error   string
}

// Run renders all pairs using a worker pool. Each pair gets its own registry,
// so workers share nothing but the read-only config.
func Run(ctx context.Context, cfg Config, pairs []study.Pair) []Result {
	logger := logging.OrNop(cfg.Logger)
	workers := max(cfg.Workers, 1)

	total := len(pairs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					logger.Info("progress", "done", p, "total", total, "pairs_per_sec", float64(p)/elapsed)
				}
			}
		}
	}()

	// Worker pool
	pairChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range pairChan {
				results[idx] = processPair(ctx, cfg, logger, pairs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range pairs {
		pairChan <- i
	}
	close(pairChan)

	wg.Wait()
	close(done)

	return results
}

// PairDir is the output directory of a pair, relative to the run root.
func PairDir(p study.Pair) string {
	return filepath.Join(p.CategoryName, fmt.Sprintf("pair_%02d", p.Index))
}

func processPair(ctx context.Context, cfg Config, logger *slog.Logger, pair study.Pair) Result {
	res := Result{Pair: pair, Dir: PairDir(pair)}
	fail := func(err error) Result {
		logger.Warn("pair failed", "pair", pair.Index, "err", err)
		res.Error = err.Error()
		return res
	}

	opts := viewer.Options{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Supersample: cfg.Supersample,
		Placement:   cfg.Cameras.Lookup(pair.ModNo),
		Normalizer:  cfg.Normalizer,
		Mesh:        skelmesh.DefaultOptions(),
		Grid:        true,
		Logger:      logger,
	}

	reg := playback.NewRegistry(logger)
	var views []*viewer.Viewer
	defer func() {
		for _, v := range views {
			reg.Deregister(v)
			v.Dispose()
		}
	}()
	for _, src := range [2]string{pair.Left, pair.Right} {
		opts.Label = src
		v, err := viewer.Load(ctx, cfg.Loader, src, opts)
		if err != nil {
			return fail(err)
		}
		views = append(views, v)
		reg.Register(v)
	}

	if m, err := mpjpe.Compare(views[0].Motion, views[1].Motion); err == nil {
		res.MPJPE = m.MPJPE
	}

	fps := cfg.FPS
	if fps <= 0 {
		fps = 30
	}
	frames := cfg.Frames
	if frames <= 0 {
		frames = clipFrames(views, fps)
	}
	dt := 1 / float64(fps)

	dir := filepath.Join(cfg.OutputDir, res.Dir)
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		step := dt
		if i == 0 {
			step = 0
		}
		imgs := reg.Tick(step)
		panels := make([]postprocess.Panel, len(imgs))
		for k, img := range imgs {
			panels[k] = postprocess.Panel{Image: img, Caption: views[k].Label}
		}
		frame := postprocess.SideBySide(panels)
		if err := output.WriteFile(filepath.Join(dir, output.FrameName(i, cfg.Format)), frame, cfg.Format); err != nil {
			return fail(err)
		}
	}

	res.Frames = frames
	res.Success = true
	return res
}

// clipFrames covers the longer clip once at fps.
func clipFrames(views []*viewer.Viewer, fps int) int {
	var longest time.Duration
	for _, v := range views {
		longest = max(longest, v.Motion.Clip.Duration())
	}
	return int(math.Floor(longest.Seconds()*float64(fps))) + 1
}
