package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"mocap-pair-viewer/internal/batch"
	"mocap-pair-viewer/internal/config"
	"mocap-pair-viewer/internal/logging"
	"mocap-pair-viewer/internal/output"
	"mocap-pair-viewer/internal/study"
	"mocap-pair-viewer/internal/viewer"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	category := flag.Int("category", -1, "Render only pairs from this category (0-3)")
	pair := flag.Int("pair", -1, "Render only the pair with this flat index (0-15)")
	frames := flag.Int("frames", 0, "Frames per pair (default: whole clip)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	dataDir := flag.String("data", "", "Path to base directory (default: auto-detect)")
	outputDir := flag.String("output", "", "Output directory (default: <data>/renders)")
	format := flag.String("format", "", "Frame format: webp or tga (default: webp)")
	policy := flag.String("policy", "", "Normalization: vertical-fit or max-extent")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()
	logger := logging.New(os.Stderr, *verbose)

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		DataDir:   *dataDir,
		OutputDir: *outputDir,
		Format:    *format,
		Workers:   *workers,
		Frames:    *frames,
		Policy:    *policy,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.BaseDir == "" {
		fmt.Fprintln(os.Stderr, "Error: cannot find static/bvh directory. Use -data flag or config.json.")
		os.Exit(1)
	}

	st, err := study.Load(cfg.StudyXML)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading study: %v\n", err)
		os.Exit(1)
	}
	pairs := st.AllPairs()

	// Filter by category/pair
	if *category >= 0 || *pair >= 0 {
		var filtered []study.Pair
		for _, p := range pairs {
			if *category >= 0 && p.Category != *category {
				continue
			}
			if *pair >= 0 && p.Index != *pair {
				continue
			}
			filtered = append(filtered, p)
		}
		pairs = filtered
	}

	if len(pairs) == 0 {
		fmt.Println("No pairs to render.")
		os.Exit(0)
	}

	normalizer, err := cfg.Normalizer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	normalizer.Logger = logger
	cameras, err := cfg.CameraTable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	outFormat, err := output.ParseFormat(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Mocap pair renderer → %s (%s)\n", outFormat, normalizer.Policy)
	fmt.Printf("Pairs: %d, Workers: %d, Viewport: %dx%d @ %d fps\n",
		len(pairs), cfg.Workers, cfg.ViewportWidth, cfg.ViewportHeight, cfg.FPS)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		Loader:      viewer.NewCachedLoader(viewer.FileLoader{Dir: cfg.BVHDir}),
		OutputDir:   cfg.OutputDir,
		Width:       cfg.ViewportWidth,
		Height:      cfg.ViewportHeight,
		Supersample: cfg.Supersample,
		FPS:         cfg.FPS,
		Frames:      cfg.Frames,
		Format:      outFormat,
		Workers:     cfg.Workers,
		Normalizer:  normalizer,
		Cameras:     cameras,
		Logger:      logger,
	}

	results := batch.Run(ctx, batchCfg, pairs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	totalFrames := 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
			totalFrames += r.Frames
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d pairs, %d frames\n", success, len(pairs), totalFrames)

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		for _, e := range errors[:min(20, len(errors))] {
			fmt.Printf("  %s vs %s: %s\n", e.Pair.Left, e.Pair.Right, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, batchCfg, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
