package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"mocap-pair-viewer/internal/config"
	"mocap-pair-viewer/internal/logging"
	"mocap-pair-viewer/internal/mpjpe"
	"mocap-pair-viewer/internal/study"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	dataDir := flag.String("data", "", "Path to base directory (default: auto-detect)")
	out := flag.String("o", "", "Write the JSON report here instead of stdout")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()
	logger := logging.New(os.Stderr, *verbose)

	var results []mpjpe.Result
	failed := 0

	switch flag.NArg() {
	case 2:
		// Two explicit files.
		r, err := mpjpe.CompareFiles(flag.Arg(0), flag.Arg(1))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		results = append(results, r)

	case 0:
		// Every pair of the study.
		var cfg config.Config
		if *configFile != "" {
			var err error
			cfg, err = config.Load(*configFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
				os.Exit(1)
			}
		}
		cfg.Resolve(config.Flags{DataDir: *dataDir})
		if cfg.BaseDir == "" {
			fmt.Fprintln(os.Stderr, "Error: cannot find static/bvh directory. Use -data flag or config.json.")
			os.Exit(1)
		}
		st, err := study.Load(cfg.StudyXML)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading study: %v\n", err)
			os.Exit(1)
		}
		for _, p := range st.AllPairs() {
			r, err := mpjpe.CompareFiles(filepath.Join(cfg.BVHDir, p.Left), filepath.Join(cfg.BVHDir, p.Right))
			if err != nil {
				logger.Warn("pair skipped", "pair", p.Index, "err", err)
				failed++
				continue
			}
			r.Pair = fmt.Sprintf("%s vs %s", p.Left, p.Right)
			logger.Debug("pair compared", "pair", r.Pair, "mpjpe", r.MPJPE)
			results = append(results, r)
		}

	default:
		fmt.Fprintln(os.Stderr, "Usage: mpjpe [flags] [left.bvh right.bvh]")
		os.Exit(2)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *out == "" {
		fmt.Println(string(data))
	} else if err := os.WriteFile(*out, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	} else {
		fmt.Printf("Report: %s (%d pairs)\n", *out, len(results))
	}

	if failed > 0 {
		os.Exit(1)
	}
}
