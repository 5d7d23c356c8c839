package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"mocap-pair-viewer/internal/camera"
	"mocap-pair-viewer/internal/normalize"
	"mocap-pair-viewer/internal/output"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir   string `json:"base_dir"`
	BVHDir    string `json:"bvh_dir"`
	StudyXML  string `json:"study_xml"`
	OutputDir string `json:"output_dir"`

	// Render settings
	ViewportWidth  int    `json:"viewport_width"`
	ViewportHeight int    `json:"viewport_height"`
	Supersample    int    `json:"supersample"`
	FPS            int    `json:"fps"`
	Frames         int    `json:"frames"` // 0 renders the whole clip
	Format         string `json:"format"`
	Workers        int    `json:"workers"`

	// Normalization
	TargetSize      float64 `json:"target_size"`
	NormalizePolicy string  `json:"normalize_policy"`

	// Camera overrides keyed by modNo, e.g. "0".
	Cameras map[string]camera.Placement `json:"cameras"`

	// Live view
	Listen string `json:"listen"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.DataDir != "" {
		c.BaseDir = flags.DataDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Policy != "" {
		c.NormalizePolicy = flags.Policy
	}
	if flags.Listen != "" {
		c.Listen = flags.Listen
	}

	// Auto-detect base dir if still empty
	if c.BaseDir == "" {
		c.BaseDir = detectBaseDir()
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		if c.BVHDir == "" {
			c.BVHDir = filepath.Join(c.BaseDir, "static", "bvh")
		} else if !filepath.IsAbs(c.BVHDir) {
			c.BVHDir = filepath.Join(c.BaseDir, c.BVHDir)
		}

		if c.StudyXML != "" && !filepath.IsAbs(c.StudyXML) {
			c.StudyXML = filepath.Join(c.BaseDir, c.StudyXML)
		}

		if c.OutputDir == "" {
			c.OutputDir = filepath.Join(c.BaseDir, "renders")
		} else if !filepath.IsAbs(c.OutputDir) {
			c.OutputDir = filepath.Join(c.BaseDir, c.OutputDir)
		}
	}

	// Defaults for render settings
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 480
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 360
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.Format == "" {
		c.Format = string(output.WebP)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.TargetSize <= 0 {
		c.TargetSize = normalize.DefaultTarget
	}
	if c.NormalizePolicy == "" {
		c.NormalizePolicy = normalize.VerticalFit.String()
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
}

// Validate checks the settings that Resolve cannot default.
func (c *Config) Validate() error {
	if _, err := output.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := normalize.ParsePolicy(c.NormalizePolicy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Normalizer builds the configured normalizer.
func (c *Config) Normalizer() (normalize.Normalizer, error) {
	p, err := normalize.ParsePolicy(c.NormalizePolicy)
	if err != nil {
		return normalize.Normalizer{}, fmt.Errorf("config: %w", err)
	}
	return normalize.Normalizer{Policy: p, Target: c.TargetSize}, nil
}

// CameraTable returns the placement table with overrides applied.
func (c *Config) CameraTable() (camera.Table, error) {
	t := camera.DefaultTable()
	if err := t.Merge(c.Cameras); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return t, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	DataDir   string
	OutputDir string
	Format    string
	Workers   int
	Frames    int
	Policy    string
	Listen    string
}

func detectBaseDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir), filepath.Join(dir, "..", "..")} {
			if _, err := os.Stat(filepath.Join(base, "static", "bvh")); err == nil {
				return base
			}
		}
	}

	// Try current working directory
	cwd, _ := os.Getwd()
	if _, err := os.Stat(filepath.Join(cwd, "static", "bvh")); err == nil {
		return cwd
	}

	return ""
}
