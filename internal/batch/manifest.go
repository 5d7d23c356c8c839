package batch

import (
	"encoding/json"
	"os"
	"path/filepath"

	"mocap-pair-viewer/internal/output"
)

// ManifestEntry represents one rendered pair in the output manifest.
type ManifestEntry struct {
	Index        int     `json:"index"`
	Category     int     `json:"category"`
	CategoryName string  `json:"category_name"`
	ModNo        int     `json:"mod_no"`
	Left         string  `json:"left"`
	Right        string  `json:"right"`
	Dir          string  `json:"dir"`
	Frames       int     `json:"frames"`
	FirstFrame   string  `json:"first_frame"`
	MPJPE        float64 `json:"mpjpe"`
}

// Manifest is the run summary written next to the frames.
type Manifest struct {
	FPS    int             `json:"fps"`
	Format output.Format   `json:"format"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Pairs  []ManifestEntry `json:"pairs"`
}

// WriteManifest writes manifest.json for the successful results.
func WriteManifest(path string, cfg Config, results []Result) error {
	m := Manifest{
		FPS:    cfg.FPS,
		Format: cfg.Format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Pairs:  []ManifestEntry{},
	}
	for _, r := range results {
		if !r.Success {
			continue
		}
		m.Pairs = append(m.Pairs, ManifestEntry{
			Index:        r.Pair.Index,
			Category:     r.Pair.Category,
			CategoryName: r.Pair.CategoryName,
			ModNo:        r.Pair.ModNo,
			Left:         r.Pair.Left,
			Right:        r.Pair.Right,
			Dir:          filepath.ToSlash(r.Dir),
			Frames:       r.Frames,
			FirstFrame:   filepath.ToSlash(filepath.Join(r.Dir, output.FrameName(0, cfg.Format))),
			MPJPE:        r.MPJPE,
		})
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
