package viewer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"mocap-pair-viewer/internal/bvh"
)

// ErrNoSource is returned when a viewer has no motion file to load.
var ErrNoSource = errors.New("viewer: no source file")

// Loader resolves a source path into a parsed motion.
type Loader interface {
	Load(ctx context.Context, path string) (*bvh.Motion, error)
}

// FileLoader reads BVH files, resolving relative paths against Dir.
type FileLoader struct {
	Dir string
}

// Load parses the BVH file at path.
func (l FileLoader) Load(ctx context.Context, path string) (*bvh.Motion, error) {
	if path == "" {
		return nil, ErrNoSource
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := path
	if l.Dir != "" && !filepath.IsAbs(path) {
		full = filepath.Join(l.Dir, path)
	}
	m, err := bvh.Parse(full)
	if err != nil {
		return nil, fmt.Errorf("viewer: load %s: %w", path, err)
	}
	return m, nil
}
