// Package playback advances and renders a set of viewers from one frame loop.
package playback

import (
	"image"
	"log/slog"
	"sync"

	"mocap-pair-viewer/internal/logging"
)

// Instance is a playable, renderable viewer.
type Instance interface {
	Advance(dt float64)
	Render() (*image.NRGBA, error)
}

// Registry is the set of active instances driven by one frame tick.
// Membership is safe to change from any goroutine; instance state is only
// touched inside Tick.
type Registry struct {
	Logger *slog.Logger

	tickMu sync.Mutex // held for a whole tick
	mu     sync.Mutex
	items  []Instance
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{Logger: logger}
}

func (r *Registry) logger() *slog.Logger {
	return logging.OrNop(r.Logger)
}

// Register appends inst. Registering the same instance twice is a no-op.
func (r *Registry) Register(inst Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it == inst {
			return
		}
	}
	r.items = append(r.items, inst)
}

// Deregister removes inst and reports whether it was present. It waits for a
// tick in progress, so once it returns the instance is no longer touched and
// may be disposed.
func (r *Registry) Deregister(inst Instance) bool {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items {
		if it == inst {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered instances.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Instances returns a snapshot in registration order.
func (r *Registry) Instances() []Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Instance, len(r.items))
	copy(out, r.items)
	return out
}

// Tick advances every instance by dt seconds and renders it. Frames come back
// in registration order; an instance whose render failed gets a nil frame.
func (r *Registry) Tick(dt float64) []*image.NRGBA {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()

	insts := r.Instances()
	frames := make([]*image.NRGBA, len(insts))
	for i, inst := range insts {
		inst.Advance(dt)
		img, err := inst.Render()
		if err != nil {
			r.logger().Warn("render failed", "index", i, "err", err)
			continue
		}
		frames[i] = img
	}
	return frames
}
