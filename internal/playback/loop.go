package playback

import (
	"context"
	"image"
	"sync/atomic"
	"time"
)

// DefaultInterval is the refresh period of the live loop (60 Hz).
const DefaultInterval = time.Second / 60

// Loop is the single repeating frame callback over a registry.
type Loop struct {
	Registry *Registry
	Interval time.Duration

	// OnFrame, if set, receives the frames of every tick on the loop goroutine.
	OnFrame func(tick uint64, frames []*image.NRGBA)

	ticks atomic.Uint64
}

// Ticks returns how many frames the loop has produced. Safe to call while
// the loop runs.
func (l *Loop) Ticks() uint64 { return l.ticks.Load() }

// Run drives the registry from a time.Ticker until ctx is cancelled, advancing
// instances by the wall-clock time between ticks. It returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := l.Registry.logger()
	log.Info("frame loop started", "interval", interval, "instances", l.Registry.Len())

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Info("frame loop stopped", "ticks", l.ticks.Load())
			return ctx.Err()
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			if delta > interval*2 {
				log.Debug("late frame", "delta", delta, "expected", interval)
			}
			frames := l.Registry.Tick(delta.Seconds())
			n := l.ticks.Add(1)
			if l.OnFrame != nil {
				l.OnFrame(n, frames)
			}
		}
	}
}
