package skeleton

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Clip is a decoded animation: one local transform per bone per frame.
type Clip struct {
	FrameTime float64 // seconds between frames
	Frames    [][]LocalTransform
}

// Len returns the number of frames.
func (c *Clip) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Frames)
}

// Duration is the time of the last key; playback loops over it.
func (c *Clip) Duration() time.Duration {
	if c.Len() < 2 {
		return 0
	}
	return time.Duration(float64(c.Len()-1) * c.FrameTime * float64(time.Second))
}

// Frame returns the keys of frame i, clamped to the clip.
func (c *Clip) Frame(i int) []LocalTransform {
	if c.Len() == 0 {
		return nil
	}
	if i < 0 {
		i = 0
	}
	if i >= len(c.Frames) {
		i = len(c.Frames) - 1
	}
	return c.Frames[i]
}

// Sample interpolates the clip at t seconds, looping past the end.
// Translations are lerped, rotations slerped along the shortest path.
// The result is written into out when it has room.
func (c *Clip) Sample(t float64, out []LocalTransform) []LocalTransform {
	n := c.Len()
	if n == 0 {
		return out[:0]
	}
	nb := len(c.Frames[0])
	if cap(out) < nb {
		out = make([]LocalTransform, nb)
	}
	out = out[:nb]

	dur := float64(n-1) * c.FrameTime
	if n == 1 || dur <= 0 {
		copy(out, c.Frames[0])
		return out
	}

	t = math.Mod(t, dur)
	if t < 0 {
		t += dur
	}
	f := t / c.FrameTime
	i := int(f)
	if i >= n-1 {
		i = n - 2
	}
	a := f - float64(i)

	k0, k1 := c.Frames[i], c.Frames[i+1]
	for b := 0; b < nb; b++ {
		out[b] = LocalTransform{
			Translation: lerp(k0[b].Translation, k1[b].Translation, a),
			Rotation:    slerp(k0[b].Rotation, k1[b].Rotation, a),
		}
	}
	return out
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t)
}
