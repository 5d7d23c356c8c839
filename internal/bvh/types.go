package bvh

import "mocap-pair-viewer/internal/skeleton"

// ChannelKind separates translation channels from rotation channels.
type ChannelKind uint8

const (
	Position ChannelKind = iota
	Rotation
)

// Channel is one animated degree of freedom, e.g. "Zrotation".
type Channel struct {
	Kind ChannelKind
	Axis byte // 'X', 'Y' or 'Z'
}

func (c Channel) String() string {
	if c.Kind == Position {
		return string(c.Axis) + "position"
	}
	return string(c.Axis) + "rotation"
}

// Motion is a parsed BVH file: bone topology plus the decoded animation.
type Motion struct {
	Skeleton *skeleton.Skeleton
	Channels [][]Channel // per bone, in file order; empty for End Sites
	Clip     *skeleton.Clip

	// Surplus counts values found after the declared frames. They are
	// ignored; exporters often leave a partial or extra frame behind.
	Surplus int
}

// ChannelCount returns the number of values per frame line.
func (m *Motion) ChannelCount() int {
	n := 0
	for _, ch := range m.Channels {
		n += len(ch)
	}
	return n
}

// FrameTime is the time between frames in seconds.
func (m *Motion) FrameTime() float64 {
	if m.Clip == nil {
		return 0
	}
	return m.Clip.FrameTime
}
