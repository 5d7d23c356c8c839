package bvh

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"mocap-pair-viewer/internal/skeleton"
)

// maxDepth bounds joint nesting so a malformed file cannot grow the stack forever.
const maxDepth = 512

// maxFrames bounds the declared frame count: about ten hours at 120 fps.
const maxFrames = 1 << 22

// Parse reads a BVH file and returns its skeleton and animation clip.
func Parse(path string) (*Motion, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bvh: read %s: %w", path, err)
	}
	m, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return m, nil
}

// Decode parses BVH text from r.
func Decode(r io.Reader) (*Motion, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("bvh: read: %w", err)
	}
	return decode(buf.Bytes())
}

func decode(data []byte) (*Motion, error) {
	p := &parser{toks: strings.Fields(string(data))}
	return p.parse()
}

type parser struct {
	toks []string
	off  int

	skel     skeleton.Skeleton
	channels [][]Channel
}

func (p *parser) next() (string, bool) {
	if p.off >= len(p.toks) {
		return "", false
	}
	t := p.toks[p.off]
	p.off++
	return t, true
}

func (p *parser) peek() string {
	if p.off >= len(p.toks) {
		return ""
	}
	return p.toks[p.off]
}

func (p *parser) expect(want string) error {
	got, ok := p.next()
	if !ok {
		return fmt.Errorf("bvh: unexpected end of file, want %q", want)
	}
	if got != want {
		return fmt.Errorf("bvh: got %q, want %q", got, want)
	}
	return nil
}

func (p *parser) readFloat() (float64, error) {
	t, ok := p.next()
	if !ok {
		return 0, fmt.Errorf("bvh: unexpected end of file, want number")
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, fmt.Errorf("bvh: bad number %q: %w", t, err)
	}
	return v, nil
}

func (p *parser) readVec3() (mgl64.Vec3, error) {
	var v mgl64.Vec3
	for k := 0; k < 3; k++ {
		f, err := p.readFloat()
		if err != nil {
			return v, err
		}
		v[k] = f
	}
	return v, nil
}

func (p *parser) parse() (*Motion, error) {
	if err := p.expect("HIERARCHY"); err != nil {
		return nil, err
	}
	if err := p.expect("ROOT"); err != nil {
		return nil, err
	}
	if err := p.parseJoint(-1, 0); err != nil {
		return nil, err
	}
	if err := p.expect("MOTION"); err != nil {
		return nil, err
	}

	if err := p.expect("Frames:"); err != nil {
		return nil, err
	}
	t, _ := p.next()
	frames, err := strconv.Atoi(t)
	if err != nil || frames < 0 {
		return nil, fmt.Errorf("bvh: bad frame count %q", t)
	}
	if frames > maxFrames {
		return nil, fmt.Errorf("bvh: frame count %d exceeds limit %d", frames, maxFrames)
	}
	if err := p.expect("Frame"); err != nil {
		return nil, err
	}
	if err := p.expect("Time:"); err != nil {
		return nil, err
	}
	frameTime, err := p.readFloat()
	if err != nil {
		return nil, err
	}
	if frameTime <= 0 {
		return nil, fmt.Errorf("bvh: frame time must be positive, got %g", frameTime)
	}

	m := &Motion{
		Skeleton: &p.skel,
		Channels: p.channels,
		Clip:     &skeleton.Clip{FrameTime: frameTime},
	}

	nch := m.ChannelCount()
	values := make([]float64, nch)
	// The header is untrusted; size the slice from the data actually present.
	capacity := frames
	if nch > 0 {
		capacity = min(frames, (len(p.toks)-p.off)/nch)
	}
	m.Clip.Frames = make([][]skeleton.LocalTransform, 0, capacity)
	for f := 0; f < frames; f++ {
		for i := range values {
			v, err := p.readFloat()
			if err != nil {
				return nil, fmt.Errorf("bvh: frame %d channel %d: %w", f, i, err)
			}
			values[i] = v
		}
		m.Clip.Frames = append(m.Clip.Frames, m.frameLocals(values))
	}
	m.Surplus = len(p.toks) - p.off

	return m, nil
}

// parseJoint reads "<name> { OFFSET ... CHANNELS ... children }" after ROOT/JOINT.
func (p *parser) parseJoint(parent, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("bvh: hierarchy deeper than %d", maxDepth)
	}
	name, ok := p.next()
	if !ok {
		return fmt.Errorf("bvh: unexpected end of file, want joint name")
	}
	if err := p.expect("{"); err != nil {
		return err
	}
	if err := p.expect("OFFSET"); err != nil {
		return err
	}
	offset, err := p.readVec3()
	if err != nil {
		return err
	}
	idx := p.skel.Add(name, parent, offset, false)
	p.channels = append(p.channels, nil)

	if p.peek() == "CHANNELS" {
		p.off++
		t, _ := p.next()
		n, err := strconv.Atoi(t)
		if err != nil || n < 0 || n > 6 {
			return fmt.Errorf("bvh: bad channel count %q for %s", t, name)
		}
		chans := make([]Channel, n)
		for i := 0; i < n; i++ {
			t, _ := p.next()
			ch, err := parseChannel(t)
			if err != nil {
				return fmt.Errorf("bvh: joint %s: %w", name, err)
			}
			chans[i] = ch
		}
		p.channels[idx] = chans
	}

	for {
		t, ok := p.next()
		if !ok {
			return fmt.Errorf("bvh: unexpected end of file in joint %s", name)
		}
		switch t {
		case "}":
			return nil
		case "JOINT":
			if err := p.parseJoint(idx, depth+1); err != nil {
				return err
			}
		case "End":
			if err := p.parseEndSite(idx, name); err != nil {
				return err
			}
		default:
			return fmt.Errorf("bvh: unexpected %q in joint %s", t, name)
		}
	}
}

// End sites carry a position only; they become leaf bones named "<parent>_end".
func (p *parser) parseEndSite(parent int, parentName string) error {
	if err := p.expect("Site"); err != nil {
		return err
	}
	if err := p.expect("{"); err != nil {
		return err
	}
	if err := p.expect("OFFSET"); err != nil {
		return err
	}
	offset, err := p.readVec3()
	if err != nil {
		return err
	}
	p.skel.Add(parentName+"_end", parent, offset, true)
	p.channels = append(p.channels, nil)
	return p.expect("}")
}

func parseChannel(s string) (Channel, error) {
	if len(s) != 9 {
		return Channel{}, fmt.Errorf("unknown channel %q", s)
	}
	axis := s[0]
	if axis != 'X' && axis != 'Y' && axis != 'Z' {
		return Channel{}, fmt.Errorf("unknown channel %q", s)
	}
	switch strings.ToLower(s[1:]) {
	case "position":
		return Channel{Kind: Position, Axis: axis}, nil
	case "rotation":
		return Channel{Kind: Rotation, Axis: axis}, nil
	}
	return Channel{}, fmt.Errorf("unknown channel %q", s)
}
