package camera

import (
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
)

// Placement is an initial camera position and look-at target.
type Placement struct {
	Position mgl64.Vec3 `json:"position"`
	Target   mgl64.Vec3 `json:"target"`
}

// DefaultPlacement frames a ~150-unit figure from the front, looking at its
// vertical midpoint.
var DefaultPlacement = Placement{
	Position: mgl64.Vec3{0, 150, 400},
	Target:   mgl64.Vec3{0, 75, 0},
}

// Table maps a pair's index within its category to a camera placement.
type Table map[int]Placement

// DefaultTable returns the built-in placements.
func DefaultTable() Table {
	return Table{
		0: {Position: mgl64.Vec3{-125, 150, 350}, Target: mgl64.Vec3{-50, 75, 50}}, // high angle
		1: {Position: mgl64.Vec3{20, 130, 150}, Target: DefaultPlacement.Target},   // frontal
		2: {Position: mgl64.Vec3{150, 150, 50}, Target: DefaultPlacement.Target},   // side
		3: {Position: mgl64.Vec3{20, 130, 150}, Target: DefaultPlacement.Target},   // low angle
	}
}

// Lookup returns the placement for index, falling back to DefaultPlacement.
func (t Table) Lookup(index int) Placement {
	if p, ok := t[index]; ok {
		return p
	}
	return DefaultPlacement
}

// Merge overlays placements keyed by decimal index strings (the JSON form).
func (t Table) Merge(over map[string]Placement) error {
	for k, p := range over {
		i, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("camera: bad placement index %q: %w", k, err)
		}
		t[i] = p
	}
	return nil
}
