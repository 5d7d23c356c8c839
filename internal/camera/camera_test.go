package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestLookupFallsBack(t *testing.T) {
	tab := DefaultTable()
	if got := tab.Lookup(2); got.Position != (mgl64.Vec3{150, 150, 50}) {
		t.Fatalf("Lookup(2) = %+v", got)
	}
	for _, i := range []int{-1, 4, 99} {
		if got := tab.Lookup(i); got != DefaultPlacement {
			t.Fatalf("Lookup(%d) = %+v, want default", i, got)
		}
	}
}

func TestMerge(t *testing.T) {
	tab := DefaultTable()
	p := Placement{Position: mgl64.Vec3{1, 2, 3}}
	if err := tab.Merge(map[string]Placement{"7": p}); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if tab.Lookup(7) != p {
		t.Fatal("merged placement missing")
	}
	if err := tab.Merge(map[string]Placement{"x": p}); err == nil {
		t.Fatal("expected error for non-numeric key")
	}
}

func TestProjectTargetLandsInCentre(t *testing.T) {
	c := New(DefaultPlacement, 640, 480)
	sx, sy, depth, ok := c.Project(DefaultPlacement.Target)
	if !ok {
		t.Fatal("target should be visible")
	}
	if math.Abs(sx-320) > 1e-6 || math.Abs(sy-240) > 1e-6 {
		t.Fatalf("target projected to (%v, %v)", sx, sy)
	}
	dist := DefaultPlacement.Position.Sub(DefaultPlacement.Target).Len()
	if math.Abs(depth+dist) > 1e-6 {
		t.Fatalf("depth = %v, want %v", depth, -dist)
	}

	// Higher world points appear higher on screen.
	_, syUp, _, _ := c.Project(DefaultPlacement.Target.Add(mgl64.Vec3{0, 10, 0}))
	if syUp >= sy {
		t.Fatalf("up moved down: %v >= %v", syUp, sy)
	}
}

func TestProjectRejectsBehindCamera(t *testing.T) {
	c := New(DefaultPlacement, 100, 100)
	if _, _, _, ok := c.Project(mgl64.Vec3{0, 150, 500}); ok {
		t.Fatal("point behind the camera should be rejected")
	}
}
