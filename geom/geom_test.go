package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestContainsBox(t *testing.T) {
	box := NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10})

	cases := []struct {
		name string
		p    mgl64.Vec3
		want bool
	}{
		{"center", mgl64.Vec3{5, 5, 5}, true},
		{"on boundary", mgl64.Vec3{0, 5, 5}, true},
		{"outside", mgl64.Vec3{-1, 5, 5}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Contains(c.p, box, 0); got != c.want {
				t.Errorf("Contains(%v) = %v, want %v", c.p, got, c.want)
			}
		})
	}
}

func TestContainsCylinder(t *testing.T) {
	cyl := NewCylinder(mgl64.Vec3{0, 0, 0}, AxisZ, 2, 10)

	if !Contains(mgl64.Vec3{1, 0, 5}, cyl, 0) {
		t.Error("expected point on axis-offset radius 1 to be inside radius-2 cylinder")
	}
	if Contains(mgl64.Vec3{3, 0, 5}, cyl, 0) {
		t.Error("expected point at radius 3 to be outside radius-2 cylinder")
	}
	if Contains(mgl64.Vec3{0, 0, -1}, cyl, 0) {
		t.Error("expected point before anchor to be outside cylinder")
	}
}

func TestIntersectsDisjointBoxes(t *testing.T) {
	a := NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := NewBox(mgl64.Vec3{2, 2, 2}, mgl64.Vec3{3, 3, 3})
	hit, err := Intersects(a, b, 0)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("expected disjoint boxes not to intersect")
	}

	empty, err := IntersectBoundary(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Max.X() > empty.Min.X() {
		t.Errorf("expected an empty box for disjoint inputs, got %+v", empty)
	}
}

func TestIntersectsOverlappingBoxes(t *testing.T) {
	a := NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 2, 2})
	b := NewBox(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{3, 3, 3})
	hit, err := Intersects(a, b, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("expected overlapping boxes to intersect")
	}
}

func TestSurroundsBoxBox(t *testing.T) {
	outer := NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10})
	inner := NewBox(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{9, 9, 9})
	ok, err := Surrounds(outer, inner, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected inner box to be surrounded by outer box")
	}
}

func TestAdjacentBoxes(t *testing.T) {
	a := NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := NewBox(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 1, 1})
	dir, ok, err := Adjacent(a, b, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected boxes sharing a face to be adjacent")
	}
	if dir != Right {
		t.Errorf("expected Right, got %v", dir)
	}
}

func TestAdjacentDoesNotReportIntersection(t *testing.T) {
	a := NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 1, 1})
	b := NewBox(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{3, 1, 1})
	_, ok, err := Adjacent(a, b, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("overlapping boxes must not be reported as adjacent")
	}
}

func TestLineHitsBoxClosestFace(t *testing.T) {
	box := NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10})
	hit := LineHitsBoundary(mgl64.Vec3{5, 5, 5}, mgl64.Vec3{1, 0, 0}, 100, box, true)
	if !hit.Hit {
		t.Fatal("expected a hit")
	}
	if math.Abs(hit.Dist-5) > 1e-9 {
		t.Errorf("expected distance 5, got %v", hit.Dist)
	}
	if hit.Face != FaceMaxX {
		t.Errorf("expected FaceMaxX, got %v", hit.Face)
	}
}

func TestLineHitsSphereEntryAndExit(t *testing.T) {
	sph := NewSphere(mgl64.Vec3{0, 0, 0}, 5)
	entry := LineHitsBoundary(mgl64.Vec3{-10, 0, 0}, mgl64.Vec3{1, 0, 0}, 100, sph, false)
	if !entry.Hit || math.Abs(entry.Dist-5) > 1e-9 {
		t.Errorf("expected entry at distance 5, got %+v", entry)
	}
	exit := LineHitsBoundary(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, 100, sph, true)
	if !exit.Hit || math.Abs(exit.Dist-5) > 1e-9 {
		t.Errorf("expected exit at distance 5, got %+v", exit)
	}
}

func TestReflectBoxFaceRoundTrip(t *testing.T) {
	box := NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10})
	old := mgl64.Vec3{8, 5, 5}
	step := mgl64.Vec3{4, 0, 0} // would overshoot past x=10
	hit := LineHitsBoundary(old, mgl64.Vec3{1, 0, 0}, step.Len(), box, true)
	if !hit.Hit {
		t.Fatal("expected hit")
	}
	residual := step.Len() - hit.Dist
	remStep := mgl64.Vec3{residual, 0, 0}
	reflected := Reflect(old, remStep, step.Len(), hit.Point, box, hit.Face, true)

	// Reflecting the reflected point back across the same face returns the
	// original, unreflected target old+step (spec.md §8 round-trip law (iii)).
	back := Reflect(hit.Point, reflected.Sub(hit.Point), remStep.Len(), hit.Point, box, hit.Face, true)
	if want := old.Add(step); back.Sub(want).Len() > 1e-9 {
		t.Errorf("expected round trip to return %v, got %v", want, back)
	}
	if reflected.X() >= 10 {
		t.Errorf("expected reflected point to stay inside box, got x=%v", reflected.X())
	}
}

func TestUniformPointInBoxStaysInside(t *testing.T) {
	box := NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10})
	rng := &sequenceSource{vals: []float64{0.1, 0.5, 0.9, 0.25, 0.75, 0.4}}
	for i := 0; i < 2; i++ {
		p := UniformPoint(rng, box, false, FaceNone)
		if !Contains(p, box, 0) {
			t.Errorf("sampled point %v not contained in box", p)
		}
	}
}

type sequenceSource struct {
	vals []float64
	i    int
}

func (s *sequenceSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}
