package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gomolsim/molsim/simerr"
)

// Intersects reports whether a and b share any point after both are
// shrunk by clearance, and neither surrounds the other (spec.md §4.A).
func Intersects(a, b Shape, clearance float64) (bool, error) {
	if surroundsEither, err := eitherSurrounds(a, b, clearance); err != nil {
		return false, err
	} else if surroundsEither {
		return false, nil
	}

	switch {
	case isRectOrBox(a) && isRectOrBox(b):
		return boxOverlap(a, b, clearance), nil
	case a.Kind == Sphere && isRectOrBox(b):
		return sphereBoxOverlap(a, b, clearance), nil
	case b.Kind == Sphere && isRectOrBox(a):
		return sphereBoxOverlap(b, a, clearance), nil
	case a.Kind == Sphere && b.Kind == Sphere:
		d := a.Center.Sub(b.Center).Len()
		return d < a.Radius+b.Radius-clearance, nil
	case a.Kind == Cylinder && isRectOrBox(b):
		return cylinderBoxOverlap(a, b, clearance), nil
	case b.Kind == Cylinder && isRectOrBox(a):
		return cylinderBoxOverlap(b, a, clearance), nil
	case a.Kind == Cylinder && b.Kind == Cylinder:
		if a.Axis != b.Axis {
			return false, simerr.New(simerr.UnsupportedShapePair, "geometry", "", "cylinder/cylinder intersects requires equal orientation axes")
		}
		return cylinderCylinderOverlap(a, b, clearance), nil
	default:
		return false, simerr.New(simerr.UnsupportedShapePair, "geometry", "", "unsupported shape pair for Intersects: "+a.Kind.String()+"/"+b.Kind.String())
	}
}

func isRectOrBox(s Shape) bool { return s.Kind == Rectangle || s.Kind == Box }

func eitherSurrounds(a, b Shape, clearance float64) (bool, error) {
	ab, err := Surrounds(a, b, clearance)
	if err != nil {
		// Surrounds may legitimately not support the pair; that's not an
		// intersects failure by itself, only relevant combinations matter.
		ab = false
	}
	ba, err2 := Surrounds(b, a, clearance)
	if err2 != nil {
		ba = false
	}
	return ab || ba, nil
}

func boxOverlap(a, b Shape, clearance float64) bool {
	for i := 0; i < 3; i++ {
		if a.Max[i]-clearance <= b.Min[i]+clearance || b.Max[i]-clearance <= a.Min[i]+clearance {
			return false
		}
	}
	return true
}

// sphereBoxOverlap is the classical squared-distance test: the closest
// point on the box to the sphere center must be within radius-clearance.
func sphereBoxOverlap(sph, box Shape, clearance float64) bool {
	var distSq float64
	for i := 0; i < 3; i++ {
		c := sph.Center[i]
		lo, hi := box.Min[i]+clearance, box.Max[i]-clearance
		var d float64
		if c < lo {
			d = lo - c
		} else if c > hi {
			d = c - hi
		}
		distSq += d * d
	}
	r := sph.Radius - clearance
	return distSq < r*r
}

// cylinderBoxOverlap splits into an axial-extent test and a cross-section
// test. The cross-section test covers the three overlap modes by checking
// the four rectangle corners against the circle and the circle center
// against the rectangle.
func cylinderBoxOverlap(cyl, box Shape, clearance float64) bool {
	lo, hi := cyl.Center[cyl.Axis]+clearance, cyl.Center[cyl.Axis]+cyl.Length-clearance
	if box.Max[cyl.Axis]-clearance <= lo || box.Min[cyl.Axis]+clearance >= hi {
		return false
	}

	axA, axB := crossAxes(cyl.Axis)
	cx, cy := cyl.Center[axA], cyl.Center[axB]
	r := cyl.Radius - clearance
	if r <= 0 {
		return false
	}
	rMinX, rMaxX := box.Min[axA]+clearance, box.Max[axA]-clearance
	rMinY, rMaxY := box.Min[axB]+clearance, box.Max[axB]-clearance

	// Mode 1: circle center inside rectangle.
	if cx >= rMinX && cx <= rMaxX && cy >= rMinY && cy <= rMaxY {
		return true
	}
	// Mode 2: any rectangle corner inside circle.
	corners := [4][2]float64{{rMinX, rMinY}, {rMinX, rMaxY}, {rMaxX, rMinY}, {rMaxX, rMaxY}}
	for _, c := range corners {
		dx, dy := c[0]-cx, c[1]-cy
		if dx*dx+dy*dy <= r*r {
			return true
		}
	}
	// Mode 3: circle crosses a rectangle edge without containing a corner
	// or being contained — closest point on rectangle to center within r.
	clampedX := clamp(cx, rMinX, rMaxX)
	clampedY := clamp(cy, rMinY, rMaxY)
	dx, dy := clampedX-cx, clampedY-cy
	return dx*dx+dy*dy <= r*r
}

func cylinderCylinderOverlap(a, b Shape, clearance float64) bool {
	loA, hiA := a.Center[a.Axis]+clearance, a.Center[a.Axis]+a.Length-clearance
	loB, hiB := b.Center[b.Axis]+clearance, b.Center[b.Axis]+b.Length-clearance
	if hiA <= loB || hiB <= loA {
		return false
	}
	axA, axB := crossAxes(a.Axis)
	dx := a.Center[axA] - b.Center[axA]
	dy := a.Center[axB] - b.Center[axB]
	d := math.Sqrt(dx*dx + dy*dy)
	return d < a.Radius+b.Radius-clearance
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Surrounds reports whether b lies strictly inside a, shrunk by clearance
// (spec.md §4.A).
func Surrounds(a, b Shape, clearance float64) (bool, error) {
	switch {
	case isRectOrBox(a) && isRectOrBox(b):
		for i := 0; i < 3; i++ {
			if b.Min[i] < a.Min[i]+clearance || b.Max[i] > a.Max[i]-clearance {
				return false, nil
			}
		}
		return true, nil
	case a.Kind == Sphere && b.Kind == Sphere:
		d := a.Center.Sub(b.Center).Len()
		return d+b.Radius <= a.Radius-clearance, nil
	case a.Kind == Sphere && isRectOrBox(b):
		for _, c := range boxCorners(b) {
			if c.Sub(a.Center).Len() > a.Radius-clearance {
				return false, nil
			}
		}
		return true, nil
	case a.Kind == Cylinder && isRectOrBox(b):
		lo, hi := a.Center[a.Axis]+clearance, a.Center[a.Axis]+a.Length-clearance
		if b.Min[a.Axis] < lo || b.Max[a.Axis] > hi {
			return false, nil
		}
		for _, c := range boxCorners(b) {
			if radialDistance(c, a) > a.Radius-clearance {
				return false, nil
			}
		}
		return true, nil
	case a.Kind == Cylinder && b.Kind == Cylinder:
		if a.Axis != b.Axis {
			return false, simerr.New(simerr.UnsupportedShapePair, "geometry", "", "cylinder/cylinder surrounds requires equal orientation axes")
		}
		loA, hiA := a.Center[a.Axis]+clearance, a.Center[a.Axis]+a.Length-clearance
		loB, hiB := b.Center[b.Axis], b.Center[b.Axis]+b.Length
		if loB < loA || hiB > hiA {
			return false, nil
		}
		axA, axB := crossAxes(a.Axis)
		dx := a.Center[axA] - b.Center[axA]
		dy := a.Center[axB] - b.Center[axB]
		d := math.Sqrt(dx*dx + dy*dy)
		return d <= a.Radius-b.Radius-clearance, nil
	default:
		return false, simerr.New(simerr.UnsupportedShapePair, "geometry", "", "unsupported shape pair for Surrounds: "+a.Kind.String()+"/"+b.Kind.String())
	}
}

func boxCorners(s Shape) [8]mgl64.Vec3 {
	return [8]mgl64.Vec3{
		{s.Min.X(), s.Min.Y(), s.Min.Z()},
		{s.Min.X(), s.Min.Y(), s.Max.Z()},
		{s.Min.X(), s.Max.Y(), s.Min.Z()},
		{s.Min.X(), s.Max.Y(), s.Max.Z()},
		{s.Max.X(), s.Min.Y(), s.Min.Z()},
		{s.Max.X(), s.Min.Y(), s.Max.Z()},
		{s.Max.X(), s.Max.Y(), s.Min.Z()},
		{s.Max.X(), s.Max.Y(), s.Max.Z()},
	}
}

// IntersectBoundary computes the resulting shape of intersecting a and b
// (spec.md §4.A). Box∩box is a box by min/max per axis; one boundary fully
// inside the other returns that boundary; disjoint returns an empty box.
func IntersectBoundary(a, b Shape) (Shape, error) {
	switch {
	case isRectOrBox(a) && isRectOrBox(b):
		lo := mgl64.Vec3{math.Max(a.Min.X(), b.Min.X()), math.Max(a.Min.Y(), b.Min.Y()), math.Max(a.Min.Z(), b.Min.Z())}
		hi := mgl64.Vec3{math.Min(a.Max.X(), b.Max.X()), math.Min(a.Max.Y(), b.Max.Y()), math.Min(a.Max.Z(), b.Max.Z())}
		for i := 0; i < 3; i++ {
			if lo[i] > hi[i] {
				return Shape{Kind: Box}, nil // empty box
			}
		}
		return Shape{Kind: Box, Min: lo, Max: hi}, nil
	case a.Kind == Cylinder && b.Kind == Cylinder && a.Axis == b.Axis:
		if ok, _ := Surrounds(a, b, 0); ok {
			return b, nil
		}
		if ok, _ := Surrounds(b, a, 0); ok {
			return a, nil
		}
		return Shape{}, simerr.New(simerr.UnsupportedShapePair, "geometry", "", "cylinder/cylinder intersect_boundary requires one cross-section inside the other")
	case a.Kind == Cylinder && isRectOrBox(b):
		return cylinderBoxIntersectBoundary(a, b)
	case b.Kind == Cylinder && isRectOrBox(a):
		return cylinderBoxIntersectBoundary(b, a)
	default:
		return Shape{}, simerr.New(simerr.UnsupportedShapePair, "geometry", "", "unsupported shape pair for IntersectBoundary: "+a.Kind.String()+"/"+b.Kind.String())
	}
}

func cylinderBoxIntersectBoundary(cyl, box Shape) (Shape, error) {
	if ok, _ := Surrounds(cyl, box, 0); ok {
		return box, nil
	}
	axA, axB := crossAxes(cyl.Axis)
	diskInsideBox := true
	for _, d := range []Axis{axA, axB} {
		if cyl.Center[d]-cyl.Radius < box.Min[d] || cyl.Center[d]+cyl.Radius > box.Max[d] {
			diskInsideBox = false
			break
		}
	}
	if diskInsideBox {
		return cyl, nil
	}
	return Shape{}, simerr.New(simerr.UnsupportedShapePair, "geometry", "", "cylinder/box intersect_boundary needs one cross-section contained in the other")
}
