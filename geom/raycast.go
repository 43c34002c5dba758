package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// FaceID encodes which surface of a shape a ray hit, for use by Reflect.
type FaceID int

const (
	FaceNone FaceID = iota
	FaceMinX
	FaceMaxX
	FaceMinY
	FaceMaxY
	FaceMinZ
	FaceMaxZ
	FaceSphere
	FaceCylCap0
	FaceCylCap1
	FaceCylMantle
)

// Direction maps a box face to the adjacency Direction it corresponds to,
// for resolving a boundary hit to a cross-region neighbor lookup. Curved
// faces (sphere, cylinder mantle) have no single Direction and return
// Out, since curved regions are always linked to at most one neighbor per
// adjacency call (spec.md §4.A).
func (f FaceID) Direction() Direction {
	switch f {
	case FaceMinX:
		return Left
	case FaceMaxX:
		return Right
	case FaceMinY:
		return Down
	case FaceMaxY:
		return Up
	case FaceMinZ, FaceCylCap0:
		return In
	default: // FaceMaxZ, FaceCylCap1, FaceSphere, FaceCylMantle
		return Out
	}
}

// Hit is the result of a LineHitsBoundary query.
type Hit struct {
	Hit   bool
	Dist  float64
	Face  FaceID
	Point mgl64.Vec3
}

// LineHitsBoundary tests the ray (p, dir, up to length) against shape s and
// returns the closest positive hit (spec.md §4.A). inside tells the solver
// which root/root-set is physically meaningful for Sphere (entry vs exit).
func LineHitsBoundary(p, dir mgl64.Vec3, length float64, s Shape, inside bool) Hit {
	switch s.Kind {
	case Rectangle, Box:
		return lineHitsBox(p, dir, length, s)
	case Sphere:
		return lineHitsSphere(p, dir, length, s, inside)
	case Cylinder:
		return lineHitsCylinder(p, dir, length, s, inside)
	default:
		return Hit{}
	}
}

// lineHitsBox tests all six faces and returns the closest positive hit
// with d <= length. A direction component of exactly zero is guarded
// against division by zero (spec.md §4.A numerical policy).
func lineHitsBox(p, dir mgl64.Vec3, length float64, s Shape) Hit {
	best := Hit{}
	bestD := math.Inf(1)

	type face struct {
		axis  int
		coord float64
		id    FaceID
	}
	faces := [6]face{
		{0, s.Min.X(), FaceMinX}, {0, s.Max.X(), FaceMaxX},
		{1, s.Min.Y(), FaceMinY}, {1, s.Max.Y(), FaceMaxY},
		{2, s.Min.Z(), FaceMinZ}, {2, s.Max.Z(), FaceMaxZ},
	}
	for _, f := range faces {
		if dir[f.axis] == 0 {
			continue // parallel to this face's plane, guarded against NaN
		}
		d := (f.coord - p[f.axis]) / dir[f.axis]
		if d <= 0 || d > length || d >= bestD {
			continue
		}
		pt := p.Add(dir.Mul(d))
		other := [2]int{}
		i := 0
		for ax := 0; ax < 3; ax++ {
			if ax == f.axis {
				continue
			}
			other[i] = ax
			i++
		}
		if pt[other[0]] < s.Min[other[0]]-1e-9 || pt[other[0]] > s.Max[other[0]]+1e-9 {
			continue
		}
		if pt[other[1]] < s.Min[other[1]]-1e-9 || pt[other[1]] > s.Max[other[1]]+1e-9 {
			continue
		}
		bestD = d
		best = Hit{Hit: true, Dist: d, Face: f.id, Point: pt}
	}
	return best
}

// lineHitsSphere solves the line-sphere quadratic and picks the entry
// root (outside) or the exit root (inside).
func lineHitsSphere(p, dir mgl64.Vec3, length float64, s Shape, inside bool) Hit {
	oc := p.Sub(s.Center)
	a := dir.Dot(dir)
	if a == 0 {
		return Hit{}
	}
	b := 2 * oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return Hit{}
	}
	sq := math.Sqrt(disc)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)

	var t float64
	if inside {
		t = t1 // exit root
	} else {
		t = t0 // entry root
	}
	if t <= 0 || t > length {
		return Hit{}
	}
	pt := p.Add(dir.Mul(t))
	return Hit{Hit: true, Dist: t, Face: FaceSphere, Point: pt}
}

// lineHitsCylinder tests the two circular caps and the curved mantle
// separately; a zero-length cylinder degenerates to just the disk.
func lineHitsCylinder(p, dir mgl64.Vec3, length float64, s Shape, inside bool) Hit {
	best := Hit{}
	bestD := math.Inf(1)

	consider := func(h Hit) {
		if h.Hit && h.Dist < bestD {
			bestD = h.Dist
			best = h
		}
	}

	if s.Length <= 0 {
		return lineHitsDisk(p, dir, length, s, s.Center, FaceCylCap0)
	}

	lo := s.Center[s.Axis]
	hi := s.Center[s.Axis] + s.Length

	if dir[s.Axis] != 0 {
		consider(lineHitsDisk(p, dir, length, s, s.Center, FaceCylCap0))
		top := s.Center
		top[s.Axis] = hi
		consider(lineHitsDisk(p, dir, length, s, top, FaceCylCap1))
	}

	consider(lineHitsMantle(p, dir, length, s, lo, hi, inside))

	return best
}

func lineHitsDisk(p, dir mgl64.Vec3, length float64, s Shape, planeAnchor mgl64.Vec3, face FaceID) Hit {
	if dir[s.Axis] == 0 {
		return Hit{}
	}
	d := (planeAnchor[s.Axis] - p[s.Axis]) / dir[s.Axis]
	if d <= 0 || d > length {
		return Hit{}
	}
	pt := p.Add(dir.Mul(d))
	if radialDistance(pt, s) > s.Radius+1e-9 {
		return Hit{}
	}
	return Hit{Hit: true, Dist: d, Face: face, Point: pt}
}

func lineHitsMantle(p, dir mgl64.Vec3, length float64, s Shape, lo, hi float64, inside bool) Hit {
	axA, axB := crossAxes(s.Axis)
	px, py := p[axA]-s.Center[axA], p[axB]-s.Center[axB]
	dx, dy := dir[axA], dir[axB]

	a := dx*dx + dy*dy
	if a == 0 {
		return Hit{} // ray parallel to axis, guarded against division by zero
	}
	b := 2 * (px*dx + py*dy)
	c := px*px + py*py - s.Radius*s.Radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return Hit{}
	}
	sq := math.Sqrt(disc)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)

	var t float64
	if inside {
		t = t1
	} else {
		t = t0
	}
	if t <= 0 || t > length {
		return Hit{}
	}
	pt := p.Add(dir.Mul(t))
	axial := pt[s.Axis]
	if axial < lo-1e-9 || axial > hi+1e-9 {
		return Hit{}
	}
	return Hit{Hit: true, Dist: t, Face: FaceCylMantle, Point: pt}
}
