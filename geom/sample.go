package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Source is the minimal PRNG surface the geometry kernel needs: a single
// uniform(0,1) draw. *rng.Stream (and any other PRNG collaborator)
// satisfies this structurally.
type Source interface {
	Float64() float64
}

// UniformPoint draws a uniformly distributed point interior to s, or on a
// specified face when onSurface is true (spec.md §4.A). Spheres use
// rejection sampling in the unit cube followed by optional normalization
// to the surface.
func UniformPoint(rng Source, s Shape, onSurface bool, plane FaceID) mgl64.Vec3 {
	switch s.Kind {
	case Rectangle:
		return uniformInBox(rng, s)
	case Box:
		if onSurface {
			return uniformOnBoxFace(rng, s, plane)
		}
		return uniformInBox(rng, s)
	case Sphere:
		return uniformInSphere(rng, s, onSurface)
	case Cylinder:
		return uniformInCylinder(rng, s, onSurface, plane)
	default:
		return mgl64.Vec3{}
	}
}

func uniformInBox(rng Source, s Shape) mgl64.Vec3 {
	var p mgl64.Vec3
	for i := 0; i < 3; i++ {
		if s.Max[i] == s.Min[i] {
			p[i] = s.Min[i]
			continue
		}
		p[i] = s.Min[i] + rng.Float64()*(s.Max[i]-s.Min[i])
	}
	return p
}

func uniformOnBoxFace(rng Source, s Shape, plane FaceID) mgl64.Vec3 {
	var fixedAxis int
	var coord float64
	switch plane {
	case FaceMinX:
		fixedAxis, coord = 0, s.Min.X()
	case FaceMaxX:
		fixedAxis, coord = 0, s.Max.X()
	case FaceMinY:
		fixedAxis, coord = 1, s.Min.Y()
	case FaceMaxY:
		fixedAxis, coord = 1, s.Max.Y()
	case FaceMinZ:
		fixedAxis, coord = 2, s.Min.Z()
	default:
		fixedAxis, coord = 2, s.Max.Z()
	}
	p := uniformInBox(rng, s)
	p[fixedAxis] = coord
	return p
}

// uniformInSphere rejection-samples in the bounding cube [-R,R]^3 until a
// point lands inside the ball, then optionally normalizes to the surface.
func uniformInSphere(rng Source, s Shape, onSurface bool) mgl64.Vec3 {
	for i := 0; i < 1000; i++ {
		x := (2*rng.Float64() - 1) * s.Radius
		y := (2*rng.Float64() - 1) * s.Radius
		z := (2*rng.Float64() - 1) * s.Radius
		d2 := x*x + y*y + z*z
		if d2 > s.Radius*s.Radius || d2 == 0 {
			continue
		}
		p := mgl64.Vec3{x, y, z}
		if onSurface {
			p = p.Mul(s.Radius / math.Sqrt(d2))
		}
		return s.Center.Add(p)
	}
	return s.Center
}

func uniformInCylinder(rng Source, s Shape, onSurface bool, plane FaceID) mgl64.Vec3 {
	axA, axB := crossAxes(s.Axis)

	var r, theta float64
	if onSurface && plane == FaceCylMantle {
		r = s.Radius
	} else {
		r = s.Radius * math.Sqrt(rng.Float64())
	}
	theta = 2 * math.Pi * rng.Float64()

	var axial float64
	switch plane {
	case FaceCylCap0:
		axial = 0
	case FaceCylCap1:
		axial = s.Length
	default:
		axial = rng.Float64() * s.Length
	}

	var p mgl64.Vec3
	p[s.Axis] = s.Center[s.Axis] + axial
	p[axA] = s.Center[axA] + r*math.Cos(theta)
	p[axB] = s.Center[axB] + r*math.Sin(theta)
	return p
}
