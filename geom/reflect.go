package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Reflect computes the post-reflection position given the path that hit
// face of shape s at the point encoded in the preceding LineHitsBoundary
// call. old is the pre-step position, step is the full displacement
// vector for the step, length is its magnitude, current is the point
// actually reached before reflecting (normally the hit point).
// reflectInside distinguishes reflecting off the inside of a shape's
// boundary (the common case — a molecule bouncing off the walls that
// contain it) from the outside.
func Reflect(old, step mgl64.Vec3, length float64, current mgl64.Vec3, s Shape, face FaceID, reflectInside bool) mgl64.Vec3 {
	switch face {
	case FaceMinX, FaceMaxX:
		return mirrorAxis(current, step, 0)
	case FaceMinY, FaceMaxY:
		return mirrorAxis(current, step, 1)
	case FaceMinZ, FaceMaxZ:
		return mirrorAxis(current, step, 2)
	case FaceSphere:
		return reflectSphere(current, step, s)
	case FaceCylCap0, FaceCylCap1:
		return mirrorAxis(current, step, int(s.Axis))
	case FaceCylMantle:
		return reflectCylinderMantle(current, step, s)
	default:
		return current.Add(step)
	}
}

// mirrorAxis mirrors the remaining displacement across the plane
// perpendicular to axis at the hit point: the component of the step along
// axis is negated, the others pass through unchanged.
func mirrorAxis(current, step mgl64.Vec3, axis int) mgl64.Vec3 {
	out := current.Add(step)
	out[axis] = current[axis] - step[axis]
	return out
}

// reflectSphere mirrors across the tangent plane at the intersection
// point: new = target - 2((target-P)*n)n, where target = current+step,
// P = current (the intersection point) and n = (P-center)/|P-center|.
func reflectSphere(current, step mgl64.Vec3, s Shape) mgl64.Vec3 {
	target := current.Add(step)
	n := current.Sub(s.Center)
	if nl := n.Len(); nl > 0 {
		n = n.Mul(1 / nl)
	}
	d := target.Sub(current)
	return target.Sub(n.Mul(2 * d.Dot(n)))
}

// reflectCylinderMantle applies the sphere-derived 2D reflection formula
// in the cross-section plane while preserving the axial component
// (spec.md §4.A; the source's mantle formula has not been validated
// against laminar-flow boundary conditions — kept as specified, not
// extended, per spec.md §9).
func reflectCylinderMantle(current, step mgl64.Vec3, s Shape) mgl64.Vec3 {
	axA, axB := crossAxes(s.Axis)
	target := current.Add(step)

	nx := current[axA] - s.Center[axA]
	ny := current[axB] - s.Center[axB]
	nlen := math.Sqrt(nx*nx + ny*ny)
	if nlen > 0 {
		nx /= nlen
		ny /= nlen
	}

	dx := target[axA] - current[axA]
	dy := target[axB] - current[axB]
	dot := dx*nx + dy*ny

	out := target
	out[axA] = target[axA] - 2*dot*nx
	out[axB] = target[axB] - 2*dot*ny
	out[s.Axis] = target[s.Axis] // axial component preserved
	return out
}
