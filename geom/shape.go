// Package geom implements the geometry kernel: boundary containment,
// intersection, adjacency, surround, ray-vs-surface hit, reflection, and
// uniform point sampling for the four primitive shapes the simulator
// supports (rectangle, rectangular box, sphere, axis-aligned cylinder).
package geom

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Kind tags the four supported primitives.
type Kind int

const (
	Rectangle Kind = iota
	Box
	Sphere
	Cylinder
)

func (k Kind) String() string {
	switch k {
	case Rectangle:
		return "Rectangle"
	case Box:
		return "RectangularBox"
	case Sphere:
		return "Sphere"
	case Cylinder:
		return "Cylinder"
	default:
		return "UnknownShape"
	}
}

// Axis names the three coordinate axes, used both as a Rectangle's plane
// normal and as a Cylinder's orientation.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Shape is a tagged variant over the four primitives. Rather than the
// source's flat 6-slot parameter vector, fields are named per the
// geometric role they play; which fields are meaningful depends on Kind:
//
//   - Rectangle: Min, Max (Min[Axis] == Max[Axis], the plane the rectangle
//     lies in is perpendicular to Axis).
//   - Box: Min, Max, all three axes non-degenerate.
//   - Sphere: Center, Radius.
//   - Cylinder: Center (anchor = center of the base circle), Radius,
//     Length, Axis (orientation the cylinder runs along).
type Shape struct {
	Kind   Kind
	Min    mgl64.Vec3
	Max    mgl64.Vec3
	Center mgl64.Vec3
	Radius float64
	Length float64
	Axis   Axis
}

// NewBox builds an axis-aligned box from two opposite corners, normalizing
// min/max per axis.
func NewBox(a, b mgl64.Vec3) Shape {
	return Shape{
		Kind: Box,
		Min:  mgl64.Vec3{min(a.X(), b.X()), min(a.Y(), b.Y()), min(a.Z(), b.Z())},
		Max:  mgl64.Vec3{max(a.X(), b.X()), max(a.Y(), b.Y()), max(a.Z(), b.Z())},
	}
}

// NewRectangle builds a Rectangle lying in the plane perpendicular to axis
// at coordinate planeCoord, spanning [loA,hiA]x[loB,hiB] in the other two
// axes (given in axis order, skipping axis).
func NewRectangle(axis Axis, planeCoord float64, loA, hiA, loB, hiB float64) Shape {
	min := mgl64.Vec3{}
	max := mgl64.Vec3{}
	other := [2]Axis{}
	i := 0
	for a := AxisX; a <= AxisZ; a++ {
		if a == axis {
			continue
		}
		other[i] = a
		i++
	}
	min[axis] = planeCoord
	max[axis] = planeCoord
	min[other[0]] = loA
	max[other[0]] = hiA
	min[other[1]] = loB
	max[other[1]] = hiB
	return Shape{Kind: Rectangle, Min: min, Max: max, Axis: axis}
}

// NewSphere builds a Sphere shape.
func NewSphere(center mgl64.Vec3, radius float64) Shape {
	return Shape{Kind: Sphere, Center: center, Radius: radius}
}

// NewCylinder builds a Cylinder shape. anchor is the center of the base
// circle; the cylinder extends from anchor along axis by length.
func NewCylinder(anchor mgl64.Vec3, axis Axis, radius, length float64) Shape {
	return Shape{Kind: Cylinder, Center: anchor, Radius: radius, Length: length, Axis: axis}
}

// Extent returns the cylinder's [lo, hi] interval along its own axis.
func (s Shape) Extent() (lo, hi float64) {
	lo = s.Center[s.Axis]
	hi = lo + s.Length
	return
}

// Volume returns the shape's 3D volume (0 for a Rectangle).
func (s Shape) Volume() float64 {
	switch s.Kind {
	case Box:
		d := s.Max.Sub(s.Min)
		return d.X() * d.Y() * d.Z()
	case Sphere:
		// The source computes 4/3 with integer division, truncating the
		// coefficient to 1. This implementation uses 4.0/3.0, per the
		// redesign note in spec.md §9.
		return (4.0 / 3.0) * pi * s.Radius * s.Radius * s.Radius
	case Cylinder:
		return pi * s.Radius * s.Radius * s.Length
	default:
		return 0
	}
}

// Area returns the shape's bounding 2D area: a Rectangle's own area, a
// Box/Cylinder/Sphere's characteristic cross-sectional or surface area as
// used by the order-0/order-2 reaction rate scaling in chem.Compile.
func (s Shape) Area() float64 {
	switch s.Kind {
	case Rectangle:
		d := s.Max.Sub(s.Min)
		area := 1.0
		nonzero := 0
		for i := 0; i < 3; i++ {
			if d[i] > 0 {
				area *= d[i]
				nonzero++
			}
		}
		if nonzero == 0 {
			return 0
		}
		return area
	case Box:
		d := s.Max.Sub(s.Min)
		return 2 * (d.X()*d.Y() + d.Y()*d.Z() + d.Z()*d.X())
	case Sphere:
		return 4 * pi * s.Radius * s.Radius
	case Cylinder:
		return 2*pi*s.Radius*s.Radius + 2*pi*s.Radius*s.Length
	default:
		return 0
	}
}

// Bounds returns this shape's axis-aligned bounding box, used for broad-phase
// spatial indexing (e.g. a passive actor footprint's candidate query).
func (s Shape) Bounds() (lo, hi mgl64.Vec3) {
	switch s.Kind {
	case Box, Rectangle:
		return s.Min, s.Max
	case Sphere:
		r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
		return s.Center.Sub(r), s.Center.Add(r)
	case Cylinder:
		r := s.Radius
		lo = s.Center.Sub(mgl64.Vec3{r, r, r})
		hi = s.Center.Add(mgl64.Vec3{r, r, r})
		lo[s.Axis] = s.Center[s.Axis]
		hi[s.Axis] = s.Center[s.Axis] + s.Length
		return lo, hi
	default:
		return s.Center, s.Center
	}
}

const pi = 3.14159265358979323846

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
