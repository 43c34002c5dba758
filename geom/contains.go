package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Contains reports closed-set membership of p in s, shrunk by clearance
// (a non-negative epsilon; pass 0 for an exact closed-set test). For a
// Cylinder the axial coordinate must lie in [anchor, anchor+length] and
// the radial distance must be <= radius, both after applying clearance.
func Contains(p mgl64.Vec3, s Shape, clearance float64) bool {
	switch s.Kind {
	case Rectangle, Box:
		for i := 0; i < 3; i++ {
			if p[i] < s.Min[i]+clearance || p[i] > s.Max[i]-clearance {
				return false
			}
		}
		return true
	case Sphere:
		d := p.Sub(s.Center).Len()
		return d <= s.Radius-clearance
	case Cylinder:
		axial := p[s.Axis] - s.Center[s.Axis]
		if axial < clearance || axial > s.Length-clearance {
			return false
		}
		r := radialDistance(p, s)
		return r <= s.Radius-clearance
	default:
		return false
	}
}

// radialDistance returns the distance from p to the cylinder's centerline,
// measured in the plane perpendicular to s.Axis.
func radialDistance(p mgl64.Vec3, s Shape) float64 {
	var dx, dy float64
	switch s.Axis {
	case AxisX:
		dx, dy = p.Y()-s.Center.Y(), p.Z()-s.Center.Z()
	case AxisY:
		dx, dy = p.X()-s.Center.X(), p.Z()-s.Center.Z()
	default: // AxisZ
		dx, dy = p.X()-s.Center.X(), p.Y()-s.Center.Y()
	}
	return math.Sqrt(dx*dx + dy*dy)
}

// crossAxes returns the two axes perpendicular to axis, in ascending order.
func crossAxes(axis Axis) (a, b Axis) {
	switch axis {
	case AxisX:
		return AxisY, AxisZ
	case AxisY:
		return AxisX, AxisZ
	default:
		return AxisX, AxisY
	}
}

