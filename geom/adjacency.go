package geom

import (
	"math"

	"github.com/gomolsim/molsim/simerr"
)

// Direction identifies which face of shape a is shared with shape b.
type Direction int

const (
	Left Direction = iota
	Right
	Down
	Up
	In
	Out
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Down:
		return "Down"
	case Up:
		return "Up"
	case In:
		return "In"
	case Out:
		return "Out"
	default:
		return "UnknownDirection"
	}
}

// Opposite returns the direction seen from the other side of the shared
// face.
func (d Direction) Opposite() Direction {
	switch d {
	case Left:
		return Right
	case Right:
		return Left
	case Down:
		return Up
	case Up:
		return Down
	case In:
		return Out
	case Out:
		return In
	default:
		return d
	}
}

// Adjacent reports whether a and b share a face, and if so which face of a
// it is. Only defined for box/box, rectangle/rectangle sharing one of the
// three principal planes, and cylinder/cylinder with the same orientation
// (spec.md §4.A). Intersections are explicitly not reported as adjacency.
func Adjacent(a, b Shape, distError float64) (Direction, bool, error) {
	if hit, err := Intersects(a, b, distError); err != nil {
		return 0, false, err
	} else if hit {
		return 0, false, nil
	}

	switch {
	case isRectOrBox(a) && isRectOrBox(b):
		return boxAdjacent(a, b, distError)
	case a.Kind == Cylinder && b.Kind == Cylinder:
		if a.Axis != b.Axis {
			return 0, false, simerr.New(simerr.UnsupportedShapePair, "geometry", "", "cylinder/cylinder adjacency requires equal orientation axes")
		}
		return cylinderAdjacent(a, b, distError)
	default:
		return 0, false, simerr.New(simerr.UnsupportedShapePair, "geometry", "", "Adjacent is only defined for box/box, rectangle/rectangle, and cylinder/cylinder with equal axes")
	}
}

func boxAdjacent(a, b Shape, distError float64) (Direction, bool, error) {
	// Axis pairs: (faceAxis, negDir, posDir)
	type facePair struct {
		axis     int
		negative Direction
		positive Direction
	}
	faces := []facePair{
		{0, Left, Right},
		{1, Down, Up},
		{2, In, Out},
	}
	for _, f := range faces {
		other := [2]int{}
		i := 0
		for ax := 0; ax < 3; ax++ {
			if ax == f.axis {
				continue
			}
			other[i] = ax
			i++
		}
		overlapOther := a.Max[other[0]] > b.Min[other[0]]+distError && b.Max[other[0]] > a.Min[other[0]]+distError &&
			a.Max[other[1]] > b.Min[other[1]]+distError && b.Max[other[1]] > a.Min[other[1]]+distError
		if !overlapOther {
			continue
		}
		if math.Abs(a.Max[f.axis]-b.Min[f.axis]) <= distError {
			return f.positive, true, nil
		}
		if math.Abs(b.Max[f.axis]-a.Min[f.axis]) <= distError {
			return f.negative, true, nil
		}
	}
	return 0, false, nil
}

func cylinderAdjacent(a, b Shape, distError float64) (Direction, bool, error) {
	axA, axB := crossAxes(a.Axis)
	dx := a.Center[axA] - b.Center[axA]
	dy := a.Center[axB] - b.Center[axB]
	centersAlign := math.Abs(dx) <= distError && math.Abs(dy) <= distError
	if !centersAlign {
		return 0, false, nil
	}
	loA, hiA := a.Center[a.Axis], a.Center[a.Axis]+a.Length
	loB, hiB := b.Center[b.Axis], b.Center[b.Axis]+b.Length
	if math.Abs(hiA-loB) <= distError {
		return Out, true, nil
	}
	if math.Abs(hiB-loA) <= distError {
		return In, true, nil
	}
	return 0, false, nil
}
