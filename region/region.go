// Package region builds the static region/subvolume graph (spec.md §4.B):
// partitioning regions into subvolumes, computing neighbor lists including
// cross-region neighbors and boundary subvolumes, and precomputing
// per-neighbor diffusion transition rates for the mesoscopic engine.
package region

import (
	"math"

	"github.com/gomolsim/molsim/geom"
)

// Kind tags a region's role.
type Kind int

const (
	Normal Kind = iota
	Surface2D
	Surface3D
)

// SurfaceKind further tags a Surface2D/Surface3D region.
type SurfaceKind int

const (
	NoSurface SurfaceKind = iota
	Membrane
	Inner
	Outer
)

// FlowFunction selects the time-varying centerline velocity law for
// cylinder flow (spec.md §4.D.1).
type FlowFunction int

const (
	Linear FlowFunction = iota
	Sinus
)

// FlowProfile selects the radial velocity profile for cylinder flow.
type FlowProfile int

const (
	Uniform FlowProfile = iota
	Laminar
)

// Flow describes axial advection inside a Cylinder region.
type Flow struct {
	Velocity     float64
	Acceleration float64
	Function     FlowFunction
	Frequency    float64
	Amplitude    float64
	Profile      FlowProfile
}

// VelocityAt returns the instantaneous centerline velocity at time t.
func (f Flow) VelocityAt(t float64) float64 {
	switch f.Function {
	case Sinus:
		return f.Velocity + f.Amplitude*math.Sin(2*math.Pi*f.Frequency*t)
	default: // Linear
		return f.Velocity + f.Acceleration*t
	}
}

// LocalVelocity returns the axial velocity at radial distance r (0<=r<=R)
// for the given centerline velocity v (spec.md §4.D.1).
func (f Flow) LocalVelocity(v, r, radius float64) float64 {
	if f.Profile == Uniform || radius <= 0 {
		return v
	}
	ratio := r / radius
	return 2 * v * (1 - ratio*ratio)
}

// Region is a geometric partition of the simulated volume, further
// partitioned into subvolumes (spec.md §3).
type Region struct {
	Label         string
	ParentLabel   string
	ParentID      int // -1 if no parent
	Shape         geom.Shape
	Kind          Kind
	SurfaceKind   SurfaceKind
	IsMicroscopic bool
	NX, NY, NZ    int
	SubSize       float64 // multiplier against the global base size
	Flow          *Flow   // non-nil only for Cylinder regions with advection
	Dt            float64

	// SubvolumeStart/SubvolumeCount index into Graph.Subvolumes.
	SubvolumeStart int
	SubvolumeCount int

	// Origin is this region's offset in the global subvolume coordinate
	// grid, set by the builder for rectangular regions.
	Origin [3]int
}

// ActualSubSize returns sub_size * base_size, the concrete side length of
// one of this region's subvolumes.
func (r Region) ActualSubSize(baseSize float64) float64 {
	if r.SubSize <= 0 {
		return baseSize
	}
	return r.SubSize * baseSize
}

// NoMeso is the sentinel MesoID for a subvolume belonging to a
// microscopic region.
const NoMeso = -1

// Subvolume is the unit cell of a region (spec.md §3). For rectangular
// regions it is one grid cell; for cylinders and spheres it is the single
// implicit cell covering the whole region.
type Subvolume struct {
	RegionID int
	MesoID   int // index into the flat meso molecule-count array, or NoMeso if micro
	GridPos  [3]int

	// Neighbors, by subvolume id, owned by this subvolume. NumNeigh is
	// len(Neighbors); kept as an explicit field to mirror spec.md §3's
	// per-subvolume record shape.
	Neighbors   []int
	NeighborDir []geom.Direction
	NumNeigh    int

	IsBoundary bool

	// Counts holds the per-molecule-type integer population, meso only.
	Counts []int

	// DiffusionRate[i][t] is the transition rate to Neighbors[i] for
	// molecule type t, meso boundary subvolumes only.
	DiffusionRate [][]float64

	// Area and Volume are the geometric area/volume the subvolume covers,
	// used by chem.Compile for order-0/order-2 rate scaling.
	Area   float64
	Volume float64
}

// IsMeso reports whether this subvolume belongs to a mesoscopic region.
func (s Subvolume) IsMeso() bool { return s.MesoID != NoMeso }
