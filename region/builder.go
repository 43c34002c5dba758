package region

import (
	"fmt"
	"math"

	"github.com/gomolsim/molsim/geom"
	"github.com/gomolsim/molsim/simerr"
)

// Graph is the static output of Build: every region's metadata, the flat
// subvolume array, and the total mesoscopic subvolume count.
type Graph struct {
	Regions    []Region
	Subvolumes []Subvolume
	MesoCount  int
	DistError  float64
	Clearance  float64
}

// RegionNeighbor returns the id of the region reached by crossing
// regionID's own boundary in direction dir, and true, or false if no
// cross-region link exists in that direction. Used by the micro engine's
// path validation (spec.md §4.D.2) to resolve a boundary hit to a
// destination region without re-deriving the adjacency graph.
func (g *Graph) RegionNeighbor(regionID int, dir geom.Direction) (int, bool) {
	r := g.Regions[regionID]
	for i := r.SubvolumeStart; i < r.SubvolumeStart+r.SubvolumeCount; i++ {
		sv := g.Subvolumes[i]
		for ni, nid := range sv.Neighbors {
			if sv.NeighborDir[ni] != dir {
				continue
			}
			nr := g.Subvolumes[nid].RegionID
			if nr != regionID {
				return nr, true
			}
		}
	}
	return 0, false
}

// Spec is the builder's input for one region (spec.md §6's per-region
// record, minus the config-format-only fields).
type Spec struct {
	Label         string
	ParentLabel   string
	Shape         geom.Shape
	Kind          Kind
	SurfaceKind   SurfaceKind
	IsMicroscopic bool
	NX, NY, NZ    int
	SubSize       float64
	Flow          *Flow
	Dt            float64
}

// Build realizes a set of region specs into a Graph (spec.md §4.B). Shapes
// that force microscopic simulation (Sphere, Cylinder) are corrected
// regardless of the spec's IsMicroscopic flag, per spec.md §3.
func Build(specs []Spec, baseSize float64, distError float64, clearance float64) (*Graph, error) {
	if baseSize <= 0 {
		return nil, simerr.New(simerr.GeometryInvalid, "build", "", "subvolume base size must be positive")
	}

	regions := make([]Region, len(specs))
	labelIndex := make(map[string]int, len(specs))
	for i, sp := range specs {
		if err := validateSpec(sp, i); err != nil {
			return nil, err
		}
		regions[i] = Region{
			Label:         sp.Label,
			ParentLabel:   sp.ParentLabel,
			ParentID:      -1,
			Shape:         sp.Shape,
			Kind:          sp.Kind,
			SurfaceKind:   sp.SurfaceKind,
			IsMicroscopic: sp.IsMicroscopic || sp.Shape.Kind == geom.Sphere || sp.Shape.Kind == geom.Cylinder,
			NX:            sp.NX,
			NY:            sp.NY,
			NZ:            sp.NZ,
			SubSize:       sp.SubSize,
			Flow:          sp.Flow,
			Dt:            sp.Dt,
		}
		labelIndex[sp.Label] = i
	}

	// 1. Resolve parent/child nesting.
	for i := range regions {
		if regions[i].ParentLabel == "" {
			regions[i].ParentID = -1
			continue
		}
		pid, ok := labelIndex[regions[i].ParentLabel]
		if !ok {
			return nil, simerr.New(simerr.GeometryInvalid, "build", regionEntity(regions[i], i),
				fmt.Sprintf("parent label %q not found", regions[i].ParentLabel))
		}
		ok2, err := geom.Surrounds(regions[pid].Shape, regions[i].Shape, clearance)
		if err != nil {
			return nil, simerr.Wrap(simerr.GeometryInvalid, "build", regionEntity(regions[i], i), err)
		}
		if !ok2 {
			return nil, simerr.New(simerr.GeometryInvalid, "build", regionEntity(regions[i], i),
				fmt.Sprintf("parent %q does not surround child", regions[i].ParentLabel))
		}
		regions[i].ParentID = pid
	}

	// Failure: two normal (non-nested) regions overlapping in volume.
	for i := range regions {
		for j := i + 1; j < len(regions); j++ {
			if regions[i].ParentID == j || regions[j].ParentID == i {
				continue // nested by design
			}
			if regions[i].Kind != Normal || regions[j].Kind != Normal {
				continue
			}
			hit, err := geom.Intersects(regions[i].Shape, regions[j].Shape, clearance)
			if err != nil {
				continue // unsupported pair for Intersects simply can't overlap-check; adjacency handles face sharing
			}
			if hit {
				return nil, simerr.New(simerr.GeometryInvalid, "build", "",
					fmt.Sprintf("regions %q and %q overlap in volume", regions[i].Label, regions[j].Label))
			}
		}
	}

	// 2. Grid realization + 3. internal neighbors.
	var subs []Subvolume
	subID := make([]map[[3]int]int, len(regions))
	for ri := range regions {
		r := &regions[ri]
		subID[ri] = map[[3]int]int{}

		if r.Shape.Kind == geom.Sphere || r.Shape.Kind == geom.Cylinder {
			r.SubvolumeStart = len(subs)
			sv := Subvolume{RegionID: ri, MesoID: NoMeso, Volume: r.Shape.Volume(), Area: r.Shape.Area()}
			if !r.IsMicroscopic {
				sv.Counts = make([]int, 0)
			}
			subID[ri][[3]int{0, 0, 0}] = len(subs)
			subs = append(subs, sv)
			r.SubvolumeCount = 1
			continue
		}

		nx, ny, nz := maxInt(r.NX, 1), maxInt(r.NY, 1), maxInt(r.NZ, 1)
		sz := r.ActualSubSize(baseSize)
		r.SubvolumeStart = len(subs)
		for a := 0; a < 3; a++ {
			r.Origin[a] = int(math.Round(r.Shape.Min[a] / baseSize))
		}
		for iz := 0; iz < nz; iz++ {
			for iy := 0; iy < ny; iy++ {
				for ix := 0; ix < nx; ix++ {
					vol := sz * sz * sz
					if r.Shape.Kind == geom.Rectangle {
						vol = 0
					}
					sv := Subvolume{RegionID: ri, MesoID: NoMeso, GridPos: [3]int{ix, iy, iz}, Volume: vol, Area: sz * sz}
					subID[ri][[3]int{ix, iy, iz}] = len(subs)
					subs = append(subs, sv)
				}
			}
		}
		r.SubvolumeCount = nx * ny * nz
	}

	// internal (same-region) face neighbors for rectangular regions.
	for ri := range regions {
		r := &regions[ri]
		if r.Shape.Kind == geom.Sphere || r.Shape.Kind == geom.Cylinder {
			continue
		}
		nx, ny, nz := maxInt(r.NX, 1), maxInt(r.NY, 1), maxInt(r.NZ, 1)
		deltas := []struct {
			d   [3]int
			dir geom.Direction
		}{
			{[3]int{-1, 0, 0}, geom.Left}, {[3]int{1, 0, 0}, geom.Right},
			{[3]int{0, -1, 0}, geom.Down}, {[3]int{0, 1, 0}, geom.Up},
			{[3]int{0, 0, -1}, geom.In}, {[3]int{0, 0, 1}, geom.Out},
		}
		for iz := 0; iz < nz; iz++ {
			for iy := 0; iy < ny; iy++ {
				for ix := 0; ix < nx; ix++ {
					id := subID[ri][[3]int{ix, iy, iz}]
					isBoundary := ix == 0 || iy == 0 || iz == 0 || ix == nx-1 || iy == ny-1 || iz == nz-1
					for _, dd := range deltas {
						np := [3]int{ix + dd.d[0], iy + dd.d[1], iz + dd.d[2]}
						if np[0] < 0 || np[1] < 0 || np[2] < 0 || np[0] >= nx || np[1] >= ny || np[2] >= nz {
							continue
						}
						nid := subID[ri][np]
						subs[id].Neighbors = append(subs[id].Neighbors, nid)
						subs[id].NeighborDir = append(subs[id].NeighborDir, dd.dir)
					}
					subs[id].NumNeigh = len(subs[id].Neighbors)
					subs[id].IsBoundary = isBoundary
				}
			}
		}
	}

	// 4. Cross-region neighbors.
	for i := range regions {
		for j := i + 1; j < len(regions); j++ {
			dir, ok, err := geom.Adjacent(regions[i].Shape, regions[j].Shape, distError)
			if err != nil || !ok {
				continue
			}
			linkCrossRegion(&regions[i], i, &regions[j], j, dir, subID, &subs)
		}
	}

	// mark boundary flags on every subvolume with any neighbor at all in a
	// region that is not a Box (curved single-subvolume regions and
	// Rectangle regions); Box cells keep the flags set above.
	for i := range subs {
		if len(subs[i].Neighbors) != subs[i].NumNeigh {
			subs[i].NumNeigh = len(subs[i].Neighbors)
		}
		if subs[i].NumNeigh > 0 && regions[subs[i].RegionID].Shape.Kind != geom.Box {
			subs[i].IsBoundary = true
		}
	}

	// 5. Assign MesoID (diffusion rates are filled later by SizeDiffusion).
	mesoCount := 0
	for i := range subs {
		r := regions[subs[i].RegionID]
		if r.IsMicroscopic {
			continue
		}
		subs[i].MesoID = mesoCount
		mesoCount++
	}

	return &Graph{Regions: regions, Subvolumes: subs, MesoCount: mesoCount, DistError: distError, Clearance: clearance}, nil
}

// SizeDiffusion fills in DiffusionRate for every mesoscopic boundary
// subvolume, once the number of molecule types and their diffusion
// coefficients are known (this runs after Build because the builder
// itself is agnostic to chemistry, per spec.md §4.B step 5).
func (g *Graph) SizeDiffusion(diffCoeff []float64, baseSize float64) {
	for i := range g.Subvolumes {
		sv := &g.Subvolumes[i]
		r := g.Regions[sv.RegionID]
		if r.IsMicroscopic || !sv.IsBoundary {
			continue
		}
		sv.Counts = make([]int, len(diffCoeff))
		sv.DiffusionRate = make([][]float64, len(sv.Neighbors))
		h := r.ActualSubSize(baseSize)
		for ni, nid := range sv.Neighbors {
			nb := g.Subvolumes[nid]
			nr := g.Regions[nb.RegionID]
			rates := make([]float64, len(diffCoeff))
			for t, d := range diffCoeff {
				if nr.IsMicroscopic {
					// Micro-to-meso boundaries carry no outbound meso rate
					// on the micro side; the micro side transfers molecules
					// directly into the meso neighbor's count (spec.md
					// §4.B step 5). A micro neighbor gets the full-face
					// rate D/h^2; a meso neighbor gets D*area/h^4, which
					// equals D/h^2 for a full h*h face.
					rates[t] = d / (h * h)
					continue
				}
				area := crossSectionalArea(*sv, nb, r, nr, h)
				rates[t] = d * area / (h * h * h * h)
			}
			sv.DiffusionRate[ni] = rates
		}
	}
	for i := range g.Subvolumes {
		sv := &g.Subvolumes[i]
		r := g.Regions[sv.RegionID]
		if !r.IsMicroscopic && sv.Counts == nil {
			sv.Counts = make([]int, len(diffCoeff))
		}
	}
}

// crossSectionalArea returns the shared-face area between a boundary
// subvolume and one of its neighbors: the full face area h*h for an
// interior rectangular-rectangular pair, or a curved region's own
// characteristic cross-section (sphere/cylinder, a single subvolume
// covering the whole region) when either side of the pair is curved,
// bounded by h*h since the curved cross-section is a sub-face overlap
// and can never exceed the adjoining rectangular face it replaces
// (spec.md §4.B step 4).
func crossSectionalArea(sv, nb Subvolume, svRegion, nbRegion Region, h float64) float64 {
	if curved := curvedCrossSection(nbRegion.Shape, h); curved >= 0 {
		return curved
	}
	if curved := curvedCrossSection(svRegion.Shape, h); curved >= 0 {
		return curved
	}
	return h * h
}

// curvedCrossSection returns shape's characteristic circular cross-section
// (pi*r^2) capped at h*h, or -1 if shape isn't curved.
func curvedCrossSection(shape geom.Shape, h float64) float64 {
	switch shape.Kind {
	case geom.Sphere, geom.Cylinder:
		area := math.Pi * shape.Radius * shape.Radius
		if area > h*h {
			return h * h
		}
		return area
	default:
		return -1
	}
}

func linkCrossRegion(a *Region, ai int, b *Region, bi int, dir geom.Direction, subID []map[[3]int]int, subs *[]Subvolume) {
	// For box/box: match boundary subvolumes that share the adjacency
	// direction's face and whose cross-section overlaps.
	if a.Shape.Kind == geom.Box && b.Shape.Kind == geom.Box {
		linkBoxBoxBoundary(a, ai, b, bi, dir, subID, subs)
		return
	}
	// Curved region (sphere/cylinder) vs rectangular, or curved/curved:
	// the curved region is a single subvolume; link it to every boundary
	// subvolume of the rectangular region on the shared face.
	linkCurvedBoundary(a, ai, b, bi, dir, subID, subs)
}

func linkBoxBoxBoundary(a *Region, ai int, b *Region, bi int, dir geom.Direction, subID []map[[3]int]int, subs *[]Subvolume) {
	axis, _ := faceAxis(dir)
	aFace, bFace := faceExtremes(a, b, dir, axis)
	for key, id := range subID[ai] {
		if key[axis] != aFace {
			continue
		}
		for bkey, bid := range subID[bi] {
			if bkey[faceAxisOf(dir.Opposite())] != bFace {
				continue
			}
			if !crossAxesMatch(a, key, b, bkey, axis) {
				continue
			}
			(*subs)[id].Neighbors = append((*subs)[id].Neighbors, bid)
			(*subs)[id].NeighborDir = append((*subs)[id].NeighborDir, dir)
			(*subs)[id].NumNeigh++
			(*subs)[id].IsBoundary = true
			(*subs)[bid].Neighbors = append((*subs)[bid].Neighbors, id)
			(*subs)[bid].NeighborDir = append((*subs)[bid].NeighborDir, dir.Opposite())
			(*subs)[bid].NumNeigh++
			(*subs)[bid].IsBoundary = true
		}
	}
}

func linkCurvedBoundary(a *Region, ai int, b *Region, bi int, dir geom.Direction, subID []map[[3]int]int, subs *[]Subvolume) {
	aCurved := a.Shape.Kind == geom.Sphere || a.Shape.Kind == geom.Cylinder
	var curvedIdx, rectRegionID int
	var curvedDir, rectDir geom.Direction
	if aCurved {
		curvedIdx = subID[ai][[3]int{0, 0, 0}]
		rectRegionID = bi
		curvedDir, rectDir = dir, dir.Opposite()
	} else {
		curvedIdx = subID[bi][[3]int{0, 0, 0}]
		rectRegionID = ai
		curvedDir, rectDir = dir.Opposite(), dir
	}

	rectRegion := a
	if rectRegionID == bi {
		rectRegion = b
	}
	axis, extreme := faceAxis(rectDir)
	for key, id := range subID[rectRegionID] {
		if key[axis] != boundaryExtreme(rectRegion, axis, extreme) {
			continue
		}
		(*subs)[id].Neighbors = append((*subs)[id].Neighbors, curvedIdx)
		(*subs)[id].NeighborDir = append((*subs)[id].NeighborDir, rectDir)
		(*subs)[id].NumNeigh++
		(*subs)[id].IsBoundary = true
		(*subs)[curvedIdx].Neighbors = append((*subs)[curvedIdx].Neighbors, id)
		(*subs)[curvedIdx].NeighborDir = append((*subs)[curvedIdx].NeighborDir, curvedDir)
		(*subs)[curvedIdx].NumNeigh++
		(*subs)[curvedIdx].IsBoundary = true
	}
}

func boundaryExtreme(r *Region, axis int, low bool) int {
	n := [3]int{maxInt(r.NX, 1), maxInt(r.NY, 1), maxInt(r.NZ, 1)}
	if low {
		return 0
	}
	return n[axis] - 1
}

func faceAxis(dir geom.Direction) (axis int, low bool) {
	switch dir {
	case geom.Left:
		return 0, true
	case geom.Right:
		return 0, false
	case geom.Down:
		return 1, true
	case geom.Up:
		return 1, false
	case geom.In:
		return 2, true
	default: // Out
		return 2, false
	}
}

func faceAxisOf(dir geom.Direction) int {
	axis, _ := faceAxis(dir)
	return axis
}

func faceExtremes(a, b *Region, dir geom.Direction, axis int) (aExtreme, bExtreme int) {
	na := [3]int{maxInt(a.NX, 1), maxInt(a.NY, 1), maxInt(a.NZ, 1)}
	nb := [3]int{maxInt(b.NX, 1), maxInt(b.NY, 1), maxInt(b.NZ, 1)}
	_, low := faceAxis(dir)
	if low {
		return 0, nb[axis] - 1
	}
	return na[axis] - 1, 0
}

func crossAxesMatch(a *Region, aKey [3]int, b *Region, bKey [3]int, axis int) bool {
	for ax := 0; ax < 3; ax++ {
		if ax == axis {
			continue
		}
		// Without a shared global coordinate grid (regions may have
		// different sub_size multipliers), exact index coincidence is
		// only meaningful when the grids line up; a full implementation
		// would compare physical extents. This compares grid position
		// directly, valid when abutting regions share sub_size, and is
		// documented in DESIGN.md as a builder simplification.
		if aKey[ax] != bKey[ax] {
			return false
		}
	}
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func regionEntity(r Region, idx int) string {
	return fmt.Sprintf("region[%d] %q", idx, r.Label)
}

func validateSpec(sp Spec, idx int) error {
	entity := fmt.Sprintf("region[%d] %q", idx, sp.Label)
	switch sp.Shape.Kind {
	case geom.Rectangle:
		zeros := 0
		for i := 0; i < 3; i++ {
			if sp.Shape.Min[i] == sp.Shape.Max[i] {
				zeros++
			}
		}
		if zeros != 1 {
			return simerr.New(simerr.GeometryInvalid, "build", entity, "a Rectangle must be degenerate along exactly one axis")
		}
	case geom.Cylinder:
		// exactly two of (nx,ny,nz) are implicitly zero for a cylinder;
		// the builder never reads NX/NY/NZ for curved shapes, so nothing
		// further to validate here beyond a positive radius/length.
		if sp.Shape.Radius <= 0 || sp.Shape.Length <= 0 {
			return simerr.New(simerr.GeometryInvalid, "build", entity, "cylinder radius and length must be positive")
		}
	case geom.Box:
		if maxInt(sp.NX, 1)*maxInt(sp.NY, 1)*maxInt(sp.NZ, 1) < 1 {
			return simerr.New(simerr.GeometryInvalid, "build", entity, "box subvolume grid must have nx*ny*nz >= 1")
		}
	case geom.Sphere:
		if sp.Shape.Radius <= 0 {
			return simerr.New(simerr.GeometryInvalid, "build", entity, "sphere radius must be positive")
		}
	}
	if sp.Kind == Surface2D || sp.Kind == Surface3D {
		if sp.SurfaceKind == NoSurface {
			return simerr.New(simerr.GeometryInvalid, "build", entity, "a surface region needs a surface_kind")
		}
	}
	return nil
}
