package micro

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gomolsim/molsim/chem"
	"github.com/gomolsim/molsim/geom"
	"github.com/gomolsim/molsim/region"
	"github.com/gomolsim/molsim/rng"
	"github.com/gomolsim/molsim/simerr"
)

const maxPathDepth = 16

// Engine drives one micro tick for every molecule type of one region
// (spec.md §4.D). It holds no state of its own beyond the molecule lists;
// Graph and Tables are the static structures the builder/compiler produced.
type Engine struct {
	Graph     *region.Graph
	Tables    []chem.RegionTable
	Reactions []chem.Reaction
	DiffCoeff []float64
	Dt        float64
	DistError float64
	Rng       *rng.Stream

	// Lists[regionID][moleculeType] is the owning molecule store.
	Lists [][]List

	// OnMesoTransfer is invoked when a molecule crosses into a mesoscopic
	// subvolume; the micro engine stops tracking it as a coordinate from
	// that point on (spec.md §4.D.2).
	OnMesoTransfer func(subID, molType int)

	// OnLedger, if set, is called with the conservation cause and signed
	// molecule-count delta for every reaction consumption/production and
	// absorbing-surface deletion this engine performs (spec.md §8
	// invariant (i)).
	OnLedger func(cause string, molType, delta int)
}

func (e *Engine) ledger(cause string, molType, delta int) {
	if e.OnLedger != nil {
		e.OnLedger(cause, molType, delta)
	}
}

// Tick runs one full micro step for region regionID: steps 1-6 of
// spec.md §4.D, across every molecule type tracked there.
func (e *Engine) Tick(regionID int, now float64) error {
	r := e.Graph.Regions[regionID]
	tbl := e.Tables[regionID]

	for t := range e.Lists[regionID] {
		list := &e.Lists[regionID][t]

		e.reactSteady(regionID, t, list, tbl)

		for i := 0; i < len(list.Steady); i++ {
			mol := list.Steady[i]
			step := e.diffusionStep(r, t, e.Dt, now)
			target := mol.Pos.Add(step)
			newPos, absorbed, err := e.validate(regionID, t, mol.Pos, target, 0)
			if err != nil {
				list.Steady[i].Degenerate = true
				list.Steady[i].Pos = newPos
				continue
			}
			if absorbed {
				e.ledger("absorbing_surface", t, -1)
				list.RemoveSteady(i)
				i--
				continue
			}
			list.Steady[i].Pos = newPos
		}

		depth := 0
		for len(list.Recent) > 0 && depth < maxPathDepth {
			depth++
			pending := list.Recent
			list.Recent = nil
			for _, mol := range pending {
				step := e.diffusionStep(r, t, mol.DtPartial, now)
				target := mol.Pos.Add(step)
				newPos, absorbed, err := e.validate(regionID, t, mol.Pos, target, 0)
				if err != nil {
					mol.Degenerate = true
				}
				if absorbed {
					e.ledger("absorbing_surface", t, -1)
					continue
				}
				mol.Pos = newPos
				list.Steady = append(list.Steady, mol)
			}
		}
	}
	return nil
}

// diffusionStep draws the Brownian increment N(0, 2*D*dt) per axis, plus
// any cylinder flow displacement (spec.md §4.D.1). The flow displacement
// is the centerline velocity times dt along the cylinder axis for every
// molecule; the region's FlowProfile is not consulted, so a Laminar
// profile moves molecules exactly like a Uniform one.
func (e *Engine) diffusionStep(r region.Region, molType int, dt float64, now float64) mgl64.Vec3 {
	d := e.DiffCoeff[molType]
	sigma := math.Sqrt(2 * d * dt)
	step := mgl64.Vec3{
		e.Rng.Normal(0, sigma),
		e.Rng.Normal(0, sigma),
		e.Rng.Normal(0, sigma),
	}
	if r.Flow != nil && r.Shape.Kind == geom.Cylinder {
		v := r.Flow.VelocityAt(now)
		step[r.Shape.Axis] += v * dt
	}
	return step
}

// reactSteady runs spec.md §4.D steps 1-2: for each steady molecule, draw
// u and decide whether a first-order reaction fires this tick.
func (e *Engine) reactSteady(regionID, molType int, list *List, tbl chem.RegionTable) {
	if molType >= len(tbl.CumProb) || len(tbl.CumProb[molType]) == 0 {
		return
	}
	rv := tbl.MinRxnTimeRV[molType]
	table := tbl.CumProb[molType]
	idxs := tbl.FirstOrderByType[molType]

	for i := 0; i < len(list.Steady); {
		u := e.Rng.Float64()
		if u >= 1-rv {
			i++
			continue
		}
		thresh := u / (1 - rv)
		k := 0
		for k < len(table)-1 && table[k] < thresh {
			k++
		}
		mol := list.Steady[i]
		list.RemoveSteady(i)
		e.ledger("micro_reaction_consumed", molType, -1)
		e.spawnProducts(regionID, tbl.Reactions[idxs[k]], mol.Pos)
	}
}

// spawnProducts creates one recent molecule per product unit of reaction
// globalRxnIdx, each with a dt_partial drawn uniformly in [0, dt].
func (e *Engine) spawnProducts(regionID, globalRxnIdx int, at mgl64.Vec3) {
	rxn := e.Reactions[globalRxnIdx]
	for pt, count := range rxn.Products {
		for c := 0; c < count; c++ {
			dtPartial := e.Rng.Float64() * e.Dt
			e.Lists[regionID][pt].Recent = append(e.Lists[regionID][pt].Recent, Molecule{
				Type: pt, Pos: at, DtPartial: dtPartial,
			})
			e.ledger("micro_reaction_product", pt, 1)
		}
	}
}

// validate implements spec.md §4.D.2: follow the path from start to end,
// reflecting, transferring, or stopping at an absorbing/membrane boundary,
// bounded to maxPathDepth recursive segments.
func (e *Engine) validate(regionID, molType int, start, end mgl64.Vec3, depth int) (mgl64.Vec3, bool, error) {
	if depth >= maxPathDepth {
		return start, false, simerr.New(simerr.PathValidationDepth, "validate", "",
			"exceeded max path validation depth; molecule placed at last valid point")
	}
	r := e.Graph.Regions[regionID]
	dir := end.Sub(start)
	length := dir.Len()
	if length == 0 {
		return end, false, nil
	}
	dirN := dir.Mul(1 / length)

	hit := geom.LineHitsBoundary(start, dirN, length, r.Shape, true)
	if !hit.Hit {
		return end, false, nil
	}

	if e.isAbsorbing(regionID, molType) {
		return hit.Point, true, nil
	}

	neighborID, hasNeighbor := e.Graph.RegionNeighbor(regionID, hit.Face.Direction())
	if hasNeighbor {
		nr := e.Graph.Regions[neighborID]
		if nr.Kind == region.Surface3D && nr.SurfaceKind == region.Membrane {
			return e.crossMembrane(regionID, neighborID, molType, hit, end, depth)
		}
		return e.transfer(regionID, neighborID, molType, hit, end, depth)
	}

	residual := end.Sub(hit.Point)
	reflected := geom.Reflect(start, residual, length-hit.Dist, hit.Point, r.Shape, hit.Face, true)
	return e.validate(regionID, molType, hit.Point, reflected, depth+1)
}

// transfer moves the molecule across a transmissive region boundary,
// continuing validation in the destination region (spec.md §4.D.2). If
// the destination is mesoscopic, the molecule is added to the destination
// subvolume's count and tracking stops.
func (e *Engine) transfer(regionID, destRegion, molType int, hit geom.Hit, end mgl64.Vec3, depth int) (mgl64.Vec3, bool, error) {
	dest := e.Graph.Regions[destRegion]
	if dest.IsMicroscopic {
		residual := end.Sub(hit.Point)
		return e.validate(destRegion, molType, hit.Point, hit.Point.Add(residual), depth+1)
	}
	if e.OnMesoTransfer != nil {
		e.OnMesoTransfer(dest.SubvolumeStart, molType)
	}
	return hit.Point, false, nil
}

// isAbsorbing reports whether molType has an Absorbing first-order
// reaction compiled for regionID (spec.md §4.C/§4.D.2): the geometric
// boundary behavior for a molecule type is driven by which surface
// reactions chem.Compile admitted for it, not by a separate region flag.
func (e *Engine) isAbsorbing(regionID, molType int) bool {
	tbl := e.Tables[regionID]
	if molType >= len(tbl.FirstOrderByType) {
		return false
	}
	for _, idx := range tbl.FirstOrderByType[molType] {
		if e.Reactions[tbl.Reactions[idx]].SurfaceKind == chem.Absorbing {
			return true
		}
	}
	return false
}

// crossMembrane applies the Membrane reaction table: pass through with the
// configured reaction probability, else reflect (spec.md §4.D.2).
func (e *Engine) crossMembrane(regionID, destRegion, molType int, hit geom.Hit, end mgl64.Vec3, depth int) (mgl64.Vec3, bool, error) {
	tbl := e.Tables[regionID]
	passProb := 0.0
	if molType < len(tbl.MicroRate) {
		for _, idx := range tbl.FirstOrderByType[molType] {
			rxn := e.Reactions[tbl.Reactions[idx]]
			if rxn.Surface && rxn.SurfaceKind == chem.Membrane {
				passProb = tbl.MicroRate[idx]
				break
			}
		}
	}
	if e.Rng.Float64() < passProb {
		return e.transfer(regionID, destRegion, molType, hit, end, depth)
	}
	r := e.Graph.Regions[regionID]
	residual := end.Sub(hit.Point)
	reflected := geom.Reflect(hit.Point, residual, residual.Len(), hit.Point, r.Shape, hit.Face, true)
	return e.validate(regionID, molType, hit.Point, reflected, depth+1)
}
