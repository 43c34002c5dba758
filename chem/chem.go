// Package chem compiles reaction definitions into per-region rate and
// probability tables (spec.md §4.C).
package chem

import (
	"math"
	"strconv"

	"github.com/gomolsim/molsim/region"
	"github.com/gomolsim/molsim/simerr"
)

// SurfaceKind classifies a surface reaction's boundary behavior.
type SurfaceKind int

const (
	NotSurface SurfaceKind = iota
	Normal
	Absorbing
	Receptor
	Membrane
)

// Exclusive reports whether this surface kind must be the sole first-order
// reaction available to its reactant in a region (spec.md GLOSSARY).
func (k SurfaceKind) Exclusive() bool {
	return k == Absorbing || k == Receptor || k == Membrane
}

// Reaction is one reaction definition, in molecule-type-indexed form.
type Reaction struct {
	Reactants        []int // count consumed per molecule type, len == numTypes
	Products         []int // count produced per molecule type, len == numTypes
	K                float64
	Surface          bool
	SurfaceKind      SurfaceKind
	DefaultEverywhere bool
	ExceptionRegions []string
}

// Order returns the reaction's kinetic order: the total reactant count.
func (r Reaction) Order() int {
	n := 0
	for _, c := range r.Reactants {
		n += c
	}
	return n
}

// SoleReactantType returns the molecule type index that is this reaction's
// only reactant, and true, when the reaction is order 1. Returns false for
// order 0 or order 2 (two distinct types, or two of the same type).
func (r Reaction) SoleReactantType() (int, bool) {
	if r.Order() != 1 {
		return 0, false
	}
	for t, c := range r.Reactants {
		if c == 1 {
			return t, true
		}
	}
	return 0, false
}

// appliesTo reports whether reaction rxn is admitted in the region labeled
// label, by the default-everywhere/exception rule (spec.md §4.C).
func appliesTo(rxn Reaction, label string) bool {
	found := false
	for _, ex := range rxn.ExceptionRegions {
		if ex == label {
			found = true
			break
		}
	}
	if rxn.DefaultEverywhere {
		return !found
	}
	return found
}

// RegionTable holds the compiled rates for one region: one effective rate
// per admitted reaction, plus the first-order cumulative probability table
// per molecule type.
type RegionTable struct {
	Reactions   []int   // indices into the global Reaction slice, admitted here
	Rates       []float64 // effective rate, parallel to Reactions (meso units)
	MicroRate   []float64 // effective rate/probability for the micro engine, parallel to Reactions

	// CumProb[j] is the cumulative probability table over first-order
	// reactions for which molecule type j is the sole reactant, indexed by
	// position in FirstOrderByType[j].
	CumProb          [][]float64
	FirstOrderByType [][]int // FirstOrderByType[j][k] -> index into Reactions
	MinRxnTimeRV     []float64
}

// Compile builds a RegionTable per region (spec.md §4.C). numTypes is the
// number of molecule species; dt is the global micro step; diffCoeff[t] is
// molecule type t's diffusion coefficient, needed for the Absorbing-surface
// rate formula.
func Compile(reactions []Reaction, regions []region.Region, subvolumes []region.Subvolume, numTypes int, dt float64, diffCoeff []float64) ([]RegionTable, error) {
	tables := make([]RegionTable, len(regions))

	for ri, r := range regions {
		var rt RegionTable
		rt.FirstOrderByType = make([][]int, numTypes)

		measure := regionMeasure(r, subvolumes)

		for gi, rxn := range reactions {
			if !appliesTo(rxn, r.Label) {
				continue
			}
			if rxn.Surface && rxn.SurfaceKind != Normal && r.Kind == region.Normal {
				continue // surface-only reaction in a non-surface region
			}
			if rxn.Order() == 0 && r.Kind != region.Normal && rxn.SurfaceKind != Normal {
				return nil, simerr.New(simerr.ReactionIncompatible, "compile", regionLabel(r, ri),
					"a 0-order reaction in a surface region must be a Normal-surface reaction")
			}
			if (rxn.Order() == 2) && r.Kind != region.Normal && rxn.SurfaceKind != Normal {
				return nil, simerr.New(simerr.ReactionIncompatible, "compile", regionLabel(r, ri),
					"a 2-order reaction in a surface region must be a Normal-surface reaction")
			}

			mesoRate, microRate := effectiveRates(rxn, measure, dt, diffCoeff)

			idx := len(rt.Reactions)
			rt.Reactions = append(rt.Reactions, gi)
			rt.Rates = append(rt.Rates, mesoRate)
			rt.MicroRate = append(rt.MicroRate, microRate)

			if t, ok := rxn.SoleReactantType(); ok {
				rt.FirstOrderByType[t] = append(rt.FirstOrderByType[t], idx)
			}
		}

		cum, minRV, err := buildCumulativeTables(rt, reactions, numTypes, dt)
		if err != nil {
			return nil, simerr.Wrap(simerr.ReactionIncompatible, "compile", regionLabel(r, ri), err)
		}
		rt.CumProb = cum
		rt.MinRxnTimeRV = minRV

		tables[ri] = rt
	}
	return tables, nil
}

// effectiveRates computes a reaction's meso rate and micro rate/probability
// for one region, given the region's characteristic measure (volume, area,
// or length depending on dimensionality).
func effectiveRates(rxn Reaction, measure float64, dt float64, diffCoeff []float64) (meso, micro float64) {
	switch rxn.Order() {
	case 0:
		return rxn.K * measure, rxn.K * measure
	case 1:
		if rxn.SurfaceKind == Absorbing {
			t, _ := rxn.SoleReactantType()
			d := 0.0
			if t < len(diffCoeff) {
				d = diffCoeff[t]
			}
			rate := rxn.K * math.Sqrt(math.Pi*dt/maxFloat(d, 1e-300))
			return rxn.K, rate
		}
		return rxn.K, 1 - math.Exp(-rxn.K*dt)
	case 2:
		if measure <= 0 {
			return 0, 0
		}
		return rxn.K / measure, rxn.K / measure
	default:
		return rxn.K, rxn.K
	}
}

// buildCumulativeTables computes C[j][k] (spec.md §4.C) and the per-type
// minRxnTimeRV, and enforces the exclusivity constraint.
func buildCumulativeTables(rt RegionTable, reactions []Reaction, numTypes int, dt float64) ([][]float64, []float64, error) {
	cum := make([][]float64, numTypes)
	minRV := make([]float64, numTypes)

	for t := 0; t < numTypes; t++ {
		idxs := rt.FirstOrderByType[t]
		if len(idxs) == 0 {
			minRV[t] = 1
			continue
		}

		exclusiveCount := 0
		for _, idx := range idxs {
			rxn := reactions[rt.Reactions[idx]]
			if rxn.SurfaceKind.Exclusive() {
				exclusiveCount++
			}
		}
		if exclusiveCount > 0 && len(idxs) > 1 {
			return nil, nil, simerr.New(simerr.ReactionIncompatible, "compile", "",
				"an exclusive (non-Normal surface) reaction must be the only first-order reaction for its reactant")
		}

		sumRates := 0.0
		infiniteCount := 0
		for _, idx := range idxs {
			r := rt.Rates[idx]
			if reactions[rt.Reactions[idx]].SurfaceKind == Absorbing {
				r = rt.MicroRate[idx]
			}
			if math.IsInf(r, 1) {
				infiniteCount++
				continue
			}
			sumRates += r
		}

		table := make([]float64, len(idxs))
		rv := math.Exp(-dt * sumRates)
		if infiniteCount > 0 {
			rv = 0
		}
		minRV[t] = rv

		running := 0.0
		massRemaining := 1 - rv
		for k, idx := range idxs {
			r := rt.Rates[idx]
			if reactions[rt.Reactions[idx]].SurfaceKind == Absorbing {
				r = rt.MicroRate[idx]
			}
			var share float64
			if math.IsInf(r, 1) {
				share = massRemaining / float64(infiniteCount)
			} else if sumRates > 0 {
				share = (r / sumRates) * massRemaining
			}
			running += share
			table[k] = running
		}
		cum[t] = table
	}
	return cum, minRV, nil
}

// regionMeasure returns the characteristic measure used for order-0/2 rate
// scaling: region volume for a Normal region, and the summed subvolume
// area for both 3D-surface and 2D-surface regions. No perimeter or length
// measure is computed for a 2D-surface region.
func regionMeasure(r region.Region, subvolumes []region.Subvolume) float64 {
	total := 0.0
	for i := r.SubvolumeStart; i < r.SubvolumeStart+r.SubvolumeCount; i++ {
		switch r.Kind {
		case region.Surface2D, region.Surface3D:
			total += subvolumes[i].Area
		default:
			total += subvolumes[i].Volume
			if total == 0 {
				total += subvolumes[i].Area
			}
		}
	}
	return total
}

func regionLabel(r region.Region, idx int) string {
	if r.Label != "" {
		return r.Label
	}
	return "region[" + strconv.Itoa(idx) + "]"
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
