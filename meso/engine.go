// Package meso implements the mesoscopic next-subvolume method (NSM)
// engine (spec.md §4.E): per-subvolume propensities, direct-method tau
// scheduling, and diffusion/reaction event execution.
package meso

import (
	"github.com/gomolsim/molsim/chem"
	"github.com/gomolsim/molsim/region"
	"github.com/gomolsim/molsim/rng"
)

// Engine owns the mesoscopic subvolume counts and propensities across a
// realization. Subvolumes and Tables are shared with the micro engine and
// the realization driver; Engine only adds propensity bookkeeping.
type Engine struct {
	Graph     *region.Graph
	Tables    []chem.RegionTable
	Reactions []chem.Reaction
	Rng       *rng.Stream

	// Propensity[subID] is the current total propensity a0(s).
	Propensity []float64
	// Tau[subID] is the currently scheduled putative event time.
	Tau []float64

	// OnMicroInsert is called when a diffusion event moves a molecule into
	// a microscopic neighbor: the meso engine stops tracking it as a count
	// from that point (spec.md §4.E).
	OnMicroInsert func(regionID, molType int, subID int)

	// OnLedger, if set, is called with the conservation cause and signed
	// molecule-count delta for every reaction consumption/production this
	// engine performs (spec.md §8 invariant (i)).
	OnLedger func(cause string, molType, delta int)
}

func (e *Engine) ledger(cause string, molType, delta int) {
	if e.OnLedger != nil {
		e.OnLedger(cause, molType, delta)
	}
}

// InitSubvolume computes the initial propensity and draws the first tau
// for subID (called once per mesoscopic subvolume at realization start).
func (e *Engine) InitSubvolume(subID int, now float64) {
	e.Propensity[subID] = e.recompute(subID)
	e.Tau[subID] = now + e.Rng.Exponential(e.Propensity[subID])
}

// recompute derives a0(s) from scratch: one propensity per admitted
// reaction, plus one per neighbor per molecule type for diffusion out
// (spec.md §4.E). Recomputing from scratch, rather than incremental delta
// accounting, trades CPU for robustness against slow numerical drift.
func (e *Engine) recompute(subID int) float64 {
	sv := e.Graph.Subvolumes[subID]
	tbl := e.Tables[sv.RegionID]

	total := 0.0
	for ri, gi := range tbl.Reactions {
		rxn := e.Reactions[gi]
		rate := tbl.Rates[ri]
		total += rate * reactantCombinations(rxn, sv.Counts)
	}

	for ni := range sv.Neighbors {
		if sv.DiffusionRate == nil || ni >= len(sv.DiffusionRate) {
			continue
		}
		for t, rate := range sv.DiffusionRate[ni] {
			if t < len(sv.Counts) {
				total += rate * float64(sv.Counts[t])
			}
		}
	}
	return total
}

// reactantCombinations returns the number of ways to pick this reaction's
// reactants from the subvolume's current counts: counts[t] for order 1,
// counts[t]*(counts[t]-1) for a homodimer, counts[a]*counts[b] for a
// heterodimer, and 1 for order 0.
func reactantCombinations(rxn chem.Reaction, counts []int) float64 {
	order := rxn.Order()
	if order == 0 {
		return 1
	}
	total := 1.0
	for t, c := range rxn.Reactants {
		if c == 0 || t >= len(counts) {
			continue
		}
		n := float64(counts[t])
		for k := 0; k < c; k++ {
			total *= n - float64(k)
		}
	}
	if total < 0 {
		return 0
	}
	return total
}

// FireNext executes the event currently scheduled for subID (the minimum
// over the scheduler's priority queue selected it), then recomputes and
// reschedules subID (and any subvolume a diffusion event also touched).
func (e *Engine) FireNext(subID int, now float64) {
	sv := &e.Graph.Subvolumes[subID]
	tbl := e.Tables[sv.RegionID]

	u := e.Rng.Float64() * e.Propensity[subID]
	running := 0.0

	for ri, gi := range tbl.Reactions {
		rxn := e.Reactions[gi]
		rate := tbl.Rates[ri] * reactantCombinations(rxn, sv.Counts)
		running += rate
		if u < running {
			e.applyReaction(subID, rxn)
			e.reschedule(subID, now)
			return
		}
	}

	for ni, nid := range sv.Neighbors {
		if sv.DiffusionRate == nil || ni >= len(sv.DiffusionRate) {
			continue
		}
		for t, rate := range sv.DiffusionRate[ni] {
			if t >= len(sv.Counts) {
				continue
			}
			contrib := rate * float64(sv.Counts[t])
			running += contrib
			if u < running {
				e.applyDiffusion(subID, nid, t)
				e.reschedule(subID, now)
				if nid != subID {
					e.reschedule(nid, now)
				}
				return
			}
		}
	}
}

func (e *Engine) applyReaction(subID int, rxn chem.Reaction) {
	sv := &e.Graph.Subvolumes[subID]
	for t, c := range rxn.Reactants {
		if t < len(sv.Counts) && c > 0 {
			sv.Counts[t] -= c
			e.ledger("meso_reaction_consumed", t, -c)
		}
	}
	for t, c := range rxn.Products {
		if t < len(sv.Counts) && c > 0 {
			sv.Counts[t] += c
			e.ledger("meso_reaction_product", t, c)
		}
	}
}

func (e *Engine) applyDiffusion(fromSub, toSub, molType int) {
	from := &e.Graph.Subvolumes[fromSub]
	if molType < len(from.Counts) {
		from.Counts[molType]--
	}
	toRegionID := e.Graph.Subvolumes[toSub].RegionID
	toRegion := e.Graph.Regions[toRegionID]
	if toRegion.IsMicroscopic {
		if e.OnMicroInsert != nil {
			e.OnMicroInsert(toRegionID, molType, toSub)
		}
		return
	}
	to := &e.Graph.Subvolumes[toSub]
	if molType < len(to.Counts) {
		to.Counts[molType]++
	}
}

// reschedule recomputes a0(s) from scratch and redraws tau by the direct
// method: tau_new = now - log(u)/a0_new (spec.md §4.E).
func (e *Engine) reschedule(subID int, now float64) {
	e.Propensity[subID] = e.recompute(subID)
	e.Tau[subID] = now + e.Rng.Exponential(e.Propensity[subID])
}
