// Package actor implements active (CSK release) and passive (observation)
// actors (spec.md §4.F).
package actor

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gomolsim/molsim/geom"
	"github.com/gomolsim/molsim/region"
	"github.com/gomolsim/molsim/rng"
)

// Footprint is an actor's spatial extent: either an explicit shape, or the
// union of named regions weighted by volume.
type Footprint struct {
	Shape        *geom.Shape
	RegionLabels []string
}

// Kind tags an actor's role.
type Kind int

const (
	Passive Kind = iota
	Active
)

// Modulation is an active actor's CSK release configuration.
type Modulation struct {
	ModBits          int
	Strength         int
	SlotInterval     float64
	ReleaseInterval  float64
	BTimeReleaseRand bool
}

// ObservationMask configures a passive actor's recording.
type ObservationMask struct {
	Types     []int
	BRecordPos bool
}

// Actor is one simulated transmitter or receiver.
type Actor struct {
	Label          string
	Kind           Kind
	Footprint      Footprint
	StartTime      float64
	ActionInterval float64
	MaxActions     int // 0 means unbounded
	Modulation     Modulation
	Observe        ObservationMask

	actionCount int
}

// NextActionTime returns the k-th action instant, t_k = start_time +
// k*action_interval (spec.md §4.F).
func (a *Actor) NextActionTime() float64 {
	return a.StartTime + float64(a.actionCount)*a.ActionInterval
}

// Done reports whether the actor has consumed its max_actions budget.
func (a *Actor) Done() bool {
	return a.MaxActions > 0 && a.actionCount >= a.MaxActions
}

// Observation is one passive-actor snapshot.
type Observation struct {
	Time      float64
	Counts    []int
	Positions [][]mgl64.Vec3 // per observed type, only if BRecordPos
}

// Emission is a scheduled micro release: one molecule, one sampled point,
// one release time within the action window.
type Emission struct {
	Type int
	Pos  mgl64.Vec3
	At   float64
}

// Release computes this action instant's CSK symbol and the set of
// molecule emissions for an active actor (spec.md §4.F steps 1-3). bits is
// the next modBits-wide chunk of the transmitted bitstream.
func (a *Actor) Release(bits []bool, numTypes int, rng *rng.Stream, regions []region.Region, graph *region.Graph) []Emission {
	a.actionCount++
	symbol := 0
	for i, b := range bits {
		if b {
			symbol |= 1 << uint(i)
		}
	}
	countPerType := a.Modulation.Strength * symbol

	var emissions []Emission
	t0 := a.NextActionTime() - a.ActionInterval
	for typ := 0; typ < numTypes; typ++ {
		for i := 0; i < countPerType; i++ {
			var at float64
			if a.Modulation.BTimeReleaseRand {
				at = t0 + rng.Float64()*a.Modulation.ReleaseInterval
			} else if countPerType > 1 {
				at = t0 + (float64(i)/float64(countPerType-1))*a.Modulation.ReleaseInterval
			} else {
				at = t0
			}
			pos := a.samplePoint(rng, regions)
			emissions = append(emissions, Emission{Type: typ, Pos: pos, At: at})
		}
	}
	return emissions
}

// samplePoint draws a uniform point within the actor footprint: directly
// from Shape when set, or by volume-weighted rejection across the listed
// regions otherwise (spec.md §4.F step 3).
func (a *Actor) samplePoint(rng *rng.Stream, regions []region.Region) mgl64.Vec3 {
	if a.Footprint.Shape != nil {
		return geom.UniformPoint(rng, *a.Footprint.Shape, false, geom.FaceNone)
	}
	var listed []region.Region
	for _, r := range regions {
		for _, label := range a.Footprint.RegionLabels {
			if r.Label == label {
				listed = append(listed, r)
				break
			}
		}
	}
	if len(listed) == 0 {
		return mgl64.Vec3{}
	}
	totalVol := 0.0
	vols := make([]float64, len(listed))
	for i, r := range listed {
		vols[i] = r.Shape.Volume()
		totalVol += vols[i]
	}
	u := rng.Float64() * totalVol
	running := 0.0
	for i, v := range vols {
		running += v
		if u <= running {
			return geom.UniformPoint(rng, listed[i].Shape, false, geom.FaceNone)
		}
	}
	return geom.UniformPoint(rng, listed[len(listed)-1].Shape, false, geom.FaceNone)
}

// ObserveSnapshot samples the micro half of a passive actor's snapshot
// (spec.md §4.F passive actor steps): micro molecules within the Shape
// footprint are counted by Contains. Meso subvolumes are not counted here;
// they are added afterwards through ObserveMeso. An actor whose footprint
// has no Shape gets zero counts from this function.
func (a *Actor) ObserveSnapshot(now float64, numTypes int, microPositions [][]mgl64.Vec3, mesoGraph *region.Graph, clearance float64) (Observation, error) {
	a.actionCount++
	obs := Observation{Time: now, Counts: make([]int, numTypes)}
	if a.Observe.BRecordPos {
		obs.Positions = make([][]mgl64.Vec3, numTypes)
	}

	if a.Footprint.Shape == nil {
		return obs, nil
	}
	fp := *a.Footprint.Shape

	for t := 0; t < numTypes && t < len(microPositions); t++ {
		for _, p := range microPositions[t] {
			if geom.Contains(p, fp, clearance) {
				obs.Counts[t]++
				if a.Observe.BRecordPos {
					obs.Positions[t] = append(obs.Positions[t], p)
				}
			}
		}
	}

	// Mesoscopic subvolumes have no retained world-space shape after Build
	// (only grid indices); a full fully-contained/partial-overlap weighted
	// sum needs those extents, which the driver computes once per realization
	// and passes in as sub volumes/weights. ObserveMeso below takes that
	// precomputed weight table directly.
	return obs, nil
}

// ObserveMeso adds each weighted mesoscopic subvolume count into obs,
// given weight[sub] in [0,1]: 1 for a fully-contained subvolume, the
// intersection-volume fraction for one straddling the footprint boundary
// (spec.md §4.F passive actor step 1).
func (a *Actor) ObserveMeso(obs *Observation, counts [][]int, weight []float64) {
	for sub, w := range weight {
		if w <= 0 {
			continue
		}
		for t, c := range counts[sub] {
			if t >= len(obs.Counts) {
				continue
			}
			obs.Counts[t] += int(w * float64(c))
		}
	}
}
