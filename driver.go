package molsim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/gomolsim/molsim/actor"
	"github.com/gomolsim/molsim/chem"
	"github.com/gomolsim/molsim/geom"
	"github.com/gomolsim/molsim/meso"
	"github.com/gomolsim/molsim/micro"
	"github.com/gomolsim/molsim/region"
	"github.com/gomolsim/molsim/rng"
)

// Driver owns one config's worth of static structure (region graph, chem
// tables, actors) and runs repeated realizations against it (spec.md §9's
// init-run-drop lifecycle: the static structure is built once; every
// realization gets a fresh PRNG stream and fresh molecule state).
type Driver struct {
	Config *Config
	Log    Logger

	Graph     *region.Graph
	Tables    []chem.RegionTable
	Reactions []chem.Reaction
	Actors    []actor.Actor

	// BatchID tags every log line from this Driver's realizations, so a
	// multi-process run can be told apart in shared output.
	BatchID string
}

// NewDriver builds the static region/chem structure from cfg (spec.md §9
// "init"). The returned Driver can run any number of realizations; none of
// them mutate Tables or the region structure of Graph. The meso counts in
// Graph.Subvolumes change during a realization and are reset at the start
// of the next one.
func NewDriver(cfg *Config, log Logger) (*Driver, error) {
	if log == nil {
		log = NewNopLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	specs := cfg.ResolveRegions()
	graph, err := region.Build(specs, cfg.Environment.SubvolumeBase, cfg.Environment.SubvolumeBase*1e-3, cfg.Environment.SubvolumeBase*1e-3)
	if err != nil {
		return nil, err
	}
	graph.SizeDiffusion(cfg.Chemical.DiffCoeff, cfg.Environment.SubvolumeBase)

	reactions := cfg.ResolveReactions()
	tables, err := chem.Compile(reactions, graph.Regions, graph.Subvolumes, cfg.Chemical.NumTypes, cfg.Control.Dt, cfg.Chemical.DiffCoeff)
	if err != nil {
		return nil, err
	}

	return &Driver{
		Config:    cfg,
		Log:       log,
		Graph:     graph,
		Tables:    tables,
		Reactions: reactions,
		Actors:    resolveActors(cfg),
		BatchID:   uuid.NewString(),
	}, nil
}

func resolveActors(cfg *Config) []actor.Actor {
	out := make([]actor.Actor, len(cfg.Environment.Actors))
	for i, e := range cfg.Environment.Actors {
		kind := actor.Passive
		if e.Active {
			kind = actor.Active
		}
		out[i] = actor.Actor{
			Label:          e.Label,
			Kind:           kind,
			Footprint:      actor.Footprint{RegionLabels: e.RegionLabels},
			StartTime:      e.StartTime,
			ActionInterval: e.ActionInterval,
			MaxActions:     e.MaxActions,
			Modulation: actor.Modulation{
				ModBits:          e.ModBits,
				Strength:         e.Strength,
				SlotInterval:     e.SlotInterval,
				ReleaseInterval:  e.ReleaseInterval,
				BTimeReleaseRand: e.BTimeReleaseRand,
			},
			Observe: actor.ObservationMask{Types: e.ObservedTypes, BRecordPos: e.BRecordPos},
		}
	}
	return out
}

// realizationState is the fully mutable, per-realization data the spec.md
// §9 lifecycle says is built fresh and freed at the end of every
// realization: molecule lists, the PRNG stream, and the event queue driving
// them. None of it is shared across realizations. Meso counts are not held
// here: they live in Graph.Subvolumes and seedInitialCounts resets them to
// the configured initial counts when each realization starts.
type realizationState struct {
	rng       *rng.Stream
	micro     *micro.Engine
	meso      *meso.Engine
	actors    []actor.Actor
	scheduler *Scheduler
	ledger    *Ledger
	now       float64
}

// RunRealization executes one full realization at the given seed, from t=0
// to final_time, and returns the recorded output (spec.md §9: init, run,
// drop). index is the realization's ordinal, used only for the output
// record and log prefix.
func (d *Driver) RunRealization(index int, seed uint64) (RealizationRecord, error) {
	st := d.newRealizationState(seed)
	rec := RealizationRecord{
		Index:      index,
		ActiveBits: map[string][]bool{},
		PassiveObs: map[string][]actor.Observation{},
		RecordPos:  map[string]bool{},
	}

	if d.Log.DebugEnabled() {
		st.scheduler.Trace = func(e Event) {
			d.Log.Debugf("[%s] realization %d pop t=%g kind=%d tie=%d id=%d",
				d.BatchID, index, e.Time, e.Kind, e.Kind.tieBreak(), e.ID)
		}
	}

	for ai := range st.actors {
		a := &st.actors[ai]
		if a.Kind == actor.Passive {
			rec.RecordPos[a.Label] = a.Observe.BRecordPos
		}
		if !a.Done() {
			st.scheduler.Insert(Event{Time: a.NextActionTime(), Kind: ActorAction, ID: ai})
		}
	}
	for ri, r := range d.Graph.Regions {
		if r.IsMicroscopic {
			st.scheduler.Insert(Event{Time: d.Config.Control.Dt, Kind: MicroStep, ID: ri})
		}
	}
	for sub := range d.Graph.Subvolumes {
		if !d.Graph.Regions[d.Graph.Subvolumes[sub].RegionID].IsMicroscopic {
			st.meso.InitSubvolume(sub, 0)
			st.scheduler.Insert(Event{Time: st.meso.Tau[sub], Kind: MesoEvent, ID: sub})
		}
	}

	finalTime := d.Config.Control.FinalTime
	progressStep := finalTime / float64(maxInt(d.Config.Control.MaxProgressUpdates, 1))
	if progressStep > 0 {
		st.scheduler.Insert(Event{Time: progressStep, Kind: GlobalProgress})
	}

	for {
		ev, ok := st.scheduler.Pop()
		if !ok || ev.Time > finalTime {
			break
		}
		if !st.scheduler.Monotonic(ev.Time) {
			continue
		}
		st.now = ev.Time

		switch ev.Kind {
		case ActorAction:
			d.handleActorAction(st, &rec, ev.ID)
		case MicroStep:
			if err := st.micro.Tick(ev.ID, st.now); err != nil && IsFatal(err) {
				rec.LedgerTotals = st.ledger.Totals()
				return rec, err
			}
			st.scheduler.Insert(Event{Time: st.now + d.Config.Control.Dt, Kind: MicroStep, ID: ev.ID})
		case MesoEvent:
			st.meso.FireNext(ev.ID, st.now)
			st.scheduler.Insert(Event{Time: st.meso.Tau[ev.ID], Kind: MesoEvent, ID: ev.ID})
		case GlobalProgress:
			d.Log.Infof("[%s] realization %d at t=%g", d.BatchID, index, st.now)
			if st.now+progressStep <= finalTime {
				st.scheduler.Insert(Event{Time: st.now + progressStep, Kind: GlobalProgress})
			}
		}
	}

	rec.LedgerTotals = st.ledger.Totals()
	return rec, nil
}

func (d *Driver) handleActorAction(st *realizationState, rec *RealizationRecord, actorID int) {
	a := &st.actors[actorID]
	if a.Kind == actor.Active {
		bits := make([]bool, a.Modulation.ModBits)
		for i := range bits {
			bits[i] = st.rng.Float64() < 0.5
		}
		emissions := a.Release(bits, d.Config.Chemical.NumTypes, st.rng, d.Graph.Regions, d.Graph)
		for _, em := range emissions {
			d.depositEmission(st, a, em)
			st.ledger.record("actor_release", em.Type, 1)
		}
		rec.ActiveBits[a.Label] = append(rec.ActiveBits[a.Label], bits...)
	} else {
		positions := d.nearbyMicroPositions(st, a, d.Config.Chemical.NumTypes)
		obs, err := a.ObserveSnapshot(st.now, d.Config.Chemical.NumTypes, positions, d.Graph, d.Graph.Clearance)
		if err == nil {
			d.observeMesoForActor(a, &obs)
			rec.PassiveObs[a.Label] = append(rec.PassiveObs[a.Label], obs)
		}
	}
	if !a.Done() {
		st.scheduler.Insert(Event{Time: a.NextActionTime(), Kind: ActorAction, ID: actorID})
	}
}

// depositEmission places one active-actor emission into whichever region
// its footprint resolves to first: a microscopic region gets a coordinate
// molecule on the recent list, a mesoscopic region gets its representative
// subvolume's count incremented directly (spec.md §4.F steps 1-3). An
// emission whose footprint matches no region in the graph is dropped.
func (d *Driver) depositEmission(st *realizationState, a *actor.Actor, em actor.Emission) {
	for _, label := range a.Footprint.RegionLabels {
		for ri, r := range d.Graph.Regions {
			if r.Label != label {
				continue
			}
			if r.IsMicroscopic {
				st.micro.Lists[ri][em.Type].Recent = append(st.micro.Lists[ri][em.Type].Recent, micro.Molecule{
					Type: em.Type, Pos: em.Pos,
				})
				return
			}
			if r.SubvolumeCount > 0 {
				sv := &d.Graph.Subvolumes[r.SubvolumeStart]
				if em.Type < len(sv.Counts) {
					sv.Counts[em.Type]++
				}
			}
			return
		}
	}
}

// observeMesoForActor adds the mesoscopic half of a passive actor's
// observation: every boundary-weighted (or fully-contained) subvolume
// count within the actor's footprint, via actor.ObserveMeso. Subvolumes
// retain no world-space shape after region.Build (only grid indices
// relative to their region), so the footprint-overlap weight is computed
// here, not inside the actor package (see DESIGN.md).
func (d *Driver) observeMesoForActor(a *actor.Actor, obs *actor.Observation) {
	if a.Footprint.Shape == nil {
		return
	}
	fp := *a.Footprint.Shape
	counts := make([][]int, len(d.Graph.Subvolumes))
	weight := make([]float64, len(d.Graph.Subvolumes))
	any := false
	for sub := range d.Graph.Subvolumes {
		sv := d.Graph.Subvolumes[sub]
		r := d.Graph.Regions[sv.RegionID]
		if r.IsMicroscopic {
			continue
		}
		w := subvolumeWeight(r, sv, d.Config.Environment.SubvolumeBase, fp)
		if w <= 0 {
			continue
		}
		counts[sub] = sv.Counts
		weight[sub] = w
		any = true
	}
	if any {
		a.ObserveMeso(obs, counts, weight)
	}
}

// subvolumeWeight estimates sv's footprint-overlap fraction in [0,1]. A
// curved single-subvolume region (sphere/cylinder) is whole-or-nothing by
// bounding-box overlap; a rectangular grid cell's world bounds are
// reconstructed from its region origin, grid position, and cell size, then
// intersected against the footprint's own axis-aligned bounds.
func subvolumeWeight(r region.Region, sv region.Subvolume, baseSize float64, footprint geom.Shape) float64 {
	flo, fhi := footprint.Bounds()
	if r.Shape.Kind == geom.Sphere || r.Shape.Kind == geom.Cylinder {
		rlo, rhi := r.Shape.Bounds()
		if aabbOverlaps(rlo, rhi, flo, fhi) {
			return 1
		}
		return 0
	}
	sz := r.ActualSubSize(baseSize)
	if sz <= 0 {
		return 0
	}
	min := r.Shape.Min.Add(mgl64.Vec3{
		float64(sv.GridPos[0]) * sz,
		float64(sv.GridPos[1]) * sz,
		float64(sv.GridPos[2]) * sz,
	})
	max := min.Add(mgl64.Vec3{sz, sz, sz})

	ox := overlapLen(min.X(), max.X(), flo.X(), fhi.X())
	oy := overlapLen(min.Y(), max.Y(), flo.Y(), fhi.Y())
	oz := overlapLen(min.Z(), max.Z(), flo.Z(), fhi.Z())
	return (ox * oy * oz) / (sz * sz * sz)
}

func overlapLen(lo1, hi1, lo2, hi2 float64) float64 {
	lo := lo1
	if lo2 > lo {
		lo = lo2
	}
	hi := hi1
	if hi2 < hi {
		hi = hi2
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

func aabbOverlaps(lo1, hi1, lo2, hi2 mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if hi1[i] < lo2[i] || hi2[i] < lo1[i] {
			return false
		}
	}
	return true
}

// collectMicroPositions flattens every microscopic region's steady
// molecule positions into a per-type slice, the shape actor.ObserveSnapshot
// expects for its micro-containment pass (spec.md §4.F passive actor step).
func (d *Driver) collectMicroPositions(st *realizationState, numTypes int) [][]mgl64.Vec3 {
	out := make([][]mgl64.Vec3, numTypes)
	for _, lists := range st.micro.Lists {
		for t, l := range lists {
			if t >= numTypes {
				continue
			}
			for _, m := range l.Steady {
				out[t] = append(out[t], m.Pos)
			}
		}
	}
	return out
}

// nearbyMicroPositions narrows collectMicroPositions down to the
// molecules whose cell overlaps the actor's footprint, via a fresh
// broad-phase spatialHashGrid built for this snapshot; actor.ObserveSnapshot
// still does the exact containment test on whatever this returns. Actors
// with no explicit Shape footprint (a region-label union) fall back to the
// unfiltered list, since there's no single AABB to query against.
func (d *Driver) nearbyMicroPositions(st *realizationState, a *actor.Actor, numTypes int) [][]mgl64.Vec3 {
	all := d.collectMicroPositions(st, numTypes)
	if a.Footprint.Shape == nil {
		return all
	}
	lo, hi := a.Footprint.Shape.Bounds()
	margin := mgl64.Vec3{d.Graph.Clearance, d.Graph.Clearance, d.Graph.Clearance}
	lo, hi = lo.Sub(margin), hi.Add(margin)

	out := make([][]mgl64.Vec3, numTypes)
	cellSize := d.Config.Environment.SubvolumeBase
	if cellSize <= 0 {
		cellSize = 1
	}
	for t, positions := range all {
		grid := newSpatialHashGrid(cellSize)
		for i, p := range positions {
			grid.Insert(i, p)
		}
		for _, idx := range grid.QueryAABB(lo, hi) {
			out[t] = append(out[t], positions[idx])
		}
	}
	return out
}

func (d *Driver) newRealizationState(seed uint64) *realizationState {
	stream := rng.New(seed)

	lists := make([][]micro.List, len(d.Graph.Regions))
	for ri, r := range d.Graph.Regions {
		if !r.IsMicroscopic {
			continue
		}
		lists[ri] = make([]micro.List, d.Config.Chemical.NumTypes)
	}
	seedInitialCounts(d, lists)

	mesoEngine := &meso.Engine{
		Graph: d.Graph, Tables: d.Tables, Reactions: d.Reactions,
		Rng: stream, Propensity: make([]float64, len(d.Graph.Subvolumes)), Tau: make([]float64, len(d.Graph.Subvolumes)),
	}
	microEngine := &micro.Engine{
		Graph: d.Graph, Tables: d.Tables, Reactions: d.Reactions,
		DiffCoeff: d.Config.Chemical.DiffCoeff, Dt: d.Config.Control.Dt,
		DistError: d.Graph.DistError, Rng: stream, Lists: lists,
	}
	microEngine.OnMesoTransfer = func(subID, molType int) {
		sv := &d.Graph.Subvolumes[subID]
		if molType < len(sv.Counts) {
			sv.Counts[molType]++
		}
	}
	mesoEngine.OnMicroInsert = func(regionID, molType, subID int) {
		if regionID < 0 || regionID >= len(lists) || lists[regionID] == nil {
			return
		}
		lists[regionID][molType].Recent = append(lists[regionID][molType].Recent, micro.Molecule{
			Type: molType, Pos: regionInsertPoint(d.Graph.Regions[regionID]),
		})
	}

	ledger := newLedger()
	microEngine.OnLedger = ledger.record
	mesoEngine.OnLedger = ledger.record

	actorsCopy := make([]actor.Actor, len(d.Actors))
	copy(actorsCopy, d.Actors)

	return &realizationState{
		rng: stream, micro: microEngine, meso: mesoEngine,
		actors: actorsCopy, scheduler: NewScheduler(), ledger: ledger,
	}
}

func seedInitialCounts(d *Driver, lists [][]micro.List) {
	for sv := range d.Graph.Subvolumes {
		counts := d.Graph.Subvolumes[sv].Counts
		for t := range counts {
			counts[t] = 0
		}
	}
	for ri, spec := range d.Config.Environment.Regions {
		if ri >= len(d.Graph.Regions) {
			continue
		}
		r := d.Graph.Regions[ri]
		for t, n := range spec.InitialCounts {
			if r.IsMicroscopic {
				for i := 0; i < n; i++ {
					lists[ri][t].Steady = append(lists[ri][t].Steady, micro.Molecule{Type: t})
				}
				continue
			}
			for sv := r.SubvolumeStart; sv < r.SubvolumeStart+r.SubvolumeCount; sv++ {
				if t < len(d.Graph.Subvolumes[sv].Counts) {
					d.Graph.Subvolumes[sv].Counts[t] += n / maxInt(r.SubvolumeCount, 1)
				}
			}
		}
	}
}

// regionInsertPoint returns a representative world point for a molecule
// crossing a meso-to-micro boundary, since the meso engine only tracks
// per-subvolume counts and no per-molecule coordinate: the destination
// region's shape center, which the next micro tick's path validation will
// then diffuse and reflect from correctly.
func regionInsertPoint(r region.Region) mgl64.Vec3 {
	switch r.Shape.Kind {
	case geom.Box, geom.Rectangle: // Center is unset for these; use the midpoint of the extents.
		return r.Shape.Min.Add(r.Shape.Max).Mul(0.5)
	case geom.Cylinder: // Center is the base-circle anchor; move halfway along the axis.
		c := r.Shape.Center
		c[r.Shape.Axis] += r.Shape.Length / 2
		return c
	default:
		return r.Shape.Center
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
