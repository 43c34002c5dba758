package meso

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gomolsim/molsim/chem"
	"github.com/gomolsim/molsim/geom"
	"github.com/gomolsim/molsim/region"
	"github.com/gomolsim/molsim/rng"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	specs := []region.Spec{
		{Label: "a", Shape: geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}), NX: 1, NY: 1, NZ: 1},
		{Label: "b", Shape: geom.NewBox(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 1, 1}), NX: 1, NY: 1, NZ: 1},
	}
	g, err := region.Build(specs, 1, 1e-9, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	g.SizeDiffusion([]float64{1e-9}, 1)
	g.Subvolumes[0].Counts = []int{10}
	g.Subvolumes[1].Counts = []int{0}

	tbl, err := chem.Compile(nil, g.Regions, g.Subvolumes, 1, 0.01, []float64{1e-9})
	if err != nil {
		t.Fatal(err)
	}
	e := &Engine{
		Graph:      g,
		Tables:     tbl,
		Rng:        rng.New(3),
		Propensity: make([]float64, len(g.Subvolumes)),
		Tau:        make([]float64, len(g.Subvolumes)),
	}
	for i := range g.Subvolumes {
		e.InitSubvolume(i, 0)
	}
	return e
}

func TestPropensityPositiveWithMolecules(t *testing.T) {
	e := newTestEngine(t)
	if e.Propensity[0] <= 0 {
		t.Fatal("expected a positive propensity for a subvolume holding molecules with a diffusion-capable neighbor")
	}
}

func TestDiffusionConservesTotalCount(t *testing.T) {
	e := newTestEngine(t)
	total := func() int {
		n := 0
		for _, sv := range e.Graph.Subvolumes {
			for _, c := range sv.Counts {
				n += c
			}
		}
		return n
	}
	before := total()
	for i := 0; i < 20; i++ {
		e.FireNext(0, float64(i))
	}
	if total() != before {
		t.Errorf("expected molecule count conservation, before=%d after=%d", before, total())
	}
}
