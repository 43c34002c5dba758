package chem

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gomolsim/molsim/geom"
	"github.com/gomolsim/molsim/region"
)

func oneRegion() ([]region.Region, []region.Subvolume) {
	r := region.Region{Label: "box", Shape: geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}), SubvolumeStart: 0, SubvolumeCount: 1}
	sv := region.Subvolume{Volume: 1, Area: 1}
	return []region.Region{r}, []region.Subvolume{sv}
}

func TestCompileFirstOrderProbability(t *testing.T) {
	regions, subs := oneRegion()
	rxns := []Reaction{
		{Reactants: []int{1}, Products: []int{0}, K: 2.0, DefaultEverywhere: true},
	}
	tables, err := Compile(rxns, regions, subs, 1, 0.1, []float64{1e-9})
	if err != nil {
		t.Fatal(err)
	}
	rt := tables[0]
	if len(rt.Reactions) != 1 {
		t.Fatalf("expected 1 admitted reaction, got %d", len(rt.Reactions))
	}
	wantProb := 1 - math.Exp(-2.0*0.1)
	if math.Abs(rt.MicroRate[0]-wantProb) > 1e-12 {
		t.Errorf("expected micro probability %v, got %v", wantProb, rt.MicroRate[0])
	}
	if len(rt.CumProb[0]) != 1 || math.Abs(rt.CumProb[0][0]-(1-rt.MinRxnTimeRV[0])) > 1e-9 {
		t.Errorf("expected cumulative table to carry the full remaining mass, got %v", rt.CumProb[0])
	}
}

func TestCompileRejectsExclusivityViolation(t *testing.T) {
	regions, subs := oneRegion()
	rxns := []Reaction{
		{Reactants: []int{1}, Products: []int{0}, K: 1.0, Surface: true, SurfaceKind: Absorbing, DefaultEverywhere: true},
		{Reactants: []int{1}, Products: []int{0}, K: 1.0, DefaultEverywhere: true},
	}
	regions[0].Kind = region.Surface3D
	regions[0].SurfaceKind = region.Membrane
	if _, err := Compile(rxns, regions, subs, 1, 0.1, []float64{1e-9}); err == nil {
		t.Fatal("expected an exclusivity violation error")
	}
}

func TestOrderClassification(t *testing.T) {
	zero := Reaction{Reactants: []int{0, 0}}
	one := Reaction{Reactants: []int{1, 0}}
	two := Reaction{Reactants: []int{1, 1}}
	if zero.Order() != 0 || one.Order() != 1 || two.Order() != 2 {
		t.Fatalf("unexpected orders: %d %d %d", zero.Order(), one.Order(), two.Order())
	}
	if _, ok := two.SoleReactantType(); ok {
		t.Error("a 2-order reaction must not report a sole reactant type")
	}
}
