package actor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gomolsim/molsim/geom"
	"github.com/gomolsim/molsim/rng"
)

func TestReleaseCountsScaleWithSymbol(t *testing.T) {
	box := geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	a := &Actor{
		Kind:           Active,
		Footprint:      Footprint{Shape: &box},
		ActionInterval: 1,
		Modulation:     Modulation{ModBits: 1, Strength: 3, ReleaseInterval: 0.1},
	}
	r := rng.New(5)
	emissions := a.Release([]bool{true}, 1, r, nil, nil)
	if len(emissions) != 3 {
		t.Fatalf("expected strength*symbol = 3 emissions, got %d", len(emissions))
	}
}

func TestReleaseZeroSymbolEmitsNothing(t *testing.T) {
	box := geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	a := &Actor{
		Footprint:      Footprint{Shape: &box},
		ActionInterval: 1,
		Modulation:     Modulation{ModBits: 1, Strength: 3, ReleaseInterval: 0.1},
	}
	emissions := a.Release([]bool{false}, 1, rng.New(1), nil, nil)
	if len(emissions) != 0 {
		t.Fatalf("expected zero emissions for symbol 0, got %d", len(emissions))
	}
}

func TestObserveSnapshotCountsContainedMolecules(t *testing.T) {
	box := geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10})
	a := &Actor{Footprint: Footprint{Shape: &box}}
	positions := [][]mgl64.Vec3{{{1, 1, 1}, {20, 20, 20}}}
	obs, err := a.ObserveSnapshot(0, 1, positions, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if obs.Counts[0] != 1 {
		t.Errorf("expected exactly 1 molecule inside the footprint, got %d", obs.Counts[0])
	}
}

func TestActorDoneAfterMaxActions(t *testing.T) {
	a := &Actor{MaxActions: 2}
	if a.Done() {
		t.Fatal("actor should not be done before any actions")
	}
	a.actionCount = 2
	if !a.Done() {
		t.Fatal("actor should be done after reaching max_actions")
	}
}
