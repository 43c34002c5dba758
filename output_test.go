package molsim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gomolsim/molsim/actor"
)

func TestWriteTextIncludesRealizationAndActorBits(t *testing.T) {
	rec := RealizationRecord{
		Index:      3,
		ActiveBits: map[string][]bool{"tx": {true, false, true}},
		PassiveObs: map[string][]actor.Observation{},
		RecordPos:  map[string]bool{},
	}
	var buf bytes.Buffer
	if err := WriteText(&buf, rec); err != nil {
		t.Fatalf("WriteText returned an error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "realization 3") {
		t.Errorf("expected output to mention the realization index, got %q", out)
	}
	if !strings.Contains(out, "actor tx bits: 1 0 1") {
		t.Errorf("expected output to contain the actor's bit sequence, got %q", out)
	}
}

func TestWriteTextIncludesPassiveObservationCounts(t *testing.T) {
	rec := RealizationRecord{
		Index:      0,
		ActiveBits: map[string][]bool{},
		PassiveObs: map[string][]actor.Observation{
			"rx": {{Time: 0.5, Counts: []int{7}}},
		},
		RecordPos: map[string]bool{"rx": false},
	}
	var buf bytes.Buffer
	if err := WriteText(&buf, rec); err != nil {
		t.Fatalf("WriteText returned an error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "actor rx t=0.5 7") {
		t.Errorf("expected output to contain the observation count, got %q", out)
	}
}

func TestWriteSummaryIncludesMaxCounts(t *testing.T) {
	s := Summary{
		InputFile: "sim.yaml", Seed: 7, Repeats: 10,
		WallStart: "t0", WallEnd: "t1",
		MaxBitsPerActor: map[string]int{"tx": 12},
		MaxObsPerActor:  map[string]int{"rx": 40},
	}
	var buf bytes.Buffer
	if err := WriteSummary(&buf, s); err != nil {
		t.Fatalf("WriteSummary returned an error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"input: sim.yaml", "seed: 7", "repeats: 10", "max_bits tx 12", "max_obs rx 40"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}
