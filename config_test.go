package molsim

import "testing"

func TestApplyDefaultsFillsMissingFields(t *testing.T) {
	cfg := &Config{}
	warnings := applyDefaults(cfg)
	if cfg.Control.Repeats != 1 {
		t.Errorf("expected repeats to default to 1, got %d", cfg.Control.Repeats)
	}
	if len(warnings) == 0 {
		t.Error("expected at least one warning for an empty config")
	}
}

func TestValidateRejectsMismatchedDiffusionCoeffLength(t *testing.T) {
	cfg := &Config{Chemical: ChemicalProperties{NumTypes: 2, DiffCoeff: []float64{1e-9}}}
	cfg.Environment.Regions = []RegionEntry{{Label: "a"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected a validation error for a diffusion coefficient length mismatch")
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := &Config{Chemical: ChemicalProperties{NumTypes: 1, DiffCoeff: []float64{1e-9}}}
	cfg.Environment.Regions = []RegionEntry{{Label: "a"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected a well-formed config to validate, got %v", err)
	}
}

func TestConfirmWarningsPassesWithoutWarnings(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ConfirmWarnings(nil, func([]string) bool { return false }); err != nil {
		t.Fatalf("expected no gate with zero warnings, got %v", err)
	}
}

func TestConfirmWarningsSuppressedByOverride(t *testing.T) {
	cfg := &Config{WarningOverride: true}
	err := cfg.ConfirmWarnings([]string{"simulation_control.dt defaulted to 1e-6"}, func([]string) bool { return false })
	if err != nil {
		t.Fatalf("expected warning_override to suppress the gate, got %v", err)
	}
}

func TestConfirmWarningsRejectedWithoutConfirmation(t *testing.T) {
	cfg := &Config{}
	err := cfg.ConfirmWarnings([]string{"simulation_control.dt defaulted to 1e-6"}, func([]string) bool { return false })
	if err == nil {
		t.Fatal("expected an error when the operator declines to confirm")
	}
}

func TestConfirmWarningsAcceptedByConfirmation(t *testing.T) {
	cfg := &Config{}
	var seen []string
	err := cfg.ConfirmWarnings([]string{"a", "b"}, func(w []string) bool {
		seen = w
		return true
	})
	if err != nil {
		t.Fatalf("expected confirmation to clear the gate, got %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("expected the confirm callback to see both warnings, got %v", seen)
	}
}

func TestResolveRegionsBuildsBoxShape(t *testing.T) {
	cfg := &Config{}
	cfg.Environment.Regions = []RegionEntry{
		{Label: "box", Shape: "Rectangular Box", SizeX: 1, SizeY: 1, SizeZ: 1, NX: 1, NY: 1, NZ: 1},
	}
	specs := cfg.ResolveRegions()
	if len(specs) != 1 {
		t.Fatalf("expected 1 resolved spec, got %d", len(specs))
	}
	if specs[0].Shape.Max.X() != 1 {
		t.Errorf("expected box max.x == 1, got %v", specs[0].Shape.Max.X())
	}
}
