package molsim

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gomolsim/molsim/chem"
	"github.com/gomolsim/molsim/geom"
	"github.com/gomolsim/molsim/region"
	"github.com/gomolsim/molsim/simerr"
	"gopkg.in/yaml.v3"
)

// Config is the parsed, validated simulation record (spec.md §6): the
// four top-level sections plus free-form notes. The text-format parser is
// an external collaborator concern; this struct is the contract it must
// produce.
type Config struct {
	Control     SimulationControl     `yaml:"simulation_control"`
	Chemical    ChemicalProperties    `yaml:"chemical_properties"`
	Environment EnvironmentProperties `yaml:"environment"`
	Notes       string                `yaml:"notes"`

	// WarningOverride suppresses the operator-confirmation pause when any
	// config field was defaulted (spec.md §7 propagation policy).
	WarningOverride bool `yaml:"warning_override"`
}

// SimulationControl is spec.md §6's Simulation Control section.
type SimulationControl struct {
	Repeats           int     `yaml:"repeats"`
	FinalTime         float64 `yaml:"final_time"`
	Dt                float64 `yaml:"dt"`
	Seed              uint64  `yaml:"seed"`
	MaxProgressUpdates int    `yaml:"max_progress_updates"`
}

// ChemicalProperties is spec.md §6's Chemical Properties section.
type ChemicalProperties struct {
	NumTypes      int             `yaml:"num_types"`
	DiffCoeff     []float64       `yaml:"diffusion_coefficients"`
	Reactions     []ReactionEntry `yaml:"reactions"`
}

// ReactionEntry is the config-format shape of one reaction, before being
// lowered into chem.Reaction by ResolveReactions.
type ReactionEntry struct {
	Reactants         []int   `yaml:"reactants"`
	Products          []int   `yaml:"products"`
	K                 float64 `yaml:"k"`
	Surface           bool    `yaml:"surface"`
	SurfaceReactionType string `yaml:"surface_reaction_type"`
	DefaultEverywhere bool     `yaml:"default_everywhere"`
	ExceptionRegions  []string `yaml:"exception_regions"`
}

// EnvironmentProperties is spec.md §6's Environment section.
type EnvironmentProperties struct {
	NumDimensions int            `yaml:"num_dimensions"`
	SubvolumeBase float64        `yaml:"subvolume_base_size"`
	Regions       []RegionEntry  `yaml:"regions"`
	Actors        []ActorEntry   `yaml:"actors"`
}

// RegionEntry is the config-format shape of one region.
type RegionEntry struct {
	Label             string  `yaml:"label"`
	ParentLabel       string  `yaml:"parent_label"`
	Shape             string  `yaml:"shape"`
	Type              string  `yaml:"type"`
	SurfaceType       string  `yaml:"surface_type"`
	AnchorX           float64 `yaml:"anchor_x"`
	AnchorY           float64 `yaml:"anchor_y"`
	AnchorZ           float64 `yaml:"anchor_z"`
	SizeX             float64 `yaml:"size_x"`
	SizeY             float64 `yaml:"size_y"`
	SizeZ             float64 `yaml:"size_z"`
	Axis              string  `yaml:"axis"`
	Radius            float64 `yaml:"radius"`
	Length            float64 `yaml:"length"`
	SubvolumeSize     float64 `yaml:"integer_subvolume_size"`
	IsMicroscopic     bool    `yaml:"is_microscopic"`
	NX                int     `yaml:"nx"`
	NY                int     `yaml:"ny"`
	NZ                int     `yaml:"nz"`
	Flow              *FlowEntry `yaml:"flow"`
	InitialCounts     []int   `yaml:"initial_counts"`
}

// FlowEntry is the config-format shape of a cylinder's flow block.
type FlowEntry struct {
	Velocity     float64 `yaml:"velocity"`
	Acceleration float64 `yaml:"acceleration"`
	Function     string  `yaml:"function"`
	Frequency    float64 `yaml:"frequency"`
	Amplitude    float64 `yaml:"amplitude"`
	Profile      string  `yaml:"profile"`
}

// ActorEntry is the config-format shape of one actor.
type ActorEntry struct {
	Label          string   `yaml:"label"`
	RegionLabels   []string `yaml:"region_labels"`
	Active         bool     `yaml:"active"`
	StartTime      float64  `yaml:"start_time"`
	ActionInterval float64  `yaml:"action_interval"`
	MaxActions     int      `yaml:"max_actions"`

	ModBits          int     `yaml:"mod_bits"`
	Strength         int     `yaml:"strength"`
	SlotInterval     float64 `yaml:"slot_interval"`
	ReleaseInterval  float64 `yaml:"release_interval"`
	BTimeReleaseRand bool    `yaml:"b_time_release_rand"`

	ObservedTypes []int `yaml:"observed_types"`
	BRecordPos    bool  `yaml:"b_record_pos"`
}

// LoadConfig reads and parses a YAML config document, filling documented
// defaults for missing fields (spec.md §6). It runs no validation: the
// structural checks are in Validate (which NewDriver calls before building
// regions), and geometry is checked by region.Build.
func LoadConfig(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, simerr.Wrap(simerr.ConfigurationMalformed, "config", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, simerr.Wrap(simerr.ConfigurationMalformed, "config", path, err)
	}
	warnings := applyDefaults(&cfg)
	return &cfg, warnings, nil
}

// applyDefaults fills every documented default and returns one warning
// message per field defaulted (spec.md §6).
func applyDefaults(cfg *Config) []string {
	var warnings []string
	if cfg.Control.Repeats <= 0 {
		cfg.Control.Repeats = 1
		warnings = append(warnings, "simulation_control.repeats defaulted to 1")
	}
	if cfg.Control.Dt <= 0 {
		cfg.Control.Dt = 1e-6
		warnings = append(warnings, "simulation_control.dt defaulted to 1e-6")
	}
	if cfg.Control.MaxProgressUpdates <= 0 {
		cfg.Control.MaxProgressUpdates = 100
		warnings = append(warnings, "simulation_control.max_progress_updates defaulted to 100")
	}
	if cfg.Environment.SubvolumeBase <= 0 {
		cfg.Environment.SubvolumeBase = 1e-6
		warnings = append(warnings, "environment.subvolume_base_size defaulted to 1e-6")
	}
	for i := range cfg.Environment.Regions {
		r := &cfg.Environment.Regions[i]
		if r.SubvolumeSize <= 0 {
			r.SubvolumeSize = 1
			warnings = append(warnings, fmt.Sprintf("environment.regions[%d].integer_subvolume_size defaulted to 1", i))
		}
		if r.NX == 0 && r.NY == 0 && r.NZ == 0 {
			r.NX, r.NY, r.NZ = 1, 1, 1
			warnings = append(warnings, fmt.Sprintf("environment.regions[%d].nx/ny/nz defaulted to 1", i))
		}
	}
	return warnings
}

// ConfirmWarnings implements spec.md §7's operator-confirmation gate: a
// config that triggered any applyDefaults warning must be confirmed before
// a realization runs, unless WarningOverride suppresses the pause. confirm
// is given the accumulated warnings and reports whether to proceed; a CLI
// entry point wires it to an interactive prompt, a batch/headless caller to
// a function that always returns true (equivalent to WarningOverride) or
// false (fail closed). Returns nil immediately when there is nothing to
// confirm.
func (c *Config) ConfirmWarnings(warnings []string, confirm func([]string) bool) error {
	if len(warnings) == 0 || c.WarningOverride {
		return nil
	}
	if confirm == nil || !confirm(warnings) {
		return simerr.New(simerr.ConfigurationMalformed, "config", "",
			"defaulted fields were not confirmed by the operator; rerun with warning_override to skip this gate")
	}
	return nil
}

// Validate checks every documented invariant that doesn't require the
// built region graph (shape-agnostic structural checks); geometry
// validity itself is checked by region.Build.
func (c *Config) Validate() error {
	if c.Chemical.NumTypes <= 0 {
		return simerr.New(simerr.ConfigurationMalformed, "config", "chemical_properties", "num_types must be positive")
	}
	if len(c.Chemical.DiffCoeff) != c.Chemical.NumTypes {
		return simerr.New(simerr.ConfigurationMalformed, "config", "chemical_properties", "diffusion_coefficients length must equal num_types")
	}
	for i, rx := range c.Chemical.Reactions {
		if len(rx.Reactants) != c.Chemical.NumTypes || len(rx.Products) != c.Chemical.NumTypes {
			return simerr.New(simerr.ConfigurationMalformed, "config", fmt.Sprintf("reaction[%d]", i),
				"reactants/products length must equal num_types")
		}
	}
	if len(c.Environment.Regions) == 0 {
		return simerr.New(simerr.ConfigurationMalformed, "config", "environment", "at least one region is required")
	}
	return nil
}

// ResolveReactions lowers the config-format reaction entries into chem's
// domain type.
func (c *Config) ResolveReactions() []chem.Reaction {
	out := make([]chem.Reaction, len(c.Chemical.Reactions))
	for i, e := range c.Chemical.Reactions {
		out[i] = chem.Reaction{
			Reactants:         e.Reactants,
			Products:          e.Products,
			K:                 e.K,
			Surface:           e.Surface,
			SurfaceKind:       parseSurfaceKind(e.SurfaceReactionType),
			DefaultEverywhere: e.DefaultEverywhere,
			ExceptionRegions:  e.ExceptionRegions,
		}
	}
	return out
}

func parseSurfaceKind(s string) chem.SurfaceKind {
	switch s {
	case "Absorbing":
		return chem.Absorbing
	case "Receptor Binding", "Receptor":
		return chem.Receptor
	case "Membrane":
		return chem.Membrane
	case "Normal":
		return chem.Normal
	default:
		return chem.NotSurface
	}
}

// ResolveRegions lowers the config-format region entries into the region
// builder's Spec type.
func (c *Config) ResolveRegions() []region.Spec {
	out := make([]region.Spec, len(c.Environment.Regions))
	for i, e := range c.Environment.Regions {
		out[i] = region.Spec{
			Label:         e.Label,
			ParentLabel:   e.ParentLabel,
			Shape:         resolveShape(e),
			Kind:          parseRegionKind(e.Type),
			SurfaceKind:   parseRegionSurfaceKind(e.SurfaceType),
			IsMicroscopic: e.IsMicroscopic,
			NX:            e.NX, NY: e.NY, NZ: e.NZ,
			SubSize: e.SubvolumeSize,
			Dt:      c.Control.Dt,
			Flow:    resolveFlow(e.Flow),
		}
	}
	return out
}

func resolveShape(e RegionEntry) geom.Shape {
	anchor := mgl64.Vec3{e.AnchorX, e.AnchorY, e.AnchorZ}
	switch e.Shape {
	case "Sphere":
		return geom.NewSphere(anchor, e.Radius)
	case "Cylinder":
		return geom.NewCylinder(anchor, parseAxis(e.Axis), e.Radius, e.Length)
	case "Rectangle":
		axis := parseAxis(e.Axis)
		sizes := [3]float64{e.SizeX, e.SizeY, e.SizeZ}
		var loA, hiA, loB, hiB float64
		i := 0
		for a := 0; a < 3; a++ {
			if geom.Axis(a) == axis {
				continue
			}
			lo, hi := anchor[a], anchor[a]+sizes[a]
			if i == 0 {
				loA, hiA = lo, hi
			} else {
				loB, hiB = lo, hi
			}
			i++
		}
		return geom.NewRectangle(axis, anchor[axis], loA, hiA, loB, hiB)
	default: // Rectangular Box
		return geom.NewBox(anchor, anchor.Add(mgl64.Vec3{e.SizeX, e.SizeY, e.SizeZ}))
	}
}

func parseAxis(s string) geom.Axis {
	switch s {
	case "X":
		return geom.AxisX
	case "Y":
		return geom.AxisY
	default:
		return geom.AxisZ
	}
}

func parseRegionKind(s string) region.Kind {
	switch s {
	case "3D Surface":
		return region.Surface3D
	case "2D Surface":
		return region.Surface2D
	default:
		return region.Normal
	}
}

func parseRegionSurfaceKind(s string) region.SurfaceKind {
	switch s {
	case "Membrane":
		return region.Membrane
	case "Inner":
		return region.Inner
	case "Outer":
		return region.Outer
	default:
		return region.NoSurface
	}
}

func resolveFlow(f *FlowEntry) *region.Flow {
	if f == nil {
		return nil
	}
	fn := region.Linear
	if f.Function == "Sinus" {
		fn = region.Sinus
	}
	prof := region.Uniform
	if f.Profile == "Laminar" {
		prof = region.Laminar
	}
	return &region.Flow{
		Velocity: f.Velocity, Acceleration: f.Acceleration,
		Function: fn, Frequency: f.Frequency, Amplitude: f.Amplitude,
		Profile: prof,
	}
}
