package molsim

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gomolsim/molsim/actor"
)

// RealizationRecord is one realization's output stream contents
// (spec.md §6 Outputs): the realization index, each active actor's
// emitted bit sequence, and each recorded passive actor's observations.
type RealizationRecord struct {
	Index         int
	ActiveBits    map[string][]bool
	PassiveObs    map[string][]actor.Observation
	RecordPos     map[string]bool

	// LedgerTotals is the net molecule-count delta per conservation cause
	// accumulated over the realization (spec.md §8 invariant (i)).
	LedgerTotals map[string]int
}

// WriteText writes one realization's text stream in the order spec.md §6
// specifies.
func WriteText(w io.Writer, rec RealizationRecord) error {
	if _, err := fmt.Fprintf(w, "realization %d\n", rec.Index); err != nil {
		return err
	}
	for label, bits := range rec.ActiveBits {
		if _, err := fmt.Fprintf(w, "actor %s bits:", label); err != nil {
			return err
		}
		for _, b := range bits {
			bit := 0
			if b {
				bit = 1
			}
			if _, err := fmt.Fprintf(w, " %d", bit); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	for label, obs := range rec.PassiveObs {
		for _, o := range obs {
			if err := writeObservation(w, label, o, rec.RecordPos[label]); err != nil {
				return err
			}
		}
	}
	if len(rec.LedgerTotals) > 0 {
		causes := make([]string, 0, len(rec.LedgerTotals))
		for c := range rec.LedgerTotals {
			causes = append(causes, c)
		}
		sort.Strings(causes)
		for _, c := range causes {
			if _, err := fmt.Fprintf(w, "ledger %s %d\n", c, rec.LedgerTotals[c]); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeObservation(w io.Writer, label string, o actor.Observation, recordPos bool) error {
	if _, err := fmt.Fprintf(w, "actor %s t=%g", label, o.Time); err != nil {
		return err
	}
	for _, c := range o.Counts {
		if _, err := fmt.Fprintf(w, " %d", c); err != nil {
			return err
		}
	}
	if recordPos {
		for _, positions := range o.Positions {
			if _, err := fmt.Fprint(w, " ("); err != nil {
				return err
			}
			for _, p := range positions {
				if err := writeVec3(w, p); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprint(w, ")"); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeVec3(w io.Writer, p mgl64.Vec3) error {
	_, err := fmt.Fprintf(w, "(%g,%g,%g) ", p.X(), p.Y(), p.Z())
	return err
}

// Summary is the per-batch summary stream (spec.md §6 Outputs).
type Summary struct {
	InputFile     string
	Seed          uint64
	Repeats       int
	WallStart     string
	WallEnd       string
	MaxBitsPerActor  map[string]int
	MaxObsPerActor   map[string]int
}

// WriteSummary writes the summary stream.
func WriteSummary(w io.Writer, s Summary) error {
	if _, err := fmt.Fprintf(w, "input: %s\nseed: %d\nrepeats: %d\nstart: %s\nend: %s\n",
		s.InputFile, s.Seed, s.Repeats, s.WallStart, s.WallEnd); err != nil {
		return err
	}
	for label, n := range s.MaxBitsPerActor {
		if _, err := fmt.Fprintf(w, "max_bits %s %d\n", label, n); err != nil {
			return err
		}
	}
	for label, n := range s.MaxObsPerActor {
		if _, err := fmt.Fprintf(w, "max_obs %s %d\n", label, n); err != nil {
			return err
		}
	}
	return nil
}
