package molsim

import "time"

// WallClock tracks a realization batch's real-world start and end time,
// for the summary stream (spec.md §6).
type WallClock struct {
	Start time.Time
	End   time.Time
}

// Begin marks the start of a run.
func (c *WallClock) Begin() { c.Start = time.Now() }

// Finish marks the end of a run.
func (c *WallClock) Finish() { c.End = time.Now() }

// Elapsed returns End.Sub(Start); zero if Finish hasn't been called.
func (c *WallClock) Elapsed() time.Duration {
	if c.End.IsZero() {
		return 0
	}
	return c.End.Sub(c.Start)
}
