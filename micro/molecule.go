// Package micro implements the microscopic engine (spec.md §4.D): Brownian
// diffusion, cylinder flow advection, and path validation for molecules
// tracked as exact 3D coordinates.
package micro

import "github.com/go-gl/mathgl/mgl64"

// Molecule is one microscopically-tracked particle.
type Molecule struct {
	Type     int
	Pos      mgl64.Vec3
	DtPartial float64 // only meaningful while on the recent list
	Degenerate bool   // set when PathValidationDepth was exceeded
}

// List holds the steady and recent molecules of one (region, type)
// pair (spec.md §9's ownership graph: ordered insertion, cheap append,
// whole-list drain).
type List struct {
	Steady []Molecule
	Recent []Molecule
}

// DrainRecentInto moves every recent molecule onto dst's steady list,
// clearing this list's recent slice. It is the "whole-list drain" spec.md
// §9 asks for at the end of a recent-list pass.
func (l *List) DrainRecentInto(dst *List) {
	dst.Steady = append(dst.Steady, l.Recent...)
	l.Recent = l.Recent[:0]
}

// RemoveSteady deletes the steady molecule at index i, preserving order.
func (l *List) RemoveSteady(i int) {
	l.Steady = append(l.Steady[:i], l.Steady[i+1:]...)
}
