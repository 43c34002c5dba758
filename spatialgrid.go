package molsim

import (
	"github.com/go-gl/mathgl/mgl64"
)

// spatialHashGrid is a broad-phase index over molecule positions, so a
// passive actor's observation snapshot doesn't have to scan every
// microscopically-tracked molecule in the realization to find the ones
// near its footprint (spec.md §4.F passive actor step 1).
type spatialHashGrid struct {
	cellSize float64
	cells    map[[3]int][]int
}

func newSpatialHashGrid(cellSize float64) *spatialHashGrid {
	return &spatialHashGrid{cellSize: cellSize, cells: make(map[[3]int][]int)}
}

func (g *spatialHashGrid) cellIndex(v float64) int {
	return int(v/g.cellSize) - boolToInt(v < 0)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Insert records position idx's world point under every cell it could
// collide with; molecule positions have no extent, so exactly one cell.
func (g *spatialHashGrid) Insert(idx int, pos mgl64.Vec3) {
	key := [3]int{g.cellIndex(pos.X()), g.cellIndex(pos.Y()), g.cellIndex(pos.Z())}
	g.cells[key] = append(g.cells[key], idx)
}

// QueryAABB returns every inserted index whose cell overlaps [lo,hi],
// as broad-phase candidates for an exact containment test.
func (g *spatialHashGrid) QueryAABB(lo, hi mgl64.Vec3) []int {
	minX, maxX := g.cellIndex(lo.X()), g.cellIndex(hi.X())
	minY, maxY := g.cellIndex(lo.Y()), g.cellIndex(hi.Y())
	minZ, maxZ := g.cellIndex(lo.Z()), g.cellIndex(hi.Z())

	var out []int
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				out = append(out, g.cells[[3]int{x, y, z}]...)
			}
		}
	}
	return out
}
