package molsim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSpatialHashGridInsertionAndQuery(t *testing.T) {
	grid := newSpatialHashGrid(2.0)

	grid.Insert(1, mgl64.Vec3{0.5, 0.5, 0.5})
	grid.Insert(2, mgl64.Vec3{3.5, 3.5, 3.5})

	res1 := grid.QueryAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	if len(res1) != 1 || res1[0] != 1 {
		t.Errorf("expected idx 1 near the origin, got %v", res1)
	}

	res2 := grid.QueryAABB(mgl64.Vec3{3, 3, 3}, mgl64.Vec3{4, 4, 4})
	if len(res2) != 1 || res2[0] != 2 {
		t.Errorf("expected idx 2 near (3.5,3.5,3.5), got %v", res2)
	}

	resMid := grid.QueryAABB(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{3, 3, 3})
	if len(resMid) != 2 {
		t.Errorf("expected both points in a query spanning both cells, got %d: %v", len(resMid), resMid)
	}
}

func TestSpatialHashGridNegativeCoordinates(t *testing.T) {
	grid := newSpatialHashGrid(1.0)
	grid.Insert(1, mgl64.Vec3{-0.5, -0.5, -0.5})

	res := grid.QueryAABB(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{0, 0, 0})
	if len(res) != 1 || res[0] != 1 {
		t.Errorf("expected the negative-coordinate point to be found, got %v", res)
	}
}
