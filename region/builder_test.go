package region

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gomolsim/molsim/geom"
)

func TestBuildSingleBoxGrid(t *testing.T) {
	specs := []Spec{
		{
			Label: "cytoplasm",
			Shape: geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 2, 2}),
			NX:    2, NY: 2, NZ: 2,
		},
	}
	g, err := Build(specs, 1, 1e-9, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Subvolumes) != 8 {
		t.Fatalf("expected 8 subvolumes, got %d", len(g.Subvolumes))
	}
	for _, sv := range g.Subvolumes {
		if sv.NumNeigh < 3 || sv.NumNeigh > 6 {
			t.Errorf("unexpected neighbor count %d for a 2x2x2 grid cell", sv.NumNeigh)
		}
	}
}

func TestBuildRejectsUnknownParent(t *testing.T) {
	specs := []Spec{
		{Label: "inner", ParentLabel: "missing", Shape: geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}), NX: 1, NY: 1, NZ: 1},
	}
	if _, err := Build(specs, 1, 1e-9, 1e-9); err == nil {
		t.Fatal("expected an error for a reference to a nonexistent parent")
	}
}

func TestBuildNestedRegions(t *testing.T) {
	specs := []Spec{
		{Label: "outer", Shape: geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10}), NX: 2, NY: 2, NZ: 2},
		{Label: "inner", ParentLabel: "outer", Shape: geom.NewBox(mgl64.Vec3{2, 2, 2}, mgl64.Vec3{8, 8, 8}), NX: 1, NY: 1, NZ: 1},
	}
	g, err := Build(specs, 1, 1e-9, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	if g.Regions[1].ParentID != 0 {
		t.Errorf("expected inner region's parent to resolve to index 0, got %d", g.Regions[1].ParentID)
	}
}

func TestBuildRejectsOverlappingSiblings(t *testing.T) {
	specs := []Spec{
		{Label: "a", Shape: geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 2, 2}), NX: 1, NY: 1, NZ: 1},
		{Label: "b", Shape: geom.NewBox(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{3, 3, 3}), NX: 1, NY: 1, NZ: 1},
	}
	if _, err := Build(specs, 1, 1e-9, 1e-9); err == nil {
		t.Fatal("expected an error for two overlapping, non-nested regions")
	}
}

func TestBuildCylinderIsSingleMicroscopicSubvolume(t *testing.T) {
	specs := []Spec{
		{Label: "vessel", Shape: geom.NewCylinder(mgl64.Vec3{0, 0, 0}, geom.AxisZ, 1, 10)},
	}
	g, err := Build(specs, 1, 1e-9, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Subvolumes) != 1 {
		t.Fatalf("expected exactly 1 subvolume for a cylinder region, got %d", len(g.Subvolumes))
	}
	if !g.Regions[0].IsMicroscopic {
		t.Error("expected a cylinder region to be forced microscopic")
	}
}

func TestBuildCrossRegionAdjacency(t *testing.T) {
	specs := []Spec{
		{Label: "left", Shape: geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}), NX: 1, NY: 1, NZ: 1},
		{Label: "right", Shape: geom.NewBox(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 1, 1}), NX: 1, NY: 1, NZ: 1},
	}
	g, err := Build(specs, 1, 1e-9, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	if g.Subvolumes[0].NumNeigh != 1 || g.Subvolumes[1].NumNeigh != 1 {
		t.Fatalf("expected each single-cell region to gain exactly one cross-region neighbor, got %d and %d",
			g.Subvolumes[0].NumNeigh, g.Subvolumes[1].NumNeigh)
	}
}

func TestCrossSectionalAreaUsesCurvedRegionCrossSection(t *testing.T) {
	h := 1.0
	boxRegion := Region{Shape: geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})}
	sphereRegion := Region{Shape: geom.NewSphere(mgl64.Vec3{0, 0, 0}, 0.1)}

	area := crossSectionalArea(Subvolume{}, Subvolume{}, boxRegion, sphereRegion, h)
	want := math.Pi * 0.1 * 0.1
	if math.Abs(area-want) > 1e-12 {
		t.Errorf("expected the sphere's pi*r^2 cross-section %g, got %g", want, area)
	}
}

func TestCrossSectionalAreaCapsCurvedAreaAtFullFace(t *testing.T) {
	h := 1.0
	boxRegion := Region{Shape: geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})}
	bigSphereRegion := Region{Shape: geom.NewSphere(mgl64.Vec3{0, 0, 0}, 10)}

	area := crossSectionalArea(Subvolume{}, Subvolume{}, boxRegion, bigSphereRegion, h)
	if area != h*h {
		t.Errorf("expected the curved cross-section to be capped at h*h=%g, got %g", h*h, area)
	}
}

func TestCrossSectionalAreaFullFaceForBoxBoxPair(t *testing.T) {
	h := 1.0
	a := Region{Shape: geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})}
	b := Region{Shape: geom.NewBox(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 1, 1})}

	area := crossSectionalArea(Subvolume{}, Subvolume{}, a, b, h)
	if area != h*h {
		t.Errorf("expected a full h*h face for a rectangular-rectangular pair, got %g", area)
	}
}

func TestSizeDiffusionFillsBoundaryRates(t *testing.T) {
	specs := []Spec{
		{Label: "a", Shape: geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}), NX: 1, NY: 1, NZ: 1, IsMicroscopic: false},
		{Label: "b", Shape: geom.NewBox(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 1, 1}), NX: 1, NY: 1, NZ: 1, IsMicroscopic: false},
	}
	g, err := Build(specs, 1, 1e-9, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	g.SizeDiffusion([]float64{1e-9}, 1)
	for _, sv := range g.Subvolumes {
		if len(sv.DiffusionRate) != len(sv.Neighbors) {
			t.Errorf("expected one rate row per neighbor, got %d rows for %d neighbors", len(sv.DiffusionRate), len(sv.Neighbors))
		}
		for _, row := range sv.DiffusionRate {
			if row[0] <= 0 {
				t.Errorf("expected a positive diffusion rate, got %v", row[0])
			}
		}
	}
}
