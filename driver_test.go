package molsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	cfg := &Config{}
	cfg.Control = SimulationControl{Repeats: 1, FinalTime: 0.01, Dt: 1e-3, Seed: 1, MaxProgressUpdates: 4}
	cfg.Chemical = ChemicalProperties{NumTypes: 1, DiffCoeff: []float64{1e-9}}
	cfg.Environment = EnvironmentProperties{
		SubvolumeBase: 1e-6,
		Regions: []RegionEntry{
			{Label: "box", Shape: "Rectangular Box", SizeX: 1e-6, SizeY: 1e-6, SizeZ: 1e-6, NX: 1, NY: 1, NZ: 1,
				IsMicroscopic: true, InitialCounts: []int{5}},
		},
	}
	return cfg
}

func TestNewDriverBuildsGraphAndTables(t *testing.T) {
	cfg := testConfig()
	d, err := NewDriver(cfg, NewNopLogger())
	require.NoError(t, err)
	assert.Len(t, d.Graph.Regions, 1)
	assert.Len(t, d.Tables, 1)
	assert.NotEmpty(t, d.BatchID)
}

func TestRunRealizationReturnsRecordForIndex(t *testing.T) {
	cfg := testConfig()
	d, err := NewDriver(cfg, NewNopLogger())
	require.NoError(t, err)

	rec, err := d.RunRealization(0, cfg.Control.Seed)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Index)
}

func TestRunRealizationIsDeterministicForAFixedSeed(t *testing.T) {
	cfg := testConfig()
	d1, err := NewDriver(cfg, NewNopLogger())
	require.NoError(t, err)
	rec1, err := d1.RunRealization(0, 42)
	require.NoError(t, err)

	d2, err := NewDriver(cfg, NewNopLogger())
	require.NoError(t, err)
	rec2, err := d2.RunRealization(0, 42)
	require.NoError(t, err)

	assert.Equal(t, rec1.ActiveBits, rec2.ActiveBits)
}
