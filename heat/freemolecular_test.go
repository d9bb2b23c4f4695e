package heat_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/liifit/heat"
)

// newSootN2 builds the reference soot/N2 model at 1 bar, 1500 K.
func newSootN2(t *testing.T) *heat.FreeMolecular {
	t.Helper()
	m := heat.NewFreeMolecular(heat.Soot(), heat.Nitrogen())
	m.SetProcessConditions(1e5, 1500)
	require.NoError(t, m.Ready())

	return m
}

func TestFreeMolecular_Ready(t *testing.T) {
	m := heat.NewFreeMolecular(heat.Soot(), heat.Nitrogen())
	assert.ErrorIs(t, m.Ready(), heat.ErrNotConfigured, "no process conditions yet")

	m.SetProcessConditions(1e5, 1500)
	assert.NoError(t, m.Ready())

	bad := heat.NewFreeMolecular(heat.Material{Name: "empty"}, heat.Nitrogen())
	bad.SetProcessConditions(1e5, 1500)
	assert.ErrorIs(t, bad.Ready(), heat.ErrNotConfigured)

	p, tg := m.ProcessConditions()
	assert.Equal(t, 1e5, p)
	assert.Equal(t, 1500.0, tg)
	assert.Equal(t, heat.ModelFreeMolecular, m.Name())
}

func TestFreeMolecular_Conduction(t *testing.T) {
	m := newSootN2(t)
	assert.InEpsilon(t, 2.4752941e-8, m.Conduction(2500, 20e-9), 1e-6)
	assert.Zero(t, m.Conduction(1500, 20e-9), "no loss at gas temperature")
	// quadratic in d
	assert.InEpsilon(t, 4*m.Conduction(2500, 20e-9), m.Conduction(2500, 40e-9), 1e-12)
}

func TestFreeMolecular_Radiation(t *testing.T) {
	m := newSootN2(t)
	assert.Zero(t, m.Radiation(1500, 20e-9))
	want := 0.9 * math.Pi * 4e-16 * heat.StefanBoltz * (math.Pow(2500, 4) - math.Pow(1500, 4))
	assert.InEpsilon(t, want, m.Radiation(2500, 20e-9), 1e-12)
}

func TestFreeMolecular_Evaporation(t *testing.T) {
	m := newSootN2(t)
	qLow, dmLow := m.Evaporation(3000, 20e-9)
	qHigh, dmHigh := m.Evaporation(4000, 20e-9)

	assert.Less(t, dmLow, 0.0)
	assert.Less(t, dmHigh, dmLow, "hotter particles lose mass faster")
	assert.Greater(t, qHigh, qLow)

	mat := heat.Soot()
	assert.InEpsilon(t, -dmHigh*mat.VaporizationHeat/mat.VaporMolarMass, qHigh, 1e-12)
}

func TestFreeMolecular_DerivativeTimeConstant(t *testing.T) {
	m := newSootN2(t)
	m.SetFlags(heat.Flags{Conduction: true})
	dTdt, dddt := m.Derivative(2500, 20e-9)

	assert.Zero(t, dddt, "no evaporation, no diameter change")
	tau := 1000 / -dTdt
	assert.InDelta(t, 600e-9, tau, 20e-9, "conductive cooling time constant ~600 ns")
}

func TestFreeMolecular_NoLossChannels(t *testing.T) {
	m := newSootN2(t)
	m.SetFlags(heat.Flags{})
	assert.True(t, m.Flags().None())

	dTdt, dddt := m.Derivative(3500, 20e-9)
	assert.Zero(t, dTdt)
	assert.Zero(t, dddt)
}

func TestFreeMolecular_EvaporationShrinks(t *testing.T) {
	m := newSootN2(t)
	_, dddt := m.Derivative(4000, 20e-9)
	assert.Less(t, dddt, 0.0)
}

func TestFreeMolecular_CloneIsIndependent(t *testing.T) {
	m := newSootN2(t)
	c := m.Clone()
	c.SetProcessConditions(2e5, 1800)
	c.SetFlags(heat.Flags{})

	p, tg := m.ProcessConditions()
	assert.Equal(t, 1e5, p)
	assert.Equal(t, 1500.0, tg)
	assert.Equal(t, heat.AllFlags(), m.Flags())
}

func TestRegistry_Lookup(t *testing.T) {
	r := heat.DefaultRegistry()

	m, err := r.NewModel(heat.ModelFreeMolecular, "soot", "N2")
	require.NoError(t, err)
	assert.Equal(t, heat.ModelFreeMolecular, m.Name())

	_, err = r.NewModel("continuum", "soot", "N2")
	assert.ErrorIs(t, err, heat.ErrUnknownModel)
	_, err = r.NewModel(heat.ModelFreeMolecular, "iron", "N2")
	assert.ErrorIs(t, err, heat.ErrUnknownMaterial)
	_, err = r.NewModel(heat.ModelFreeMolecular, "soot", "He")
	assert.ErrorIs(t, err, heat.ErrUnknownGas)

	assert.Equal(t, []string{"soot"}, r.Materials())
}

const registryYAML = `
materials:
  - name: iron
    density: 7874
    heat_capacity: 449
    vapor_molar_mass: 0.0558
    vaporization_heat: 3.4e5
    ref_vapor_pressure: 101325
    ref_temperature: 3134
    evaporation_coeff: 1
    emissivity: 0.3
gases:
  - name: He
    molar_mass: 0.004
    heat_capacity_ratio: 1.667
    thermal_accommodation: 0.1
`

func TestRegistry_Load(t *testing.T) {
	r := heat.DefaultRegistry()
	require.NoError(t, r.Load(strings.NewReader(registryYAML)))

	iron, err := r.Material("iron")
	require.NoError(t, err)
	assert.Equal(t, 7874.0, iron.Density)

	he, err := r.Gas("He")
	require.NoError(t, err)
	assert.Equal(t, 0.1, he.ThermalAccommodation)
}

func TestRegistry_LoadRejectsInvalid(t *testing.T) {
	r := heat.NewRegistry()
	doc := "materials:\n  - name: bad\n    density: -1\n"
	err := r.Load(strings.NewReader(doc))
	require.Error(t, err)
	assert.True(t, errors.Is(err, heat.ErrNotConfigured))
	assert.Empty(t, r.Materials(), "nothing merged on failure")
}

func TestContributions(t *testing.T) {
	m := newSootN2(t)
	m.SetFlags(heat.Flags{}) // contributions ignore flags

	temps := []float64{2500, 3000, 3500}
	diams := []float64{20e-9, 19.9e-9, 19.8e-9}
	evap, cond, rad, err := heat.Contributions(m, temps, diams)
	require.NoError(t, err)

	full := newSootN2(t)
	for i := range temps {
		qe, _ := full.Evaporation(temps[i], diams[i])
		assert.Equal(t, qe, evap[i])
		assert.Equal(t, full.Conduction(temps[i], diams[i]), cond[i])
		assert.Equal(t, full.Radiation(temps[i], diams[i]), rad[i])
	}
	assert.Equal(t, heat.Flags{}, m.Flags(), "caller's model untouched")

	_, _, _, err = heat.Contributions(m, temps, diams[:2])
	assert.ErrorIs(t, err, heat.ErrLengthMismatch)
}

func TestPlanck(t *testing.T) {
	assert.InEpsilon(t, 2.68821996e13, heat.Planck(500e-9, 5800), 1e-6)
	assert.Zero(t, heat.Planck(0, 5800))
	assert.Greater(t, heat.Planck(700e-9, 3000), heat.Planck(700e-9, 2500))
}
