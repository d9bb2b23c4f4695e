package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/liifit/heat"
	"github.com/katalvlaran/liifit/ode"
	"github.com/katalvlaran/liifit/settings"
)

func TestDefaultNumeric(t *testing.T) {
	n := settings.DefaultNumeric()
	require.NoError(t, n.Validate())
	assert.Equal(t, 50, n.MaxIterations)
	assert.Equal(t, 2.0, n.LambdaUp)
	assert.Equal(t, 0.5, n.LambdaDown)
	assert.Equal(t, 1.0, n.LambdaEscalation)
	assert.Equal(t, 1e-6, n.Tolerance)

	o := n.ODEOptions()
	assert.Equal(t, ode.RK4, o.Scheme)
	assert.Equal(t, 4, o.StepSizeFactor)
}

func TestNumeric_Validate(t *testing.T) {
	n := settings.DefaultNumeric()
	n.StepSizeFactor = 6
	assert.ErrorIs(t, n.Validate(), settings.ErrInvalid)

	n = settings.DefaultNumeric()
	n.Scheme = "leapfrog"
	assert.ErrorIs(t, n.Validate(), settings.ErrInvalid)

	n = settings.DefaultNumeric()
	n.LambdaDown = 1.5
	assert.ErrorIs(t, n.Validate(), settings.ErrInvalid)
}

func TestModeling_BuildAndClone(t *testing.T) {
	m := settings.DefaultModeling()
	m.Disable = []string{settings.ChannelRadiation}
	require.NoError(t, m.Validate())

	model, err := m.Build(heat.DefaultRegistry())
	require.NoError(t, err)
	assert.Equal(t, heat.Flags{Evaporation: true, Conduction: true}, model.Flags())
	p, tg := model.ProcessConditions()
	assert.Equal(t, heat.AtmosphericPa, p)
	assert.Equal(t, 1500.0, tg)

	c := m.Clone()
	c.Disable[0] = settings.ChannelConduction
	c.GasTemperature = 1800
	assert.Equal(t, settings.ChannelRadiation, m.Disable[0])
	assert.Equal(t, 1500.0, m.GasTemperature)

	m.Gas = "He"
	_, err = m.Build(heat.DefaultRegistry())
	assert.ErrorIs(t, err, heat.ErrUnknownGas)

	m = settings.DefaultModeling()
	m.Disable = []string{"convection"}
	assert.ErrorIs(t, m.Validate(), settings.ErrInvalid)
}

const runYAML = `
logging:
  level: debug
  format: json
mode: intensity
modeling:
  gas: Ar
  pressure: 200000
  disable: [evaporation]
numeric:
  max_iterations: 20
  scheme: fehlberg78-adaptive
  workers: 2
window:
  begin: 0
  end: 1.0e-6
fit:
  params:
    - id: 0
      name: diameter
      unit: nm
      value: 25
      min_allowed: 1
      max_allowed: 100
      lower: 5
      upper: 60
      max_delta: 5
      enabled: true
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(runYAML), 0o644))

	cfg, err := settings.Load(path)
	require.NoError(t, err)

	assert.Equal(t, settings.ModeIntensity, cfg.Mode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output, "default applied")
	assert.Equal(t, "Ar", cfg.Modeling.Gas)
	assert.Equal(t, "soot", cfg.Modeling.Material, "default applied")
	assert.Equal(t, 200000.0, cfg.Modeling.Pressure)
	assert.False(t, cfg.Modeling.Flags().Evaporation)
	assert.Equal(t, 20, cfg.Numeric.MaxIterations)
	assert.Equal(t, 0.5, cfg.Numeric.LambdaDown, "default applied")
	assert.Equal(t, 2, cfg.Numeric.Workers)
	require.Len(t, cfg.Fit.Params, 1)
	assert.Equal(t, 25.0, cfg.Fit.Params[0].Value)
	require.NotNil(t, cfg.Window)
	assert.Equal(t, 1e-6, cfg.Window.End)
	assert.Equal(t, 200, cfg.Sim.Samples)
	assert.Equal(t, "liifit", cfg.Metrics.Namespace)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := settings.Parse([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, settings.ModeTemperature, cfg.Mode)
	assert.Equal(t, settings.DefaultFitSettings(), cfg.Fit)
	assert.Equal(t, settings.DefaultNumeric(), cfg.Numeric)
	assert.Equal(t, heat.ModelFreeMolecular, cfg.Modeling.Model)
	assert.Nil(t, cfg.Window)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"mode":    "mode: size",
		"factor":  "numeric: {step_size_factor: 3}",
		"window":  "window: {begin: 2, end: 1}",
		"bounds":  "fit: {params: [{name: d, value: 5, min_allowed: 1, max_allowed: 10, lower: 8, upper: 9, max_delta: 1}]}",
		"yaml":    "mode: [",
		"logging": "logging: {format: xml}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := settings.Parse([]byte(doc))
			assert.ErrorIs(t, err, settings.ErrInvalid)
		})
	}
}
