package fit

import (
	"context"
	"fmt"

	"github.com/katalvlaran/liifit/heat"
	"github.com/katalvlaran/liifit/lm"
	"github.com/katalvlaran/liifit/ode"
	"github.com/katalvlaran/liifit/settings"
	"github.com/katalvlaran/liifit/signal"
)

// nm converts the diameter parameter unit to the model's metres.
const nm = 1e-9

// layout locates the physical parameters inside a parameter vector.
type layout struct {
	diameter, gasTemp, peakTemp int // -1 when absent
}

func newLayout(fs settings.FitSettings) (layout, error) {
	l := layout{
		diameter: fs.ByID(settings.Diameter),
		gasTemp:  fs.ByID(settings.GasTemperature),
		peakTemp: fs.ByID(settings.PeakTemperature),
	}
	if l.diameter < 0 {
		return l, fmt.Errorf("%w: %s", ErrMissingParameter, settings.Diameter)
	}
	if l.peakTemp < 0 {
		return l, fmt.Errorf("%w: %s", ErrMissingParameter, settings.PeakTemperature)
	}

	return l, nil
}

// tracer integrates the heat model for one parameter vector on a fixed grid.
type tracer struct {
	model    heat.Model
	modeling settings.ModelingSettings
	layout   layout
	opts     ode.Options
	n        int
	dt       float64
	start    float64
}

// trace returns the physical (T, d) trace for p.
func (t *tracer) trace(ctx context.Context, p []float64) (*signal.Signal, error) {
	gasT := t.modeling.GasTemperature
	if t.layout.gasTemp >= 0 {
		gasT = p[t.layout.gasTemp]
	}
	t.model.SetProcessConditions(t.modeling.Pressure, gasT)
	sig, _, err := ode.Integrate(ctx, t.model, p[t.layout.peakTemp], p[t.layout.diameter]*nm, t.n, t.dt, t.start, t.opts)
	if err != nil {
		return nil, err
	}

	return sig, nil
}

// observable maps a physical trace onto the fitted quantity.
func observable(mode Mode, sig *signal.Signal, wavelength float64) []float64 {
	if mode != ModeIntensity {
		return append([]float64(nil), sig.Data...)
	}
	out := make([]float64, sig.Len())
	var peak float64
	for i := range out {
		d := sig.Diameter[i]
		out[i] = d * d * d * heat.Planck(wavelength, sig.Data[i])
		if out[i] > peak {
			peak = out[i]
		}
	}
	normalize(out, peak)

	return out
}

func normalize(v []float64, peak float64) {
	if peak <= 0 {
		return
	}
	for i := range v {
		v[i] /= peak
	}
}

// modelFunc adapts the tracer to the solver.
func (t *tracer) modelFunc(mode Mode, wavelength float64) lm.ModelFunc {
	return func(ctx context.Context, p []float64) ([]float64, error) {
		sig, err := t.trace(ctx, p)
		if err != nil {
			return nil, err
		}

		return observable(mode, sig, wavelength), nil
	}
}
