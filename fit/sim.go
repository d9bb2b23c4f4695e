package fit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/liifit/heat"
	"github.com/katalvlaran/liifit/ode"
	"github.com/katalvlaran/liifit/settings"
	"github.com/katalvlaran/liifit/signal"
)

// SimRun is a forward simulation: one model trace from fixed parameters,
// no fitting.
type SimRun struct {
	ID       uuid.UUID
	Created  time.Time
	Mode     Mode
	Modeling settings.ModelingSettings
	Numeric  settings.NumericSettings

	Diameter        float64 // nm
	PeakTemperature float64 // K
	GasTemperature  float64 // K

	Samples int
	Dt      float64 // s
	Start   float64 // s
}

// SimResult is the output of SimRun.Run.
type SimResult struct {
	Trace      *signal.Signal    // temperature (K) and diameter (m)
	Observable []float64         // what a fit in the same mode would compare against
	Bandwidth  *signal.Bandwidth // detection band of Observable in intensity mode
	Stats      ode.Stats
	Evaporation,
	Conduction,
	Radiation []float64 // W
}

// NewSimRun takes the starting values of cfg.Fit as the simulated truth.
func NewSimRun(cfg *settings.Config) (*SimRun, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	l, err := newLayout(cfg.Fit)
	if err != nil {
		return nil, err
	}
	s := &SimRun{
		ID:              uuid.New(),
		Created:         time.Now().UTC(),
		Mode:            mode,
		Modeling:        cfg.Modeling.Clone(),
		Numeric:         cfg.Numeric,
		Diameter:        cfg.Fit.Params[l.diameter].Value,
		PeakTemperature: cfg.Fit.Params[l.peakTemp].Value,
		GasTemperature:  cfg.Modeling.GasTemperature,
		Samples:         cfg.Sim.Samples,
		Dt:              cfg.Sim.Dt,
		Start:           cfg.Sim.Start,
	}
	if l.gasTemp >= 0 {
		s.GasTemperature = cfg.Fit.Params[l.gasTemp].Value
	}

	return s, nil
}

// Run integrates the model and evaluates the loss channels along the trace.
// A canceled run returns the partial trace with the error.
func (s *SimRun) Run(ctx context.Context, reg *heat.Registry) (*SimResult, error) {
	if s.Samples <= 0 || !(s.Dt > 0) {
		return nil, fmt.Errorf("%w: samples=%d dt=%g", ode.ErrBadInput, s.Samples, s.Dt)
	}
	m := s.Modeling.Clone()
	m.GasTemperature = s.GasTemperature
	model, err := m.Build(reg)
	if err != nil {
		return nil, err
	}
	trace, stats, err := ode.Integrate(ctx, model, s.PeakTemperature, s.Diameter*nm, s.Samples, s.Dt, s.Start, s.Numeric.ODEOptions())
	if err != nil {
		if trace != nil {
			return &SimResult{Trace: trace, Stats: stats}, err
		}

		return nil, err
	}
	res := &SimResult{
		Trace:      trace,
		Observable: observable(s.Mode, trace, m.Wavelength),
		Stats:      stats,
	}
	if s.Mode == ModeIntensity {
		res.Bandwidth = &signal.Bandwidth{Center: m.Wavelength}
	}
	res.Evaporation, res.Conduction, res.Radiation, err = heat.Contributions(model, trace.Data, trace.Diameter)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Measurement returns the observable as a signal ready for Run.AddProblem.
// In intensity mode the signal carries the simulated detection band.
func (r *SimResult) Measurement() *signal.Signal {
	sig := &signal.Signal{
		StartTime: r.Trace.StartTime,
		Dt:        r.Trace.Dt,
		Data:      clone(r.Observable),
	}
	if r.Bandwidth != nil {
		b := *r.Bandwidth
		sig.Bandwidth = &b
	}

	return sig
}
