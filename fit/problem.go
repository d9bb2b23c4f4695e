package fit

import (
	"fmt"
	"sync"

	"github.com/katalvlaran/liifit/heat"
	"github.com/katalvlaran/liifit/lm"
	"github.com/katalvlaran/liifit/settings"
	"github.com/katalvlaran/liifit/signal"
)

// Status is a problem's lifecycle state.
type Status int32

const (
	StatusPending Status = iota
	StatusRunning
	StatusDone
	StatusCanceled
	StatusFailed
	StatusSkipped
)

var statusNames = [...]string{"pending", "running", "done", "canceled", "failed", "skipped"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int32(s))
	}

	return statusNames[s]
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, error) {
	for i, v := range statusNames {
		if v == name {
			return Status(i), nil
		}
	}

	return 0, fmt.Errorf("fit: unknown status %q", name)
}

// Problem is one signal's fit. Its input is fixed at creation; the solver
// appends to its history while the owning run is active.
type Problem struct {
	run *Run
	key signal.Key

	x, y, stdev []float64
	start, dt   float64
	bandwidth   *signal.Bandwidth

	mu       sync.Mutex
	modeling settings.ModelingSettings
	params   settings.FitSettings
	status   Status
	history  []lm.IterationResult
	reason   lm.StopReason
	err      error
	trace    *signal.Signal // physical (T, d) trace at the best parameters
	fitted   []float64      // observable at the best parameters
}

// Key returns the measured signal's identity.
func (p *Problem) Key() signal.Key { return p.key }

// Run returns the owning run.
func (p *Problem) Run() *Run { return p.run }

// Input returns copies of the observed series.
func (p *Problem) Input() (x, y, stdev []float64) {
	return clone(p.x), clone(p.y), clone(p.stdev)
}

// Grid returns the sampling grid of the observed series: the time of the
// first sample and the step.
func (p *Problem) Grid() (start, dt float64) { return p.start, p.dt }

// Bandwidth returns the detection band, or nil.
func (p *Problem) Bandwidth() *signal.Bandwidth { return p.bandwidth }

// wavelength is the band center the intensity observable is evaluated at,
// or the modeling wavelength when the signal carries no band.
func (p *Problem) wavelength(m settings.ModelingSettings) float64 {
	if p.bandwidth != nil && p.bandwidth.Center > 0 {
		return p.bandwidth.Center
	}

	return m.Wavelength
}

// Modeling returns the problem's modeling settings.
func (p *Problem) Modeling() settings.ModelingSettings {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.modeling.Clone()
}

// SetModeling overrides the modeling settings cloned from the run template
// (per-problem gas temperature, pressure, ...). Only allowed while the run
// is idle.
//
// When the parameter set carries a gas-temperature parameter, its start
// value follows m.GasTemperature. A value outside the parameter's range is
// clamped, stored, and reported as settings.ErrOutOfRange.
func (p *Problem) SetModeling(m settings.ModelingSettings) error {
	if p.run.Active() {
		return ErrRunning
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modeling = m.Clone()
	if i := p.params.ByID(settings.GasTemperature); i >= 0 {
		return p.params.Params[i].SetValue(m.GasTemperature)
	}

	return nil
}

// SetStart sets the initial value of one parameter for this problem only.
func (p *Problem) SetStart(id settings.ParamID, v float64) error {
	if p.run.Active() {
		return ErrRunning
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.params.ByID(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrMissingParameter, id)
	}

	return p.params.Params[i].SetValue(v)
}

// Params returns the problem's starting parameter set.
func (p *Problem) Params() settings.FitSettings {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.params.Clone()
}

// Status returns the current state.
func (p *Problem) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status
}

// Err returns the error that ended the problem early, if any.
func (p *Problem) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// StopReason returns why the solver stopped.
func (p *Problem) StopReason() lm.StopReason {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.reason
}

// History returns copies of the recorded iteration results.
func (p *Problem) History() []lm.IterationResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]lm.IterationResult, len(p.history))
	for i, r := range p.history {
		out[i] = r.Clone()
	}

	return out
}

// Best returns the last recorded iteration, or nil.
func (p *Problem) Best() lm.IterationResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.history) == 0 {
		return nil
	}

	return p.history[len(p.history)-1].Clone()
}

// ModelTrace returns the physical (temperature K, diameter m) trace at the
// best parameters. Nil until the problem finished normally.
func (p *Problem) ModelTrace() *signal.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trace == nil {
		return nil
	}

	return p.trace.Clone()
}

// Fitted returns the fitted observable at the best parameters.
func (p *Problem) Fitted() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return clone(p.fitted)
}

// Contributions returns the evaporation, conduction and radiation heat-loss
// curves (W) along the model trace.
func (p *Problem) Contributions() (evap, cond, rad []float64, err error) {
	tr := p.ModelTrace()
	if tr == nil {
		return nil, nil, nil, ErrNoTrace
	}
	m := p.Modeling()
	if best := p.Best(); best != nil {
		if l, lerr := newLayout(p.Params()); lerr == nil && l.gasTemp >= 0 {
			m.GasTemperature = best.Value(l.gasTemp)
		}
	}
	model, err := m.Build(p.run.opts.Registry)
	if err != nil {
		return nil, nil, nil, err
	}

	return heat.Contributions(model, tr.Data, tr.Diameter)
}

func (p *Problem) setStatus(s Status) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

func (p *Problem) appendHistory(r lm.IterationResult) {
	p.mu.Lock()
	p.history = append(p.history, r)
	p.mu.Unlock()
}

// reset clears results ahead of a new FitAll.
func (p *Problem) reset() {
	p.mu.Lock()
	p.status = StatusPending
	p.history = nil
	p.err = nil
	p.trace = nil
	p.fitted = nil
	p.reason = 0
	p.mu.Unlock()
}

func clone(v []float64) []float64 {
	if v == nil {
		return nil
	}

	return append([]float64(nil), v...)
}
