package fit

import (
	"github.com/rs/zerolog"

	"github.com/katalvlaran/liifit/heat"
	"github.com/katalvlaran/liifit/signal"
)

// Recorder receives run metrics. The metrics package provides a Prometheus
// implementation.
type Recorder interface {
	ProblemStarted(mode string)
	ProblemFinished(status string, seconds float64)
	Iteration(chi2 float64)
	Evaluation()
	RunFinished(canceled bool)
}

type nopRecorder struct{}

func (nopRecorder) ProblemStarted(string)           {}
func (nopRecorder) ProblemFinished(string, float64) {}
func (nopRecorder) Iteration(float64)               {}
func (nopRecorder) Evaluation()                     {}
func (nopRecorder) RunFinished(bool)                {}

// ProgressFunc receives (expected total steps, steps done).
type ProgressFunc func(total, done int64)

// Options holds Run configuration beyond the settings values.
type Options struct {
	Name          string
	Logger        zerolog.Logger
	Recorder      Recorder
	Registry      *heat.Registry
	Window        *signal.Window
	Progress      ProgressFunc
	OnProblemDone func(*Problem)
	OnRunDone     func(*Run)
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns a silent configuration over heat.DefaultRegistry.
func DefaultOptions() Options {
	return Options{
		Logger:   zerolog.Nop(),
		Recorder: nopRecorder{},
		Registry: heat.DefaultRegistry(),
	}
}

// WithName sets the run name (stored as the document group).
func WithName(name string) Option {
	return func(o *Options) { o.Name = name }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithRecorder sets the metrics recorder. Panics on nil.
func WithRecorder(r Recorder) Option {
	if r == nil {
		panic("fit: WithRecorder(nil)")
	}

	return func(o *Options) { o.Recorder = r }
}

// WithRegistry sets the material/gas registry. Panics on nil.
func WithRegistry(r *heat.Registry) Option {
	if r == nil {
		panic("fit: WithRegistry(nil)")
	}

	return func(o *Options) { o.Registry = r }
}

// WithWindow restricts every problem to samples in [begin, end).
// Panics when end ≤ begin.
func WithWindow(begin, end float64) Option {
	if !(end > begin) {
		panic("fit: WithWindow requires end > begin")
	}

	return func(o *Options) { o.Window = &signal.Window{Begin: begin, End: end} }
}

// WithProgress sets the progress sink.
func WithProgress(f ProgressFunc) Option {
	return func(o *Options) { o.Progress = f }
}

// WithProblemDone registers a per-problem completion callback. It runs on
// the problem's worker goroutine.
func WithProblemDone(f func(*Problem)) Option {
	return func(o *Options) { o.OnProblemDone = f }
}

// WithRunDone registers the run completion callback.
func WithRunDone(f func(*Run)) Option {
	return func(o *Options) { o.OnRunDone = f }
}
