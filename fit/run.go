package fit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/liifit/heat"
	"github.com/katalvlaran/liifit/lm"
	"github.com/katalvlaran/liifit/ode"
	"github.com/katalvlaran/liifit/settings"
	"github.com/katalvlaran/liifit/signal"
)

// Diagnostic records a signal that could not become or stay a fittable
// problem.
type Diagnostic struct {
	Key signal.Key
	Err error
}

func (d Diagnostic) String() string { return d.Key.String() + ": " + d.Err.Error() }

// Run is a batch of problems sharing one configuration.
type Run struct {
	id      uuid.UUID
	created time.Time
	mode    Mode

	modeling settings.ModelingSettings
	params   settings.FitSettings
	numeric  settings.NumericSettings
	layout   layout
	lmOpts   lm.Options
	odeOpts  ode.Options

	opts     Options
	log      zerolog.Logger
	progress *Progress

	mu          sync.Mutex
	problems    []*Problem
	diagnostics []Diagnostic
	cancel      context.CancelFunc
	done        chan struct{}

	active   atomic.Bool
	canceled atomic.Bool
	finished atomic.Int64
}

// NewRun validates the shared configuration and returns an idle run.
func NewRun(mode Mode, modeling settings.ModelingSettings, params settings.FitSettings, numeric settings.NumericSettings, opts ...Option) (*Run, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if err := modeling.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := numeric.Validate(); err != nil {
		return nil, err
	}
	l, err := newLayout(params)
	if err != nil {
		return nil, err
	}
	if _, err = modeling.Build(o.Registry); err != nil {
		return nil, err
	}

	id := uuid.New()
	done := make(chan struct{})
	close(done)
	r := &Run{
		id:       id,
		created:  time.Now().UTC(),
		mode:     mode,
		modeling: modeling.Clone(),
		params:   params.Clone(),
		numeric:  numeric,
		layout:   l,
		lmOpts:   lm.FromNumeric(numeric),
		odeOpts:  numeric.ODEOptions(),
		opts:     o,
		log:      o.Logger.With().Str("run", id.String()).Logger(),
		progress: newProgress(o.Progress),
		done:     done,
	}
	if o.Name != "" {
		r.log = r.log.With().Str("name", o.Name).Logger()
	}

	return r, nil
}

// NewRunFromConfig builds a run from a parsed configuration file.
func NewRunFromConfig(cfg *settings.Config, opts ...Option) (*Run, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	if cfg.Window != nil {
		opts = append([]Option{WithWindow(cfg.Window.Begin, cfg.Window.End)}, opts...)
	}

	return NewRun(mode, cfg.Modeling, cfg.Fit, cfg.Numeric, opts...)
}

// ID returns the run identifier.
func (r *Run) ID() uuid.UUID { return r.id }

// Created returns the creation time (UTC).
func (r *Run) Created() time.Time { return r.created }

// Mode returns the fitted observable.
func (r *Run) Mode() Mode { return r.mode }

// Name returns the run name given by WithName.
func (r *Run) Name() string { return r.opts.Name }

// Params returns the shared starting parameters.
func (r *Run) Params() settings.FitSettings { return r.params.Clone() }

// Numeric returns the shared numeric settings.
func (r *Run) Numeric() settings.NumericSettings { return r.numeric }

// Modeling returns the modeling template.
func (r *Run) Modeling() settings.ModelingSettings { return r.modeling.Clone() }

// Progress returns the run's progress counter.
func (r *Run) Progress() *Progress { return r.progress }

// Active reports whether FitAll is in flight.
func (r *Run) Active() bool { return r.active.Load() }

// Canceled reports whether the last FitAll left any problem canceled or
// failed.
func (r *Run) Canceled() bool { return r.canceled.Load() }

// Finished returns the number of problems that completed in the current or
// last FitAll, whatever their outcome.
func (r *Run) Finished() int64 { return r.finished.Load() }

// Problems returns the problems in insertion order.
func (r *Run) Problems() []*Problem {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*Problem(nil), r.problems...)
}

// Problem returns the problem for key, or nil.
func (r *Run) Problem(key signal.Key) *Problem {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.problems {
		if p.key == key {
			return p
		}
	}

	return nil
}

// Diagnostics returns the recorded diagnostics.
func (r *Run) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Diagnostic(nil), r.diagnostics...)
}

func (r *Run) diagnose(key signal.Key, err error) {
	r.log.Warn().Err(err).Str("signal", key.String()).Msg("signal skipped")
	r.mu.Lock()
	r.diagnostics = append(r.diagnostics, Diagnostic{Key: key, Err: err})
	r.mu.Unlock()
}

// AddProblem adds a measured signal. The run window is applied first. In
// intensity mode the data (and stdev) are scaled so the peak sample is 1.
func (r *Run) AddProblem(key signal.Key, sig *signal.Signal) (*Problem, error) {
	if r.Active() {
		return nil, ErrRunning
	}
	if sig == nil {
		return nil, fmt.Errorf("%w: nil signal", signal.ErrInvalid)
	}
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	if w := r.opts.Window; w != nil {
		var err error
		if sig, err = sig.Window(w.Begin, w.End); err != nil {
			return nil, err
		}
	}

	y := clone(sig.Data)
	stdev := clone(sig.Stdev)
	if r.mode == ModeIntensity {
		var peak float64
		for _, v := range y {
			if v > peak {
				peak = v
			}
		}
		if peak <= 0 {
			return nil, fmt.Errorf("%w: intensity signal has no positive sample", signal.ErrInvalid)
		}
		normalize(y, peak)
		normalize(stdev, peak)
	}

	p := &Problem{
		run:      r,
		key:      key,
		x:        sig.Times(),
		y:        y,
		stdev:    stdev,
		start:    sig.StartTime,
		dt:       sig.Dt,
		modeling: r.modeling.Clone(),
		params:   r.params.Clone(),
	}
	if sig.Bandwidth != nil {
		b := *sig.Bandwidth
		p.bandwidth = &b
	}
	r.mu.Lock()
	r.problems = append(r.problems, p)
	r.mu.Unlock()

	return p, nil
}

// AddFromSource resolves keys through src and adds one problem per signal.
// Missing or invalid signals become diagnostics; only cancellation and
// ErrRunning abort the call.
func (r *Run) AddFromSource(ctx context.Context, src signal.Source, keys []signal.Key) error {
	for _, key := range keys {
		sig, err := src.Signal(ctx, key, nil)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			r.diagnose(key, err)

			continue
		}
		if _, err = r.AddProblem(key, sig); err != nil {
			if errors.Is(err, ErrRunning) {
				return err
			}
			r.diagnose(key, err)
		}
	}

	return nil
}

// task is a prepared problem.
type task struct {
	p     *Problem
	model heat.Model
}

// FitAll starts fitting every problem and returns without waiting.
//
// Implementation:
//   - Stage 1: claim the run (one FitAll at a time), reset every problem and
//     build its own heat model from its modeling settings. Problems whose
//     model cannot be built are marked Skipped and reported in Diagnostics.
//   - Stage 2: open a cancellation scope under ctx, reset the counters and
//     size the progress total from the per-problem budgets.
//   - Stage 3: in the background, fit the problems on an errgroup limited to
//     Numeric.Workers (unbounded when 0). Each problem records its own
//     status, stop reason, history and error; none aborts its siblings.
//   - Stage 4: report the run to the Recorder, call OnRunDone, release the
//     run and close Done.
//
// Errors:
//   - ErrRunning when a FitAll is already in progress.
//   - ErrNoProblems when no problem could be prepared.
//
// Use Wait or Done to observe completion and Cancel to stop early.
func (r *Run) FitAll(ctx context.Context) error {
	if !r.active.CompareAndSwap(false, true) {
		return ErrRunning
	}

	// 1) Prepare each problem with its own model instance.
	problems := r.Problems()
	tasks := make([]task, 0, len(problems))
	var total int64
	for _, p := range problems {
		p.reset()
		model, err := p.Modeling().Build(r.opts.Registry)
		if err != nil {
			p.setStatus(StatusSkipped)
			r.diagnose(p.key, err)

			continue
		}
		tasks = append(tasks, task{p: p, model: model})
		total += budget(r.numeric.MaxIterations, p.Params().EnabledCount())
	}
	if len(tasks) == 0 {
		r.active.Store(false)

		return ErrNoProblems
	}

	// 2) Fresh cancellation scope and counters.
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.mu.Lock()
	r.cancel = cancel
	r.done = done
	r.mu.Unlock()
	r.canceled.Store(false)
	r.finished.Store(0)
	r.progress.reset(total)

	r.log.Info().
		Int("problems", len(tasks)).
		Str("mode", string(r.mode)).
		Int("workers", r.numeric.Workers).
		Int64("budget", total).
		Msg("fit started")

	// 3) Launch on a bounded group; the caller is not blocked.
	go func() {
		started := time.Now()
		var g errgroup.Group
		if r.numeric.Workers > 0 {
			g.SetLimit(r.numeric.Workers)
		}
		for _, t := range tasks {
			t := t
			g.Go(func() error {
				r.runProblem(runCtx, t)

				return nil
			})
		}
		_ = g.Wait()
		cancel()

		canceled := r.canceled.Load()
		r.opts.Recorder.RunFinished(canceled)
		r.log.Info().
			Int64("finished", r.finished.Load()).
			Bool("canceled", canceled).
			Dur("elapsed", time.Since(started)).
			Msg("fit finished")
		if r.opts.OnRunDone != nil {
			r.opts.OnRunDone(r)
		}
		r.active.Store(false)
		close(done)
	}()

	return nil
}

// Cancel stops the active FitAll. Problems stop at their next integration
// interval or model evaluation and keep the history recorded so far.
func (r *Run) Cancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil && r.Active() {
		r.canceled.Store(true)
		cancel()
	}
}

// Done returns a channel closed when the current FitAll has finished.
// An idle run returns a closed channel.
func (r *Run) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.done
}

// Wait blocks until the current FitAll has finished. It must not be called
// from an OnRunDone callback.
func (r *Run) Wait() { <-r.Done() }

// runProblem fits one problem and publishes its outcome.
func (r *Run) runProblem(ctx context.Context, t task) {
	p := t.p
	started := time.Now()
	rec := r.opts.Recorder
	log := r.log.With().Str("signal", p.key.String()).Logger()

	p.setStatus(StatusRunning)
	rec.ProblemStarted(string(r.mode))

	params := p.Params()
	modeling := p.Modeling()
	k := params.EnabledCount()
	tr := &tracker{p: r.progress, budget: budget(r.numeric.MaxIterations, k)}
	defer tr.close()

	trc := &tracer{
		model:    t.model,
		modeling: modeling,
		layout:   r.layout,
		opts:     r.odeOpts,
		n:        len(p.y),
		dt:       p.dt,
		start:    p.start,
	}
	obs := &lm.Observer{
		OnIteration: func(res lm.IterationResult) {
			p.appendHistory(res)
			tr.step(int64(k + 1))
			rec.Iteration(res.ChiSquare())
			log.Debug().Float64("chi2", res.ChiSquare()).Float64("lambda", res.Lambda()).Msg("iteration")
		},
		OnEvaluate: rec.Evaluation,
	}
	opts := r.lmOpts
	opts.Logger = log

	res, err := lm.Solve(ctx, lm.Problem{
		X:      p.x,
		Y:      p.y,
		Stdev:  p.stdev,
		Params: params.Params,
		Model:  trc.modelFunc(r.mode, p.wavelength(modeling)),
	}, opts, obs)

	// Final model trace at the best parameters.
	var trace *signal.Signal
	if err == nil {
		trace, err = trc.trace(ctx, res.Params)
		if err != nil && errors.Is(err, ode.ErrCanceled) {
			err = fmt.Errorf("%w: %w", lm.ErrCanceled, err)
		}
		tr.step(overheadSteps)
	}

	status := StatusDone
	switch {
	case errors.Is(err, lm.ErrCanceled):
		status = StatusCanceled
	case err != nil:
		status = StatusFailed
	}

	p.mu.Lock()
	p.status = status
	p.reason = res.Reason
	p.err = err
	if status == StatusDone {
		p.trace = trace
		p.fitted = clone(res.Prediction)
	}
	p.mu.Unlock()

	if status != StatusDone {
		r.canceled.Store(true)
	}
	elapsed := time.Since(started)
	rec.ProblemFinished(status.String(), elapsed.Seconds())
	r.finished.Add(1)

	ev := log.Info()
	if status == StatusFailed {
		ev = log.Warn().Err(err)
	}
	ev.Str("status", status.String()).
		Str("reason", res.Reason.String()).
		Int("iterations", len(res.History)).
		Int("evaluations", res.Evaluations).
		Dur("elapsed", elapsed).
		Msg("problem finished")

	if r.opts.OnProblemDone != nil {
		r.opts.OnProblemDone(p)
	}
}
