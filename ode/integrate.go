package ode

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/liifit/heat"
	"github.com/katalvlaran/liifit/signal"
)

// Stats reports integration effort.
type Stats struct {
	Steps       int // accepted internal steps
	Rejected    int // rejected adaptive steps
	Evaluations int // derivative evaluations
	Truncated   int // first held sample index; 0 when the trace is complete
}

// state is (T, d).
type state [2]float64

func (y state) valid() bool {
	return y[0] > 0 && y[1] > 0 && !math.IsInf(y[0], 0) && !math.IsInf(y[1], 0)
}

// integrator carries per-call scratch space.
type integrator struct {
	model heat.Model
	tab   *tableau
	k     []state
	stats Stats
	opts  Options
	scale state // magnitude reference for AbsTol
}

func (in *integrator) deriv(y state) state {
	in.stats.Evaluations++
	dT, dd := in.model.Derivative(y[0], y[1])

	return state{dT, dd}
}

// rkStep advances y by h with the integrator's tableau and returns the new
// state and, for embedded pairs, the error estimate.
func (in *integrator) rkStep(y state, h float64) (state, state) {
	t := in.tab
	var i, j int
	var yi state
	for i = range t.a {
		yi = y
		for j = 0; j < i; j++ {
			if t.a[i][j] == 0 {
				continue
			}
			yi[0] += h * t.a[i][j] * in.k[j][0]
			yi[1] += h * t.a[i][j] * in.k[j][1]
		}
		in.k[i] = in.deriv(yi)
	}

	var next, est state
	next = y
	for i = range t.b {
		next[0] += h * t.b[i] * in.k[i][0]
		next[1] += h * t.b[i] * in.k[i][1]
	}
	for i = range t.e {
		est[0] += h * t.e[i] * in.k[i][0]
		est[1] += h * t.e[i] * in.k[i][1]
	}

	return next, est
}

// fixedStep performs one Euler or tableau step.
func (in *integrator) fixedStep(y state, h float64) state {
	if in.tab == nil {
		d := in.deriv(y)

		return state{y[0] + h*d[0], y[1] + h*d[1]}
	}
	next, _ := in.rkStep(y, h)

	return next
}

// advanceFixed integrates one output interval; ok is false when a
// non-physical state was produced (y is then the last valid state).
func (in *integrator) advanceFixed(y state, dt float64) (state, bool) {
	h := dt / float64(in.opts.StepSizeFactor)
	for s := 0; s < in.opts.StepSizeFactor; s++ {
		next := in.fixedStep(y, h)
		if !next.valid() {
			return y, false
		}
		y = next
		in.stats.Steps++
	}

	return y, true
}

// errNorm is the max-norm of the error estimate scaled by the tolerances.
func (in *integrator) errNorm(y, next, est state) float64 {
	var worst float64
	for i := 0; i < 2; i++ {
		sc := in.opts.AbsTol*in.scale[i] + in.opts.RelTol*math.Max(math.Abs(y[i]), math.Abs(next[i]))
		if sc == 0 {
			continue
		}
		e := math.Abs(est[i]) / sc
		if math.IsNaN(e) {
			return math.Inf(1)
		}
		if e > worst {
			worst = e
		}
	}

	return worst
}

// advanceAdaptive integrates one output interval with step control. h is
// carried across intervals. The final step is shortened so the interval
// ends exactly at dt.
func (in *integrator) advanceAdaptive(y state, dt float64, h *float64) (state, bool, error) {
	const (
		safety   = 0.9
		maxGrow  = 5.0
		minScale = 0.1
	)
	hMin := dt * 1e-12
	order := float64(in.tab.order)
	var t float64
	attempts := 0
	for t < dt {
		if attempts >= in.opts.MaxSubsteps {
			return y, true, fmt.Errorf("%w: %d", ErrStepLimit, attempts)
		}
		attempts++

		last := false
		hh := *h
		if t+hh >= dt {
			hh = dt - t
			last = true
		}
		next, est := in.rkStep(y, hh)
		var e float64
		if next.valid() {
			e = in.errNorm(y, next, est)
		} else {
			e = math.Inf(1)
		}

		if e <= 1 {
			y = next
			in.stats.Steps++
			if last {
				t = dt
			} else {
				t += hh
			}
			grow := maxGrow
			if e > 0 {
				grow = math.Min(maxGrow, safety*math.Pow(e, -1/(order+1)))
			}
			// keep the carried step at its pre-shortening size on the last step
			if !last || hh*grow > *h {
				*h = hh * grow
			}
			continue
		}

		in.stats.Rejected++
		shrink := minScale
		if !math.IsInf(e, 1) {
			shrink = math.Max(minScale, safety*math.Pow(e, -1/order))
		}
		*h = hh * shrink
		if *h < hMin {
			return y, false, nil
		}
	}

	return y, true, nil
}

// Integrate produces n samples of (T, d) spaced dt apart from start.
// Sample 0 is the initial state (T0 in K, d0 in m).
//
// Implementation:
//   - Stage 1: validate model, options, grid (n > 0, finite dt > 0) and the
//     initial state.
//   - Stage 2: for every output interval, poll ctx, then advance by dt with
//     StepSizeFactor fixed sub-steps, or with the adaptive controller
//     starting from dt/StepSizeFactor.
//   - Stage 3: on a non-physical state, hold the last valid state for the
//     remaining samples and mark the signal Truncated.
//
// Returns:
//   - *signal.Signal with Data (K) and Diameter (m), both of length n, or
//     the prefix produced before a cancellation or sub-step failure.
//   - Stats: accepted and rejected steps, derivative evaluations and the
//     first held sample.
//
// Errors:
//   - ErrBadInput (nil model, empty grid, invalid initial state).
//   - ErrBadOptions (from Options.Validate).
//   - ErrCanceled wrapping the context error; the partial signal is returned.
//   - ErrStepLimit when the adaptive controller exceeds MaxSubsteps.
//
// Complexity:
//   - Time O(n · StepSizeFactor · stages) model evaluations for fixed
//     schemes; adaptive cost depends on the error tolerance.
//   - Space O(n).
func Integrate(ctx context.Context, model heat.Model, T0, d0 float64, n int, dt, start float64, opts Options) (*signal.Signal, Stats, error) {
	if model == nil {
		return nil, Stats{}, fmt.Errorf("%w: nil model", ErrBadInput)
	}
	if err := opts.Validate(); err != nil {
		return nil, Stats{}, err
	}
	if n <= 0 || !(dt > 0) || math.IsInf(dt, 0) {
		return nil, Stats{}, fmt.Errorf("%w: n=%d dt=%g", ErrBadInput, n, dt)
	}
	y := state{T0, d0}
	if !y.valid() {
		return nil, Stats{}, fmt.Errorf("%w: T0=%g d0=%g", ErrBadInput, T0, d0)
	}

	in := &integrator{model: model, tab: tableauFor(opts.Scheme), opts: opts, scale: state{math.Abs(T0), math.Abs(d0)}}
	if in.tab != nil {
		in.k = make([]state, len(in.tab.a))
	}
	sig := &signal.Signal{StartTime: start, Dt: dt, Data: make([]float64, n), Diameter: make([]float64, n)}
	sig.Data[0], sig.Diameter[0] = T0, d0

	h := dt / float64(opts.StepSizeFactor)
	var ok bool
	var err error
	for i := 1; i < n; i++ {
		if cerr := ctx.Err(); cerr != nil {
			sig.Data, sig.Diameter = sig.Data[:i], sig.Diameter[:i]

			return sig, in.stats, fmt.Errorf("%w: %w", ErrCanceled, cerr)
		}
		if opts.Scheme.Adaptive() {
			y, ok, err = in.advanceAdaptive(y, dt, &h)
			if err != nil {
				sig.Data, sig.Diameter = sig.Data[:i], sig.Diameter[:i]

				return sig, in.stats, err
			}
		} else {
			y, ok = in.advanceFixed(y, dt)
		}
		if !ok {
			for j := i; j < n; j++ {
				sig.Data[j], sig.Diameter[j] = y[0], y[1]
			}
			sig.Truncated = true
			in.stats.Truncated = i

			return sig, in.stats, nil
		}
		sig.Data[i], sig.Diameter[i] = y[0], y[1]
	}

	return sig, in.stats, nil
}
