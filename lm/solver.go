// SPDX-License-Identifier: MIT

package lm

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/liifit/matrix"
	"github.com/katalvlaran/liifit/settings"
)

// ModelFunc predicts the observed series for a full parameter vector
// (disabled parameters included, in Problem.Params order).
type ModelFunc func(ctx context.Context, p []float64) ([]float64, error)

// Problem is one least-squares fit.
type Problem struct {
	X      []float64 // abscissa, informational; nil or len(Y)
	Y      []float64 // observations
	Stdev  []float64 // optional per-sample σ; nil means unit weights
	Params []settings.FitParameter
	Model  ModelFunc
}

// Trial describes one attempted step.
type Trial struct {
	Iteration int
	Lambda    float64 // damping used to compute the step
	ChiSquare float64 // χ² at the trial point
	Accepted  bool
}

// Observer receives solver events. Nil fields are skipped. Callbacks run on
// the solver's goroutine.
type Observer struct {
	OnIteration func(IterationResult)
	OnTrial     func(Trial)
	OnEvaluate  func() // once per model evaluation
}

const (
	opSolve    = "Solve"
	opStep     = "step"
	opSigma    = "uncertainty"
	opEvaluate = "evaluate"
)

// solver carries one Solve call's state.
type solver struct {
	prob    Problem
	opts    Options
	obs     *Observer
	w       []float64 // weights, nil for unit
	free    []int     // indices of enabled parameters
	n       int
	p       []float64
	y       []float64 // prediction at p
	chi2    float64
	lambda  float64
	evals   int
	reject  int
	history []IterationResult
}

func (s *solver) evaluate(ctx context.Context, p []float64) ([]float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	s.evals++
	if s.obs != nil && s.obs.OnEvaluate != nil {
		s.obs.OnEvaluate()
	}
	y, err := s.prob.Model(ctx, p)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, fmt.Errorf("%w: %w", ErrCanceled, err)
		}

		return nil, 0, fmt.Errorf("%s: %w: %w", opEvaluate, ErrModel, err)
	}
	if len(y) != s.n {
		return nil, 0, fmt.Errorf("%s: %w: prediction length %d, want %d", opEvaluate, ErrModel, len(y), s.n)
	}
	var chi2, r float64
	for i := range y {
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return nil, 0, fmt.Errorf("%s: %w: non-finite prediction at %d", opEvaluate, ErrModel, i)
		}
		r = s.prob.Y[i] - y[i]
		if s.w != nil {
			chi2 += s.w[i] * r * r
		} else {
			chi2 += r * r
		}
	}

	return y, chi2, nil
}

// jacobian returns the n×k finite-difference Jacobian dy/dp over the free
// parameters at (p, y).
//
// The step h = RelStep·|p| (RelStep when p = 0) is capped at half the fit
// range, so at least one of p±h stays inside [Lower, Upper]. Central
// differences are used when both do; otherwise the difference points into
// the range. Every shifted point is clamped, and only the column's own
// parameter moves.
//
// Cost: k model evaluations, up to 2k with Options.Central.
func (s *solver) jacobian(ctx context.Context, p, y []float64) (*matrix.Dense, error) {
	j, err := matrix.NewDense(s.n, len(s.free))
	if err != nil {
		return nil, err
	}
	shifted := append([]float64(nil), p...)
	col := make([]float64, s.n)
	var c, i int
	for c = range s.free {
		idx := s.free[c]
		par := &s.prob.Params[idx]
		h := s.opts.RelStep * math.Abs(p[idx])
		if h == 0 {
			h = s.opts.RelStep
		}
		if half := (par.Upper - par.Lower) / 2; h > half {
			h = half
		}

		fwd, back := p[idx]+h, p[idx]-h
		canFwd, canBack := fwd <= par.Upper, back >= par.Lower
		switch {
		case s.opts.Central && canFwd && canBack:
			shifted[idx] = fwd
			yf, _, err := s.evaluate(ctx, shifted)
			if err != nil {
				return nil, err
			}
			shifted[idx] = back
			yb, _, err := s.evaluate(ctx, shifted)
			if err != nil {
				return nil, err
			}
			for i = 0; i < s.n; i++ {
				col[i] = (yf[i] - yb[i]) / (2 * h)
			}
		default:
			step := h
			if !canFwd {
				step = -h // backward difference at the upper bound
			}
			shifted[idx] = par.Clamp(p[idx] + step)
			step = shifted[idx] - p[idx]
			yp, _, err := s.evaluate(ctx, shifted)
			if err != nil {
				return nil, err
			}
			for i = 0; i < s.n; i++ {
				col[i] = (yp[i] - y[i]) / step
			}
		}
		shifted[idx] = p[idx]
		if err = j.SetCol(c, col); err != nil {
			return nil, err
		}
	}

	return j, nil
}

// damp returns A = H + λ·diag(H), substituting λ for zero diagonal entries.
func damp(h *matrix.SymPacked, lambda float64) *matrix.SymPacked {
	a := h.CloneSym()
	d := h.Diag()
	for i := range d {
		if d[i] == 0 {
			d[i] = lambda
		} else {
			d[i] *= lambda
		}
	}
	_ = a.AddDiag(d) // lengths match by construction

	return a
}

// sigma returns per-parameter standard errors (full length, 0 for fixed).
func (s *solver) sigma(h *matrix.SymPacked) ([]float64, error) {
	out := make([]float64, len(s.p))
	if len(s.free) == 0 {
		return out, nil
	}
	var chol matrix.Cholesky
	if err := chol.Factorize(h); err != nil {
		if err2 := chol.Factorize(damp(h, s.lambda)); err2 != nil {
			return nil, fmt.Errorf("%s: %w: %w", opSigma, ErrNumerical, err2)
		}
	}
	cov, err := chol.Inverse()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", opSigma, ErrNumerical, err)
	}
	scale := 1.0
	if s.w == nil {
		if dof := s.n - len(s.free); dof > 0 {
			scale = s.chi2 / float64(dof)
		}
	}
	for c, idx := range s.free {
		v, _ := cov.At(c, c)
		out[idx] = math.Sqrt(v * scale)
	}

	return out, nil
}

// normal builds JᵀWJ and JᵀW(y_obs - y).
func (s *solver) normal(j *matrix.Dense) (*matrix.SymPacked, []float64, error) {
	h, err := matrix.WeightedGram(j, s.w)
	if err != nil {
		return nil, nil, err
	}
	r := make([]float64, s.n)
	for i := range r {
		r[i] = s.prob.Y[i] - s.y[i]
	}
	g, err := matrix.WeightedTransposeMatVec(j, s.w, r)
	if err != nil {
		return nil, nil, err
	}

	return h, g, nil
}

func (s *solver) record(h *matrix.SymPacked) error {
	var sig []float64
	var err error
	if h == nil {
		sig = make([]float64, len(s.p))
	} else if sig, err = s.sigma(h); err != nil {
		return err
	}
	res := NewIterationResult(s.chi2, s.lambda, s.p, sig)
	s.history = append(s.history, res)
	if s.obs != nil && s.obs.OnIteration != nil {
		s.obs.OnIteration(res.Clone())
	}

	return nil
}

// propose computes the clamped trial point for damping λ.
func (s *solver) propose(h *matrix.SymPacked, g []float64) ([]float64, error) {
	ldlt := matrix.LDLT{Tol: matrix.DefaultPivotTol}
	if err := ldlt.Factorize(damp(h, s.lambda)); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", opStep, ErrNumerical, err)
	}
	delta, err := ldlt.Solve(g)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", opStep, ErrNumerical, err)
	}
	next := append([]float64(nil), s.p...)
	for c, idx := range s.free {
		par := &s.prob.Params[idx]
		d := math.Max(-par.MaxDelta, math.Min(par.MaxDelta, delta[c]))
		next[idx] = par.Clamp(s.p[idx] + d)
	}

	return next, nil
}

func (s *solver) result(reason StopReason) Result {
	return Result{
		History:     s.history,
		Params:      append([]float64(nil), s.p...),
		Prediction:  s.y,
		Evaluations: s.evals,
		Rejected:    s.reject,
		Reason:      reason,
	}
}

func validateProblem(p Problem) error {
	if len(p.Y) == 0 {
		return fmt.Errorf("%w: no observations", ErrBadProblem)
	}
	if p.Model == nil {
		return fmt.Errorf("%w: nil model", ErrBadProblem)
	}
	if p.X != nil && len(p.X) != len(p.Y) {
		return fmt.Errorf("%w: x length %d, y length %d", ErrBadProblem, len(p.X), len(p.Y))
	}
	if p.Stdev != nil && len(p.Stdev) != len(p.Y) {
		return fmt.Errorf("%w: stdev length %d, y length %d", ErrBadProblem, len(p.Stdev), len(p.Y))
	}
	for i, v := range p.Y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite observation %d", ErrBadProblem, i)
		}
	}
	for i, v := range p.Stdev {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: stdev[%d]=%g", ErrBadProblem, i, v)
		}
	}
	for i := range p.Params {
		if err := p.Params[i].Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrBadProblem, err)
		}
	}

	return nil
}

// Solve fits prob by damped Gauss–Newton (Levenberg–Marquardt) steps over
// the enabled parameters.
//
// Implementation:
//   - Stage 1: validate prob and opts; collect the free parameters (enabled
//     with a non-empty fit range). Evaluate the start; with no free
//     parameters record it and stop.
//   - Stage 2: build J by finite differences, H = JᵀWJ and g = JᵀW·r, and
//     record iteration 0.
//   - Stage 3: per iteration, solve (H + λ·diag H)·δ = g with LDLT, limit δ
//     by MaxDelta and clamp to [Lower, Upper]. Accept when χ² drops (λ
//     shrinks), otherwise raise λ and retry up to MaxRetries.
//   - Stage 4: after an accepted step, rebuild J, H, g and record σ from
//     (JᵀWJ)⁻¹. Stop on the χ² floor, on ConsecutiveTol small improvements,
//     on a stall, or after MaxIterations.
//
// Returns:
//   - Result with History (iteration 0 first), the best parameters, the
//     prediction at them, evaluation and rejection counts, and the
//     StopReason. The history recorded so far is kept on every error.
//
// Errors:
//   - ErrBadProblem (invalid problem or options).
//   - ErrCanceled wrapping the context error (StopCanceled).
//   - ErrModel (model error, wrong length, non-finite prediction) and
//     ErrNumerical (factorization failure), both with StopFailed.
//
// Complexity:
//   - Per iteration: k (2k central) + retries model evaluations, O(n·k²)
//     for the normal equations and O(k³) for each factorization.
func Solve(ctx context.Context, prob Problem, opts Options, obs *Observer) (Result, error) {
	if err := validateProblem(prob); err != nil {
		return Result{}, fmt.Errorf("%s: %w", opSolve, err)
	}
	if err := opts.Validate(); err != nil {
		return Result{}, fmt.Errorf("%s: %w", opSolve, err)
	}

	s := &solver{prob: prob, opts: opts, obs: obs, n: len(prob.Y), lambda: opts.LambdaInit}
	if prob.Stdev != nil {
		s.w = make([]float64, s.n)
		for i, sd := range prob.Stdev {
			s.w[i] = 1 / (sd * sd)
		}
	}
	s.p = make([]float64, len(prob.Params))
	for i := range prob.Params {
		s.p[i] = prob.Params[i].Value
		// a zero-width fit range pins the parameter
		if prob.Params[i].Enabled && prob.Params[i].Upper > prob.Params[i].Lower {
			s.free = append(s.free, i)
		}
	}
	log := opts.Logger

	fail := func(err error) (Result, error) {
		reason := StopFailed
		if errors.Is(err, ErrCanceled) {
			reason = StopCanceled
		}
		log.Debug().Err(err).Int("recorded", len(s.history)).Msg("lm stopped early")

		return s.result(reason), fmt.Errorf("%s: %w", opSolve, err)
	}

	var err error
	if s.y, s.chi2, err = s.evaluate(ctx, s.p); err != nil {
		return fail(err)
	}
	if len(s.free) == 0 {
		if err = s.record(nil); err != nil {
			return fail(err)
		}

		return s.result(StopNoFreeParams), nil
	}

	j, err := s.jacobian(ctx, s.p, s.y)
	if err != nil {
		return fail(err)
	}
	h, g, err := s.normal(j)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrNumerical, err))
	}
	if err = s.record(h); err != nil {
		return fail(err)
	}
	if s.chi2 <= opts.ChiSquareFloor {
		return s.result(StopChiSquareFloor), nil
	}

	small := 0
	for iter := 1; iter <= opts.MaxIterations; iter++ {
		accepted := false
		for retry := 1; retry <= opts.MaxRetries; retry++ {
			next, err := s.propose(h, g)
			if err != nil {
				return fail(err)
			}
			yNext, chi2Next, err := s.evaluate(ctx, next)
			if err != nil {
				return fail(err)
			}
			trial := Trial{Iteration: iter, Lambda: s.lambda, ChiSquare: chi2Next}

			if chi2Next < s.chi2 {
				trial.Accepted = true
				if obs != nil && obs.OnTrial != nil {
					obs.OnTrial(trial)
				}
				improvement := (s.chi2 - chi2Next) / s.chi2
				s.p, s.y, s.chi2 = next, yNext, chi2Next
				s.lambda = math.Max(s.lambda*opts.LambdaDown, opts.LambdaMin)
				if improvement < opts.Tolerance {
					small++
				} else {
					small = 0
				}
				accepted = true

				break
			}

			s.reject++
			if obs != nil && obs.OnTrial != nil {
				obs.OnTrial(trial)
			}
			s.lambda *= opts.LambdaUp * math.Pow(opts.Escalation, float64(retry-1))
		}
		if !accepted {
			log.Debug().Int("iteration", iter).Float64("lambda", s.lambda).Msg("lm stalled")
			return s.result(StopStalled), nil
		}

		if j, err = s.jacobian(ctx, s.p, s.y); err != nil {
			return fail(err)
		}
		if h, g, err = s.normal(j); err != nil {
			return fail(fmt.Errorf("%w: %w", ErrNumerical, err))
		}
		if err = s.record(h); err != nil {
			return fail(err)
		}
		log.Debug().Int("iteration", iter).Float64("chi2", s.chi2).Float64("lambda", s.lambda).Msg("lm step accepted")

		reason := StopReason(-1)
		switch {
		case s.chi2 <= opts.ChiSquareFloor:
			reason = StopChiSquareFloor
		case small >= opts.ConsecutiveTol:
			reason = StopConverged
		}
		if reason >= 0 {
			return s.result(reason), nil
		}
	}

	return s.result(StopMaxIterations), nil
}
