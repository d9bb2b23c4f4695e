package lm

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/liifit/settings"
)

// Options configures Solve.
type Options struct {
	MaxIterations  int     // accepted steps after the initial evaluation
	Tolerance      float64 // relative χ² improvement regarded as no progress
	ConsecutiveTol int     // successive small improvements before stopping
	LambdaInit     float64
	LambdaUp       float64
	LambdaDown     float64
	LambdaMin      float64
	Escalation     float64 // extra factor per repeated rejection; 1 = off
	MaxRetries     int     // rejections tolerated per iteration
	RelStep        float64 // finite-difference step relative to |p|
	Central        bool    // central instead of forward differences
	ChiSquareFloor float64

	Logger zerolog.Logger
}

// DefaultOptions returns the standard schedule: λ₀=1e-3, ×2 on rejection,
// ×0.5 on acceptance, floor 1e-12, no escalation.
func DefaultOptions() Options {
	return Options{
		MaxIterations:  50,
		Tolerance:      1e-6,
		ConsecutiveTol: 2,
		LambdaInit:     1e-3,
		LambdaUp:       2,
		LambdaDown:     0.5,
		LambdaMin:      1e-12,
		Escalation:     1,
		MaxRetries:     10,
		RelStep:        1e-6,
		ChiSquareFloor: 1e-20,
		Logger:         zerolog.Nop(),
	}
}

// FromNumeric maps run-level numeric settings onto solver options.
func FromNumeric(n settings.NumericSettings) Options {
	o := DefaultOptions()
	o.MaxIterations = n.MaxIterations
	o.Tolerance = n.Tolerance
	o.LambdaInit = n.LambdaInit
	o.LambdaUp = n.LambdaUp
	o.LambdaDown = n.LambdaDown
	o.LambdaMin = n.LambdaMin
	o.Escalation = n.LambdaEscalation
	o.MaxRetries = n.MaxRetries

	return o
}

// Validate checks the options.
func (o Options) Validate() error {
	bad := func(what string, v float64) error {
		return fmt.Errorf("%w: %s=%g", ErrBadProblem, what, v)
	}
	switch {
	case o.MaxIterations < 0:
		return bad("max iterations", float64(o.MaxIterations))
	case !(o.Tolerance >= 0):
		return bad("tolerance", o.Tolerance)
	case o.ConsecutiveTol < 1:
		return bad("consecutive tolerance", float64(o.ConsecutiveTol))
	case !(o.LambdaInit > 0) || math.IsInf(o.LambdaInit, 0):
		return bad("lambda init", o.LambdaInit)
	case !(o.LambdaUp > 1):
		return bad("lambda up", o.LambdaUp)
	case !(o.LambdaDown > 0 && o.LambdaDown < 1):
		return bad("lambda down", o.LambdaDown)
	case !(o.LambdaMin > 0):
		return bad("lambda min", o.LambdaMin)
	case !(o.Escalation >= 1):
		return bad("escalation", o.Escalation)
	case o.MaxRetries < 1:
		return bad("max retries", float64(o.MaxRetries))
	case !(o.RelStep > 0 && o.RelStep < 1):
		return bad("relative step", o.RelStep)
	case !(o.ChiSquareFloor >= 0):
		return bad("chi2 floor", o.ChiSquareFloor)
	}

	return nil
}
