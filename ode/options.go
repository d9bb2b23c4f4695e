package ode

import (
	"fmt"
	"math"
)

// Options configures Integrate.
type Options struct {
	Scheme Scheme

	// StepSizeFactor is the number of sub-steps per output interval for
	// fixed schemes, and the initial step divisor for adaptive ones.
	// Must be a power of two ≥ 1.
	StepSizeFactor int

	// AbsTol is measured relative to the initial state's magnitude, so a
	// single value serves both kelvin and metre components.
	AbsTol float64
	RelTol float64

	// MaxSubsteps bounds accepted+rejected adaptive steps per output interval.
	MaxSubsteps int
}

// DefaultOptions returns RK4 with four sub-steps per output interval.
func DefaultOptions() Options {
	return Options{
		Scheme:         RK4,
		StepSizeFactor: 4,
		AbsTol:         1e-9,
		RelTol:         1e-8,
		MaxSubsteps:    10000,
	}
}

// IsPowerOfTwo reports whether n is 1, 2, 4, 8, ...
func IsPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

// Validate checks the options.
func (o Options) Validate() error {
	if o.Scheme < Euler || o.Scheme > Fehlberg78Adaptive {
		return fmt.Errorf("%w: scheme %d", ErrBadOptions, int(o.Scheme))
	}
	if !IsPowerOfTwo(o.StepSizeFactor) {
		return fmt.Errorf("%w: step size factor %d is not a power of two", ErrBadOptions, o.StepSizeFactor)
	}
	if o.Scheme.Adaptive() {
		if !(o.RelTol > 0) || !(o.AbsTol >= 0) || math.IsInf(o.RelTol, 0) {
			return fmt.Errorf("%w: tolerances abs=%g rel=%g", ErrBadOptions, o.AbsTol, o.RelTol)
		}
		if o.MaxSubsteps <= 0 {
			return fmt.Errorf("%w: max substeps %d", ErrBadOptions, o.MaxSubsteps)
		}
	}

	return nil
}
