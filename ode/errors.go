package ode

import "errors"

var (
	// ErrBadOptions indicates invalid integrator options.
	ErrBadOptions = errors.New("ode: invalid options")

	// ErrBadInput indicates an invalid initial state, sample count or step.
	ErrBadInput = errors.New("ode: invalid input")

	// ErrCanceled indicates the context was canceled mid-integration.
	ErrCanceled = errors.New("ode: canceled")

	// ErrStepLimit indicates an adaptive scheme exceeded MaxSubsteps within
	// one output interval.
	ErrStepLimit = errors.New("ode: sub-step limit exceeded")
)
