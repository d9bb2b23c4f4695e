package fit

import "errors"

var (
	// ErrNoProblems indicates FitAll was called with nothing fittable.
	ErrNoProblems = errors.New("fit: no problems to fit")

	// ErrRunning indicates the run is already fitting.
	ErrRunning = errors.New("fit: run already in progress")

	// ErrMissingParameter indicates the fit settings lack a parameter the
	// model needs (diameter, peak temperature).
	ErrMissingParameter = errors.New("fit: missing required parameter")

	// ErrBadMode indicates an unknown fit mode.
	ErrBadMode = errors.New("fit: unknown mode")

	// ErrNoTrace indicates a problem has no model trace yet.
	ErrNoTrace = errors.New("fit: no model trace")
)
