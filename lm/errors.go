package lm

import "errors"

var (
	// ErrBadProblem indicates malformed input (empty data, nil model,
	// mismatched lengths, invalid parameters or options).
	ErrBadProblem = errors.New("lm: invalid problem")

	// ErrNumerical indicates a failed factorization or inversion. It wraps
	// the underlying matrix sentinel.
	ErrNumerical = errors.New("lm: numerical failure")

	// ErrModel indicates the model function failed or returned an unusable
	// prediction (wrong length, non-finite samples).
	ErrModel = errors.New("lm: model evaluation failed")

	// ErrCanceled indicates ctx was canceled; it is joined with ctx.Err().
	ErrCanceled = errors.New("lm: canceled")
)
