package settings

import "errors"

var (
	// ErrOutOfRange indicates a value outside the permitted range. Setters
	// that clamp still report it so callers know the input was adjusted.
	ErrOutOfRange = errors.New("settings: value out of range")

	// ErrBadBoundary indicates lower > upper or NaN bounds.
	ErrBadBoundary = errors.New("settings: invalid boundary")

	// ErrInvalid indicates a configuration that failed validation.
	ErrInvalid = errors.New("settings: invalid configuration")
)
