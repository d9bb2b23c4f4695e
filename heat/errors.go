package heat

import "errors"

var (
	// ErrNotConfigured indicates a model missing material/gas data or valid
	// process conditions. It is a precondition failure reported before any
	// fit starts.
	ErrNotConfigured = errors.New("heat: model not configured")

	// ErrUnknownModel indicates a model name absent from the registry.
	ErrUnknownModel = errors.New("heat: unknown model")

	// ErrUnknownMaterial indicates a material name absent from the registry.
	ErrUnknownMaterial = errors.New("heat: unknown material")

	// ErrUnknownGas indicates a gas-mixture name absent from the registry.
	ErrUnknownGas = errors.New("heat: unknown gas mixture")

	// ErrLengthMismatch indicates trace channels of unequal length.
	ErrLengthMismatch = errors.New("heat: temperature and diameter length mismatch")
)
