package fit

import (
	"fmt"

	"github.com/katalvlaran/liifit/settings"
)

// Mode selects the fitted observable.
type Mode string

const (
	// ModeTemperature fits the particle temperature trace directly.
	ModeTemperature Mode = settings.ModeTemperature

	// ModeIntensity fits a peak-normalized incandescence trace
	// I ∝ d³·B(λ, T), which is what a single-wavelength detector sees.
	ModeIntensity Mode = settings.ModeIntensity
)

// ParseMode validates a configuration string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTemperature, ModeIntensity:
		return Mode(s), nil
	}

	return "", fmt.Errorf("%w: %q", ErrBadMode, s)
}
