package heat

import "math"

// Contributions evaluates each loss channel along a stored model trace.
// temps and diams are the temperature (K) and diameter (m) channels; the
// returned slices hold the heat-loss rates (W) per sample, independent of
// the model's enable flags.
func Contributions(m Model, temps, diams []float64) (evap, cond, rad []float64, err error) {
	if len(temps) != len(diams) {
		return nil, nil, nil, ErrLengthMismatch
	}
	if err = m.Ready(); err != nil {
		return nil, nil, nil, err
	}
	full := m.Clone()
	full.SetFlags(AllFlags())

	n := len(temps)
	evap = make([]float64, n)
	cond = make([]float64, n)
	rad = make([]float64, n)
	for i := 0; i < n; i++ {
		evap[i], _ = full.Evaporation(temps[i], diams[i])
		cond[i] = full.Conduction(temps[i], diams[i])
		rad[i] = full.Radiation(temps[i], diams[i])
	}

	return evap, cond, rad, nil
}

// Planck returns the black-body spectral radiance (W·sr⁻¹·m⁻³) at
// wavelength lambda (m) and temperature T (K).
func Planck(lambda, T float64) float64 {
	if lambda <= 0 || T <= 0 {
		return 0
	}
	c1 := 2 * PlanckConst * SpeedOfLight * SpeedOfLight
	x := PlanckConst * SpeedOfLight / (lambda * Boltzmann * T)

	return c1 / (lambda * lambda * lambda * lambda * lambda) / math.Expm1(x)
}
