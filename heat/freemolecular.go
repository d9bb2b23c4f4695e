// Package heat - FreeMolecular reference model.
//
// Physics (particle of diameter d at temperature T in gas at p, Tg):
//
//	conduction  q_c = α·π·d²·p/8 · sqrt(8·kB·Tg/(π·m_g)) · (γ+1)/(γ-1) · (T/Tg - 1)
//	radiation   q_r = ε·π·d²·σ·(T⁴ - Tg⁴)
//	vapor       p_v = p_ref · exp(-ΔH/R · (1/T - 1/T_ref))
//	mass flux   J   = β · p_v · sqrt(M_v / (2π·R·T))        (Hertz–Knudsen)
//	mass loss   dm/dt = -π·d²·J
//	evaporation q_e = ΔH/M_v · |dm/dt|
//
//	dT/dt = -(q_e + q_c + q_r) / (ρ·c_p·π·d³/6)
//	dd/dt = 2·(dm/dt) / (ρ·π·d²)
//
// Valid in the free-molecular regime (Knudsen ≫ 1), which covers typical
// soot primary particles (5–50 nm) at atmospheric pressure.

package heat

import "math"

// ModelFreeMolecular is the registry name of FreeMolecular.
const ModelFreeMolecular = "free-molecular"

// FreeMolecular is the reference heat-transfer model.
type FreeMolecular struct {
	material Material
	gas      GasMixture
	pressure float64 // Pa
	gasTemp  float64 // K
	flags    Flags

	// cached per SetProcessConditions
	condCoeff float64 // conduction prefactor without d² and (T/Tg-1)
}

// NewFreeMolecular returns a model for the given material and gas with all
// loss channels enabled. Process conditions must be set before use.
func NewFreeMolecular(m Material, g GasMixture) *FreeMolecular {
	return &FreeMolecular{material: m, gas: g, flags: AllFlags()}
}

// Name returns ModelFreeMolecular.
func (f *FreeMolecular) Name() string { return ModelFreeMolecular }

// Material returns the particle material.
func (f *FreeMolecular) Material() Material { return f.material }

// Gas returns the ambient gas mixture.
func (f *FreeMolecular) Gas() GasMixture { return f.gas }

// SetProcessConditions fixes ambient pressure and gas temperature and
// refreshes the cached conduction coefficient.
func (f *FreeMolecular) SetProcessConditions(pressure, gasTemperature float64) {
	f.pressure = pressure
	f.gasTemp = gasTemperature
	f.condCoeff = 0
	if pressure <= 0 || gasTemperature <= 0 || f.gas.MolarMass <= 0 || f.gas.HeatCapacityRatio <= 1 {
		return
	}
	mg := f.gas.MolarMass / Avogadro // kg per molecule
	meanSpeed := math.Sqrt(8 * Boltzmann * gasTemperature / (math.Pi * mg))
	gamma := f.gas.HeatCapacityRatio
	f.condCoeff = f.gas.ThermalAccommodation * math.Pi * pressure / 8 * meanSpeed * (gamma + 1) / (gamma - 1)
}

// ProcessConditions returns pressure (Pa) and gas temperature (K).
func (f *FreeMolecular) ProcessConditions() (float64, float64) { return f.pressure, f.gasTemp }

// Flags returns the enabled loss channels.
func (f *FreeMolecular) Flags() Flags { return f.flags }

// SetFlags replaces the enabled loss channels.
func (f *FreeMolecular) SetFlags(fl Flags) { f.flags = fl }

// Ready reports whether material, gas and process conditions are usable.
func (f *FreeMolecular) Ready() error {
	if err := f.material.Validate(); err != nil {
		return err
	}
	if err := f.gas.Validate(); err != nil {
		return err
	}
	if !(f.pressure > 0) || !(f.gasTemp > 0) || math.IsInf(f.pressure, 0) || math.IsInf(f.gasTemp, 0) {
		return ErrNotConfigured
	}

	return nil
}

// Evaporation returns the evaporative heat-loss rate and dm/dt.
func (f *FreeMolecular) Evaporation(T, d float64) (q, dmdt float64) {
	if !f.flags.Evaporation || T <= 0 || d <= 0 {
		return 0, 0
	}
	m := f.material
	pv := m.RefVaporPressure * math.Exp(-m.VaporizationHeat/GasConstant*(1/T-1/m.RefTemperature))
	flux := m.EvaporationCoeff * pv * math.Sqrt(m.VaporMolarMass/(2*math.Pi*GasConstant*T))
	dmdt = -math.Pi * d * d * flux
	q = -dmdt * m.VaporizationHeat / m.VaporMolarMass

	return q, dmdt
}

// Conduction returns the conductive heat-loss rate.
func (f *FreeMolecular) Conduction(T, d float64) float64 {
	if !f.flags.Conduction || f.gasTemp <= 0 {
		return 0
	}

	return f.condCoeff * d * d * (T/f.gasTemp - 1)
}

// Radiation returns the grey-body radiative heat-loss rate.
func (f *FreeMolecular) Radiation(T, d float64) float64 {
	if !f.flags.Radiation {
		return 0
	}
	t2, g2 := T*T, f.gasTemp*f.gasTemp

	return f.material.Emissivity * math.Pi * d * d * StefanBoltz * (t2*t2 - g2*g2)
}

// Derivative returns dT/dt and dd/dt from the enabled channels.
func (f *FreeMolecular) Derivative(T, d float64) (dTdt, dddt float64) {
	if d <= 0 {
		return 0, 0
	}
	qe, dmdt := f.Evaporation(T, d)
	qsum := qe + f.Conduction(T, d) + f.Radiation(T, d)
	rho := f.material.Density
	mass := rho * math.Pi * d * d * d / 6

	dTdt = -qsum / (mass * f.material.HeatCapacity)
	dddt = 2 * dmdt / (rho * math.Pi * d * d)

	return dTdt, dddt
}

// Clone returns an independent copy.
func (f *FreeMolecular) Clone() Model {
	c := *f

	return &c
}
