package heat

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Physical constants (CODATA 2018, exact where defined).
const (
	Boltzmann     = 1.380649e-23   // J/K
	Avogadro      = 6.02214076e23  // 1/mol
	GasConstant   = 8.314462618    // J/(mol·K)
	StefanBoltz   = 5.670374419e-8 // W/(m²·K⁴)
	PlanckConst   = 6.62607015e-34 // J·s
	SpeedOfLight  = 2.99792458e8   // m/s
	AtmosphericPa = 101325.0       // Pa
)

// Flags enables the individual heat-loss channels.
type Flags struct {
	Evaporation bool `yaml:"evaporation"`
	Conduction  bool `yaml:"conduction"`
	Radiation   bool `yaml:"radiation"`
}

// AllFlags returns Flags with every channel enabled.
func AllFlags() Flags { return Flags{Evaporation: true, Conduction: true, Radiation: true} }

// None reports whether every channel is disabled.
func (f Flags) None() bool { return !f.Evaporation && !f.Conduction && !f.Radiation }

// Material describes the particle substance.
type Material struct {
	Name             string  `yaml:"name" validate:"required"`
	Density          float64 `yaml:"density" validate:"gt=0"`            // kg/m³
	HeatCapacity     float64 `yaml:"heat_capacity" validate:"gt=0"`      // J/(kg·K)
	VaporMolarMass   float64 `yaml:"vapor_molar_mass" validate:"gt=0"`   // kg/mol
	VaporizationHeat float64 `yaml:"vaporization_heat" validate:"gt=0"`  // J/mol
	RefVaporPressure float64 `yaml:"ref_vapor_pressure" validate:"gt=0"` // Pa at RefTemperature
	RefTemperature   float64 `yaml:"ref_temperature" validate:"gt=0"`    // K
	EvaporationCoeff float64 `yaml:"evaporation_coeff" validate:"gt=0,lte=1"`
	Emissivity       float64 `yaml:"emissivity" validate:"gte=0,lte=1"`
}

// GasMixture describes the ambient gas.
type GasMixture struct {
	Name                 string  `yaml:"name" validate:"required"`
	MolarMass            float64 `yaml:"molar_mass" validate:"gt=0"`          // kg/mol
	HeatCapacityRatio    float64 `yaml:"heat_capacity_ratio" validate:"gt=1"` // γ
	ThermalAccommodation float64 `yaml:"thermal_accommodation" validate:"gt=0,lte=1"`
}

var validate = validator.New()

// Validate checks the material's struct constraints.
func (m Material) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("material %q: %w: %w", m.Name, ErrNotConfigured, err)
	}

	return nil
}

// Validate checks the gas mixture's struct constraints.
func (g GasMixture) Validate() error {
	if err := validate.Struct(g); err != nil {
		return fmt.Errorf("gas %q: %w: %w", g.Name, ErrNotConfigured, err)
	}

	return nil
}

// Model is a pluggable heat-transfer provider.
//
// Rate functions take the particle temperature T (K) and diameter d (m) and
// return positive numbers for energy leaving the particle.
type Model interface {
	// Name identifies the model implementation.
	Name() string

	// SetProcessConditions fixes ambient pressure (Pa) and gas temperature (K).
	// Called once before integration; rates depend on these values.
	SetProcessConditions(pressure, gasTemperature float64)

	// ProcessConditions returns the values last set.
	ProcessConditions() (pressure, gasTemperature float64)

	// Flags returns the enabled loss channels.
	Flags() Flags

	// SetFlags replaces the enabled loss channels.
	SetFlags(Flags)

	// Ready reports ErrNotConfigured when material, gas or process
	// conditions are missing or invalid.
	Ready() error

	// Evaporation returns the evaporative heat-loss rate (W) and the mass
	// change rate dm/dt (kg/s, ≤ 0).
	Evaporation(T, d float64) (q, dmdt float64)

	// Conduction returns the conductive heat-loss rate (W).
	Conduction(T, d float64) float64

	// Radiation returns the radiative heat-loss rate (W).
	Radiation(T, d float64) float64

	// Derivative returns dT/dt (K/s) and dd/dt (m/s) from the enabled channels.
	Derivative(T, d float64) (dTdt, dddt float64)

	// Clone returns an independent copy safe for use in another goroutine.
	Clone() Model
}
