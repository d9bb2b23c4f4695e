package settings

import (
	"fmt"

	"github.com/katalvlaran/liifit/heat"
)

// Loss-channel names accepted in ModelingSettings.Disable.
const (
	ChannelEvaporation = "evaporation"
	ChannelConduction  = "conduction"
	ChannelRadiation   = "radiation"
)

// ModelingSettings is the heat-model template a run clones per problem.
// Channels are listed by what to switch off so the zero value enables all.
type ModelingSettings struct {
	Model          string   `yaml:"model" default:"free-molecular" validate:"required"`
	Material       string   `yaml:"material" default:"soot" validate:"required"`
	Gas            string   `yaml:"gas" default:"N2" validate:"required"`
	Pressure       float64  `yaml:"pressure" default:"101325" validate:"gt=0"`      // Pa
	GasTemperature float64  `yaml:"gas_temperature" default:"1500" validate:"gt=0"` // K
	Disable        []string `yaml:"disable,omitempty" validate:"dive,oneof=evaporation conduction radiation"`
	Wavelength     float64  `yaml:"wavelength" default:"7e-07" validate:"gt=0"` // m, intensity mode
}

// DefaultModeling returns a soot/N2 free-molecular template at 1 atm, 1500 K.
func DefaultModeling() ModelingSettings {
	return ModelingSettings{
		Model:          heat.ModelFreeMolecular,
		Material:       "soot",
		Gas:            "N2",
		Pressure:       heat.AtmosphericPa,
		GasTemperature: 1500,
		Wavelength:     700e-9,
	}
}

// Flags returns the enabled loss channels.
func (m ModelingSettings) Flags() heat.Flags {
	f := heat.AllFlags()
	for _, c := range m.Disable {
		switch c {
		case ChannelEvaporation:
			f.Evaporation = false
		case ChannelConduction:
			f.Conduction = false
		case ChannelRadiation:
			f.Radiation = false
		}
	}

	return f
}

// Clone returns an independent copy.
func (m ModelingSettings) Clone() ModelingSettings {
	c := m
	if m.Disable != nil {
		c.Disable = append([]string(nil), m.Disable...)
	}

	return c
}

// Validate runs struct-tag validation.
func (m ModelingSettings) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: modeling: %w", ErrInvalid, err)
	}

	return nil
}

// Build resolves names in reg and returns a configured, ready model.
// Unknown names and unusable property data are configuration errors.
func (m ModelingSettings) Build(reg *heat.Registry) (heat.Model, error) {
	model, err := reg.NewModel(m.Model, m.Material, m.Gas)
	if err != nil {
		return nil, err
	}
	model.SetProcessConditions(m.Pressure, m.GasTemperature)
	model.SetFlags(m.Flags())
	if err = model.Ready(); err != nil {
		return nil, err
	}

	return model, nil
}
