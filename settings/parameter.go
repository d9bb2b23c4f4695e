package settings

import (
	"fmt"
	"math"
)

// ParamID identifies a fit parameter. The order defines the layout of an
// iteration result.
type ParamID int

const (
	Diameter ParamID = iota
	GasTemperature
	PeakTemperature
)

var paramNames = map[ParamID]string{
	Diameter:        "diameter",
	GasTemperature:  "gas_temperature",
	PeakTemperature: "peak_temperature",
}

func (id ParamID) String() string {
	if s, ok := paramNames[id]; ok {
		return s
	}

	return fmt.Sprintf("param%d", int(id))
}

// FitParameter is a named, bounded, optionally fixed scalar.
//
// Invariant: MinAllowed ≤ Lower ≤ Value ≤ Upper ≤ MaxAllowed, MaxDelta > 0.
type FitParameter struct {
	ID         ParamID `yaml:"id"`
	Name       string  `yaml:"name"`
	Unit       string  `yaml:"unit"`
	Value      float64 `yaml:"value"`
	MinAllowed float64 `yaml:"min_allowed"`
	MaxAllowed float64 `yaml:"max_allowed"`
	Lower      float64 `yaml:"lower"`
	Upper      float64 `yaml:"upper"`
	MaxDelta   float64 `yaml:"max_delta"`
	Enabled    bool    `yaml:"enabled"`
}

// NewFitParameter returns an enabled parameter whose fit bounds span the
// allowed range and whose max step is the full range width.
func NewFitParameter(id ParamID, name, unit string, value, minAllowed, maxAllowed float64) (FitParameter, error) {
	p := FitParameter{
		ID:         id,
		Name:       name,
		Unit:       unit,
		MinAllowed: minAllowed,
		MaxAllowed: maxAllowed,
		Lower:      minAllowed,
		Upper:      maxAllowed,
		MaxDelta:   maxAllowed - minAllowed,
		Enabled:    true,
	}
	if !(minAllowed < maxAllowed) || isBad(minAllowed) || isBad(maxAllowed) {
		return FitParameter{}, fmt.Errorf("%s: %w: allowed [%g,%g]", name, ErrBadBoundary, minAllowed, maxAllowed)
	}
	if err := p.SetValue(value); err != nil {
		return FitParameter{}, fmt.Errorf("%s: %w", name, err)
	}

	return p, nil
}

func isBad(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

// Clamp returns v limited to [Lower, Upper]. Clamp(Clamp(v)) == Clamp(v).
func (p *FitParameter) Clamp(v float64) float64 {
	return math.Min(math.Max(v, p.Lower), p.Upper)
}

// SetValue stores v limited to [Lower, Upper]. NaN/Inf leave the value
// unchanged; both cases, and any clamping, report ErrOutOfRange.
func (p *FitParameter) SetValue(v float64) error {
	if isBad(v) {
		return fmt.Errorf("%w: %g", ErrOutOfRange, v)
	}
	c := p.Clamp(v)
	p.Value = c
	if c != v {
		return fmt.Errorf("%w: %g clamped to %g", ErrOutOfRange, v, c)
	}

	return nil
}

// SetBoundary sets the fit range. lo > hi (or NaN) is rejected with
// ErrBadBoundary and nothing changes. Bounds outside the allowed range are
// clamped to it and reported as ErrOutOfRange. Value is re-clamped.
func (p *FitParameter) SetBoundary(lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
		return fmt.Errorf("%w: [%g,%g]", ErrBadBoundary, lo, hi)
	}
	cl := math.Min(math.Max(lo, p.MinAllowed), p.MaxAllowed)
	ch := math.Min(math.Max(hi, p.MinAllowed), p.MaxAllowed)
	p.Lower, p.Upper = cl, ch
	p.Value = p.Clamp(p.Value)
	if cl != lo || ch != hi {
		return fmt.Errorf("%w: [%g,%g] clamped to [%g,%g]", ErrOutOfRange, lo, hi, cl, ch)
	}

	return nil
}

// SetMaxDelta sets the largest change permitted per iteration.
func (p *FitParameter) SetMaxDelta(d float64) error {
	if !(d > 0) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: max delta %g", ErrOutOfRange, d)
	}
	p.MaxDelta = d

	return nil
}

// Validate checks the invariant.
func (p *FitParameter) Validate() error {
	switch {
	case isBad(p.MinAllowed) || isBad(p.MaxAllowed) || p.MinAllowed > p.MaxAllowed:
		return fmt.Errorf("%s: %w: allowed [%g,%g]", p.Name, ErrBadBoundary, p.MinAllowed, p.MaxAllowed)
	case isBad(p.Lower) || isBad(p.Upper) || p.Lower > p.Upper || p.Lower < p.MinAllowed || p.Upper > p.MaxAllowed:
		return fmt.Errorf("%s: %w: bounds [%g,%g]", p.Name, ErrBadBoundary, p.Lower, p.Upper)
	case isBad(p.Value) || p.Value < p.Lower || p.Value > p.Upper:
		return fmt.Errorf("%s: %w: value %g", p.Name, ErrOutOfRange, p.Value)
	case !(p.MaxDelta > 0) || math.IsInf(p.MaxDelta, 0):
		return fmt.Errorf("%s: %w: max delta %g", p.Name, ErrOutOfRange, p.MaxDelta)
	}

	return nil
}

// FitSettings is the ordered parameter set shared read-only by a run.
type FitSettings struct {
	Params []FitParameter `yaml:"params"`
}

// DefaultFitSettings returns diameter (nm), gas temperature (K) and peak
// temperature (K), all enabled.
func DefaultFitSettings() FitSettings {
	d, _ := NewFitParameter(Diameter, "diameter", "nm", 20, 1, 100)
	g, _ := NewFitParameter(GasTemperature, "gas temperature", "K", 1500, 300, 3000)
	p, _ := NewFitParameter(PeakTemperature, "peak temperature", "K", 2500, 1000, 5000)
	d.MaxDelta = 10
	g.MaxDelta = 500
	p.MaxDelta = 500

	return FitSettings{Params: []FitParameter{d, g, p}}
}

// EnabledCount returns the number of enabled parameters.
func (s FitSettings) EnabledCount() int {
	var n int
	for i := range s.Params {
		if s.Params[i].Enabled {
			n++
		}
	}

	return n
}

// Values returns the current values in parameter order.
func (s FitSettings) Values() []float64 {
	out := make([]float64, len(s.Params))
	for i := range s.Params {
		out[i] = s.Params[i].Value
	}

	return out
}

// Clone deep-copies the parameter slice.
func (s FitSettings) Clone() FitSettings {
	out := FitSettings{Params: make([]FitParameter, len(s.Params))}
	copy(out.Params, s.Params)

	return out
}

// ByID returns the index of the parameter with the given ID, or -1.
func (s FitSettings) ByID(id ParamID) int {
	for i := range s.Params {
		if s.Params[i].ID == id {
			return i
		}
	}

	return -1
}

// Validate checks every parameter and rejects duplicate IDs.
func (s FitSettings) Validate() error {
	seen := make(map[ParamID]bool, len(s.Params))
	for i := range s.Params {
		if err := s.Params[i].Validate(); err != nil {
			return err
		}
		if seen[s.Params[i].ID] {
			return fmt.Errorf("%w: duplicate parameter %s", ErrInvalid, s.Params[i].ID)
		}
		seen[s.Params[i].ID] = true
	}

	return nil
}
