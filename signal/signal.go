package signal

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotFound is returned by a Source for an unknown key.
	ErrNotFound = errors.New("signal: not found")

	// ErrInvalid marks a Signal that violates its invariants.
	ErrInvalid = errors.New("signal: invalid")

	// ErrEmptyWindow indicates a time window that selects no samples.
	ErrEmptyWindow = errors.New("signal: empty window")
)

// Bandwidth describes a detection channel's spectral band (metres).
type Bandwidth struct {
	Center float64 `yaml:"center"`
	Width  float64 `yaml:"width"`
}

// Signal is an ordered sequence of samples at fixed step Dt from StartTime.
//
// Data carries the channel values (temperature in K for model traces).
// Diameter, when non-nil, is a parallel channel in metres. Stdev, when
// non-nil, holds per-sample measurement standard deviations.
type Signal struct {
	StartTime float64    `yaml:"start_time"`
	Dt        float64    `yaml:"dt"`
	Data      []float64  `yaml:"data"`
	Diameter  []float64  `yaml:"diameter,omitempty"`
	Stdev     []float64  `yaml:"stdev,omitempty"`
	Bandwidth *Bandwidth `yaml:"bandwidth,omitempty"`

	// Truncated is set by the integrator when a non-physical state stopped
	// the trace early and the last valid state was held.
	Truncated bool `yaml:"truncated,omitempty"`
}

// Len returns the number of samples.
func (s *Signal) Len() int { return len(s.Data) }

// Time returns the timestamp of sample i.
func (s *Signal) Time(i int) float64 { return s.StartTime + float64(i)*s.Dt }

// Times returns every sample timestamp.
func (s *Signal) Times() []float64 {
	out := make([]float64, len(s.Data))
	for i := range out {
		out[i] = s.Time(i)
	}

	return out
}

// Validate enforces Dt > 0, finite samples, equal channel lengths and a
// positive band center when a bandwidth is attached.
func (s *Signal) Validate() error {
	if !(s.Dt > 0) || math.IsInf(s.Dt, 0) {
		return fmt.Errorf("%w: dt=%g", ErrInvalid, s.Dt)
	}
	if s.Diameter != nil && len(s.Diameter) != len(s.Data) {
		return fmt.Errorf("%w: diameter length %d != %d", ErrInvalid, len(s.Diameter), len(s.Data))
	}
	if s.Stdev != nil && len(s.Stdev) != len(s.Data) {
		return fmt.Errorf("%w: stdev length %d != %d", ErrInvalid, len(s.Stdev), len(s.Data))
	}
	for _, ch := range [][]float64{s.Data, s.Diameter, s.Stdev} {
		for i, v := range ch {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite sample %d", ErrInvalid, i)
			}
		}
	}
	for i, v := range s.Stdev {
		if v <= 0 {
			return fmt.Errorf("%w: stdev[%d]=%g must be > 0", ErrInvalid, i, v)
		}
	}
	if b := s.Bandwidth; b != nil {
		if !(b.Center > 0) || math.IsInf(b.Center, 0) || !(b.Width >= 0) || math.IsInf(b.Width, 0) {
			return fmt.Errorf("%w: bandwidth center=%g width=%g", ErrInvalid, b.Center, b.Width)
		}
	}

	return nil
}

// Clone returns a deep copy.
func (s *Signal) Clone() *Signal {
	c := *s
	c.Data = cloneFloats(s.Data)
	c.Diameter = cloneFloats(s.Diameter)
	c.Stdev = cloneFloats(s.Stdev)
	if s.Bandwidth != nil {
		b := *s.Bandwidth
		c.Bandwidth = &b
	}

	return &c
}

// Window returns the samples whose timestamps fall in [begin, end).
// The result shares no memory with s.
func (s *Signal) Window(begin, end float64) (*Signal, error) {
	if !(end > begin) {
		return nil, fmt.Errorf("%w: [%g,%g)", ErrEmptyWindow, begin, end)
	}
	lo := int(math.Ceil((begin - s.StartTime) / s.Dt))
	if lo < 0 {
		lo = 0
	}
	hi := len(s.Data)
	for hi > lo && s.Time(hi-1) >= end {
		hi--
	}
	if lo >= hi {
		return nil, fmt.Errorf("%w: [%g,%g)", ErrEmptyWindow, begin, end)
	}

	out := &Signal{
		StartTime: s.Time(lo),
		Dt:        s.Dt,
		Data:      cloneFloats(s.Data[lo:hi]),
		Truncated: s.Truncated,
	}
	if s.Diameter != nil {
		out.Diameter = cloneFloats(s.Diameter[lo:hi])
	}
	if s.Stdev != nil {
		out.Stdev = cloneFloats(s.Stdev[lo:hi])
	}
	if s.Bandwidth != nil {
		b := *s.Bandwidth
		out.Bandwidth = &b
	}

	return out, nil
}

func cloneFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)

	return out
}
