package ode

import (
	"fmt"
	"strings"
)

// Scheme selects the integration method.
type Scheme int

const (
	Euler Scheme = iota
	RK4
	CashKarp45
	Fehlberg78
	CashKarp45Adaptive
	Fehlberg78Adaptive
)

var schemeNames = [...]string{
	Euler:              "euler",
	RK4:                "rk4",
	CashKarp45:         "cash-karp45",
	Fehlberg78:         "fehlberg78",
	CashKarp45Adaptive: "cash-karp45-adaptive",
	Fehlberg78Adaptive: "fehlberg78-adaptive",
}

// String returns the configuration name of s.
func (s Scheme) String() string {
	if s < 0 || int(s) >= len(schemeNames) {
		return fmt.Sprintf("Scheme(%d)", int(s))
	}

	return schemeNames[s]
}

// Adaptive reports whether s controls its own step size.
func (s Scheme) Adaptive() bool { return s == CashKarp45Adaptive || s == Fehlberg78Adaptive }

// ParseScheme resolves a configuration name (case-insensitive).
func ParseScheme(name string) (Scheme, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, v := range schemeNames {
		if v == n {
			return Scheme(i), nil
		}
	}

	return 0, fmt.Errorf("%w: unknown scheme %q", ErrBadOptions, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Scheme) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(schemeNames) {
		return nil, fmt.Errorf("%w: unknown scheme %d", ErrBadOptions, int(s))
	}

	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scheme) UnmarshalText(b []byte) error {
	v, err := ParseScheme(string(b))
	if err != nil {
		return err
	}
	*s = v

	return nil
}
