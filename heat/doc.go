// Package heat provides the heat-transfer models that drive the particle
// temperature/diameter ODE.
//
// A Model answers one question: given the current particle state (T, d) and
// fixed ambient conditions (pressure, gas temperature), how fast does the
// particle lose energy and mass? It exposes the three loss channels
// separately (evaporation, conduction, radiation) so callers can plot them,
// and combined through Derivative for the integrator.
//
// Units are SI throughout: temperatures in K, diameters in m, pressures in
// Pa, heat-loss rates in W, mass-loss rates in kg/s.
//
// ⚙️ Usage:
//
//	reg := heat.DefaultRegistry()
//	m, err := reg.NewModel("free-molecular", "soot", "N2")
//	m.SetProcessConditions(101325, 1500)
//	if err := m.Ready(); err != nil { ... }
//	dTdt, dddt := m.Derivative(2500, 20e-9)
//
// Models carry mutable state (process conditions, flags). Concurrent fits
// MUST each own a Clone.
package heat
