// Package settings holds the value-type configuration shared by a fit run:
// bounded fit parameters, numeric (solver/integrator) settings and the
// modeling template cloned per fit problem, plus the YAML run file that
// carries them all.
//
// Loading follows read → defaults → struct validation → semantic checks:
//
//	cfg, err := settings.Load("run.yaml")
//
// All types are plain values. Clone methods deep-copy slices so a clone can
// diverge from its template without sharing memory.
package settings
