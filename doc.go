// Package liifit fits laser-induced incandescence (LII) heat-transfer models
// to measured particle traces.
//
// 🔥 What is liifit?
//
//	A pure-Go toolkit that takes a pulsed-laser temperature or intensity
//	trace, integrates the particle energy and mass balance forward in time
//	and adjusts the model parameters until the simulated trace matches:
//		• Heat-transfer model: evaporation, conduction, radiation (heat/)
//		• ODE integrators: Euler, RK4, Cash–Karp 5(4), Fehlberg 7(8), adaptive (ode/)
//		• Packed symmetric linear algebra: Cholesky, LDLT (matrix/)
//		• Levenberg–Marquardt with bounds and free/fixed parameters (lm/)
//		• Concurrent fit runs with progress and cancellation (fit/)
//		• Result documents with zstd / lz4 / s2 compression (store/)
//
// Under the hood, everything is organized into small subpackages:
//
//	settings/   YAML configuration, defaults and validation
//	signal/     sampled traces, sources and DTW alignment
//	heat/       materials and the heat-loss model
//	ode/        fixed-step and adaptive integrators
//	matrix/     Dense, SymPacked and the factorizations
//	lm/         the least-squares solver
//	fit/        runs, problems, simulation
//	store/      result documents
//	metrics/    Prometheus recorder and HTTP endpoints
//	traceplot/  PNG/SVG plots of fits and χ² histories
//	logging/    zerolog setup
//
// The command-line front end lives in cmd/liifit:
//
//	liifit sim  --out signals.yaml
//	liifit fit  --signals signals.yaml --out result.yaml.zst --plots plots/
//	liifit show result.yaml.zst
//
//	go install github.com/katalvlaran/liifit/cmd/liifit@latest
package liifit
