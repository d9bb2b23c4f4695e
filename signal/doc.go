// Package signal defines the uniformly sampled time series exchanged between
// data sources, the ODE integrator and the fitter, plus the Source
// abstraction used to look measured traces up by key.
package signal
