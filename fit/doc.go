// Package fit orchestrates batches of per-signal fits.
//
// A Run holds one shared configuration (fit parameters, numeric settings,
// modeling template) and any number of Problems, one per measured signal.
// FitAll starts one task per problem on a bounded errgroup. Each task owns
// its own heat-model clone, so no mutable model state is shared. The shared
// settings are read-only while the run is active.
//
// Lifecycle:
//
//	run, _ := fit.NewRun(fit.ModeTemperature, modeling, params, numeric,
//	    fit.WithLogger(log), fit.WithProgress(func(total, done int64) { ... }))
//	_ = run.AddFromSource(ctx, src, keys)
//	if err := run.FitAll(ctx); err != nil { ... } // configuration errors only
//	run.Wait()
//	if run.Canceled() { ... } // some problem was canceled or failed
//
// Failure isolation: a numerical failure or model error stops that one
// problem (its history is kept) and flags the run as canceled/incomplete.
// Siblings keep running. Configuration errors found while preparing a
// problem mark it Skipped and add a Diagnostic.
//
// Cancellation: Cancel (or canceling the ctx given to FitAll) stops every
// task at its next integration interval or solver evaluation. The token is
// scoped to one FitAll call, so a later FitAll starts uncanceled.
//
// Progress: the expected total is an upper bound, Σ over problems of
// (MaxIterations+1)·(enabled+1) + 1. It shrinks when a problem finishes
// with unused budget. The sink sees non-increasing totals and
// non-decreasing done counts, and done == total once the run finishes.
package fit
