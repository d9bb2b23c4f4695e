// Package ode integrates the two-state particle system (temperature,
// diameter) driven by a heat.Model and emits a signal.Signal on a fixed
// output grid.
//
// Schemes:
//
//   - Euler, RK4: classic fixed-step methods.
//   - CashKarp45, Fehlberg78: embedded Runge–Kutta pairs used at fixed step
//     (the higher-order solution is propagated, the estimate is ignored).
//   - CashKarp45Adaptive, Fehlberg78Adaptive: the same pairs with step-size
//     control. Internal steps adapt freely but every output sample lands
//     exactly on the caller's dt grid.
//
// Fixed schemes take StepSizeFactor sub-steps of dt/StepSizeFactor per
// output interval. Adaptive schemes start from that step and adjust it.
//
// Non-physical states: if a step yields a non-finite value, T ≤ 0 or d ≤ 0,
// integration stops and the last valid state is held for all remaining
// samples. The returned signal is marked Truncated, so NaN never reaches a
// residual. Adaptive schemes first retry with a smaller step and truncate
// only when the step underflows.
//
// Cancellation: ctx is polled once per output interval. A canceled
// integration returns the samples produced so far together with an error
// matching both ErrCanceled and the context error.
package ode
