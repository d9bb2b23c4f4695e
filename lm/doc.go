// SPDX-License-Identifier: MIT

// Package lm implements a bounded Levenberg–Marquardt least-squares solver.
//
// What:
//
//   - Minimizes χ² = Σ wᵢ·(yᵢ - modelᵢ(p))², wᵢ = 1/σᵢ² when a standard
//     deviation channel is given, otherwise 1.
//   - Only enabled parameters move; a disabled parameter's Jacobian column is
//     zero by construction and it is excluded from the reduced system.
//   - Every accepted step is limited to each parameter's MaxDelta and then
//     clamped into [Lower, Upper].
//
// Damping (Marquardt scaling, fixed for the whole package):
//
//	A = JᵀWJ + λ·diag(JᵀWJ)     (λ alone where a diagonal entry is zero)
//
//	rejected:  λ ← λ·LambdaUp·Escalation^(k-1)   k = consecutive rejections
//	accepted:  λ ← max(λ·LambdaDown, LambdaMin)
//
// The damped system is solved with matrix.LDLT. A failed factorization is a
// numerical failure: Solve stops and returns the history recorded so far
// together with an error matching ErrNumerical.
//
// History:
//
//	IterationResult = [χ², λ, p0, σp0, p1, σp1, ...]
//
// Result 0 is the initial evaluation. Each accepted step appends one more.
// With no enabled parameters exactly one result is recorded.
//
// Uncertainties are σᵢ = sqrt(Cᵢᵢ), C = (JᵀWJ)⁻¹ via Cholesky; without a
// standard deviation channel C is scaled by the reduced χ², χ²/(n-k). When
// the undamped matrix is not positive definite the damped one is used.
//
// Termination: MaxIterations accepted steps; relative χ² improvement below
// Tolerance for ConsecutiveTol consecutive steps; χ² ≤ ChiSquareFloor;
// MaxRetries consecutive rejections; or ctx cancellation, which is checked
// before every model evaluation.
package lm
