// SPDX-License-Identifier: MIT
// Package matrix: Cholesky (LLT) factorization of a packed symmetric matrix.

package matrix

import (
	"fmt"
	"math"
)

// Cholesky holds the factor L of A = L·Lᵀ for a symmetric positive-definite A.
// L is stored in the same packed lower-triangular layout as SymPacked.
// The zero value is ready for Factorize; a failed Factorize leaves the
// receiver unusable for Solve/Inverse (ErrNotFactorized).
type Cholesky struct {
	n  int       // order
	l  []float64 // packed lower factor
	ok bool      // true after a successful Factorize
}

// Factorize computes L such that A = L·Lᵀ.
//
// Implementation:
//   - Stage 1: validate a (non-nil, finite entries).
//   - Stage 2: column-by-column (Cholesky–Banachiewicz, row order):
//     L[j,j] = sqrt(A[j,j] − Σ_{k<j} L[j,k]²)
//     L[i,j] = (A[i,j] − Σ_{k<j} L[i,k]·L[j,k]) / L[j,j], i > j
//
// Behavior highlights:
//   - Input is never mutated; the factor is written to receiver-owned storage.
//   - Deterministic loop order; no pivoting.
//
// Errors:
//   - ErrNilMatrix (a == nil).
//   - ErrNaNInf (non-finite input element).
//   - ErrNotPositiveDefinite (pivot ≤ 0 or non-finite). This is the expected
//     failure for a rank-deficient Jacobian with vanishing damping.
//
// Complexity:
//   - Time O(n³/6), Space O(n²/2).
func (c *Cholesky) Factorize(a *SymPacked) error {
	c.ok = false
	if err := ValidateNotNil(a); err != nil {
		return matrixErrorf(opCholesky, err)
	}
	if err := ValidateFinite(a.data); err != nil {
		return matrixErrorf(opCholesky, err)
	}

	n := a.n
	if cap(c.l) < len(a.data) {
		c.l = make([]float64, len(a.data))
	}
	c.l = c.l[:len(a.data)]
	c.n = n

	var i, j, k int
	var sum, pivot float64
	for j = 0; j < n; j++ {
		// Diagonal element
		sum = a.data[packedIndex(j, j)]
		for k = 0; k < j; k++ {
			sum -= c.l[packedIndex(j, k)] * c.l[packedIndex(j, k)]
		}
		if !(sum > 0) || math.IsInf(sum, 0) { // catches NaN too
			return matrixErrorf(opCholesky, fmt.Errorf("pivot %d = %g: %w", j, sum, ErrNotPositiveDefinite))
		}
		pivot = math.Sqrt(sum)
		c.l[packedIndex(j, j)] = pivot

		// Column j below the diagonal
		for i = j + 1; i < n; i++ {
			sum = a.data[packedIndex(i, j)]
			for k = 0; k < j; k++ {
				sum -= c.l[packedIndex(i, k)] * c.l[packedIndex(j, k)]
			}
			c.l[packedIndex(i, j)] = sum / pivot
		}
	}
	c.ok = true

	return nil
}

// Dim returns the order of the factorized matrix (0 before Factorize).
func (c *Cholesky) Dim() int { return c.n }

// Solve returns x with A·x = b using forward (L·y = b) and backward
// (Lᵀ·x = y) substitution. b is not modified.
// Complexity: O(n²).
func (c *Cholesky) Solve(b []float64) ([]float64, error) {
	if !c.ok {
		return nil, matrixErrorf(opSolve, ErrNotFactorized)
	}
	if err := ValidateVecLen(b, c.n); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}

	x := make([]float64, c.n)
	c.solveInto(x, b)

	return x, nil
}

// solveInto writes the solution of A·x = b into x (len n). x may alias b.
func (c *Cholesky) solveInto(x, b []float64) {
	n := c.n
	var i, k int
	var sum float64
	// Forward substitution: L·y = b
	for i = 0; i < n; i++ {
		sum = b[i]
		for k = 0; k < i; k++ {
			sum -= c.l[packedIndex(i, k)] * x[k]
		}
		x[i] = sum / c.l[packedIndex(i, i)]
	}
	// Backward substitution: Lᵀ·x = y
	for i = n - 1; i >= 0; i-- {
		sum = x[i]
		for k = i + 1; k < n; k++ {
			sum -= c.l[packedIndex(k, i)] * x[k]
		}
		x[i] = sum / c.l[packedIndex(i, i)]
	}
}

// Inverse returns A⁻¹ in packed symmetric storage by solving A·x = e_col
// for each basis column and keeping the lower-triangular part.
// Complexity: O(n³).
func (c *Cholesky) Inverse() (*SymPacked, error) {
	if !c.ok {
		return nil, matrixErrorf(opInverse, ErrNotFactorized)
	}

	inv, err := NewSymPacked(c.n)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	e := make([]float64, c.n)
	x := make([]float64, c.n)
	var col, i int
	for col = 0; col < c.n; col++ {
		for i = range e {
			e[i] = 0
		}
		e[col] = 1
		c.solveInto(x, e)
		for i = col; i < c.n; i++ {
			inv.data[packedIndex(i, col)] = x[i]
		}
	}
	if err = ValidateFinite(inv.data); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	return inv, nil
}

// LogDet returns log(det A) = 2·Σ log L[i,i].
func (c *Cholesky) LogDet() (float64, error) {
	if !c.ok {
		return 0, matrixErrorf(opCholesky, ErrNotFactorized)
	}
	var sum float64
	for i := 0; i < c.n; i++ {
		sum += math.Log(c.l[packedIndex(i, i)])
	}

	return 2 * sum, nil
}
