// SPDX-License-Identifier: MIT
// Package matrix: LDLT factorization of a packed symmetric matrix.
//
// LDLT avoids square roots and tolerates semi-definite input up to the point
// where a pivot vanishes, which makes it the preferred factorization for a
// damped normal-equation matrix JᵀWJ + λ·D whose conditioning is unknown.

package matrix

import (
	"fmt"
	"math"
)

// DefaultPivotTol is the relative tolerance below which an LDLT pivot is
// treated as zero: |d_j| ≤ DefaultPivotTol · max_i |A[i,i]|.
const DefaultPivotTol = 1e-14

// LDLT holds A = L·D·Lᵀ with unit lower-triangular L and diagonal D.
// Storage reuses the packed layout: strictly-lower cells hold L, diagonal
// cells hold D.
type LDLT struct {
	// Tol is the relative pivot tolerance; zero means DefaultPivotTol.
	Tol float64

	n  int
	f  []float64
	ok bool
}

// Factorize computes L and D.
//
// Implementation:
//   - Stage 1: validate a (non-nil, finite); derive absolute pivot tolerance
//     from the largest diagonal magnitude.
//   - Stage 2: for j = 0..n-1:
//     d_j    = A[j,j] − Σ_{k<j} L[j,k]²·d_k
//     L[i,j] = (A[i,j] − Σ_{k<j} L[i,k]·L[j,k]·d_k) / d_j,  i > j
//
// Errors:
//   - ErrNilMatrix, ErrNaNInf (input), ErrSingular (|d_j| within tolerance or
//     non-finite).
//
// Notes:
//   - Negative pivots are accepted (indefinite A); use PositiveDefinite to
//     check the inertia when a descent direction is required.
//
// Complexity:
//   - Time O(n³/6), Space O(n²/2).
func (f *LDLT) Factorize(a *SymPacked) error {
	f.ok = false
	if err := ValidateNotNil(a); err != nil {
		return matrixErrorf(opLDLT, err)
	}
	if err := ValidateFinite(a.data); err != nil {
		return matrixErrorf(opLDLT, err)
	}

	n := a.n
	if cap(f.f) < len(a.data) {
		f.f = make([]float64, len(a.data))
	}
	f.f = f.f[:len(a.data)]
	f.n = n

	tol := f.Tol
	if tol <= 0 {
		tol = DefaultPivotTol
	}
	var scale float64
	for i := 0; i < n; i++ {
		scale = math.Max(scale, math.Abs(a.data[packedIndex(i, i)]))
	}
	absTol := tol * scale

	var i, j, k int
	var sum, dj float64
	for j = 0; j < n; j++ {
		sum = a.data[packedIndex(j, j)]
		for k = 0; k < j; k++ {
			sum -= f.f[packedIndex(j, k)] * f.f[packedIndex(j, k)] * f.f[packedIndex(k, k)]
		}
		if math.IsNaN(sum) || math.IsInf(sum, 0) || math.Abs(sum) <= absTol {
			return matrixErrorf(opLDLT, fmt.Errorf("pivot %d = %g: %w", j, sum, ErrSingular))
		}
		dj = sum
		f.f[packedIndex(j, j)] = dj

		for i = j + 1; i < n; i++ {
			sum = a.data[packedIndex(i, j)]
			for k = 0; k < j; k++ {
				sum -= f.f[packedIndex(i, k)] * f.f[packedIndex(j, k)] * f.f[packedIndex(k, k)]
			}
			f.f[packedIndex(i, j)] = sum / dj
		}
	}
	f.ok = true

	return nil
}

// Dim returns the order of the factorized matrix (0 before Factorize).
func (f *LDLT) Dim() int { return f.n }

// D returns a copy of the diagonal factor.
func (f *LDLT) D() []float64 {
	out := make([]float64, f.n)
	for i := 0; i < f.n; i++ {
		out[i] = f.f[packedIndex(i, i)]
	}

	return out
}

// PositiveDefinite reports whether every pivot of D is strictly positive.
// Returns false before a successful Factorize.
func (f *LDLT) PositiveDefinite() bool {
	if !f.ok {
		return false
	}
	for i := 0; i < f.n; i++ {
		if f.f[packedIndex(i, i)] <= 0 {
			return false
		}
	}

	return true
}

// Solve returns x with A·x = b: L·z = b, D·y = z, Lᵀ·x = y.
// Complexity: O(n²).
func (f *LDLT) Solve(b []float64) ([]float64, error) {
	if !f.ok {
		return nil, matrixErrorf(opSolve, ErrNotFactorized)
	}
	if err := ValidateVecLen(b, f.n); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}

	x := make([]float64, f.n)
	f.solveInto(x, b)
	if err := ValidateFinite(x); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}

	return x, nil
}

// solveInto writes the solution of A·x = b into x. x may alias b.
func (f *LDLT) solveInto(x, b []float64) {
	n := f.n
	var i, k int
	var sum float64
	// L·z = b (unit diagonal)
	for i = 0; i < n; i++ {
		sum = b[i]
		for k = 0; k < i; k++ {
			sum -= f.f[packedIndex(i, k)] * x[k]
		}
		x[i] = sum
	}
	// D·y = z
	for i = 0; i < n; i++ {
		x[i] /= f.f[packedIndex(i, i)]
	}
	// Lᵀ·x = y
	for i = n - 1; i >= 0; i-- {
		sum = x[i]
		for k = i + 1; k < n; k++ {
			sum -= f.f[packedIndex(k, i)] * x[k]
		}
		x[i] = sum
	}
}

// Inverse returns A⁻¹ in packed symmetric storage.
// Complexity: O(n³).
func (f *LDLT) Inverse() (*SymPacked, error) {
	if !f.ok {
		return nil, matrixErrorf(opInverse, ErrNotFactorized)
	}

	inv, err := NewSymPacked(f.n)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	e := make([]float64, f.n)
	x := make([]float64, f.n)
	var col, i int
	for col = 0; col < f.n; col++ {
		for i = range e {
			e[i] = 0
		}
		e[col] = 1
		f.solveInto(x, e)
		for i = col; i < f.n; i++ {
			inv.data[packedIndex(i, col)] = x[i]
		}
	}
	if err = ValidateFinite(inv.data); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	return inv, nil
}
