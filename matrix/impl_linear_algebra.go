// SPDX-License-Identifier: MIT
// Package matrix provides the product kernels that assemble and check the
// normal equations of a weighted least-squares problem.
//
// Purpose:
//   - Declare canonical kernels (signatures) used by the solver.
//   - Define operation tags and shared constants for determinism and error reporting.
//
// Notes:
//   - Factorizations live in impl_cholesky.go and impl_ldlt.go.
//   - All kernels use central validators and wrap sentinels via matrixErrorf.

package matrix

import "fmt"

// ZeroSum is the initial sum value for forward/backward substitution and similar.
const ZeroSum = 0.0

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opMatVec       = "MatVec"
	opSymMatVec    = "SymMatVec"
	opWeightedGram = "WeightedGram"
	opWeightedJTr  = "WeightedTransposeMatVec"
	opCholesky     = "Cholesky"
	opLDLT         = "LDLT"
	opSolve        = "Solve"
	opInverse      = "Inverse"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// The wrapper keeps a stable "Op: underlying" shape for uniform reporting across facades.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// weightAt returns w[i], or 1 when no weights were supplied.
func weightAt(w []float64, i int) float64 {
	if w == nil {
		return 1
	}

	return w[i]
}

// MatVec computes y = m * x for a column vector x.
//
// Contract: m non-nil; x non-nil; len(x) == m.Cols().
// Fast-path: *Dense performs one pass per row with flat indexing.
// Determinism: fixed i→j loop order.
// Complexity: Time O(r*c), Space O(r) for y.
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}

	rows, cols := m.Rows(), m.Cols()
	y := make([]float64, rows)
	var i, j int
	var sum, v float64
	var err error

	if d, ok := m.(*Dense); ok {
		var base int
		for i = 0; i < rows; i++ {
			sum = ZeroSum
			base = i * cols
			for j = 0; j < cols; j++ {
				sum += d.data[base+j] * x[j]
			}
			y[i] = sum
		}

		return y, nil
	}

	for i = 0; i < rows; i++ {
		sum = ZeroSum
		for j = 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opMatVec, fmt.Errorf("At(%d,%d): %w", i, j, err))
			}
			sum += v * x[j]
		}
		y[i] = sum
	}

	return y, nil
}

// SymMatVec computes y = s * x for a packed symmetric s, reading each stored
// element once and applying it to both mirrored positions.
// Complexity: Time O(n²), Space O(n).
func SymMatVec(s *SymPacked, x []float64) ([]float64, error) {
	if err := ValidateNotNil(s); err != nil {
		return nil, matrixErrorf(opSymMatVec, err)
	}
	if err := ValidateVecLen(x, s.n); err != nil {
		return nil, matrixErrorf(opSymMatVec, err)
	}

	y := make([]float64, s.n)
	var i, j int
	var v float64
	for i = 0; i < s.n; i++ {
		for j = 0; j < i; j++ {
			v = s.data[packedIndex(i, j)]
			y[i] += v * x[j]
			y[j] += v * x[i]
		}
		y[i] += s.data[packedIndex(i, i)] * x[i]
	}

	return y, nil
}

// WeightedGram assembles A = Jᵀ·W·J into packed symmetric storage.
//
// Implementation:
//   - Stage 1: validate J non-nil and len(w) == J.Rows() (w == nil ⇒ W = I).
//   - Stage 2: for every lower-triangular (a,b), accumulate Σ_i w_i J[i,a] J[i,b]
//     in a fixed i↑ order.
//
// Inputs:
//   - j: m×k Jacobian (rows = samples, cols = parameters).
//   - w: per-sample weights (1/σ²) or nil.
//
// Returns:
//   - *SymPacked: k×k normal matrix.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (weights length), ErrNaNInf (non-finite sum).
//
// Complexity:
//   - Time O(m·k²/2), Space O(k²/2).
func WeightedGram(j *Dense, w []float64) (*SymPacked, error) {
	if err := ValidateNotNil(j); err != nil {
		return nil, matrixErrorf(opWeightedGram, err)
	}
	if w != nil {
		if err := ValidateVecLen(w, j.r); err != nil {
			return nil, matrixErrorf(opWeightedGram, err)
		}
	}

	out, err := NewSymPacked(j.c)
	if err != nil {
		return nil, matrixErrorf(opWeightedGram, err)
	}

	var a, b, i, base int
	var sum, wi float64
	for a = 0; a < j.c; a++ {
		for b = 0; b <= a; b++ {
			sum = ZeroSum
			for i = 0; i < j.r; i++ {
				base = i * j.c
				wi = weightAt(w, i)
				sum += wi * j.data[base+a] * j.data[base+b]
			}
			if err = out.Set(a, b, sum); err != nil {
				return nil, matrixErrorf(opWeightedGram, err)
			}
		}
	}

	return out, nil
}

// WeightedTransposeMatVec computes g = Jᵀ·W·r (the gradient of ½χ² up to sign).
// w == nil ⇒ W = I. Complexity: Time O(m·k), Space O(k).
func WeightedTransposeMatVec(j *Dense, w, r []float64) ([]float64, error) {
	if err := ValidateNotNil(j); err != nil {
		return nil, matrixErrorf(opWeightedJTr, err)
	}
	if err := ValidateVecLen(r, j.r); err != nil {
		return nil, matrixErrorf(opWeightedJTr, err)
	}
	if w != nil {
		if err := ValidateVecLen(w, j.r); err != nil {
			return nil, matrixErrorf(opWeightedJTr, err)
		}
	}

	g := make([]float64, j.c)
	var a, i int
	var wr float64
	for i = 0; i < j.r; i++ {
		wr = weightAt(w, i) * r[i]
		for a = 0; a < j.c; a++ {
			g[a] += j.data[i*j.c+a] * wr
		}
	}
	if err := ValidateFinite(g); err != nil {
		return nil, matrixErrorf(opWeightedJTr, err)
	}

	return g, nil
}
