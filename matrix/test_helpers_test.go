// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic test fixtures for the factorization kernels.
//   • Keep all data finite and well-formed to avoid numeric-policy interference.

package matrix_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/liifit/matrix"
)

// hide wraps any Matrix to hide its concrete type from type assertions,
// forcing the interface fallback path in kernels with a *Dense fast-path.
type hide struct{ matrix.Matrix }

// MustDense allocates an r×c *Dense or fails the test.
func MustDense(t *testing.T, r, c int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(r, c)
	if err != nil {
		t.Fatalf("NewDense(%d,%d): %v", r, c, err)
	}

	return m
}

// NewFilledDense builds an r×c *Dense from a row-major flat slice.
func NewFilledDense(t *testing.T, r, c int, vals []float64) *matrix.Dense {
	t.Helper()
	d, err := matrix.NewDenseFrom(r, c, vals)
	if err != nil {
		t.Fatalf("NewDenseFrom(%d,%d): %v", r, c, err)
	}

	return d
}

// MustAt reads (i,j) or fails the test.
func MustAt(t *testing.T, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	if err != nil {
		t.Fatalf("At(%d,%d): %v", i, j, err)
	}

	return v
}

// MustSet writes (i,j) or fails the test.
func MustSet(t *testing.T, m matrix.Matrix, i, j int, v float64) {
	t.Helper()
	if err := m.Set(i, j, v); err != nil {
		t.Fatalf("Set(%d,%d): %v", i, j, err)
	}
}

// RandSPD builds a deterministic symmetric positive-definite n×n matrix as
// BᵀB + n·I with B filled from U(-1,1) under seed.
func RandSPD(t *testing.T, n int, seed int64) *matrix.SymPacked {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	b := MustDense(t, n, n)
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			MustSet(t, b, i, j, rng.Float64()*2-1)
		}
	}
	a, err := matrix.WeightedGram(b, nil)
	if err != nil {
		t.Fatalf("WeightedGram: %v", err)
	}
	diag := make([]float64, n)
	for i = range diag {
		diag[i] = float64(n)
	}
	if err = a.AddDiag(diag); err != nil {
		t.Fatalf("AddDiag: %v", err)
	}

	return a
}

// sliceClose reports the first index where |a-b| > atol + rtol*|b|, or -1.
func sliceClose(a, b []float64, rtol, atol float64) int {
	if len(a) != len(b) {
		return 0
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > atol+rtol*math.Abs(b[i]) {
			return i
		}
	}

	return -1
}
