package matrix_test

import (
	"fmt"
	"testing"

	"github.com/katalvlaran/liifit/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// gonumSym expands a SymPacked into a gonum SymDense reference.
func gonumSym(s *matrix.SymPacked) *mat.SymDense {
	n := s.Dim()
	ref := mat.NewSymDense(n, nil)
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j <= i; j++ {
			v, _ := s.At(i, j)
			ref.SetSym(i, j, v)
		}
	}

	return ref
}

// TestCholesky_MatchesGonum checks Solve and Inverse against gonum's
// Cholesky on random SPD matrices of several orders.
func TestCholesky_MatchesGonum(t *testing.T) {
	for _, n := range []int{1, 2, 3, 6, 10} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			a := RandSPD(t, n, int64(n))
			b := make([]float64, n)
			for i := range b {
				b[i] = float64(i+1) * 0.5
			}

			var c matrix.Cholesky
			require.NoError(t, c.Factorize(a))
			assert.Equal(t, n, c.Dim())
			x, err := c.Solve(b)
			require.NoError(t, err)

			var ref mat.Cholesky
			require.True(t, ref.Factorize(gonumSym(a)))
			want := mat.NewVecDense(n, nil)
			require.NoError(t, ref.SolveVecTo(want, mat.NewVecDense(n, b)))
			assert.Equal(t, -1, sliceClose(x, want.RawVector().Data, 1e-10, 1e-12))

			inv, err := c.Inverse()
			require.NoError(t, err)
			var refInv mat.SymDense
			require.NoError(t, ref.InverseTo(&refInv))
			var i, j int
			for i = 0; i < n; i++ {
				for j = 0; j < n; j++ {
					assert.InDelta(t, refInv.At(i, j), MustAt(t, inv, i, j), 1e-10)
				}
			}

			logDet, err := c.LogDet()
			require.NoError(t, err)
			assert.InDelta(t, ref.LogDet(), logDet, 1e-10)
		})
	}
}

func TestCholesky_NotPositiveDefinite(t *testing.T) {
	// Eigenvalues 3 and -1.
	a, err := matrix.NewSymPackedFrom(2, []float64{1, 2, 1})
	require.NoError(t, err)

	var c matrix.Cholesky
	err = c.Factorize(a)
	assert.ErrorIs(t, err, matrix.ErrNotPositiveDefinite)

	_, err = c.Solve([]float64{1, 1})
	assert.ErrorIs(t, err, matrix.ErrNotFactorized, "failed factor must not be usable")
	_, err = c.Inverse()
	assert.ErrorIs(t, err, matrix.ErrNotFactorized)
}

func TestCholesky_Validation(t *testing.T) {
	var c matrix.Cholesky
	assert.ErrorIs(t, c.Factorize(nil), matrix.ErrNilMatrix)

	a := RandSPD(t, 3, 1)
	require.NoError(t, c.Factorize(a))
	_, err := c.Solve([]float64{1, 2})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}
