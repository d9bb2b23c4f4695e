// Package matrix_test contains unit tests for Dense storage and products.
package matrix_test

import (
	"fmt"
	"testing"

	"github.com/katalvlaran/liifit/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDenseDefaultZero(t *testing.T) {
	for _, tc := range []struct{ rows, cols int }{
		{3, 3},
		{6, 2},
	} {
		name := fmt.Sprintf("%dx%d", tc.rows, tc.cols)
		t.Run(name, func(t *testing.T) {
			m := MustDense(t, tc.rows, tc.cols)
			var i, j int
			for i = 0; i < tc.rows; i++ {
				for j = 0; j < tc.cols; j++ {
					assert.Equal(t, 0.0, MustAt(t, m, i, j), "element [%d,%d] must be 0", i, j)
				}
			}
		})
	}
}

func TestNewDense_InvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 3)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	_, err = matrix.NewDenseFrom(2, 2, []float64{1, 2, 3})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestDense_OutOfRange(t *testing.T) {
	m := MustDense(t, 2, 2)
	_, err := m.At(2, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, -1, 1), matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.SetCol(2, []float64{1, 2}), matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.SetCol(0, []float64{1}), matrix.ErrDimensionMismatch)
}

func TestDense_ColRoundTrip(t *testing.T) {
	m := MustDense(t, 3, 2)
	require.NoError(t, m.SetCol(1, []float64{4, 5, 6}))
	col, err := m.Col(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, col)
	col0, err := m.Col(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, col0)

	clone := m.Clone()
	m.Zero()
	assert.Equal(t, 6.0, MustAt(t, clone, 2, 1), "clone must be independent")
	assert.Equal(t, 0.0, MustAt(t, m, 2, 1))
}

func TestMatVec_FastPathMatchesFallback(t *testing.T) {
	m := NewFilledDense(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})
	x := []float64{1, 0, -1}

	fast, err := matrix.MatVec(m, x)
	require.NoError(t, err)
	slow, err := matrix.MatVec(hide{m}, x)
	require.NoError(t, err)

	assert.Equal(t, []float64{-2, -2}, fast)
	assert.Equal(t, fast, slow)

	_, err = matrix.MatVec(m, []float64{1})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.MatVec(nil, x)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestWeightedGram(t *testing.T) {
	// J = [[1,2],[3,4],[5,6]], W = diag(1,2,3)
	j := NewFilledDense(t, 3, 2, []float64{1, 2, 3, 4, 5, 6})
	w := []float64{1, 2, 3}

	a, err := matrix.WeightedGram(j, w)
	require.NoError(t, err)
	// JᵀWJ = [[1+18+75, 2+24+90], [.., 4+32+108]]
	assert.Equal(t, 94.0, MustAt(t, a, 0, 0))
	assert.Equal(t, 116.0, MustAt(t, a, 0, 1))
	assert.Equal(t, 116.0, MustAt(t, a, 1, 0))
	assert.Equal(t, 144.0, MustAt(t, a, 1, 1))

	g, err := matrix.WeightedTransposeMatVec(j, w, []float64{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{1 + 6 + 15, 2 + 8 + 18}, g)

	unit, err := matrix.WeightedGram(j, nil)
	require.NoError(t, err)
	assert.Equal(t, 35.0, MustAt(t, unit, 0, 0))

	_, err = matrix.WeightedGram(j, []float64{1})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}
