package signal_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/liifit/signal"
)

func TestWarp_Identical(t *testing.T) {
	a := []float64{1, 3, 4, 9, 8, 2}
	al, err := signal.Warp(a, a, signal.WarpOptions{Path: true})
	require.NoError(t, err)
	assert.Zero(t, al.Distance)
	require.Len(t, al.Path, len(a))
	for k, p := range al.Path {
		assert.Equal(t, [2]int{k, k}, p)
	}
	assert.Zero(t, al.Lag())
	assert.Zero(t, al.Mean(len(a)))
}

func TestWarp_ShiftedPulse(t *testing.T) {
	a := []float64{0, 0, 1, 2, 1, 0, 0}
	b := []float64{0, 1, 2, 1, 0, 0, 0}

	al, err := signal.Warp(a, b, signal.WarpOptions{Path: true})
	require.NoError(t, err)
	assert.Zero(t, al.Distance)
	assert.Equal(t, -1, al.Lag())

	require.NotEmpty(t, al.Path)
	assert.Equal(t, [2]int{0, 0}, al.Path[0])
	assert.Equal(t, [2]int{len(a) - 1, len(b) - 1}, al.Path[len(al.Path)-1])
	for k := 1; k < len(al.Path); k++ {
		di := al.Path[k][0] - al.Path[k-1][0]
		dj := al.Path[k][1] - al.Path[k-1][1]
		assert.True(t, di >= 0 && di <= 1 && dj >= 0 && dj <= 1 && di+dj > 0, "step %d", k)
	}
}

func TestWarp_PathAgreesWithDistanceOnly(t *testing.T) {
	a := make([]float64, 40)
	b := make([]float64, 33)
	for i := range a {
		a[i] = math.Sin(float64(i) / 5)
	}
	for j := range b {
		b[j] = math.Sin(float64(j)/4 + 0.3)
	}

	full, err := signal.Warp(a, b, signal.WarpOptions{Band: 12, Path: true})
	require.NoError(t, err)
	short, err := signal.Warp(a, b, signal.WarpOptions{Band: 12})
	require.NoError(t, err)

	assert.Equal(t, full.Distance, short.Distance)
	assert.Nil(t, short.Path)

	var sum float64
	for _, p := range full.Path {
		sum += math.Abs(a[p[0]] - b[p[1]])
	}
	assert.InDelta(t, full.Distance, sum, 1e-12)
}

func TestWarp_SlopePenalty(t *testing.T) {
	a := []float64{0, 1}
	b := []float64{0, 0, 1}

	al, err := signal.Warp(a, b, signal.WarpOptions{})
	require.NoError(t, err)
	assert.Zero(t, al.Distance)

	al, err = signal.Warp(a, b, signal.WarpOptions{SlopePenalty: 0.5, Path: true})
	require.NoError(t, err)
	assert.Equal(t, 0.5, al.Distance)
	assert.Len(t, al.Path, 3)
}

func TestWarp_BandTooNarrow(t *testing.T) {
	al, err := signal.Warp([]float64{1, 2, 3}, []float64{1, 2, 3, 4, 5, 6}, signal.WarpOptions{Band: 1, Path: true})
	require.NoError(t, err)
	assert.True(t, math.IsInf(al.Distance, 1))
	assert.Nil(t, al.Path)
}

func TestWarp_Empty(t *testing.T) {
	_, err := signal.Warp(nil, []float64{1}, signal.WarpOptions{})
	assert.ErrorIs(t, err, signal.ErrEmptySequence)
	_, err = signal.Warp([]float64{1}, []float64{}, signal.WarpOptions{})
	assert.ErrorIs(t, err, signal.ErrEmptySequence)
}
