package traceplot_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/liifit/lm"
	"github.com/katalvlaran/liifit/signal"
	"github.com/katalvlaran/liifit/store"
	"github.com/katalvlaran/liifit/traceplot"
)

func series(n int) (x, y, f []float64) {
	x = make([]float64, n)
	y = make([]float64, n)
	f = make([]float64, n)
	for i := range x {
		x[i] = float64(i) * 5e-9
		f[i] = 1500 + 1000*math.Exp(-x[i]/300e-9)
		y[i] = f[i] + float64(i%3-1)
	}

	return x, y, f
}

func TestFit_WritesPNG(t *testing.T) {
	x, y, f := series(50)
	p, err := traceplot.Fit("trace", "T (K)", x, y, f)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, traceplot.Write(p, &buf, "png"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	_, err = traceplot.Fit("bad", "", x, y[:3], nil)
	assert.ErrorIs(t, err, traceplot.ErrLength)
}

func TestContributions_SVG(t *testing.T) {
	x, _, f := series(20)
	zero := make([]float64, 20)
	p, err := traceplot.Contributions("losses", x, zero, f, f)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "losses.svg")
	require.NoError(t, traceplot.Save(p, path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<svg")
}

func TestHistory(t *testing.T) {
	hist := []lm.IterationResult{
		lm.NewIterationResult(100, 1e-3, []float64{22}, []float64{0.1}),
		lm.NewIterationResult(0, 5e-4, []float64{20}, []float64{0}),
	}
	p, err := traceplot.History("chi2", hist)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, traceplot.Write(p, &buf, "png"))
	assert.NotZero(t, buf.Len())

	_, err = traceplot.History("empty", nil)
	assert.ErrorIs(t, err, traceplot.ErrLength)
}

func TestSaveProblem(t *testing.T) {
	_, y, f := series(40)
	prob := store.Problem{
		Key:        signal.Key{Run: "flame/a", Point: 2, Channel: 1, Type: signal.TypeTemperature},
		Status:     "done",
		Dt:         5e-9,
		Observed:   y,
		Fitted:     f,
		Iterations: [][]float64{{10, 1e-3, 20, 0.5}, {1, 5e-4, 21, 0.1}},
	}
	dir := filepath.Join(t.TempDir(), "plots")
	paths, err := traceplot.SaveProblem(dir, "T (K)", prob)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "flame-a_2_1_temperature_fit.png"), paths[0])
	for _, p := range paths {
		st, err := os.Stat(p)
		require.NoError(t, err)
		assert.NotZero(t, st.Size())
	}
}
