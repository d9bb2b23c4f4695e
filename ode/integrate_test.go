package ode_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/liifit/heat"
	"github.com/katalvlaran/liifit/ode"
)

// linearModel cools exponentially towards gasT with rate k and shrinks d
// exponentially with rate c. It has closed-form solutions.
type linearModel struct {
	k, c, gasT float64
	dTconst    float64 // extra constant dT/dt, used to force T through zero
	calls      int
}

func (m *linearModel) Name() string                                { return "linear" }
func (m *linearModel) SetProcessConditions(_, g float64)           { m.gasT = g }
func (m *linearModel) ProcessConditions() (float64, float64)       { return 0, m.gasT }
func (m *linearModel) Flags() heat.Flags                           { return heat.AllFlags() }
func (m *linearModel) SetFlags(heat.Flags)                         {}
func (m *linearModel) Ready() error                                { return nil }
func (m *linearModel) Evaporation(_, _ float64) (float64, float64) { return 0, 0 }
func (m *linearModel) Conduction(_, _ float64) float64             { return 0 }
func (m *linearModel) Radiation(_, _ float64) float64              { return 0 }
func (m *linearModel) Clone() heat.Model                           { c := *m; return &c }
func (m *linearModel) Derivative(T, d float64) (float64, float64) {
	m.calls++

	return -m.k*(T-m.gasT) + m.dTconst, -m.c * d
}

func (m *linearModel) exact(T0, d0, t float64) (float64, float64) {
	return m.gasT + (T0-m.gasT)*math.Exp(-m.k*t), d0 * math.Exp(-m.c*t)
}

const (
	dt = 5e-9
	n  = 200
)

func newLinear() *linearModel { return &linearModel{k: 1 / 600e-9, c: 1 / 3e-6, gasT: 1500} }

func maxTempError(t *testing.T, scheme ode.Scheme) float64 {
	t.Helper()
	m := newLinear()
	opts := ode.DefaultOptions()
	opts.Scheme = scheme
	sig, stats, err := ode.Integrate(context.Background(), m, 2500, 20e-9, n, dt, 0, opts)
	require.NoError(t, err)
	require.Equal(t, n, sig.Len())
	require.Len(t, sig.Diameter, n)
	require.False(t, sig.Truncated)
	assert.Equal(t, m.calls, stats.Evaluations)

	var worst float64
	for i := 0; i < n; i++ {
		T, d := m.exact(2500, 20e-9, float64(i)*dt)
		worst = math.Max(worst, math.Abs(sig.Data[i]-T))
		assert.InEpsilon(t, d, sig.Diameter[i], 1e-3)
	}

	return worst
}

func TestIntegrate_Accuracy(t *testing.T) {
	cases := []struct {
		scheme ode.Scheme
		max    float64
	}{
		{ode.Euler, 1},
		{ode.RK4, 1e-5},
		{ode.CashKarp45, 1e-6},
		{ode.Fehlberg78, 1e-6},
		{ode.CashKarp45Adaptive, 1e-3},
		{ode.Fehlberg78Adaptive, 1e-3},
	}
	for _, tc := range cases {
		t.Run(tc.scheme.String(), func(t *testing.T) {
			assert.Less(t, maxTempError(t, tc.scheme), tc.max)
		})
	}
}

func TestIntegrate_EulerIsFirstOrder(t *testing.T) {
	assert.Greater(t, maxTempError(t, ode.Euler), 1e-3, "Euler error is visible at this step")
}

func TestIntegrate_SampleZeroIsInitial(t *testing.T) {
	sig, _, err := ode.Integrate(context.Background(), newLinear(), 2500, 20e-9, 3, dt, 1e-7, ode.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2500.0, sig.Data[0])
	assert.Equal(t, 20e-9, sig.Diameter[0])
	assert.Equal(t, 1e-7, sig.StartTime)
	assert.Equal(t, dt, sig.Dt)
}

func TestIntegrate_ZeroHeatLossHoldsState(t *testing.T) {
	m := heat.NewFreeMolecular(heat.Soot(), heat.Nitrogen())
	m.SetProcessConditions(1e5, 1500)
	m.SetFlags(heat.Flags{})

	for s := ode.Euler; s <= ode.Fehlberg78Adaptive; s++ {
		opts := ode.DefaultOptions()
		opts.Scheme = s
		sig, _, err := ode.Integrate(context.Background(), m, 2500, 20e-9, 50, dt, 0, opts)
		require.NoError(t, err, s.String())
		for i := 0; i < sig.Len(); i++ {
			assert.Equal(t, 2500.0, sig.Data[i], "%s sample %d", s, i)
			assert.Equal(t, 20e-9, sig.Diameter[i], "%s sample %d", s, i)
		}
	}
}

func TestIntegrate_FreeMolecularCools(t *testing.T) {
	m := heat.NewFreeMolecular(heat.Soot(), heat.Nitrogen())
	m.SetProcessConditions(1e5, 1500)
	sig, _, err := ode.Integrate(context.Background(), m, 2500, 20e-9, n, dt, 0, ode.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, sig.Validate())
	for i := 1; i < n; i++ {
		assert.Less(t, sig.Data[i], sig.Data[i-1])
		assert.LessOrEqual(t, sig.Diameter[i], sig.Diameter[i-1])
	}
	assert.Greater(t, sig.Data[n-1], 1500.0)
}

func TestIntegrate_NonPhysicalHoldsLastValid(t *testing.T) {
	for _, s := range []ode.Scheme{ode.Euler, ode.RK4, ode.CashKarp45Adaptive} {
		t.Run(s.String(), func(t *testing.T) {
			m := &linearModel{gasT: 0, dTconst: -1e11} // reaches T=0 after ~25 ns
			opts := ode.DefaultOptions()
			opts.Scheme = s
			sig, stats, err := ode.Integrate(context.Background(), m, 2500, 20e-9, n, dt, 0, opts)
			require.NoError(t, err)
			require.Equal(t, n, sig.Len())
			assert.True(t, sig.Truncated)
			require.Greater(t, stats.Truncated, 0)

			held := sig.Data[stats.Truncated]
			assert.Greater(t, held, 0.0)
			for i := stats.Truncated; i < n; i++ {
				assert.Equal(t, held, sig.Data[i])
			}
			assert.NoError(t, sig.Validate(), "no NaN reaches the trace")
		})
	}
}

func TestIntegrate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sig, _, err := ode.Integrate(ctx, newLinear(), 2500, 20e-9, n, dt, 0, ode.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ode.ErrCanceled))
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, sig)
	assert.Equal(t, 1, sig.Len(), "only the initial sample")
}

func TestIntegrate_BadInput(t *testing.T) {
	ctx := context.Background()
	opts := ode.DefaultOptions()
	_, _, err := ode.Integrate(ctx, newLinear(), 2500, 20e-9, 0, dt, 0, opts)
	assert.ErrorIs(t, err, ode.ErrBadInput)
	_, _, err = ode.Integrate(ctx, newLinear(), 2500, 20e-9, 10, -dt, 0, opts)
	assert.ErrorIs(t, err, ode.ErrBadInput)
	_, _, err = ode.Integrate(ctx, newLinear(), -1, 20e-9, 10, dt, 0, opts)
	assert.ErrorIs(t, err, ode.ErrBadInput)
	_, _, err = ode.Integrate(ctx, nil, 2500, 20e-9, 10, dt, 0, opts)
	assert.ErrorIs(t, err, ode.ErrBadInput)

	opts.StepSizeFactor = 3
	_, _, err = ode.Integrate(ctx, newLinear(), 2500, 20e-9, 10, dt, 0, opts)
	assert.ErrorIs(t, err, ode.ErrBadOptions)
}

func TestIntegrate_StepLimit(t *testing.T) {
	opts := ode.DefaultOptions()
	opts.Scheme = ode.CashKarp45Adaptive
	opts.StepSizeFactor = 1
	opts.RelTol = 1e-18
	opts.AbsTol = 0
	opts.MaxSubsteps = 1
	_, _, err := ode.Integrate(context.Background(), newLinear(), 2500, 20e-9, 10, dt, 0, opts)
	assert.ErrorIs(t, err, ode.ErrStepLimit)
}

func TestScheme_Text(t *testing.T) {
	for s := ode.Euler; s <= ode.Fehlberg78Adaptive; s++ {
		b, err := s.MarshalText()
		require.NoError(t, err)
		var back ode.Scheme
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, s, back)
	}
	_, err := ode.ParseScheme("leapfrog")
	assert.ErrorIs(t, err, ode.ErrBadOptions)
	got, err := ode.ParseScheme(" RK4 ")
	require.NoError(t, err)
	assert.Equal(t, ode.RK4, got)
	assert.True(t, ode.Fehlberg78Adaptive.Adaptive())
	assert.False(t, ode.RK4.Adaptive())
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, v := range []int{1, 2, 4, 64, 1024} {
		assert.True(t, ode.IsPowerOfTwo(v), v)
	}
	for _, v := range []int{0, -2, 3, 6, 100} {
		assert.False(t, ode.IsPowerOfTwo(v), v)
	}
}
